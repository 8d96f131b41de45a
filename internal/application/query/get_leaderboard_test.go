package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
)

func TestGetLeaderboard_RanksByPointsThenBadges(t *testing.T) {
	users := newFakeUsers(
		testUser("u-1", "anna", 700),
		testUser("u-2", "boris", 900),
		testUser("u-3", "clara", 700),
	)
	badges := &fakeBadges{}
	badges.items = append(badges.items,
		notification.NewBadge("b-1", "u-3", notification.BadgeFirstSteps, notification.BadgeLearner, notification.BadgeFirstStepsIcon))

	handler := NewGetLeaderboardHandler(users, badges, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})

	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 3)

	assert.Equal(t, "u-2", result.Entries[0].UserID)
	assert.Equal(t, 1, result.Entries[0].Rank)

	// Clara's badge breaks the 700-point tie with Anna.
	assert.Equal(t, "u-3", result.Entries[1].UserID)
	assert.Equal(t, 1, result.Entries[1].BadgeCount)
	assert.Equal(t, "u-1", result.Entries[2].UserID)
	assert.Equal(t, 3, result.Entries[2].Rank)
}

func TestGetLeaderboard_CacheHitSkipsDirectory(t *testing.T) {
	cache := &fakeLeaderboardCache{
		snapshot: []LeaderboardEntryDTO{
			{Rank: 1, UserID: "u-9", Username: "cached", Points: 9999},
		},
	}
	// An empty directory proves the cache short-circuits the build.
	handler := NewGetLeaderboardHandler(newFakeUsers(), &fakeBadges{}, cache)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})

	assert.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Len(t, result.Entries, 1)
	assert.Equal(t, "u-9", result.Entries[0].UserID)
	assert.Empty(t, cache.stored)
}

func TestGetLeaderboard_CacheMissRefreshesSnapshot(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "anna", 700))
	cache := &fakeLeaderboardCache{}
	handler := NewGetLeaderboardHandler(users, &fakeBadges{}, cache)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})

	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, cache.stored, 1)
	assert.Equal(t, "u-1", cache.stored[0][0].UserID)
}

func TestGetLeaderboard_LimitDefaultsToTen(t *testing.T) {
	users := newFakeUsers()
	for i := 0; i < 15; i++ {
		u := testUser(string(rune('a'+i)), string(rune('a'+i))+"-user", 100+i)
		users.byID[u.ID] = u
	}
	handler := NewGetLeaderboardHandler(users, &fakeBadges{}, nil)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{})

	assert.NoError(t, err)
	assert.Len(t, result.Entries, DefaultLeaderboardLimit)
}

func TestGetLeaderboard_NegativeLimitRejected(t *testing.T) {
	handler := NewGetLeaderboardHandler(newFakeUsers(), &fakeBadges{}, nil)

	_, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: -1})

	assert.Error(t, err)
}
