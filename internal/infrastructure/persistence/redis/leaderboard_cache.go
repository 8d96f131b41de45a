// Package redis implements Redis caching and pub/sub delivery for the
// SkillChain platform.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUserNotRanked is returned when the user is not present in the ranking.
	ErrUserNotRanked = errors.New("leaderboard_cache: user not ranked")

	// ErrInvalidLimit is returned when a non-positive limit is requested.
	ErrInvalidLimit = errors.New("leaderboard_cache: invalid limit")
)

// Key patterns for leaderboard cache.
const (
	// keyLeaderboardTop holds the serialized top-N snapshot.
	keyLeaderboardTop = PrefixLeaderboard + "top"

	// keyLeaderboardPoints is the sorted set mapping userID to points.
	keyLeaderboardPoints = PrefixLeaderboard + "points"
)

// Entry is a single cached leaderboard row.
type Entry struct {
	// UserID is the unique identifier of the user.
	UserID string `json:"user_id"`

	// Username is the user's login name.
	Username string `json:"username"`

	// FullName is the user's display name.
	FullName string `json:"full_name,omitempty"`

	// Points is the current points balance.
	Points int `json:"points"`

	// StreakCount is the current daily activity streak.
	StreakCount int `json:"streak_count"`

	// BadgeCount is the number of badges the user holds.
	BadgeCount int `json:"badge_count"`

	// Rank is the position in the leaderboard (1-based).
	Rank int `json:"rank"`
}

// Snapshot is a cached top-N view with its build time.
type Snapshot struct {
	Entries []Entry   `json:"entries"`
	BuiltAt time.Time `json:"built_at"`
}

// LeaderboardCache provides fast leaderboard reads backed by Redis.
//
// Architecture:
//   - String "leaderboard:top" stores the serialized top-N snapshot
//   - Sorted set "leaderboard:points" stores userID -> points for rank lookups
//
// The snapshot is the source for the leaderboard endpoint; the sorted set
// answers individual rank queries in O(log N).
type LeaderboardCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
// A non-positive ttl falls back to TTLLeaderboard.
func NewLeaderboardCache(cache *Cache, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = TTLLeaderboard
	}
	return &LeaderboardCache{cache: cache, ttl: ttl}
}

// SetTop stores the ranked top-N snapshot and refreshes the points index.
func (l *LeaderboardCache) SetTop(ctx context.Context, entries []Entry) error {
	snap := Snapshot{
		Entries: entries,
		BuiltAt: time.Now().UTC(),
	}

	pipe := l.cache.Client().Pipeline()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	pipe.Set(ctx, keyLeaderboardTop, data, l.ttl)

	if len(entries) > 0 {
		members := make([]redis.Z, 0, len(entries))
		for _, e := range entries {
			if e.UserID == "" {
				continue
			}
			members = append(members, redis.Z{
				Score:  float64(e.Points),
				Member: e.UserID,
			})
		}
		pipe.ZAdd(ctx, keyLeaderboardPoints, members...)
		pipe.Expire(ctx, keyLeaderboardPoints, l.ttl)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// GetTop returns the cached snapshot.
// Returns ErrCacheMiss when the snapshot has expired or was never built.
func (l *LeaderboardCache) GetTop(ctx context.Context) ([]Entry, error) {
	var snap Snapshot
	if err := l.cache.Get(ctx, keyLeaderboardTop, &snap); err != nil {
		return nil, err
	}
	return snap.Entries, nil
}

// UpdateScore updates a single user's points in the rank index.
// The top snapshot is left untouched and will refresh on its own TTL.
func (l *LeaderboardCache) UpdateScore(ctx context.Context, userID string, points int) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return l.cache.Client().ZAdd(ctx, keyLeaderboardPoints, redis.Z{
		Score:  float64(points),
		Member: userID,
	}).Err()
}

// GetRank returns the 1-based rank of a user by points.
func (l *LeaderboardCache) GetRank(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrCacheKeyEmpty
	}

	rank, err := l.cache.Client().ZRevRank(ctx, keyLeaderboardPoints, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrUserNotRanked
		}
		return 0, err
	}

	return rank + 1, nil
}

// Invalidate drops the snapshot and the rank index.
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	return l.cache.Delete(ctx, keyLeaderboardTop, keyLeaderboardPoints)
}
