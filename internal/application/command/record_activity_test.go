package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

func activityHandlerAt(users *fakeUsers, now time.Time) (*RecordActivityHandler, *capturingPublisher) {
	publisher := &capturingPublisher{}
	handler := NewRecordActivityHandler(users, publisher)
	handler.now = func() time.Time { return now }
	return handler, publisher
}

func TestRecordActivity_FirstActivityStartsStreak(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	handler, publisher := activityHandlerAt(users, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	result, err := handler.Handle(context.Background(), RecordActivityCommand{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.False(t, result.Continued)
	assert.False(t, result.Broken)
	assert.Equal(t, 1.0, result.Multiplier)
	assert.Empty(t, publisher.events)
}

func TestRecordActivity_ConsecutiveDayContinues(t *testing.T) {
	u := testUser("u-1", "alice", 500)
	last := time.Date(2025, 3, 9, 23, 50, 0, 0, time.UTC)
	u.LastActivityDate = &last
	u.StreakCount = 6
	users := newFakeUsers(u)

	handler, _ := activityHandlerAt(users, time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC))

	result, err := handler.Handle(context.Background(), RecordActivityCommand{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Equal(t, 7, result.Streak)
	assert.True(t, result.Continued)
	assert.Equal(t, 1.5, result.Multiplier)
}

func TestRecordActivity_MissedDayBreaksStreak(t *testing.T) {
	u := testUser("u-1", "alice", 500)
	last := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	u.LastActivityDate = &last
	u.StreakCount = 12
	users := newFakeUsers(u)

	handler, publisher := activityHandlerAt(users, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	result, err := handler.Handle(context.Background(), RecordActivityCommand{UserID: "u-1"})

	assert.NoError(t, err)
	assert.True(t, result.Broken)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 12, result.PreviousStreak)
	assert.Equal(t, 1.0, result.Multiplier)

	assert.Len(t, publisher.byType(shared.EventStreakBroken), 1)
}

func TestRecordActivity_SameDayIsIdempotent(t *testing.T) {
	u := testUser("u-1", "alice", 500)
	last := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	u.LastActivityDate = &last
	u.StreakCount = 4
	users := newFakeUsers(u)

	handler, publisher := activityHandlerAt(users, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))

	result, err := handler.Handle(context.Background(), RecordActivityCommand{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Equal(t, 4, result.Streak)
	assert.False(t, result.Continued)
	assert.False(t, result.Broken)
	assert.Empty(t, publisher.events)
}

func TestRecordActivity_UnknownUser(t *testing.T) {
	handler, _ := activityHandlerAt(newFakeUsers(), time.Now().UTC())

	_, err := handler.Handle(context.Background(), RecordActivityCommand{UserID: "ghost"})

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
