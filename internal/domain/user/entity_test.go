package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestUser(t *testing.T) *User {
	t.Helper()

	u, err := NewUser(NewUserParams{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Alice Liddell",
	})
	assert.NoError(t, err)
	return u
}

func TestNewUser_InitialState(t *testing.T) {
	u := newTestUser(t)

	assert.Equal(t, Points(InitialPoints), u.Points)
	assert.Equal(t, 0, u.StreakCount)
	assert.Nil(t, u.LastActivityDate)
	assert.Equal(t, RoleUser, u.Role)
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser(NewUserParams{ID: "u-1", Username: "a", Email: "a@b.c", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = NewUser(NewUserParams{ID: "u-1", Username: "alice", Email: "not-an-email", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewUser(NewUserParams{ID: "", Username: "alice", Email: "a@b.c", PasswordHash: "h"})
	assert.Error(t, err)
}

func TestRecordActivity_FirstEver(t *testing.T) {
	u := newTestUser(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	out := u.RecordActivity(now)

	assert.Equal(t, 1, out.Streak)
	assert.False(t, out.Continued)
	assert.False(t, out.Broken)
	assert.Equal(t, 1, u.StreakCount)
	assert.NotNil(t, u.LastActivityDate)
	assert.Equal(t, now, *u.LastActivityDate)
}

func TestRecordActivity_ConsecutiveDay(t *testing.T) {
	u := newTestUser(t)
	yesterday := time.Date(2026, 3, 9, 23, 50, 0, 0, time.UTC)
	u.StreakCount = 4
	u.LastActivityDate = &yesterday

	now := time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC)
	out := u.RecordActivity(now)

	assert.Equal(t, 5, out.Streak)
	assert.True(t, out.Continued)
	assert.False(t, out.Broken)
}

func TestRecordActivity_GapResetsStreak(t *testing.T) {
	u := newTestUser(t)
	threeDaysAgo := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	u.StreakCount = 12
	u.LastActivityDate = &threeDaysAgo

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	out := u.RecordActivity(now)

	assert.Equal(t, 1, out.Streak)
	assert.True(t, out.Broken)
	assert.Equal(t, 12, out.PreviousStreak)
	assert.Equal(t, 1, u.StreakCount)
}

func TestRecordActivity_SameDayIdempotent(t *testing.T) {
	u := newTestUser(t)
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	u.StreakCount = 7
	u.LastActivityDate = &morning

	evening := time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC)
	out := u.RecordActivity(evening)

	assert.Equal(t, 7, out.Streak)
	assert.False(t, out.Continued)
	assert.False(t, out.Broken)
	// Timestamp still advances even when the streak does not.
	assert.Equal(t, evening, *u.LastActivityDate)
}

func TestMultiplier_Tiers(t *testing.T) {
	cases := []struct {
		streak   int
		expected float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 1.0},
		{3, 1.2},
		{6, 1.2},
		{7, 1.5},
		{10, 1.5},
		{29, 1.5},
		{30, 2.0},
		{100, 2.0},
	}

	for _, tc := range cases {
		u := newTestUser(t)
		u.StreakCount = tc.streak
		assert.Equal(t, tc.expected, u.Multiplier(), "streak=%d", tc.streak)
	}
}

func TestApplyPointsDelta(t *testing.T) {
	u := newTestUser(t)
	assert.Equal(t, Points(500), u.Points)

	err := u.ApplyPointsDelta(-200)
	assert.NoError(t, err)
	assert.Equal(t, Points(300), u.Points)

	err = u.ApplyPointsDelta(-301)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, Points(300), u.Points)

	err = u.ApplyPointsDelta(50)
	assert.NoError(t, err)
	assert.Equal(t, Points(350), u.Points)
}

func TestDisplayName(t *testing.T) {
	u := newTestUser(t)
	assert.Equal(t, "Alice Liddell", u.DisplayName())

	u.FullName = ""
	assert.Equal(t, "alice", u.DisplayName())
}

func TestClone_Independence(t *testing.T) {
	u := newTestUser(t)
	ts := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	u.LastActivityDate = &ts

	clone := u.Clone()
	clone.StreakCount = 99
	later := ts.Add(24 * time.Hour)
	clone.LastActivityDate = &later

	assert.Equal(t, 0, u.StreakCount)
	assert.Equal(t, ts, *u.LastActivityDate)
}
