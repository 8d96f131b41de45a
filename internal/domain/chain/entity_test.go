package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStake(t *testing.T, amount int) *Stake {
	t.Helper()

	s, err := NewStake(NewStakeParams{
		ID:      "st-1",
		UserID:  "u-1",
		ChainID: "c-1",
		Amount:  amount,
		Now:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	return s
}

func TestNewStake_DeadlineThirtyDays(t *testing.T) {
	s := newTestStake(t, 100)

	assert.Equal(t, StakeInProgress, s.Status)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), s.Deadline)
	assert.Zero(t, s.Reward)
	assert.Nil(t, s.SettledAt)
}

func TestNewStake_RejectsNonPositiveAmount(t *testing.T) {
	_, err := NewStake(NewStakeParams{ID: "st-1", UserID: "u-1", ChainID: "c-1", Amount: 0, Now: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewStake(NewStakeParams{ID: "st-1", UserID: "u-1", ChainID: "c-1", Amount: -5, Now: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestStake_Complete_TruncatesReward(t *testing.T) {
	cases := []struct {
		amount     int
		multiplier float64
		reward     int
	}{
		{100, 1.0, 100},
		{100, 1.2, 120},
		{100, 1.5, 150},
		{100, 2.0, 200},
		{25, 1.2, 30},
		{7, 1.5, 10},
		{5, 1.2, 6},
		{3, 1.5, 4},
	}

	now := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		s := newTestStake(t, tc.amount)
		reward, err := s.Complete(tc.multiplier, now)
		assert.NoError(t, err)
		assert.Equal(t, tc.reward, reward, "amount=%d mult=%v", tc.amount, tc.multiplier)
		assert.Equal(t, StakeCompleted, s.Status)
		assert.NotNil(t, s.SettledAt)
	}
}

func TestStake_Complete_Twice(t *testing.T) {
	s := newTestStake(t, 100)
	now := time.Now().UTC()

	_, err := s.Complete(1.5, now)
	assert.NoError(t, err)

	_, err = s.Complete(1.5, now)
	assert.ErrorIs(t, err, ErrStakeSettled)
}

func TestStake_Fail(t *testing.T) {
	s := newTestStake(t, 100)
	now := time.Now().UTC()

	err := s.Fail(now)
	assert.NoError(t, err)
	assert.Equal(t, StakeFailed, s.Status)
	assert.Zero(t, s.Reward)

	err = s.Fail(now)
	assert.ErrorIs(t, err, ErrStakeSettled)
}

func TestStake_IsExpired(t *testing.T) {
	s := newTestStake(t, 100)

	assert.False(t, s.IsExpired(s.Deadline))
	assert.False(t, s.IsExpired(s.Deadline.Add(-time.Hour)))
	assert.True(t, s.IsExpired(s.Deadline.Add(time.Second)))
}

func TestSkillChain_SkillIDs(t *testing.T) {
	c := &SkillChain{
		ID:    "c-1",
		Title: "Backend Path",
		Nodes: []*Node{
			{ID: "n-1", ChainID: "c-1", SkillID: "s-go", Sequence: 1},
			{ID: "n-2", ChainID: "c-1", SkillID: "s-sql", Sequence: 2},
			{ID: "n-3", ChainID: "c-1", SkillID: "s-docker", Sequence: 3},
		},
	}

	assert.Equal(t, []string{"s-go", "s-sql", "s-docker"}, c.SkillIDs())
}
