package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

type stakeFixture struct {
	handler      *CheckStakeHandler
	users        *fakeUsers
	stakes       *fakeStakes
	declarations *fakeDeclarations
	publisher    *capturingPublisher
	stakeID      string
}

// newStakeFixture creates a user with 500 points holding a 100-point stake
// on a two-skill chain.
func newStakeFixture(t *testing.T) *stakeFixture {
	t.Helper()

	users := newFakeUsers(testUser("u-1", "alice", 500))
	chains := newFakeChains(testChain("c-1", "Data Science Roadmap", "s-1", "s-2"))
	stakes := newFakeStakes(users)
	declarations := &fakeDeclarations{}
	publisher := &capturingPublisher{}

	create := NewCreateStakeHandler(users, chains, stakes, &capturingPublisher{})
	created, err := create.Handle(context.Background(), CreateStakeCommand{
		UserID: "u-1", ChainID: "c-1", Amount: 100,
	})
	assert.NoError(t, err)

	handler := NewCheckStakeHandler(users, chains, stakes, declarations, publisher)
	return &stakeFixture{
		handler:      handler,
		users:        users,
		stakes:       stakes,
		declarations: declarations,
		publisher:    publisher,
		stakeID:      created.StakeID,
	}
}

func (fx *stakeFixture) declareLearn(skillID string) {
	fx.declarations.items = append(fx.declarations.items, &skill.UserSkill{
		ID:      "us-" + skillID,
		UserID:  "u-1",
		SkillID: skillID,
		Type:    skill.TypeLearn,
	})
}

func (fx *stakeFixture) check(t *testing.T) *CheckStakeResult {
	t.Helper()
	result, err := fx.handler.Handle(context.Background(), CheckStakeCommand{
		StakeID: fx.stakeID,
		UserID:  "u-1",
	})
	assert.NoError(t, err)
	return result
}

func TestCheckStake_InProgressListsMissingSkillsInChainOrder(t *testing.T) {
	fx := newStakeFixture(t)

	result := fx.check(t)

	assert.Equal(t, StakeInProgress, result.Outcome)
	assert.Equal(t, []string{"s-1", "s-2"}, result.SkillsNeeded)
	assert.Empty(t, fx.publisher.events)
}

func TestCheckStake_PartialProgress(t *testing.T) {
	fx := newStakeFixture(t)
	fx.declareLearn("s-1")

	result := fx.check(t)

	assert.Equal(t, StakeInProgress, result.Outcome)
	assert.Equal(t, []string{"s-2"}, result.SkillsNeeded)
}

func TestCheckStake_LearnDeclarationsCompleteStake(t *testing.T) {
	fx := newStakeFixture(t)

	// Declaring every chain skill as LEARN is what counts as progress.
	fx.declareLearn("s-1")
	fx.declareLearn("s-2")

	result := fx.check(t)

	assert.Equal(t, StakeCompleted, result.Outcome)
	assert.Empty(t, result.SkillsNeeded)
}

func TestCheckStake_TeachDeclarationsDoNotCount(t *testing.T) {
	fx := newStakeFixture(t)
	// The owner declared both skills as TEACH, not LEARN.
	for _, skillID := range []string{"s-1", "s-2"} {
		fx.declarations.items = append(fx.declarations.items, &skill.UserSkill{
			ID:      "ust-" + skillID,
			UserID:  "u-1",
			SkillID: skillID,
			Type:    skill.TypeTeach,
		})
	}

	result := fx.check(t)

	assert.Equal(t, StakeInProgress, result.Outcome)
	assert.Equal(t, []string{"s-1", "s-2"}, result.SkillsNeeded)
}

func TestCheckStake_CompletionPaysRewardWithMultiplier(t *testing.T) {
	fx := newStakeFixture(t)
	fx.declareLearn("s-1")
	fx.declareLearn("s-2")

	// A 7-day streak gives the 1.5x multiplier.
	u, _ := fx.users.FindByID(context.Background(), "u-1")
	u.StreakCount = 7

	result := fx.check(t)

	assert.Equal(t, StakeCompleted, result.Outcome)
	assert.Equal(t, 1.5, result.Multiplier)
	assert.Equal(t, 150, result.Reward)

	// 500 - 100 escrow + 150 reward.
	u, _ = fx.users.FindByID(context.Background(), "u-1")
	assert.Equal(t, 550, int(u.Points))

	assert.Len(t, fx.publisher.byType(shared.EventStakeCompleted), 1)
}

func TestCheckStake_RewardTruncatesFraction(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	chains := newFakeChains(testChain("c-1", "Data Science Roadmap", "s-1"))
	stakes := newFakeStakes(users)
	declarations := &fakeDeclarations{}
	declarations.items = append(declarations.items, &skill.UserSkill{
		ID: "us-1", UserID: "u-1", SkillID: "s-1", Type: skill.TypeLearn,
	})

	create := NewCreateStakeHandler(users, chains, stakes, &capturingPublisher{})
	created, err := create.Handle(context.Background(), CreateStakeCommand{
		UserID: "u-1", ChainID: "c-1", Amount: 55,
	})
	assert.NoError(t, err)

	// 1.5x on 55 points is 82.5, the fraction is dropped.
	u, _ := users.FindByID(context.Background(), "u-1")
	u.StreakCount = 7

	handler := NewCheckStakeHandler(users, chains, stakes, declarations, &capturingPublisher{})
	result, err := handler.Handle(context.Background(), CheckStakeCommand{
		StakeID: created.StakeID, UserID: "u-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, 82, result.Reward)
}

func TestCheckStake_ExpiredStakeBurnsEscrow(t *testing.T) {
	fx := newStakeFixture(t)
	fx.handler.now = func() time.Time {
		return time.Now().UTC().Add(chain.StakeDuration + time.Hour)
	}

	result := fx.check(t)

	assert.Equal(t, StakeFailedDeadline, result.Outcome)
	assert.Zero(t, result.Reward)

	// The escrowed 100 points are not returned.
	u, _ := fx.users.FindByID(context.Background(), "u-1")
	assert.Equal(t, 400, int(u.Points))

	stored, _ := fx.stakes.FindByID(context.Background(), fx.stakeID)
	assert.Equal(t, chain.StakeFailed, stored.Status)

	assert.Len(t, fx.publisher.byType(shared.EventStakeFailed), 1)
}

func TestCheckStake_ThreeNodeChainScenario(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	chains := newFakeChains(testChain("c-1", "Backend Roadmap", "s-1", "s-2", "s-3"))
	stakes := newFakeStakes(users)
	declarations := &fakeDeclarations{}

	create := NewCreateStakeHandler(users, chains, stakes, &capturingPublisher{})
	created, err := create.Handle(context.Background(), CreateStakeCommand{
		UserID: "u-1", ChainID: "c-1", Amount: 200,
	})
	assert.NoError(t, err)

	u, _ := users.FindByID(context.Background(), "u-1")
	assert.Equal(t, 300, int(u.Points))
	u.StreakCount = 7

	handler := NewCheckStakeHandler(users, chains, stakes, declarations, &capturingPublisher{})
	check := func() *CheckStakeResult {
		result, err := handler.Handle(context.Background(), CheckStakeCommand{
			StakeID: created.StakeID, UserID: "u-1",
		})
		assert.NoError(t, err)
		return result
	}

	declare := func(skillID string) {
		declarations.items = append(declarations.items, &skill.UserSkill{
			ID: "us-" + skillID, UserID: "u-1", SkillID: skillID, Type: skill.TypeLearn,
		})
	}
	declare("s-1")
	declare("s-2")

	result := check()
	assert.Equal(t, StakeInProgress, result.Outcome)
	assert.Equal(t, []string{"s-3"}, result.SkillsNeeded)

	declare("s-3")

	result = check()
	assert.Equal(t, StakeCompleted, result.Outcome)
	assert.Equal(t, 300, result.Reward)

	// 300 remaining + floor(200 * 1.5) paid out.
	u, _ = users.FindByID(context.Background(), "u-1")
	assert.Equal(t, 600, int(u.Points))

	stored, _ := stakes.FindByID(context.Background(), created.StakeID)
	assert.Equal(t, chain.StakeCompleted, stored.Status)
	assert.Equal(t, 300, stored.Reward)
}

func TestCheckStake_SettledStakeIsIdempotent(t *testing.T) {
	fx := newStakeFixture(t)
	fx.declareLearn("s-1")
	fx.declareLearn("s-2")

	first := fx.check(t)
	assert.Equal(t, StakeCompleted, first.Outcome)

	second := fx.check(t)
	assert.Equal(t, StakeAlreadyProcessed, second.Outcome)
	assert.Zero(t, second.Reward)

	// No double credit.
	u, _ := fx.users.FindByID(context.Background(), "u-1")
	assert.Equal(t, 500, int(u.Points))
}

func TestCheckStake_OnlyOwnerMayCheck(t *testing.T) {
	fx := newStakeFixture(t)

	_, err := fx.handler.Handle(context.Background(), CheckStakeCommand{
		StakeID: fx.stakeID,
		UserID:  "intruder",
	})

	assert.ErrorIs(t, err, ErrNotStakeOwner)
}

func TestCheckStake_UnknownStake(t *testing.T) {
	fx := newStakeFixture(t)

	_, err := fx.handler.Handle(context.Background(), CheckStakeCommand{
		StakeID: "ghost",
		UserID:  "u-1",
	})

	assert.ErrorIs(t, err, chain.ErrStakeNotFound)
}
