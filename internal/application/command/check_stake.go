package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
	"github.com/skillchain-hub/skillchain-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK STAKE COMMAND
// Reconciles an active stake against chain progress. An expired stake burns,
// a finished chain pays out with the streak multiplier applied.
// ══════════════════════════════════════════════════════════════════════════════

// StakeOutcome describes what the check concluded.
type StakeOutcome string

const (
	// StakeAlreadyProcessed means the stake was settled earlier.
	StakeAlreadyProcessed StakeOutcome = "already_processed"

	// StakeFailedDeadline means the deadline passed and the escrow burned.
	StakeFailedDeadline StakeOutcome = "failed_deadline"

	// StakeCompleted means all chain skills are learned and the payout was made.
	StakeCompleted StakeOutcome = "completed"

	// StakeInProgress means the stake is still active.
	StakeInProgress StakeOutcome = "in_progress"
)

// CheckStakeCommand contains the data to check a stake.
type CheckStakeCommand struct {
	// StakeID is the stake to check.
	StakeID string

	// UserID is the stake owner performing the check.
	UserID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CheckStakeCommand) Validate() error {
	if c.StakeID == "" {
		return errors.New("check_stake: stake_id is required")
	}
	if c.UserID == "" {
		return errors.New("check_stake: user_id is required")
	}
	return nil
}

// ErrNotStakeOwner is returned when the caller does not own the stake.
var ErrNotStakeOwner = shared.NewDomainError("chain", "CheckStake", shared.ErrForbidden, "stake belongs to another user")

// CheckStakeResult contains the result of the check.
type CheckStakeResult struct {
	// Outcome is the reconciliation verdict.
	Outcome StakeOutcome

	// Reward is the payout on completion (0 otherwise).
	Reward int

	// Multiplier is the streak multiplier applied to the payout.
	Multiplier float64

	// SkillsNeeded lists chain skill IDs not yet learned, in chain order.
	SkillsNeeded []string

	// Deadline is the stake deadline.
	Deadline time.Time

	// Events contains domain events generated.
	Events []shared.Event
}

// CheckStakeHandler handles the CheckStakeCommand.
type CheckStakeHandler struct {
	users          user.Directory
	chains         chain.Chains
	stakes         chain.Stakes
	declarations   skill.Declarations
	eventPublisher shared.EventPublisher

	// now is injectable for tests.
	now func() time.Time
}

// NewCheckStakeHandler creates a new CheckStakeHandler.
func NewCheckStakeHandler(
	users user.Directory,
	chains chain.Chains,
	stakes chain.Stakes,
	declarations skill.Declarations,
	eventPublisher shared.EventPublisher,
) *CheckStakeHandler {
	return &CheckStakeHandler{
		users:          users,
		chains:         chains,
		stakes:         stakes,
		declarations:   declarations,
		eventPublisher: eventPublisher,
		now:            timeutil.Now,
	}
}

// Handle executes the check stake command.
func (h *CheckStakeHandler) Handle(ctx context.Context, cmd CheckStakeCommand) (*CheckStakeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.stakes.FindByID(ctx, cmd.StakeID)
	if err != nil {
		return nil, fmt.Errorf("check_stake: %w", err)
	}
	if s.UserID != cmd.UserID {
		return nil, ErrNotStakeOwner
	}

	result := &CheckStakeResult{
		Deadline: s.Deadline,
		Events:   make([]shared.Event, 0, 1),
	}

	if s.Status.IsTerminal() {
		result.Outcome = StakeAlreadyProcessed
		return result, nil
	}

	now := h.now()

	if s.IsExpired(now) {
		return h.failStake(ctx, cmd, s, now, result)
	}

	needed, err := h.skillsNeeded(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("check_stake: %w", err)
	}

	if len(needed) > 0 {
		result.Outcome = StakeInProgress
		result.SkillsNeeded = needed
		return result, nil
	}

	return h.completeStake(ctx, cmd, s, now, result)
}

// failStake burns an expired stake. The escrow stays debited.
func (h *CheckStakeHandler) failStake(ctx context.Context, cmd CheckStakeCommand, s *chain.Stake, now time.Time, result *CheckStakeResult) (*CheckStakeResult, error) {
	if err := s.Fail(now); err != nil {
		return nil, err
	}

	if err := h.stakes.Settle(ctx, s, 0); err != nil {
		// A concurrent check settled it first.
		if errors.Is(err, chain.ErrStakeSettled) {
			result.Outcome = StakeAlreadyProcessed
			return result, nil
		}
		return nil, fmt.Errorf("check_stake: %w", err)
	}

	result.Outcome = StakeFailedDeadline

	event := shared.NewStakeSettledEvent(shared.EventStakeFailed, s.ID, s.UserID, s.ChainID, s.Amount, 0)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)
	_ = h.eventPublisher.Publish(event)

	return result, nil
}

// completeStake pays out a finished chain with the streak multiplier.
func (h *CheckStakeHandler) completeStake(ctx context.Context, cmd CheckStakeCommand, s *chain.Stake, now time.Time, result *CheckStakeResult) (*CheckStakeResult, error) {
	owner, err := h.users.FindByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("check_stake: %w", err)
	}

	multiplier := owner.Multiplier()

	reward, err := s.Complete(multiplier, now)
	if err != nil {
		return nil, err
	}

	if err := h.stakes.Settle(ctx, s, reward); err != nil {
		if errors.Is(err, chain.ErrStakeSettled) {
			result.Outcome = StakeAlreadyProcessed
			return result, nil
		}
		return nil, fmt.Errorf("check_stake: %w", err)
	}

	result.Outcome = StakeCompleted
	result.Reward = reward
	result.Multiplier = multiplier

	event := shared.NewStakeSettledEvent(shared.EventStakeCompleted, s.ID, s.UserID, s.ChainID, s.Amount, reward)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)
	_ = h.eventPublisher.Publish(event)

	return result, nil
}

// skillsNeeded returns chain skills the owner has not yet declared
// as LEARN, preserving chain order.
func (h *CheckStakeHandler) skillsNeeded(ctx context.Context, s *chain.Stake) ([]string, error) {
	c, err := h.chains.FindByID(ctx, s.ChainID)
	if err != nil {
		return nil, err
	}

	declarations, err := h.declarations.ListByUserAndType(ctx, s.UserID, skill.TypeLearn)
	if err != nil {
		return nil, err
	}

	learned := make(map[string]bool)
	for _, d := range declarations {
		learned[d.SkillID] = true
	}

	var needed []string
	for _, skillID := range c.SkillIDs() {
		if !learned[skillID] {
			needed = append(needed, skillID)
		}
	}

	return needed, nil
}
