package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
	"github.com/skillchain-hub/skillchain-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STAKE COMMAND
// The user escrows points on completing a skill chain within the deadline.
// The debit and the stake insert are a single atomic operation.
// ══════════════════════════════════════════════════════════════════════════════

// CreateStakeCommand contains the data to create a stake.
type CreateStakeCommand struct {
	// UserID is the staking user.
	UserID string

	// ChainID is the chain being staked on.
	ChainID string

	// Amount is the number of points to escrow.
	Amount int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c CreateStakeCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("create_stake: user_id is required")
	}
	if c.ChainID == "" {
		return errors.New("create_stake: chain_id is required")
	}
	if c.Amount <= 0 {
		return chain.ErrInvalidAmount
	}
	return nil
}

// CreateStakeResult contains the result of creating a stake.
type CreateStakeResult struct {
	// StakeID is the ID of the created stake.
	StakeID string

	// Deadline is when the chain must be completed.
	Deadline time.Time

	// Events contains domain events generated.
	Events []shared.Event
}

// CreateStakeHandler handles the CreateStakeCommand.
type CreateStakeHandler struct {
	users          user.Directory
	chains         chain.Chains
	stakes         chain.Stakes
	eventPublisher shared.EventPublisher
}

// NewCreateStakeHandler creates a new CreateStakeHandler.
func NewCreateStakeHandler(
	users user.Directory,
	chains chain.Chains,
	stakes chain.Stakes,
	eventPublisher shared.EventPublisher,
) *CreateStakeHandler {
	return &CreateStakeHandler{
		users:          users,
		chains:         chains,
		stakes:         stakes,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the create stake command.
func (h *CreateStakeHandler) Handle(ctx context.Context, cmd CreateStakeCommand) (*CreateStakeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return nil, fmt.Errorf("create_stake: %w", err)
	}
	if _, err := h.chains.FindByID(ctx, cmd.ChainID); err != nil {
		return nil, fmt.Errorf("create_stake: %w", err)
	}

	s, err := chain.NewStake(chain.NewStakeParams{
		ID:      uuid.NewString(),
		UserID:  cmd.UserID,
		ChainID: cmd.ChainID,
		Amount:  cmd.Amount,
		Now:     timeutil.Now(),
	})
	if err != nil {
		return nil, err
	}

	// Escrow: the repository debits the balance and inserts atomically.
	if err := h.stakes.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create_stake: %w", err)
	}

	event := shared.NewStakeSettledEvent(shared.EventStakeCreated, s.ID, s.UserID, s.ChainID, s.Amount, 0)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &CreateStakeResult{
		StakeID:  s.ID,
		Deadline: s.Deadline,
		Events:   []shared.Event{event},
	}, nil
}
