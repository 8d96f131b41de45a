package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
	"github.com/skillchain-hub/skillchain-backend/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND
// Registers daily activity for streak tracking. Idempotent within a day.
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains the data to record activity.
type RecordActivityCommand struct {
	// UserID is the active user.
	UserID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordActivityCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_activity: user_id is required")
	}
	return nil
}

// RecordActivityResult contains the result of recording activity.
type RecordActivityResult struct {
	// Streak is the streak after the update.
	Streak int

	// Continued reports a streak extension.
	Continued bool

	// Broken reports a streak reset after missed days.
	Broken bool

	// PreviousStreak is the streak before a reset.
	PreviousStreak int

	// Multiplier is the reward multiplier for the current streak.
	Multiplier float64

	// Events contains domain events generated.
	Events []shared.Event
}

// RecordActivityHandler handles the RecordActivityCommand.
type RecordActivityHandler struct {
	users          user.Directory
	eventPublisher shared.EventPublisher

	// now is injectable for tests.
	now func() time.Time
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
func NewRecordActivityHandler(users user.Directory, eventPublisher shared.EventPublisher) *RecordActivityHandler {
	return &RecordActivityHandler{
		users:          users,
		eventPublisher: eventPublisher,
		now:            timeutil.Now,
	}
}

// Handle executes the record activity command.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("record_activity: %w", err)
	}

	outcome := u.RecordActivity(h.now())

	if err := h.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("record_activity: %w", err)
	}

	result := &RecordActivityResult{
		Streak:         outcome.Streak,
		Continued:      outcome.Continued,
		Broken:         outcome.Broken,
		PreviousStreak: outcome.PreviousStreak,
		Multiplier:     u.Multiplier(),
		Events:         make([]shared.Event, 0, 1),
	}

	if outcome.Broken {
		event := shared.NewStreakBrokenEvent(u.ID, outcome.PreviousStreak, 0)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
