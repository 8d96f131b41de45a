// Package eventhandler contains domain event subscribers. They react to
// events published by the command handlers and run side effects such as
// notification delivery and cache invalidation.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STAKE SETTLED HANDLER
// Reacts to stake settlement: tells the owner how the wager ended and
// drops the leaderboard snapshot, since the balance just changed.
// ═══════════════════════════════════════════════════════════════════════════

// LeaderboardInvalidator drops the cached leaderboard snapshot.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// OnStakeSettledHandler handles stake completed/failed events.
type OnStakeSettledHandler struct {
	notifications notification.Notifications
	sink          notification.Sink
	leaderboard   LeaderboardInvalidator
	logger        *slog.Logger
}

// NewOnStakeSettledHandler creates a new OnStakeSettledHandler.
// sink and leaderboard may be nil.
func NewOnStakeSettledHandler(
	notifications notification.Notifications,
	sink notification.Sink,
	leaderboard LeaderboardInvalidator,
	logger *slog.Logger,
) *OnStakeSettledHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnStakeSettledHandler{
		notifications: notifications,
		sink:          sink,
		leaderboard:   leaderboard,
		logger:        logger.With("handler", "on_stake_settled"),
	}
}

// Subscribe registers the handler on the bus for both settlement outcomes.
func (h *OnStakeSettledHandler) Subscribe(bus shared.EventSubscriber) {
	bus.Subscribe(shared.EventStakeCompleted, h.Handle)
	bus.Subscribe(shared.EventStakeFailed, h.Handle)
}

// Handle implements shared.EventHandler.
func (h *OnStakeSettledHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	stakeEvent, ok := event.(shared.StakeSettledEvent)
	if !ok {
		h.logger.Warn("received non-StakeSettledEvent", "event_type", event.EventType())
		return nil
	}

	var message string
	switch event.EventType() {
	case shared.EventStakeCompleted:
		message = fmt.Sprintf("Your %d-point stake paid out %d points. Chain complete!", stakeEvent.Amount, stakeEvent.Reward)
	case shared.EventStakeFailed:
		message = fmt.Sprintf("Your %d-point stake expired. The chain was not completed in time.", stakeEvent.Amount)
	default:
		return nil
	}

	h.logger.Info("processing stake settlement",
		"stake_id", stakeEvent.StakeID,
		"user_id", stakeEvent.UserID,
		"outcome", string(event.EventType()),
		"reward", stakeEvent.Reward,
	)

	if err := h.notifyOwner(ctx, stakeEvent.UserID, message, stakeEvent.StakeID); err != nil {
		h.logger.Error("failed to notify stake owner",
			"user_id", stakeEvent.UserID,
			"error", err,
		)
		// Notification failure is not worth a redelivery.
	}

	if h.leaderboard != nil && event.EventType() == shared.EventStakeCompleted {
		if err := h.leaderboard.Invalidate(ctx); err != nil {
			h.logger.Warn("failed to invalidate leaderboard cache", "error", err)
		}
	}

	return nil
}

func (h *OnStakeSettledHandler) notifyOwner(ctx context.Context, userID, message, stakeID string) error {
	n, err := notification.NewNotification(uuid.NewString(), userID, notification.TypeStakeSettled, message, stakeID)
	if err != nil {
		return err
	}

	if err := h.notifications.Create(ctx, n); err != nil {
		return err
	}

	if h.sink != nil {
		_ = h.sink.Deliver(ctx, n)
	}
	return nil
}
