package eventhandler

import (
	"log/slog"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUDIT LOGGER
// Structured log line for every domain event on the bus.
// ═══════════════════════════════════════════════════════════════════════════

// NewAuditLogger returns a handler that logs every event. Register it
// with SubscribeAll.
func NewAuditLogger(logger *slog.Logger) shared.EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("handler", "audit")

	return func(event shared.Event) error {
		log.Info("domain event",
			"event_type", string(event.EventType()),
			"aggregate_id", event.AggregateID(),
			"occurred_at", event.OccurredAt(),
		)
		return nil
	}
}
