// Package redis implements Redis caching and pub/sub delivery for the
// SkillChain platform.
package redis

import (
	"context"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION DELIVERY
// ══════════════════════════════════════════════════════════════════════════════

// notifyMessage is the wire format published to a user's channel.
type notifyMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers notifications to connected clients over Redis pub/sub.
// Each user has a dedicated channel; subscribers (websocket gateways,
// future mobile push bridges) fan the message out from there.
type Notifier struct {
	cache *Cache
	log   *logger.Logger
}

// NewNotifier creates a pub/sub backed notification sink.
func NewNotifier(cache *Cache, log *logger.Logger) *Notifier {
	return &Notifier{
		cache: cache,
		log:   log.With(logger.Component("redis_notifier")),
	}
}

// Deliver publishes the notification to the user's channel.
// A publish failure is logged and returned; callers decide whether the
// originating operation should continue.
func (n *Notifier) Deliver(ctx context.Context, msg *notification.Notification) error {
	payload := notifyMessage{
		ID:        msg.ID,
		Type:      string(msg.Type),
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}

	if err := n.cache.Publish(ctx, NotifyChannel(msg.UserID), payload); err != nil {
		n.log.Warn("notification delivery failed",
			logger.UserID(msg.UserID),
			logger.String("notification_id", msg.ID),
			logger.Err(err),
		)
		return err
	}

	return nil
}

var _ notification.Sink = (*Notifier)(nil)
