package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK NOTIFICATION READ COMMAND
// The only mutation allowed on the append-only notifications feed.
// ══════════════════════════════════════════════════════════════════════════════

// MarkNotificationReadCommand contains the data to mark a notification read.
type MarkNotificationReadCommand struct {
	// UserID is the notification's recipient.
	UserID string

	// NotificationID is the notification to mark.
	NotificationID string
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("mark_notification_read: user_id is required")
	}
	if c.NotificationID == "" {
		return errors.New("mark_notification_read: notification_id is required")
	}
	return nil
}

// MarkNotificationReadHandler handles the MarkNotificationReadCommand.
type MarkNotificationReadHandler struct {
	notifications notification.Notifications
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(notifications notification.Notifications) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{notifications: notifications}
}

// Handle marks the notification as read. Marking an already-read
// notification succeeds.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.notifications.MarkRead(ctx, cmd.UserID, cmd.NotificationID); err != nil {
		return fmt.Errorf("mark_notification_read: %w", err)
	}
	return nil
}
