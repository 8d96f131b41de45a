package postgres

import (
	"context"
	"fmt"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NotificationRepository implements notification.Notifications for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create saves a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, notification_type, message, read, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID, n.UserID, string(n.Type), n.Message, n.Read, n.RelatedID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, notification_type, message, read, related_id, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var result []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		var nType string

		err := rows.Scan(&n.ID, &n.UserID, &nType, &n.Message, &n.Read, &n.RelatedID, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.Type = notification.Type(nType)
		result = append(result, &n)
	}

	return result, rows.Err()
}

// MarkRead marks a notification as read. The notification must belong
// to the given user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	result, err := r.conn.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

// CountUnread returns the number of unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

	var count int
	err := r.conn.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements notification.Badges for PostgreSQL.
// Badges are append-only.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// Create saves a new badge.
func (r *BadgeRepository) Create(ctx context.Context, b *notification.Badge) error {
	query := `
		INSERT INTO badges (id, user_id, name, badge_type, icon, awarded_by_id, awarded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query, b.ID, b.UserID, b.Name, string(b.Type), b.Icon, b.AwardedByID, b.AwardedAt)
	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// ListByUser returns the user's badges, newest first.
func (r *BadgeRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Badge, error) {
	query := `
		SELECT id, user_id, name, badge_type, icon, awarded_by_id, awarded_at
		FROM badges
		WHERE user_id = $1
		ORDER BY awarded_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	var result []*notification.Badge
	for rows.Next() {
		var b notification.Badge
		var bType string

		err := rows.Scan(&b.ID, &b.UserID, &b.Name, &bType, &b.Icon, &b.AwardedByID, &b.AwardedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}

		b.Type = notification.BadgeType(bType)
		result = append(result, &b)
	}

	return result, rows.Err()
}

// CountByUser returns the total number of badges the user holds.
func (r *BadgeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM badges WHERE user_id = $1`

	var count int
	err := r.conn.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}

	return count, nil
}
