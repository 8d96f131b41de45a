package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATIONS & BADGES FEEDS
// ══════════════════════════════════════════════════════════════════════════════

// GetNotificationsQuery contains the feed parameters.
type GetNotificationsQuery struct {
	// UserID identifies the recipient.
	UserID string

	// UnreadOnly limits the feed to unread notifications.
	UnreadOnly bool
}

// Validate validates the query.
func (q GetNotificationsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_notifications: user_id is required")
	}
	return nil
}

// NotificationDTO is one feed entry.
type NotificationDTO struct {
	// ID is the notification identifier.
	ID string `json:"id"`

	// Type is the notification kind.
	Type notification.Type `json:"type"`

	// Message is the human-readable text.
	Message string `json:"message"`

	// RelatedID points at the session, badge or stake the entry is about.
	RelatedID string `json:"related_id,omitempty"`

	// Read reports whether the notification was read.
	Read bool `json:"read"`

	// CreatedAt is the creation time.
	CreatedAt time.Time `json:"created_at"`
}

// GetNotificationsResult contains the feed, newest first.
type GetNotificationsResult struct {
	// Notifications are the feed entries.
	Notifications []NotificationDTO `json:"notifications"`

	// UnreadCount is the total number of unread notifications,
	// independent of the UnreadOnly filter.
	UnreadCount int `json:"unread_count"`
}

// GetNotificationsHandler handles the GetNotificationsQuery.
type GetNotificationsHandler struct {
	notifications notification.Notifications
}

// NewGetNotificationsHandler creates a new GetNotificationsHandler.
func NewGetNotificationsHandler(notifications notification.Notifications) *GetNotificationsHandler {
	return &GetNotificationsHandler{notifications: notifications}
}

// Handle executes the notifications feed query.
func (h *GetNotificationsHandler) Handle(ctx context.Context, q GetNotificationsQuery) (*GetNotificationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	items, err := h.notifications.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetNotifications", shared.ErrNotFound, "failed to load notifications", err)
	}

	unread, err := h.notifications.CountUnread(ctx, q.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetNotifications", shared.ErrNotFound, "failed to count unread", err)
	}

	result := &GetNotificationsResult{
		Notifications: make([]NotificationDTO, 0, len(items)),
		UnreadCount:   unread,
	}

	for _, n := range items {
		if q.UnreadOnly && n.Read {
			continue
		}
		result.Notifications = append(result.Notifications, NotificationDTO{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			RelatedID: n.RelatedID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	sort.SliceStable(result.Notifications, func(i, j int) bool {
		return result.Notifications[i].CreatedAt.After(result.Notifications[j].CreatedAt)
	})

	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════

// BadgeDTO is one awarded badge.
type BadgeDTO struct {
	// ID is the badge identifier.
	ID string `json:"id"`

	// Name is the badge name.
	Name string `json:"name"`

	// Type is the badge category.
	Type notification.BadgeType `json:"type"`

	// Icon is the badge emoji.
	Icon string `json:"icon"`

	// AwardedAt is when the badge was granted.
	AwardedAt time.Time `json:"awarded_at"`
}

// GetBadgesResult contains a user's badges, newest first.
type GetBadgesResult struct {
	// Badges are the awarded badges.
	Badges []BadgeDTO `json:"badges"`
}

// GetBadgesHandler handles badge feed reads.
type GetBadgesHandler struct {
	badges notification.Badges
}

// NewGetBadgesHandler creates a new GetBadgesHandler.
func NewGetBadgesHandler(badges notification.Badges) *GetBadgesHandler {
	return &GetBadgesHandler{badges: badges}
}

// Handle returns the user's badges, newest first.
func (h *GetBadgesHandler) Handle(ctx context.Context, userID string) (*GetBadgesResult, error) {
	if userID == "" {
		return nil, errors.New("get_badges: user_id is required")
	}

	items, err := h.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, shared.WrapError("query", "GetBadges", shared.ErrNotFound, "failed to load badges", err)
	}

	result := &GetBadgesResult{Badges: make([]BadgeDTO, 0, len(items))}
	for _, b := range items {
		result.Badges = append(result.Badges, BadgeDTO{
			ID:        b.ID,
			Name:      b.Name,
			Type:      b.Type,
			Icon:      b.Icon,
			AwardedAt: b.AwardedAt,
		})
	}

	sort.SliceStable(result.Badges, func(i, j int) bool {
		return result.Badges[i].AwardedAt.After(result.Badges[j].AwardedAt)
	})

	return result, nil
}
