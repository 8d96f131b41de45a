package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

type stubNotifications struct {
	items []*notification.Notification
}

func (s *stubNotifications) Create(ctx context.Context, n *notification.Notification) error {
	s.items = append(s.items, n)
	return nil
}

func (s *stubNotifications) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	return s.items, nil
}

func (s *stubNotifications) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

func (s *stubNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	return len(s.items), nil
}

type stubInvalidator struct {
	calls int
}

func (s *stubInvalidator) Invalidate(ctx context.Context) error {
	s.calls++
	return nil
}

func TestOnStakeSettled_CompletedNotifiesAndInvalidates(t *testing.T) {
	notifications := &stubNotifications{}
	invalidator := &stubInvalidator{}
	handler := NewOnStakeSettledHandler(notifications, nil, invalidator, nil)

	event := shared.NewStakeSettledEvent(shared.EventStakeCompleted, "st-1", "u-1", "c-1", 100, 150)

	err := handler.Handle(event)

	assert.NoError(t, err)
	assert.Len(t, notifications.items, 1)
	assert.Equal(t, "u-1", notifications.items[0].UserID)
	assert.Equal(t, notification.TypeStakeSettled, notifications.items[0].Type)
	assert.Equal(t, "st-1", notifications.items[0].RelatedID)
	assert.Contains(t, notifications.items[0].Message, "150")
	assert.Equal(t, 1, invalidator.calls)
}

func TestOnStakeSettled_FailedNotifiesWithoutInvalidation(t *testing.T) {
	notifications := &stubNotifications{}
	invalidator := &stubInvalidator{}
	handler := NewOnStakeSettledHandler(notifications, nil, invalidator, nil)

	event := shared.NewStakeSettledEvent(shared.EventStakeFailed, "st-1", "u-1", "c-1", 100, 0)

	err := handler.Handle(event)

	assert.NoError(t, err)
	assert.Len(t, notifications.items, 1)
	assert.Contains(t, notifications.items[0].Message, "expired")
	// A failed stake credits nothing, the snapshot is still valid.
	assert.Zero(t, invalidator.calls)
}

func TestOnStakeSettled_IgnoresForeignEvents(t *testing.T) {
	notifications := &stubNotifications{}
	handler := NewOnStakeSettledHandler(notifications, nil, nil, nil)

	event := shared.NewUserRegisteredEvent("u-1", "alice", "alice@example.com", 500)

	err := handler.Handle(event)

	assert.NoError(t, err)
	assert.Empty(t, notifications.items)
}
