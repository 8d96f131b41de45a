package notification

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Notifications определяет контракт хранилища уведомлений.
type Notifications interface {
	// Create сохраняет новое уведомление.
	Create(ctx context.Context, n *Notification) error

	// ListByUser возвращает уведомления пользователя, новые первыми.
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)

	// MarkRead помечает уведомление прочитанным.
	// Уведомление обязано принадлежать пользователю.
	MarkRead(ctx context.Context, userID, notificationID string) error

	// CountUnread возвращает число непрочитанных уведомлений.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Badges определяет контракт хранилища наград.
type Badges interface {
	// Create сохраняет новую награду.
	Create(ctx context.Context, b *Badge) error

	// ListByUser возвращает награды пользователя, новые первыми.
	ListByUser(ctx context.Context, userID string) ([]*Badge, error)

	// CountByUser возвращает общее число наград пользователя.
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Sink определяет контракт доставки уведомлений во внешний канал.
// Ошибка доставки не обязана отменять породившую её операцию.
type Sink interface {
	// Deliver отправляет уведомление в канал доставки.
	Deliver(ctx context.Context, n *Notification) error
}
