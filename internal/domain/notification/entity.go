// Package notification содержит доменную модель уведомлений и наград.
package notification

import (
	"fmt"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет тип уведомления.
type Type string

const (
	// TypeSessionRequest - входящий запрос на сессию.
	TypeSessionRequest Type = "SESSION_REQUEST"
	// TypeSessionAccepted - запрос на сессию принят.
	TypeSessionAccepted Type = "SESSION_ACCEPTED"
	// TypeSessionCancelled - сессия отменена.
	TypeSessionCancelled Type = "SESSION_CANCELLED"
	// TypeSessionCompleted - сессия завершена.
	TypeSessionCompleted Type = "SESSION_COMPLETED"
	// TypeBadgeAwarded - вручена награда.
	TypeBadgeAwarded Type = "BADGE_AWARDED"
	// TypeStakeSettled - ставка рассчитана (выигрыш или проигрыш).
	TypeStakeSettled Type = "STAKE_SETTLED"
)

// IsValid проверяет корректность типа уведомления.
func (t Type) IsValid() bool {
	switch t {
	case TypeSessionRequest, TypeSessionAccepted, TypeSessionCancelled,
		TypeSessionCompleted, TypeBadgeAwarded, TypeStakeSettled:
		return true
	default:
		return false
	}
}

// BadgeType определяет категорию награды.
type BadgeType string

const (
	// BadgeLearner - награды за достижения в обучении.
	BadgeLearner BadgeType = "LEARNER"
	// BadgeTeacher - награды за достижения в преподавании.
	BadgeTeacher BadgeType = "TEACHER"
)

// Названия и иконки наград, вручаемых автоматически.
const (
	// BadgeFirstSteps вручается за первую завершённую сессию в роли ученика.
	BadgeFirstSteps     = "First Steps"
	BadgeFirstStepsIcon = "🎓"
	// BadgeTopTeacher вручается преподавателю за сессию с оценкой 5.
	BadgeTopTeacher     = "Top Teacher"
	BadgeTopTeacherIcon = "🌟"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Notification - уведомление для пользователя.
type Notification struct {
	// ID - уникальный идентификатор уведомления.
	ID string

	// UserID - получатель.
	UserID string

	// Type - тип уведомления.
	Type Type

	// Message - человекочитаемый текст.
	Message string

	// Read - прочитано ли уведомление.
	Read bool

	// RelatedID - идентификатор связанной сущности: сессии, награды
	// или ставки. Пустой, если уведомление ни к чему не привязано.
	RelatedID string

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// Badge - награда пользователя. Записи только добавляются,
// удаление и изменение не предусмотрены.
type Badge struct {
	// ID - уникальный идентификатор награды.
	ID string

	// UserID - владелец награды.
	UserID string

	// Name - название награды.
	Name string

	// Type - категория награды.
	Type BadgeType

	// Icon - эмодзи-иконка награды.
	Icon string

	// AwardedByID - пользователь, вручивший награду.
	// nil означает системное вручение.
	AwardedByID *string

	// AwardedAt - время вручения.
	AwardedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidType - неизвестный тип уведомления.
	ErrInvalidType = shared.NewDomainError("notification", "Validate", shared.ErrValidation, "invalid notification type")

	// ErrNotificationNotFound - уведомление не найдено.
	ErrNotificationNotFound = shared.NewDomainError("notification", "Find", shared.ErrNotFound, "notification not found")

	// ErrEmptyMessage - пустой текст уведомления.
	ErrEmptyMessage = shared.NewDomainError("notification", "Validate", shared.ErrEmptyValue, "notification message is empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORIES
// ══════════════════════════════════════════════════════════════════════════════

// NewNotification создаёт непрочитанное уведомление.
// relatedID привязывает уведомление к сессии, награде или ставке.
func NewNotification(id, userID string, t Type, message, relatedID string) (*Notification, error) {
	if !t.IsValid() {
		return nil, ErrInvalidType
	}

	if message == "" {
		return nil, ErrEmptyMessage
	}

	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      t,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewBadge создаёт системную награду (AwardedByID = nil).
func NewBadge(id, userID, name string, t BadgeType, icon string) *Badge {
	return &Badge{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Type:      t,
		Icon:      icon,
		AwardedAt: time.Now().UTC(),
	}
}

// MarkRead помечает уведомление прочитанным.
func (n *Notification) MarkRead() {
	n.Read = true
}

// String возвращает строковое представление уведомления.
func (n *Notification) String() string {
	return fmt.Sprintf("Notification{ID: %s, User: %s, Type: %s}", n.ID, n.UserID, n.Type)
}
