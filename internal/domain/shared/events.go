// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// User events
	EventUserRegistered  EventType = "user.registered"
	EventPointsChanged   EventType = "user.points_changed"
	EventStreakUpdated   EventType = "user.streak_updated"
	EventStreakBroken    EventType = "user.streak_broken"

	// Skill events
	EventSkillCreated   EventType = "skill.created"
	EventSkillDeclared  EventType = "skill.declared"

	// Session events
	EventSessionRequested EventType = "session.requested"
	EventSessionAccepted  EventType = "session.accepted"
	EventSessionCancelled EventType = "session.cancelled"
	EventSessionCompleted EventType = "session.completed"

	// Stake events
	EventStakeCreated   EventType = "stake.created"
	EventStakeCompleted EventType = "stake.completed"
	EventStakeFailed    EventType = "stake.failed"

	// Notification events
	EventBadgeAwarded       EventType = "notification.badge_awarded"
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// User Events
// ═══════════════════════════════════════════════════════════════════════════

// UserRegisteredEvent is emitted when a new user registers.
type UserRegisteredEvent struct {
	BaseEvent
	Username      string `json:"username"`
	Email         string `json:"email"`
	InitialPoints int    `json:"initial_points"`
}

// Payload implements Event interface.
func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":       e.Username,
		"email":          e.Email,
		"initial_points": e.InitialPoints,
	}
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent.
func NewUserRegisteredEvent(userID, username, email string, initialPoints int) UserRegisteredEvent {
	return UserRegisteredEvent{
		BaseEvent:     NewBaseEvent(EventUserRegistered, userID),
		Username:      username,
		Email:         email,
		InitialPoints: initialPoints,
	}
}

// PointsChangedEvent is emitted when a user's point balance changes.
type PointsChangedEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	Delta      int    `json:"delta"`
	NewBalance int    `json:"new_balance"`
	Source     string `json:"source"` // e.g., "session_reward", "stake_escrow", "stake_payout"
}

// Payload implements Event interface.
func (e PointsChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"delta":       e.Delta,
		"new_balance": e.NewBalance,
		"source":      e.Source,
	}
}

// NewPointsChangedEvent creates a new PointsChangedEvent.
func NewPointsChangedEvent(userID string, delta, newBalance int, source string) PointsChangedEvent {
	return PointsChangedEvent{
		BaseEvent:  NewBaseEvent(EventPointsChanged, userID),
		UserID:     userID,
		Delta:      delta,
		NewBalance: newBalance,
		Source:     source,
	}
}

// StreakBrokenEvent is emitted when a user's daily streak resets after a gap.
type StreakBrokenEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	PreviousStreak int    `json:"previous_streak"`
	DaysMissed     int    `json:"days_missed"`
}

// Payload implements Event interface.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"previous_streak": e.PreviousStreak,
		"days_missed":     e.DaysMissed,
	}
}

// NewStreakBrokenEvent creates a new StreakBrokenEvent.
func NewStreakBrokenEvent(userID string, previousStreak, daysMissed int) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, userID),
		UserID:         userID,
		PreviousStreak: previousStreak,
		DaysMissed:     daysMissed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Session Events
// ═══════════════════════════════════════════════════════════════════════════

// SessionStatusChangedEvent is emitted on every session lifecycle transition.
type SessionStatusChangedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	TeacherID string `json:"teacher_id"`
	LearnerID string `json:"learner_id"`
	SkillName string `json:"skill_name"`
	NewStatus string `json:"new_status"`
	Rating    int    `json:"rating,omitempty"`
}

// Payload implements Event interface.
func (e SessionStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"teacher_id": e.TeacherID,
		"learner_id": e.LearnerID,
		"skill_name": e.SkillName,
		"new_status": e.NewStatus,
		"rating":     e.Rating,
	}
}

// NewSessionStatusChangedEvent creates a session lifecycle event of the given type.
func NewSessionStatusChangedEvent(eventType EventType, sessionID, teacherID, learnerID, skillName, newStatus string) SessionStatusChangedEvent {
	return SessionStatusChangedEvent{
		BaseEvent: NewBaseEvent(eventType, sessionID),
		SessionID: sessionID,
		TeacherID: teacherID,
		LearnerID: learnerID,
		SkillName: skillName,
		NewStatus: newStatus,
	}
}

// WithRating attaches the learner's rating to a completion event.
func (e SessionStatusChangedEvent) WithRating(rating int) SessionStatusChangedEvent {
	e.Rating = rating
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Stake Events
// ═══════════════════════════════════════════════════════════════════════════

// StakeSettledEvent is emitted when a stake is created or settled.
type StakeSettledEvent struct {
	BaseEvent
	StakeID string `json:"stake_id"`
	UserID  string `json:"user_id"`
	ChainID string `json:"chain_id"`
	Amount  int    `json:"amount"`
	Reward  int    `json:"reward,omitempty"`
}

// Payload implements Event interface.
func (e StakeSettledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"stake_id": e.StakeID,
		"user_id":  e.UserID,
		"chain_id": e.ChainID,
		"amount":   e.Amount,
		"reward":   e.Reward,
	}
}

// NewStakeSettledEvent creates a stake lifecycle event of the given type.
func NewStakeSettledEvent(eventType EventType, stakeID, userID, chainID string, amount, reward int) StakeSettledEvent {
	return StakeSettledEvent{
		BaseEvent: NewBaseEvent(eventType, stakeID),
		StakeID:   stakeID,
		UserID:    userID,
		ChainID:   chainID,
		Amount:    amount,
		Reward:    reward,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeAwardedEvent is emitted when a badge is granted to a user.
type BadgeAwardedEvent struct {
	BaseEvent
	BadgeID   string `json:"badge_id"`
	UserID    string `json:"user_id"`
	BadgeName string `json:"badge_name"`
	Category  string `json:"category"`
}

// Payload implements Event interface.
func (e BadgeAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"badge_id":   e.BadgeID,
		"user_id":    e.UserID,
		"badge_name": e.BadgeName,
		"category":   e.Category,
	}
}

// NewBadgeAwardedEvent creates a new BadgeAwardedEvent.
func NewBadgeAwardedEvent(badgeID, userID, badgeName, category string) BadgeAwardedEvent {
	return BadgeAwardedEvent{
		BaseEvent: NewBaseEvent(EventBadgeAwarded, badgeID),
		BadgeID:   badgeID,
		UserID:    userID,
		BadgeName: badgeName,
		Category:  category,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish publishes an event to all subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all event types.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
