// Package session содержит доменную модель учебной сессии
// между преподавателем и учеником.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS & CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет состояние сессии.
type Status string

const (
	// StatusPending - ученик отправил запрос, преподаватель ещё не ответил.
	StatusPending Status = "PENDING"
	// StatusAccepted - преподаватель принял запрос.
	StatusAccepted Status = "ACCEPTED"
	// StatusCancelled - сессия отменена одной из сторон.
	StatusCancelled Status = "CANCELLED"
	// StatusCompleted - сессия завершена учеником.
	StatusCompleted Status = "COMPLETED"
)

// IsValid проверяет корректность статуса.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для состояний, из которых переходы запрещены.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Вознаграждение за завершённую сессию.
const (
	// TeacherReward - очки преподавателю за завершённую сессию.
	TeacherReward = 50
	// LearnerReward - очки ученику за завершённую сессию.
	LearnerReward = 10
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session - учебная сессия: один навык, один преподаватель, один ученик.
type Session struct {
	// ID - уникальный идентификатор сессии.
	ID string

	// SkillID - навык, по которому идёт обучение.
	SkillID string

	// TeacherID - пользователь-преподаватель.
	TeacherID string

	// LearnerID - пользователь-ученик, инициатор запроса.
	LearnerID string

	// Status - текущее состояние.
	Status Status

	// ScheduledAt - согласованное время проведения (nil, если не задано).
	ScheduledAt *time.Time

	// Description - тема и пожелания ученика к сессии.
	Description string

	// MeetingLink - ссылка для онлайн-сессии (пустая для офлайна).
	MeetingLink string

	// Location - место встречи для офлайн-сессии.
	Location string

	// Rating - оценка преподавателя от 1 до 5 (nil до завершения).
	Rating *int

	// Feedback - текстовый отзыв ученика.
	Feedback string

	// CreatedAt - время создания запроса.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения состояния.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSessionNotFound - сессия не найдена.
	ErrSessionNotFound = shared.NewDomainError("session", "Find", shared.ErrNotFound, "session not found")

	// ErrInvalidStatus - неизвестный статус сессии.
	ErrInvalidStatus = shared.NewDomainError("session", "Validate", shared.ErrValidation, "invalid session status")

	// ErrSelfSession - преподаватель и ученик совпадают.
	ErrSelfSession = shared.NewDomainError("session", "Request", shared.ErrInvalidInput, "teacher and learner must be different users")

	// ErrNotParticipant - пользователь не является стороной сессии.
	ErrNotParticipant = shared.NewDomainError("session", "UpdateStatus", shared.ErrForbidden, "user is not a participant of this session")

	// ErrTerminalState - сессия в терминальном состоянии, переходы запрещены.
	ErrTerminalState = shared.NewDomainError("session", "UpdateStatus", shared.ErrStateTransition, "session is in a terminal state")

	// ErrOnlyLearnerCompletes - завершить сессию может только ученик.
	ErrOnlyLearnerCompletes = shared.NewDomainError("session", "UpdateStatus", shared.ErrRejected, "only the learner can complete a session")

	// ErrInvalidRating - оценка вне диапазона 1..5.
	ErrInvalidRating = shared.NewDomainError("session", "Validate", shared.ErrValueOutOfRange, "rating must be between 1 and 5")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// NewSessionParams содержит параметры запроса сессии.
type NewSessionParams struct {
	ID          string
	SkillID     string
	TeacherID   string
	LearnerID   string
	ScheduledAt *time.Time
	Description string
	MeetingLink string
	Location    string
}

// NewSession создаёт запрос сессии в состоянии PENDING.
func NewSession(params NewSessionParams) (*Session, error) {
	if params.SkillID == "" || params.TeacherID == "" || params.LearnerID == "" {
		return nil, errors.New("skill id, teacher id and learner id are required")
	}

	if params.TeacherID == params.LearnerID {
		return nil, ErrSelfSession
	}

	now := time.Now().UTC()

	return &Session{
		ID:          params.ID,
		SkillID:     params.SkillID,
		TeacherID:   params.TeacherID,
		LearnerID:   params.LearnerID,
		Status:      StatusPending,
		ScheduledAt: params.ScheduledAt,
		Description: strings.TrimSpace(params.Description),
		MeetingLink: params.MeetingLink,
		Location:    params.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// StatusChange описывает запрошенный переход состояния.
type StatusChange struct {
	// ActorID - пользователь, выполняющий переход.
	ActorID string

	// NewStatus - целевое состояние.
	NewStatus Status

	// Rating - оценка при завершении (только для COMPLETED).
	Rating *int

	// Feedback - отзыв при завершении.
	Feedback string
}

// ApplyStatusChange выполняет переход состояния со всеми проверками:
//   - актор обязан быть преподавателем или учеником сессии;
//   - из терминального состояния переходы запрещены;
//   - COMPLETED доступен только ученику;
//   - оценка, если указана, обязана лежать в диапазоне 1..5.
//
// Оценка и отзыв сохраняются только при переходе в COMPLETED.
func (s *Session) ApplyStatusChange(change StatusChange) error {
	if change.ActorID != s.TeacherID && change.ActorID != s.LearnerID {
		return ErrNotParticipant
	}

	if s.Status.IsTerminal() {
		return ErrTerminalState
	}

	if !change.NewStatus.IsValid() {
		return ErrInvalidStatus
	}

	if change.NewStatus == StatusCompleted {
		if change.ActorID != s.LearnerID {
			return ErrOnlyLearnerCompletes
		}

		if change.Rating != nil && (*change.Rating < 1 || *change.Rating > 5) {
			return ErrInvalidRating
		}

		s.Rating = change.Rating
		s.Feedback = strings.TrimSpace(change.Feedback)
	}

	s.Status = change.NewStatus
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// IsParticipant проверяет, что пользователь является стороной сессии.
func (s *Session) IsParticipant(userID string) bool {
	return userID == s.TeacherID || userID == s.LearnerID
}

// CounterpartOf возвращает вторую сторону сессии относительно userID.
func (s *Session) CounterpartOf(userID string) string {
	if userID == s.TeacherID {
		return s.LearnerID
	}
	return s.TeacherID
}

// String возвращает строковое представление сессии для логирования.
func (s *Session) String() string {
	return fmt.Sprintf(
		"Session{ID: %s, Skill: %s, Teacher: %s, Learner: %s, Status: %s}",
		s.ID, s.SkillID, s.TeacherID, s.LearnerID, s.Status,
	)
}
