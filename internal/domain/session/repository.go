package session

import "context"

// Repository определяет контракт хранилища сессий.
type Repository interface {
	// Create сохраняет новый запрос сессии.
	Create(ctx context.Context, s *Session) error

	// FindByID находит сессию по идентификатору.
	FindByID(ctx context.Context, id string) (*Session, error)

	// ListByParticipant возвращает сессии, где пользователь
	// выступает преподавателем или учеником, новые первыми.
	ListByParticipant(ctx context.Context, userID string) ([]*Session, error)

	// Update сохраняет изменение состояния, оценки и отзыва.
	Update(ctx context.Context, s *Session) error

	// CountCompletedByTeacher возвращает число завершённых сессий преподавателя.
	CountCompletedByTeacher(ctx context.Context, teacherID string) (int, error)
}
