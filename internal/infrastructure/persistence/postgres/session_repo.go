package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements session.Repository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

const sessionColumns = `
	id, skill_id, teacher_id, learner_id, status, scheduled_at,
	description, meeting_link, location, rating, feedback, created_at, updated_at
`

// Create saves a new session request.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO sessions (
			id, skill_id, teacher_id, learner_id, status, scheduled_at,
			description, meeting_link, location, rating, feedback, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.SkillID,
		s.TeacherID,
		s.LearnerID,
		string(s.Status),
		s.ScheduledAt,
		s.Description,
		s.MeetingLink,
		s.Location,
		s.Rating,
		s.Feedback,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// FindByID returns a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanSession(row)
}

// ListByParticipant returns sessions where the user is teacher or learner.
func (r *SessionRepository) ListByParticipant(ctx context.Context, userID string) ([]*session.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE teacher_id = $1 OR learner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Update persists status, rating and feedback changes.
func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `
		UPDATE sessions SET
			status = $1,
			scheduled_at = $2,
			meeting_link = $3,
			location = $4,
			rating = $5,
			feedback = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		string(s.Status),
		s.ScheduledAt,
		s.MeetingLink,
		s.Location,
		s.Rating,
		s.Feedback,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}

// CountCompletedByTeacher returns the number of completed sessions taught.
func (r *SessionRepository) CountCompletedByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE teacher_id = $1 AND status = 'COMPLETED'`

	var count int
	err := r.conn.QueryRow(ctx, query, teacherID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}

	return count, nil
}

func (r *SessionRepository) scanSession(row pgx.Row) (*session.Session, error) {
	var s session.Session
	var status string

	err := row.Scan(
		&s.ID,
		&s.SkillID,
		&s.TeacherID,
		&s.LearnerID,
		&status,
		&s.ScheduledAt,
		&s.Description,
		&s.MeetingLink,
		&s.Location,
		&s.Rating,
		&s.Feedback,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	s.Status = session.Status(status)
	return &s, nil
}
