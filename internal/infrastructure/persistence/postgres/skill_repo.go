package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

// ══════════════════════════════════════════════════════════════════════════════
// SKILL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SkillRepository implements skill.Catalog and skill.Declarations for PostgreSQL.
type SkillRepository struct {
	conn *Connection
}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(conn *Connection) *SkillRepository {
	return &SkillRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new catalog entry.
func (r *SkillRepository) Create(ctx context.Context, s *skill.Skill) error {
	query := `
		INSERT INTO skills (id, title, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query, s.ID, s.Title, s.Category, s.Description, s.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return skill.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to create skill: %w", err)
	}

	return nil
}

// FindByID returns a skill by ID.
func (r *SkillRepository) FindByID(ctx context.Context, id string) (*skill.Skill, error) {
	query := `SELECT id, title, category, description, created_at FROM skills WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanSkill(row)
}

// FindByTitle returns a skill by case-insensitive title match.
func (r *SkillRepository) FindByTitle(ctx context.Context, title string) (*skill.Skill, error) {
	query := `
		SELECT id, title, category, description, created_at
		FROM skills
		WHERE LOWER(title) = LOWER($1)
	`

	row := r.conn.QueryRow(ctx, query, title)
	return r.scanSkill(row)
}

// List returns all catalog skills ordered by title.
func (r *SkillRepository) List(ctx context.Context) ([]*skill.Skill, error) {
	query := `SELECT id, title, category, description, created_at FROM skills ORDER BY title ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var skills []*skill.Skill
	for rows.Next() {
		s, err := r.scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}

	return skills, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// USER SKILL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserSkillRepository implements skill.Declarations for PostgreSQL.
type UserSkillRepository struct {
	conn *Connection
}

// NewUserSkillRepository creates a new UserSkillRepository.
func NewUserSkillRepository(conn *Connection) *UserSkillRepository {
	return &UserSkillRepository{conn: conn}
}

const userSkillColumns = `id, user_id, skill_id, skill_type, proficiency, created_at`

// Create saves a new user skill declaration.
func (r *UserSkillRepository) Create(ctx context.Context, us *skill.UserSkill) error {
	query := `
		INSERT INTO user_skills (id, user_id, skill_id, skill_type, proficiency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		us.ID,
		us.UserID,
		us.SkillID,
		string(us.Type),
		us.Proficiency,
		us.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return skill.ErrDuplicateDeclaration
		}
		return fmt.Errorf("failed to create user skill: %w", err)
	}

	return nil
}

// ListByUser returns all declarations for a user.
func (r *UserSkillRepository) ListByUser(ctx context.Context, userID string) ([]*skill.UserSkill, error) {
	query := `SELECT ` + userSkillColumns + ` FROM user_skills WHERE user_id = $1 ORDER BY created_at ASC`

	return r.queryUserSkills(ctx, query, userID)
}

// ListByUserAndType returns a user's declarations for one direction.
func (r *UserSkillRepository) ListByUserAndType(ctx context.Context, userID string, t skill.Type) ([]*skill.UserSkill, error) {
	query := `
		SELECT ` + userSkillColumns + `
		FROM user_skills
		WHERE user_id = $1 AND skill_type = $2
		ORDER BY created_at ASC
	`

	return r.queryUserSkills(ctx, query, userID, string(t))
}

// ListBySkillAndType returns all declarations for a skill and direction.
func (r *UserSkillRepository) ListBySkillAndType(ctx context.Context, skillID string, t skill.Type) ([]*skill.UserSkill, error) {
	query := `
		SELECT ` + userSkillColumns + `
		FROM user_skills
		WHERE skill_id = $1 AND skill_type = $2
		ORDER BY created_at ASC
	`

	return r.queryUserSkills(ctx, query, skillID, string(t))
}

// Exists reports whether a declaration with the given pair exists.
func (r *UserSkillRepository) Exists(ctx context.Context, userID, skillID string, t skill.Type) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_skills
			WHERE user_id = $1 AND skill_id = $2 AND skill_type = $3
		)
	`

	var exists bool
	err := r.conn.QueryRow(ctx, query, userID, skillID, string(t)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user skill existence: %w", err)
	}

	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *SkillRepository) scanSkill(row pgx.Row) (*skill.Skill, error) {
	var s skill.Skill

	err := row.Scan(&s.ID, &s.Title, &s.Category, &s.Description, &s.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, skill.ErrSkillNotFound
		}
		return nil, fmt.Errorf("failed to scan skill: %w", err)
	}

	return &s, nil
}

func (r *UserSkillRepository) queryUserSkills(ctx context.Context, query string, args ...interface{}) ([]*skill.UserSkill, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user skills: %w", err)
	}
	defer rows.Close()

	var result []*skill.UserSkill
	for rows.Next() {
		var us skill.UserSkill
		var skillType string

		err := rows.Scan(&us.ID, &us.UserID, &us.SkillID, &skillType, &us.Proficiency, &us.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user skill: %w", err)
		}

		us.Type = skill.Type(skillType)
		result = append(result, &us)
	}

	return result, rows.Err()
}
