package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Directory and user.Accounts for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `
	id, username, email, password_hash, full_name, bio, location,
	points, streak_count, last_activity_date, role, created_at, updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// Directory
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, full_name, bio, location,
			points, streak_count, last_activity_date, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Username.String(),
		u.Email,
		u.PasswordHash,
		u.FullName,
		u.Bio,
		u.Location,
		int(u.Points),
		u.StreakCount,
		u.LastActivityDate,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID returns a user by internal ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanUser(row)
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	row := r.conn.QueryRow(ctx, query, username)
	return r.scanUser(row)
}

// Update updates profile fields, streak state and timestamps.
// The points balance is owned by ApplyDelta and is not written here.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			email = $1,
			password_hash = $2,
			full_name = $3,
			bio = $4,
			location = $5,
			streak_count = $6,
			last_activity_date = $7,
			role = $8,
			updated_at = $9
		WHERE id = $10
	`

	result, err := r.conn.Exec(ctx, query,
		u.Email,
		u.PasswordHash,
		u.FullName,
		u.Bio,
		u.Location,
		u.StreakCount,
		u.LastActivityDate,
		string(u.Role),
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// ListTopByPoints returns the users with the highest balances.
func (r *UserRepository) ListTopByPoints(ctx context.Context, limit int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY points DESC, username ASC LIMIT $1`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUserFromRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Accounts
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDelta atomically applies a points delta to the user's balance.
// The row is locked for the duration of the transaction so concurrent
// deltas serialize instead of double-spending.
func (r *UserRepository) ApplyDelta(ctx context.Context, userID string, delta int) (int, error) {
	var newBalance int

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		balance, err := applyDeltaTx(ctx, tx, userID, delta)
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

// applyDeltaTx applies a points delta inside an existing transaction.
// Used by stake creation so that escrow and stake insert commit together.
func applyDeltaTx(ctx context.Context, q Querier, userID string, delta int) (int, error) {
	var current int
	err := q.QueryRow(ctx,
		`SELECT points FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&current)
	if err != nil {
		if IsNoRows(err) {
			return 0, user.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to lock user balance: %w", err)
	}

	next := current + delta
	if next < 0 {
		return 0, user.ErrInsufficientPoints
	}

	_, err = q.Exec(ctx,
		`UPDATE users SET points = $1, updated_at = NOW() WHERE id = $2`,
		next, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update user balance: %w", err)
	}

	return next, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var username, role string
	var points int

	err := row.Scan(
		&u.ID,
		&username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Bio,
		&u.Location,
		&points,
		&u.StreakCount,
		&u.LastActivityDate,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Username = user.Username(username)
	u.Points = user.Points(points)
	u.Role = user.Role(role)

	return &u, nil
}

func (r *UserRepository) scanUserFromRows(rows pgx.Rows) (*user.User, error) {
	return r.scanUser(rows)
}
