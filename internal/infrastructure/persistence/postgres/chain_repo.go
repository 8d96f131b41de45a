package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHAIN REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ChainRepository implements chain.Chains for PostgreSQL.
type ChainRepository struct {
	conn *Connection
}

// NewChainRepository creates a new ChainRepository.
func NewChainRepository(conn *Connection) *ChainRepository {
	return &ChainRepository{conn: conn}
}

// Create saves a chain together with its nodes.
func (r *ChainRepository) Create(ctx context.Context, c *chain.SkillChain) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO skill_chains (id, title, description, category, icon, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Title, c.Description, c.Category, c.Icon, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create chain: %w", err)
		}

		for _, n := range c.Nodes {
			_, err := tx.Exec(ctx,
				`INSERT INTO skill_chain_nodes (id, chain_id, skill_id, sequence_order, description) VALUES ($1, $2, $3, $4, $5)`,
				n.ID, c.ID, n.SkillID, n.Sequence, n.Description,
			)
			if err != nil {
				return fmt.Errorf("failed to create chain node: %w", err)
			}
		}

		return nil
	})
}

// FindByID returns a chain with nodes ordered by (sequence_order, id).
func (r *ChainRepository) FindByID(ctx context.Context, id string) (*chain.SkillChain, error) {
	query := `SELECT id, title, description, category, icon, created_at FROM skill_chains WHERE id = $1`

	var c chain.SkillChain
	err := r.conn.QueryRow(ctx, query, id).Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Icon, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, chain.ErrChainNotFound
		}
		return nil, fmt.Errorf("failed to scan chain: %w", err)
	}

	nodes, err := r.loadNodes(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Nodes = nodes

	return &c, nil
}

// FindByTitle returns a chain by exact title.
func (r *ChainRepository) FindByTitle(ctx context.Context, title string) (*chain.SkillChain, error) {
	query := `SELECT id FROM skill_chains WHERE title = $1`

	var id string
	err := r.conn.QueryRow(ctx, query, title).Scan(&id)
	if err != nil {
		if IsNoRows(err) {
			return nil, chain.ErrChainNotFound
		}
		return nil, fmt.Errorf("failed to find chain by title: %w", err)
	}

	return r.FindByID(ctx, id)
}

// List returns all chains with their nodes.
func (r *ChainRepository) List(ctx context.Context) ([]*chain.SkillChain, error) {
	query := `SELECT id, title, description, category, icon, created_at FROM skill_chains ORDER BY title ASC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}
	defer rows.Close()

	var chains []*chain.SkillChain
	for rows.Next() {
		var c chain.SkillChain
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chain: %w", err)
		}
		chains = append(chains, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range chains {
		nodes, err := r.loadNodes(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Nodes = nodes
	}

	return chains, nil
}

func (r *ChainRepository) loadNodes(ctx context.Context, chainID string) ([]*chain.Node, error) {
	query := `
		SELECT id, chain_id, skill_id, sequence_order, description
		FROM skill_chain_nodes
		WHERE chain_id = $1
		ORDER BY sequence_order ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*chain.Node
	for rows.Next() {
		var n chain.Node
		if err := rows.Scan(&n.ID, &n.ChainID, &n.SkillID, &n.Sequence, &n.Description); err != nil {
			return nil, fmt.Errorf("failed to scan chain node: %w", err)
		}
		nodes = append(nodes, &n)
	}

	return nodes, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// STAKE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StakeRepository implements chain.Stakes for PostgreSQL.
type StakeRepository struct {
	conn *Connection
}

// NewStakeRepository creates a new StakeRepository.
func NewStakeRepository(conn *Connection) *StakeRepository {
	return &StakeRepository{conn: conn}
}

const stakeColumns = `id, user_id, chain_id, amount, status, deadline, reward, created_at, settled_at`

// Create atomically debits the stake amount from the owner's balance and
// inserts the stake. A concurrent duplicate is rejected by the partial
// unique index on active stakes.
func (r *StakeRepository) Create(ctx context.Context, s *chain.Stake) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := applyDeltaTx(ctx, tx, s.UserID, -s.Amount); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO chain_stakes (id, user_id, chain_id, amount, status, deadline, reward, created_at, settled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			s.ID, s.UserID, s.ChainID, s.Amount, string(s.Status),
			s.Deadline, s.Reward, s.CreatedAt, s.SettledAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return chain.ErrActiveStakeExists
			}
			return fmt.Errorf("failed to create stake: %w", err)
		}

		return nil
	})
}

// FindByID returns a stake by ID.
func (r *StakeRepository) FindByID(ctx context.Context, id string) (*chain.Stake, error) {
	query := `SELECT ` + stakeColumns + ` FROM chain_stakes WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanStake(row)
}

// FindActiveByUserAndChain returns the user's active stake on a chain.
func (r *StakeRepository) FindActiveByUserAndChain(ctx context.Context, userID, chainID string) (*chain.Stake, error) {
	query := `
		SELECT ` + stakeColumns + `
		FROM chain_stakes
		WHERE user_id = $1 AND chain_id = $2 AND status = 'IN_PROGRESS'
	`

	row := r.conn.QueryRow(ctx, query, userID, chainID)
	return r.scanStake(row)
}

// ListByUser returns all stakes of a user, newest first.
func (r *StakeRepository) ListByUser(ctx context.Context, userID string) ([]*chain.Stake, error) {
	query := `SELECT ` + stakeColumns + ` FROM chain_stakes WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stakes: %w", err)
	}
	defer rows.Close()

	var stakes []*chain.Stake
	for rows.Next() {
		s, err := r.scanStake(rows)
		if err != nil {
			return nil, err
		}
		stakes = append(stakes, s)
	}

	return stakes, rows.Err()
}

// Update persists status, reward and settlement time changes.
func (r *StakeRepository) Update(ctx context.Context, s *chain.Stake) error {
	result, err := r.conn.Exec(ctx, `
		UPDATE chain_stakes SET status = $1, reward = $2, settled_at = $3
		WHERE id = $4
	`, string(s.Status), s.Reward, s.SettledAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update stake: %w", err)
	}

	if result.RowsAffected() == 0 {
		return chain.ErrStakeNotFound
	}

	return nil
}

// Settle atomically persists the terminal stake state and credits the
// owner's balance. Only a stake still IN_PROGRESS can be settled, so a
// concurrent double settlement loses the race and changes nothing.
func (r *StakeRepository) Settle(ctx context.Context, s *chain.Stake, creditDelta int) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE chain_stakes SET status = $1, reward = $2, settled_at = $3
			WHERE id = $4 AND status = 'IN_PROGRESS'
		`, string(s.Status), s.Reward, s.SettledAt, s.ID)
		if err != nil {
			return fmt.Errorf("failed to settle stake: %w", err)
		}

		if result.RowsAffected() == 0 {
			return chain.ErrStakeSettled
		}

		if creditDelta != 0 {
			if _, err := applyDeltaTx(ctx, tx, s.UserID, creditDelta); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *StakeRepository) scanStake(row pgx.Row) (*chain.Stake, error) {
	var s chain.Stake
	var status string

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.ChainID,
		&s.Amount,
		&status,
		&s.Deadline,
		&s.Reward,
		&s.CreatedAt,
		&s.SettledAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, chain.ErrStakeNotFound
		}
		return nil, fmt.Errorf("failed to scan stake: %w", err)
	}

	s.Status = chain.StakeStatus(status)
	return &s, nil
}
