package chain

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Chains определяет контракт хранилища цепочек навыков.
type Chains interface {
	// Create сохраняет цепочку вместе с узлами.
	Create(ctx context.Context, c *SkillChain) error

	// FindByID возвращает цепочку с узлами, отсортированными
	// по (Sequence, ID) по возрастанию.
	FindByID(ctx context.Context, id string) (*SkillChain, error)

	// FindByTitle находит цепочку по точному названию.
	FindByTitle(ctx context.Context, title string) (*SkillChain, error)

	// List возвращает все цепочки с узлами.
	List(ctx context.Context) ([]*SkillChain, error)
}

// Stakes определяет контракт хранилища ставок.
type Stakes interface {
	// Create атомарно списывает сумму ставки с баланса владельца
	// и сохраняет ставку. Либо происходит и то и другое, либо ничего.
	Create(ctx context.Context, s *Stake) error

	// FindByID находит ставку по идентификатору.
	FindByID(ctx context.Context, id string) (*Stake, error)

	// FindActiveByUserAndChain находит активную ставку пользователя на цепочку.
	FindActiveByUserAndChain(ctx context.Context, userID, chainID string) (*Stake, error)

	// ListByUser возвращает все ставки пользователя, новые первыми.
	ListByUser(ctx context.Context, userID string) ([]*Stake, error)

	// Update сохраняет изменение статуса и выплаты.
	Update(ctx context.Context, s *Stake) error

	// Settle атомарно сохраняет терминальное состояние ставки
	// и начисляет creditDelta очков владельцу (0 для сгоревших ставок).
	Settle(ctx context.Context, s *Stake, creditDelta int) error
}
