// Package chain содержит доменную модель цепочек навыков
// и ставок пользователей на их прохождение.
package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES: CHAIN & NODES
// ══════════════════════════════════════════════════════════════════════════════

// SkillChain - упорядоченная последовательность навыков, ведущая к цели.
// Цепочки создаются администратором и общие для всех пользователей.
type SkillChain struct {
	// ID - уникальный идентификатор цепочки.
	ID string

	// Title - название цепочки.
	Title string

	// Description - описание цели цепочки.
	Description string

	// Category - тематическая категория цепочки.
	Category string

	// Icon - эмодзи-иконка для витрины.
	Icon string

	// Nodes - узлы в порядке прохождения.
	Nodes []*Node

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// Node - один шаг цепочки, ссылается на навык каталога.
// Порядок задаётся парой (Sequence, ID): при равных Sequence
// побеждает меньший ID.
type Node struct {
	// ID - уникальный идентификатор узла.
	ID string

	// ChainID - цепочка, которой принадлежит узел.
	ChainID string

	// SkillID - навык каталога.
	SkillID string

	// Sequence - порядковый номер шага.
	Sequence int

	// Description - роль навыка в контексте этой цепочки.
	Description string
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY: STAKE
// ══════════════════════════════════════════════════════════════════════════════

// StakeDuration - срок на прохождение цепочки после создания ставки.
const StakeDuration = 30 * 24 * time.Hour

// StakeStatus определяет состояние ставки.
type StakeStatus string

const (
	// StakeInProgress - ставка активна, срок не истёк.
	StakeInProgress StakeStatus = "IN_PROGRESS"
	// StakeCompleted - цепочка пройдена, выплата начислена.
	StakeCompleted StakeStatus = "COMPLETED"
	// StakeFailed - срок истёк, ставка сгорела.
	StakeFailed StakeStatus = "FAILED"
)

// IsValid проверяет корректность статуса ставки.
func (s StakeStatus) IsValid() bool {
	switch s {
	case StakeInProgress, StakeCompleted, StakeFailed:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для уже рассчитанных ставок.
func (s StakeStatus) IsTerminal() bool {
	return s == StakeCompleted || s == StakeFailed
}

// Stake - ставка пользователя на прохождение цепочки.
// Очки списываются при создании и возвращаются с множителем при успехе.
type Stake struct {
	// ID - уникальный идентификатор ставки.
	ID string

	// UserID - владелец ставки.
	UserID string

	// ChainID - цепочка, на которую сделана ставка.
	ChainID string

	// Amount - количество поставленных очков.
	Amount int

	// Status - текущее состояние ставки.
	Status StakeStatus

	// Deadline - срок, до которого нужно пройти цепочку.
	Deadline time.Time

	// Reward - начисленная выплата (0 до расчёта).
	Reward int

	// CreatedAt - время создания ставки.
	CreatedAt time.Time

	// SettledAt - время расчёта (nil для активных).
	SettledAt *time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrChainNotFound - цепочка не найдена.
	ErrChainNotFound = shared.NewDomainError("chain", "Find", shared.ErrNotFound, "skill chain not found")

	// ErrStakeNotFound - ставка не найдена.
	ErrStakeNotFound = shared.NewDomainError("chain", "FindStake", shared.ErrNotFound, "stake not found")

	// ErrInvalidAmount - сумма ставки должна быть положительной.
	ErrInvalidAmount = shared.NewDomainError("chain", "CreateStake", shared.ErrValueOutOfRange, "stake amount must be positive")

	// ErrStakeSettled - ставка уже рассчитана.
	ErrStakeSettled = shared.NewDomainError("chain", "Settle", shared.ErrAlreadyProcessed, "stake already settled")

	// ErrActiveStakeExists - у пользователя уже есть активная ставка на цепочку.
	ErrActiveStakeExists = shared.NewDomainError("chain", "CreateStake", shared.ErrRejected, "active stake already exists for this chain")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORIES & DOMAIN LOGIC
// ══════════════════════════════════════════════════════════════════════════════

// NewStakeParams содержит параметры создания ставки.
type NewStakeParams struct {
	ID      string
	UserID  string
	ChainID string
	Amount  int
	Now     time.Time
}

// NewStake создаёт активную ставку со сроком Now + StakeDuration.
func NewStake(params NewStakeParams) (*Stake, error) {
	if params.UserID == "" || params.ChainID == "" {
		return nil, errors.New("user id and chain id are required")
	}

	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := params.Now.UTC()

	return &Stake{
		ID:        params.ID,
		UserID:    params.UserID,
		ChainID:   params.ChainID,
		Amount:    params.Amount,
		Status:    StakeInProgress,
		Deadline:  now.Add(StakeDuration),
		CreatedAt: now,
	}, nil
}

// IsExpired проверяет, истёк ли срок ставки на момент now.
func (s *Stake) IsExpired(now time.Time) bool {
	return now.After(s.Deadline)
}

// Complete переводит ставку в COMPLETED и фиксирует выплату.
// Выплата считается как Amount * multiplier с отбрасыванием дробной части.
func (s *Stake) Complete(multiplier float64, now time.Time) (int, error) {
	if s.Status.IsTerminal() {
		return 0, ErrStakeSettled
	}

	reward := int(float64(s.Amount) * multiplier)

	s.Status = StakeCompleted
	s.Reward = reward
	ts := now.UTC()
	s.SettledAt = &ts

	return reward, nil
}

// Fail переводит ставку в FAILED. Поставленные очки сгорают.
func (s *Stake) Fail(now time.Time) error {
	if s.Status.IsTerminal() {
		return ErrStakeSettled
	}

	s.Status = StakeFailed
	s.Reward = 0
	ts := now.UTC()
	s.SettledAt = &ts

	return nil
}

// OrderedNodes возвращает узлы цепочки в порядке прохождения.
// Предполагается, что репозиторий уже отдал их отсортированными;
// метод существует для читаемости вызывающего кода.
func (c *SkillChain) OrderedNodes() []*Node {
	return c.Nodes
}

// SkillIDs возвращает идентификаторы навыков цепочки в порядке прохождения.
func (c *SkillChain) SkillIDs() []string {
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.SkillID)
	}
	return ids
}

// String возвращает строковое представление ставки для логирования.
func (s *Stake) String() string {
	return fmt.Sprintf(
		"Stake{ID: %s, User: %s, Chain: %s, Amount: %d, Status: %s}",
		s.ID, s.UserID, s.ChainID, s.Amount, s.Status,
	)
}
