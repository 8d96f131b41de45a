package user

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации живут в infrastructure/persistence. Домен знает только контракты.
// ══════════════════════════════════════════════════════════════════════════════

// Directory определяет контракт справочника пользователей.
type Directory interface {
	// Create сохраняет нового пользователя.
	Create(ctx context.Context, u *User) error

	// FindByID находит пользователя по внутреннему ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername находит пользователя по имени.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Update сохраняет изменения профиля и серии активности.
	Update(ctx context.Context, u *User) error

	// ListTopByPoints возвращает limit пользователей с наибольшим балансом.
	ListTopByPoints(ctx context.Context, limit int) ([]*User, error)
}

// Accounts определяет контракт операций с балансом очков.
// Единственная точка изменения баланса во всей системе.
type Accounts interface {
	// ApplyDelta атомарно применяет дельту к балансу пользователя.
	// Возвращает новый баланс. Если итог отрицательный, операция
	// отклоняется с ErrInsufficientPoints и баланс не меняется.
	ApplyDelta(ctx context.Context, userID string, delta int) (int, error)
}
