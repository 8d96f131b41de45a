package skill

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Catalog определяет контракт общего каталога навыков.
type Catalog interface {
	// Create сохраняет новую запись каталога.
	Create(ctx context.Context, s *Skill) error

	// FindByID находит навык по идентификатору.
	FindByID(ctx context.Context, id string) (*Skill, error)

	// FindByTitle находит навык по названию без учёта регистра.
	FindByTitle(ctx context.Context, title string) (*Skill, error)

	// List возвращает все навыки каталога, отсортированные по названию.
	List(ctx context.Context) ([]*Skill, error)
}

// Declarations определяет контракт объявлений пользователей.
type Declarations interface {
	// Create сохраняет новое объявление.
	// Дубликат пары (пользователь, навык, направление) отклоняется.
	Create(ctx context.Context, us *UserSkill) error

	// ListByUser возвращает все объявления пользователя.
	ListByUser(ctx context.Context, userID string) ([]*UserSkill, error)

	// ListByUserAndType возвращает объявления пользователя с заданным направлением.
	ListByUserAndType(ctx context.Context, userID string, t Type) ([]*UserSkill, error)

	// ListBySkillAndType возвращает объявления всех пользователей
	// для навыка с заданным направлением.
	ListBySkillAndType(ctx context.Context, skillID string, t Type) ([]*UserSkill, error)

	// Exists проверяет наличие объявления с такой парой (навык, направление).
	Exists(ctx context.Context, userID, skillID string, t Type) (bool, error)
}
