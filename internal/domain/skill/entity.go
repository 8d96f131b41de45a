// Package skill содержит доменную модель каталога навыков
// и пользовательских объявлений о преподавании и обучении.
package skill

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет направление объявления навыка.
type Type string

const (
	// TypeTeach - пользователь готов преподавать навык.
	TypeTeach Type = "TEACH"
	// TypeLearn - пользователь хочет освоить навык.
	TypeLearn Type = "LEARN"
)

// IsValid проверяет корректность направления.
func (t Type) IsValid() bool {
	switch t {
	case TypeTeach, TypeLearn:
		return true
	default:
		return false
	}
}

// Opposite возвращает противоположное направление.
// Используется движком взаимного подбора партнёров.
func (t Type) Opposite() Type {
	if t == TypeTeach {
		return TypeLearn
	}
	return TypeTeach
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Skill - запись каталога навыков. Каталог общий для всех пользователей,
// записи создаются лениво при первом объявлении.
type Skill struct {
	// ID - уникальный идентификатор навыка.
	ID string

	// Title - название навыка. Уникально без учёта регистра.
	Title string

	// Category - тематическая категория ("Web Dev", "Marketing" и т.п.).
	Category string

	// Description - описание навыка (может быть пустым).
	Description string

	// CreatedAt - время создания записи каталога.
	CreatedAt time.Time
}

// UserSkill - объявление пользователя: "я преподаю X" или "я учу X".
// Пара (пользователь, навык, направление) уникальна.
type UserSkill struct {
	// ID - уникальный идентификатор объявления.
	ID string

	// UserID - владелец объявления.
	UserID string

	// SkillID - навык из каталога.
	SkillID string

	// Type - направление: TEACH или LEARN.
	Type Type

	// Proficiency - уровень владения в свободной форме.
	// Заполняется только для TEACH, для LEARN всегда пуст.
	Proficiency string

	// CreatedAt - время создания объявления.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTitle - пустое или слишком длинное название навыка.
	ErrInvalidTitle = shared.NewDomainError("skill", "Validate", shared.ErrValidation, "invalid skill title")

	// ErrInvalidType - неизвестное направление объявления.
	ErrInvalidType = shared.NewDomainError("skill", "Validate", shared.ErrValidation, "invalid skill type: must be TEACH or LEARN")

	// ErrSkillNotFound - навык не найден в каталоге.
	ErrSkillNotFound = shared.NewDomainError("skill", "Find", shared.ErrNotFound, "skill not found")

	// ErrDuplicateTitle - навык с таким названием уже есть в каталоге.
	ErrDuplicateTitle = shared.NewDomainError("skill", "Create", shared.ErrAlreadyExists, "skill title already exists")

	// ErrDuplicateDeclaration - объявление с таким направлением уже есть.
	ErrDuplicateDeclaration = shared.NewDomainError("skill", "Declare", shared.ErrRejected, "skill already declared with this type")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORIES
// ══════════════════════════════════════════════════════════════════════════════

// NewSkill создаёт запись каталога. Название нормализуется по пробелам,
// регистр сохраняется как ввёл первый пользователь.
func NewSkill(id, title, category, description string) (*Skill, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 100 {
		return nil, ErrInvalidTitle
	}

	return &Skill{
		ID:          id,
		Title:       title,
		Category:    strings.TrimSpace(category),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewUserSkillParams содержит параметры объявления навыка.
type NewUserSkillParams struct {
	ID          string
	UserID      string
	SkillID     string
	Type        Type
	Proficiency string
}

// NewUserSkill создаёт объявление пользователя.
// Уровень владения хранится только для TEACH, для LEARN он всегда пуст.
func NewUserSkill(params NewUserSkillParams) (*UserSkill, error) {
	if params.UserID == "" || params.SkillID == "" {
		return nil, errors.New("user id and skill id are required")
	}

	if !params.Type.IsValid() {
		return nil, ErrInvalidType
	}

	proficiency := ""
	if params.Type == TypeTeach {
		proficiency = strings.TrimSpace(params.Proficiency)
	}

	return &UserSkill{
		ID:          params.ID,
		UserID:      params.UserID,
		SkillID:     params.SkillID,
		Type:        params.Type,
		Proficiency: proficiency,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// TitleKey возвращает ключ для сравнения названий без учёта регистра.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// String возвращает строковое представление навыка.
func (s *Skill) String() string {
	return fmt.Sprintf("Skill{ID: %s, Title: %s}", s.ID, s.Title)
}
