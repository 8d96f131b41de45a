// Package user содержит доменную модель пользователя платформы SkillChain.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Points представляет баланс очков пользователя.
// Баланс никогда не уходит в минус - это инвариант всей системы ставок.
type Points int

// IsValid проверяет, что баланс неотрицательный.
func (p Points) IsValid() bool {
	return p >= 0
}

// CanAfford проверяет, хватает ли очков на списание amount.
func (p Points) CanAfford(amount int) bool {
	return amount >= 0 && int(p) >= amount
}

// Add применяет дельту к балансу.
func (p Points) Add(delta int) Points {
	return Points(int(p) + delta)
}

// Username представляет уникальное имя пользователя.
type Username string

// IsValid проверяет корректность имени пользователя.
func (u Username) IsValid() bool {
	s := string(u)
	return len(s) >= 2 && len(s) <= 50 && !strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление имени.
func (u Username) String() string {
	return string(u)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль пользователя в системе.
type Role string

const (
	// RoleUser - обычный пользователь.
	RoleUser Role = "USER"
	// RoleAdmin - администратор.
	RoleAdmin Role = "ADMIN"
)

// IsValid проверяет, что роль корректна.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// InitialPoints - стартовый бонус очков при регистрации.
const InitialPoints = 500

// User - центральная сущность системы обмена навыками.
type User struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Username - уникальное имя пользователя.
	Username Username

	// Email - адрес электронной почты.
	Email string

	// PasswordHash - bcrypt-хэш пароля.
	PasswordHash string

	// FullName - полное имя для отображения.
	FullName string

	// Bio - краткая биография.
	Bio string

	// Location - город/страна пользователя.
	Location string

	// Points - текущий баланс очков.
	Points Points

	// StreakCount - текущая серия активных дней.
	StreakCount int

	// LastActivityDate - время последней активности (nil, если её не было).
	LastActivityDate *time.Time

	// Role - роль в системе.
	Role Role

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidUsername - невалидное имя пользователя.
	ErrInvalidUsername = shared.NewDomainError("user", "Validate", shared.ErrValidation, "invalid username: must be 2-50 chars without whitespace")

	// ErrInvalidEmail - невалидный email.
	ErrInvalidEmail = shared.NewDomainError("user", "Validate", shared.ErrValidation, "invalid email")

	// ErrInvalidPoints - невалидный баланс очков.
	ErrInvalidPoints = shared.NewDomainError("user", "Validate", shared.ErrNegativeValue, "invalid points: must be non-negative")

	// ErrInvalidRole - невалидная роль.
	ErrInvalidRole = shared.NewDomainError("user", "Validate", shared.ErrValidation, "invalid user role")

	// ErrUserNotFound - пользователь не найден.
	ErrUserNotFound = shared.NewDomainError("user", "Find", shared.ErrNotFound, "user not found")

	// ErrUserAlreadyExists - пользователь уже существует.
	ErrUserAlreadyExists = shared.NewDomainError("user", "Create", shared.ErrAlreadyExists, "user already exists")

	// ErrInsufficientPoints - недостаточно очков для списания.
	ErrInsufficientPoints = shared.NewDomainError("user", "ApplyDelta", shared.ErrRejected, "insufficient points")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewUserParams содержит параметры для создания нового пользователя.
type NewUserParams struct {
	ID           string
	Username     Username
	Email        string
	PasswordHash string
	FullName     string
	Bio          string
	Location     string
}

// NewUser создаёт нового пользователя с валидацией всех полей.
// Новый пользователь получает стартовый бонус InitialPoints.
func NewUser(params NewUserParams) (*User, error) {
	if params.ID == "" {
		return nil, errors.New("user id is required")
	}

	if !params.Username.IsValid() {
		return nil, ErrInvalidUsername
	}

	email := strings.TrimSpace(params.Email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if params.PasswordHash == "" {
		return nil, errors.New("password hash is required")
	}

	now := time.Now().UTC()

	return &User{
		ID:           params.ID,
		Username:     params.Username,
		Email:        email,
		PasswordHash: params.PasswordHash,
		FullName:     strings.TrimSpace(params.FullName),
		Bio:          params.Bio,
		Location:     params.Location,
		Points:       InitialPoints,
		StreakCount:  0,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GAMIFICATION: STREAK TRACKER
// Серия считается по календарным дням (UTC). Сравниваются только даты,
// время суток значения не имеет.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityOutcome описывает результат регистрации активности.
type ActivityOutcome struct {
	// Streak - серия после регистрации активности.
	Streak int

	// Continued - серия продолжена (+1).
	Continued bool

	// Broken - серия была сброшена из-за пропуска дней.
	Broken bool

	// PreviousStreak - серия до сброса (если Broken).
	PreviousStreak int
}

// RecordActivity регистрирует активность пользователя на момент now.
//   - Активности не было → серия := 1.
//   - Последняя активность вчера → серия += 1.
//   - Последняя активность раньше вчерашнего дня → серия := 1 (сброс).
//   - Последняя активность сегодня → серия не меняется.
//
// LastActivityDate всегда перезаписывается значением now.
func (u *User) RecordActivity(now time.Time) ActivityOutcome {
	outcome := ActivityOutcome{PreviousStreak: u.StreakCount}

	today := dateOnly(now)

	if u.LastActivityDate == nil {
		u.StreakCount = 1
	} else {
		lastDate := dateOnly(*u.LastActivityDate)
		yesterday := today.AddDate(0, 0, -1)

		switch {
		case lastDate.Equal(yesterday):
			u.StreakCount++
			outcome.Continued = true
		case lastDate.Before(yesterday):
			outcome.Broken = true
			u.StreakCount = 1
		}
		// lastDate == today: серия не меняется
	}

	ts := now
	u.LastActivityDate = &ts
	u.UpdatedAt = now.UTC()

	outcome.Streak = u.StreakCount
	return outcome
}

// Multiplier возвращает множитель вознаграждения по текущей серии.
// Пороги проверяются от большего к меньшему, первый подходящий выигрывает.
func (u *User) Multiplier() float64 {
	switch {
	case u.StreakCount >= 30:
		return 2.0
	case u.StreakCount >= 7:
		return 1.5
	case u.StreakCount >= 3:
		return 1.2
	default:
		return 1.0
	}
}

// dateOnly обрезает время до начала календарного дня (UTC).
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// ApplyPointsDelta применяет дельту к балансу очков.
// Возвращает ErrInsufficientPoints, если баланс ушёл бы в минус.
func (u *User) ApplyPointsDelta(delta int) error {
	next := u.Points.Add(delta)
	if !next.IsValid() {
		return ErrInsufficientPoints
	}

	u.Points = next
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// IsAdmin возвращает true для администраторов.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName возвращает имя для показа другим пользователям.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username.String()
}

// String возвращает строковое представление пользователя для логирования.
func (u *User) String() string {
	return fmt.Sprintf(
		"User{ID: %s, Username: %s, Points: %d, Streak: %d, Role: %s}",
		u.ID, u.Username, u.Points, u.StreakCount, u.Role,
	)
}

// Clone создаёт копию пользователя.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	clone := *u
	if u.LastActivityDate != nil {
		ts := *u.LastActivityDate
		clone.LastActivityDate = &ts
	}
	return &clone
}
