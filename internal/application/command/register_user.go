// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates a new account with the starting points balance.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the data to register a new user.
type RegisterUserCommand struct {
	// Username is the unique login name.
	Username string

	// Email is the user's email address.
	Email string

	// Password is the plaintext password to hash.
	Password string

	// FullName is the optional display name.
	FullName string

	// Bio is an optional self-description.
	Bio string

	// Location is an optional location string.
	Location string

	// CorrelationID for tracing.
	CorrelationID string
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return errors.New("register_user: username is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("register_user: email is required")
	}
	if len(c.Password) < MinPasswordLength {
		return fmt.Errorf("register_user: password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// RegisterUserResult contains the result of registration.
type RegisterUserResult struct {
	// UserID is the ID of the created user.
	UserID string

	// Points is the starting balance.
	Points int

	// Events contains domain events generated.
	Events []shared.Event
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	users          user.Directory
	eventPublisher shared.EventPublisher
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(users user.Directory, eventPublisher shared.EventPublisher) *RegisterUserHandler {
	return &RegisterUserHandler{
		users:          users,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register_user: hash password: %w", err)
	}

	u, err := user.NewUser(user.NewUserParams{
		ID:           uuid.NewString(),
		Username:     user.Username(strings.TrimSpace(cmd.Username)),
		Email:        strings.TrimSpace(cmd.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(cmd.FullName),
		Bio:          cmd.Bio,
		Location:     cmd.Location,
	})
	if err != nil {
		return nil, err
	}

	if err := h.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("register_user: %w", err)
	}

	event := shared.NewUserRegisteredEvent(u.ID, u.Username.String(), u.Email, int(u.Points))
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &RegisterUserResult{
		UserID: u.ID,
		Points: int(u.Points),
		Events: []shared.Event{event},
	}, nil
}
