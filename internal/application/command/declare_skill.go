package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// DECLARE SKILL COMMAND
// A user declares a skill they can teach or want to learn.
// Catalog skills are created lazily on first declaration.
// ══════════════════════════════════════════════════════════════════════════════

// DeclareSkillCommand contains the data to declare a skill.
type DeclareSkillCommand struct {
	// UserID is the declaring user.
	UserID string

	// Title is the skill title; matched case-insensitively against the catalog.
	Title string

	// Category is used only when the skill does not exist yet.
	Category string

	// Description is used only when the skill does not exist yet.
	Description string

	// Type is TEACH or LEARN.
	Type skill.Type

	// Proficiency is the self-assessed level; stored only for TEACH.
	Proficiency string
}

// Validate validates the command.
func (c DeclareSkillCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("declare_skill: user_id is required")
	}
	if !c.Type.IsValid() {
		return skill.ErrInvalidType
	}
	return nil
}

// DeclareSkillResult contains the result of declaring a skill.
type DeclareSkillResult struct {
	// SkillID is the catalog skill the declaration points to.
	SkillID string

	// DeclarationID is the ID of the created declaration.
	DeclarationID string

	// SkillCreated reports whether the catalog skill was created by this call.
	SkillCreated bool

	// Proficiency is the stored proficiency level.
	Proficiency string
}

// DeclareSkillHandler handles the DeclareSkillCommand.
type DeclareSkillHandler struct {
	users        user.Directory
	catalog      skill.Catalog
	declarations skill.Declarations
}

// NewDeclareSkillHandler creates a new DeclareSkillHandler.
func NewDeclareSkillHandler(users user.Directory, catalog skill.Catalog, declarations skill.Declarations) *DeclareSkillHandler {
	return &DeclareSkillHandler{
		users:        users,
		catalog:      catalog,
		declarations: declarations,
	}
}

// Handle executes the declare skill command.
func (h *DeclareSkillHandler) Handle(ctx context.Context, cmd DeclareSkillCommand) (*DeclareSkillResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return nil, fmt.Errorf("declare_skill: %w", err)
	}

	sk, created, err := h.findOrCreateSkill(ctx, cmd.Title, cmd.Category, cmd.Description)
	if err != nil {
		return nil, fmt.Errorf("declare_skill: %w", err)
	}

	declaration, err := skill.NewUserSkill(skill.NewUserSkillParams{
		ID:          uuid.NewString(),
		UserID:      cmd.UserID,
		SkillID:     sk.ID,
		Type:        cmd.Type,
		Proficiency: cmd.Proficiency,
	})
	if err != nil {
		return nil, err
	}

	if err := h.declarations.Create(ctx, declaration); err != nil {
		return nil, fmt.Errorf("declare_skill: %w", err)
	}

	return &DeclareSkillResult{
		SkillID:       sk.ID,
		DeclarationID: declaration.ID,
		SkillCreated:  created,
		Proficiency:   declaration.Proficiency,
	}, nil
}

// findOrCreateSkill resolves the catalog skill by title, creating it on miss.
func (h *DeclareSkillHandler) findOrCreateSkill(ctx context.Context, title, category, description string) (*skill.Skill, bool, error) {
	existing, err := h.catalog.FindByTitle(ctx, title)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, skill.ErrSkillNotFound) {
		return nil, false, err
	}

	created, err := skill.NewSkill(uuid.NewString(), title, category, description)
	if err != nil {
		return nil, false, err
	}

	if err := h.catalog.Create(ctx, created); err != nil {
		// Concurrent declaration created it first.
		if errors.Is(err, skill.ErrDuplicateTitle) {
			sk, findErr := h.catalog.FindByTitle(ctx, title)
			return sk, false, findErr
		}
		return nil, false, err
	}

	return created, true, nil
}
