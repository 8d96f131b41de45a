package query

import (
	"context"
	"errors"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER SKILLS QUERY
// A user's declarations split into taught and wanted skills.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserSkillsQuery contains the skills-summary parameters.
type GetUserSkillsQuery struct {
	// UserID identifies the user.
	UserID string
}

// Validate validates the query.
func (q GetUserSkillsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_user_skills: user_id is required")
	}
	return nil
}

// UserSkillDTO is one declaration with its resolved skill title.
type UserSkillDTO struct {
	// SkillID is the catalog skill.
	SkillID string `json:"skill_id"`

	// Title is the skill's title.
	Title string `json:"title"`

	// Proficiency is the level for taught skills, empty for wanted ones.
	Proficiency string `json:"proficiency,omitempty"`
}

// GetUserSkillsResult contains the split declarations.
type GetUserSkillsResult struct {
	// Teaching are the skills the user offers.
	Teaching []UserSkillDTO `json:"teaching"`

	// Learning are the skills the user wants.
	Learning []UserSkillDTO `json:"learning"`
}

// GetUserSkillsHandler handles the GetUserSkillsQuery.
type GetUserSkillsHandler struct {
	catalog      skill.Catalog
	declarations skill.Declarations
}

// NewGetUserSkillsHandler creates a new GetUserSkillsHandler.
func NewGetUserSkillsHandler(catalog skill.Catalog, declarations skill.Declarations) *GetUserSkillsHandler {
	return &GetUserSkillsHandler{
		catalog:      catalog,
		declarations: declarations,
	}
}

// Handle executes the skills-summary query.
func (h *GetUserSkillsHandler) Handle(ctx context.Context, q GetUserSkillsQuery) (*GetUserSkillsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	declarations, err := h.declarations.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, shared.WrapError("query", "GetUserSkills", shared.ErrNotFound, "failed to load declarations", err)
	}

	result := &GetUserSkillsResult{
		Teaching: []UserSkillDTO{},
		Learning: []UserSkillDTO{},
	}

	for _, d := range declarations {
		dto := UserSkillDTO{SkillID: d.SkillID, Title: d.SkillID}
		if sk, err := h.catalog.FindByID(ctx, d.SkillID); err == nil {
			dto.Title = sk.Title
		}

		switch d.Type {
		case skill.TypeTeach:
			dto.Proficiency = d.Proficiency
			result.Teaching = append(result.Teaching, dto)
		case skill.TypeLearn:
			result.Learning = append(result.Learning, dto)
		}
	}

	return result, nil
}
