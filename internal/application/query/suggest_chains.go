package query

import (
	"context"
	"errors"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUGGEST CHAINS QUERY
// Recommends skill chains based on what the user wants to learn. The advice
// itself comes from a pluggable advisor (remote service or local matcher).
// ══════════════════════════════════════════════════════════════════════════════

// MaxChainSuggestions caps how many chains one request recommends.
const MaxChainSuggestions = 2

// SuggestChainsQuery contains the suggestion parameters.
type SuggestChainsQuery struct {
	// UserID identifies the user asking for advice.
	UserID string
}

// Validate validates the query.
func (q SuggestChainsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("suggest_chains: user_id is required")
	}
	return nil
}

// ChainSuggestionDTO is one recommended chain.
type ChainSuggestionDTO struct {
	// ChainID is the recommended chain.
	ChainID string `json:"chain_id"`

	// Title is the chain's title.
	Title string `json:"title"`

	// Reason explains why the chain was picked, may be empty.
	Reason string `json:"reason,omitempty"`
}

// SuggestChainsResult contains the recommendations.
type SuggestChainsResult struct {
	// Suggestions are at most MaxChainSuggestions chains.
	Suggestions []ChainSuggestionDTO `json:"suggestions"`

	// Interests are the skill titles the advice was based on.
	Interests []string `json:"interests"`
}

// ChainAdvisor recommends chains for a set of learning interests.
type ChainAdvisor interface {
	SuggestChains(ctx context.Context, userID string, interests []string, limit int) ([]ChainSuggestionDTO, error)
}

// SuggestChainsHandler handles the SuggestChainsQuery.
type SuggestChainsHandler struct {
	catalog      skill.Catalog
	declarations skill.Declarations
	advisor      ChainAdvisor
}

// NewSuggestChainsHandler creates a new SuggestChainsHandler.
func NewSuggestChainsHandler(catalog skill.Catalog, declarations skill.Declarations, advisor ChainAdvisor) *SuggestChainsHandler {
	return &SuggestChainsHandler{
		catalog:      catalog,
		declarations: declarations,
		advisor:      advisor,
	}
}

// Handle executes the suggestion query. A user with no learning
// declarations gets an empty result without consulting the advisor.
func (h *SuggestChainsHandler) Handle(ctx context.Context, q SuggestChainsQuery) (*SuggestChainsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	wanted, err := h.declarations.ListByUserAndType(ctx, q.UserID, skill.TypeLearn)
	if err != nil {
		return nil, shared.WrapError("query", "SuggestChains", shared.ErrNotFound, "failed to load interests", err)
	}

	result := &SuggestChainsResult{
		Suggestions: []ChainSuggestionDTO{},
		Interests:   []string{},
	}
	if len(wanted) == 0 {
		return result, nil
	}

	for _, d := range wanted {
		title := d.SkillID
		if sk, err := h.catalog.FindByID(ctx, d.SkillID); err == nil {
			title = sk.Title
		}
		result.Interests = append(result.Interests, title)
	}

	suggestions, err := h.advisor.SuggestChains(ctx, q.UserID, result.Interests, MaxChainSuggestions)
	if err != nil {
		return nil, shared.WrapError("query", "SuggestChains", shared.ErrExternalService, "advisor request failed", err)
	}
	if len(suggestions) > MaxChainSuggestions {
		suggestions = suggestions[:MaxChainSuggestions]
	}
	result.Suggestions = suggestions

	return result, nil
}
