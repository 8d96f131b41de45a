package query

import (
	"context"
	"errors"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHAIN CATALOG QUERIES
// Pre-seeded learning roadmaps with their ordered steps.
// ══════════════════════════════════════════════════════════════════════════════

// ChainStepDTO is one ordered step of a chain.
type ChainStepDTO struct {
	// SkillID is the catalog skill for this step.
	SkillID string `json:"skill_id"`

	// SkillTitle is the skill's title.
	SkillTitle string `json:"skill_title"`

	// Description explains the skill's role within this chain.
	Description string `json:"description"`

	// Sequence is the step order.
	Sequence int `json:"sequence"`
}

// ChainDTO is a skill chain with resolved step titles.
type ChainDTO struct {
	// ID is the chain identifier.
	ID string `json:"id"`

	// Title is the chain name.
	Title string `json:"title"`

	// Description explains the chain's goal.
	Description string `json:"description"`

	// Category groups chains on the catalog page.
	Category string `json:"category"`

	// Icon is the emoji shown next to the chain title.
	Icon string `json:"icon"`

	// Steps are the ordered steps.
	Steps []ChainStepDTO `json:"steps"`
}

// ListChainsResult contains the full chain catalog.
type ListChainsResult struct {
	// Chains are all chains, ordered by title.
	Chains []ChainDTO `json:"chains"`
}

// ListChainsHandler handles chain catalog reads.
type ListChainsHandler struct {
	chains  chain.Chains
	catalog skill.Catalog
}

// NewListChainsHandler creates a new ListChainsHandler.
func NewListChainsHandler(chains chain.Chains, catalog skill.Catalog) *ListChainsHandler {
	return &ListChainsHandler{
		chains:  chains,
		catalog: catalog,
	}
}

// Handle returns the full chain catalog.
func (h *ListChainsHandler) Handle(ctx context.Context) (*ListChainsResult, error) {
	chains, err := h.chains.List(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "ListChains", shared.ErrNotFound, "failed to load chains", err)
	}

	result := &ListChainsResult{Chains: make([]ChainDTO, 0, len(chains))}
	for _, c := range chains {
		dto, err := h.toDTO(ctx, c)
		if err != nil {
			return nil, err
		}
		result.Chains = append(result.Chains, dto)
	}

	return result, nil
}

// GetChain returns one chain by ID.
func (h *ListChainsHandler) GetChain(ctx context.Context, chainID string) (*ChainDTO, error) {
	if chainID == "" {
		return nil, errors.New("get_chain: chain_id is required")
	}

	c, err := h.chains.FindByID(ctx, chainID)
	if err != nil {
		return nil, shared.WrapError("query", "GetChain", shared.ErrNotFound, "failed to load chain", err)
	}

	dto, err := h.toDTO(ctx, c)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// toDTO resolves skill titles for the chain's ordered nodes.
func (h *ListChainsHandler) toDTO(ctx context.Context, c *chain.SkillChain) (ChainDTO, error) {
	dto := ChainDTO{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Icon:        c.Icon,
		Steps:       make([]ChainStepDTO, 0, len(c.Nodes)),
	}

	for _, node := range c.OrderedNodes() {
		title := node.SkillID
		if sk, err := h.catalog.FindByID(ctx, node.SkillID); err == nil {
			title = sk.Title
		}

		dto.Steps = append(dto.Steps, ChainStepDTO{
			SkillID:     node.SkillID,
			SkillTitle:  title,
			Description: node.Description,
			Sequence:    node.Sequence,
		})
	}

	return dto, nil
}
