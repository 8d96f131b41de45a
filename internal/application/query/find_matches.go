// Package query contains read operations (CQRS - Queries).
// Queries never modify state - they only read and return data.
package query

import (
	"context"
	"errors"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND MATCHES QUERY
// One-hop reciprocal matching: for every skill the user wants to learn,
// find the users who teach it. A match is mutually beneficial when that
// teacher in turn wants to learn something the requester teaches.
// ══════════════════════════════════════════════════════════════════════════════

// NotSpecifiedProficiency is shown when a teacher left the level empty.
const NotSpecifiedProficiency = "Not specified"

// FindMatchesQuery contains the matching parameters.
type FindMatchesQuery struct {
	// UserID identifies the requesting user.
	UserID string
}

// Validate validates the query.
func (q FindMatchesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("find_matches: user_id is required")
	}
	return nil
}

// MatchDTO is one (wanted skill, teacher) pairing.
type MatchDTO struct {
	// TeacherID is the matched teacher.
	TeacherID string `json:"teacher_id"`

	// Username is the teacher's login name.
	Username string `json:"username"`

	// FullName is the teacher's display name.
	FullName string `json:"full_name"`

	// Bio is the teacher's self-description.
	Bio string `json:"bio"`

	// Location is the teacher's location.
	Location string `json:"location"`

	// SkillID is the matched catalog skill.
	SkillID string `json:"skill_id"`

	// SkillTitle is the matched skill's title.
	SkillTitle string `json:"skill_title"`

	// Proficiency is the teacher's level, NotSpecifiedProficiency when empty.
	Proficiency string `json:"proficiency"`

	// Mutual reports whether the teacher wants a skill the requester teaches.
	Mutual bool `json:"mutual"`
}

// FindMatchesResult contains the full, unpaginated match list.
type FindMatchesResult struct {
	// Matches holds mutually-beneficial pairings first, generation order
	// preserved within each half.
	Matches []MatchDTO `json:"matches"`

	// MutualCount is the number of mutually-beneficial matches.
	MutualCount int `json:"mutual_count"`
}

// FindMatchesHandler handles the FindMatchesQuery.
type FindMatchesHandler struct {
	users        user.Directory
	catalog      skill.Catalog
	declarations skill.Declarations
}

// NewFindMatchesHandler creates a new FindMatchesHandler.
func NewFindMatchesHandler(users user.Directory, catalog skill.Catalog, declarations skill.Declarations) *FindMatchesHandler {
	return &FindMatchesHandler{
		users:        users,
		catalog:      catalog,
		declarations: declarations,
	}
}

// Handle executes the matching query.
// An unknown user produces an empty result, not an error: anonymous
// callers get an empty match list.
func (h *FindMatchesHandler) Handle(ctx context.Context, q FindMatchesQuery) (*FindMatchesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.users.FindByID(ctx, q.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return &FindMatchesResult{Matches: []MatchDTO{}}, nil
		}
		return nil, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "failed to load user", err)
	}

	wanted, err := h.declarations.ListByUserAndType(ctx, q.UserID, skill.TypeLearn)
	if err != nil {
		return nil, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "failed to load wanted skills", err)
	}

	offered, err := h.declarations.ListByUserAndType(ctx, q.UserID, skill.TypeTeach)
	if err != nil {
		return nil, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "failed to load offered skills", err)
	}
	offeredIDs := make(map[string]bool, len(offered))
	for _, o := range offered {
		offeredIDs[o.SkillID] = true
	}

	var matches []MatchDTO
	for _, want := range wanted {
		teachers, err := h.declarations.ListBySkillAndType(ctx, want.SkillID, skill.TypeTeach)
		if err != nil {
			return nil, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "failed to load teachers", err)
		}

		for _, teaching := range teachers {
			if teaching.UserID == q.UserID {
				continue
			}

			match, err := h.buildMatch(ctx, teaching, offeredIDs)
			if err != nil {
				return nil, err
			}
			matches = append(matches, match)
		}
	}

	return partitionMutualFirst(matches), nil
}

// buildMatch resolves teacher and skill details for one pairing.
func (h *FindMatchesHandler) buildMatch(ctx context.Context, teaching *skill.UserSkill, offeredIDs map[string]bool) (MatchDTO, error) {
	teacher, err := h.users.FindByID(ctx, teaching.UserID)
	if err != nil {
		return MatchDTO{}, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "failed to load teacher", err)
	}

	skillTitle := teaching.SkillID
	if sk, err := h.catalog.FindByID(ctx, teaching.SkillID); err == nil {
		skillTitle = sk.Title
	}

	proficiency := teaching.Proficiency
	if proficiency == "" {
		proficiency = NotSpecifiedProficiency
	}

	mutual, err := h.isMutual(ctx, teaching.UserID, offeredIDs)
	if err != nil {
		return MatchDTO{}, err
	}

	return MatchDTO{
		TeacherID:   teacher.ID,
		Username:    teacher.Username.String(),
		FullName:    teacher.FullName,
		Bio:         teacher.Bio,
		Location:    teacher.Location,
		SkillID:     teaching.SkillID,
		SkillTitle:  skillTitle,
		Proficiency: proficiency,
		Mutual:      mutual,
	}, nil
}

// isMutual reports whether the teacher wants any skill the requester offers.
func (h *FindMatchesHandler) isMutual(ctx context.Context, teacherID string, offeredIDs map[string]bool) (bool, error) {
	if len(offeredIDs) == 0 {
		return false, nil
	}

	theirWants, err := h.declarations.ListByUserAndType(ctx, teacherID, skill.TypeLearn)
	if err != nil {
		return false, shared.WrapError("query", "FindMatches", shared.ErrNotFound, "failed to load teacher wants", err)
	}

	for _, w := range theirWants {
		if offeredIDs[w.SkillID] {
			return true, nil
		}
	}
	return false, nil
}

// partitionMutualFirst stable-partitions matches: mutual ones first,
// relative order preserved inside each partition.
func partitionMutualFirst(matches []MatchDTO) *FindMatchesResult {
	result := &FindMatchesResult{Matches: make([]MatchDTO, 0, len(matches))}

	for _, m := range matches {
		if m.Mutual {
			result.Matches = append(result.Matches, m)
		}
	}
	result.MutualCount = len(result.Matches)

	for _, m := range matches {
		if !m.Mutual {
			result.Matches = append(result.Matches, m)
		}
	}

	return result
}
