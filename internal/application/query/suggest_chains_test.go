package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

type fakeAdvisor struct {
	suggestions []ChainSuggestionDTO
	err         error

	gotInterests []string
	gotLimit     int
	calls        int
}

func (a *fakeAdvisor) SuggestChains(_ context.Context, _ string, interests []string, limit int) ([]ChainSuggestionDTO, error) {
	a.calls++
	a.gotInterests = interests
	a.gotLimit = limit
	return a.suggestions, a.err
}

func TestSuggestChains_PassesResolvedInterestTitles(t *testing.T) {
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"), testSkill("s-2", "SQL"))
	declarations := &fakeDeclarations{}
	declarations.declare("u-1", "s-1", skill.TypeLearn, "")
	declarations.declare("u-1", "s-2", skill.TypeLearn, "")
	declarations.declare("u-1", "s-2", skill.TypeTeach, "Senior")

	advisor := &fakeAdvisor{suggestions: []ChainSuggestionDTO{
		{ChainID: "c-1", Title: "Backend Developer Path", Reason: "matches Go Programming"},
	}}
	handler := NewSuggestChainsHandler(catalog, declarations, advisor)

	result, err := handler.Handle(context.Background(), SuggestChainsQuery{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"Go Programming", "SQL"}, advisor.gotInterests)
	assert.Equal(t, MaxChainSuggestions, advisor.gotLimit)
	assert.Len(t, result.Suggestions, 1)
	assert.Equal(t, "c-1", result.Suggestions[0].ChainID)
}

func TestSuggestChains_NoInterestsSkipsAdvisor(t *testing.T) {
	catalog := newFakeCatalog()
	declarations := &fakeDeclarations{}
	advisor := &fakeAdvisor{}
	handler := NewSuggestChainsHandler(catalog, declarations, advisor)

	result, err := handler.Handle(context.Background(), SuggestChainsQuery{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, 0, advisor.calls)
}

func TestSuggestChains_TruncatesOversizedAdvice(t *testing.T) {
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	declarations := &fakeDeclarations{}
	declarations.declare("u-1", "s-1", skill.TypeLearn, "")

	advisor := &fakeAdvisor{suggestions: []ChainSuggestionDTO{
		{ChainID: "c-1", Title: "A"},
		{ChainID: "c-2", Title: "B"},
		{ChainID: "c-3", Title: "C"},
	}}
	handler := NewSuggestChainsHandler(catalog, declarations, advisor)

	result, err := handler.Handle(context.Background(), SuggestChainsQuery{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Len(t, result.Suggestions, MaxChainSuggestions)
}

func TestSuggestChains_AdvisorFailurePropagates(t *testing.T) {
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	declarations := &fakeDeclarations{}
	declarations.declare("u-1", "s-1", skill.TypeLearn, "")

	advisor := &fakeAdvisor{err: errors.New("advisor down")}
	handler := NewSuggestChainsHandler(catalog, declarations, advisor)

	_, err := handler.Handle(context.Background(), SuggestChainsQuery{UserID: "u-1"})

	assert.ErrorContains(t, err, "advisor down")
}
