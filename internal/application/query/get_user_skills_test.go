package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

func TestGetUserSkills_SplitsByDirection(t *testing.T) {
	catalog := newFakeCatalog(
		testSkill("s-go", "Go Programming"),
		testSkill("s-sql", "SQL"),
	)
	declarations := &fakeDeclarations{}
	declarations.declare("u-1", "s-go", skill.TypeTeach, "Senior")
	declarations.declare("u-1", "s-sql", skill.TypeLearn, "")
	declarations.declare("u-2", "s-go", skill.TypeLearn, "")

	handler := NewGetUserSkillsHandler(catalog, declarations)

	result, err := handler.Handle(context.Background(), GetUserSkillsQuery{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Len(t, result.Teaching, 1)
	assert.Equal(t, "Go Programming", result.Teaching[0].Title)
	assert.Equal(t, "Senior", result.Teaching[0].Proficiency)

	assert.Len(t, result.Learning, 1)
	assert.Equal(t, "SQL", result.Learning[0].Title)
	assert.Empty(t, result.Learning[0].Proficiency)
}

func TestGetUserSkills_EmptyForUserWithoutDeclarations(t *testing.T) {
	handler := NewGetUserSkillsHandler(newFakeCatalog(), &fakeDeclarations{})

	result, err := handler.Handle(context.Background(), GetUserSkillsQuery{UserID: "u-1"})

	assert.NoError(t, err)
	assert.Empty(t, result.Teaching)
	assert.Empty(t, result.Learning)
}
