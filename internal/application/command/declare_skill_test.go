package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

func TestDeclareSkill_CreatesCatalogEntryOnMiss(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	catalog := newFakeCatalog()
	declarations := &fakeDeclarations{}
	handler := NewDeclareSkillHandler(users, catalog, declarations)

	result, err := handler.Handle(context.Background(), DeclareSkillCommand{
		UserID:   "u-1",
		Title:    "Go Programming",
		Category: "Backend",
		Type:     skill.TypeTeach,
	})

	assert.NoError(t, err)
	assert.True(t, result.SkillCreated)
	assert.NotEmpty(t, result.SkillID)
	assert.NotEmpty(t, result.DeclarationID)

	created, _ := catalog.FindByID(context.Background(), result.SkillID)
	assert.Equal(t, "Backend", created.Category)

	exists, _ := declarations.Exists(context.Background(), "u-1", result.SkillID, skill.TypeTeach)
	assert.True(t, exists)
}

func TestDeclareSkill_LearnDeclarationHasNoProficiency(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	declarations := &fakeDeclarations{}
	handler := NewDeclareSkillHandler(users, catalog, declarations)

	_, err := handler.Handle(context.Background(), DeclareSkillCommand{
		UserID:      "u-1",
		Title:       "Go Programming",
		Type:        skill.TypeLearn,
		Proficiency: "Expert",
	})
	assert.NoError(t, err)

	stored, _ := declarations.ListByUserAndType(context.Background(), "u-1", skill.TypeLearn)
	assert.Len(t, stored, 1)
	assert.Empty(t, stored[0].Proficiency)
}

func TestDeclareSkill_ReusesExistingSkillCaseInsensitive(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	handler := NewDeclareSkillHandler(users, catalog, &fakeDeclarations{})

	result, err := handler.Handle(context.Background(), DeclareSkillCommand{
		UserID: "u-1",
		Title:  "  go programming ",
		Type:   skill.TypeLearn,
	})

	assert.NoError(t, err)
	assert.False(t, result.SkillCreated)
	assert.Equal(t, "s-1", result.SkillID)
}

func TestDeclareSkill_DuplicateDeclarationRejected(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	declarations := &fakeDeclarations{}
	handler := NewDeclareSkillHandler(users, catalog, declarations)

	cmd := DeclareSkillCommand{UserID: "u-1", Title: "Go Programming", Type: skill.TypeTeach}

	_, err := handler.Handle(context.Background(), cmd)
	assert.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, skill.ErrDuplicateDeclaration)
}

func TestDeclareSkill_SameSkillBothDirectionsAllowed(t *testing.T) {
	users := newFakeUsers(testUser("u-1", "alice", 500))
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	declarations := &fakeDeclarations{}
	handler := NewDeclareSkillHandler(users, catalog, declarations)

	_, err := handler.Handle(context.Background(), DeclareSkillCommand{
		UserID: "u-1", Title: "Go Programming", Type: skill.TypeTeach,
	})
	assert.NoError(t, err)

	_, err = handler.Handle(context.Background(), DeclareSkillCommand{
		UserID: "u-1", Title: "Go Programming", Type: skill.TypeLearn,
	})
	assert.NoError(t, err)
}

func TestDeclareSkill_UnknownUser(t *testing.T) {
	handler := NewDeclareSkillHandler(newFakeUsers(), newFakeCatalog(), &fakeDeclarations{})

	_, err := handler.Handle(context.Background(), DeclareSkillCommand{
		UserID: "ghost",
		Title:  "Go Programming",
		Type:   skill.TypeTeach,
	})

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDeclareSkill_InvalidType(t *testing.T) {
	handler := NewDeclareSkillHandler(newFakeUsers(), newFakeCatalog(), &fakeDeclarations{})

	_, err := handler.Handle(context.Background(), DeclareSkillCommand{
		UserID: "u-1",
		Title:  "Go Programming",
		Type:   skill.Type("BOTH"),
	})

	assert.ErrorIs(t, err, skill.ErrInvalidType)
}
