package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/session"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
)

func requestSessionFixture(t *testing.T) (*RequestSessionHandler, *fakeNotifications, *fakeSink, *capturingPublisher) {
	t.Helper()

	users := newFakeUsers(
		testUser("teacher-1", "teacher", 500),
		testUser("learner-1", "learner", 500),
	)
	catalog := newFakeCatalog(testSkill("s-1", "Go Programming"))
	declarations := &fakeDeclarations{}
	err := declarations.Create(context.Background(), &skill.UserSkill{
		ID: "d-1", UserID: "teacher-1", SkillID: "s-1", Type: skill.TypeTeach,
	})
	assert.NoError(t, err)

	notifications := &fakeNotifications{}
	sink := &fakeSink{}
	publisher := &capturingPublisher{}
	handler := NewRequestSessionHandler(
		users, catalog, declarations, newFakeSessions(), notifications, sink, publisher,
	)
	return handler, notifications, sink, publisher
}

func TestRequestSession_Success(t *testing.T) {
	handler, notifications, sink, publisher := requestSessionFixture(t)

	result, err := handler.Handle(context.Background(), RequestSessionCommand{
		LearnerID: "learner-1",
		TeacherID: "teacher-1",
		SkillID:   "s-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, session.StatusPending, result.Status)
	assert.NotEmpty(t, result.SessionID)

	assert.Len(t, notifications.items, 1)
	assert.Equal(t, "teacher-1", notifications.items[0].UserID)
	assert.Equal(t, notification.TypeSessionRequest, notifications.items[0].Type)
	assert.Contains(t, notifications.items[0].Message, "Go Programming")
	assert.Equal(t, result.SessionID, notifications.items[0].RelatedID)
	assert.Len(t, sink.delivered, 1)

	events := publisher.byType(shared.EventSessionRequested)
	assert.Len(t, events, 1)
}

func TestRequestSession_TeacherDoesNotTeachSkill(t *testing.T) {
	handler, notifications, _, publisher := requestSessionFixture(t)

	_, err := handler.Handle(context.Background(), RequestSessionCommand{
		LearnerID: "teacher-1",
		TeacherID: "learner-1",
		SkillID:   "s-1",
	})

	assert.ErrorIs(t, err, ErrDoesNotTeach)
	assert.True(t, shared.IsRejected(err))
	assert.Empty(t, notifications.items)
	assert.Empty(t, publisher.events)
}

func TestRequestSession_SelfSessionRejected(t *testing.T) {
	handler, _, _, _ := requestSessionFixture(t)

	_, err := handler.Handle(context.Background(), RequestSessionCommand{
		LearnerID: "teacher-1",
		TeacherID: "teacher-1",
		SkillID:   "s-1",
	})

	assert.ErrorIs(t, err, session.ErrSelfSession)
}

func TestRequestSession_UnknownSkill(t *testing.T) {
	handler, _, _, _ := requestSessionFixture(t)

	_, err := handler.Handle(context.Background(), RequestSessionCommand{
		LearnerID: "learner-1",
		TeacherID: "teacher-1",
		SkillID:   "ghost",
	})

	assert.ErrorIs(t, err, skill.ErrSkillNotFound)
}
