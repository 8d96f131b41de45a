package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()

	s, err := NewSession(NewSessionParams{
		ID:        "ses-1",
		SkillID:   "s-go",
		TeacherID: "teacher-1",
		LearnerID: "learner-1",
	})
	assert.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

func TestNewSession_StartsPending(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, StatusPending, s.Status)
	assert.Nil(t, s.Rating)
}

func TestNewSession_RejectsSelfSession(t *testing.T) {
	_, err := NewSession(NewSessionParams{
		ID:        "ses-1",
		SkillID:   "s-go",
		TeacherID: "u-1",
		LearnerID: "u-1",
	})
	assert.ErrorIs(t, err, ErrSelfSession)
}

func TestApplyStatusChange_OutsiderForbidden(t *testing.T) {
	s := newTestSession(t)

	err := s.ApplyStatusChange(StatusChange{ActorID: "stranger", NewStatus: StatusAccepted})
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Equal(t, StatusPending, s.Status)
}

func TestApplyStatusChange_TeacherAccepts(t *testing.T) {
	s := newTestSession(t)

	err := s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: StatusAccepted})
	assert.NoError(t, err)
	assert.Equal(t, StatusAccepted, s.Status)
}

func TestApplyStatusChange_OnlyLearnerCompletes(t *testing.T) {
	s := newTestSession(t)
	assert.NoError(t, s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: StatusAccepted}))

	err := s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: StatusCompleted})
	assert.ErrorIs(t, err, ErrOnlyLearnerCompletes)

	err = s.ApplyStatusChange(StatusChange{
		ActorID:   "learner-1",
		NewStatus: StatusCompleted,
		Rating:    intPtr(5),
		Feedback:  "  great session  ",
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, 5, *s.Rating)
	assert.Equal(t, "great session", s.Feedback)
}

func TestApplyStatusChange_RatingRange(t *testing.T) {
	s := newTestSession(t)

	err := s.ApplyStatusChange(StatusChange{ActorID: "learner-1", NewStatus: StatusCompleted, Rating: intPtr(0)})
	assert.ErrorIs(t, err, ErrInvalidRating)

	err = s.ApplyStatusChange(StatusChange{ActorID: "learner-1", NewStatus: StatusCompleted, Rating: intPtr(6)})
	assert.ErrorIs(t, err, ErrInvalidRating)

	// Completion without a rating is allowed.
	err = s.ApplyStatusChange(StatusChange{ActorID: "learner-1", NewStatus: StatusCompleted})
	assert.NoError(t, err)
	assert.Nil(t, s.Rating)
}

func TestApplyStatusChange_TerminalStatesFrozen(t *testing.T) {
	s := newTestSession(t)
	assert.NoError(t, s.ApplyStatusChange(StatusChange{ActorID: "learner-1", NewStatus: StatusCancelled}))

	err := s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: StatusAccepted})
	assert.ErrorIs(t, err, ErrTerminalState)

	s = newTestSession(t)
	assert.NoError(t, s.ApplyStatusChange(StatusChange{ActorID: "learner-1", NewStatus: StatusCompleted, Rating: intPtr(4)}))

	err = s.ApplyStatusChange(StatusChange{ActorID: "learner-1", NewStatus: StatusCancelled})
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestApplyStatusChange_BackToPending(t *testing.T) {
	s := newTestSession(t)
	assert.NoError(t, s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: StatusAccepted}))

	// A participant may move an accepted session back to PENDING.
	err := s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: StatusPending})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, s.Status)
}

func TestApplyStatusChange_UnknownStatus(t *testing.T) {
	s := newTestSession(t)

	err := s.ApplyStatusChange(StatusChange{ActorID: "teacher-1", NewStatus: Status("PAUSED")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCounterpartOf(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, "learner-1", s.CounterpartOf("teacher-1"))
	assert.Equal(t, "teacher-1", s.CounterpartOf("learner-1"))
}
