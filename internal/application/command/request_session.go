package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/session"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST SESSION COMMAND
// A learner asks a teacher for a session on a specific skill.
// The teacher must have declared the skill as teachable.
// ══════════════════════════════════════════════════════════════════════════════

// RequestSessionCommand contains the data to request a session.
type RequestSessionCommand struct {
	// LearnerID is the requesting user.
	LearnerID string

	// TeacherID is the user asked to teach.
	TeacherID string

	// SkillID is the skill to learn.
	SkillID string

	// ScheduledAt is the optional proposed time.
	ScheduledAt *time.Time

	// Description is the learner's topic and expectations for the session.
	Description string

	// MeetingLink is the optional link for an online session.
	MeetingLink string

	// Location is the optional meeting place for an offline session.
	Location string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RequestSessionCommand) Validate() error {
	if c.LearnerID == "" {
		return errors.New("request_session: learner_id is required")
	}
	if c.TeacherID == "" {
		return errors.New("request_session: teacher_id is required")
	}
	if c.SkillID == "" {
		return errors.New("request_session: skill_id is required")
	}
	if c.LearnerID == c.TeacherID {
		return session.ErrSelfSession
	}
	return nil
}

// ErrDoesNotTeach is returned when the chosen teacher has no TEACH
// declaration for the requested skill.
var ErrDoesNotTeach = shared.NewDomainError("session", "Request", shared.ErrRejected, "user does not teach this skill")

// RequestSessionResult contains the result of requesting a session.
type RequestSessionResult struct {
	// SessionID is the ID of the created session.
	SessionID string

	// Status is the initial session status.
	Status session.Status

	// Events contains domain events generated.
	Events []shared.Event
}

// RequestSessionHandler handles the RequestSessionCommand.
type RequestSessionHandler struct {
	users          user.Directory
	catalog        skill.Catalog
	declarations   skill.Declarations
	sessions       session.Repository
	notifications  notification.Notifications
	sink           notification.Sink
	eventPublisher shared.EventPublisher
}

// NewRequestSessionHandler creates a new RequestSessionHandler.
func NewRequestSessionHandler(
	users user.Directory,
	catalog skill.Catalog,
	declarations skill.Declarations,
	sessions session.Repository,
	notifications notification.Notifications,
	sink notification.Sink,
	eventPublisher shared.EventPublisher,
) *RequestSessionHandler {
	return &RequestSessionHandler{
		users:          users,
		catalog:        catalog,
		declarations:   declarations,
		sessions:       sessions,
		notifications:  notifications,
		sink:           sink,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the request session command.
func (h *RequestSessionHandler) Handle(ctx context.Context, cmd RequestSessionCommand) (*RequestSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	learner, err := h.users.FindByID(ctx, cmd.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("request_session: learner: %w", err)
	}
	if _, err := h.users.FindByID(ctx, cmd.TeacherID); err != nil {
		return nil, fmt.Errorf("request_session: teacher: %w", err)
	}

	sk, err := h.catalog.FindByID(ctx, cmd.SkillID)
	if err != nil {
		return nil, fmt.Errorf("request_session: skill: %w", err)
	}

	teaches, err := h.declarations.Exists(ctx, cmd.TeacherID, cmd.SkillID, skill.TypeTeach)
	if err != nil {
		return nil, fmt.Errorf("request_session: %w", err)
	}
	if !teaches {
		return nil, ErrDoesNotTeach
	}

	s, err := session.NewSession(session.NewSessionParams{
		ID:          uuid.NewString(),
		SkillID:     cmd.SkillID,
		TeacherID:   cmd.TeacherID,
		LearnerID:   cmd.LearnerID,
		ScheduledAt: cmd.ScheduledAt,
		Description: cmd.Description,
		MeetingLink: cmd.MeetingLink,
		Location:    cmd.Location,
	})
	if err != nil {
		return nil, err
	}

	if err := h.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("request_session: %w", err)
	}

	h.notifyTeacher(ctx, s, learner.DisplayName(), sk.Title)

	event := shared.NewSessionStatusChangedEvent(
		shared.EventSessionRequested,
		s.ID, s.TeacherID, s.LearnerID, sk.Title, string(s.Status),
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &RequestSessionResult{
		SessionID: s.ID,
		Status:    s.Status,
		Events:    []shared.Event{event},
	}, nil
}

// notifyTeacher stores and delivers the session request notification.
// Delivery failures do not cancel the request.
func (h *RequestSessionHandler) notifyTeacher(ctx context.Context, s *session.Session, learnerName, skillTitle string) {
	message := fmt.Sprintf("%s wants to learn %s from you", learnerName, skillTitle)

	n, err := notification.NewNotification(uuid.NewString(), s.TeacherID, notification.TypeSessionRequest, message, s.ID)
	if err != nil {
		return
	}

	if err := h.notifications.Create(ctx, n); err != nil {
		return
	}

	if h.sink != nil {
		_ = h.sink.Deliver(ctx, n)
	}
}
