package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/session"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SESSION STATUS COMMAND
// Drives the session lifecycle. Completion pays out rewards to both
// participants and may award badges.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSessionStatusCommand contains the data for a lifecycle transition.
type UpdateSessionStatusCommand struct {
	// SessionID is the session to transition.
	SessionID string

	// ActorID is the participant performing the transition.
	ActorID string

	// NewStatus is the target status.
	NewStatus session.Status

	// Rating is the optional 1..5 rating, only for COMPLETED.
	Rating *int

	// Feedback is the optional feedback text, only for COMPLETED.
	Feedback string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateSessionStatusCommand) Validate() error {
	if c.SessionID == "" {
		return errors.New("update_session: session_id is required")
	}
	if c.ActorID == "" {
		return errors.New("update_session: actor_id is required")
	}
	if !c.NewStatus.IsValid() {
		return session.ErrInvalidStatus
	}
	return nil
}

// UpdateSessionStatusResult contains the result of the transition.
type UpdateSessionStatusResult struct {
	// SessionID is the transitioned session.
	SessionID string

	// Status is the status after the transition.
	Status session.Status

	// TeacherReward is the points paid to the teacher (COMPLETED only).
	TeacherReward int

	// LearnerReward is the points paid to the learner (COMPLETED only).
	LearnerReward int

	// BadgesAwarded lists badge names granted by this transition.
	BadgesAwarded []string

	// TeacherCompletedSessions is the teacher's completed session total.
	TeacherCompletedSessions int

	// Events contains domain events generated.
	Events []shared.Event
}

// UpdateSessionStatusHandler handles the UpdateSessionStatusCommand.
type UpdateSessionStatusHandler struct {
	sessions       session.Repository
	accounts       user.Accounts
	catalog        skill.Catalog
	badges         notification.Badges
	notifications  notification.Notifications
	sink           notification.Sink
	eventPublisher shared.EventPublisher
}

// NewUpdateSessionStatusHandler creates a new UpdateSessionStatusHandler.
func NewUpdateSessionStatusHandler(
	sessions session.Repository,
	accounts user.Accounts,
	catalog skill.Catalog,
	badges notification.Badges,
	notifications notification.Notifications,
	sink notification.Sink,
	eventPublisher shared.EventPublisher,
) *UpdateSessionStatusHandler {
	return &UpdateSessionStatusHandler{
		sessions:       sessions,
		accounts:       accounts,
		catalog:        catalog,
		badges:         badges,
		notifications:  notifications,
		sink:           sink,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the session status transition.
func (h *UpdateSessionStatusHandler) Handle(ctx context.Context, cmd UpdateSessionStatusCommand) (*UpdateSessionStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.sessions.FindByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("update_session: %w", err)
	}

	if err := s.ApplyStatusChange(session.StatusChange{
		ActorID:   cmd.ActorID,
		NewStatus: cmd.NewStatus,
		Rating:    cmd.Rating,
		Feedback:  cmd.Feedback,
	}); err != nil {
		return nil, err
	}

	if err := h.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update_session: %w", err)
	}

	result := &UpdateSessionStatusResult{
		SessionID: s.ID,
		Status:    s.Status,
		Events:    make([]shared.Event, 0, 4),
	}

	skillTitle := s.SkillID
	if sk, err := h.catalog.FindByID(ctx, s.SkillID); err == nil {
		skillTitle = sk.Title
	}

	if s.Status == session.StatusCompleted {
		if err := h.payoutRewards(ctx, s, result); err != nil {
			return nil, err
		}
		h.awardBadges(ctx, s, cmd.Rating, result)

		if count, err := h.sessions.CountCompletedByTeacher(ctx, s.TeacherID); err == nil {
			result.TeacherCompletedSessions = count
		}
	}

	h.notifyCounterpart(ctx, s, cmd.ActorID, skillTitle)

	if eventType, ok := lifecycleEventType(s.Status); ok {
		event := shared.NewSessionStatusChangedEvent(
			eventType, s.ID, s.TeacherID, s.LearnerID, skillTitle, string(s.Status),
		)
		if cmd.Rating != nil {
			event = event.WithRating(*cmd.Rating)
		}
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}

// payoutRewards pays the fixed completion rewards to both participants.
func (h *UpdateSessionStatusHandler) payoutRewards(ctx context.Context, s *session.Session, result *UpdateSessionStatusResult) error {
	teacherBalance, err := h.accounts.ApplyDelta(ctx, s.TeacherID, session.TeacherReward)
	if err != nil {
		return fmt.Errorf("update_session: teacher reward: %w", err)
	}
	learnerBalance, err := h.accounts.ApplyDelta(ctx, s.LearnerID, session.LearnerReward)
	if err != nil {
		return fmt.Errorf("update_session: learner reward: %w", err)
	}

	result.TeacherReward = session.TeacherReward
	result.LearnerReward = session.LearnerReward

	teacherEvent := shared.NewPointsChangedEvent(s.TeacherID, session.TeacherReward, teacherBalance, "session_reward")
	learnerEvent := shared.NewPointsChangedEvent(s.LearnerID, session.LearnerReward, learnerBalance, "session_reward")
	result.Events = append(result.Events, teacherEvent, learnerEvent)
	_ = h.eventPublisher.Publish(teacherEvent)
	_ = h.eventPublisher.Publish(learnerEvent)

	return nil
}

// awardBadges grants completion badges.
// "First Steps" goes to a learner with no badges at all yet.
// "Top Teacher" goes to the teacher on any five-star completion.
func (h *UpdateSessionStatusHandler) awardBadges(ctx context.Context, s *session.Session, rating *int, result *UpdateSessionStatusResult) {
	if count, err := h.badges.CountByUser(ctx, s.LearnerID); err == nil && count == 0 {
		h.grantBadge(ctx, s.LearnerID, notification.BadgeFirstSteps, notification.BadgeLearner, notification.BadgeFirstStepsIcon, result)
	}

	// Awarded on every five-star completion, repeats included.
	if rating != nil && *rating == 5 {
		h.grantBadge(ctx, s.TeacherID, notification.BadgeTopTeacher, notification.BadgeTeacher, notification.BadgeTopTeacherIcon, result)
	}
}

// grantBadge persists the badge and its notification. Failures are silent:
// badges are gravy, the session transition already succeeded.
func (h *UpdateSessionStatusHandler) grantBadge(ctx context.Context, userID, name string, t notification.BadgeType, icon string, result *UpdateSessionStatusResult) {
	badge := notification.NewBadge(uuid.NewString(), userID, name, t, icon)
	if err := h.badges.Create(ctx, badge); err != nil {
		return
	}

	result.BadgesAwarded = append(result.BadgesAwarded, name)

	event := shared.NewBadgeAwardedEvent(badge.ID, userID, name, string(t))
	result.Events = append(result.Events, event)
	_ = h.eventPublisher.Publish(event)

	message := fmt.Sprintf("You earned the %q badge %s", name, icon)
	if n, err := notification.NewNotification(uuid.NewString(), userID, notification.TypeBadgeAwarded, message, badge.ID); err == nil {
		if err := h.notifications.Create(ctx, n); err == nil && h.sink != nil {
			_ = h.sink.Deliver(ctx, n)
		}
	}
}

// notifyCounterpart informs the other participant about the transition.
func (h *UpdateSessionStatusHandler) notifyCounterpart(ctx context.Context, s *session.Session, actorID, skillTitle string) {
	notifyType, message, ok := transitionNotification(s.Status, skillTitle, s.Rating)
	if !ok {
		return
	}

	recipient := s.CounterpartOf(actorID)

	n, err := notification.NewNotification(uuid.NewString(), recipient, notifyType, message, s.ID)
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

// lifecycleEventType maps a session status to its domain event type.
func lifecycleEventType(status session.Status) (shared.EventType, bool) {
	switch status {
	case session.StatusAccepted:
		return shared.EventSessionAccepted, true
	case session.StatusCancelled:
		return shared.EventSessionCancelled, true
	case session.StatusCompleted:
		return shared.EventSessionCompleted, true
	default:
		return "", false
	}
}

// transitionNotification maps a status to the counterpart's notification.
// The completion message carries the learner's rating when one was given.
func transitionNotification(status session.Status, skillTitle string, rating *int) (notification.Type, string, bool) {
	switch status {
	case session.StatusAccepted:
		return notification.TypeSessionAccepted, fmt.Sprintf("Your session request for %s was accepted", skillTitle), true
	case session.StatusCancelled:
		return notification.TypeSessionCancelled, fmt.Sprintf("The session for %s was cancelled", skillTitle), true
	case session.StatusCompleted:
		message := fmt.Sprintf("The session for %s was completed", skillTitle)
		if rating != nil {
			message = fmt.Sprintf("The session for %s was completed with a %d star rating", skillTitle, *rating)
		}
		return notification.TypeSessionCompleted, message, true
	default:
		return "", "", false
	}
}
