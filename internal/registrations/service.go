// Package registrations lets customers opt in and out of activities. A user
// registers at most once per activity and gets exactly one confirmation email.
package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/queue"
)

var (
	// ErrActivityNotFound means the activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered means the user is already a participant.
	ErrAlreadyRegistered = errors.New("already registered to this activity")
	// ErrNotParticipant means a cancellation was attempted for an activity the
	// user is not registered to.
	ErrNotParticipant = errors.New("not registered to this activity")
)

// ActivityGetter loads activities for registration.
type ActivityGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// ParticipantStore mutates the participation relation.
type ParticipantStore interface {
	Attach(ctx context.Context, activityID, userID uuid.UUID) error
	Detach(ctx context.Context, activityID, userID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Activity, error)
}

// EmailEnqueuer queues the registration confirmation email.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Service implements the activity registration workflow.
type Service struct {
	activities   ActivityGetter
	participants ParticipantStore
	emails       EmailEnqueuer
	logger       *zap.Logger
}

// NewService creates a registration service.
func NewService(activities ActivityGetter, participants ParticipantStore, emails EmailEnqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{activities: activities, participants: participants, emails: emails, logger: logger}
}

// Register attaches the user to the activity's participant set and queues one
// confirmation email. The second of two concurrent attempts for the same pair
// gets ErrAlreadyRegistered and no email.
func (s *Service) Register(ctx context.Context, user *models.User, activityID uuid.UUID) error {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if err := s.participants.Attach(ctx, activityID, user.ID); err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return ErrAlreadyRegistered
		}
		return err
	}

	if err := s.emails.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      models.EmailTypeActivityRegistration,
		RecipientEmail: user.Email,
		ActivityName:   activity.Name,
		ActivityStart:  activity.StartTime,
	}); err != nil {
		s.logger.Error("enqueue registration email failed", zap.Error(err),
			zap.String("activity_id", activityID.String()), zap.String("user_id", user.ID.String()))
	}

	return nil
}

// Cancel detaches the user's own participation. Cancelling an activity the
// user is not registered to — including someone else's registration — is
// ErrNotParticipant. No email on cancel.
func (s *Service) Cancel(ctx context.Context, user *models.User, activityID uuid.UUID) error {
	detached, err := s.participants.Detach(ctx, activityID, user.ID)
	if err != nil {
		return err
	}
	if !detached {
		return ErrNotParticipant
	}
	return nil
}

// ListForUser returns the user's registered activities ordered by start time.
func (s *Service) ListForUser(ctx context.Context, user *models.User) ([]models.Activity, error) {
	return s.participants.ListForUser(ctx, user.ID)
}
