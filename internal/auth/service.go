package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/utils"
)

// ErrEmailTaken means a user with this email already exists.
var ErrEmailTaken = errors.New("email already registered")

// UserStore is the persistence needed by the registration workflow.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// InvitationConsumer consumes a pending invitation for the registering email.
type InvitationConsumer interface {
	Consume(ctx context.Context, token, email string) (*models.Invitation, error)
}

// ActivityRegistrar completes a pending activity-registration intent after signup.
type ActivityRegistrar interface {
	Register(ctx context.Context, user *models.User, activityID uuid.UUID) error
}

// RegisterInput is the registration payload plus the pending context the
// registration page was reached with. Role and company are never part of the
// input: they come exclusively from a consumed invitation.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	InvitationToken string
	ActivityID      *uuid.UUID
}

// Service implements self-service registration, optionally merging an
// invitation token and a pending activity-registration intent.
type Service struct {
	users       UserStore
	invitations InvitationConsumer
	registrar   ActivityRegistrar
	logger      *zap.Logger
}

// NewService creates a registration service.
func NewService(users UserStore, invitations InvitationConsumer, registrar ActivityRegistrar, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, invitations: invitations, registrar: registrar, logger: logger}
}

// Register creates a user. With an invitation token the invitation is
// consumed first and decides role and company; on mismatch no user is
// created. With a pending activity intent the new user is attached to the
// activity and redirected to their activity list. The two contexts compose.
// Returns the created user and the client destination.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	// Reject duplicate emails before touching the invitation so a mismatching
	// signup cannot burn someone else's pending token.
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", ErrEmailTaken
	}

	role := models.RoleCustomer
	var companyID *uuid.UUID
	if in.InvitationToken != "" {
		inv, err := s.invitations.Consume(ctx, in.InvitationToken, in.Email)
		if err != nil {
			return nil, "", err
		}
		role = inv.Role
		cid := inv.CompanyID
		companyID = &cid
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Role:      role,
		CompanyID: companyID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	redirectTo := "/"
	if in.ActivityID != nil {
		// A stale or failing intent does not fail the signup itself.
		if err := s.registrar.Register(ctx, user, *in.ActivityID); err != nil {
			s.logger.Warn("pending activity registration not completed", zap.Error(err),
				zap.String("user_id", user.ID.String()), zap.String("activity_id", in.ActivityID.String()))
		} else {
			redirectTo = "/activities"
		}
	}

	return user, redirectTo, nil
}
