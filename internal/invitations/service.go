// Package invitations issues and consumes the single-use tokens that
// provision staff accounts: an invitation binds an email to a future role and
// company, and is consumed exactly once when a matching registration completes.
package invitations

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/authz"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/queue"
)

var (
	// ErrForbidden means the actor may not invite for this company.
	ErrForbidden = errors.New("not allowed to invite for this company")
	// ErrDuplicateInvitation means a pending invitation already exists for the email.
	ErrDuplicateInvitation = errors.New("invitation with this email address already requested")
	// ErrInvitationMismatch covers both "no such token" and "token bound to a
	// different email"; one message so callers cannot probe which part mismatched.
	ErrInvitationMismatch = errors.New("invitation link does not match the email")
)

// Store is the persistence needed by the service.
type Store interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetPendingByToken(ctx context.Context, token string) (*models.Invitation, error)
	Consume(ctx context.Context, token, email string, now time.Time) (*models.Invitation, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Invitation, error)
}

// EmailEnqueuer queues outbound invitation emails.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Service implements the invitation workflow.
type Service struct {
	store  Store
	emails EmailEnqueuer
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an invitation service.
func NewService(store Store, emails EmailEnqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, emails: emails, logger: logger, now: time.Now}
}

// Issue creates a pending invitation binding email to role within the company
// and queues the invitation email. The actor must be allowed to create staff
// for the company. A pending invitation for the same email is a conflict;
// consumed invitations do not block re-inviting.
func (s *Service) Issue(ctx context.Context, actor *models.User, company *models.Company, email string, role models.Role) (*models.Invitation, error) {
	if !authz.Allowed(actor, authz.ActionCreate, company) {
		return nil, ErrForbidden
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	inv := &models.Invitation{
		Email:     email,
		Token:     token,
		Role:      role,
		CompanyID: company.ID,
	}
	if err := s.store.Create(ctx, inv); err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, ErrDuplicateInvitation
		}
		return nil, err
	}

	// Mail failure must not fail the request; delivery retries in the worker.
	if err := s.emails.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      models.EmailTypeInvitation,
		RecipientEmail: inv.Email,
		InviteToken:    inv.Token,
	}); err != nil {
		s.logger.Error("enqueue invitation email failed", zap.Error(err), zap.String("invitation_id", inv.ID.String()))
	}

	return inv, nil
}

// Consume atomically marks the pending invitation matching token AND email as
// consumed and returns the bound role and company. Any mismatch — unknown
// token, wrong email, already consumed — yields ErrInvitationMismatch.
func (s *Service) Consume(ctx context.Context, token, email string) (*models.Invitation, error) {
	inv, err := s.store.Consume(ctx, token, email, s.now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvitationMismatch
		}
		return nil, err
	}
	return inv, nil
}

// ListForCompany returns a company's invitations, newest first. The actor
// must be allowed to view the company's staff.
func (s *Service) ListForCompany(ctx context.Context, actor *models.User, company *models.Company) ([]models.Invitation, error) {
	if !authz.Allowed(actor, authz.ActionViewAny, company) {
		return nil, ErrForbidden
	}
	return s.store.ListByCompany(ctx, company.ID)
}

// PendingEmail returns the email bound to a pending token, for prefilling the
// registration form reached via an invitation link.
func (s *Service) PendingEmail(ctx context.Context, token string) (string, error) {
	inv, err := s.store.GetPendingByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrInvitationMismatch
		}
		return "", err
	}
	return inv.Email, nil
}

// generateToken returns an unguessable URL-safe token (256 bits of entropy).
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
