package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/invitations"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/utils"
)

type fakeUserStore struct {
	byEmail   map[string]*models.User
	created   []*models.User
	createErr error
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	u.ID = uuid.New()
	f.created = append(f.created, u)
	return nil
}

type fakeConsumer struct {
	invitation *models.Invitation
	err        error
	consumed   []string
}

func (f *fakeConsumer) Consume(_ context.Context, token, email string) (*models.Invitation, error) {
	f.consumed = append(f.consumed, token)
	if f.err != nil {
		return nil, f.err
	}
	return f.invitation, nil
}

type fakeRegistrar struct {
	err   error
	calls []uuid.UUID
}

func (f *fakeRegistrar) Register(_ context.Context, _ *models.User, activityID uuid.UUID) error {
	f.calls = append(f.calls, activityID)
	return f.err
}

func TestRegisterPlainCustomer(t *testing.T) {
	users := &fakeUserStore{}
	consumer := &fakeConsumer{}
	registrar := &fakeRegistrar{}
	svc := NewService(users, consumer, registrar, zap.NewNop())

	user, redirectTo, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jo",
		Email:    "jo@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.Nil(t, user.CompanyID)
	require.Equal(t, "/", redirectTo)
	require.Empty(t, consumer.consumed)
	require.Empty(t, registrar.calls)

	// Password is stored hashed, never as given.
	require.NotEqual(t, "secret-password", user.Password)
	require.True(t, utils.CheckPassword("secret-password", user.Password))
}

func TestRegisterWithInvitationTakesRoleAndCompany(t *testing.T) {
	companyID := uuid.New()
	users := &fakeUserStore{}
	consumer := &fakeConsumer{invitation: &models.Invitation{
		Email: "guide@example.com", Role: models.RoleGuide, CompanyID: companyID,
	}}
	svc := NewService(users, consumer, &fakeRegistrar{}, zap.NewNop())

	user, _, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Gail",
		Email:           "guide@example.com",
		Password:        "secret-password",
		InvitationToken: "tok",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleGuide, user.Role)
	require.NotNil(t, user.CompanyID)
	require.Equal(t, companyID, *user.CompanyID)
	require.Equal(t, []string{"tok"}, consumer.consumed)
}

func TestRegisterInvitationMismatchCreatesNoUser(t *testing.T) {
	users := &fakeUserStore{}
	consumer := &fakeConsumer{err: invitations.ErrInvitationMismatch}
	svc := NewService(users, consumer, &fakeRegistrar{}, zap.NewNop())

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Gail",
		Email:           "other@example.com",
		Password:        "secret-password",
		InvitationToken: "tok",
	})
	require.ErrorIs(t, err, invitations.ErrInvitationMismatch)
	require.Empty(t, users.created)
}

func TestRegisterDuplicateEmailDoesNotConsumeInvitation(t *testing.T) {
	users := &fakeUserStore{byEmail: map[string]*models.User{
		"taken@example.com": {ID: uuid.New(), Email: "taken@example.com"},
	}}
	consumer := &fakeConsumer{invitation: &models.Invitation{Role: models.RoleGuide}}
	svc := NewService(users, consumer, &fakeRegistrar{}, zap.NewNop())

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Dup",
		Email:           "taken@example.com",
		Password:        "secret-password",
		InvitationToken: "tok",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Empty(t, consumer.consumed)
}

func TestRegisterDuplicateEmailFromUniqueViolation(t *testing.T) {
	users := &fakeUserStore{createErr: database.ErrUniqueViolation}
	svc := NewService(users, &fakeConsumer{}, &fakeRegistrar{}, zap.NewNop())

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Race", Email: "race@example.com", Password: "secret-password",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterWithActivityIntent(t *testing.T) {
	users := &fakeUserStore{}
	registrar := &fakeRegistrar{}
	svc := NewService(users, &fakeConsumer{}, registrar, zap.NewNop())

	activityID := uuid.New()
	user, redirectTo, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Cam",
		Email:      "cam@example.com",
		Password:   "secret-password",
		ActivityID: &activityID,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, []uuid.UUID{activityID}, registrar.calls)
	require.Equal(t, "/activities", redirectTo)
}

func TestRegisterActivityIntentFailureDoesNotFailSignup(t *testing.T) {
	users := &fakeUserStore{}
	registrar := &fakeRegistrar{err: errors.New("activity gone")}
	svc := NewService(users, &fakeConsumer{}, registrar, zap.NewNop())

	activityID := uuid.New()
	user, redirectTo, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Cam",
		Email:      "cam@example.com",
		Password:   "secret-password",
		ActivityID: &activityID,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "/", redirectTo)
}

func TestRegisterInvitationAndActivityCompose(t *testing.T) {
	companyID := uuid.New()
	users := &fakeUserStore{}
	consumer := &fakeConsumer{invitation: &models.Invitation{
		Email: "both@example.com", Role: models.RoleCompanyOwner, CompanyID: companyID,
	}}
	registrar := &fakeRegistrar{}
	svc := NewService(users, consumer, registrar, zap.NewNop())

	activityID := uuid.New()
	user, redirectTo, err := svc.Register(context.Background(), RegisterInput{
		Name:            "Both",
		Email:           "both@example.com",
		Password:        "secret-password",
		InvitationToken: "tok",
		ActivityID:      &activityID,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleCompanyOwner, user.Role)
	require.Equal(t, []uuid.UUID{activityID}, registrar.calls)
	require.Equal(t, "/activities", redirectTo)
}
