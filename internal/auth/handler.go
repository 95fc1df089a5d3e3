package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/invitations"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/response"
	"github.com/trailbook/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register. invitation_token and
// activity carry the pending context the registration page was opened with;
// role and company are deliberately not accepted here.
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Password        string `json:"password" binding:"required,min=8"`
	InvitationToken string `json:"invitation_token"`
	Activity        string `json:"activity"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token      string            `json:"token"`
	User       models.UserPublic `json:"user"`
	RedirectTo string            `json:"redirect_to,omitempty"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *Service
	invites *invitations.Service
	jwt     *JWTService
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, service *Service, invites *invitations.Service, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, service: service, invites: invites, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	in := RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		InvitationToken: req.InvitationToken,
	}
	if req.Activity != "" {
		activityID, err := uuid.Parse(req.Activity)
		if err != nil {
			response.BadRequest(c, "invalid activity id")
			return
		}
		in.ActivityID = &activityID
	}

	user, redirectTo, err := h.service.Register(c.Request.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmailTaken):
		response.ValidationFailed(c, map[string]string{"email": "email already registered"})
		return
	case errors.Is(err, invitations.ErrInvitationMismatch):
		response.ValidationFailed(c, map[string]string{"invitation": err.Error()})
		return
	default:
		h.logger.Error("register failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic(), RedirectTo: redirectTo})
}

// RegisterPrefill handles GET /auth/register. Given an invitation_token query
// parameter it returns the invited email for the form.
func (h *Handler) RegisterPrefill(c *gin.Context) {
	token := c.Query("invitation_token")
	if token == "" {
		response.OK(c, gin.H{})
		return
	}
	email, err := h.invites.PendingEmail(c.Request.Context(), token)
	if err != nil {
		response.NotFound(c, "invitation not found")
		return
	}
	response.OK(c, gin.H{"email": email})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}
