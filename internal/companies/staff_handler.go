package companies

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/authz"
	"github.com/trailbook/backend/internal/invitations"
	"github.com/trailbook/backend/internal/middleware"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/response"
)

// StaffHandler serves one staff role of a company: the same handler mounted
// at /companies/:id/users manages owners and at /companies/:id/guides manages
// guides. Staff accounts are created by invitation, never directly.
type StaffHandler struct {
	companies   *Handler
	repo        *Repository
	invitations *invitations.Service
	role        models.Role
	logger      *zap.Logger
}

// NewStaffHandler creates a staff handler for the given role.
func NewStaffHandler(companies *Handler, repo *Repository, invSvc *invitations.Service, role models.Role, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{companies: companies, repo: repo, invitations: invSvc, role: role, logger: logger}
}

// InviteRequest is the payload for inviting a staff member.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateStaffRequest is the payload for editing a staff member.
type UpdateStaffRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"required,email"`
}

// List handles GET /companies/:id/{users|guides}.
func (h *StaffHandler) List(c *gin.Context) {
	company, ok := h.companies.requireCompanyAccess(c, authz.ActionViewAny)
	if !ok {
		return
	}
	list, err := h.repo.ListStaff(c.Request.Context(), company.ID, h.role)
	if err != nil {
		h.logger.Error("list staff failed", zap.Error(err), zap.String("company_id", company.ID.String()))
		response.Internal(c, "failed to list staff")
		return
	}
	response.OK(c, list)
}

// Invite handles POST /companies/:id/{users|guides}: issues an invitation
// bound to the email, the role, and the company, and queues the invitation
// email. The account itself is created when the invitee registers.
func (h *StaffHandler) Invite(c *gin.Context) {
	company, ok := h.companies.companyFromParam(c)
	if !ok {
		return
	}
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	inv, err := h.invitations.Issue(c.Request.Context(), middleware.Actor(c), company, req.Email, h.role)
	if err != nil {
		switch {
		case errors.Is(err, invitations.ErrForbidden):
			response.Forbidden(c, "not allowed to invite for this company")
		case errors.Is(err, invitations.ErrDuplicateInvitation):
			// A pending invitation already satisfies this intent. The field
			// map lets the client pin the message to the email input.
			response.ConflictFields(c, invitations.ErrDuplicateInvitation.Error(),
				map[string]string{"email": invitations.ErrDuplicateInvitation.Error()})
		default:
			h.logger.Error("issue invitation failed", zap.Error(err), zap.String("company_id", company.ID.String()))
			response.Internal(c, "failed to create invitation")
		}
		return
	}
	response.Created(c, inv)
}

// GetByID handles GET /companies/:id/{users|guides}/:userID.
func (h *StaffHandler) GetByID(c *gin.Context) {
	_, user, ok := h.staffFromParams(c, authz.ActionViewAny)
	if !ok {
		return
	}
	response.OK(c, user)
}

// Update handles PUT /companies/:id/{users|guides}/:userID.
func (h *StaffHandler) Update(c *gin.Context) {
	company, user, ok := h.staffFromParams(c, authz.ActionUpdate)
	if !ok {
		return
	}
	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.UpdateStaff(c.Request.Context(), company.ID, user.ID, req.Name, req.Email); err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			response.ValidationFailed(c, map[string]string{"email": "email already in use"})
			return
		}
		h.logger.Error("update staff failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Internal(c, "failed to update staff")
		return
	}
	user.Name = req.Name
	user.Email = req.Email
	response.OK(c, user)
}

// Delete handles DELETE /companies/:id/{users|guides}/:userID.
func (h *StaffHandler) Delete(c *gin.Context) {
	company, user, ok := h.staffFromParams(c, authz.ActionDelete)
	if !ok {
		return
	}
	if err := h.repo.DeleteStaff(c.Request.Context(), company.ID, user.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("delete staff failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Internal(c, "failed to delete staff")
		return
	}
	response.OK(c, gin.H{"message": "User deleted."})
}

// staffFromParams checks company access, then loads the addressed staff
// member scoped by company and role. A user of another company or another
// role is a 404, not a leak.
func (h *StaffHandler) staffFromParams(c *gin.Context, action authz.Action) (*models.Company, *models.UserPublic, bool) {
	company, ok := h.companies.requireCompanyAccess(c, action)
	if !ok {
		return nil, nil, false
	}
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return nil, nil, false
	}
	user, err := h.repo.GetStaff(c.Request.Context(), company.ID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "user not found")
			return nil, nil, false
		}
		h.logger.Error("get staff failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load user")
		return nil, nil, false
	}
	if user.Role != h.role {
		response.NotFound(c, "user not found")
		return nil, nil, false
	}
	return company, user, true
}
