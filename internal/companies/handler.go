// Package companies manages companies, their staff, and their activities.
// Company CRUD is administrator-only; staff and activity management is open
// to administrators and to the owning company's owner.
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

// Handler serves administrator company CRUD.
type Handler struct {
	repo        *Repository
	invitations *invitations.Service
	logger      *zap.Logger
}

// NewHandler creates a companies handler.
func NewHandler(repo *Repository, invSvc *invitations.Service, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, invitations: invSvc, logger: logger}
}

// CompanyRequest is the create/update payload.
type CompanyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// List handles GET /companies.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list companies failed", zap.Error(err))
		response.Internal(c, "failed to list companies")
		return
	}
	response.OK(c, list)
}

// Create handles POST /companies.
func (h *Handler) Create(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	company := &models.Company{Name: req.Name}
	if err := h.repo.Create(c.Request.Context(), company); err != nil {
		h.logger.Error("create company failed", zap.Error(err))
		response.Internal(c, "failed to create company")
		return
	}
	response.Created(c, company)
}

// GetByID handles GET /companies/:id.
func (h *Handler) GetByID(c *gin.Context) {
	company, ok := h.companyFromParam(c)
	if !ok {
		return
	}
	response.OK(c, company)
}

// Update handles PUT /companies/:id.
func (h *Handler) Update(c *gin.Context) {
	company, ok := h.companyFromParam(c)
	if !ok {
		return
	}
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	company.Name = req.Name
	if err := h.repo.Update(c.Request.Context(), company); err != nil {
		h.logger.Error("update company failed", zap.Error(err), zap.String("company_id", company.ID.String()))
		response.Internal(c, "failed to update company")
		return
	}
	response.OK(c, company)
}

// Delete handles DELETE /companies/:id. A company with remaining staff or
// activities cannot be deleted.
func (h *Handler) Delete(c *gin.Context) {
	company, ok := h.companyFromParam(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), company.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "company not found")
			return
		}
		if errors.Is(err, database.ErrForeignKeyViolation) {
			response.Conflict(c, "company still has staff or activities")
			return
		}
		h.logger.Error("delete company failed", zap.Error(err), zap.String("company_id", company.ID.String()))
		response.Internal(c, "failed to delete company")
		return
	}
	response.OK(c, gin.H{"message": "Company deleted."})
}

// ListInvitations handles GET /companies/:id/invitations: the company's
// issued invitations, pending and consumed, newest first.
func (h *Handler) ListInvitations(c *gin.Context) {
	company, ok := h.companyFromParam(c)
	if !ok {
		return
	}
	list, err := h.invitations.ListForCompany(c.Request.Context(), middleware.Actor(c), company)
	if err != nil {
		if errors.Is(err, invitations.ErrForbidden) {
			response.Forbidden(c, "not allowed to view this company")
			return
		}
		h.logger.Error("list invitations failed", zap.Error(err), zap.String("company_id", company.ID.String()))
		response.Internal(c, "failed to list invitations")
		return
	}
	response.OK(c, list)
}

// companyFromParam loads the company addressed by the :id route parameter and
// writes the error response on failure.
func (h *Handler) companyFromParam(c *gin.Context) (*models.Company, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid company ID")
		return nil, false
	}
	company, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "company not found")
			return nil, false
		}
		h.logger.Error("get company failed", zap.Error(err), zap.String("company_id", id.String()))
		response.Internal(c, "failed to load company")
		return nil, false
	}
	return company, true
}

// requireCompanyAccess loads the company and checks the actor may perform the
// action on it. Denied actors get 403 without learning whether the company has
// the addressed resource.
func (h *Handler) requireCompanyAccess(c *gin.Context, action authz.Action) (*models.Company, bool) {
	company, ok := h.companyFromParam(c)
	if !ok {
		return nil, false
	}
	if !authz.Allowed(middleware.Actor(c), action, company) {
		response.Forbidden(c, "not allowed to manage this company")
		return nil, false
	}
	return company, true
}
