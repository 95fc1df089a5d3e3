package registrations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trailbook/backend/internal/activities"
	"github.com/trailbook/backend/internal/middleware"
	"github.com/trailbook/backend/pkg/response"
)

// Handler handles activity registration HTTP endpoints.
type Handler struct {
	service *Service
	storage activities.PhotoURLProvider
}

// NewHandler creates a registrations handler.
func NewHandler(service *Service, st activities.PhotoURLProvider) *Handler {
	return &Handler{service: service, storage: st}
}

// Register handles POST /activities/:id/register. Anonymous callers are not
// rejected; they are redirected to the registration page carrying the
// activity id so signup can finish the registration.
func (h *Handler) Register(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}

	actor := middleware.Actor(c)
	if actor == nil {
		c.Redirect(http.StatusFound, "/register?activity="+id.String())
		return
	}

	switch err := h.service.Register(c.Request.Context(), actor, id); {
	case err == nil:
		response.OK(c, gin.H{"message": "You have successfully registered."})
	case errors.Is(err, ErrActivityNotFound):
		response.NotFound(c, "activity not found")
	case errors.Is(err, ErrAlreadyRegistered):
		response.Conflict(c, err.Error())
	default:
		response.Internal(c, "failed to register")
	}
}

// Cancel handles DELETE /activities/:id. Only the caller's own participation
// can be cancelled.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}

	actor := middleware.Actor(c)
	switch err := h.service.Cancel(c.Request.Context(), actor, id); {
	case err == nil:
		response.OK(c, gin.H{"message": "Activity removed."})
	case errors.Is(err, ErrNotParticipant):
		response.Forbidden(c, err.Error())
	default:
		response.Internal(c, "failed to cancel registration")
	}
}

// ListMine handles GET /activities: the caller's registered activities
// ordered by start time.
func (h *Handler) ListMine(c *gin.Context) {
	actor := middleware.Actor(c)
	list, err := h.service.ListForUser(c.Request.Context(), actor)
	if err != nil {
		response.Internal(c, "failed to list activities")
		return
	}
	response.OK(c, gin.H{"activities": activities.NewViews(list, h.storage)})
}
