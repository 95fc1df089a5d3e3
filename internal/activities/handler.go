package activities

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/middleware"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/response"
)

// PageSize is the number of activities per page on the public listing.
const PageSize = 9

// Catalog is the activity lookup surface the public handler reads from.
// *Repository implements it.
type Catalog interface {
	ListUpcoming(ctx context.Context, limit, offset int) ([]models.Activity, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// ParticipantChecker reports whether a user is registered to an activity.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, activityID, userID uuid.UUID) (bool, error)
}

// Handler serves the public activity catalog.
type Handler struct {
	repo         Catalog
	participants ParticipantChecker
	storage      PhotoURLProvider
	logger       *zap.Logger
}

// NewHandler creates a public catalog handler.
func NewHandler(repo Catalog, participants ParticipantChecker, st PhotoURLProvider, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, participants: participants, storage: st, logger: logger}
}

// List handles GET /. Future activities only, ascending by start time,
// paginated PageSize per page.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	list, total, err := h.repo.ListUpcoming(c.Request.Context(), PageSize, offset)
	if err != nil {
		h.logger.Error("list upcoming activities failed", zap.Error(err))
		response.Internal(c, "failed to list activities")
		return
	}

	response.OK(c, gin.H{
		"activities": NewViews(list, h.storage),
		"page":       page,
		"per_page":   PageSize,
		"total":      total,
	})
}

// GetByID handles GET /activities/:id. Public; when the caller is
// authenticated, the payload also reports whether they already registered.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	activity, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "activity not found")
		return
	}

	body := gin.H{"activity": NewView(activity, h.storage)}
	if actor := middleware.Actor(c); actor != nil {
		registered, err := h.participants.IsParticipant(c.Request.Context(), activity.ID, actor.ID)
		if err != nil {
			// The payload stays useful without the flag, but the failed
			// lookup must not pass silently.
			h.logger.Warn("participation lookup failed", zap.Error(err),
				zap.String("activity_id", activity.ID.String()), zap.String("user_id", actor.ID.String()))
		} else {
			body["registered"] = registered
		}
	}
	response.OK(c, body)
}
