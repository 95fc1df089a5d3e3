// Package guides serves the guide-facing surface: the activities a guide
// leads, and the participant roster export for each of them.
package guides

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/activities"
	"github.com/trailbook/backend/internal/middleware"
	"github.com/trailbook/backend/internal/pdf"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/response"
)

// Handler serves guide activity routes. All routes require the guide role.
type Handler struct {
	repo   *activities.Repository
	s3     activities.PhotoURLProvider
	logger *zap.Logger
}

// NewHandler creates a guides handler.
func NewHandler(repo *activities.Repository, s3 activities.PhotoURLProvider, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// ListMine handles GET /guides/activities: the activities assigned to the
// acting guide, soonest first.
func (h *Handler) ListMine(c *gin.Context) {
	actor := middleware.Actor(c)
	list, err := h.repo.ListByGuide(c.Request.Context(), actor.ID)
	if err != nil {
		h.logger.Error("list guide activities failed", zap.Error(err), zap.String("guide_id", actor.ID.String()))
		response.Internal(c, "failed to list activities")
		return
	}
	response.OK(c, activities.NewViews(list, h.s3))
}

// ExportParticipants handles GET /guides/activities/:id/export: a PDF roster
// of the activity's participants in registration order, named after the
// activity. Guides can only export activities assigned to them.
func (h *Handler) ExportParticipants(c *gin.Context) {
	actor := middleware.Actor(c)
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid activity ID")
		return
	}

	activity, err := h.repo.GetByID(c.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "activity not found")
			return
		}
		h.logger.Error("get activity failed", zap.Error(err), zap.String("activity_id", activityID.String()))
		response.Internal(c, "failed to load activity")
		return
	}
	if activity.GuideID == nil || *activity.GuideID != actor.ID {
		response.Forbidden(c, "not allowed to export this activity")
		return
	}

	participants, err := h.repo.Participants(c.Request.Context(), activity.ID)
	if err != nil {
		h.logger.Error("list participants failed", zap.Error(err), zap.String("activity_id", activity.ID.String()))
		response.Internal(c, "failed to list participants")
		return
	}

	doc, err := pdf.Roster(activity, participants)
	if err != nil {
		h.logger.Error("render roster failed", zap.Error(err), zap.String("activity_id", activity.ID.String()))
		response.Internal(c, "failed to render export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", activity.Name+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}
