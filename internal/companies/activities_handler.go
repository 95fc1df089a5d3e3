package companies

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/activities"
	"github.com/trailbook/backend/internal/authz"
	"github.com/trailbook/backend/internal/images"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/response"
	"github.com/trailbook/backend/pkg/storage"
)

// PhotoStore stores activity photos and their thumbnails and resolves their
// public URLs. *storage.S3 implements it.
type PhotoStore interface {
	activities.PhotoURLProvider
	UploadPhoto(ctx context.Context, filename, contentType string, body io.Reader) error
	UploadThumbnail(ctx context.Context, filename string, body io.Reader) error
	DeletePhotoFiles(ctx context.Context, filename string) error
}

// ActivitiesHandler serves a company's activity management. Requests arrive as
// multipart forms so a photo can ride along with the fields.
type ActivitiesHandler struct {
	companies *Handler
	repo      *activities.Repository
	staff     *Repository
	s3        PhotoStore
	logger    *zap.Logger
}

// NewActivitiesHandler creates a company activities handler.
func NewActivitiesHandler(companies *Handler, repo *activities.Repository, staff *Repository, s3 PhotoStore, logger *zap.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{companies: companies, repo: repo, staff: staff, s3: s3, logger: logger}
}

// ActivityForm is the multipart create/update payload. Price is the displayed
// decimal value; storage is integer cents.
type ActivityForm struct {
	Name        string  `form:"name" binding:"required,min=1,max=200"`
	Description string  `form:"description"`
	StartTime   string  `form:"start_time" binding:"required"`
	Price       float64 `form:"price" binding:"min=0"`
	GuideID     string  `form:"guide_id"`
}

// List handles GET /companies/:id/activities.
func (h *ActivitiesHandler) List(c *gin.Context) {
	company, ok := h.companies.requireCompanyAccess(c, authz.ActionViewAny)
	if !ok {
		return
	}
	list, err := h.repo.ListByCompany(c.Request.Context(), company.ID)
	if err != nil {
		h.logger.Error("list company activities failed", zap.Error(err), zap.String("company_id", company.ID.String()))
		response.Internal(c, "failed to list activities")
		return
	}
	response.OK(c, activities.NewViews(list, h.s3))
}

// GetByID handles GET /companies/:id/activities/:activityID.
func (h *ActivitiesHandler) GetByID(c *gin.Context) {
	_, activity, ok := h.activityFromParams(c, authz.ActionViewAny)
	if !ok {
		return
	}
	response.OK(c, activities.NewView(activity, h.s3))
}

// Create handles POST /companies/:id/activities.
func (h *ActivitiesHandler) Create(c *gin.Context) {
	company, ok := h.companies.requireCompanyAccess(c, authz.ActionCreate)
	if !ok {
		return
	}

	activity, ok := h.bindForm(c, company, &models.Activity{CompanyID: company.ID})
	if !ok {
		return
	}

	photo, ok := h.storeUploadedPhoto(c)
	if !ok {
		return
	}
	activity.Photo = photo

	if err := h.repo.Create(c.Request.Context(), activity); err != nil {
		// The row never existed, so the just-stored files are orphans.
		if delErr := h.s3.DeletePhotoFiles(c.Request.Context(), photo); delErr != nil {
			h.logger.Warn("orphan photo cleanup failed", zap.Error(delErr), zap.String("photo", photo))
		}
		h.logger.Error("create activity failed", zap.Error(err), zap.String("company_id", company.ID.String()))
		response.Internal(c, "failed to create activity")
		return
	}
	response.Created(c, activities.NewView(activity, h.s3))
}

// Update handles PUT /companies/:id/activities/:activityID. When the photo is
// replaced, the new files are stored and the database updated before the old
// files are deleted, so a failure never leaves the row pointing at nothing.
func (h *ActivitiesHandler) Update(c *gin.Context) {
	company, activity, ok := h.activityFromParams(c, authz.ActionUpdate)
	if !ok {
		return
	}

	if _, ok := h.bindForm(c, company, activity); !ok {
		return
	}

	newPhoto, ok := h.storeUploadedPhoto(c)
	if !ok {
		return
	}
	if newPhoto != "" {
		activity.Photo = newPhoto
	}

	oldPhoto, err := h.repo.Update(c.Request.Context(), activity)
	if err != nil {
		if newPhoto != "" {
			if delErr := h.s3.DeletePhotoFiles(c.Request.Context(), newPhoto); delErr != nil {
				h.logger.Warn("orphan photo cleanup failed", zap.Error(delErr), zap.String("photo", newPhoto))
			}
		}
		h.logger.Error("update activity failed", zap.Error(err), zap.String("activity_id", activity.ID.String()))
		response.Internal(c, "failed to update activity")
		return
	}

	h.cleanupReplacedPhoto(c.Request.Context(), oldPhoto, newPhoto)
	response.OK(c, activities.NewView(activity, h.s3))
}

// Delete handles DELETE /companies/:id/activities/:activityID. The stored
// files go away only after the row is gone.
func (h *ActivitiesHandler) Delete(c *gin.Context) {
	_, activity, ok := h.activityFromParams(c, authz.ActionDelete)
	if !ok {
		return
	}

	photo, err := h.repo.Delete(c.Request.Context(), activity.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "activity not found")
			return
		}
		h.logger.Error("delete activity failed", zap.Error(err), zap.String("activity_id", activity.ID.String()))
		response.Internal(c, "failed to delete activity")
		return
	}
	if err := h.s3.DeletePhotoFiles(c.Request.Context(), photo); err != nil {
		h.logger.Warn("deleted activity photo cleanup failed", zap.Error(err), zap.String("photo", photo))
	}
	response.OK(c, gin.H{"message": "Activity deleted."})
}

// cleanupReplacedPhoto removes the previous photo files once the database row
// points at the new ones. Photo-less updates and reused filenames are no-ops.
func (h *ActivitiesHandler) cleanupReplacedPhoto(ctx context.Context, oldPhoto, newPhoto string) {
	if newPhoto == "" || oldPhoto == "" || oldPhoto == newPhoto {
		return
	}
	if err := h.s3.DeletePhotoFiles(ctx, oldPhoto); err != nil {
		h.logger.Warn("replaced photo cleanup failed", zap.Error(err), zap.String("photo", oldPhoto))
	}
}

// bindForm validates the form and writes the fields onto the activity. The
// guide, when given, must be a guide of this company.
func (h *ActivitiesHandler) bindForm(c *gin.Context, company *models.Company, activity *models.Activity) (*models.Activity, bool) {
	var form ActivityForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return nil, false
	}
	startTime, err := time.Parse(time.RFC3339, form.StartTime)
	if err != nil {
		response.ValidationFailed(c, map[string]string{"start_time": "must be an RFC 3339 timestamp"})
		return nil, false
	}

	var guideID *uuid.UUID
	if form.GuideID != "" {
		id, err := uuid.Parse(form.GuideID)
		if err != nil {
			response.ValidationFailed(c, map[string]string{"guide_id": "must be a valid ID"})
			return nil, false
		}
		isGuide, err := h.staff.IsCompanyGuide(c.Request.Context(), company.ID, id)
		if err != nil {
			h.logger.Error("guide lookup failed", zap.Error(err), zap.String("guide_id", id.String()))
			response.Internal(c, "failed to validate guide")
			return nil, false
		}
		if !isGuide {
			response.ValidationFailed(c, map[string]string{"guide_id": "must be a guide of this company"})
			return nil, false
		}
		guideID = &id
	}

	activity.Name = form.Name
	activity.Description = form.Description
	activity.StartTime = startTime
	activity.SetPrice(form.Price)
	activity.GuideID = guideID
	return activity, true
}

// storeUploadedPhoto validates the optional photo field, derives the
// thumbnail, and stores both on S3 under a fresh random filename. Returns ""
// when no photo was uploaded.
func (h *ActivitiesHandler) storeUploadedPhoto(c *gin.Context) (string, bool) {
	file, err := c.FormFile("photo")
	if err != nil {
		// No photo part (or a non-multipart form) is fine; a body that
		// fails to parse is the client's error.
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		response.BadRequest(c, "malformed upload: "+err.Error())
		return "", false
	}
	if file.Size > storage.MaxPhotoSize {
		response.ValidationFailed(c, map[string]string{"photo": "photo exceeds the 10MB limit"})
		return "", false
	}
	if !storage.ValidatePhotoType(file.Header.Get("Content-Type"), file.Filename) {
		response.ValidationFailed(c, map[string]string{"photo": "only JPEG and PNG images are allowed"})
		return "", false
	}

	data, ok := h.readUpload(c, file)
	if !ok {
		return "", false
	}

	thumb, err := images.Thumbnail(bytes.NewReader(data))
	if err != nil {
		response.ValidationFailed(c, map[string]string{"photo": "file is not a decodable image"})
		return "", false
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if ext == "" {
		ext = storage.AllowedPhotoTypes[strings.ToLower(file.Header.Get("Content-Type"))]
	}
	filename := uuid.New().String() + ext

	ctx := c.Request.Context()
	if err := h.s3.UploadPhoto(ctx, filename, storage.ContentTypeForFilename(filename), bytes.NewReader(data)); err != nil {
		h.logger.Error("photo upload failed", zap.Error(err), zap.String("photo", filename))
		response.Internal(c, "failed to store photo")
		return "", false
	}
	if err := h.s3.UploadThumbnail(ctx, filename, bytes.NewReader(thumb)); err != nil {
		if delErr := h.s3.DeletePhotoFiles(ctx, filename); delErr != nil {
			h.logger.Warn("orphan photo cleanup failed", zap.Error(delErr), zap.String("photo", filename))
		}
		h.logger.Error("thumbnail upload failed", zap.Error(err), zap.String("photo", filename))
		response.Internal(c, "failed to store photo")
		return "", false
	}
	return filename, true
}

func (h *ActivitiesHandler) readUpload(c *gin.Context, file *multipart.FileHeader) ([]byte, bool) {
	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read photo")
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, storage.MaxPhotoSize+1))
	if err != nil {
		h.logger.Error("read uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read photo")
		return nil, false
	}
	if int64(len(data)) > storage.MaxPhotoSize {
		response.ValidationFailed(c, map[string]string{"photo": "photo exceeds the 10MB limit"})
		return nil, false
	}
	return data, true
}

// activityFromParams checks company access and loads the addressed activity,
// scoped by company: an activity of another company is a 404.
func (h *ActivitiesHandler) activityFromParams(c *gin.Context, action authz.Action) (*models.Company, *models.Activity, bool) {
	company, ok := h.companies.requireCompanyAccess(c, action)
	if !ok {
		return nil, nil, false
	}
	activityID, err := uuid.Parse(c.Param("activityID"))
	if err != nil {
		response.BadRequest(c, "invalid activity ID")
		return nil, nil, false
	}
	activity, err := h.repo.GetByID(c.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.NotFound(c, "activity not found")
			return nil, nil, false
		}
		h.logger.Error("get activity failed", zap.Error(err), zap.String("activity_id", activityID.String()))
		response.Internal(c, "failed to load activity")
		return nil, nil, false
	}
	if activity.CompanyID != company.ID {
		response.NotFound(c, "activity not found")
		return nil, nil, false
	}
	return company, activity, true
}
