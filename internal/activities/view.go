package activities

import (
	"time"

	"github.com/google/uuid"

	"github.com/trailbook/backend/internal/models"
)

// PhotoURLProvider resolves stored photo filenames to public URLs.
// *storage.S3 implements it.
type PhotoURLProvider interface {
	PhotoURL(filename string) string
	ThumbURL(filename string) string
}

// View is the API representation of an activity. Price is the displayed
// decimal value; the stored integer cents never leave the server.
type View struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	GuideID     *uuid.UUID `json:"guide_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	Price       float64    `json:"price"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	ThumbURL    string     `json:"thumb_url,omitempty"`
}

// NewView builds the API view. The URL provider may be nil (no photo URLs).
func NewView(a *models.Activity, st PhotoURLProvider) View {
	v := View{
		ID:          a.ID,
		CompanyID:   a.CompanyID,
		GuideID:     a.GuideID,
		Name:        a.Name,
		Description: a.Description,
		StartTime:   a.StartTime,
		Price:       a.Price(),
	}
	if st != nil && a.Photo != "" {
		v.PhotoURL = st.PhotoURL(a.Photo)
		v.ThumbURL = st.ThumbURL(a.Photo)
	}
	return v
}

// NewViews builds API views for a list of activities.
func NewViews(list []models.Activity, st PhotoURLProvider) []View {
	views := make([]View, 0, len(list))
	for i := range list {
		views = append(views, NewView(&list[i], st))
	}
	return views
}
