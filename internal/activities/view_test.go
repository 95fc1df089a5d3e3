package activities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trailbook/backend/internal/models"
)

type fakeURLs struct{}

func (fakeURLs) PhotoURL(filename string) string { return "http://img.test/p/" + filename }
func (fakeURLs) ThumbURL(filename string) string { return "http://img.test/t/" + filename }

func TestNewViewExposesDecimalPrice(t *testing.T) {
	a := &models.Activity{ID: uuid.New(), Name: "Canyon hike", PriceCents: 4950}

	v := NewView(a, nil)
	require.Equal(t, 49.50, v.Price)
	require.Empty(t, v.PhotoURL)
	require.Empty(t, v.ThumbURL)
}

func TestNewViewResolvesPhotoURLs(t *testing.T) {
	a := &models.Activity{ID: uuid.New(), Photo: "abc.jpg"}

	v := NewView(a, fakeURLs{})
	require.Equal(t, "http://img.test/p/abc.jpg", v.PhotoURL)
	require.Equal(t, "http://img.test/t/abc.jpg", v.ThumbURL)

	// Without a stored photo there is nothing to resolve.
	v = NewView(&models.Activity{ID: a.ID}, fakeURLs{})
	require.Empty(t, v.PhotoURL)
	require.Empty(t, v.ThumbURL)
}

func TestNewViewsPreservesOrder(t *testing.T) {
	now := time.Now()
	list := []models.Activity{
		{ID: uuid.New(), Name: "first", StartTime: now.Add(time.Hour)},
		{ID: uuid.New(), Name: "second", StartTime: now.Add(2 * time.Hour)},
		{ID: uuid.New(), Name: "third", StartTime: now.Add(3 * time.Hour)},
	}

	views := NewViews(list, nil)
	require.Len(t, views, 3)
	for i := range list {
		require.Equal(t, list[i].ID, views[i].ID)
		require.Equal(t, list[i].Name, views[i].Name)
	}

	require.Empty(t, NewViews(nil, nil))
}
