package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trailbook/backend/internal/models"
)

func TestRoster(t *testing.T) {
	activity := &models.Activity{
		ID:        uuid.New(),
		Name:      "Canyon Hike",
		StartTime: time.Date(2026, 9, 12, 8, 30, 0, 0, time.UTC),
	}
	participants := []models.Participant{
		{UserID: uuid.New(), Name: "Ada", Email: "ada@example.com", RegisteredAt: time.Now()},
		{UserID: uuid.New(), Name: "Ben", Email: "ben@example.com", RegisteredAt: time.Now()},
	}

	doc, err := Roster(activity, participants)
	require.NoError(t, err)
	require.True(t, len(doc) > 0)
	require.Equal(t, "%PDF", string(doc[:4]))
}

func TestRosterEmptyParticipants(t *testing.T) {
	activity := &models.Activity{ID: uuid.New(), Name: "Empty Tour", StartTime: time.Now()}
	doc, err := Roster(activity, nil)
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(doc[:4]))
}
