package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/queue"
)

func TestRenderInvitation(t *testing.T) {
	msg, err := Render("https://trailbook.example.com/", queue.EmailPayload{
		EmailType:      models.EmailTypeInvitation,
		RecipientEmail: "guide@example.com",
		InviteToken:    "tok-123",
	})
	require.NoError(t, err)
	require.Equal(t, "guide@example.com", msg.To)
	require.Equal(t, "Invitation", msg.Subject)
	require.Contains(t, msg.Body, "https://trailbook.example.com/register?invitation_token=tok-123")
}

func TestRenderActivityRegistration(t *testing.T) {
	start := time.Date(2026, 9, 12, 8, 30, 0, 0, time.UTC)
	msg, err := Render("https://trailbook.example.com", queue.EmailPayload{
		EmailType:      models.EmailTypeActivityRegistration,
		RecipientEmail: "cam@example.com",
		ActivityName:   "River Kayaking",
		ActivityStart:  start,
	})
	require.NoError(t, err)
	require.Equal(t, "You have successfully registered", msg.Subject)
	require.Contains(t, msg.Body, "Thank you for registering to the activity River Kayaking")
	require.Contains(t, msg.Body, start.Format(time.RFC1123))
}

func TestRenderUnknownType(t *testing.T) {
	_, err := Render("https://x.example.com", queue.EmailPayload{EmailType: "password_reset"})
	require.Error(t, err)
}
