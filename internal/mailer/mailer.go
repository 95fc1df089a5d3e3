// Package mailer renders and sends transactional email via SendGrid.
package mailer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/queue"
)

// Message is a rendered email ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Render builds the message for a queued payload. Unknown email types are an
// error so bad jobs dead-letter instead of silently sending nothing.
func Render(baseURL string, p queue.EmailPayload) (Message, error) {
	switch p.EmailType {
	case models.EmailTypeInvitation:
		link := fmt.Sprintf("%s/register?invitation_token=%s", strings.TrimRight(baseURL, "/"), p.InviteToken)
		return Message{
			To:      p.RecipientEmail,
			Subject: "Invitation",
			Body: strings.Join([]string{
				"You have been invited to join Trailbook.",
				"",
				"Complete your registration here: " + link,
			}, "\n"),
		}, nil
	case models.EmailTypeActivityRegistration:
		return Message{
			To:      p.RecipientEmail,
			Subject: "You have successfully registered",
			Body: strings.Join([]string{
				fmt.Sprintf("Thank you for registering to the activity %s.", p.ActivityName),
				fmt.Sprintf("Start time %s.", p.ActivityStart.Format(time.RFC1123)),
			}, "\n"),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown email type %q", p.EmailType)
	}
}

// Client sends rendered messages through SendGrid.
type Client struct {
	apiKey   string
	fromName string
	fromAddr string
}

// NewClient creates a SendGrid mail client.
func NewClient(apiKey, fromName, fromAddr string) *Client {
	return &Client{apiKey: apiKey, fromName: fromName, fromAddr: fromAddr}
}

// Send delivers a message. A non-2xx SendGrid response is an error so the
// worker retries it.
func (c *Client) Send(msg Message) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient address is empty")
	}

	from := mail.NewEmail(c.fromName, c.fromAddr)
	to := mail.NewEmail("", msg.To)
	html := fmt.Sprintf("<pre>%s</pre>", msg.Body)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, html)

	resp, err := sendgrid.NewSendClient(c.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
