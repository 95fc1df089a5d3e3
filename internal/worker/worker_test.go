package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/mailer"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/queue"
)

type fakeSender struct {
	err  error
	sent []mailer.Message
}

func (f *fakeSender) Send(msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeLog struct {
	sent   []string
	failed []string
}

func (f *fakeLog) RecordSent(_ context.Context, emailType, recipient, subject string) error {
	f.sent = append(f.sent, recipient)
	return nil
}

func (f *fakeLog) RecordFailed(_ context.Context, emailType, recipient, subject, errMsg string) error {
	f.failed = append(f.failed, recipient)
	return nil
}

func invitationJob() *queue.Job {
	return &queue.Job{
		ID: "job-1",
		Payload: queue.EmailPayload{
			EmailType:      models.EmailTypeInvitation,
			RecipientEmail: "guide@example.com",
			InviteToken:    "tok",
		},
	}
}

func TestProcessSendsAndLogs(t *testing.T) {
	sender := &fakeSender{}
	log := &fakeLog{}
	p := NewEmailProcessor(sender, log, nil, "https://trailbook.example.com", zap.NewNop())

	require.NoError(t, p.Process(context.Background(), invitationJob()))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "Invitation", sender.sent[0].Subject)
	require.Equal(t, []string{"guide@example.com"}, log.sent)
	require.Empty(t, log.failed)
}

func TestProcessSendFailureIsLoggedAndReturned(t *testing.T) {
	sender := &fakeSender{err: errors.New("sendgrid down")}
	log := &fakeLog{}
	p := NewEmailProcessor(sender, log, nil, "https://trailbook.example.com", zap.NewNop())

	err := p.Process(context.Background(), invitationJob())
	require.Error(t, err)
	require.Equal(t, []string{"guide@example.com"}, log.failed)
	require.Empty(t, log.sent)
}

func TestProcessUnknownTypeFailsWithoutSending(t *testing.T) {
	sender := &fakeSender{}
	log := &fakeLog{}
	p := NewEmailProcessor(sender, log, nil, "https://trailbook.example.com", zap.NewNop())

	err := p.Process(context.Background(), &queue.Job{
		ID:      "job-2",
		Payload: queue.EmailPayload{EmailType: "newsletter"},
	})
	require.Error(t, err)
	require.Empty(t, sender.sent)
	require.Empty(t, log.failed)
}
