// Package worker processes queued email jobs: render, send via SendGrid,
// record the delivery outcome.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/mailer"
	"github.com/trailbook/backend/pkg/queue"
)

// Sender delivers rendered messages.
type Sender interface {
	Send(msg mailer.Message) error
}

// DeliveryLog records delivery outcomes.
type DeliveryLog interface {
	RecordSent(ctx context.Context, emailType, recipient, subject string) error
	RecordFailed(ctx context.Context, emailType, recipient, subject, errMsg string) error
}

// EmailProcessor sends queued emails and records each attempt.
type EmailProcessor struct {
	sender  Sender
	log     DeliveryLog
	queue   *queue.Queue
	baseURL string
	logger  *zap.Logger
}

// NewEmailProcessor creates an email processor.
func NewEmailProcessor(sender Sender, log DeliveryLog, q *queue.Queue, baseURL string, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{sender: sender, log: log, queue: q, baseURL: baseURL, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	msg, err := mailer.Render(p.baseURL, job.Payload)
	if err != nil {
		return err
	}

	if err := p.sender.Send(msg); err != nil {
		if logErr := p.log.RecordFailed(ctx, job.Payload.EmailType, msg.To, msg.Subject, err.Error()); logErr != nil {
			p.logger.Error("record failed delivery", zap.Error(logErr))
		}
		return err
	}

	if err := p.log.RecordSent(ctx, job.Payload.EmailType, msg.To, msg.Subject); err != nil {
		// Delivery succeeded; a missed audit row is not worth a duplicate send.
		p.logger.Error("record sent delivery", zap.Error(err))
	}

	p.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("email_type", job.Payload.EmailType),
		zap.String("recipient", msg.To))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("email_type", job.Payload.EmailType))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
