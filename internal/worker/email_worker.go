package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/pkg/helpers"
	"github.com/learnflow/learnflow-auth/pkg/mailer"
	mailtpl "github.com/learnflow/learnflow-auth/pkg/mailer/templates"
)

// Disposition tells the consumer what to do with a delivery.
type Disposition int

const (
	Ack Disposition = iota
	// Drop rejects a message that can never succeed.
	Drop
	// Retry requeues a message after a transient failure.
	Retry
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Retry:
		return "retry"
	}
	return "unknown"
}

// EmailProcessor renders and sends one queued e-mail job.
type EmailProcessor struct {
	Sender      mailer.Sender
	Logger      logrus.FieldLogger
	SendTimeout time.Duration
}

func NewEmailProcessor(sender mailer.Sender, logger logrus.FieldLogger) *EmailProcessor {
	return &EmailProcessor{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle decodes, renders and sends body. Malformed or unrenderable jobs are
// dropped; send failures are retried.
func (p *EmailProcessor) Handle(ctx context.Context, body []byte) Disposition {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.Logger.WithError(err).Warn("bad email message")
		return Drop
	}
	if err := helpers.NormalizeEmailJob(&job); err != nil {
		p.Logger.WithError(err).Warn("rejecting email job")
		return Drop
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			p.Logger.WithError(err).WithField("template", job.Template).Error("render failed")
			return Drop
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, p.SendTimeout)
	defer cancel()
	if err := p.Sender.Send(c, job.To, subject, text, html); err != nil {
		p.Logger.WithError(err).WithFields(logrus.Fields{"template": job.Template, "to": job.To}).Warn("send failed")
		return Retry
	}
	p.Logger.WithFields(logrus.Fields{"template": job.Template, "to": job.To}).Info("email sent")
	return Ack
}
