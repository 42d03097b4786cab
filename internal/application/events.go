package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/metrics"
	"github.com/learnflow/learnflow-auth/pkg/mailer"
)

// EmailQueue accepts e-mail jobs for asynchronous delivery.
type EmailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

const publishTimeout = 2 * time.Second

// publishEmail hands a job to the queue. Failures are logged and counted,
// never returned: a broker outage must not fail sign-up or elevation.
func publishEmail(ctx context.Context, q EmailQueue, logger logrus.FieldLogger, job mailer.EmailJob) {
	if q == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := q.PublishJSON(ctx, job)
	metrics.RecordPublish(job.Template, err)
	if err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"template": job.Template, "to": job.To}).Warn("publish email job failed")
	}
}
