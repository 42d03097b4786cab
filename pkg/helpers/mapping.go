package helpers

import (
	"fmt"
	"strings"

	"github.com/learnflow/learnflow-auth/pkg/mailer"
	mailtpl "github.com/learnflow/learnflow-auth/pkg/mailer/templates"
)

// NormalizeEmailJob fills in defaults a producer may have left out and
// reports whether the job can be rendered.
func NormalizeEmailJob(job *mailer.EmailJob) error {
	job.To = strings.TrimSpace(job.To)
	if job.To == "" {
		return fmt.Errorf("email job has no recipient")
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return fmt.Errorf("email job to %s has neither template nor body", job.To)
		}
		return nil
	}
	if !mailtpl.Known(job.Template) {
		return fmt.Errorf("unknown email template %q", job.Template)
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	return nil
}
