package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/prison-staff-admin/pkg/mailer/templates"
)

// ErrBadJob marks a job that can never be delivered (missing recipient, unknown template).
// The worker drops such jobs instead of requeueing them.
var ErrBadJob = errors.New("bad email job")

// Render resolves the subject and bodies of job, from its template when one is set.
func Render(job EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("%w: subject with text or html is required", ErrBadJob)
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	if !mailtpl.Known(job.Template) {
		return "", "", "", fmt.Errorf("%w: unknown template %q", ErrBadJob, job.Template)
	}
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	return subject, text, html, nil
}

// Deliver renders job and hands it to sender.
func Deliver(ctx context.Context, sender Sender, job EmailJob) error {
	subject, text, html, err := Render(job)
	if err != nil {
		return err
	}
	return sender.Send(ctx, job.To, subject, text, html)
}
