package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/prison-staff-admin/config"
	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/pkg/mailer"
	mailtpl "github.com/oksasatya/prison-staff-admin/pkg/mailer/templates"
)

const publishTimeout = 5 * time.Second

// Publisher puts a JSON message on the email queue. *helpers.RabbitPublisher implements it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Job turns a notification into the templated email job sent to its owner.
func Job(cfg *config.Config, n application.Notification) (mailer.EmailJob, error) {
	opts := []mailtpl.Option{mailtpl.WithTime(time.Now()), mailtpl.WithUsername(n.Username)}
	job := mailer.EmailJob{To: n.To}
	switch n.Kind {
	case application.NotifyRegistered:
		job.Template = mailtpl.RegisteredUser
		job.Data = mailtpl.NewRegisteredUserData(cfg, n.FullName, n.To, n.RoleName, n.Password, opts...)
	case application.NotifyCredentialsChanged:
		job.Template = mailtpl.CredentialsChanged
		job.Data = mailtpl.NewCredentialsChangedData(cfg, n.FullName, n.To, n.RoleName, n.Password, opts...)
	default:
		return mailer.EmailJob{}, fmt.Errorf("%w: unknown notification kind %q", mailer.ErrBadJob, n.Kind)
	}
	return job, nil
}

// QueueNotifier publishes email jobs for cmd/email_worker.
type QueueNotifier struct {
	Publisher Publisher
	Config    *config.Config
}

func NewQueueNotifier(p Publisher, cfg *config.Config) *QueueNotifier {
	return &QueueNotifier{Publisher: p, Config: cfg}
}

func (q *QueueNotifier) Notify(ctx context.Context, n application.Notification) error {
	job, err := Job(q.Config, n)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := q.Publisher.PublishJSON(c, job); err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}

// MailgunNotifier renders and sends in the request path, for deployments without a queue.
type MailgunNotifier struct {
	Sender mailer.Sender
	Config *config.Config
}

func NewMailgunNotifier(s mailer.Sender, cfg *config.Config) *MailgunNotifier {
	return &MailgunNotifier{Sender: s, Config: cfg}
}

func (m *MailgunNotifier) Notify(ctx context.Context, n application.Notification) error {
	job, err := Job(m.Config, n)
	if err != nil {
		return err
	}
	return mailer.Deliver(ctx, m.Sender, job)
}

// DisabledNotifier only logs; the credential is never written to the log.
type DisabledNotifier struct {
	Logger *logrus.Logger
}

func (d DisabledNotifier) Notify(_ context.Context, n application.Notification) error {
	if d.Logger != nil {
		d.Logger.WithFields(logrus.Fields{"to": n.To, "kind": n.Kind}).Info("email sending disabled; notification skipped")
	}
	return nil
}

var (
	_ application.Notifier = (*QueueNotifier)(nil)
	_ application.Notifier = (*MailgunNotifier)(nil)
	_ application.Notifier = DisabledNotifier{}
)
