package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/prison-staff-admin/config"
	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/pkg/mailer"
	mailtpl "github.com/oksasatya/prison-staff-admin/pkg/mailer/templates"
)

type fakePublisher struct {
	bodies []any
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.bodies = append(f.bodies, body)
	return f.err
}

type fakeSender struct {
	to, subject, text string
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, _ string) error {
	f.to, f.subject, f.text = to, subject, text
	return nil
}

var cfg = &config.Config{AppName: "Prison Admin", CompanyName: "Central Prison"}

func registered() application.Notification {
	return application.Notification{
		Kind: application.NotifyRegistered, To: "ana@x.com", FullName: "Ana Ruiz",
		Username: "aruiz01", RoleName: "director", Password: "aB3$xY9?",
	}
}

func TestJob(t *testing.T) {
	job, err := Job(cfg, registered())
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", job.To)
	assert.Equal(t, mailtpl.RegisteredUser, job.Template)
	assert.Equal(t, "aB3$xY9?", job.Data["Password"])
	assert.Equal(t, "aruiz01", job.Data["Username"])

	n := registered()
	n.Kind = application.NotifyCredentialsChanged
	job, err = Job(cfg, n)
	require.NoError(t, err)
	assert.Equal(t, mailtpl.CredentialsChanged, job.Template)

	n.Kind = "welcome_back"
	_, err = Job(cfg, n)
	assert.ErrorIs(t, err, mailer.ErrBadJob)
}

func TestQueueNotifier(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, NewQueueNotifier(pub, cfg).Notify(context.Background(), registered()))
	require.Len(t, pub.bodies, 1)
	job, ok := pub.bodies[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, mailtpl.RegisteredUser, job.Template)

	pub.err = errors.New("channel closed")
	assert.ErrorIs(t, NewQueueNotifier(pub, cfg).Notify(context.Background(), registered()), pub.err)
}

func TestMailgunNotifier(t *testing.T) {
	s := &fakeSender{}
	require.NoError(t, NewMailgunNotifier(s, cfg).Notify(context.Background(), registered()))
	assert.Equal(t, "ana@x.com", s.to)
	assert.Equal(t, "Prison Admin: your director account is ready", s.subject)
	assert.Contains(t, s.text, "aB3$xY9?")
}

func TestDisabledNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	require.NoError(t, DisabledNotifier{Logger: logger}.Notify(context.Background(), registered()))
	require.Len(t, hook.Entries, 1)
	assert.NotContains(t, hook.LastEntry().Message, "aB3$xY9?")
	assert.Equal(t, "ana@x.com", hook.LastEntry().Data["to"])
}
