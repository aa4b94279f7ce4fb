package templates

import (
	"time"

	"github.com/oksasatya/prison-staff-admin/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithUsername(u string) Option { return func(d *EmailData) { d.Username = u } }

// NewBaseEmailData fills the shared fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email, roleName string, opts ...Option) EmailData {
	d := EmailData{
		Name:     name,
		Email:    email,
		RoleName: roleName,
		Type:     typ,
	}
	if cfg != nil {
		d.CompanyName = cfg.CompanyName
		d.CompanyAddress = cfg.CompanyAddress
		d.AppName = cfg.AppName
		d.LogoURL = cfg.LogoURL
		d.SupportURL = cfg.SupportURL
		d.LoginURL = cfg.LoginURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewRegisteredUserData(cfg *config.Config, name, email, roleName, password string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, RegisteredUser, name, email, roleName, opts...)
	d.Password = password
	return ToMap(d)
}

func NewCredentialsChangedData(cfg *config.Config, name, email, roleName, password string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, CredentialsChanged, name, email, roleName, opts...)
	d.Password = password
	return ToMap(d)
}
