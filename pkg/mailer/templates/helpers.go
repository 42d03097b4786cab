package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}

func WithRole(role string) Option { return func(d *EmailData) { d.Role = role } }

// Links carries the product links every mail footer needs.
type Links struct {
	AppName    string
	AppURL     string
	SupportURL string
}

func newData(l Links, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:       name,
		Email:      email,
		AppName:    l.AppName,
		AppURL:     l.AppURL,
		SupportURL: l.SupportURL,
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// NewWelcomeData builds the data map for the sign-up mail.
func NewWelcomeData(l Links, name, email string, opts ...Option) map[string]any {
	return ToMap(newData(l, name, email, opts...))
}

// NewRoleElevatedData builds the data map for the role change mail.
func NewRoleElevatedData(l Links, name, email, role string, opts ...Option) map[string]any {
	return ToMap(newData(l, name, email, append([]Option{WithRole(role)}, opts...)...))
}
