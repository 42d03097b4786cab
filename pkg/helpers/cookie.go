package helpers

import (
	"net/http"
	"time"
)

// CookieManager builds the session cookie. Issue and Clear share every
// attribute except value and Max-Age; browsers only overwrite a cookie whose
// name, Path and Domain match.
type CookieManager struct {
	Name   string
	Domain string
	Secure bool
}

func NewCookie(name, domain string, secure bool) *CookieManager {
	return &CookieManager{Name: name, Domain: domain, Secure: secure}
}

// Issue returns a session cookie living for ttl.
func (m *CookieManager) Issue(value string, ttl time.Duration) *http.Cookie {
	c := m.base()
	c.Value = value
	c.MaxAge = maxAgeFrom(ttl)
	return c
}

// Clear returns a cookie that makes the browser drop the session (Max-Age=0).
func (m *CookieManager) Clear() *http.Cookie {
	c := m.base()
	// net/http renders a negative MaxAge as "Max-Age=0".
	c.MaxAge = -1
	return c
}

// Read returns the raw cookie value from the request, or "" when absent.
func (m *CookieManager) Read(r *http.Request) string {
	c, err := r.Cookie(m.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *CookieManager) base() *http.Cookie {
	return &http.Cookie{
		Name:     m.Name,
		Path:     "/",
		Domain:   m.Domain,
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func maxAgeFrom(ttl time.Duration) int {
	sec := int(ttl / time.Second)
	if sec <= 0 {
		return -1
	}
	return sec
}
