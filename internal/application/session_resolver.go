package application

import (
	"net/http"
	"strings"
	"time"

	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	"github.com/learnflow/learnflow-auth/internal/metrics"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
)

// SessionManager turns requests into sessions and sessions into cookies.
type SessionManager interface {
	// Resolve returns the caller's identity or nil. It never fails.
	Resolve(r *http.Request) *entity.SessionUser
	ResolveSession(r *http.Request) *entity.Session
	IssueCookie(u entity.SessionUser) (*http.Cookie, error)
	ClearCookie() *http.Cookie
}

// CookieSessions stores the signed token in an HttpOnly cookie. Requests
// without the cookie may present the same token as a Bearer credential.
type CookieSessions struct {
	codec   *helpers.TokenCodec
	cookies *helpers.CookieManager
	ttl     time.Duration
}

func NewCookieSessions(codec *helpers.TokenCodec, cookies *helpers.CookieManager, ttl time.Duration) *CookieSessions {
	return &CookieSessions{codec: codec, cookies: cookies, ttl: ttl}
}

var _ SessionManager = (*CookieSessions)(nil)

func (s *CookieSessions) Resolve(r *http.Request) *entity.SessionUser {
	sess := s.ResolveSession(r)
	if sess == nil {
		return nil
	}
	return &sess.User
}

func (s *CookieSessions) ResolveSession(r *http.Request) *entity.Session {
	token := s.cookies.Read(r)
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		metrics.RecordResolution(metrics.OutcomeAnonymous)
		return nil
	}
	p := s.codec.Verify(token)
	if p == nil {
		metrics.RecordResolution(metrics.OutcomeInvalid)
		return nil
	}
	role, ok := entity.ParseRole(p.Role)
	if !ok {
		metrics.RecordResolution(metrics.OutcomeInvalid)
		return nil
	}
	metrics.RecordResolution(metrics.OutcomeAuthenticated)
	return &entity.Session{
		User:      entity.SessionUser{ID: p.ID, Name: p.Name, Email: p.Email, Role: role},
		IssuedAt:  p.IssuedAt,
		ExpiresAt: p.ExpiresAt,
	}
}

func (s *CookieSessions) IssueCookie(u entity.SessionUser) (*http.Cookie, error) {
	token, err := s.codec.Sign(helpers.SessionPayload{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.String(),
	}, s.ttl)
	if err != nil {
		return nil, err
	}
	return s.cookies.Issue(token, s.ttl), nil
}

func (s *CookieSessions) ClearCookie() *http.Cookie {
	return s.cookies.Clear()
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
