package application

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	"github.com/learnflow/learnflow-auth/internal/metrics"
	"github.com/learnflow/learnflow-auth/pkg/mailer"
	mailtpl "github.com/learnflow/learnflow-auth/pkg/mailer/templates"
)

// AuthService backs the /auth endpoints: it combines the credential store
// with session issuance.
type AuthService struct {
	Credentials *CredentialService
	Sessions    SessionManager
	// Queue is optional; nil disables welcome e-mails.
	Queue  EmailQueue
	Links  mailtpl.Links
	Logger logrus.FieldLogger
}

func NewAuthService(creds *CredentialService, sessions SessionManager, queue EmailQueue, links mailtpl.Links, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Credentials: creds, Sessions: sessions, Queue: queue, Links: links, Logger: logger}
}

// SignUp creates the account and returns a session cookie for it.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*entity.User, *http.Cookie, error) {
	u, err := s.Credentials.Create(ctx, name, email, password)
	metrics.RecordAuthAttempt("sign_up", err)
	if err != nil {
		return nil, nil, err
	}
	ck, err := s.Sessions.IssueCookie(u.Public())
	if err != nil {
		return nil, nil, err
	}
	publishEmail(ctx, s.Queue, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.Links, u.Name, u.Email),
	})
	return u, ck, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*entity.User, *http.Cookie, error) {
	u, err := s.Credentials.Verify(ctx, email, password)
	metrics.RecordAuthAttempt("sign_in", err)
	if err != nil {
		return nil, nil, err
	}
	ck, err := s.Sessions.IssueCookie(u.Public())
	if err != nil {
		return nil, nil, err
	}
	return u, ck, nil
}

// SignOut only produces the clearing cookie. Tokens already handed out stay
// valid until they expire.
func (s *AuthService) SignOut() *http.Cookie {
	metrics.RecordAuthAttempt("sign_out", nil)
	return s.Sessions.ClearCookie()
}

// SyncSession re-issues a cookie for an identity the client already holds.
// The claimed identity is not checked against the store.
func (s *AuthService) SyncSession(claimed entity.SessionUser) (*entity.SessionUser, *http.Cookie, error) {
	claimed.Email = entity.NormalizeEmail(claimed.Email)
	claimed.Name = strings.TrimSpace(claimed.Name)
	if claimed.ID == "" || claimed.Email == "" || !claimed.Role.Valid() {
		metrics.RecordAuthAttempt("sync", ErrInvalidInput)
		return nil, nil, ErrInvalidInput
	}
	ck, err := s.Sessions.IssueCookie(claimed)
	metrics.RecordAuthAttempt("sync", err)
	if err != nil {
		return nil, nil, err
	}
	return &claimed, ck, nil
}
