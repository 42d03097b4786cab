package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnflow/learnflow-auth/internal/infrastructure/memory"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
	"github.com/learnflow/learnflow-auth/pkg/mailer"
	mailtpl "github.com/learnflow/learnflow-auth/pkg/mailer/templates"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testCode   = "letmeteach"
	sessionTTL = 30 * 24 * time.Hour
)

var testLinks = mailtpl.Links{AppName: "LearnFlow", AppURL: "https://learnflow.test"}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (q *fakeQueue) PublishJSON(_ context.Context, body any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, body.(mailer.EmailJob))
	return nil
}

func (q *fakeQueue) Jobs() []mailer.EmailJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]mailer.EmailJob(nil), q.jobs...)
}

var errBroker = errors.New("broker down")

type fixture struct {
	creds    *CredentialService
	sessions *CookieSessions
	auth     *AuthService
	roles    *RoleService
	queue    *fakeQueue
	codec    *helpers.TokenCodec
	cookies  *helpers.CookieManager
}

func newFixture(t *testing.T, teacherCode string, opts ...helpers.CodecOption) *fixture {
	t.Helper()
	logger := helpers.NewDiscardLogger()
	creds := NewCredentialService(memory.NewUserRepository(), logger, bcrypt.MinCost)
	codec := helpers.NewTokenCodec(testSecret, opts...)
	cookies := helpers.NewCookie("session", "", false)
	sessions := NewCookieSessions(codec, cookies, sessionTTL)
	q := &fakeQueue{}
	return &fixture{
		creds:    creds,
		sessions: sessions,
		auth:     NewAuthService(creds, sessions, q, testLinks, logger),
		roles:    NewRoleService(creds, teacherCode, q, testLinks, logger),
		queue:    q,
		codec:    codec,
		cookies:  cookies,
	}
}
