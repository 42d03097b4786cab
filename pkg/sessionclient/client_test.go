package sessionclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnflow/learnflow-auth/config"
	"github.com/learnflow/learnflow-auth/internal/container"
	"github.com/learnflow/learnflow-auth/internal/infrastructure/memory"
	"github.com/learnflow/learnflow-auth/internal/router"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
	"github.com/learnflow/learnflow-auth/pkg/sessionclient"
)

func newAPI(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:               config.EnvDevelopment,
		SessionSecret:     "0123456789abcdef0123456789abcdef",
		SessionTTL:        30 * 24 * time.Hour,
		SessionCookieName: "session",
		TeacherCode:       "letmeteach",
	}
	c := container.New(cfg, helpers.NewDiscardLogger(), container.Infra{
		Users:      memory.NewUserRepository(),
		BcryptCost: bcrypt.MinCost,
	})
	srv := httptest.NewServer(router.NewEngine(c))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestClient_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := sessionclient.NewClient(newAPI(t))
	require.NoError(t, err)

	u, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, u, "fresh client is anonymous")

	created, err := c.SignUp(ctx, "Ada", "Ada@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "student", created.Role)

	u, err = c.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)

	role, err := c.Elevate(ctx, "letmeteach")
	require.NoError(t, err)
	assert.Equal(t, "teacher", role)

	u, err = c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "teacher", u.Role)

	require.NoError(t, c.SignOut(ctx))
	u, err = c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = c.SignIn(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "teacher", u.Role)
}

func TestClient_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	c, err := sessionclient.NewClient(newAPI(t))
	require.NoError(t, err)

	_, err = c.Elevate(ctx, "letmeteach")
	assert.ErrorIs(t, err, sessionclient.ErrUnauthorized)

	_, err = c.SignUp(ctx, "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	_, err = c.SignUp(ctx, "Ada", "ada@example.com", "secret123")
	assert.ErrorIs(t, err, sessionclient.ErrDuplicateEmail)

	_, err = c.Elevate(ctx, "guess")
	assert.ErrorIs(t, err, sessionclient.ErrInvalidCode)

	_, err = c.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, sessionclient.ErrInvalidCredentials)

	_, err = c.SignUp(ctx, "", "not-an-email", "x")
	assert.ErrorIs(t, err, sessionclient.ErrInvalidPayload)
	var apiErr *sessionclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.NotEmpty(t, apiErr.Details)
}

func TestClient_SyncRestoresCookie(t *testing.T) {
	ctx := context.Background()
	base := newAPI(t)

	first, err := sessionclient.NewClient(base)
	require.NoError(t, err)
	ada, err := first.SignUp(ctx, "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	// a second client with only the cached identity
	second, err := sessionclient.NewClient(base)
	require.NoError(t, err)
	synced, err := second.Sync(ctx, *ada)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, synced.ID)

	u, err := second.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, ada.Email, u.Email)
}

func TestProvider_AgainstServer(t *testing.T) {
	ctx := context.Background()
	c, err := sessionclient.NewClient(newAPI(t))
	require.NoError(t, err)
	cache := sessionclient.NewMemoryCache()
	p := sessionclient.NewProvider(c, cache)

	assert.Equal(t, sessionclient.StatusAnonymous, p.Init(ctx).Status)

	_, err = p.SignUp(ctx, "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)
	u, err := p.Elevate(ctx, "letmeteach")
	require.NoError(t, err)
	assert.Equal(t, "teacher", u.Role)

	p.SignOut(ctx)
	p.Wait()
	assert.Equal(t, sessionclient.StatusAnonymous, p.State().Status)

	s, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

// slowSync holds /session/sync requests back for delay.
type slowSync struct {
	next  http.RoundTripper
	delay time.Duration
}

func (s slowSync) RoundTrip(r *http.Request) (*http.Response, error) {
	if strings.HasSuffix(r.URL.Path, "/session/sync") {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return nil, r.Context().Err()
		}
	}
	return s.next.RoundTrip(r)
}

func TestProvider_SlowSyncCannotUndoSignOut(t *testing.T) {
	ctx := context.Background()
	base := newAPI(t)

	seed, err := sessionclient.NewClient(base)
	require.NoError(t, err)
	ada, err := seed.SignUp(ctx, "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c, err := sessionclient.NewClient(base, sessionclient.WithHTTPClient(&http.Client{
		Jar:       jar,
		Transport: slowSync{next: http.DefaultTransport, delay: 300 * time.Millisecond},
	}))
	require.NoError(t, err)

	cache := sessionclient.NewMemoryCache()
	require.NoError(t, cache.Save(ctx, *ada))
	p := sessionclient.NewProvider(c, cache)

	assert.Equal(t, sessionclient.StatusAuthenticated, p.Init(ctx).Status)
	p.SignOut(ctx)
	p.Wait()

	assert.Equal(t, sessionclient.StatusAnonymous, p.Refresh(ctx).Status)
	u, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}
