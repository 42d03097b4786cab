package sessionclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI lets tests script and block server answers. cookie stands in
// for the client's cookie jar: the identity the server would see next.
type fakeAPI struct {
	mu sync.Mutex

	session    *User
	sessionErr error
	// sessionGate, when set, blocks Session until closed.
	sessionGate   chan struct{}
	sessionCalled chan struct{}

	signIn       *User
	signInErr    error
	signInGate   chan struct{}
	signInCalled chan struct{}

	syncErr    error
	syncGate   chan struct{}
	syncCalled chan struct{}
	// syncIgnoresCancel models a response already on the wire.
	syncIgnoresCancel bool

	signOutErr error
	role       string

	cookie   *User
	syncs    []User
	signOuts int
}

func (f *fakeAPI) setCookie(u *User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cookie = u
}

func (f *fakeAPI) jar() *User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookie
}

func (f *fakeAPI) SignUp(_ context.Context, name, email, _ string) (*User, error) {
	u := &User{ID: "new-id", Name: name, Email: email, Role: "student"}
	f.setCookie(u)
	return u, nil
}

func (f *fakeAPI) SignIn(context.Context, string, string) (*User, error) {
	if f.signInCalled != nil {
		close(f.signInCalled)
	}
	if f.signInGate != nil {
		<-f.signInGate
	}
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.setCookie(f.signIn)
	return f.signIn, nil
}

func (f *fakeAPI) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.cookie = nil
	return f.signOutErr
}

func (f *fakeAPI) Session(context.Context) (*User, error) {
	if f.sessionCalled != nil {
		close(f.sessionCalled)
	}
	if f.sessionGate != nil {
		<-f.sessionGate
	}
	if f.session != nil || f.sessionErr != nil {
		return f.session, f.sessionErr
	}
	return f.jar(), nil
}

func (f *fakeAPI) Sync(ctx context.Context, u User) (*User, error) {
	if f.syncCalled != nil {
		close(f.syncCalled)
	}
	if f.syncGate != nil {
		if f.syncIgnoresCancel {
			<-f.syncGate
		} else {
			select {
			case <-f.syncGate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs = append(f.syncs, u)
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	f.cookie = &u
	return &u, nil
}

func (f *fakeAPI) Elevate(context.Context, string) (string, error) {
	if f.role == "" {
		return "", &APIError{Status: 403, Code: "invalid_code"}
	}
	return f.role, nil
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s never happened", what)
	}
}

func TestProvider_StartsLoading(t *testing.T) {
	p := NewProvider(&fakeAPI{}, NewMemoryCache())
	assert.Equal(t, StatusLoading, p.State().Status)
}

func TestProvider_InitFromCacheSyncsInBackground(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Save(ctx, ada))
	api := &fakeAPI{syncErr: errors.New("server down")}

	p := NewProvider(api, cache)
	snap := p.Init(ctx)
	p.Wait()

	assert.Equal(t, StatusAuthenticated, snap.Status)
	assert.Equal(t, ada, *snap.User)
	// failed sync does not revert
	assert.Equal(t, StatusAuthenticated, p.State().Status)
	assert.Equal(t, []User{ada}, api.syncs)
}

func TestProvider_InitFromServer(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	p := NewProvider(&fakeAPI{session: &ada}, cache)

	snap := p.Init(ctx)
	assert.Equal(t, StatusAuthenticated, snap.Status)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ada, *cached)
}

func TestProvider_InitAnonymous(t *testing.T) {
	for name, api := range map[string]*fakeAPI{
		"no session":   {},
		"server error": {sessionErr: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			p := NewProvider(api, NewMemoryCache())
			assert.Equal(t, StatusAnonymous, p.Init(context.Background()).Status)
			assert.Nil(t, p.State().User)
		})
	}
}

func TestProvider_SignInAndOut(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	api := &fakeAPI{signIn: &ada, signOutErr: errors.New("network down")}
	p := NewProvider(api, cache)
	p.Init(ctx)

	u, err := p.SignIn(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, ada, *u)
	assert.Equal(t, StatusAuthenticated, p.State().Status)

	snap := p.SignOut(ctx)
	assert.Equal(t, StatusAnonymous, snap.Status)
	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)

	// server sign-out fails; local state stays anonymous
	p.Wait()
	assert.Equal(t, 1, api.signOuts)
	assert.Equal(t, StatusAnonymous, p.State().Status)
}

func TestProvider_SignInFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&fakeAPI{signInErr: &APIError{Status: 401, Code: "invalid_credentials"}}, NewMemoryCache())
	p.Init(ctx)

	_, err := p.SignIn(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StatusAnonymous, p.State().Status)
}

func TestProvider_SignUp(t *testing.T) {
	p := NewProvider(&fakeAPI{}, NewMemoryCache())
	u, err := p.SignUp(context.Background(), "Ada", "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "new-id", u.ID)
	assert.Equal(t, StatusAuthenticated, p.State().Status)
}

func TestProvider_StaleResolutionDiscarded(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	bob := User{ID: "b", Name: "Bob", Email: "bob@example.com", Role: "teacher"}
	api := &fakeAPI{
		session:       nil,
		sessionGate:   make(chan struct{}),
		sessionCalled: make(chan struct{}),
		signIn:        &bob,
	}
	p := NewProvider(api, cache)

	initDone := make(chan Snapshot)
	go func() { initDone <- p.Init(ctx) }()

	waitFor(t, api.sessionCalled, "session lookup")

	_, err := p.SignIn(ctx, "bob@example.com", "pw")
	require.NoError(t, err)

	close(api.sessionGate)
	stale := <-initDone

	assert.Equal(t, StatusAuthenticated, stale.Status, "Init must report the newer state")
	assert.Equal(t, StatusAuthenticated, p.State().Status)
	assert.Equal(t, "b", p.State().User.ID)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "b", cached.ID)
}

func TestProvider_Subscribe(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(&fakeAPI{signIn: &ada}, NewMemoryCache())

	var got []Status
	unsubscribe := p.Subscribe(func(s Snapshot) { got = append(got, s.Status) })

	p.Init(ctx)
	_, err := p.SignIn(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	unsubscribe()
	p.SignOut(ctx)
	p.Wait()

	assert.Equal(t, []Status{StatusAnonymous, StatusAuthenticated}, got)
}

func TestProvider_Elevate(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	api := &fakeAPI{signIn: &ada}
	p := NewProvider(api, cache)
	_, err := p.SignIn(ctx, "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = p.Elevate(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, "student", p.State().User.Role)

	api.role = "teacher"
	u, err := p.Elevate(ctx, "letmeteach")
	require.NoError(t, err)
	assert.Equal(t, "teacher", u.Role)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "teacher", cached.Role)
}

func TestProvider_SignOutCancelsPendingSync(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Save(ctx, ada))
	api := &fakeAPI{syncGate: make(chan struct{}), syncCalled: make(chan struct{})}
	p := NewProvider(api, cache)

	assert.Equal(t, StatusAuthenticated, p.Init(ctx).Status)
	waitFor(t, api.syncCalled, "background sync")

	p.SignOut(ctx)
	p.Wait()

	assert.Nil(t, api.jar(), "cancelled sync must not restore the cookie")
	assert.Empty(t, api.syncs)
	assert.Equal(t, 1, api.signOuts)
	assert.Equal(t, StatusAnonymous, p.Refresh(ctx).Status)
}

func TestProvider_SignOutRunsAfterSyncInFlight(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Save(ctx, ada))
	api := &fakeAPI{
		syncGate:          make(chan struct{}),
		syncCalled:        make(chan struct{}),
		syncIgnoresCancel: true,
	}
	p := NewProvider(api, cache)

	p.Init(ctx)
	waitFor(t, api.syncCalled, "background sync")

	p.SignOut(ctx)
	// the sync response lands after sign-out was requested
	close(api.syncGate)
	p.Wait()

	assert.Len(t, api.syncs, 1)
	assert.Nil(t, api.jar(), "server sign-out must be the last call")
	assert.Equal(t, StatusAnonymous, p.Refresh(ctx).Status)
	assert.Nil(t, p.State().User)
}

func TestProvider_SignInSupersededBySignOut(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	api := &fakeAPI{
		signIn:       &ada,
		signInGate:   make(chan struct{}),
		signInCalled: make(chan struct{}),
	}
	p := NewProvider(api, cache)
	p.Init(ctx)

	type result struct {
		u   *User
		err error
	}
	done := make(chan result, 1)
	go func() {
		u, err := p.SignIn(ctx, "ada@example.com", "secret123")
		done <- result{u, err}
	}()
	waitFor(t, api.signInCalled, "sign-in request")

	p.SignOut(ctx)
	close(api.signInGate)
	res := <-done
	p.Wait()

	assert.ErrorIs(t, res.err, ErrSuperseded)
	assert.Nil(t, res.u)
	assert.Equal(t, StatusAnonymous, p.State().Status)
	assert.Nil(t, api.jar())

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

// failingSaveCache accepts loads but cannot persist.
type failingSaveCache struct{ MemoryCache }

func (c *failingSaveCache) Save(context.Context, User) error { return errors.New("disk full") }

func TestProvider_InitLogsCacheSaveFailure(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	p := NewProvider(&fakeAPI{session: &ada}, &failingSaveCache{}, WithLogger(logger))

	snap := p.Init(context.Background())

	assert.Equal(t, StatusAuthenticated, snap.Status)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "session cache save failed", hook.LastEntry().Message)
}
