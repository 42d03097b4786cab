package sessionclient

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/pkg/helpers"
)

type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Snapshot is the provider state at one point in time. Seq is the sequence
// number of the operation that produced it.
type Snapshot struct {
	Status Status
	User   *User
	Seq    uint64
}

// API is the server surface the provider needs; *Client implements it.
type API interface {
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (*User, error)
	Sync(ctx context.Context, u User) (*User, error)
	Elevate(ctx context.Context, teacherCode string) (string, error)
}

// ErrSuperseded is returned when an operation finished after a newer one
// had already changed the state; its result was not applied.
var ErrSuperseded = errors.New("superseded by a newer session operation")

// Provider tracks who the local user is. Transitions:
// Loading -> Authenticated | Anonymous, and Authenticated <-> Anonymous.
//
// Every operation takes a sequence number when it starts. Its result is
// applied only if no later operation has been applied meanwhile, so a slow
// session lookup can never overwrite a sign-in or sign-out that finished
// after it started.
//
// Server calls run one at a time in the order they were started, so the
// cookie jar always ends with the cookie of the newest call. Starting any
// operation cancels an identity sync that has not completed yet.
type Provider struct {
	api    API
	cache  LocalCache
	logger logrus.FieldLogger

	mu      sync.Mutex
	state   Snapshot
	issued  uint64
	applied uint64
	subs    map[int]func(Snapshot)
	nextSub int

	laneMu     sync.Mutex
	laneTail   chan struct{}
	cancelSync context.CancelFunc

	bg sync.WaitGroup
}

type ProviderOption func(*Provider)

func WithLogger(l logrus.FieldLogger) ProviderOption { return func(p *Provider) { p.logger = l } }

func NewProvider(api API, cache LocalCache, opts ...ProviderOption) *Provider {
	p := &Provider{
		api:    api,
		cache:  cache,
		logger: helpers.NewDiscardLogger(),
		state:  Snapshot{Status: StatusLoading},
		subs:   map[int]func(Snapshot){},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// State returns the current snapshot.
func (p *Provider) State() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for every applied transition and returns a function
// that removes it. fn runs on the goroutine that made the transition.
func (p *Provider) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Wait blocks until background server calls (sync, sign-out) have finished.
func (p *Provider) Wait() { p.bg.Wait() }

// Init resolves the initial state. A cached identity is trusted immediately
// and re-asserted to the server in the background; otherwise the server is
// asked and any failure means anonymous.
func (p *Provider) Init(ctx context.Context) Snapshot {
	seq := p.begin()

	cached, err := p.cache.Load(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("session cache load failed")
	}
	if cached != nil {
		snap, _ := p.commit(seq, StatusAuthenticated, cached, nil)
		if snap.Seq == seq {
			u := *cached
			p.background(ctx, "session sync", true, func(ctx context.Context) error {
				_, err := p.api.Sync(ctx, u)
				return err
			})
		}
		return snap
	}

	var u *User
	if err = p.settle(ctx); err == nil {
		u, err = p.api.Session(ctx)
	}
	if err != nil {
		p.logger.WithError(err).Warn("session lookup failed")
	}
	if err != nil || u == nil {
		snap, _ := p.commit(seq, StatusAnonymous, nil, nil)
		return snap
	}
	snap, err := p.commit(seq, StatusAuthenticated, u, func() error { return p.cache.Save(ctx, *u) })
	if err != nil {
		p.logger.WithError(err).Warn("session cache save failed")
	}
	return snap
}

// Refresh runs the same resolution as Init.
func (p *Provider) Refresh(ctx context.Context) Snapshot { return p.Init(ctx) }

func (p *Provider) SignIn(ctx context.Context, email, password string) (*User, error) {
	seq := p.begin()
	release, err := p.enter(ctx)
	if err != nil {
		return nil, err
	}
	u, err := p.api.SignIn(ctx, email, password)
	release()
	if err != nil {
		return nil, err
	}
	return p.authenticated(ctx, seq, u)
}

func (p *Provider) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	seq := p.begin()
	release, err := p.enter(ctx)
	if err != nil {
		return nil, err
	}
	u, err := p.api.SignUp(ctx, name, email, password)
	release()
	if err != nil {
		return nil, err
	}
	return p.authenticated(ctx, seq, u)
}

// SignOut forgets the identity locally right away and tells the server in
// the background. The server call's outcome never changes local state.
func (p *Provider) SignOut(ctx context.Context) Snapshot {
	seq := p.begin()
	snap, err := p.commit(seq, StatusAnonymous, nil, func() error { return p.cache.Clear(ctx) })
	if err != nil {
		p.logger.WithError(err).Warn("session cache clear failed")
	}
	p.background(ctx, "sign-out", false, p.api.SignOut)
	return snap
}

// Elevate submits the teacher code and, on success, records the new role.
func (p *Provider) Elevate(ctx context.Context, teacherCode string) (*User, error) {
	seq := p.begin()
	release, err := p.enter(ctx)
	if err != nil {
		return nil, err
	}
	role, err := p.api.Elevate(ctx, teacherCode)
	release()
	if err != nil {
		return nil, err
	}
	cur := p.State().User
	if cur == nil {
		return nil, ErrUnauthorized
	}
	u := *cur
	u.Role = role
	return p.authenticated(ctx, seq, &u)
}

func (p *Provider) authenticated(ctx context.Context, seq uint64, u *User) (*User, error) {
	if u == nil {
		return nil, ErrInvalidPayload
	}
	snap, err := p.commit(seq, StatusAuthenticated, u, func() error { return p.cache.Save(ctx, *u) })
	if snap.Seq != seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		p.logger.WithError(err).Warn("session cache save failed")
	}
	return snap.User, nil
}

func (p *Provider) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

// commit applies a transition if seq is not older than the last applied
// one. persist runs under the lock so cache contents follow the same order
// as state. Subscribers are notified after the lock is released.
func (p *Provider) commit(seq uint64, status Status, u *User, persist func() error) (Snapshot, error) {
	p.mu.Lock()
	if seq < p.applied {
		snap := p.state
		p.mu.Unlock()
		return snap, nil
	}
	var err error
	if persist != nil {
		err = persist()
	}
	var cp *User
	if u != nil {
		c := *u
		cp = &c
	}
	p.applied = seq
	p.state = Snapshot{Status: status, User: cp, Seq: seq}
	snap := p.state
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}

	// callers get their own copy
	if snap.User != nil {
		c := *snap.User
		snap.User = &c
	}
	return snap, err
}

// join appends a slot to the lane and cancels a pending sync. It returns the
// slot's predecessor and the function that frees the slot.
func (p *Provider) join(isSync bool, cancel context.CancelFunc) (prev <-chan struct{}, release func()) {
	done := make(chan struct{})
	p.laneMu.Lock()
	if p.cancelSync != nil {
		p.cancelSync()
		p.cancelSync = nil
	}
	if isSync {
		p.cancelSync = cancel
	}
	prev = p.laneTail
	p.laneTail = done
	p.laneMu.Unlock()

	var once sync.Once
	return prev, func() { once.Do(func() { close(done) }) }
}

// enter waits for every earlier server call to finish. The caller must call
// release once its own server call has returned.
func (p *Provider) enter(ctx context.Context) (func(), error) {
	prev, release := p.join(false, nil)
	if prev == nil {
		return release, nil
	}
	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// keep the lane ordered for whoever comes next
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}

// settle cancels a pending sync and waits for earlier server calls without
// holding later ones back. Lookups use it; their results are ordered by seq.
func (p *Provider) settle(ctx context.Context) error {
	p.laneMu.Lock()
	if p.cancelSync != nil {
		p.cancelSync()
		p.cancelSync = nil
	}
	tail := p.laneTail
	p.laneMu.Unlock()
	if tail == nil {
		return nil
	}
	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// background queues call behind every earlier server call. A queued sync is
// cancelled by the next operation; other calls always run.
func (p *Provider) background(ctx context.Context, what string, isSync bool, call func(context.Context) error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	prev, release := p.join(isSync, cancel)

	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		defer release()
		defer cancel()
		if prev != nil {
			<-prev
		}
		if ctx.Err() != nil {
			p.logger.Debugf("%s cancelled before it started", what)
			return
		}
		if err := call(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Debugf("%s cancelled", what)
				return
			}
			p.logger.WithError(err).Warnf("%s failed", what)
		}
	}()
}
