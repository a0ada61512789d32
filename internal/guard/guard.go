// Package guard is the client-side auth gate. It decides, on mount and on
// every session-change event, whether a valid session plus profile exists,
// and redirects to the login route otherwise. It is defense in depth behind
// the server middleware: the middleware is authoritative for security, the
// guard exists for UX and for loading the profile the middleware never needs.
package guard

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/session"
)

// CheckTimeout bounds the session check; a slow network surfaces a distinct,
// retryable error instead of hanging the gate.
const CheckTimeout = 7 * time.Second

const (
	// LoginPath is where unauthenticated users are sent.
	LoginPath = "/login"
	// FallbackPath is the return target when the current route is the login
	// route itself.
	FallbackPath = "/community"
)

var (
	// ErrTimeout marks a check that lost the race against CheckTimeout.
	ErrTimeout = errors.New("auth check timed out")
	// ErrNotFound is returned by a ProfileStore when no row exists for the
	// session user. Only this error triggers the create-then-refetch
	// recovery; anything else surfaces as a retryable failure.
	ErrNotFound = errors.New("profile not found")
)

// SessionSource answers "who is signed in right now" and performs sign-out.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*session.Session, error)
	SignOut(ctx context.Context) error
}

// ProfileStore fetches and creates application profiles.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*profile.Profile, error)
	Upsert(ctx context.Context, p profile.Profile) error
}

// Navigator performs the redirect. The WASM views pass ctx.Navigate.
type Navigator interface {
	Redirect(path string)
}

type Status int

const (
	StatusChecking Status = iota
	StatusAuthenticated
	StatusRedirecting
	StatusFailed
)

// Guard owns a single authoritative auth state. The check's completion and
// session-change events are both messages delivered to it; a generation
// counter makes whichever message is stale inert, with session-loss events
// taking priority by bumping the generation themselves.
type Guard struct {
	source   SessionSource
	profiles ProfileStore
	nav      Navigator
	path     string
	timeout  time.Duration

	mu       sync.Mutex
	gen      int
	status   Status
	profile  *profile.Profile
	err      error
	onChange func()
}

// New builds a guard for the given route path. Check must be called to start
// the first evaluation.
func New(source SessionSource, profiles ProfileStore, nav Navigator, path string) *Guard {
	return &Guard{
		source:   source,
		profiles: profiles,
		nav:      nav,
		path:     path,
		timeout:  CheckTimeout,
		status:   StatusChecking,
	}
}

// SetOnChange registers a callback fired after every state change, outside
// the guard's lock. The views use it to schedule a re-render.
func (g *Guard) SetOnChange(fn func()) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// SetTimeout overrides the check timeout. Tests shrink it.
func (g *Guard) SetTimeout(d time.Duration) {
	g.mu.Lock()
	g.timeout = d
	g.mu.Unlock()
}

func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Profile is non-nil exactly in the Authenticated state. Gated content must
// render nothing until it is.
func (g *Guard) Profile() *profile.Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.profile
}

func (g *Guard) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status == StatusChecking
}

func (g *Guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Check starts a fresh evaluation, invalidating any in-flight one.
func (g *Guard) Check() {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.status = StatusChecking
	g.err = nil
	timeout := g.timeout
	g.mu.Unlock()
	g.notify()

	go g.runCheck(gen, timeout)
}

type checkResult struct {
	profile  *profile.Profile
	redirect bool
	err      error
}

func (g *Guard) runCheck(gen int, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan checkResult, 1)
	go func() { done <- g.evaluate(ctx) }()

	// First to finish wins; the loser's continuation finds the state already
	// settled and is dropped by settle.
	select {
	case <-ctx.Done():
		g.settle(gen, checkResult{err: ErrTimeout})
	case r := <-done:
		g.settle(gen, r)
	}
}

func (g *Guard) evaluate(ctx context.Context) checkResult {
	sess, err := g.source.CurrentSession(ctx)
	if err != nil {
		return checkResult{err: err}
	}
	if sess == nil {
		return checkResult{redirect: true}
	}

	p, err := g.profiles.Get(ctx, sess.UserID)
	if err == nil {
		return checkResult{profile: p}
	}
	if !errors.Is(err, ErrNotFound) {
		// A transient failure is not a missing row; creating a profile here
		// would be wrong. Surface it and let the user retry.
		return checkResult{err: err}
	}

	// First login: create the row from session metadata and fetch it back.
	fresh := profile.Profile{
		ID:    sess.UserID,
		Email: sess.Email,
		Name:  sess.Metadata["name"],
		Role:  profile.Role(sess.Metadata["role"]),
	}
	if fresh.Name == "" {
		fresh.Name = "User"
	}
	if !fresh.Role.Valid() {
		fresh.Role = profile.DefaultRole
	}
	if err := g.profiles.Upsert(ctx, fresh); err != nil {
		return checkResult{err: err}
	}
	p, err = g.profiles.Get(ctx, sess.UserID)
	if err != nil {
		return checkResult{err: err}
	}
	return checkResult{profile: p}
}

// settle applies a check outcome unless the check has been superseded or the
// state already settled (double transitions are impossible by construction).
func (g *Guard) settle(gen int, r checkResult) {
	g.mu.Lock()
	if g.gen != gen || g.status != StatusChecking {
		g.mu.Unlock()
		return
	}
	switch {
	case r.err != nil:
		g.status = StatusFailed
		g.err = r.err
	case r.redirect:
		g.status = StatusRedirecting
		g.profile = nil
	default:
		g.status = StatusAuthenticated
		g.profile = r.profile
	}
	redirect := g.status == StatusRedirecting
	g.mu.Unlock()

	g.notify()
	if redirect {
		g.redirectToLogin()
	}
}

// HandleSessionChange receives provider session-change events. Session loss
// preempts any in-flight check: the state is cleared and the user is sent to
// login immediately.
func (g *Guard) HandleSessionChange(sess *session.Session) {
	if sess != nil {
		return
	}
	g.mu.Lock()
	g.gen++
	g.profile = nil
	g.err = nil
	g.status = StatusRedirecting
	g.mu.Unlock()

	g.notify()
	g.redirectToLogin()
}

// Watch polls the session source until ctx is cancelled, feeding losses into
// HandleSessionChange. It is the session-change subscription for sources that
// cannot push.
func (g *Guard) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if g.Status() != StatusAuthenticated {
				continue
			}
			probe, cancel := context.WithTimeout(ctx, interval)
			sess, err := g.source.CurrentSession(probe)
			cancel()
			if err == nil && sess == nil {
				g.HandleSessionChange(nil)
			}
		}
	}
}

// Retry clears the error and re-runs the check from scratch.
func (g *Guard) Retry() {
	g.Check()
}

// Logout clears local state and redirects immediately. The provider sign-out
// is best effort and runs in the background: Logout is called from UI event
// handlers and must not stall on a slow provider.
func (g *Guard) Logout() {
	g.mu.Lock()
	g.gen++
	g.profile = nil
	g.err = nil
	g.status = StatusRedirecting
	g.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = g.source.SignOut(ctx)
	}()

	g.notify()
	g.redirectToLogin()
}

func (g *Guard) redirectToLogin() {
	next := g.path
	if next == "" || next == LoginPath {
		next = FallbackPath
	}
	g.nav.Redirect(LoginPath + "?next=" + url.QueryEscape(next))
}

func (g *Guard) notify() {
	g.mu.Lock()
	fn := g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}
