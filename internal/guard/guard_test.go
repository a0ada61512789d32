package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/session"
)

type fakeSource struct {
	mu           sync.Mutex
	sess         *session.Session
	err          error
	block        chan struct{} // when non-nil, CurrentSession waits for it
	signOutBlock chan struct{} // when non-nil, SignOut waits for it
	signOutErr   error
	signOuts     int
}

func (f *fakeSource) CurrentSession(ctx context.Context) (*session.Session, error) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess, f.err
}

func (f *fakeSource) SignOut(ctx context.Context) error {
	f.mu.Lock()
	block := f.signOutBlock
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return f.signOutErr
}

func (f *fakeSource) signOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOuts
}

type fakeProfiles struct {
	mu      sync.Mutex
	rows    map[string]profile.Profile
	getErr  error
	upserts []profile.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[string]profile.Profile{}}
}

func (f *fakeProfiles) Get(ctx context.Context, id string) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) Upsert(ctx context.Context, p profile.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, p)
	f.rows[p.ID] = p
	return nil
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeNav) Redirect(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

func (f *fakeNav) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paths) == 0 {
		return ""
	}
	return f.paths[len(f.paths)-1]
}

func waitStatus(t *testing.T, g *Guard, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return g.Status() == want },
		2*time.Second, 5*time.Millisecond, "status never reached %v", want)
}

func TestNoSessionRedirectsWithNext(t *testing.T) {
	nav := &fakeNav{}
	g := New(&fakeSource{}, newFakeProfiles(), nav, "/focus")
	g.Check()
	waitStatus(t, g, StatusRedirecting)
	assert.Equal(t, "/login?next=%2Ffocus", nav.last())
	assert.Nil(t, g.Profile())
}

func TestLoginRouteFallsBackToCommunity(t *testing.T) {
	nav := &fakeNav{}
	g := New(&fakeSource{}, newFakeProfiles(), nav, "/login")
	g.Check()
	waitStatus(t, g, StatusRedirecting)
	assert.Equal(t, "/login?next=%2Fcommunity", nav.last())
}

func TestSessionWithProfileAuthenticates(t *testing.T) {
	src := &fakeSource{sess: &session.Session{UserID: "u1", Email: "mom@example.com"}}
	profiles := newFakeProfiles()
	profiles.rows["u1"] = profile.Profile{ID: "u1", Email: "mom@example.com", Name: "Mom", Role: profile.RoleParent}

	g := New(src, profiles, &fakeNav{}, "/focus")
	g.Check()
	waitStatus(t, g, StatusAuthenticated)
	require.NotNil(t, g.Profile())
	assert.Equal(t, "Mom", g.Profile().Name)
	assert.False(t, g.Loading())
	assert.NoError(t, g.Err())
}

func TestMissingProfileCreatedFromSessionMetadata(t *testing.T) {
	src := &fakeSource{sess: &session.Session{
		UserID:   "u1",
		Email:    "t@example.com",
		Metadata: map[string]string{"name": "Ms. Lee", "role": "Teacher"},
	}}
	profiles := newFakeProfiles()

	g := New(src, profiles, &fakeNav{}, "/community")
	g.Check()
	waitStatus(t, g, StatusAuthenticated)

	require.Len(t, profiles.upserts, 1)
	assert.Equal(t, "Ms. Lee", profiles.upserts[0].Name)
	assert.Equal(t, profile.RoleTeacher, profiles.upserts[0].Role)
	assert.Equal(t, "Ms. Lee", g.Profile().Name)
}

func TestMissingProfileDefaultsWhenMetadataAbsent(t *testing.T) {
	src := &fakeSource{sess: &session.Session{UserID: "u1", Email: "x@example.com"}}
	profiles := newFakeProfiles()

	g := New(src, profiles, &fakeNav{}, "/community")
	g.Check()
	waitStatus(t, g, StatusAuthenticated)

	require.Len(t, profiles.upserts, 1)
	assert.Equal(t, "User", profiles.upserts[0].Name)
	assert.Equal(t, profile.DefaultRole, profiles.upserts[0].Role)
}

func TestTransientProfileErrorDoesNotCreate(t *testing.T) {
	src := &fakeSource{sess: &session.Session{UserID: "u1"}}
	profiles := newFakeProfiles()
	profiles.getErr = errors.New("connection reset")

	g := New(src, profiles, &fakeNav{}, "/community")
	g.Check()
	waitStatus(t, g, StatusFailed)
	assert.Empty(t, profiles.upserts, "a non-not-found error must not auto-create a profile")
	assert.Error(t, g.Err())
	assert.NotErrorIs(t, g.Err(), ErrTimeout)
}

func TestTimeoutSurfacesDistinctError(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{sess: &session.Session{UserID: "u1"}, block: block}

	g := New(src, newFakeProfiles(), &fakeNav{}, "/focus")
	g.SetTimeout(30 * time.Millisecond)
	g.Check()
	waitStatus(t, g, StatusFailed)
	assert.ErrorIs(t, g.Err(), ErrTimeout)

	// The slow check finishing later must not flip the settled state.
	close(block)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusFailed, g.Status())
	assert.Nil(t, g.Profile())
}

func TestSessionLossPreemptsInFlightCheck(t *testing.T) {
	block := make(chan struct{})
	profiles := newFakeProfiles()
	profiles.rows["u1"] = profile.Profile{ID: "u1", Name: "Mom", Role: profile.RoleParent}
	src := &fakeSource{sess: &session.Session{UserID: "u1"}, block: block}
	nav := &fakeNav{}

	g := New(src, profiles, nav, "/focus")
	g.Check()
	require.Equal(t, StatusChecking, g.Status())

	// The provider reports session loss while the check hangs.
	g.HandleSessionChange(nil)
	assert.Equal(t, StatusRedirecting, g.Status())
	assert.Equal(t, "/login?next=%2Ffocus", nav.last())

	// The check then completes with a valid session: it lost the race and
	// must stay inert.
	close(block)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusRedirecting, g.Status())
	assert.Nil(t, g.Profile())
}

func TestSessionChangeWithSessionIsIgnored(t *testing.T) {
	nav := &fakeNav{}
	g := New(&fakeSource{}, newFakeProfiles(), nav, "/focus")
	g.HandleSessionChange(&session.Session{UserID: "u1"})
	assert.Empty(t, nav.paths)
}

func TestRetryAfterFailure(t *testing.T) {
	src := &fakeSource{sess: &session.Session{UserID: "u1"}}
	profiles := newFakeProfiles()
	profiles.getErr = errors.New("boom")

	g := New(src, profiles, &fakeNav{}, "/community")
	g.Check()
	waitStatus(t, g, StatusFailed)

	profiles.mu.Lock()
	profiles.getErr = nil
	profiles.rows["u1"] = profile.Profile{ID: "u1", Name: "Mom", Role: profile.RoleParent}
	profiles.mu.Unlock()

	g.Retry()
	waitStatus(t, g, StatusAuthenticated)
	assert.NoError(t, g.Err())
}

func TestLogoutClearsStateEvenWhenSignOutFails(t *testing.T) {
	src := &fakeSource{
		sess:       &session.Session{UserID: "u1"},
		signOutErr: errors.New("provider down"),
	}
	profiles := newFakeProfiles()
	profiles.rows["u1"] = profile.Profile{ID: "u1", Name: "Mom", Role: profile.RoleParent}
	nav := &fakeNav{}

	g := New(src, profiles, nav, "/community")
	g.Check()
	waitStatus(t, g, StatusAuthenticated)

	g.Logout()
	assert.Equal(t, StatusRedirecting, g.Status())
	assert.Nil(t, g.Profile())
	assert.Equal(t, "/login?next=%2Fcommunity", nav.last())
	require.Eventually(t, func() bool { return src.signOutCount() == 1 },
		2*time.Second, 5*time.Millisecond)
}

func TestLogoutDoesNotWaitForSignOut(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{
		sess:         &session.Session{UserID: "u1"},
		signOutBlock: block,
	}
	profiles := newFakeProfiles()
	profiles.rows["u1"] = profile.Profile{ID: "u1", Name: "Mom", Role: profile.RoleParent}
	nav := &fakeNav{}

	g := New(src, profiles, nav, "/community")
	g.Check()
	waitStatus(t, g, StatusAuthenticated)

	// The provider hangs; the local clear and redirect must not.
	g.Logout()
	assert.Equal(t, StatusRedirecting, g.Status())
	assert.Nil(t, g.Profile())
	assert.Equal(t, "/login?next=%2Fcommunity", nav.last())
	assert.Equal(t, 0, src.signOutCount())

	close(block)
	require.Eventually(t, func() bool { return src.signOutCount() == 1 },
		2*time.Second, 5*time.Millisecond)
}

func TestWatchDetectsSessionLoss(t *testing.T) {
	src := &fakeSource{sess: &session.Session{UserID: "u1"}}
	profiles := newFakeProfiles()
	profiles.rows["u1"] = profile.Profile{ID: "u1", Name: "Mom", Role: profile.RoleParent}
	nav := &fakeNav{}

	g := New(src, profiles, nav, "/focus")
	g.Check()
	waitStatus(t, g, StatusAuthenticated)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Watch(ctx, 10*time.Millisecond)

	src.mu.Lock()
	src.sess = nil
	src.mu.Unlock()

	waitStatus(t, g, StatusRedirecting)
	assert.Equal(t, "/login?next=%2Ffocus", nav.last())
}
