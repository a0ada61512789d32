package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeyinlabs/zeyin/internal/logger"
	"github.com/zeyinlabs/zeyin/internal/session"
)

type fakeResolver struct {
	sess    *session.Session
	err     error
	calls   int
	rotated bool
}

func (f *fakeResolver) UserFromCookies(ctx context.Context, jar *session.CookieJar) (*session.Session, error) {
	f.calls++
	if f.rotated {
		jar.Set("zeyin-access-token", "rotated", 3600)
	}
	return f.sess, f.err
}

func gateRequest(t *testing.T, resolver *fakeResolver, target string) (*httptest.ResponseRecorder, *session.Session) {
	t.Helper()
	var seen *session.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentSession(r)
		w.WriteHeader(http.StatusOK)
	})
	h := SessionGate(resolver, logger.Nop())(next)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec, seen
}

func TestProtectedPathRedirectsWithoutUser(t *testing.T) {
	rec, _ := gateRequest(t, &fakeResolver{}, "/community")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fcommunity", rec.Header().Get("Location"))
}

func TestProtectedSubPathRedirects(t *testing.T) {
	rec, _ := gateRequest(t, &fakeResolver{}, "/focus/settings")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Ffocus%2Fsettings", rec.Header().Get("Location"))
}

func TestLoginAlwaysPassesThrough(t *testing.T) {
	resolver := &fakeResolver{}
	rec, _ := gateRequest(t, resolver, "/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, resolver.calls, "login route never triggers an auth call")
}

func TestUnprotectedPathPassesWithoutUser(t *testing.T) {
	rec, seen := gateRequest(t, &fakeResolver{}, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)
}

func TestAuthenticatedRequestCarriesSession(t *testing.T) {
	resolver := &fakeResolver{sess: &session.Session{UserID: "u1", Email: "mom@example.com"}}
	rec, seen := gateRequest(t, resolver, "/community")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
}

func TestAssetsAndAppInternalsSkipAuth(t *testing.T) {
	resolver := &fakeResolver{}
	for _, target := range []string{
		"/web/app.wasm",
		"/app.js",
		"/app-worker.js",
		"/manifest.webmanifest",
		"/favicon.ico",
		"/styles/app.css",
	} {
		rec, _ := gateRequest(t, resolver, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
	assert.Zero(t, resolver.calls)
}

func TestRotatedCookiesPropagateOnPassThrough(t *testing.T) {
	resolver := &fakeResolver{
		sess:    &session.Session{UserID: "u1"},
		rotated: true,
	}
	rec, _ := gateRequest(t, resolver, "/community")
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "rotated", cookies[0].Value)
}

func TestResolverErrorTreatedAsNoUser(t *testing.T) {
	resolver := &fakeResolver{err: assert.AnError}
	rec, _ := gateRequest(t, resolver, "/quest")
	assert.Equal(t, http.StatusFound, rec.Code)
}
