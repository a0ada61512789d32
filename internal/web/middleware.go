// Package web holds the server-side request surface: the session middleware
// gating protected routes and the magic-link callback handler.
package web

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/zeyinlabs/zeyin/internal/logger"
	"github.com/zeyinlabs/zeyin/internal/session"
)

// ProtectedPaths are the route prefixes that require an authenticated user.
var ProtectedPaths = []string{"/focus", "/quest", "/community", "/ar-live"}

// SessionResolver is the slice of the auth provider the middleware needs.
type SessionResolver interface {
	UserFromCookies(ctx context.Context, jar *session.CookieJar) (*session.Session, error)
}

type contextKey string

const sessionKey contextKey = "session"

// CurrentSession returns the session the middleware resolved for this
// request, or nil.
func CurrentSession(r *http.Request) *session.Session {
	if s, ok := r.Context().Value(sessionKey).(*session.Session); ok {
		return s
	}
	return nil
}

// WithSession binds a resolved session to the request context. The gate uses
// it; handler tests use it to simulate an authenticated request.
func WithSession(r *http.Request, s *session.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionKey, s))
}

func isProtected(p string) bool {
	for _, prefix := range ProtectedPaths {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// skipAuth excludes static assets and the go-app internals from the gate, so
// non-page resources never trigger auth calls or redirect loops.
func skipAuth(p string) bool {
	if strings.HasPrefix(p, "/web/") {
		return true
	}
	return strings.Contains(path.Base(p), ".")
}

// SessionGate runs before route handling on every request. The login route
// passes unconditionally; everywhere else the session cookie is resolved and
// unauthenticated requests to protected paths are redirected to login with
// the original path as `next`. Cookie rotations buffered during the check are
// propagated on pass-through responses.
func SessionGate(resolver SessionResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if strings.HasPrefix(p, LoginPath) || skipAuth(p) {
				next.ServeHTTP(w, r)
				return
			}

			jar := session.NewCookieJar(r)
			sess, err := resolver.UserFromCookies(r.Context(), jar)
			if err != nil {
				log.Warnf("session check failed for %s: %v", p, err)
			}

			if isProtected(p) && sess == nil {
				http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(p), http.StatusFound)
				return
			}

			jar.Apply(w)
			if sess != nil {
				r = WithSession(r, sess)
			}
			next.ServeHTTP(w, r)
		})
	}
}
