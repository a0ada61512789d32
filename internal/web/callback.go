package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/zeyinlabs/zeyin/internal/logger"
	"github.com/zeyinlabs/zeyin/internal/session"
)

const (
	LoginPath    = "/login"
	CallbackPath = "/auth/callback"
	// DefaultNext is where a missing or unsafe `next` lands.
	DefaultNext = "/community"
)

// CodeExchanger is the slice of the auth provider the callback needs.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string, jar *session.CookieJar) (*session.Session, error)
}

// SafeNext sanitizes a return path. Anything that is not an absolute
// same-origin path, or that re-enters the login/auth routes, falls back to
// the default landing route.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return DefaultNext
	}
	if strings.HasPrefix(next, LoginPath) || strings.HasPrefix(next, "/auth") {
		return DefaultNext
	}
	return next
}

// Callback completes the magic-link flow: the authorization code from the
// email link is exchanged for a session and the browser is redirected to the
// sanitized `next` with the session cookies set. On failure the user lands
// back on login with an error marker; the cookies buffered by the failed
// attempt are dropped.
func Callback(exchanger CodeExchanger, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		next := SafeNext(q.Get("next"))
		code := q.Get("code")

		failTo := LoginPath + "?next=" + url.QueryEscape(next) + "&err=callback"
		if code == "" {
			http.Redirect(w, r, failTo, http.StatusSeeOther)
			return
		}

		jar := session.NewCookieJar(r)
		sess, err := exchanger.ExchangeCode(r.Context(), code, jar)
		if err != nil {
			log.Warnf("code exchange failed: %v", err)
			http.Redirect(w, r, failTo, http.StatusSeeOther)
			return
		}

		log.Infof("session established for %s", sess.Email)
		jar.Apply(w)
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}
