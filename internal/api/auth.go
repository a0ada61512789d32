package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/zeyinlabs/zeyin/internal/config"
	"github.com/zeyinlabs/zeyin/internal/logger"
	"github.com/zeyinlabs/zeyin/internal/session"
	"github.com/zeyinlabs/zeyin/internal/web"
)

// AuthProvider is the slice of the session provider the auth proxy needs.
type AuthProvider interface {
	SendOTP(ctx context.Context, email, redirectTo string) error
	SignOut(ctx context.Context, jar *session.CookieJar) error
}

// RegisterAuthRoutes mounts the auth proxy: the session probe the client
// guard polls, magic-link sending, and logout.
func RegisterAuthRoutes(mux *http.ServeMux, cfg config.Config, provider AuthProvider, log logger.Logger) {
	mux.HandleFunc("GET /api/auth/session", handleSessionProbe)
	mux.HandleFunc("POST /api/auth/otp", handleSendOTP(cfg, provider, log))
	mux.HandleFunc("POST /api/auth/logout", handleLogout(provider, log))
}

// handleSessionProbe reports the session the gate resolved from the cookies.
// Cookie rotations were already applied by the gate.
func handleSessionProbe(w http.ResponseWriter, r *http.Request) {
	sess := web.CurrentSession(r)
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":       sess.UserID,
			"email":    sess.Email,
			"metadata": sess.Metadata,
		},
	})
}

func handleSendOTP(cfg config.Config, provider AuthProvider, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Next  string `json:"next"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		email := strings.TrimSpace(strings.ToLower(req.Email))
		if email == "" {
			writeError(w, http.StatusBadRequest, "email required")
			return
		}

		redirectTo := cfg.BaseURL + web.CallbackPath + "?next=" + url.QueryEscape(web.SafeNext(req.Next))
		if err := provider.SendOTP(r.Context(), email, redirectTo); err != nil {
			log.Errorf("send otp to %s: %v", email, err)
			writeError(w, http.StatusBadGateway, "could not send login email")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	}
}

func handleLogout(provider AuthProvider, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jar := session.NewCookieJar(r)
		if err := provider.SignOut(r.Context(), jar); err != nil {
			// Best effort: the cookies are cleared regardless.
			log.Warnf("sign out: %v", err)
		}
		jar.Apply(w)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
