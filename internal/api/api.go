// Package api is the JSON surface the WASM client talks to: an auth proxy in
// front of the session provider, and the profile store.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zeyinlabs/zeyin/internal/db"
	"github.com/zeyinlabs/zeyin/internal/logger"
	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/web"
)

// RegisterRoutes mounts the profile endpoints. The session gate runs in front
// of the whole mux, so handlers read the resolved session off the request.
func RegisterRoutes(mux *http.ServeMux, log logger.Logger) {
	mux.HandleFunc("GET /api/profile", handleGetProfile(log))
	mux.HandleFunc("PUT /api/profile", handleUpsertProfile(log))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleGetProfile(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := web.CurrentSession(r)
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		p, err := db.GetProfile(sess.UserID)
		if errors.Is(err, db.ErrNotFound) {
			// Distinct from other failures: the client may auto-create.
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err != nil {
			log.Errorf("get profile %s: %v", sess.UserID, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleUpsertProfile(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := web.CurrentSession(r)
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		var req struct {
			Name string       `json:"name"`
			Role profile.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.Role != "" && !req.Role.Valid() {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		if req.Role == "" {
			req.Role = profile.DefaultRole
		}
		if req.Name == "" {
			req.Name = "User"
		}

		p := profile.Profile{
			ID:    sess.UserID,
			Email: sess.Email,
			Name:  req.Name,
			Role:  req.Role,
		}
		if err := db.UpsertProfile(p); err != nil {
			log.Errorf("upsert profile %s: %v", sess.UserID, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
