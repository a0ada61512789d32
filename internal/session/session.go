// Package session binds the app to the external auth service that owns
// sessions and magic-link delivery. The service is GoTrue-compatible; this
// package only ever observes a session's presence, its bound user identity,
// and the token cookies it rides on.
package session

import "time"

// Session is the authenticated identity resolved from the request cookies.
// The tokens are carried only so the binding can refresh and re-set them;
// nothing else in the app reads them.
type Session struct {
	UserID       string
	Email        string
	Metadata     map[string]string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
