// Package store is the local persistence port. Everything the client keeps
// between visits (identity, XP, active quest, reflection log, community posts)
// is a small JSON document under a versioned key. The browser implementation
// lives in the app package on top of go-app's local storage binding; Memory is
// the in-process implementation used by tests and by the server where a
// scratch store is needed.
package store

// Versioned storage keys. Bumping a version abandons the old document instead
// of migrating it.
const (
	KeyUser        = "zeyin.user.v1"
	KeyXP          = "zeyin.xp.v1"
	KeyActiveQuest = "zeyin.activeQuest.v1"
	KeySessions    = "zeyin.focus.sessions.v1"
	KeyPosts       = "zeyin.community.posts.v1"
)

// Store reads and writes JSON documents. Load reports ok=false both for a
// missing key and for a document that fails to decode: callers fall back to
// seed or zero data and a corrupt document is never propagated to the UI.
type Store interface {
	Load(key string, into any) (ok bool, err error)
	Save(key string, v any) error
	Delete(key string)
}
