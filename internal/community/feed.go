// Package community is the supportive message board: a local, newest-first
// feed of short posts from parents, teachers and relatives.
package community

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/store"
)

// MinPostLen is the minimum trimmed length of a post body.
const MinPostLen = 5

// ErrTooShort rejects posts under MinPostLen trimmed characters.
var ErrTooShort = errors.New("community: post text too short")

type Post struct {
	ID        string       `json:"id"`
	Author    string       `json:"author"`
	Role      profile.Role `json:"role"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Feed is the post list bound to a store. Single writer; the UI event loop.
type Feed struct {
	store store.Store
	posts []Post
	now   func() time.Time
}

// NewFeed loads the stored feed, normalizing each post (missing ids get a
// fresh one, blank authors become "Unknown", unknown roles fall back to the
// default). When nothing usable is stored the feed starts from the seed
// posts.
func NewFeed(st store.Store) *Feed {
	f := &Feed{store: st, now: time.Now}

	var raw []Post
	ok, err := st.Load(store.KeyPosts, &raw)
	if err == nil && ok {
		for i := range raw {
			raw[i] = normalize(raw[i], f.now)
		}
		f.posts = raw
		return f
	}

	f.posts = seed(f.now())
	f.persist()
	return f
}

// SetNow replaces the clock. Tests pin it.
func (f *Feed) SetNow(now func() time.Time) { f.now = now }

func normalize(p Post, now func() time.Time) Post {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Author = SafeAuthor(p.Author)
	if !p.Role.Valid() {
		p.Role = profile.DefaultRole
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	return p
}

func seed(now time.Time) []Post {
	return []Post{
		{
			ID:        uuid.NewString(),
			Author:    "Mom",
			Role:      profile.RoleParent,
			Text:      "I saw you finished a focus quest — it gets easier from here ❤️",
			CreatedAt: now.Add(-25 * time.Minute),
		},
		{
			ID:        uuid.NewString(),
			Author:    "Teacher",
			Role:      profile.RoleTeacher,
			Text:      "Repeat the 10 minutes tomorrow — that already counts as a win.",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        uuid.NewString(),
			Author:    "Aunt",
			Role:      profile.RoleRelative,
			Text:      "Small steps every day add up to a big result.",
			CreatedAt: now.Add(-6 * time.Hour),
		},
	}
}

// Posts returns the feed, newest first.
func (f *Feed) Posts() []Post { return f.posts }

// CanPost reports whether text clears the minimum length.
func CanPost(text string) bool {
	return len(strings.TrimSpace(text)) >= MinPostLen
}

// Add prepends a new post and persists the feed.
func (f *Feed) Add(author string, role profile.Role, text string) (Post, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinPostLen {
		return Post{}, ErrTooShort
	}
	if !role.Valid() {
		role = profile.DefaultRole
	}
	p := Post{
		ID:        uuid.NewString(),
		Author:    SafeAuthor(author),
		Role:      role,
		Text:      trimmed,
		CreatedAt: f.now(),
	}
	f.posts = append([]Post{p}, f.posts...)
	f.persist()
	return p, nil
}

// Remove deletes the post with the given id, if present.
func (f *Feed) Remove(id string) {
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			f.persist()
			return
		}
	}
}

func (f *Feed) persist() {
	// Best effort; a failed write costs nothing but durability.
	_ = f.store.Save(store.KeyPosts, f.posts)
}

// SafeAuthor substitutes "Unknown" for a blank author name.
func SafeAuthor(a string) string {
	if v := strings.TrimSpace(a); v != "" {
		return v
	}
	return "Unknown"
}

// TimeAgo renders a coarse relative timestamp for the feed.
func TimeAgo(ts, now time.Time) string {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = 0
	}
	min := int(diff / time.Minute)
	switch {
	case min < 1:
		return "just now"
	case min < 60:
		return fmt.Sprintf("%d min ago", min)
	case min < 24*60:
		return fmt.Sprintf("%d h ago", min/60)
	default:
		return fmt.Sprintf("%d d ago", min/(24*60))
	}
}
