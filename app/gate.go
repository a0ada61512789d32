package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zeyinlabs/zeyin/internal/guard"
	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/session"
	"github.com/zeyinlabs/zeyin/internal/store"
)

const sessionPollInterval = 30 * time.Second

// httpSessionSource resolves the current session through the server probe.
// The session cookies ride along automatically; rotations are applied by the
// server-side gate before the probe handler runs.
type httpSessionSource struct{}

func (httpSessionSource) CurrentSession(ctx context.Context) (*session.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/api/auth/session", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session probe: status %d", resp.StatusCode)
	}

	var out struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			ID       string            `json:"id"`
			Email    string            `json:"email"`
			Metadata map[string]string `json:"metadata"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("session probe: %w", err)
	}
	if !out.Authenticated {
		return nil, nil
	}
	return &session.Session{
		UserID:   out.User.ID,
		Email:    out.User.Email,
		Metadata: out.User.Metadata,
	}, nil
}

func (httpSessionSource) SignOut(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// httpProfileStore reads and writes the server-side profile row. A 404 maps
// to guard.ErrNotFound so the guard can tell "no row yet" apart from a
// transient failure.
type httpProfileStore struct{}

func (httpProfileStore) Get(ctx context.Context, id string) (*profile.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/api/profile", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var p profile.Profile
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		return &p, nil
	case http.StatusNotFound:
		return nil, guard.ErrNotFound
	default:
		return nil, fmt.Errorf("get profile: status %d", resp.StatusCode)
	}
}

func (httpProfileStore) Upsert(ctx context.Context, p profile.Profile) error {
	body, err := json.Marshal(map[string]string{
		"name": p.Name,
		"role": string(p.Role),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, "/api/profile", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upsert profile: status %d", resp.StatusCode)
	}
	return nil
}

// windowNavigator performs a full browser navigation. The login route runs
// through the server so the middleware sees a fresh request.
type windowNavigator struct{}

func (windowNavigator) Redirect(path string) {
	app.Window().Get("location").Set("href", path)
}

// AuthGate wraps a protected view. It renders a loading state while the
// session check runs, the child once a profile is resolved, and hands
// redirects to the navigator otherwise.
type AuthGate struct {
	app.Compo

	child  func(p *profile.Profile) app.UI
	guard  *guard.Guard
	cancel context.CancelFunc
}

func newAuthGate(child func(p *profile.Profile) app.UI) *AuthGate {
	return &AuthGate{child: child}
}

func (g *AuthGate) OnMount(ctx app.Context) {
	path := ctx.Page().URL().Path
	g.guard = guard.New(httpSessionSource{}, httpProfileStore{}, windowNavigator{}, path)
	g.guard.SetOnChange(func() {
		ctx.Dispatch(func(ctx app.Context) {
			g.syncIdentity(ctx)
		})
	})
	g.guard.Check()

	watchCtx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	go g.guard.Watch(watchCtx, sessionPollInterval)
}

// syncIdentity mirrors the resolved profile into local storage so the last
// signed-in identity survives a reload; cleared when the session is gone.
func (g *AuthGate) syncIdentity(ctx app.Context) {
	st := newBrowserStore(ctx)
	switch g.guard.Status() {
	case guard.StatusAuthenticated:
		if p := g.guard.Profile(); p != nil {
			if err := st.Save(store.KeyUser, p); err != nil {
				app.Log("error caching identity:", err)
			}
		}
	case guard.StatusRedirecting:
		st.Delete(store.KeyUser)
	}
}

func (g *AuthGate) OnDismount() {
	if g.cancel != nil {
		g.cancel()
	}
}

func (g *AuthGate) onLogout(ctx app.Context, e app.Event) {
	e.PreventDefault()
	g.guard.Logout()
}

func (g *AuthGate) onRetry(ctx app.Context, e app.Event) {
	e.PreventDefault()
	g.guard.Retry()
}

func (g *AuthGate) Render() app.UI {
	if g.guard == nil || g.guard.Loading() {
		return app.Div().Class("page").Body(
			app.Div().Class("loading-overlay").Body(
				app.Div().Class("loading-spinner"),
			),
		)
	}

	if g.guard.Status() == guard.StatusFailed {
		return app.Div().Class("page").Body(
			app.Div().Class("gate-error").Body(
				app.P().Text("Could not verify your session."),
				app.Button().Class("btn").Text("Try again").OnClick(g.onRetry),
			),
		)
	}

	p := g.guard.Profile()
	if g.guard.Status() != guard.StatusAuthenticated || p == nil {
		// Redirect in flight.
		return app.Div().Class("page").Body(
			app.Div().Class("loading-overlay").Body(
				app.Div().Class("loading-spinner"),
			),
		)
	}

	return app.Div().Class("page").Body(
		app.Header().Class("topbar").Body(
			app.A().Class("brand").Href("/").Text("Zeyin"),
			navBar(),
			app.Div().Class("topbar-user").Body(
				app.Span().Class("user-name").Text(p.Name),
				app.Span().Class("user-role").Text(string(p.Role)),
				app.Button().Class("btn btn-ghost").Text("Log out").OnClick(g.onLogout),
			),
		),
		app.Main().Class("content").Body(
			g.child(p),
		),
	)
}
