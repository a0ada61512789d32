package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zeyinlabs/zeyin/internal/config"
	"github.com/zeyinlabs/zeyin/internal/logger"
)

// Provider talks to the auth service over HTTP. One instance serves all
// requests; it holds no per-request state (the CookieJar does).
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
}

func NewProvider(cfg config.AuthConfig, log logger.Logger) *Provider {
	return &Provider{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         authUser `json:"user"`
}

func metadataStrings(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// UserFromCookies resolves the current user from the session cookies. A
// missing or rejected token is not an error: the result is simply no session.
// When the access token is rejected but a refresh token is present, one
// refresh is attempted and the rotated tokens are buffered onto the jar.
func (p *Provider) UserFromCookies(ctx context.Context, jar *CookieJar) (*Session, error) {
	token := jar.Get(accessCookie)
	if token == "" {
		return nil, nil
	}

	sess, err := p.fetchUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		sess.AccessToken = token
		sess.RefreshToken = jar.Get(refreshCookie)
		return sess, nil
	}

	refresh := jar.Get(refreshCookie)
	if refresh == "" {
		return nil, nil
	}
	tok, err := p.grant(ctx, "refresh_token", map[string]string{"refresh_token": refresh})
	if err != nil {
		p.log.Debugf("session refresh failed: %v", err)
		return nil, nil
	}
	p.setSessionCookies(jar, tok)
	return sessionFromToken(tok), nil
}

// fetchUser returns (nil, nil) when the token is rejected by the service.
func (p *Provider) fetchUser(ctx context.Context, token string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	p.authHeaders(req, token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var u authUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &Session{
		UserID:   u.ID,
		Email:    u.Email,
		Metadata: metadataStrings(u.UserMetadata),
	}, nil
}

// SendOTP asks the service to email a one-time sign-in link. redirectTo is the
// callback URL the link lands on.
func (p *Provider) SendOTP(ctx context.Context, email, redirectTo string) error {
	body := map[string]any{
		"email":       email,
		"create_user": true,
		"redirect_to": redirectTo,
	}
	req, err := p.jsonRequest(ctx, http.MethodPost, "/auth/v1/otp", body)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("auth service returned %d", resp.StatusCode)
	}
	return nil
}

// ExchangeCode trades the authorization code from a magic link for a session,
// buffering the session cookies onto the jar.
func (p *Provider) ExchangeCode(ctx context.Context, code string, jar *CookieJar) (*Session, error) {
	tok, err := p.grant(ctx, "pkce", map[string]string{"auth_code": code})
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	p.setSessionCookies(jar, tok)
	return sessionFromToken(tok), nil
}

// SignOut revokes the session server-side and clears the cookies. The
// revocation is best-effort: cookies are cleared even when the service call
// fails, and the error is returned only so callers can log it.
func (p *Provider) SignOut(ctx context.Context, jar *CookieJar) error {
	token := jar.Get(accessCookie)
	jar.Clear(accessCookie)
	jar.Clear(refreshCookie)
	if token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	p.authHeaders(req, token)
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("auth service returned %d", resp.StatusCode)
	}
	return nil
}

func (p *Provider) grant(ctx context.Context, grantType string, body map[string]string) (*tokenResponse, error) {
	path := "/auth/v1/token?grant_type=" + url.QueryEscape(grantType)
	req, err := p.jsonRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("auth service returned empty token")
	}
	return &tok, nil
}

func (p *Provider) jsonRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	p.authHeaders(req, "")
	return req, nil
}

func (p *Provider) authHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", p.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

func (p *Provider) setSessionCookies(jar *CookieJar, tok *tokenResponse) {
	maxAge := tok.ExpiresIn
	if maxAge <= 0 {
		maxAge = 3600
	}
	jar.Set(accessCookie, tok.AccessToken, maxAge)
	jar.Set(refreshCookie, tok.RefreshToken, refreshCookieMaxAge)
}

func sessionFromToken(tok *tokenResponse) *Session {
	return &Session{
		UserID:       tok.User.ID,
		Email:        tok.User.Email,
		Metadata:     metadataStrings(tok.User.UserMetadata),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
}
