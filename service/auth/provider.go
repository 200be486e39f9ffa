package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// ErrUpstream marks a failed call to the external auth provider. Safe for
// the caller to retry.
var ErrUpstream = errors.New("auth provider request failed")

// Session is what the provider hands back once a code or token pair checks
// out.
type Session struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// SessionProvider talks to the external auth service. Both calls are
// bounded by the client timeout and surface failures as ErrUpstream.
type SessionProvider interface {
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	SessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error)
}

// HTTPSessionProvider is the production SessionProvider, configured from
// AUTH_PROVIDER_URL.
type HTTPSessionProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSessionProvider() *HTTPSessionProvider {
	return &HTTPSessionProvider{
		baseURL: os.Getenv("AUTH_PROVIDER_URL"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPSessionProvider) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	payload := map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	}
	return p.post(ctx, "/token", payload)
}

func (p *HTTPSessionProvider) SessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	payload := map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}
	return p.post(ctx, "/session/verify", payload)
}

func (p *HTTPSessionProvider) post(ctx context.Context, path string, payload map[string]string) (*Session, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return &session, nil
}
