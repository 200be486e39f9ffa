package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestClassifyOrder(t *testing.T) {
	cases := []struct {
		name   string
		params CallbackParams
		want   string
	}{
		{"recovery wins over everything", CallbackParams{AccessToken: "at", RefreshToken: "rt", Type: "recovery", Code: "c"}, "recovery"},
		{"signup token pair", CallbackParams{AccessToken: "at", RefreshToken: "rt", Type: "signup"}, "tokens"},
		{"token pair without type", CallbackParams{AccessToken: "at", RefreshToken: "rt"}, "tokens"},
		{"token pair with foreign type falls to code", CallbackParams{AccessToken: "at", RefreshToken: "rt", Type: "magiclink", Code: "c"}, "code"},
		{"access token alone falls to code", CallbackParams{AccessToken: "at", Code: "c"}, "code"},
		{"code only", CallbackParams{Code: "c"}, "code"},
		{"nothing", CallbackParams{}, "plain"},
		{"recovery requires access token", CallbackParams{Type: "recovery", Code: "c"}, "code"},
	}

	for _, tc := range cases {
		var got string
		switch Classify(tc.params).(type) {
		case RecoveryRedirect:
			got = "recovery"
		case TokenSession:
			got = "tokens"
		case CodeExchange:
			got = "code"
		case PlainRedirect:
			got = "plain"
		}
		if got != tc.want {
			t.Errorf("%s: classified as %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeNext(t *testing.T) {
	origin := "https://app.medlink.example"

	cases := []struct {
		next string
		want string
	}{
		{"", DefaultNextPath},
		{"/appointments", "/appointments"},
		{"/appointments?tab=upcoming", "/appointments?tab=upcoming"},
		{"https://app.medlink.example/profile", "/profile"},
		{"https://evil.example/x", DefaultNextPath},
		{"//evil.example/x", DefaultNextPath},
		{"http://app.medlink.example/profile", DefaultNextPath}, // scheme downgrade
		{"relative/path", "/relative/path"},
	}

	for _, tc := range cases {
		if got := SanitizeNext(origin, tc.next); got != tc.want {
			t.Errorf("SanitizeNext(%q) = %q, want %q", tc.next, got, tc.want)
		}
	}
}

type mockProvider struct {
	exchangeCalls int
	tokenCalls    int
	exchangeErr   error
	tokensErr     error
}

func (m *mockProvider) ExchangeCode(_ context.Context, code string) (*Session, error) {
	m.exchangeCalls++
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	return &Session{UserID: "u1", AccessToken: "session-from-code", ExpiresIn: 3600}, nil
}

func (m *mockProvider) SessionFromTokens(_ context.Context, accessToken, refreshToken string) (*Session, error) {
	m.tokenCalls++
	if m.tokensErr != nil {
		return nil, m.tokensErr
	}
	return &Session{UserID: "u1", AccessToken: "session-from-tokens", ExpiresIn: 3600}, nil
}

func callbackRequest(t *testing.T, provider SessionProvider, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	NewAuthHandlerWithOrigin(provider, "https://app.medlink.example").RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "medlink_session" {
			return c
		}
	}
	return nil
}

func TestCallbackRecoveryRedirect(t *testing.T) {
	provider := &mockProvider{}
	rec := callbackRequest(t, provider, url.Values{
		"access_token":  {"at"},
		"refresh_token": {"rt"},
		"type":          {"recovery"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/reset-password?") ||
		!strings.Contains(location, "access_token=at") ||
		!strings.Contains(location, "refresh_token=rt") {
		t.Errorf("unexpected redirect %q", location)
	}
	if provider.exchangeCalls != 0 || provider.tokenCalls != 0 {
		t.Error("recovery branch must not touch the provider")
	}
	if sessionCookie(rec) != nil {
		t.Error("recovery branch must not establish a session")
	}
}

func TestCallbackTokenSession(t *testing.T) {
	provider := &mockProvider{}
	rec := callbackRequest(t, provider, url.Values{
		"access_token":  {"at"},
		"refresh_token": {"rt"},
		"type":          {"signup"},
		"next":          {"/appointments"},
	})

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/appointments" {
		t.Fatalf("expected redirect to /appointments, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "session-from-tokens" {
		t.Fatalf("expected session cookie from token pair, got %v", cookie)
	}
}

func TestCallbackTokenFailureFallsThroughToCode(t *testing.T) {
	provider := &mockProvider{tokensErr: fmt.Errorf("%w: expired", ErrUpstream)}
	rec := callbackRequest(t, provider, url.Values{
		"access_token":  {"at"},
		"refresh_token": {"rt"},
		"code":          {"abc"},
	})

	if provider.tokenCalls != 1 || provider.exchangeCalls != 1 {
		t.Fatalf("expected fall-through to exchange, got tokens=%d exchange=%d",
			provider.tokenCalls, provider.exchangeCalls)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "session-from-code" {
		t.Fatalf("expected session from code exchange, got %v", cookie)
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != DefaultNextPath {
		t.Errorf("expected redirect to %s, got %q", DefaultNextPath, rec.Header().Get("Location"))
	}
}

func TestCallbackExchangeFailureStillRedirects(t *testing.T) {
	provider := &mockProvider{exchangeErr: fmt.Errorf("%w: 503", ErrUpstream)}
	rec := callbackRequest(t, provider, url.Values{"code": {"abc"}})

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != DefaultNextPath {
		t.Fatalf("failed exchange must still redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if sessionCookie(rec) != nil {
		t.Error("no session must be set when exchange fails")
	}
}

func TestCallbackOpenRedirectBlocked(t *testing.T) {
	provider := &mockProvider{}
	rec := callbackRequest(t, provider, url.Values{
		"code": {"abc"},
		"next": {"https://evil.example/x"},
	})

	if rec.Header().Get("Location") != DefaultNextPath {
		t.Fatalf("hostile next must resolve to %s, got %q", DefaultNextPath, rec.Header().Get("Location"))
	}
}
