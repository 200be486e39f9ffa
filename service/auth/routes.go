package auth

import (
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/gorilla/mux"
)

type AuthHandler struct {
	provider SessionProvider
	origin   string
}

func NewAuthHandler(provider SessionProvider) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		origin:   os.Getenv("APP_ORIGIN"),
	}
}

// NewAuthHandlerWithOrigin is used by tests to pin the origin.
func NewAuthHandlerWithOrigin(provider SessionProvider, origin string) *AuthHandler {
	return &AuthHandler{provider: provider, origin: origin}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/callback", h.HandleCallback).Methods("GET")
}

// HandleCallback drives one inbound auth redirect through the callback
// state machine and always ends in a redirect. A failed token-pair session
// falls through to the code exchange instead of failing the request, and a
// failed exchange still redirects the user agent to the sanitized
// destination.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	params := ParseCallbackParams(r.URL.Query())
	next := SanitizeNext(h.origin, params.Next)

	switch action := Classify(params).(type) {
	case RecoveryRedirect:
		// The reset page consumes the tokens client-side; no session here.
		query := url.Values{}
		query.Set("access_token", action.AccessToken)
		if action.RefreshToken != "" {
			query.Set("refresh_token", action.RefreshToken)
		}
		http.Redirect(w, r, "/reset-password?"+query.Encode(), http.StatusFound)
		return

	case TokenSession:
		session, err := h.provider.SessionFromTokens(r.Context(), action.AccessToken, action.RefreshToken)
		if err == nil {
			h.setSessionCookie(w, session)
			http.Redirect(w, r, next, http.StatusFound)
			return
		}
		log.Printf("Token session establishment failed, falling through: %v", err)
		if action.Code != "" {
			h.exchangeAndRedirect(w, r, action.Code, next)
			return
		}
		http.Redirect(w, r, next, http.StatusFound)
		return

	case CodeExchange:
		h.exchangeAndRedirect(w, r, action.Code, next)
		return

	case PlainRedirect:
		http.Redirect(w, r, next, http.StatusFound)
		return

	default:
		_ = action
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func (h *AuthHandler) exchangeAndRedirect(w http.ResponseWriter, r *http.Request, code, next string) {
	session, err := h.provider.ExchangeCode(r.Context(), code)
	if err != nil {
		log.Printf("Code exchange failed: %v", err)
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	h.setSessionCookie(w, session)
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *Session) {
	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = 3600
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "medlink_session",
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
