package auth

import (
	"net/url"
)

// DefaultNextPath is where the user agent lands when no usable (or only a
// hostile) destination was requested.
const DefaultNextPath = "/dashboard"

// CallbackParams is the transient context parsed once from an inbound auth
// redirect. Never persisted.
type CallbackParams struct {
	Code         string
	Type         string
	AccessToken  string
	RefreshToken string
	Next         string
}

// ParseCallbackParams extracts the callback context from the redirect query.
func ParseCallbackParams(query url.Values) CallbackParams {
	return CallbackParams{
		Code:         query.Get("code"),
		Type:         query.Get("type"),
		AccessToken:  query.Get("access_token"),
		RefreshToken: query.Get("refresh_token"),
		Next:         query.Get("next"),
	}
}

// CallbackAction is the tagged outcome of classifying a callback. Exactly
// one variant applies per request; rules are evaluated in order and the
// first match wins.
type CallbackAction interface {
	isCallbackAction()
}

// RecoveryRedirect forwards the token pair to the password-reset page. No
// server-side session is established on this branch.
type RecoveryRedirect struct {
	AccessToken  string
	RefreshToken string
}

// TokenSession establishes a session directly from a provided token pair.
// Code, when present, is kept for the fall-through exchange after a failed
// establishment.
type TokenSession struct {
	AccessToken  string
	RefreshToken string
	Code         string
}

// CodeExchange trades an opaque code for a session at the auth provider.
type CodeExchange struct {
	Code string
}

// PlainRedirect carries no credentials; the user agent is just sent on.
type PlainRedirect struct{}

func (RecoveryRedirect) isCallbackAction() {}
func (TokenSession) isCallbackAction()     {}
func (CodeExchange) isCallbackAction()     {}
func (PlainRedirect) isCallbackAction()    {}

// Classify picks the redirect path for an inbound callback:
//  1. access token + type=recovery       -> RecoveryRedirect
//  2. token pair + (type=signup or none) -> TokenSession
//  3. code present                       -> CodeExchange
//  4. otherwise                          -> PlainRedirect
func Classify(params CallbackParams) CallbackAction {
	if params.AccessToken != "" && params.Type == "recovery" {
		return RecoveryRedirect{
			AccessToken:  params.AccessToken,
			RefreshToken: params.RefreshToken,
		}
	}
	if params.AccessToken != "" && params.RefreshToken != "" &&
		(params.Type == "signup" || params.Type == "") {
		return TokenSession{
			AccessToken:  params.AccessToken,
			RefreshToken: params.RefreshToken,
			Code:         params.Code,
		}
	}
	if params.Code != "" {
		return CodeExchange{Code: params.Code}
	}
	return PlainRedirect{}
}

// SanitizeNext resolves the requested destination against the application
// origin and rejects anything that lands on a foreign origin, closing the
// open-redirect hole a crafted next parameter would otherwise provide.
func SanitizeNext(origin, next string) string {
	if next == "" {
		return DefaultNextPath
	}

	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		return DefaultNextPath
	}

	resolved, err := base.Parse(next)
	if err != nil {
		return DefaultNextPath
	}
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return DefaultNextPath
	}

	path := resolved.Path
	if path == "" || path[0] != '/' {
		return DefaultNextPath
	}
	if resolved.RawQuery != "" {
		return path + "?" + resolved.RawQuery
	}
	return path
}
