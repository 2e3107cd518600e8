package oauth

import (
	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers"
)

// AuthorizationURLOptions contains optional OIDC parameters for the
// authorization request, such as prompt=none for silent re-authentication
// or login_hint to pre-select a Google account.
//
// See: https://openid.net/specs/openid-connect-core-1_0.html#AuthRequest
type AuthorizationURLOptions = providers.AuthorizationURLOptions

// SilentAuthError represents an error from a silent authentication
// attempt. These errors mean the IdP requires user interaction and the
// client should fall back to interactive login.
type SilentAuthError = oauth.SilentAuthError

// CallbackResult holds the parsed query parameters of an OAuth
// authorization callback. Use Err() to get a typed error for error
// responses, including SilentAuthError for silent auth failures.
type CallbackResult = oauth.CallbackResult

// IsSilentAuthError returns true if the error indicates silent
// authentication failed and interactive login is required. It matches
// both the *SilentAuthError type (including wrapped errors) and error
// strings containing the known silent auth error codes.
func IsSilentAuthError(err error) bool {
	return oauth.IsSilentAuthError(err)
}

// ParseOAuthError parses an OAuth error response into the appropriate
// error type. Silent auth failure codes (login_required, consent_required,
// interaction_required, account_selection_required) yield a
// *SilentAuthError. Returns nil if errorCode is empty.
func ParseOAuthError(errorCode, errorDescription string) error {
	return oauth.ParseOAuthError(errorCode, errorDescription)
}

// ParseCallbackQuery creates a CallbackResult from the OAuth callback
// query parameters.
func ParseCallbackQuery(code, state, errorCode, errorDescription, errorURI string) *CallbackResult {
	return oauth.ParseCallbackQuery(code, state, errorCode, errorDescription, errorURI)
}

// OAuth error codes for silent authentication failures, per OIDC Core
// Section 3.1.2.6.
const (
	ErrorCodeLoginRequired            = oauth.ErrorCodeLoginRequired
	ErrorCodeConsentRequired          = oauth.ErrorCodeConsentRequired
	ErrorCodeInteractionRequired      = oauth.ErrorCodeInteractionRequired
	ErrorCodeAccountSelectionRequired = oauth.ErrorCodeAccountSelectionRequired
)

// OIDC prompt values for AuthorizationURLOptions.Prompt.
const (
	PromptNone          = "none"
	PromptLogin         = "login"
	PromptConsent       = "consent"
	PromptSelectAccount = "select_account"
)
