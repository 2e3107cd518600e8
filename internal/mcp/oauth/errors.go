package oauth

import (
	"fmt"
	"net/http"
)

// OAuthError is an OAuth 2.0 error response.
type OAuthError struct {
	Code        string // OAuth error code, e.g. "invalid_request"
	Description string // human readable description
	Status      int    // HTTP status code
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewOAuthError creates a new OAuth error.
func NewOAuthError(code, description string, status int) *OAuthError {
	return &OAuthError{
		Code:        code,
		Description: description,
		Status:      status,
	}
}

// Common OAuth errors as constructor functions.
var (
	// ErrInvalidRequest indicates a malformed request or missing parameters.
	ErrInvalidRequest = func(desc string) *OAuthError {
		return NewOAuthError("invalid_request", desc, http.StatusBadRequest)
	}

	// ErrInvalidGrant indicates an invalid or expired code or refresh token.
	ErrInvalidGrant = func(desc string) *OAuthError {
		return NewOAuthError("invalid_grant", desc, http.StatusBadRequest)
	}

	// ErrInvalidClient indicates client authentication failed.
	ErrInvalidClient = func(desc string) *OAuthError {
		return NewOAuthError("invalid_client", desc, http.StatusUnauthorized)
	}

	// ErrInvalidScope indicates an unsupported scope was requested.
	ErrInvalidScope = func(desc string) *OAuthError {
		return NewOAuthError("invalid_scope", desc, http.StatusBadRequest)
	}

	// ErrInvalidToken indicates the access token is invalid or expired.
	ErrInvalidToken = func(desc string) *OAuthError {
		return NewOAuthError("invalid_token", desc, http.StatusUnauthorized)
	}

	// ErrUnsupportedGrantType indicates the grant type is not supported.
	ErrUnsupportedGrantType = func(desc string) *OAuthError {
		return NewOAuthError("unsupported_grant_type", desc, http.StatusBadRequest)
	}

	// ErrServerError indicates an internal server error.
	ErrServerError = func(desc string) *OAuthError {
		return NewOAuthError("server_error", desc, http.StatusInternalServerError)
	}

	// ErrAccessDenied indicates the user or server denied the request.
	ErrAccessDenied = func(desc string) *OAuthError {
		return NewOAuthError("access_denied", desc, http.StatusForbidden)
	}
)
