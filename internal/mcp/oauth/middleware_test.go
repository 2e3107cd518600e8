package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestValidateGoogleToken_MissingHeader(t *testing.T) {
	h := newTestHandler(t)

	called := false
	handler := h.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if called {
		t.Error("handler should not be called without Authorization header")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// RFC 9728 requires pointing clients at the resource metadata.
	wwwAuth := w.Header().Get("WWW-Authenticate")
	if !strings.Contains(wwwAuth, "resource_metadata") {
		t.Errorf("WWW-Authenticate = %s, should reference resource_metadata", wwwAuth)
	}
}

func TestValidateGoogleToken_MalformedHeader(t *testing.T) {
	h := newTestHandler(t)

	handler := h.ValidateGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called with malformed header")
	}))

	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	r.Header.Set("Authorization", "NotBearer token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestOptionalGoogleToken_PassesThroughAnonymous(t *testing.T) {
	h := newTestHandler(t)

	called := false
	handler := h.OptionalGoogleToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetUserFromContext(r.Context()); ok {
			t.Error("anonymous request should not carry a user")
		}
	}))

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if !called {
		t.Error("OptionalGoogleToken should pass anonymous requests through")
	}
}

func TestGetUserFromContext(t *testing.T) {
	if _, ok := GetUserFromContext(context.Background()); ok {
		t.Error("GetUserFromContext() on empty context should return false")
	}

	userInfo := &GoogleUserInfo{Email: "user@example.com"}
	ctx := context.WithValue(context.Background(), userContextKey, userInfo)

	retrieved, ok := GetUserFromContext(ctx)
	if !ok {
		t.Fatal("GetUserFromContext() should find the user")
	}
	if retrieved.Email != "user@example.com" {
		t.Errorf("Email = %s, want user@example.com", retrieved.Email)
	}
}

func TestGetGoogleTokenFromContext(t *testing.T) {
	if _, ok := GetGoogleTokenFromContext(context.Background()); ok {
		t.Error("GetGoogleTokenFromContext() on empty context should return false")
	}

	token := &oauth2.Token{AccessToken: "ya29.test"}
	ctx := context.WithValue(context.Background(), tokenContextKey, token)

	retrieved, ok := GetGoogleTokenFromContext(ctx)
	if !ok {
		t.Fatal("GetGoogleTokenFromContext() should find the token")
	}
	if retrieved.AccessToken != "ya29.test" {
		t.Errorf("AccessToken = %s, want ya29.test", retrieved.AccessToken)
	}
}

func TestCacheAndGetCachedGoogleToken(t *testing.T) {
	h := newTestHandler(t)

	if h.GetCachedGoogleToken("unknown") != nil {
		t.Error("GetCachedGoogleToken() for unknown token should return nil")
	}

	token := &oauth2.Token{AccessToken: "ya29.cached"}
	h.CacheGoogleToken("srv-token", token)

	cached := h.GetCachedGoogleToken("srv-token")
	if cached == nil {
		t.Fatal("GetCachedGoogleToken() should find the cached token")
	}
	if cached.AccessToken != "ya29.cached" {
		t.Errorf("AccessToken = %s, want ya29.cached", cached.AccessToken)
	}
}

func TestGetActionableErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unauthorized",
			err:  errors.New("userinfo request failed with status 401"),
			want: "re-authenticate",
		},
		{
			name: "forbidden",
			err:  errors.New("userinfo request failed with status 403"),
			want: "scopes",
		},
		{
			name: "rate limited",
			err:  errors.New("userinfo request failed with status 429"),
			want: "retry later",
		},
		{
			name: "server error",
			err:  errors.New("userinfo request failed with status 503"),
			want: "temporarily unavailable",
		},
		{
			name: "network failure",
			err:  errors.New("failed to call userinfo endpoint: dial tcp: timeout"),
			want: "network",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := getActionableErrorMessage(tt.err)
			if !strings.Contains(strings.ToLower(msg), tt.want) {
				t.Errorf("getActionableErrorMessage() = %q, should contain %q", msg, tt.want)
			}
		})
	}
}
