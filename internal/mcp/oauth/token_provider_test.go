package oauth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenProvider_GetTokenForAccount(t *testing.T) {
	store := NewStore()
	provider := NewTokenProvider(store)

	token := &oauth2.Token{
		AccessToken: "ya29.stored",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	got, err := provider.GetTokenForAccount(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("GetTokenForAccount() error = %v", err)
	}
	if got.AccessToken != "ya29.stored" {
		t.Errorf("AccessToken = %s, want ya29.stored", got.AccessToken)
	}
}

func TestTokenProvider_ContextUserTakesPriority(t *testing.T) {
	store := NewStore()
	provider := NewTokenProvider(store)

	userToken := &oauth2.Token{
		AccessToken: "ya29.context-user",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := store.SaveGoogleToken("ctx-user@example.com", userToken); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
	accountToken := &oauth2.Token{
		AccessToken: "ya29.account",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := store.SaveGoogleToken("default", accountToken); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	ctx := context.WithValue(context.Background(), userContextKey,
		&GoogleUserInfo{Email: "ctx-user@example.com"})

	got, err := provider.GetTokenForAccount(ctx, "default")
	if err != nil {
		t.Fatalf("GetTokenForAccount() error = %v", err)
	}
	if got.AccessToken != "ya29.context-user" {
		t.Errorf("AccessToken = %s, context user should take priority", got.AccessToken)
	}
}

func TestTokenProvider_NoToken(t *testing.T) {
	provider := NewTokenProvider(NewStore())

	if _, err := provider.GetTokenForAccount(context.Background(), "default"); err == nil {
		t.Error("GetTokenForAccount() without stored token should return error")
	}

	if provider.HasTokenForAccount("default") {
		t.Error("HasTokenForAccount() without stored token should return false")
	}
}

func TestTokenProvider_HasTokenForAccount(t *testing.T) {
	store := NewStore()
	provider := NewTokenProvider(store)

	token := &oauth2.Token{
		AccessToken: "ya29.x",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := store.SaveGoogleToken("work", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	if !provider.HasTokenForAccount("work") {
		t.Error("HasTokenForAccount() should return true for stored token")
	}
}
