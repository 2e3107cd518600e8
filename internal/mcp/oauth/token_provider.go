package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider resolves Google tokens from the OAuth store so the
// Analytics API clients can authenticate per-user in HTTP transport
// mode. It satisfies the token provider interface of the google package.
type TokenProvider struct {
	store *Store
}

// NewTokenProvider creates a TokenProvider backed by the given store.
func NewTokenProvider(store *Store) *TokenProvider {
	return &TokenProvider{store: store}
}

// GetTokenForAccount returns the Google token for the authenticated
// user. The user from the request context takes priority over the
// account name, since the OAuth flow identifies users by email.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok {
		token, err := p.store.GetGoogleToken(userInfo.Email)
		if err != nil {
			return nil, fmt.Errorf("no token for authenticated user, please re-authenticate: %w", err)
		}
		return token, nil
	}

	token, err := p.store.GetGoogleToken(account)
	if err != nil {
		return nil, fmt.Errorf("no OAuth session for account %q, authenticate via the OAuth flow first: %w", account, err)
	}

	return token, nil
}

// HasTokenForAccount reports whether a token exists for the account.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetGoogleToken(account)
	return err == nil
}
