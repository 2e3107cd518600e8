package resources

import (
	"context"
	"testing"

	"github.com/teemow/ga4mcp/internal/mcp/oauth"
)

func TestParseResourceURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		collection string
		want       string
		wantErr    bool
	}{
		{
			name:       "property with suffix",
			uri:        "ga://properties/123456/summary",
			collection: "properties",
			want:       "123456",
		},
		{
			name:       "account with suffix",
			uri:        "ga://accounts/987/properties",
			collection: "accounts",
			want:       "987",
		},
		{
			name:       "bare identifier",
			uri:        "ga://properties/123456",
			collection: "properties",
			want:       "123456",
		},
		{
			name:       "wrong collection",
			uri:        "ga://accounts/987/properties",
			collection: "properties",
			wantErr:    true,
		},
		{
			name:       "missing identifier",
			uri:        "ga://properties/",
			collection: "properties",
			wantErr:    true,
		},
		{
			name:       "not a ga URI",
			uri:        "https://example.com/properties/123",
			collection: "properties",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResourceURI(tt.uri, tt.collection)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s, got %q", tt.uri, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractAccountFromContext(t *testing.T) {
	ctx := context.Background()
	if got := extractAccountFromContext(ctx); got != "default" {
		t.Errorf("expected default account, got %q", got)
	}

	ctx = oauth.ContextWithUserInfo(ctx, &oauth.GoogleUserInfo{Email: "user@example.com"})
	if got := extractAccountFromContext(ctx); got != "user@example.com" {
		t.Errorf("expected user email, got %q", got)
	}
}
