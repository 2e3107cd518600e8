package oauth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/ga4mcp/internal/logging"
)

// Store manages Google OAuth tokens in memory for authenticated users.
// Tokens are stored under two kinds of keys: the user email (canonical)
// and the issued access token (for Bearer token lookup).
type Store struct {
	mu                   sync.RWMutex
	googleTokens         map[string]*oauth2.Token
	googleUserInfo       map[string]*GoogleUserInfo
	refreshTokens        map[string]string // refresh token -> user email
	refreshTokenExpiries map[string]int64  // refresh token -> unix expiry
	tokenToEmailMap      map[string]string // access token -> user email
	cleanupInterval      time.Duration
	logger               *slog.Logger
}

// NewStore creates an in-memory token store with the default cleanup interval.
func NewStore() *Store {
	return NewStoreWithInterval(DefaultCleanupInterval)
}

// NewStoreWithInterval creates an in-memory token store with a custom
// cleanup interval. A background goroutine removes expired entries.
func NewStoreWithInterval(cleanupInterval time.Duration) *Store {
	s := &Store{
		googleTokens:         make(map[string]*oauth2.Token),
		googleUserInfo:       make(map[string]*GoogleUserInfo),
		refreshTokens:        make(map[string]string),
		refreshTokenExpiries: make(map[string]int64),
		tokenToEmailMap:      make(map[string]string),
		cleanupInterval:      cleanupInterval,
		logger:               slog.Default(),
	}

	go s.cleanupExpiredTokens()

	return s
}

// SetLogger sets a custom logger for the store.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SaveGoogleToken saves a Google OAuth token under the given key. The key
// can be a user email or an issued access token.
func (s *Store) SaveGoogleToken(key string, token *oauth2.Token) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleTokens[key] = token
	s.logger.Debug("Saved Google token", "key_hash", hashForLogging(key), "expiry", token.Expiry)
	return nil
}

// GetGoogleToken retrieves a Google OAuth token. Expired tokens are
// still returned when they carry a refresh token, so the caller can
// refresh them; without one they count as gone.
func (s *Store) GetGoogleToken(key string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.googleTokens[key]
	if !ok {
		return nil, fmt.Errorf("Google token not found")
	}

	if !token.Expiry.IsZero() && token.Expiry.Before(time.Now()) && token.RefreshToken == "" {
		return nil, fmt.Errorf("Google token expired")
	}

	return token, nil
}

// DeleteGoogleToken removes a user's Google token, user info, and any
// refresh tokens issued to that user.
func (s *Store) DeleteGoogleToken(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.googleTokens, email)
	delete(s.googleUserInfo, email)

	for refreshToken, userEmail := range s.refreshTokens {
		if userEmail == email {
			delete(s.refreshTokens, refreshToken)
			delete(s.refreshTokenExpiries, refreshToken)
		}
	}

	s.logger.Info("Deleted Google token and refresh tokens", logging.UserHash(email))
	return nil
}

// SaveGoogleUserInfo saves Google user info for a user.
func (s *Store) SaveGoogleUserInfo(email string, userInfo *GoogleUserInfo) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if userInfo == nil {
		return fmt.Errorf("userInfo cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleUserInfo[email] = userInfo
	return nil
}

// GetGoogleUserInfo retrieves Google user info for a user.
func (s *Store) GetGoogleUserInfo(email string) (*GoogleUserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userInfo, ok := s.googleUserInfo[email]
	if !ok {
		return nil, fmt.Errorf("Google user info not found")
	}

	return userInfo, nil
}

// SaveRefreshToken saves a refresh token mapping with its expiry.
func (s *Store) SaveRefreshToken(refreshToken, email string, expiresAt int64) error {
	if refreshToken == "" {
		return fmt.Errorf("refresh token cannot be empty")
	}
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[refreshToken] = email
	s.refreshTokenExpiries[refreshToken] = expiresAt
	s.logger.Debug("Saved refresh token",
		logging.UserHash(email),
		"expires_at", time.Unix(expiresAt, 0))
	return nil
}

// GetRefreshToken retrieves the user email associated with a refresh token.
// Returns an error when the token is unknown or expired.
func (s *Store) GetRefreshToken(refreshToken string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.refreshTokens[refreshToken]
	if !ok {
		return "", fmt.Errorf("refresh token not found")
	}

	if expiresAt, hasExpiry := s.refreshTokenExpiries[refreshToken]; hasExpiry {
		if time.Now().Unix() > expiresAt {
			return "", fmt.Errorf("refresh token expired")
		}
	}

	return email, nil
}

// DeleteRefreshToken removes a refresh token and its expiry tracking.
func (s *Store) DeleteRefreshToken(refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refreshTokens, refreshToken)
	delete(s.refreshTokenExpiries, refreshToken)
	return nil
}

// SaveTokenWithEmailMapping saves a Google token under both the user email
// and the issued access token, tracking the mapping for cleanup.
func (s *Store) SaveTokenWithEmailMapping(email, accessToken string, token *oauth2.Token) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if accessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleTokens[email] = token
	s.googleTokens[accessToken] = token
	s.tokenToEmailMap[accessToken] = email

	s.logger.Debug("Saved Google token with email mapping", logging.UserHash(email))
	return nil
}

// Stats returns entry counts for monitoring.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"google_tokens":          len(s.googleTokens),
		"user_info":              len(s.googleUserInfo),
		"refresh_tokens":         len(s.refreshTokens),
		"refresh_token_expiries": len(s.refreshTokenExpiries),
		"token_email_mappings":   len(s.tokenToEmailMap),
	}
}

// cleanupExpiredTokens periodically removes expired tokens. Candidates are
// collected under a read lock and re-validated under the write lock, since
// a token may be refreshed between the two.
func (s *Store) cleanupExpiredTokens() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()

		var expiredGoogleTokens []string
		var expiredRefreshTokens []string
		now := time.Now()
		nowUnix := now.Unix()

		for key, token := range s.googleTokens {
			if !token.Expiry.IsZero() && token.Expiry.Before(now) {
				expiredGoogleTokens = append(expiredGoogleTokens, key)
			}
		}

		for refreshToken, expiresAt := range s.refreshTokenExpiries {
			if nowUnix > expiresAt {
				expiredRefreshTokens = append(expiredRefreshTokens, refreshToken)
			}
		}

		s.mu.RUnlock()

		if len(expiredGoogleTokens) == 0 && len(expiredRefreshTokens) == 0 {
			continue
		}

		s.mu.Lock()

		currentTime := time.Now()
		currentTimeUnix := currentTime.Unix()

		for _, key := range expiredGoogleTokens {
			token, ok := s.googleTokens[key]
			if !ok || token.Expiry.IsZero() || !token.Expiry.Before(currentTime) {
				continue
			}
			delete(s.googleTokens, key)
			if email, isAccessToken := s.tokenToEmailMap[key]; isAccessToken {
				delete(s.tokenToEmailMap, key)
				// Drop user info only once the canonical email entry is gone too.
				if _, stillHasToken := s.googleTokens[email]; !stillHasToken {
					delete(s.googleUserInfo, email)
				}
			} else {
				delete(s.googleUserInfo, key)
			}
		}

		for _, refreshToken := range expiredRefreshTokens {
			if expiresAt, ok := s.refreshTokenExpiries[refreshToken]; ok && currentTimeUnix > expiresAt {
				delete(s.refreshTokens, refreshToken)
				delete(s.refreshTokenExpiries, refreshToken)
			}
		}

		s.mu.Unlock()
	}
}
