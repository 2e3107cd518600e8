package oauth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/ga4mcp/internal/logging"
)

// FlowStore manages in-flight OAuth authorization flows: the states we
// hand to Google and the single-use codes we hand to MCP clients.
type FlowStore struct {
	states map[string]*AuthorizationState
	codes  map[string]*AuthorizationCode
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewFlowStore creates a flow store with a background cleanup goroutine.
func NewFlowStore(logger *slog.Logger) *FlowStore {
	if logger == nil {
		logger = slog.Default()
	}

	store := &FlowStore{
		states: make(map[string]*AuthorizationState),
		codes:  make(map[string]*AuthorizationCode),
		logger: logger,
	}

	go store.cleanup()

	return store
}

// SaveAuthorizationState saves an authorization state keyed by the state
// parameter we sent to Google.
func (s *FlowStore) SaveAuthorizationState(state *AuthorizationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.GoogleState] = state
	s.logger.Debug("Saved authorization state",
		"client_id", state.ClientID,
		"expires_at", time.Unix(state.ExpiresAt, 0),
	)

	return nil
}

// GetAuthorizationState retrieves an authorization state by the Google
// state parameter. Returns an error when unknown or expired.
func (s *FlowStore) GetAuthorizationState(googleState string) (*AuthorizationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[googleState]
	if !exists {
		return nil, fmt.Errorf("authorization state not found")
	}

	if time.Now().Unix() > state.ExpiresAt {
		return nil, fmt.Errorf("authorization state expired")
	}

	return state, nil
}

// DeleteAuthorizationState deletes an authorization state.
func (s *FlowStore) DeleteAuthorizationState(googleState string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, googleState)
}

// SaveAuthorizationCode saves an authorization code.
func (s *FlowStore) SaveAuthorizationCode(code *AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[code.Code] = code
	s.logger.Debug("Saved authorization code",
		"client_id", code.ClientID,
		logging.UserHash(code.UserEmail),
		"expires_at", time.Unix(code.ExpiresAt, 0),
	)

	return nil
}

// GetAuthorizationCode retrieves an authorization code and immediately
// deletes it. Consuming on read means a code can only ever be redeemed
// once, which closes the replay window.
func (s *FlowStore) GetAuthorizationCode(code string) (*AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	authCode, exists := s.codes[code]
	if !exists {
		return nil, fmt.Errorf("authorization code not found")
	}

	if time.Now().Unix() > authCode.ExpiresAt {
		return nil, fmt.Errorf("authorization code expired")
	}

	delete(s.codes, code)

	s.logger.Info("Authorization code consumed",
		"client_id", authCode.ClientID,
		logging.UserHash(authCode.UserEmail),
	)

	return authCode, nil
}

// DeleteAuthorizationCode deletes an authorization code.
func (s *FlowStore) DeleteAuthorizationCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, code)
}

// cleanup periodically removes expired states and codes.
func (s *FlowStore) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanupExpired()
	}
}

func (s *FlowStore) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	statesDeleted := 0
	codesDeleted := 0

	for googleState, state := range s.states {
		if now > state.ExpiresAt {
			delete(s.states, googleState)
			statesDeleted++
		}
	}

	for code, authCode := range s.codes {
		if now > authCode.ExpiresAt {
			delete(s.codes, code)
			codesDeleted++
		}
	}

	if statesDeleted > 0 || codesDeleted > 0 {
		s.logger.Debug("Cleaned up OAuth flow data",
			"states_deleted", statesDeleted,
			"codes_deleted", codesDeleted,
		)
	}
}
