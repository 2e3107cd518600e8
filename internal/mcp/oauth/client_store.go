package oauth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ClientStore manages dynamically registered OAuth clients.
type ClientStore struct {
	clients      map[string]*RegisteredClient
	clientsPerIP map[string]int // registrations per IP for DoS protection
	mu           sync.RWMutex
	logger       *slog.Logger
}

// NewClientStore creates a new client store.
func NewClientStore(logger *slog.Logger) *ClientStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClientStore{
		clients:      make(map[string]*RegisteredClient),
		clientsPerIP: make(map[string]int),
		logger:       logger,
	}
}

// CheckIPLimit returns an error when the IP has reached the registration
// limit. A limit of zero or less means unlimited.
func (s *ClientStore) CheckIPLimit(ip string, maxClientsPerIP int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxClientsPerIP <= 0 {
		return nil
	}

	count := s.clientsPerIP[ip]
	if count >= maxClientsPerIP {
		return fmt.Errorf("client registration limit reached for IP %s (%d/%d)", ip, count, maxClientsPerIP)
	}

	return nil
}

// RegisterClient registers a new OAuth client. The plain client secret is
// only present in the returned response; the store keeps a bcrypt hash.
func (s *ClientStore) RegisterClient(req *ClientRegistrationRequest, clientIP string) (*ClientRegistrationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clientID, err := generateSecureToken(ClientIDTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client ID: %w", err)
	}

	now := time.Now().Unix()

	tokenEndpointAuthMethod := req.TokenEndpointAuthMethod
	if tokenEndpointAuthMethod == "" {
		tokenEndpointAuthMethod = DefaultTokenEndpointAuthMethod
	}

	// Public clients (RFC 7591 auth method "none") authenticate with PKCE
	// only and must not be issued a secret.
	var clientSecret, secretHash string
	if tokenEndpointAuthMethod != "none" {
		clientSecret, err = generateSecureToken(ClientSecretTokenLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate client secret: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash client secret: %w", err)
		}
		secretHash = string(hash)
	}

	grantTypes := req.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = DefaultGrantTypes
	}

	responseTypes := req.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = DefaultResponseTypes
	}

	client := &RegisteredClient{
		ClientID:                clientID,
		ClientSecretHash:        secretHash,
		ClientIDIssuedAt:        now,
		ClientSecretExpiresAt:   0,
		RedirectURIs:            req.RedirectURIs,
		TokenEndpointAuthMethod: tokenEndpointAuthMethod,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		ClientName:              req.ClientName,
		Scope:                   req.Scope,
	}

	s.clients[clientID] = client

	if clientIP != "" {
		s.clientsPerIP[clientIP]++
	}

	s.logger.Info("Registered new OAuth client",
		"client_id", clientID,
		"client_name", req.ClientName,
		"clients_from_ip", s.clientsPerIP[clientIP],
		"grant_types", grantTypes,
	)

	return &ClientRegistrationResponse{
		ClientID:                clientID,
		ClientSecret:            clientSecret,
		ClientIDIssuedAt:        now,
		ClientSecretExpiresAt:   0,
		RedirectURIs:            req.RedirectURIs,
		TokenEndpointAuthMethod: tokenEndpointAuthMethod,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		ClientName:              req.ClientName,
		Scope:                   req.Scope,
	}, nil
}

// GetClient retrieves a registered client by ID.
func (s *ClientStore) GetClient(clientID string) (*RegisteredClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return nil, fmt.Errorf("client not found")
	}

	return client, nil
}

// ValidateClientSecret validates a client's secret against the stored hash.
func (s *ClientStore) ValidateClientSecret(clientID, clientSecret string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return fmt.Errorf("client not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.ClientSecretHash), []byte(clientSecret)); err != nil {
		return fmt.Errorf("invalid client secret")
	}

	return nil
}

// ValidateRedirectURI checks that a redirect URI is registered for a client.
func (s *ClientStore) ValidateRedirectURI(clientID, redirectURI string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return fmt.Errorf("client not found")
	}

	for _, uri := range client.RedirectURIs {
		if uri == redirectURI {
			return nil
		}
	}

	return fmt.Errorf("redirect_uri not registered for this client")
}
