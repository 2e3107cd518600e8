package oauth

// ProtectedResourceMetadata is the OAuth 2.0 Protected Resource Metadata
// document (RFC 9728).
type ProtectedResourceMetadata struct {
	// Resource is the identifier for the protected resource.
	Resource string `json:"resource"`

	// AuthorizationServers lists servers that can issue tokens for this resource.
	AuthorizationServers []string `json:"authorization_servers"`

	// BearerMethodsSupported lists the ways Bearer tokens can be sent (RFC 6750).
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`

	// ScopesSupported lists the scopes understood by this resource.
	ScopesSupported []string `json:"scopes_supported,omitempty"`
}

// AuthorizationServerMetadata is the OAuth 2.0 Authorization Server Metadata
// document (RFC 8414).
type AuthorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
}

// GoogleUserInfo is the user information from Google's userinfo endpoint.
type GoogleUserInfo struct {
	// Sub is the unique Google user ID.
	Sub string `json:"sub"`

	// Email is the user's email address.
	Email string `json:"email"`

	// EmailVerified indicates if the email is verified.
	EmailVerified bool `json:"email_verified"`

	// Name is the user's full name.
	Name string `json:"name"`

	// Picture is the URL of the user's profile picture.
	Picture string `json:"picture"`

	// GivenName is the user's first name.
	GivenName string `json:"given_name"`

	// FamilyName is the user's last name.
	FamilyName string `json:"family_name"`

	// Locale is the user's preferred locale.
	Locale string `json:"locale"`
}

// ErrorResponse is an OAuth error response body.
type ErrorResponse struct {
	// Error is the OAuth error code.
	Error string `json:"error"`

	// ErrorDescription provides additional information.
	ErrorDescription string `json:"error_description,omitempty"`

	// ErrorURI points to error documentation.
	ErrorURI string `json:"error_uri,omitempty"`
}

// TokenResponse is the token endpoint success response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// ClientRegistrationRequest is a Dynamic Client Registration request (RFC 7591).
type ClientRegistrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	ClientName              string   `json:"client_name,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
}

// ClientRegistrationResponse is a Dynamic Client Registration response.
// The client secret is only returned here, never stored in plain text.
type ClientRegistrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret,omitempty"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
	ClientSecretExpiresAt   int64    `json:"client_secret_expires_at"`
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	ClientName              string   `json:"client_name,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
}

// RegisteredClient is a dynamically registered OAuth client.
type RegisteredClient struct {
	ClientID                string
	ClientSecretHash        string // bcrypt hash, plain secret is never stored
	ClientIDIssuedAt        int64
	ClientSecretExpiresAt   int64
	RedirectURIs            []string
	TokenEndpointAuthMethod string
	GrantTypes              []string
	ResponseTypes           []string
	ClientName              string
	Scope                   string
}

// AuthorizationState tracks an in-flight authorization request while the
// user authenticates with Google. Keyed by the state we send to Google.
type AuthorizationState struct {
	// State is the client's original state parameter.
	State string

	// ClientID is the MCP client that started the flow.
	ClientID string

	// RedirectURI is where the client wants the code delivered.
	RedirectURI string

	// Scope is the requested scope string.
	Scope string

	// CodeChallenge and CodeChallengeMethod carry the client's PKCE data.
	CodeChallenge       string
	CodeChallengeMethod string

	// GoogleState is the state parameter we sent to Google.
	GoogleState string

	// Nonce is the OIDC nonce, if the client provided one.
	Nonce string

	CreatedAt int64
	ExpiresAt int64
}

// AuthorizationCode is a single-use code issued to the MCP client after a
// successful Google authentication. It carries the Google tokens so the
// token endpoint can bind them to the issued access token.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string

	GoogleAccessToken  string
	GoogleRefreshToken string
	GoogleTokenExpiry  int64

	UserEmail string

	CreatedAt int64
	ExpiresAt int64
	Used      bool
}
