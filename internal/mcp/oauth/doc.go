// Package oauth implements OAuth 2.1 authentication for the MCP server.
//
// The package acts as both an OAuth 2.1 Authorization Server (proxying the
// flow to Google) and a Resource Server (validating Bearer tokens on MCP
// requests). MCP clients discover the server through RFC 9728 Protected
// Resource Metadata, optionally register via RFC 7591 Dynamic Client
// Registration, and then run the authorization code flow with PKCE. The
// server redirects the user to Google, exchanges the Google code, and
// issues its own access and refresh tokens bound to the Google tokens.
//
// Google tokens obtained this way are served to Analytics API clients
// through TokenProvider, so authenticated MCP sessions never touch the
// file-based token storage used by the STDIO transport.
package oauth
