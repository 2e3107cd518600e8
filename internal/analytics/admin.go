package analytics

import (
	"context"
	"fmt"

	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	"google.golang.org/api/option"

	"github.com/teemow/ga4mcp/internal/google"
)

// AdminClient wraps the Google Analytics Admin API service
type AdminClient struct {
	svc     *analyticsadmin.Service
	account string
}

// Account returns the account name this client is associated with
func (c *AdminClient) Account() string {
	return c.account
}

// NewAdminClientForAccount creates a new Admin API client with OAuth2
// authentication for a specific account
func NewAdminClientForAccount(ctx context.Context, account string) (*AdminClient, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := analyticsadmin.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Admin service: %w", err)
	}

	return &AdminClient{
		svc:     svc,
		account: account,
	}, nil
}

// NewAdminClient creates a new Admin API client for the default account
func NewAdminClient(ctx context.Context) (*AdminClient, error) {
	return NewAdminClientForAccount(ctx, "default")
}

// ListAccounts lists all Analytics accounts the authenticated user can access
func (c *AdminClient) ListAccounts(ctx context.Context) ([]Account, error) {
	resp, err := c.svc.Accounts.List().PageSize(200).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var accounts []Account
	for _, a := range resp.Accounts {
		accounts = append(accounts, toAccount(a))
	}

	return accounts, nil
}

// ListProperties lists the GA4 properties under an Analytics account
func (c *AdminClient) ListProperties(ctx context.Context, accountID string) ([]Property, error) {
	accountName, err := ParseAccountID(accountID)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Properties.List().
		Filter("parent:" + accountName).
		PageSize(200).
		Context(ctx).
		Do()
	if err != nil {
		return nil, formatResourceError("list properties", accountName, err)
	}

	var properties []Property
	for _, p := range resp.Properties {
		properties = append(properties, toProperty(p))
	}

	return properties, nil
}

// GetProperty retrieves a single GA4 property
func (c *AdminClient) GetProperty(ctx context.Context, propertyID string) (*Property, error) {
	propertyName, err := ParsePropertyID(propertyID)
	if err != nil {
		return nil, err
	}

	p, err := c.svc.Properties.Get(propertyName).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("get property", propertyName, err)
	}

	result := toProperty(p)
	return &result, nil
}

// ListDataStreams lists the data streams of a GA4 property
func (c *AdminClient) ListDataStreams(ctx context.Context, propertyID string) ([]DataStream, error) {
	propertyName, err := ParsePropertyID(propertyID)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Properties.DataStreams.List(propertyName).
		PageSize(200).
		Context(ctx).
		Do()
	if err != nil {
		return nil, formatResourceError("list data streams", propertyName, err)
	}

	var streams []DataStream
	for _, ds := range resp.DataStreams {
		streams = append(streams, toDataStream(ds))
	}

	return streams, nil
}

// GetDataStream retrieves a single data stream of a GA4 property
func (c *AdminClient) GetDataStream(ctx context.Context, propertyID, streamID string) (*DataStream, error) {
	propertyName, err := ParsePropertyID(propertyID)
	if err != nil {
		return nil, err
	}
	if streamID == "" {
		return nil, validationErrorf("data stream ID cannot be empty")
	}

	digits := digitRun.FindString(streamID)
	if digits == "" {
		return nil, validationErrorf("no numeric data stream ID found in %q", streamID)
	}

	name := fmt.Sprintf("%s/dataStreams/%s", propertyName, digits)
	ds, err := c.svc.Properties.DataStreams.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("get data stream", name, err)
	}

	result := toDataStream(ds)
	return &result, nil
}
