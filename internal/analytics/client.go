package analytics

import (
	"context"
	"fmt"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"github.com/teemow/ga4mcp/internal/google"
)

// Client wraps the Google Analytics Data API service
type Client struct {
	svc     *analyticsdata.Service
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccount creates a new Data API client with OAuth2 authentication
// for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := analyticsdata.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Data service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
	}, nil
}

// NewClient creates a new Data API client for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// OrderByInput orders report rows by a single dimension or metric.
// Exactly one of Dimension and Metric should be set.
type OrderByInput struct {
	Dimension string `json:"dimension,omitempty"`
	Metric    string `json:"metric,omitempty"`
	Desc      bool   `json:"desc,omitempty"`
}

// RunReportInput describes a single report request.
type RunReportInput struct {
	Property        string         `json:"property"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	Dimensions      []string       `json:"dimensions,omitempty"`
	Metrics         []string       `json:"metrics"`
	DimensionFilter *FilterInput   `json:"dimension_filter,omitempty"`
	MetricFilter    *FilterInput   `json:"metric_filter,omitempty"`
	Limit           int64          `json:"limit,omitempty"`
	Offset          int64          `json:"offset,omitempty"`
	OrderBys        []OrderByInput `json:"order_bys,omitempty"`
}

// RealtimeInput describes a realtime report request.
type RealtimeInput struct {
	Property   string   `json:"property"`
	Dimensions []string `json:"dimensions,omitempty"`
	Metrics    []string `json:"metrics"`
	Limit      int64    `json:"limit,omitempty"`
}

// buildRunReportRequest validates a RunReportInput and builds the API request.
func buildRunReportRequest(input *RunReportInput) (*analyticsdata.RunReportRequest, error) {
	if len(input.Metrics) == 0 {
		return nil, validationErrorf("report requires at least one metric")
	}

	startDate := input.StartDate
	endDate := input.EndDate
	if startDate == "" && endDate == "" {
		startDate, endDate = DateRangeForDays(7)
	}
	if err := ValidateDate(startDate); err != nil {
		return nil, err
	}
	if err := ValidateDate(endDate); err != nil {
		return nil, err
	}

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{
			{StartDate: startDate, EndDate: endDate},
		},
		Limit:  input.Limit,
		Offset: input.Offset,
	}

	for _, d := range input.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range input.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}

	if input.DimensionFilter != nil {
		expr, err := BuildFilterExpression(input.DimensionFilter)
		if err != nil {
			return nil, err
		}
		req.DimensionFilter = expr
	}
	if input.MetricFilter != nil {
		expr, err := BuildFilterExpression(input.MetricFilter)
		if err != nil {
			return nil, err
		}
		req.MetricFilter = expr
	}

	for _, ob := range input.OrderBys {
		orderBy := &analyticsdata.OrderBy{Desc: ob.Desc}
		switch {
		case ob.Metric != "":
			orderBy.Metric = &analyticsdata.MetricOrderBy{MetricName: ob.Metric}
		case ob.Dimension != "":
			orderBy.Dimension = &analyticsdata.DimensionOrderBy{DimensionName: ob.Dimension}
		default:
			return nil, validationErrorf("order_by requires a dimension or metric name")
		}
		req.OrderBys = append(req.OrderBys, orderBy)
	}

	return req, nil
}

// RunReport runs a single core report against a property.
func (c *Client) RunReport(ctx context.Context, input RunReportInput) (*analyticsdata.RunReportResponse, error) {
	property, err := ParsePropertyID(input.Property)
	if err != nil {
		return nil, err
	}

	req, err := buildRunReportRequest(&input)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Properties.RunReport(property, req).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("run report", property, err)
	}

	return resp, nil
}

// RunRealtimeReport runs a realtime report against a property.
func (c *Client) RunRealtimeReport(ctx context.Context, input RealtimeInput) (*analyticsdata.RunRealtimeReportResponse, error) {
	property, err := ParsePropertyID(input.Property)
	if err != nil {
		return nil, err
	}
	if len(input.Metrics) == 0 {
		return nil, validationErrorf("realtime report requires at least one metric")
	}

	req := &analyticsdata.RunRealtimeReportRequest{
		Limit: input.Limit,
	}
	for _, d := range input.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range input.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}

	resp, err := c.svc.Properties.RunRealtimeReport(property, req).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("run realtime report", property, err)
	}

	return resp, nil
}

// maxBatchReports is the GA4 API limit on requests per batch call.
const maxBatchReports = 5

// BatchRunReports runs up to five report requests against one property in a
// single API call.
func (c *Client) BatchRunReports(ctx context.Context, property string, inputs []RunReportInput) (*analyticsdata.BatchRunReportsResponse, error) {
	propertyName, err := ParsePropertyID(property)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, validationErrorf("batch requires at least one report request")
	}
	if len(inputs) > maxBatchReports {
		return nil, validationErrorf("batch supports at most %d report requests, got %d", maxBatchReports, len(inputs))
	}

	batch := &analyticsdata.BatchRunReportsRequest{}
	for i := range inputs {
		req, err := buildRunReportRequest(&inputs[i])
		if err != nil {
			return nil, err
		}
		batch.Requests = append(batch.Requests, req)
	}

	resp, err := c.svc.Properties.BatchRunReports(propertyName, batch).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("batch run reports", propertyName, err)
	}

	return resp, nil
}

// GetMetadata returns the dimension and metric metadata for a property.
// Property "0" returns the standard catalog shared by all properties.
func (c *Client) GetMetadata(ctx context.Context, property string) (*Metadata, error) {
	number := "0"
	if property != "" {
		n, err := PropertyNumber(property)
		if err != nil {
			return nil, err
		}
		number = n
	}

	name := fmt.Sprintf("properties/%s/metadata", number)
	resp, err := c.svc.Properties.GetMetadata(name).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("get metadata", name, err)
	}

	return toMetadata(resp), nil
}

// CheckCompatibility checks which of the given dimensions and metrics can be
// combined in a single report for a property.
func (c *Client) CheckCompatibility(ctx context.Context, property string, dimensions, metrics []string) (*Compatibility, error) {
	propertyName, err := ParsePropertyID(property)
	if err != nil {
		return nil, err
	}
	if len(dimensions) == 0 && len(metrics) == 0 {
		return nil, validationErrorf("compatibility check requires at least one dimension or metric")
	}

	req := &analyticsdata.CheckCompatibilityRequest{}
	for _, d := range dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}

	resp, err := c.svc.Properties.CheckCompatibility(propertyName, req).Context(ctx).Do()
	if err != nil {
		return nil, formatResourceError("check compatibility", propertyName, err)
	}

	return toCompatibility(resp), nil
}
