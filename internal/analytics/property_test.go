package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropertyID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{name: "bare ID", input: "123456", want: "properties/123456"},
		{name: "resource name", input: "properties/123456", want: "properties/123456"},
		{name: "embedded in text", input: "GA4 property 987654 (production)", want: "properties/987654"},
		{name: "resource name beats other digits", input: "2024 report for properties/123456", want: "properties/123456"},
		{name: "whitespace", input: "  123456  ", want: "properties/123456"},
		{name: "empty", input: "", wantError: true},
		{name: "whitespace only", input: "   ", wantError: true},
		{name: "no digits", input: "properties/abc", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePropertyID(tt.input)
			if tt.wantError {
				require.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAccountID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{name: "bare ID", input: "5551234", want: "accounts/5551234"},
		{name: "resource name", input: "accounts/5551234", want: "accounts/5551234"},
		{name: "embedded in text", input: "GA4 account 5551234", want: "accounts/5551234"},
		{name: "empty", input: "", wantError: true},
		{name: "no digits", input: "my-account", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccountID(tt.input)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyNumber(t *testing.T) {
	number, err := PropertyNumber("properties/123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", number)

	_, err = PropertyNumber("")
	assert.Error(t, err)
}

func TestDateRangeForDays(t *testing.T) {
	start, end := DateRangeForDays(7)

	startDate, err := time.Parse("2006-01-02", start)
	require.NoError(t, err)
	endDate, err := time.Parse("2006-01-02", end)
	require.NoError(t, err)

	// 7 days including today means the window spans 6 calendar days.
	assert.Equal(t, 6*24*time.Hour, endDate.Sub(startDate))
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "ISO date", input: "2026-01-15"},
		{name: "today", input: "today"},
		{name: "yesterday", input: "yesterday"},
		{name: "relative days", input: "28daysAgo"},
		{name: "bad relative", input: "somedaysAgo", wantError: true},
		{name: "bad format", input: "15.01.2026", wantError: true},
		{name: "empty", input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate(tt.input)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildRunReportRequestValidation(t *testing.T) {
	// Missing metrics is an input error.
	_, err := buildRunReportRequest(&RunReportInput{
		Property:  "properties/1",
		StartDate: "7daysAgo",
		EndDate:   "today",
	})
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	// Defaults to the last 7 days when no dates are given.
	req, err := buildRunReportRequest(&RunReportInput{
		Metrics: []string{"activeUsers"},
	})
	require.NoError(t, err)
	require.Len(t, req.DateRanges, 1)
	assert.NoError(t, ValidateDate(req.DateRanges[0].StartDate))
	assert.NoError(t, ValidateDate(req.DateRanges[0].EndDate))

	// Order by needs a field.
	_, err = buildRunReportRequest(&RunReportInput{
		StartDate: "7daysAgo",
		EndDate:   "today",
		Metrics:   []string{"sessions"},
		OrderBys:  []OrderByInput{{Desc: true}},
	})
	assert.Error(t, err)
}

func TestBuildRunReportRequestShape(t *testing.T) {
	req, err := buildRunReportRequest(&RunReportInput{
		StartDate:  "2026-01-01",
		EndDate:    "2026-01-31",
		Dimensions: []string{"country", "deviceCategory"},
		Metrics:    []string{"activeUsers"},
		Limit:      50,
		Offset:     100,
		OrderBys: []OrderByInput{
			{Metric: "activeUsers", Desc: true},
			{Dimension: "country"},
		},
		DimensionFilter: &FilterInput{
			Conditions: []FilterCondition{
				{Field: "country", Operator: "=", Value: "Japan"},
			},
		},
	})
	require.NoError(t, err)

	assert.Len(t, req.Dimensions, 2)
	assert.Len(t, req.Metrics, 1)
	assert.Equal(t, int64(50), req.Limit)
	assert.Equal(t, int64(100), req.Offset)
	require.Len(t, req.OrderBys, 2)
	assert.True(t, req.OrderBys[0].Desc)
	assert.Equal(t, "activeUsers", req.OrderBys[0].Metric.MetricName)
	assert.Equal(t, "country", req.OrderBys[1].Dimension.DimensionName)
	require.NotNil(t, req.DimensionFilter)
	assert.NotNil(t, req.DimensionFilter.AndGroup)
	assert.Nil(t, req.MetricFilter)
}
