package analytics

import (
	"strconv"
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// Report is the flattened form of a columnar GA4 report response.
// Rows map header names to values; metric values are coerced to int64 or
// float64 where they parse as numbers.
type Report struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int64            `json:"row_count"`
	Totals   map[string]any   `json:"totals,omitempty"`
}

// FormatReport flattens a RunReportResponse into named records.
// It never fails on malformed responses: headers and values are zipped
// positionally and bounded by the shorter side, so a row with fewer values
// than headers simply produces fewer keys.
func FormatReport(resp *analyticsdata.RunReportResponse) *Report {
	if resp == nil {
		return &Report{Rows: []map[string]any{}}
	}
	return formatColumns(
		dimensionHeaderNames(resp.DimensionHeaders),
		metricHeaderNames(resp.MetricHeaders),
		resp.Rows,
		resp.Totals,
		resp.RowCount,
	)
}

// FormatRealtimeReport flattens a RunRealtimeReportResponse the same way
// FormatReport flattens a core report.
func FormatRealtimeReport(resp *analyticsdata.RunRealtimeReportResponse) *Report {
	if resp == nil {
		return &Report{Rows: []map[string]any{}}
	}
	return formatColumns(
		dimensionHeaderNames(resp.DimensionHeaders),
		metricHeaderNames(resp.MetricHeaders),
		resp.Rows,
		resp.Totals,
		resp.RowCount,
	)
}

func formatColumns(dimNames, metNames []string, rows, totals []*analyticsdata.Row, rowCount int64) *Report {
	report := &Report{
		Rows:     make([]map[string]any, 0, len(rows)),
		RowCount: rowCount,
	}

	for _, row := range rows {
		if row == nil {
			continue
		}
		record := make(map[string]any, len(dimNames)+len(metNames))

		for i, dv := range row.DimensionValues {
			if i >= len(dimNames) {
				break
			}
			if dv != nil {
				record[dimNames[i]] = dv.Value
			}
		}
		for i, mv := range row.MetricValues {
			if i >= len(metNames) {
				break
			}
			if mv != nil {
				record[metNames[i]] = coerceMetricValue(mv.Value)
			}
		}

		report.Rows = append(report.Rows, record)
	}

	// Only the first totals entry is meaningful for the date ranges we send.
	if len(totals) > 0 && totals[0] != nil {
		totalRecord := make(map[string]any, len(metNames))
		for i, mv := range totals[0].MetricValues {
			if i >= len(metNames) {
				break
			}
			if mv != nil {
				totalRecord[metNames[i]] = coerceMetricValue(mv.Value)
			}
		}
		if len(totalRecord) > 0 {
			report.Totals = totalRecord
		}
	}

	return report
}

// coerceMetricValue parses a metric string into int64 or float64.
// Whole floats become int64; values that fail to parse keep the original
// string.
func coerceMetricValue(value string) any {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

const textRuleWidth = 40

// RenderReportText renders a report response as plain text: a header line,
// a dash rule, and one line per row in response order. The output is
// deterministic for identical input.
func RenderReportText(resp *analyticsdata.RunReportResponse) string {
	if resp == nil {
		return "No data returned from GA4 API"
	}
	return renderColumnsText(
		dimensionHeaderNames(resp.DimensionHeaders),
		metricHeaderNames(resp.MetricHeaders),
		resp.Rows,
	)
}

// RenderRealtimeReportText renders a realtime report response as plain text.
func RenderRealtimeReportText(resp *analyticsdata.RunRealtimeReportResponse) string {
	if resp == nil {
		return "No data returned from GA4 API"
	}
	return renderColumnsText(
		dimensionHeaderNames(resp.DimensionHeaders),
		metricHeaderNames(resp.MetricHeaders),
		resp.Rows,
	)
}

func renderColumnsText(dimNames, metNames []string, rows []*analyticsdata.Row) string {
	var lines []string

	headers := append(append([]string{}, dimNames...), metNames...)
	if len(headers) > 0 {
		lines = append(lines, "Headers: "+strings.Join(headers, " | "))
		lines = append(lines, strings.Repeat("-", textRuleWidth))
	}

	if len(rows) == 0 {
		lines = append(lines, "No data rows found")
		return strings.Join(lines, "\n")
	}

	for _, row := range rows {
		if row == nil {
			continue
		}
		var values []string
		for _, dv := range row.DimensionValues {
			if dv != nil {
				values = append(values, dv.Value)
			}
		}
		for _, mv := range row.MetricValues {
			if mv != nil {
				values = append(values, mv.Value)
			}
		}
		if len(values) > 0 {
			lines = append(lines, strings.Join(values, " | "))
		}
	}

	return strings.Join(lines, "\n")
}

func dimensionHeaderNames(headers []*analyticsdata.DimensionHeader) []string {
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != nil {
			names = append(names, h.Name)
		}
	}
	return names
}

func metricHeaderNames(headers []*analyticsdata.MetricHeader) []string {
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != nil {
			names = append(names, h.Name)
		}
	}
	return names
}
