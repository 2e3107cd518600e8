package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptRequest(args map[string]string) mcp.GetPromptRequest {
	var request mcp.GetPromptRequest
	request.Params.Arguments = args
	return request
}

func messageText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()

	if len(result.Messages) == 0 {
		t.Fatal("expected at least one prompt message")
	}
	text, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Messages[0].Content)
	}
	return text.Text
}

func TestHandleAnalyzeTraffic(t *testing.T) {
	result, err := handleAnalyzeTraffic(context.Background(), promptRequest(map[string]string{
		"property_id": "123456",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := messageText(t, result)
	if !strings.Contains(text, "property 123456") {
		t.Errorf("prompt should mention the property, got: %s", text)
	}
	if !strings.Contains(text, "28 days") {
		t.Errorf("prompt should default to 28 days, got: %s", text)
	}
	if !strings.Contains(text, "analytics_run_report") {
		t.Errorf("prompt should reference the report tool, got: %s", text)
	}
}

func TestHandleAnalyzeTraffic_CustomDays(t *testing.T) {
	result, err := handleAnalyzeTraffic(context.Background(), promptRequest(map[string]string{
		"property_id": "123456",
		"days":        "90",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(messageText(t, result), "90 days") {
		t.Error("prompt should honor the days argument")
	}
}

func TestHandleAnalyzeTraffic_MissingProperty(t *testing.T) {
	_, err := handleAnalyzeTraffic(context.Background(), promptRequest(nil))
	if err == nil {
		t.Fatal("expected error for missing property_id")
	}
}

func TestHandleConversionAnalysis_EventFilter(t *testing.T) {
	result, err := handleConversionAnalysis(context.Background(), promptRequest(map[string]string{
		"property_id": "123456",
		"event_name":  "purchase",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := messageText(t, result)
	if !strings.Contains(text, `"purchase"`) {
		t.Errorf("prompt should mention the event name, got: %s", text)
	}
	if !strings.Contains(text, "dimension_filter") {
		t.Errorf("prompt should suggest filtering on the event, got: %s", text)
	}
}

func TestHandleAudienceInsights(t *testing.T) {
	result, err := handleAudienceInsights(context.Background(), promptRequest(map[string]string{
		"property_id": "987",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := messageText(t, result)
	if !strings.Contains(text, "deviceCategory") {
		t.Errorf("prompt should cover device breakdown, got: %s", text)
	}
}

func TestHandleComparePeriods(t *testing.T) {
	result, err := handleComparePeriods(context.Background(), promptRequest(map[string]string{
		"property_id":    "123456",
		"current_start":  "2025-05-01",
		"current_end":    "2025-05-31",
		"previous_start": "2025-04-01",
		"previous_end":   "2025-04-30",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := messageText(t, result)
	for _, want := range []string{"2025-05-01", "2025-04-30", "percentage change"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q, got: %s", want, text)
		}
	}
}

func TestHandleComparePeriods_MissingDates(t *testing.T) {
	_, err := handleComparePeriods(context.Background(), promptRequest(map[string]string{
		"property_id":   "123456",
		"current_start": "2025-05-01",
	}))
	if err == nil {
		t.Fatal("expected error for missing date arguments")
	}
}
