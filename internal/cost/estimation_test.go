package cost

import (
	"strings"
	"testing"

	"marquee/internal/core"
)

func estimationTitle(id, name string) core.SourceTitle {
	return core.SourceTitle{ID: id, Title: name, Kind: core.KindMovie}
}

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "empty string",
			input:    "",
			expected: 0,
		},
		{
			name:     "simple text",
			input:    "Hello world",
			expected: 4, // 11 chars / 3.5 ≈ 3.14, ceil = 4
		},
		{
			name:     "longer text",
			input:    "This is a longer piece of text that should result in more tokens.",
			expected: 19, // 66 chars / 3.5 ≈ 18.86, ceil = 19
		},
		{
			name:     "text with newlines",
			input:    "Line 1\nLine 2\nLine 3",
			expected: 6, // 20 chars (newlines replaced) / 3.5 ≈ 5.71, ceil = 6
		},
		{
			name:     "text with extra whitespace",
			input:    "  Text with   extra    spaces  ",
			expected: 8, // After trimming: "Text with   extra    spaces" = 28 chars / 3.5 = 8
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateTokenCount(tt.input)
			if result != tt.expected {
				t.Errorf("EstimateTokenCount(%q) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPricingTableExists(t *testing.T) {
	expectedModels := []string{
		"gemini-flash-lite-latest",
		"gemini-flash-latest",
		"gemini-2.5-flash-lite",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
	}

	for _, model := range expectedModels {
		if _, exists := PricingTable[model]; !exists {
			t.Errorf("Expected model %s to exist in PricingTable", model)
		}
	}
}

func TestPricingTableValues(t *testing.T) {
	litePricing := PricingTable["gemini-flash-lite-latest"]
	if litePricing.InputCostPer1MTokens != 0.10 {
		t.Errorf("Expected Flash-Lite input cost to be 0.10, got %f", litePricing.InputCostPer1MTokens)
	}
	if litePricing.OutputCostPer1MTokens != 0.40 {
		t.Errorf("Expected Flash-Lite output cost to be 0.40, got %f", litePricing.OutputCostPer1MTokens)
	}

	proPricing := PricingTable["gemini-2.5-pro"]
	if proPricing.InputCostPer1MTokens != 1.25 {
		t.Errorf("Expected Pro input cost to be 1.25, got %f", proPricing.InputCostPer1MTokens)
	}
	if proPricing.OutputCostPer1MTokens != 10.00 {
		t.Errorf("Expected Pro output cost to be 10.00, got %f", proPricing.OutputCostPer1MTokens)
	}
}

func TestEstimateRunCost(t *testing.T) {
	titles := []core.SourceTitle{
		estimationTitle("movie-1", "The Lighthouse"),
		estimationTitle("movie-2", "Harbor Lights"),
	}

	estimate, err := EstimateRunCost(titles, "gemini-flash-lite-latest")
	if err != nil {
		t.Fatalf("EstimateRunCost returned error: %v", err)
	}

	if estimate.Model != "gemini-flash-lite-latest" {
		t.Errorf("Expected model to be 'gemini-flash-lite-latest', got %s", estimate.Model)
	}

	if len(estimate.Titles) != 2 {
		t.Errorf("Expected 2 titles, got %d", len(estimate.Titles))
	}

	if estimate.CallsPerTitle <= 6 || estimate.CallsPerTitle >= 7 {
		t.Errorf("Expected between 6 and 7 calls per title, got %f", estimate.CallsPerTitle)
	}

	if estimate.TotalRequests != 14 {
		t.Errorf("Expected 14 total requests for 2 titles, got %d", estimate.TotalRequests)
	}

	if estimate.TotalCost <= 0 {
		t.Errorf("Expected positive total cost, got %f", estimate.TotalCost)
	}

	if estimate.TotalInputTokens <= 0 {
		t.Errorf("Expected positive input tokens, got %d", estimate.TotalInputTokens)
	}

	if estimate.TotalOutputTokens <= 0 {
		t.Errorf("Expected positive output tokens, got %d", estimate.TotalOutputTokens)
	}

	if estimate.ProcessingTimeMinutes <= 0 {
		t.Errorf("Expected positive processing time, got %f", estimate.ProcessingTimeMinutes)
	}
}

func TestEstimateRunCostUnknownModel(t *testing.T) {
	titles := []core.SourceTitle{estimationTitle("movie-1", "The Lighthouse")}

	estimate, err := EstimateRunCost(titles, "unknown-model")
	if err != nil {
		t.Fatalf("EstimateRunCost returned error: %v", err)
	}

	// Should keep the requested name but fall back to default pricing
	if estimate.Model != "unknown-model" {
		t.Errorf("Expected model to be 'unknown-model', got %s", estimate.Model)
	}
	if estimate.TotalCost <= 0 {
		t.Errorf("Expected positive total cost under default pricing, got %f", estimate.TotalCost)
	}
}

func TestEstimateRunCostEmptyBatch(t *testing.T) {
	estimate, err := EstimateRunCost(nil, "gemini-flash-lite-latest")
	if err != nil {
		t.Fatalf("EstimateRunCost returned error: %v", err)
	}

	if estimate.TotalCost != 0 {
		t.Errorf("Expected zero cost for empty batch, got %f", estimate.TotalCost)
	}
	if estimate.TotalRequests != 0 {
		t.Errorf("Expected zero requests for empty batch, got %d", estimate.TotalRequests)
	}
}

func TestEstimateTitleCost(t *testing.T) {
	src := estimationTitle("movie-1", "The Lighthouse")
	pricing := PricingTable["gemini-flash-lite-latest"]

	estimate := estimateTitleCost(src, pricing)

	if estimate.ThemeID != "movie-1" {
		t.Errorf("Expected theme_id movie-1, got %s", estimate.ThemeID)
	}

	if estimate.EstimatedInputTokens <= 0 {
		t.Errorf("Expected positive input tokens, got %d", estimate.EstimatedInputTokens)
	}

	if estimate.EstimatedOutputTokens <= 0 {
		t.Errorf("Expected positive output tokens, got %d", estimate.EstimatedOutputTokens)
	}

	// Verify cost calculation
	expectedInputCost := float64(estimate.EstimatedInputTokens) * pricing.InputCostPer1MTokens / 1000000
	expectedOutputCost := float64(estimate.EstimatedOutputTokens) * pricing.OutputCostPer1MTokens / 1000000
	expectedTotal := expectedInputCost + expectedOutputCost

	if estimate.InputCost != expectedInputCost {
		t.Errorf("Expected input cost %f, got %f", expectedInputCost, estimate.InputCost)
	}

	if estimate.OutputCost != expectedOutputCost {
		t.Errorf("Expected output cost %f, got %f", expectedOutputCost, estimate.OutputCost)
	}

	if estimate.TotalCost != expectedTotal {
		t.Errorf("Expected total cost %f, got %f", expectedTotal, estimate.TotalCost)
	}
}

func TestFormatEstimate(t *testing.T) {
	titles := []core.SourceTitle{estimationTitle("movie-1", "The Lighthouse")}

	estimate, err := EstimateRunCost(titles, "gemini-flash-lite-latest")
	if err != nil {
		t.Fatalf("EstimateRunCost returned error: %v", err)
	}

	formatted := estimate.FormatEstimate()

	if !strings.Contains(formatted, "Cost Estimation for gemini-flash-lite-latest") {
		t.Errorf("Formatted estimate should contain model name header")
	}

	if !strings.Contains(formatted, "📊 Summary:") {
		t.Errorf("Formatted estimate should contain summary section")
	}

	if !strings.Contains(formatted, "💰 Cost Breakdown:") {
		t.Errorf("Formatted estimate should contain cost breakdown section")
	}

	if !strings.Contains(formatted, "📝 Per-Title Estimates") {
		t.Errorf("Formatted estimate should contain per-title section")
	}

	if !strings.Contains(formatted, "Titles to enrich: 1") {
		t.Errorf("Formatted estimate should show correct title count")
	}

	if !strings.Contains(formatted, "The Lighthouse") {
		t.Errorf("Formatted estimate should list the title name")
	}
}
