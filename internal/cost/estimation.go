package cost

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"marquee/internal/core"
	"marquee/internal/llm"
)

// GeminiPricing represents the current pricing for Gemini models
type GeminiPricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
	MaxRequestsPerMinute  int     // Rate limiting
}

// PricingTable contains current Gemini pricing as of 2025
var PricingTable = map[string]GeminiPricing{
	"gemini-flash-lite-latest": {
		Model:                 "gemini-flash-lite-latest",
		InputCostPer1MTokens:  0.10, // $0.10 per 1M tokens
		OutputCostPer1MTokens: 0.40, // $0.40 per 1M tokens
		MaxRequestsPerMinute:  4000,
	},
	"gemini-flash-latest": {
		Model:                 "gemini-flash-latest",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
		MaxRequestsPerMinute:  1000,
	},
	"gemini-2.5-flash-lite": {
		Model:                 "gemini-2.5-flash-lite",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
		MaxRequestsPerMinute:  4000,
	},
	"gemini-2.5-flash": {
		Model:                 "gemini-2.5-flash",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
		MaxRequestsPerMinute:  1000,
	},
	"gemini-2.5-pro": {
		Model:                 "gemini-2.5-pro",
		InputCostPer1MTokens:  1.25,  // $1.25 per 1M tokens
		OutputCostPer1MTokens: 10.00, // $10.00 per 1M tokens
		MaxRequestsPerMinute:  150,
	},
}

// fallbackRate is the assumed share of titles whose search snippets yield
// nothing usable, forcing the generative metadata fallback. Dry runs cannot
// know the real rate without fetching, so this is a batch-level average.
const fallbackRate = 0.3

// generativeCall describes one model invocation the enrichment of a single
// title can trigger. PerTitle below 1.0 marks fallback-only calls.
type generativeCall struct {
	Name         string
	InputTokens  int     // Prompt template plus typical metadata interpolation
	OutputTokens int     // Typical completion length, below the per-call token cap
	PerTitle     float64 // Expected invocations per title
}

// enrichmentCalls lists the model calls behind one enriched record. Synthetic
// reviews come from the template corpus and never reach the model.
var enrichmentCalls = []generativeCall{
	{Name: "metadata fallback", InputTokens: 120, OutputTokens: 350, PerTitle: fallbackRate},
	{Name: "cast fallback", InputTokens: 90, OutputTokens: 150, PerTitle: fallbackRate},
	{Name: "why watch", InputTokens: 220, OutputTokens: 160, PerTitle: 1},
	{Name: "synopsis rewrite", InputTokens: 320, OutputTokens: 220, PerTitle: 1},
	{Name: "where to watch", InputTokens: 160, OutputTokens: 60, PerTitle: 1},
	{Name: "streaming quality", InputTokens: 110, OutputTokens: 10, PerTitle: 1},
	{Name: "hashtags", InputTokens: 180, OutputTokens: 120, PerTitle: 1},
	{Name: "keywords", InputTokens: 140, OutputTokens: 90, PerTitle: 1},
}

// EstimateTokenCount provides a rough estimation of token count for text
// This is a simplified approximation: typically 1 token ≈ 0.75 words ≈ 4 characters
func EstimateTokenCount(text string) int {
	// Remove excessive whitespace and normalize
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")

	// Count characters (more accurate than word count for mixed content)
	charCount := utf8.RuneCountInString(text)

	// Rough estimation: 1 token ≈ 4 characters for English text
	// Add some buffer for special tokens, formatting, etc.
	tokenCount := int(math.Ceil(float64(charCount) / 3.5))

	return tokenCount
}

// TitleCostEstimate represents the cost estimation for enriching a single title
type TitleCostEstimate struct {
	ThemeID               string
	Title                 string
	EstimatedInputTokens  int
	EstimatedOutputTokens int
	InputCost             float64
	OutputCost            float64
	TotalCost             float64
}

// RunCostEstimate represents the total cost estimation for an enrichment run
type RunCostEstimate struct {
	Model                 string
	Titles                []TitleCostEstimate
	CallsPerTitle         float64
	TotalRequests         int
	TotalInputTokens      int
	TotalOutputTokens     int
	TotalCost             float64
	ProcessingTimeMinutes float64
	RateLimitWarning      string
}

// EstimateRunCost estimates the cost of enriching the given titles without
// touching the network. Unknown models fall back to the default model pricing.
func EstimateRunCost(titles []core.SourceTitle, modelName string) (*RunCostEstimate, error) {
	pricing := pricingFor(modelName)

	estimate := &RunCostEstimate{
		Model:  modelName,
		Titles: make([]TitleCostEstimate, 0, len(titles)),
	}

	var callsPerTitle float64
	for _, call := range enrichmentCalls {
		callsPerTitle += call.PerTitle
	}
	estimate.CallsPerTitle = callsPerTitle

	for _, src := range titles {
		titleEst := estimateTitleCost(src, pricing)
		estimate.Titles = append(estimate.Titles, titleEst)
		estimate.TotalInputTokens += titleEst.EstimatedInputTokens
		estimate.TotalOutputTokens += titleEst.EstimatedOutputTokens
		estimate.TotalCost += titleEst.TotalCost
	}

	estimate.TotalRequests = int(math.Ceil(float64(len(titles)) * callsPerTitle))

	// Estimate processing time (sequential processing + rate limits)
	estimate.ProcessingTimeMinutes = float64(estimate.TotalRequests) * 2 / 60 // Assume 2 seconds per request

	// Check rate limits
	requestsPerMinute := float64(estimate.TotalRequests) / math.Max(estimate.ProcessingTimeMinutes, 1)
	if requestsPerMinute > float64(pricing.MaxRequestsPerMinute) {
		estimate.RateLimitWarning = fmt.Sprintf(
			"Warning: Estimated %d requests may exceed rate limit of %d/min for %s",
			estimate.TotalRequests, pricing.MaxRequestsPerMinute, modelName,
		)
	}

	return estimate, nil
}

// estimateTitleCost estimates the cost of enriching a single title. The title
// text itself rides along in every prompt, so its tokens count once per call.
func estimateTitleCost(src core.SourceTitle, pricing GeminiPricing) TitleCostEstimate {
	titleTokens := EstimateTokenCount(src.Title)

	var inputTokens, outputTokens float64
	for _, call := range enrichmentCalls {
		inputTokens += call.PerTitle * float64(call.InputTokens+titleTokens)
		outputTokens += call.PerTitle * float64(call.OutputTokens)
	}

	estimate := TitleCostEstimate{
		ThemeID:               src.ID,
		Title:                 src.Title,
		EstimatedInputTokens:  int(math.Ceil(inputTokens)),
		EstimatedOutputTokens: int(math.Ceil(outputTokens)),
	}
	estimate.InputCost = float64(estimate.EstimatedInputTokens) * pricing.InputCostPer1MTokens / 1000000
	estimate.OutputCost = float64(estimate.EstimatedOutputTokens) * pricing.OutputCostPer1MTokens / 1000000
	estimate.TotalCost = estimate.InputCost + estimate.OutputCost

	return estimate
}

// pricingFor resolves a model name against the pricing table, defaulting to
// the pipeline's default model when the name is unknown.
func pricingFor(modelName string) GeminiPricing {
	if pricing, exists := PricingTable[modelName]; exists {
		return pricing
	}
	return PricingTable[llm.DefaultModel]
}

// FormatEstimate formats the cost estimate for display
func (e *RunCostEstimate) FormatEstimate() string {
	var sb strings.Builder
	pricing := pricingFor(e.Model)

	sb.WriteString(fmt.Sprintf("Cost Estimation for %s\n", e.Model))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	// Summary
	sb.WriteString("📊 Summary:\n")
	sb.WriteString(fmt.Sprintf("   Titles to enrich: %d\n", len(e.Titles)))
	sb.WriteString(fmt.Sprintf("   Expected model calls: %d (%.1f per title)\n", e.TotalRequests, e.CallsPerTitle))
	sb.WriteString(fmt.Sprintf("   Total estimated cost: $%.6f\n", e.TotalCost))
	sb.WriteString(fmt.Sprintf("   Estimated processing time: %.1f minutes\n", e.ProcessingTimeMinutes))

	if e.RateLimitWarning != "" {
		sb.WriteString(fmt.Sprintf("   ⚠️  %s\n", e.RateLimitWarning))
	}
	sb.WriteString("\n")

	// Breakdown
	sb.WriteString("💰 Cost Breakdown:\n")
	sb.WriteString(fmt.Sprintf("   Input tokens: %d (~$%.6f)\n",
		e.TotalInputTokens, float64(e.TotalInputTokens)*pricing.InputCostPer1MTokens/1000000))
	sb.WriteString(fmt.Sprintf("   Output tokens: %d (~$%.6f)\n",
		e.TotalOutputTokens, float64(e.TotalOutputTokens)*pricing.OutputCostPer1MTokens/1000000))
	sb.WriteString("   Synthetic reviews: $0.000000 (template corpus, no model calls)\n")
	sb.WriteString("\n")

	// Per-title breakdown (show first 5)
	if len(e.Titles) > 0 {
		sb.WriteString("📝 Per-Title Estimates (showing first 5):\n")
		for i, title := range e.Titles {
			if i >= 5 {
				sb.WriteString(fmt.Sprintf("   ... and %d more titles\n", len(e.Titles)-5))
				break
			}
			sb.WriteString(fmt.Sprintf("   %d. $%.6f - %s\n", i+1, title.TotalCost, title.Title))
		}
	}

	return sb.String()
}
