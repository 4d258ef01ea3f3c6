package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"marquee/internal/core"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for fallback generation.
	DefaultModel = "gemini-flash-lite-latest"

	// DefaultMaxTokens bounds a single completion when the caller does not say otherwise.
	DefaultMaxTokens = int32(1024)

	// castPromptTemplate asks for the main cast as pipe-separated pairs so the
	// parser never has to guess which side is the actor.
	castPromptTemplate = `List the main cast of the %s "%s"%s%s.

Format: one entry per line as
Actor Name|Character Name

Return at most 4 lines and nothing else. If you are not sure about a character name, still include the actor with your best guess.`

	// characterNamesPromptTemplate resolves character names for actors found in
	// search text. Order matters: answers are paired back positionally.
	characterNamesPromptTemplate = `For the %s "%s", give the character played by each of these actors, in the same order:

%s

Format: one character name per line, nothing else. If unknown, write Unknown.`

	// metadataPromptTemplate asks for a single JSON object covering every field
	// the resolver may still be missing after text extraction.
	metadataPromptTemplate = `Provide metadata for the %s "%s"%s%s.

Respond with only a JSON object with these keys:
{"year": "", "genre": "", "director": "", "plot": "", "duration": "", "language": "", "content_rating": ""}

Use a 4-digit year, one primary genre, duration like "120 min", and a 2-3 sentence plot. No markdown, no commentary.`

	whyWatchPromptTemplate = `Write a compelling "Why You Should Watch" section for the %s "%s"%s for a streaming catalog page.

Details:
- Genre: %s
- Director: %s
- Cast: %s
- Plot: %s

Create 3-4 engaging paragraphs (150-200 words total) that:
- Highlight the title's strengths and appeal
- Mention what makes it worth watching
- Focus on entertainment value, performances, or unique elements
- Use an enthusiastic but professional tone
- DO NOT include spoilers
- DO NOT ask readers to write reviews
- DO NOT use phrases like "Don't miss" or "Must watch"

Write only the content, no headings or titles.`

	synopsisPromptTemplate = `Rewrite the following synopsis for the %s "%s"%s to make it engaging and descriptive.

Genre: %s
Director: %s
Cast: %s

Original synopsis: %s

The rewritten synopsis must:
1. Be 2-3 sentences, 50-100 words total
2. Open with a hook that mentions the title, year, and genre
3. Preserve the key plot points
4. Avoid spoilers

Write only the synopsis.`

	whereWatchPromptTemplate = `Write a short "Where to Watch" note for the %s "%s", available to stream on the Marquee platform.

One or two sentences, mention that it streams on Marquee, no URLs, no calls to action beyond watching.`

	qualityPromptTemplate = `In one word, what streaming quality tier best fits a %s release from %s: HD, 4K, or UHD? Answer with exactly one of: HD, 4K, UHD.`

	hashtagsPromptTemplate = `Generate 15-20 hashtags for the %s "%s"%s to promote it on the Marquee streaming platform.

Details:
- Genre: %s
- Director: %s
- Cast: %s

Include hashtags for the title, genre, cast and director names, and streaming.
Format: return only hashtags separated by spaces, each starting with #
Example: #TitleName #DramaMovies #StreamOnline #Marquee`

	keywordsPromptTemplate = `Generate 10-15 search keywords people would use to find the %s "%s"%s online.

Genre: %s

Format: one keyword phrase per line, lowercase, no numbering, no commentary.`
)

// Limits applied to parsed generative output.
const (
	maxGeneratedCast = 4
	maxHashtags      = 20
	maxKeywords      = 15
)

// CopyKind selects which piece of promotional copy GenerateCopy produces.
type CopyKind string

const (
	CopyWhyWatch   CopyKind = "why-watch"
	CopySynopsis   CopyKind = "synopsis"
	CopyWhereWatch CopyKind = "where-watch"
	CopyQuality    CopyKind = "quality"
)

// Valid reports whether k names a known copy kind.
func (k CopyKind) Valid() bool {
	switch k {
	case CopyWhyWatch, CopySynopsis, CopyWhereWatch, CopyQuality:
		return true
	}
	return false
}

// Client wraps the Gemini SDK for the enrichment pipeline's fallback
// generation. Every Generate* method degrades to a deterministic result or an
// ok=false flag; callers log and move on, they never abort a run over it.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// NewClient creates a generative client.
// It supports multiple ways to get the API key (in order of preference):
// 1. Environment variable: GEMINI_API_KEY (or alternatives)
// 2. Viper configuration: ai.gemini.api_key
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("ai.gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// Complete sends a single prompt and returns the response text. One call, no
// retries: a failed completion is the caller's cue to fall back.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
		Temperature:     genai.Ptr(float32(0.7)),
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// GenerateCast asks the model for the main cast. Any failure, including an
// unparseable response, yields the fixed placeholder cast so downstream
// templating always has names to work with.
func (c *Client) GenerateCast(ctx context.Context, kind core.ContentKind, title, year, language string) []core.CastMember {
	prompt := fmt.Sprintf(castPromptTemplate, kind.Noun(), title, yearClause(year), languageClause(language))

	response, err := c.Complete(ctx, prompt, 256)
	if err != nil {
		return core.DefaultCast()
	}

	cast := parseCastResponse(response)
	if len(cast) == 0 {
		return core.DefaultCast()
	}
	return cast
}

// GenerateCharacterNames resolves character names for realNames in one
// batched call. The returned slice always has len(realNames), with "" where
// the model gave nothing usable; ok is false when the whole call failed.
func (c *Client) GenerateCharacterNames(ctx context.Context, kind core.ContentKind, title string, realNames []string) ([]string, bool) {
	if len(realNames) == 0 {
		return nil, false
	}

	var list strings.Builder
	for i, name := range realNames {
		fmt.Fprintf(&list, "%d. %s\n", i+1, name)
	}
	prompt := fmt.Sprintf(characterNamesPromptTemplate, kind.Noun(), title, strings.TrimSpace(list.String()))

	response, err := c.Complete(ctx, prompt, 256)
	if err != nil {
		return nil, false
	}

	names := parseCharacterNames(response, len(realNames))
	if names == nil {
		return nil, false
	}
	return names, true
}

// GenerateMetadata asks for the full metadata object as JSON. Malformed JSON
// returns a zero value and false; the resolver then falls back to defaults.
func (c *Client) GenerateMetadata(ctx context.Context, kind core.ContentKind, title, year, language string) (core.PartialMetadata, bool) {
	prompt := fmt.Sprintf(metadataPromptTemplate, kind.Noun(), title, yearClause(year), languageClause(language))

	response, err := c.Complete(ctx, prompt, 512)
	if err != nil {
		return core.PartialMetadata{}, false
	}

	return parseMetadataJSON(response)
}

// GenerateCopy produces one piece of promotional copy for a resolved title.
// The quality kind is post-processed to one of HD, 4K or UHD.
func (c *Client) GenerateCopy(ctx context.Context, kind CopyKind, md core.ResolvedMetadata) (string, bool) {
	var prompt string
	var maxTokens int32

	castNames := joinCastNames(md.Cast)
	switch kind {
	case CopyWhyWatch:
		prompt = fmt.Sprintf(whyWatchPromptTemplate, md.Kind.Noun(), md.Title, yearClause(md.Year), md.Genre, md.Director, castNames, md.Plot)
		maxTokens = 500
	case CopySynopsis:
		prompt = fmt.Sprintf(synopsisPromptTemplate, md.Kind.Noun(), md.Title, yearClause(md.Year), md.Genre, md.Director, castNames, md.Plot)
		maxTokens = 300
	case CopyWhereWatch:
		prompt = fmt.Sprintf(whereWatchPromptTemplate, md.Kind.Noun(), md.Title)
		maxTokens = 120
	case CopyQuality:
		prompt = fmt.Sprintf(qualityPromptTemplate, md.Genre, md.Year)
		maxTokens = 20
	default:
		return "", false
	}

	response, err := c.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", false
	}

	text := strings.TrimSpace(response)
	if kind == CopyQuality {
		return normalizeQuality(text), true
	}
	if text == "" {
		return "", false
	}
	return text, true
}

// GenerateHashtags returns promotional hashtags, falling back to
// deterministic tags built from the metadata when generation fails.
func (c *Client) GenerateHashtags(ctx context.Context, md core.ResolvedMetadata) []string {
	prompt := fmt.Sprintf(hashtagsPromptTemplate, md.Kind.Noun(), md.Title, yearClause(md.Year), md.Genre, md.Director, joinCastNames(md.Cast))

	response, err := c.Complete(ctx, prompt, 300)
	if err != nil {
		return FallbackHashtags(md)
	}

	tags := parseHashtagsResponse(response)
	if len(tags) == 0 {
		return FallbackHashtags(md)
	}
	return tags
}

// GenerateKeywords returns lowercase search keywords for a resolved title,
// falling back to deterministic title and genre phrases when generation
// fails.
func (c *Client) GenerateKeywords(ctx context.Context, md core.ResolvedMetadata) []string {
	prompt := fmt.Sprintf(keywordsPromptTemplate, md.Kind.Noun(), md.Title, yearClause(md.Year), md.Genre)

	response, err := c.Complete(ctx, prompt, 300)
	if err != nil {
		return FallbackKeywords(md)
	}

	keywords := parseKeywordsResponse(response)
	if len(keywords) == 0 {
		return FallbackKeywords(md)
	}
	return keywords
}

// Close cleans up resources used by the client.
func (c *Client) Close() {
	// The genai client does not require explicit close.
}

// GetModelName returns the model name used by this client.
func (c *Client) GetModelName() string {
	return c.modelName
}

func yearClause(year string) string {
	if year == "" {
		return ""
	}
	return " (" + year + ")"
}

func languageClause(language string) string {
	if language == "" {
		return ""
	}
	return ", " + language + " language"
}

func joinCastNames(cast []core.CastMember) string {
	if len(cast) == 0 {
		return "Unknown"
	}
	names := make([]string, 0, len(cast))
	for _, member := range cast {
		names = append(names, member.RealName)
	}
	return strings.Join(names, ", ")
}

// parseCastResponse parses "Actor|Character" lines. Bullets and numbering are
// tolerated, duplicate actors and header lines are dropped.
func parseCastResponse(response string) []core.CastMember {
	var cast []core.CastMember
	seen := make(map[string]bool)

	for _, line := range strings.Split(response, "\n") {
		line = stripListPrefix(line)
		if line == "" || !strings.Contains(line, "|") {
			continue
		}

		parts := strings.SplitN(line, "|", 2)
		actor := strings.TrimSpace(parts[0])
		character := strings.TrimSpace(parts[1])
		if actor == "" || character == "" {
			continue
		}
		// Skip echoed format headers like "Actor Name|Character Name".
		if strings.EqualFold(actor, "actor name") || strings.EqualFold(actor, "actor") {
			continue
		}

		key := strings.ToLower(actor)
		if seen[key] {
			continue
		}
		seen[key] = true

		cast = append(cast, core.CastMember{RealName: actor, CharacterName: character})
		if len(cast) >= maxGeneratedCast {
			break
		}
	}

	return cast
}

// parseCharacterNames pairs response lines back to the actors positionally.
// The result always has length want, padded with "" when the model returned
// fewer lines; nil means nothing usable came back at all.
func parseCharacterNames(response string, want int) []string {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		line = stripListPrefix(line)
		if line == "" {
			continue
		}
		// Tolerate "Actor: Character" or "Actor|Character" answers.
		if idx := strings.LastIndexAny(line, "|:"); idx >= 0 && idx < len(line)-1 {
			line = strings.TrimSpace(line[idx+1:])
		}
		if strings.EqualFold(line, "unknown") {
			line = ""
		}
		lines = append(lines, line)
	}

	usable := 0
	for _, line := range lines {
		if line != "" {
			usable++
		}
	}
	if usable == 0 {
		return nil
	}

	names := make([]string, want)
	for i := 0; i < want && i < len(lines); i++ {
		names[i] = lines[i]
	}
	return names
}

// parseMetadataJSON extracts a metadata object from a model response. Code
// fences and surrounding prose are tolerated; anything that still fails to
// unmarshal returns ok=false.
func parseMetadataJSON(response string) (core.PartialMetadata, bool) {
	cleanResponse := strings.TrimSpace(response)
	if strings.HasPrefix(cleanResponse, "```") {
		cleanResponse = strings.TrimPrefix(cleanResponse, "```json")
		cleanResponse = strings.TrimPrefix(cleanResponse, "```")
		cleanResponse = strings.TrimSuffix(cleanResponse, "```")
		cleanResponse = strings.TrimSpace(cleanResponse)
	}

	start := strings.Index(cleanResponse, "{")
	end := strings.LastIndex(cleanResponse, "}")
	if start < 0 || end <= start {
		return core.PartialMetadata{}, false
	}
	cleanResponse = cleanResponse[start : end+1]

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleanResponse), &parsed); err != nil {
		return core.PartialMetadata{}, false
	}

	md := core.PartialMetadata{
		Year:          stringField(parsed["year"]),
		Genre:         stringField(parsed["genre"]),
		Director:      stringField(parsed["director"]),
		Plot:          stringField(parsed["plot"]),
		Duration:      stringField(parsed["duration"]),
		Language:      stringField(parsed["language"]),
		ContentRating: stringField(parsed["content_rating"]),
	}
	return md, true
}

// stringField renders a decoded JSON value as a trimmed string. Models
// sometimes return the year or duration as a bare number.
func stringField(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	default:
		return ""
	}
}

// normalizeQuality clamps a quality answer to HD, 4K or UHD. Anything
// unrecognized becomes HD.
func normalizeQuality(response string) string {
	upper := strings.ToUpper(response)
	switch {
	case strings.Contains(upper, "4K"):
		return "4K"
	case strings.Contains(upper, "UHD"):
		return "UHD"
	case strings.Contains(upper, "HD"):
		return "HD"
	}
	return core.DefaultQuality
}

// parseHashtagsResponse keeps whitespace-separated tokens that start with #.
func parseHashtagsResponse(response string) []string {
	var tags []string
	seen := make(map[string]bool)

	for _, token := range strings.Fields(response) {
		token = strings.TrimRight(token, ",.;:!?")
		if len(token) < 2 || !strings.HasPrefix(token, "#") {
			continue
		}

		key := strings.ToLower(token)
		if seen[key] {
			continue
		}
		seen[key] = true

		tags = append(tags, token)
		if len(tags) >= maxHashtags {
			break
		}
	}

	return tags
}

// parseKeywordsResponse splits a keyword response on newlines and commas,
// lowercases and dedupes.
func parseKeywordsResponse(response string) []string {
	var keywords []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(response, "\n") {
		for _, part := range strings.Split(stripListPrefix(line), ",") {
			keyword := strings.ToLower(strings.Trim(part, " \t\"'"))
			if keyword == "" || strings.HasPrefix(keyword, "#") || seen[keyword] {
				continue
			}
			seen[keyword] = true

			keywords = append(keywords, keyword)
			if len(keywords) >= maxKeywords {
				return keywords
			}
		}
	}

	return keywords
}

// FallbackHashtags builds deterministic hashtags from the metadata alone.
func FallbackHashtags(md core.ResolvedMetadata) []string {
	compact := compactTitle(md.Title)
	if compact == "" {
		compact = "Marquee"
	}

	tags := []string{"#" + compact}
	if md.Year != "" {
		tags = append(tags, "#"+compact+md.Year)
	}
	if md.Genre != "" {
		genreWord := "Movies"
		if md.Kind == core.KindShow {
			genreWord = "Shows"
		}
		tags = append(tags, "#"+compactTitle(md.Genre), "#"+compactTitle(md.Genre)+genreWord)
	}
	tags = append(tags, "#WatchOnline", "#StreamOnline", "#Marquee")
	return tags
}

// FallbackKeywords builds deterministic search keywords from the metadata
// alone.
func FallbackKeywords(md core.ResolvedMetadata) []string {
	title := strings.ToLower(strings.TrimSpace(md.Title))
	if title == "" {
		return nil
	}

	noun := strings.ToLower(md.Kind.Noun())
	keywords := []string{
		title + " " + noun,
	}
	if md.Year != "" {
		keywords = append(keywords, title+" "+md.Year)
	}
	if md.Genre != "" {
		keywords = append(keywords, title+" "+strings.ToLower(md.Genre), strings.ToLower(md.Genre)+" "+noun+"s")
	}
	keywords = append(keywords,
		title+" plot",
		title+" cast",
		title+" review",
		title+" watch online",
		title+" streaming",
	)
	return keywords
}

// FallbackSynopsis builds a deterministic template synopsis for use when the
// generated rewrite is unavailable.
func FallbackSynopsis(md core.ResolvedMetadata) string {
	plot := md.Plot
	if runes := []rune(plot); len(runes) > 150 {
		plot = strings.TrimSpace(string(runes[:150])) + "..."
	}
	return fmt.Sprintf("%s (%s) is a must-watch %s %s directed by %s. %s This entertaining story will keep audiences engaged from start to finish.",
		md.Title, md.Year, strings.ToLower(md.Genre), strings.ToLower(md.Kind.Noun()), md.Director, plot)
}

// compactTitle turns "The Lighthouse" into "TheLighthouse" for hashtag use.
func compactTitle(s string) string {
	var builder strings.Builder
	upperNext := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			if upperNext {
				r = r - 'a' + 'A'
			}
			builder.WriteRune(r)
			upperNext = false
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			builder.WriteRune(r)
			upperNext = false
		default:
			upperNext = true
		}
	}
	return builder.String()
}

// stripListPrefix removes bullet and numbering noise from a response line.
func stripListPrefix(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*• \t")
	// Numbered lists: "1. Name", "2) Name".
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == '.' || r == ')') && i > 0 {
			line = strings.TrimSpace(line[i+1:])
		}
		break
	}
	return strings.TrimSpace(line)
}
