package extract

import (
	"regexp"
	"strconv"
	"strings"

	"marquee/internal/core"
)

// namePattern matches a plausible person name: two or three capitalized words.
const namePattern = `[A-Z][a-zA-Z'-]+(?: [A-Z][a-zA-Z'-]+){1,2}`

var (
	yearRegex      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	directorRegex  = regexp.MustCompile(`[Dd]irected by (` + namePattern + `)`)
	castPairRegex  = regexp.MustCompile(`(` + namePattern + `)\s+(?:as|plays)\s+(` + namePattern + `)`)
	castListRegex  = regexp.MustCompile(`(?:[Ss]tarring|[Ss]tars|[Cc]ast includes|[Ff]eaturing)[:\s]+(` + namePattern + `(?:\s*(?:,|and|&)\s*` + namePattern + `)*)`)
	castSplitRegex = regexp.MustCompile(`\s*(?:,|\band\b|&)\s*`)
	capNameRegex   = regexp.MustCompile(namePattern)
	durationRegex  = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(min(?:ute)?s?|h(?:ou)?rs?)\b`)
	spaceRegex     = regexp.MustCompile(`\s+`)
)

// genrePriority is the closed genre vocabulary in match-priority order.
var genrePriority = []string{"Action", "Drama", "Comedy", "Thriller", "Romance", "Horror", "Adventure"}

const (
	maxCastEntries = 5   // Cap on the merged cast list
	minNameLength  = 5   // Shortest real name the filters accept
	minPlotLength  = 50  // Shorter plot text is discarded as noise
	maxPlotLength  = 500 // Plot truncation bound
)

// castStopwords are capitalized phrases that look like names to the pattern
// scan but never are. Keys are lowercase.
var castStopwords = map[string]bool{
	"new york":         true,
	"los angeles":      true,
	"las vegas":        true,
	"san francisco":    true,
	"united states":    true,
	"prime video":      true,
	"amazon prime":     true,
	"disney plus":      true,
	"apple tv":         true,
	"box office":       true,
	"rotten tomatoes":  true,
	"academy award":    true,
	"academy awards":   true,
	"golden globe":     true,
	"film festival":    true,
	"movie review":     true,
	"release date":     true,
	"full movie":       true,
	"watch online":     true,
	"official trailer": true,
	"the movie":        true,
	"the film":         true,
	"motion picture":   true,
	"best picture":     true,
	"special effects":  true,
	"main character":   true,
	"supporting cast":  true,
	"critical acclaim": true,
	"high definition":  true,
	"coming soon":      true,
}

// Extract mines a free-text blob (typically concatenated search snippets)
// for structured metadata. Fields that cannot be found are left as zero
// values; the resolver applies sentinel defaults and precedence rules.
// Stateless and deterministic given the same text.
func Extract(text, title string) core.PartialMetadata {
	return core.PartialMetadata{
		Year:     ExtractYear(text),
		Genre:    ExtractGenre(text),
		Director: ExtractDirector(text),
		Cast:     ExtractCast(text, title),
		Plot:     ExtractPlot(text),
		Duration: ExtractDuration(text),
	}
}

// ExtractYear returns the first plausible four-digit year in the text, or "".
func ExtractYear(text string) string {
	return yearRegex.FindString(text)
}

// ExtractGenre returns the highest-priority genre whose name appears in the
// text (case-insensitive), or "".
func ExtractGenre(text string) string {
	lower := strings.ToLower(text)
	for _, genre := range genrePriority {
		if strings.Contains(lower, strings.ToLower(genre)) {
			return genre
		}
	}
	return ""
}

// ExtractDirector returns the name following the first "directed by" phrase,
// or "".
func ExtractDirector(text string) string {
	match := directorRegex.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ExtractCast mines actor names, pairing characters where the text states
// them. Three strategies run in order of reliability: explicit "X as Y"
// pairs, "starring ..." list phrases, and, only when both of those come up
// empty, a generic capitalized-name scan. Results are merged, filtered, and
// deduplicated by real name; entries from earlier strategies win so explicit
// character pairings are never overwritten.
func ExtractCast(text, title string) []core.CastMember {
	var cast []core.CastMember
	seen := make(map[string]bool)

	add := func(realName, characterName string) {
		realName = strings.TrimSpace(realName)
		if !plausibleName(realName, title) {
			return
		}
		key := strings.ToLower(realName)
		if seen[key] {
			return
		}
		seen[key] = true
		cast = append(cast, core.CastMember{RealName: realName, CharacterName: strings.TrimSpace(characterName)})
	}

	// (a) explicit actor/character pairs
	for _, match := range castPairRegex.FindAllStringSubmatch(text, -1) {
		add(match[1], match[2])
	}

	// (b) starring/stars/cast includes/featuring lists
	for _, match := range castListRegex.FindAllStringSubmatch(text, -1) {
		for _, name := range castSplitRegex.Split(match[1], -1) {
			add(name, "")
		}
	}

	// (c) last resort: any two-or-three-capitalized-word sequence
	if len(cast) == 0 {
		for _, name := range capNameRegex.FindAllString(text, -1) {
			add(name, "")
		}
	}

	if len(cast) > maxCastEntries {
		cast = cast[:maxCastEntries]
	}
	return cast
}

// plausibleName applies the cast filters: length floor, no digits, not a
// stopword, not part of the title itself.
func plausibleName(name, title string) bool {
	if len(name) < minNameLength {
		return false
	}
	if strings.ContainsAny(name, "0123456789") {
		return false
	}
	lower := strings.ToLower(name)
	if castStopwords[lower] {
		return false
	}
	if title != "" && strings.Contains(strings.ToLower(title), lower) {
		return false
	}
	return true
}

// ExtractPlot normalizes whitespace and truncates to the plot bound. Text
// too short to be a meaningful plot yields "" so the resolver can apply the
// templated default.
func ExtractPlot(text string) string {
	normalized := strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
	if len(normalized) <= minPlotLength {
		return ""
	}
	runes := []rune(normalized)
	if len(runes) > maxPlotLength {
		normalized = strings.TrimSpace(string(runes[:maxPlotLength]))
	}
	return normalized
}

// ExtractDuration returns the first runtime mention normalized to minutes
// ("109 min"), or "". Hour units are converted.
func ExtractDuration(text string) string {
	match := durationRegex.FindStringSubmatch(text)
	if len(match) < 3 {
		return ""
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(match[2]), "h") {
		n *= 60
	}
	return strconv.Itoa(n) + " min"
}
