package core

import (
	"regexp"
	"time"
)

// ContentKind distinguishes the two catalog content types.
// The same enrichment pipeline runs for both; only prompt wording
// and search queries change.
type ContentKind string

const (
	KindMovie ContentKind = "movie"
	KindShow  ContentKind = "show"
)

// Valid reports whether the kind is one of the supported content types.
func (k ContentKind) Valid() bool {
	return k == KindMovie || k == KindShow
}

// Noun returns the kind as it should appear in search queries and prompts.
func (k ContentKind) Noun() string {
	if k == KindShow {
		return "TV show"
	}
	return "movie"
}

// Sentinel defaults applied by the resolver when neither extraction nor
// generation produced a value. Deterministic so downstream records are
// always complete.
const (
	DefaultYear          = "2020"
	DefaultGenre         = "Drama"
	DefaultDirector      = "Unknown Director"
	DefaultDuration      = "120 min"
	DefaultLanguage      = "English"
	DefaultContentRating = "NR"
	DefaultQuality       = "HD"
)

// DefaultPlot returns the templated plot sentence used when no meaningful
// plot text could be extracted or generated.
func DefaultPlot(title string) string {
	return title + " follows its central characters through a story of ambition, loyalty, and consequence."
}

// DefaultCast returns the placeholder cast used when no real names could be
// extracted or generated. Returns a fresh slice so callers may append.
func DefaultCast() []CastMember {
	return []CastMember{
		{RealName: "Actor 1", CharacterName: "Character 1"},
		{RealName: "Actor 2", CharacterName: "Character 2"},
		{RealName: "Actor 3", CharacterName: "Character 3"},
	}
}

var yearPrefixRegex = regexp.MustCompile(`^(19|20)\d{2}`)

// SourceTitle represents a single read-only catalog entry to be enriched.
type SourceTitle struct {
	ID          string      `json:"id"`           // Catalog identity; becomes the record's ThemeID
	Title       string      `json:"title"`        // Display title, e.g. "The Lighthouse"
	Kind        ContentKind `json:"kind"`         // movie or show
	Language    string      `json:"language"`     // Optional catalog language (e.g., "English")
	ReleaseDate string      `json:"release_date"` // Optional, "2006-01-02" or bare year
}

// Year returns the four-digit release year from ReleaseDate, or "" when the
// catalog did not supply one.
func (s SourceTitle) Year() string {
	return yearPrefixRegex.FindString(s.ReleaseDate)
}

// CastMember pairs a performer with the character they play.
type CastMember struct {
	RealName      string `json:"real_name"`      // Performer name
	CharacterName string `json:"character_name"` // Role; never empty after resolution
}

// PartialMetadata holds whatever the extractor or the generative fallback
// could recover for a title. Unset fields are zero values; the resolver
// merges partials and applies sentinels.
type PartialMetadata struct {
	Year          string       `json:"year"`
	Genre         string       `json:"genre"`
	Director      string       `json:"director"`
	Cast          []CastMember `json:"cast"`
	Plot          string       `json:"plot"`
	Duration      string       `json:"duration"`
	Language      string       `json:"language"`
	ContentRating string       `json:"content_rating"`
}

// Empty reports whether no field carries a value.
func (p PartialMetadata) Empty() bool {
	return p.Year == "" && p.Genre == "" && p.Director == "" &&
		len(p.Cast) == 0 && p.Plot == "" && p.Duration == "" &&
		p.Language == "" && p.ContentRating == ""
}

// ResolvedMetadata is the complete, sentinel-filled result of metadata
// resolution for one title. Every field is populated; treat as immutable.
type ResolvedMetadata struct {
	Title         string       `json:"title"`
	Kind          ContentKind  `json:"kind"`
	Year          string       `json:"year"`           // Matches (19|20)\d{2} or DefaultYear
	Genre         string       `json:"genre"`          // Closed vocabulary or DefaultGenre
	Director      string       `json:"director"`       // DefaultDirector when unknown
	Cast          []CastMember `json:"cast"`           // Up to 5 after dedup, placeholders if none
	Plot          string       `json:"plot"`           // At most 500 chars
	Duration      string       `json:"duration"`       // e.g. "109 min"
	Language      string       `json:"language"`       // Catalog value wins
	ContentRating string       `json:"content_rating"` // e.g. "R", "PG-13"
	PosterURL     string       `json:"poster_url"`     // Templated from the title slug
	WatchURL      string       `json:"watch_url"`      // Templated from the title slug
	FallbackUsed  bool         `json:"fallback_used"`  // True when the generative fallback contributed
}

// Review is a single synthesized audience review.
type Review struct {
	ID      string  `json:"id"`      // UUID
	Author  string  `json:"author"`  // Fixed persona name from the template corpus
	Rating  float64 `json:"rating"`  // In [1.0, 5.0], one decimal
	Content string  `json:"content"` // Interpolated template body
	Date    string  `json:"date"`    // "2006-01-02", backdated 1..365 days
	Source  string  `json:"source"`  // e.g. "Audience Review"
}

// ReviewSummary aggregates a review set into tone counts and a mean rating.
type ReviewSummary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"` // One decimal
	Positive      int     `json:"positive"`
	Neutral       int     `json:"neutral"`
	Negative      int     `json:"negative"`
	DominantTone  string  `json:"dominant_tone"` // positive, neutral, or negative
}

// EnrichedRecord is the persisted enrichment result for one catalog title.
// Exactly one record exists per ThemeID; the store enforces uniqueness.
type EnrichedRecord struct {
	ID            string       `json:"id"`                                           // UUID assigned on create
	ThemeID       string       `json:"theme_id" validate:"required"`                 // Catalog identity, unique
	Kind          ContentKind  `json:"kind" validate:"required,oneof=movie show"`    // Content type
	Title         string       `json:"title" validate:"required"`                    // Display title
	Year          string       `json:"year"`                                         // Resolved release year
	Genre         string       `json:"genre"`                                        // Resolved genre
	Director      string       `json:"director"`                                     // Resolved director
	Cast          []CastMember `json:"cast"`                                         // Resolved cast with characters
	Language      string       `json:"language"`                                     // Resolved language
	Duration      string       `json:"duration"`                                     // Resolved runtime
	ContentRating string       `json:"content_rating"`                               // Resolved rating board label
	Rating        float64      `json:"rating" validate:"gte=0,lte=5"`                // Mean of synthesized reviews
	Quality       string       `json:"quality" validate:"omitempty,oneof=HD 4K UHD"` // Stream quality tier
	Synopsis      string       `json:"synopsis"`                                     // Generated short synopsis
	WhyWatch      string       `json:"why_watch"`                                    // Generated editorial copy
	WhereWatch    string       `json:"where_watch"`                                  // Generated availability copy
	WatchURL      string       `json:"watch_url"`                                    // Slug-derived deep link
	PosterURL     string       `json:"poster_url"`                                   // Slug-derived artwork link
	Hashtags      []string     `json:"hashtags"`                                     // Generated social tags, # prefixed
	Keywords      []string     `json:"keywords"`                                     // Generated discovery keywords
	Reviews       []Review     `json:"reviews"`                                      // Synthesized review set
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
