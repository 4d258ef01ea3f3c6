package extract

import (
	"strings"
	"testing"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"embedded year", "released in 2019 to wide acclaim", "2019"},
		{"nineties year", "a cult favorite from 1994.", "1994"},
		{"first of several", "shot in 2015 and released in 2017", "2015"},
		{"decade suffix is not a year", "popular in the 1970s", ""},
		{"no year", "a timeless classic", ""},
		{"implausible century", "set in the year 3019", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExtractYear(test.text); got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestExtractGenre(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"direct mention", "a horror classic", "Horror"},
		{"case insensitive", "THRILLER of the decade", "Thriller"},
		{"priority order wins", "a comedy thriller hybrid", "Comedy"},
		{"substring match", "takes a dramatic turn", "Drama"},
		{"no genre", "a film about lighthouses", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExtractGenre(test.text); got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestExtractDirector(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"two word name", "an epic directed by Alan Park in his debut", "Alan Park"},
		{"three word name", "directed by Mary Van Houten", "Mary Van Houten"},
		{"capitalized phrase start", "Directed by Robert Eggers.", "Robert Eggers"},
		{"lowercase name rejected", "directed by someone unknown", ""},
		{"no phrase", "produced by Jane Doe", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExtractDirector(test.text); got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestExtractCast_StarringList(t *testing.T) {
	text := "An acclaimed film starring Jane Doe and John Smith, directed by Alan Park."

	cast := ExtractCast(text, "Midnight Run")
	if len(cast) != 2 {
		t.Fatalf("Expected 2 cast members, got %d: %+v", len(cast), cast)
	}
	if cast[0].RealName != "Jane Doe" {
		t.Errorf("Expected first cast member 'Jane Doe', got %q", cast[0].RealName)
	}
	if cast[1].RealName != "John Smith" {
		t.Errorf("Expected second cast member 'John Smith', got %q", cast[1].RealName)
	}
	// The director phrase must not leak into the cast from a list match.
	for _, member := range cast {
		if member.RealName == "Alan Park" {
			t.Error("Director name should not appear in cast extracted from a starring list")
		}
	}
}

func TestExtractCast_ExplicitPairs(t *testing.T) {
	text := "The film stars Willem Dafoe as Thomas Wake and Robert Pattinson as Ephraim Winslow."

	cast := ExtractCast(text, "The Lighthouse")
	if len(cast) != 2 {
		t.Fatalf("Expected 2 cast members, got %d: %+v", len(cast), cast)
	}
	if cast[0].RealName != "Willem Dafoe" || cast[0].CharacterName != "Thomas Wake" {
		t.Errorf("Expected Willem Dafoe as Thomas Wake, got %+v", cast[0])
	}
	if cast[1].RealName != "Robert Pattinson" || cast[1].CharacterName != "Ephraim Winslow" {
		t.Errorf("Expected Robert Pattinson as Ephraim Winslow, got %+v", cast[1])
	}
}

func TestExtractCast_PairWinsOverList(t *testing.T) {
	text := "Starring Willem Dafoe and Robert Pattinson. Critics praised Willem Dafoe as Thomas Wake."

	cast := ExtractCast(text, "The Lighthouse")
	for _, member := range cast {
		if member.RealName == "Willem Dafoe" && member.CharacterName != "Thomas Wake" {
			t.Errorf("Pair-derived character name should win for deduplicated entries, got %+v", member)
		}
	}
}

func TestExtractCast_Filters(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
	}{
		{"digits rejected", "starring Agent 47 and nobody else", "Hitman"},
		{"title substring rejected", "starring John Smith in the lead", "The John Smith Story"},
		{"stopword rejected", "now streaming, featuring Prime Video exclusives", "Some Film"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if cast := ExtractCast(test.text, test.title); len(cast) != 0 {
				t.Errorf("Expected empty cast, got %+v", cast)
			}
		})
	}
}

func TestExtractCast_GenericScanLastResort(t *testing.T) {
	// No starring/as phrases at all; the capitalized-name scan should kick in.
	text := "Critics singled out Maria Gonzalez for a quietly devastating turn."

	cast := ExtractCast(text, "Quiet Waters")
	if len(cast) != 1 {
		t.Fatalf("Expected 1 cast member from generic scan, got %d: %+v", len(cast), cast)
	}
	if cast[0].RealName != "Maria Gonzalez" {
		t.Errorf("Expected 'Maria Gonzalez', got %q", cast[0].RealName)
	}
	if cast[0].CharacterName != "" {
		t.Errorf("Generic scan should not invent character names, got %q", cast[0].CharacterName)
	}
}

func TestExtractCast_Cap(t *testing.T) {
	text := "starring Aaron Albee, Bella Brown, Carla Cruz, Dana Drake, Emma Ellis, Frank Field and Grace Grant"

	cast := ExtractCast(text, "Ensemble")
	if len(cast) != 5 {
		t.Errorf("Expected cast capped at 5, got %d", len(cast))
	}
}

func TestExtractPlot(t *testing.T) {
	short := "Too short to matter."
	if got := ExtractPlot(short); got != "" {
		t.Errorf("Expected empty plot for short text, got %q", got)
	}

	messy := "Two  lighthouse keepers try\n\nto maintain their sanity while   living on a remote island in the 1890s."
	got := ExtractPlot(messy)
	if strings.Contains(got, "\n") || strings.Contains(got, "  ") {
		t.Errorf("Expected normalized whitespace, got %q", got)
	}

	long := strings.Repeat("word ", 120)
	got = ExtractPlot(long)
	if len([]rune(got)) > 500 {
		t.Errorf("Expected plot truncated to 500 chars, got %d", len([]rune(got)))
	}
	if len([]rune(got)) < 400 {
		t.Errorf("Truncation removed too much text: %d chars", len([]rune(got)))
	}
}

func TestExtractDuration(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"minutes", "with a runtime of 109 minutes", "109 min"},
		{"min short form", "90 min of tension", "90 min"},
		{"hours converted", "clocking in at 2 hrs", "120 min"},
		{"single hour", "a brisk 1 hour watch", "60 min"},
		{"no duration", "no runtime listed", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExtractDuration(test.text); got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	text := "The Lighthouse is a 2019 psychological thriller film directed by Robert Eggers, " +
		"starring Willem Dafoe and Robert Pattinson. Two lighthouse keepers descend into madness " +
		"on a remote New England island. Runtime: 109 minutes."

	md := Extract(text, "The Lighthouse")

	if md.Year != "2019" {
		t.Errorf("Expected year 2019, got %q", md.Year)
	}
	if md.Genre != "Thriller" {
		t.Errorf("Expected genre Thriller, got %q", md.Genre)
	}
	if md.Director != "Robert Eggers" {
		t.Errorf("Expected director Robert Eggers, got %q", md.Director)
	}
	if len(md.Cast) != 2 {
		t.Fatalf("Expected 2 cast members, got %d: %+v", len(md.Cast), md.Cast)
	}
	if md.Cast[0].RealName != "Willem Dafoe" || md.Cast[1].RealName != "Robert Pattinson" {
		t.Errorf("Unexpected cast: %+v", md.Cast)
	}
	if md.Duration != "109 min" {
		t.Errorf("Expected duration '109 min', got %q", md.Duration)
	}
	if md.Plot == "" {
		t.Error("Expected a non-empty plot")
	}
	if md.Language != "" || md.ContentRating != "" {
		t.Error("Extractor should not populate language or content rating")
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "starring Jane Doe and John Smith, a 1999 action film directed by Alan Park, 95 minutes"

	first := Extract(text, "Boiling Point")
	second := Extract(text, "Boiling Point")

	if first.Year != second.Year || first.Genre != second.Genre || first.Director != second.Director {
		t.Error("Extract should be deterministic for identical input")
	}
	if len(first.Cast) != len(second.Cast) {
		t.Error("Extract cast should be deterministic for identical input")
	}
}
