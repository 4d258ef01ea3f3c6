package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"marquee/internal/core"
)

// RenderRecordMarkdown renders an enriched record as a markdown document
// suitable for editorial review. Sections with no content are skipped.
func RenderRecordMarkdown(record *core.EnrichedRecord) string {
	var sb strings.Builder

	header := record.Title
	if record.Year != "" {
		header = fmt.Sprintf("%s (%s)", record.Title, record.Year)
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", header))

	if record.PosterURL != "" {
		sb.WriteString(fmt.Sprintf("![Poster](%s)\n\n", record.PosterURL))
	}

	meta := []string{record.Kind.Noun()}
	for _, part := range []string{record.Genre, record.Duration, record.ContentRating, record.Language} {
		if part != "" {
			meta = append(meta, part)
		}
	}
	sb.WriteString(fmt.Sprintf("*%s*\n\n", strings.Join(meta, " · ")))

	facts := make([]string, 0, 3)
	if record.Director != "" {
		facts = append(facts, fmt.Sprintf("**Directed by:** %s", record.Director))
	}
	facts = append(facts, fmt.Sprintf("**Rating:** %.1f/5.0 (%d reviews)", record.Rating, len(record.Reviews)))
	if record.Quality != "" {
		facts = append(facts, fmt.Sprintf("**Quality:** %s", record.Quality))
	}
	sb.WriteString(strings.Join(facts, " · ") + "\n\n")

	if record.WhyWatch != "" {
		sb.WriteString("## Why Watch\n\n")
		sb.WriteString(record.WhyWatch + "\n\n")
	}

	if record.Synopsis != "" {
		sb.WriteString("## Synopsis\n\n")
		sb.WriteString(record.Synopsis + "\n\n")
	}

	if record.WhereWatch != "" || record.WatchURL != "" {
		sb.WriteString("## Where to Watch\n\n")
		if record.WhereWatch != "" {
			sb.WriteString(record.WhereWatch + "\n\n")
		}
		if record.WatchURL != "" {
			sb.WriteString(fmt.Sprintf("[Watch now](%s)\n\n", record.WatchURL))
		}
	}

	if len(record.Cast) > 0 {
		sb.WriteString("## Cast\n\n")
		for _, member := range record.Cast {
			if member.CharacterName != "" {
				sb.WriteString(fmt.Sprintf("- %s as %s\n", member.RealName, member.CharacterName))
			} else {
				sb.WriteString(fmt.Sprintf("- %s\n", member.RealName))
			}
		}
		sb.WriteString("\n")
	}

	if len(record.Reviews) > 0 {
		sb.WriteString("## Reviews\n\n")
		for _, review := range record.Reviews {
			sb.WriteString(fmt.Sprintf("**%s** rated it %.1f/5.0 on %s:\n\n", review.Author, review.Rating, review.Date))
			sb.WriteString(fmt.Sprintf("> %s\n\n", review.Content))
		}
	}

	if len(record.Hashtags) > 0 {
		sb.WriteString("## Social\n\n")
		sb.WriteString(strings.Join(record.Hashtags, " ") + "\n\n")
	}

	if len(record.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("**Keywords:** %s\n\n", strings.Join(record.Keywords, ", ")))
	}

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("*theme_id: %s*", record.ThemeID))
	if !record.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf(" · *updated %s*", record.UpdatedAt.UTC().Format("2006-01-02")))
	}
	sb.WriteString("\n")

	return sb.String()
}

// WriteRecordFiles writes the markdown summary and a pretty-printed JSON dump
// of the record to outputDir, both named after the theme_id. It returns the
// paths of the two files.
func WriteRecordFiles(record *core.EnrichedRecord, outputDir string) (string, string, error) {
	if outputDir == "" {
		outputDir = "records" // Default output directory
	}

	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		return "", "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	mdPath := filepath.Join(outputDir, record.ThemeID+".md")
	err = os.WriteFile(mdPath, []byte(RenderRecordMarkdown(record)), 0644)
	if err != nil {
		return "", "", fmt.Errorf("failed to write markdown file %s: %w", mdPath, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal record %s: %w", record.ThemeID, err)
	}

	jsonPath := filepath.Join(outputDir, record.ThemeID+".json")
	err = os.WriteFile(jsonPath, append(data, '\n'), 0644)
	if err != nil {
		return "", "", fmt.Errorf("failed to write JSON file %s: %w", jsonPath, err)
	}

	return mdPath, jsonPath, nil
}
