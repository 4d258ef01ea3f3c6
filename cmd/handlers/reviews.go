package handlers

import (
	"fmt"
	"strings"

	"marquee/internal/core"
	"marquee/internal/reviews"

	"github.com/spf13/cobra"
)

// NewReviewsCmd creates the reviews command for inspecting synthesis output
func NewReviewsCmd() *cobra.Command {
	var (
		seed     int64
		genre    string
		director string
	)

	cmd := &cobra.Command{
		Use:   "reviews [title]",
		Short: "Synthesize audience reviews for a title",
		Long: `Synthesize and print the template-based audience reviews for a title.
No API calls are made; reviews come from the fixed template corpus.

Examples:
  marquee reviews "The Lighthouse" --genre Thriller --director "Robert Eggers"
  marquee reviews "Dark Harbor" --seed 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviews(strings.Join(args, " "), genre, director, seed)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible output (0 uses the configured seed)")
	cmd.Flags().StringVar(&genre, "genre", core.DefaultGenre, "Genre used in review text")
	cmd.Flags().StringVar(&director, "director", core.DefaultDirector, "Director used in review text")

	return cmd
}

func runReviews(title, genre, director string, seed int64) error {
	synthesizer := newSynthesizer()
	if seed != 0 {
		synthesizer = reviews.NewSeededSynthesizer(seed)
	}

	md := core.ResolvedMetadata{
		Title:    title,
		Genre:    genre,
		Director: director,
		Cast:     core.DefaultCast(),
	}

	revs := synthesizer.Synthesize(md)
	summary := reviews.Summarize(revs)

	fmt.Printf("📝 %d reviews for %q\n", summary.Count, title)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for _, review := range revs {
		fmt.Printf("\n%s rated it %.1f/5.0 on %s:\n", review.Author, review.Rating, review.Date)
		fmt.Printf("  %s\n", review.Content)
	}

	fmt.Println()
	fmt.Printf("⭐ Average %.1f/5.0 · %d positive / %d neutral / %d negative (%s)\n",
		summary.AverageRating, summary.Positive, summary.Neutral, summary.Negative, summary.DominantTone)

	return nil
}
