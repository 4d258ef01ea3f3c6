// Package reviews synthesizes audience reviews for enriched titles from a
// fixed template corpus. Output is intentionally randomized; inject a seeded
// rand.Rand to make it reproducible.
package reviews

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"marquee/internal/core"

	"github.com/google/uuid"
)

// reviewSource labels every synthesized review.
const reviewSource = "Public Review Database"

// closingChance is the probability a review gets a closing sentence.
const closingChance = 0.3

// minReviews is the floor on the synthesized count. Small corpora clamp to it
// rather than computing an empty range.
const minReviews = 3

// backdateDays bounds how far into the past review dates are stamped.
const backdateDays = 365

// Synthesizer produces randomized review sets over the template corpus.
type Synthesizer struct {
	rng *rand.Rand
	now func() time.Time
}

// NewSynthesizer creates a synthesizer seeded from the clock.
func NewSynthesizer() *Synthesizer {
	return NewSeededSynthesizer(time.Now().UnixNano())
}

// NewSeededSynthesizer creates a synthesizer with a fixed seed so tests and
// the reviews command can reproduce a run.
func NewSeededSynthesizer(seed int64) *Synthesizer {
	return &Synthesizer{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Synthesize generates between minReviews and CorpusSize() reviews for the
// resolved title, sampling templates without replacement and biasing the count
// toward the full corpus. Ratings stay inside each template's sub-range so a
// rave never carries a one-star score.
func (s *Synthesizer) Synthesize(md core.ResolvedMetadata) []core.Review {
	count := s.reviewCount(len(reviewTemplates))
	selected := s.sampleTemplates(count)

	reviews := make([]core.Review, 0, len(selected))
	for _, template := range selected {
		reviews = append(reviews, s.renderReview(template, md))
	}
	return reviews
}

// reviewCount draws the set size uniformly from [max(3, corpus-2), corpus],
// clamped so a tiny corpus still yields a valid range.
func (s *Synthesizer) reviewCount(corpus int) int {
	if corpus <= minReviews {
		return corpus
	}
	low := corpus - 2
	if low < minReviews {
		low = minReviews
	}
	return low + s.rng.Intn(corpus-low+1)
}

// sampleTemplates picks count templates without replacement.
func (s *Synthesizer) sampleTemplates(count int) []ReviewTemplate {
	indexes := s.rng.Perm(len(reviewTemplates))
	if count > len(indexes) {
		count = len(indexes)
	}

	selected := make([]ReviewTemplate, 0, count)
	for _, idx := range indexes[:count] {
		selected = append(selected, reviewTemplates[idx])
	}
	return selected
}

// renderReview interpolates one template against the metadata.
func (s *Synthesizer) renderReview(template ReviewTemplate, md core.ResolvedMetadata) core.Review {
	content := interpolate(template.Content, md, s.pickActor(md.Cast))
	if s.rng.Float64() < closingChance {
		if closing := closingSentence(template.Sentiment, md.Title); closing != "" {
			content += " " + closing
		}
	}

	rating := template.RatingMin + s.rng.Float64()*(template.RatingMax-template.RatingMin)
	rating = math.Round(rating*10) / 10

	daysAgo := 1 + s.rng.Intn(backdateDays)
	date := s.now().AddDate(0, 0, -daysAgo).Format("2006-01-02")

	return core.Review{
		ID:      uuid.NewString(),
		Author:  template.Author,
		Rating:  rating,
		Content: content,
		Date:    date,
		Source:  reviewSource,
	}
}

// pickActor picks a random cast member's name, or a generic placeholder when
// the cast is empty.
func (s *Synthesizer) pickActor(cast []core.CastMember) string {
	if len(cast) == 0 {
		return "the lead actor"
	}
	return cast[s.rng.Intn(len(cast))].RealName
}

// interpolate fills the %{genre}, %{actor} and %{director} placeholders.
func interpolate(content string, md core.ResolvedMetadata, actor string) string {
	replacer := strings.NewReplacer(
		"%{genre}", md.Genre,
		"%{actor}", actor,
		"%{director}", md.Director,
	)
	return replacer.Replace(content)
}

// closingSentence returns the sentiment-consistent closer, or "" for neutral
// templates which read fine without one.
func closingSentence(sentiment, title string) string {
	switch sentiment {
	case SentimentPositive:
		return fmt.Sprintf("'%s' is not one to miss.", title)
	case SentimentNegative:
		return fmt.Sprintf("'%s' is one to miss.", title)
	}
	return ""
}

// Summarize aggregates a review set into counts, a mean rating and a dominant
// tone. Tone comes from the rating bands rather than the hidden template
// sentiment so the summary matches what a reader of the scores would conclude.
func Summarize(reviews []core.Review) core.ReviewSummary {
	summary := core.ReviewSummary{Count: len(reviews)}
	if len(reviews) == 0 {
		summary.DominantTone = SentimentNeutral
		return summary
	}

	var total float64
	for _, review := range reviews {
		total += review.Rating
		switch {
		case review.Rating >= 4.0:
			summary.Positive++
		case review.Rating <= 2.5:
			summary.Negative++
		default:
			summary.Neutral++
		}
	}

	summary.AverageRating = math.Round(total/float64(len(reviews))*10) / 10
	summary.DominantTone = dominantTone(summary)
	return summary
}

// dominantTone picks the largest band; ties prefer the more positive reading.
func dominantTone(summary core.ReviewSummary) string {
	switch {
	case summary.Positive >= summary.Neutral && summary.Positive >= summary.Negative:
		return SentimentPositive
	case summary.Neutral >= summary.Negative:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}
