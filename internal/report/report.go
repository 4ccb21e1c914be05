// Package report turns raw articles into display-ready sentiment records and
// the derived views the dashboard renders.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/svelten/finsent/internal/collect"
	"github.com/svelten/finsent/internal/sentiment"
)

// FallbackTitle is shown for articles the service returned without a title.
// The sentiment score is still computed from the original (empty) title.
const FallbackTitle = "View Article"

// ParseError is a malformed publishedAt timestamp. It fails the whole render
// pass; no fallback value is defined.
type ParseError struct {
	URL   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing publishedAt %q for %s: %v", e.Value, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ArticleRecord is one article with its sentiment result, ready for display
// and export.
type ArticleRecord struct {
	Title       string
	Description string
	URL         string
	Sentiment   sentiment.Label
	Compound    float64
	Source      string
	PublishedAt time.Time
}

// BuildRecord maps one raw article and its score text to a record. The score
// text is title + " " + description as returned by the service, before the
// title fallback is applied.
func BuildRecord(raw collect.RawArticle, scorer *sentiment.Scorer) (ArticleRecord, error) {
	published, err := time.Parse(time.RFC3339, raw.PublishedAt)
	if err != nil {
		return ArticleRecord{}, &ParseError{URL: raw.URL, Value: raw.PublishedAt, Err: err}
	}

	result := scorer.Score(raw.Title + " " + raw.Description)

	title := raw.Title
	if title == "" {
		title = FallbackTitle
	}

	return ArticleRecord{
		Title:       title,
		Description: raw.Description,
		URL:         raw.URL,
		Sentiment:   result.Label,
		Compound:    result.Compound,
		Source:      raw.Source,
		PublishedAt: published,
	}, nil
}

// BuildRecords maps every raw article 1:1, in the order received.
func BuildRecords(raw []collect.RawArticle, scorer *sentiment.Scorer) ([]ArticleRecord, error) {
	records := make([]ArticleRecord, 0, len(raw))
	for _, a := range raw {
		r, err := BuildRecord(a, scorer)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Distribution counts records per sentiment label.
func Distribution(records []ArticleRecord) map[sentiment.Label]int {
	counts := make(map[sentiment.Label]int)
	for _, r := range records {
		counts[r.Sentiment]++
	}
	return counts
}

// ByScore returns a copy sorted by compound score descending, for the
// per-article bar view. The input order is untouched.
func ByScore(records []ArticleRecord) []ArticleRecord {
	sorted := make([]ArticleRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Compound > sorted[j].Compound
	})
	return sorted
}

// Timeline returns a copy sorted by published timestamp ascending, for the
// time-series view. The input order is untouched.
func Timeline(records []ArticleRecord) []ArticleRecord {
	sorted := make([]ArticleRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
	})
	return sorted
}
