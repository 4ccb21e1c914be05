package report

import (
	"errors"
	"testing"
	"time"

	"github.com/svelten/finsent/internal/collect"
	"github.com/svelten/finsent/internal/sentiment"
)

func rawArticle(title, description, publishedAt string) collect.RawArticle {
	return collect.RawArticle{
		Title:       title,
		Description: description,
		URL:         "https://example.com/article",
		Source:      "Example News",
		PublishedAt: publishedAt,
	}
}

func TestBuildRecordTitleFallback(t *testing.T) {
	scorer := sentiment.NewScorer()

	missing := rawArticle("", "Stocks crash in terrible selloff", "2026-02-06T12:00:00Z")
	rec, err := BuildRecord(missing, scorer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != FallbackTitle {
		t.Errorf("expected fallback title %q, got %q", FallbackTitle, rec.Title)
	}

	// The score comes from the original empty title + description, not from
	// the fallback text.
	want := scorer.Score(" " + missing.Description)
	if rec.Compound != want.Compound {
		t.Errorf("expected compound %v from original text, got %v", want.Compound, rec.Compound)
	}
	if rec.Sentiment != sentiment.Negative {
		t.Errorf("expected negative sentiment, got %v", rec.Sentiment)
	}
}

func TestBuildRecordParseError(t *testing.T) {
	scorer := sentiment.NewScorer()

	_, err := BuildRecord(rawArticle("Title", "Desc", "not-a-timestamp"), scorer)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Value != "not-a-timestamp" {
		t.Errorf("expected offending value in error, got %q", parseErr.Value)
	}

	_, err = BuildRecord(rawArticle("Title", "Desc", ""), scorer)
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError for absent timestamp, got %v", err)
	}
}

func TestBuildRecordsOneToOne(t *testing.T) {
	scorer := sentiment.NewScorer()
	raw := []collect.RawArticle{
		rawArticle("Markets rally on great earnings", "", "2026-02-06T12:00:00Z"),
		rawArticle("Shares slump after fraud warning", "", "2026-02-06T11:00:00Z"),
		rawArticle("Quarterly report released", "", "2026-02-06T10:00:00Z"),
	}

	records, err := BuildRecords(raw, scorer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != len(raw) {
		t.Fatalf("expected %d records, got %d", len(raw), len(records))
	}

	// Order is preserved as received
	for i := range raw {
		if records[i].Title != raw[i].Title {
			t.Errorf("record %d out of order: %q", i, records[i].Title)
		}
	}
}

func TestBuildRecordsHaltsOnParseError(t *testing.T) {
	scorer := sentiment.NewScorer()
	raw := []collect.RawArticle{
		rawArticle("Fine", "", "2026-02-06T12:00:00Z"),
		rawArticle("Broken", "", "yesterday"),
	}

	if _, err := BuildRecords(raw, scorer); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestDistribution(t *testing.T) {
	records := []ArticleRecord{
		{Sentiment: sentiment.Positive, Compound: 0.6},
		{Sentiment: sentiment.Negative, Compound: -0.2},
		{Sentiment: sentiment.Neutral, Compound: 0.0},
	}

	counts := Distribution(records)
	if counts[sentiment.Positive] != 1 || counts[sentiment.Negative] != 1 || counts[sentiment.Neutral] != 1 {
		t.Errorf("expected {positive:1, negative:1, neutral:1}, got %v", counts)
	}
}

func TestByScoreOrdering(t *testing.T) {
	records := []ArticleRecord{
		{Title: "a", Compound: -0.2},
		{Title: "b", Compound: 0.6},
		{Title: "c", Compound: 0.0},
	}

	sorted := ByScore(records)
	if sorted[0].Compound != 0.6 || sorted[1].Compound != 0.0 || sorted[2].Compound != -0.2 {
		t.Errorf("expected descending order, got %v", sorted)
	}

	// Input untouched
	if records[0].Title != "a" || records[2].Title != "c" {
		t.Error("ByScore mutated its input")
	}
}

func TestTimelinePreservesScores(t *testing.T) {
	base := time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)
	records := []ArticleRecord{
		{Title: "newest", Compound: 0.6, PublishedAt: base},
		{Title: "middle", Compound: -0.2, PublishedAt: base.Add(-time.Hour)},
		{Title: "oldest", Compound: 0.0, PublishedAt: base.Add(-2 * time.Hour)},
	}

	timeline := Timeline(records)
	if timeline[0].Title != "oldest" || timeline[2].Title != "newest" {
		t.Errorf("expected ascending publish order, got %v", timeline)
	}

	// Reordering changes positions, never values: the compound multiset
	// matches the canonical sequence.
	counts := func(rs []ArticleRecord) map[float64]int {
		m := make(map[float64]int)
		for _, r := range rs {
			m[r.Compound]++
		}
		return m
	}
	orig, sorted := counts(records), counts(timeline)
	for k, v := range orig {
		if sorted[k] != v {
			t.Errorf("compound %v count changed: %d vs %d", k, v, sorted[k])
		}
	}

	// Canonical order untouched
	if records[0].Title != "newest" {
		t.Error("Timeline mutated its input")
	}
}
