// Package pipeline runs one render pass: fetch, score, tabulate. Every pass
// owns its own data; nothing is shared between invocations.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/svelten/finsent/internal/collect"
	"github.com/svelten/finsent/internal/config"
	"github.com/svelten/finsent/internal/database"
	"github.com/svelten/finsent/internal/report"
	"github.com/svelten/finsent/internal/sentiment"
)

// RenderPass holds everything one dashboard render needs: the canonical
// record sequence plus its derived views.
type RenderPass struct {
	Records   []report.ArticleRecord  // fetch order (newest first)
	Counts    map[sentiment.Label]int // distribution view
	Bars      []report.ArticleRecord  // compound descending
	Timeline  []report.ArticleRecord  // published ascending
	Query     string
	FetchedAt time.Time
}

// Pipeline builds render passes. The watchlist DB is optional; with none (or
// an empty watchlist) the configured query is used as-is.
type Pipeline struct {
	cfg    *config.Config
	db     *database.DB
	news   *collect.Client
	feeds  *collect.FeedParser
	scorer *sentiment.Scorer
}

// New creates a Pipeline. db may be nil.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		db:     db,
		news:   collect.NewClient(cfg.NewsAPI),
		scorer: sentiment.NewScorer(),
	}
	if len(cfg.Feeds) > 0 {
		p.feeds = collect.NewFeedParser(cfg.Feeds)
	}
	return p
}

// Scorer returns the pipeline's shared sentiment scorer.
func (p *Pipeline) Scorer() *sentiment.Scorer {
	return p.scorer
}

// News returns the underlying search client (the endpoint is overridable
// for tests).
func (p *Pipeline) News() *collect.Client {
	return p.news
}

// BuildQuery composes the news query from config plus active watchlist topics.
func (p *Pipeline) BuildQuery() string {
	query := p.cfg.NewsAPI.Query
	if query == "" {
		query = config.DefaultQuery
	}
	if p.db == nil {
		return query
	}

	topics, err := p.db.GetActiveTopics()
	if err != nil {
		log.Printf("Error reading watchlist, using base query: %v", err)
		return query
	}

	parts := []string{query}
	for _, t := range topics {
		parts = append(parts, t.Topic)
	}
	return strings.Join(parts, " OR ")
}

// Run executes one render pass. Batch errors (missing credential, fetch
// failure, timestamp parse failure) abort the pass; no partial result is
// returned.
func (p *Pipeline) Run(ctx context.Context, apiKey string) (*RenderPass, error) {
	query := p.BuildQuery()

	raw, err := p.news.Search(ctx, apiKey, query)
	if err != nil {
		return nil, err
	}

	if p.feeds != nil {
		raw = append(raw, p.feeds.ParseAll()...)
	}

	records, err := report.BuildRecords(raw, p.scorer)
	if err != nil {
		return nil, err
	}

	return &RenderPass{
		Records:   records,
		Counts:    report.Distribution(records),
		Bars:      report.ByScore(records),
		Timeline:  report.Timeline(records),
		Query:     query,
		FetchedAt: time.Now(),
	}, nil
}
