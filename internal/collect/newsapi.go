package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/svelten/finsent/internal/config"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// ErrMissingCredential is returned when no API key was supplied. No request
// is issued in that case.
var ErrMissingCredential = errors.New("no NewsAPI key supplied")

// FetchError is a non-200 response from the news search service.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("news search failed: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RawArticle is one article as returned by the news search. Absent fields
// decode to empty strings; nothing past this boundary deals with missing
// values.
type RawArticle struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt string // ISO-8601, as sent by the service
}

// Client searches NewsAPI for recent articles.
type Client struct {
	// BaseURL of the search endpoint. Overridable for tests.
	BaseURL string

	httpClient *http.Client
	language   string
	pageSize   int
}

// NewClient creates a NewsAPI search client from config.
func NewClient(cfg config.NewsAPIConfig) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 15
	}
	if pageSize > 100 {
		pageSize = 100
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	return &Client{
		BaseURL:    newsAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		language:   language,
		pageSize:   pageSize,
	}
}

// Search issues one search request, newest first. An empty apiKey fails with
// ErrMissingCredential before any network call; a non-200 response fails with
// *FetchError. There is no retry and no pagination.
func (c *Client) Search(ctx context.Context, apiKey, query string) ([]RawArticle, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	params := url.Values{
		"q":        {query},
		"language": {c.language},
		"sortBy":   {"publishedAt"},
		"pageSize": {fmt.Sprintf("%d", c.pageSize)},
		"apiKey":   {apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building news search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	var result struct {
		Status   string `json:"status"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding news search response: %w", err)
	}

	articles := make([]RawArticle, 0, len(result.Articles))
	for _, a := range result.Articles {
		articles = append(articles, RawArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	log.Printf("Fetched %d articles for query: %s", len(articles), query)
	return articles, nil
}
