// Package extract downloads an arbitrary article URL, pulls out its title and
// body text, and scores the result.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/svelten/finsent/internal/sentiment"
)

// AnalysisError is any failure while downloading, parsing, or extracting a
// user-supplied URL. Callers show it inline; it never aborts the batch
// dashboard.
type AnalysisError struct {
	URL string
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyzing %s: %v", e.URL, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analysis is the ad-hoc sentiment result for one extracted page.
type Analysis struct {
	Title  string
	Text   string
	Result sentiment.Result
}

// Extractor fetches and scores single article pages.
type Extractor struct {
	client *http.Client
	scorer *sentiment.Scorer
}

// NewExtractor creates an Extractor with the given download timeout.
func NewExtractor(scorer *sentiment.Scorer, timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		scorer: scorer,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Analyze downloads the page, extracts title and body, and scores
// title + " " + body. Every failure comes back as *AnalysisError.
func (e *Extractor) Analyze(ctx context.Context, articleURL string) (*Analysis, error) {
	title, text, err := e.extract(ctx, articleURL)
	if err != nil {
		return nil, &AnalysisError{URL: articleURL, Err: err}
	}

	return &Analysis{
		Title:  title,
		Text:   text,
		Result: e.scorer.Score(title + " " + text),
	}, nil
}

func (e *Extractor) extract(ctx context.Context, articleURL string) (title, text string, err error) {
	parsedURL, err := url.Parse(articleURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", "", fmt.Errorf("invalid URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", "finsent/1.0 (news sentiment dashboard)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", "", fmt.Errorf("extracting content: %w", err)
	}

	title = strings.TrimSpace(article.Title)
	text = strings.TrimSpace(article.TextContent)
	if title == "" && text == "" {
		return "", "", fmt.Errorf("no extractable content")
	}

	return title, text, nil
}
