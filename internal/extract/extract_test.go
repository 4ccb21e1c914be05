package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/svelten/finsent/internal/sentiment"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Bank posts record profit</title></head>
<body>
<article>
<h1>Bank posts record profit</h1>
<p>The bank reported excellent quarterly results, with profit surging past
analyst expectations. Investors cheered the strong performance and shares
rallied in early trading. The outlook for the coming year remains upbeat,
with management projecting continued growth across all divisions.</p>
<p>Analysts called the report one of the best in the sector this season and
raised their price targets accordingly.</p>
</article>
</body>
</html>`

func newTestExtractor() *Extractor {
	return NewExtractor(sentiment.NewScorer(), 5*time.Second)
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	a, err := newTestExtractor().Analyze(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(a.Title, "record profit") {
		t.Errorf("unexpected title: %q", a.Title)
	}
	if !strings.Contains(a.Text, "quarterly results") {
		t.Errorf("expected body text extracted, got %q", a.Text)
	}
	if a.Result.Label != sentiment.Positive {
		t.Errorf("expected positive sentiment, got %+v", a.Result)
	}
}

func TestAnalyzeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestExtractor().Analyze(context.Background(), srv.URL)
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected *AnalysisError, got %v", err)
	}
	if !strings.Contains(analysisErr.Error(), "404") {
		t.Errorf("expected cause in message, got %q", analysisErr.Error())
	}
}

func TestAnalyzeUnreachableURL(t *testing.T) {
	// Closed server: connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	badURL := srv.URL
	srv.Close()

	_, err := newTestExtractor().Analyze(context.Background(), badURL)
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected *AnalysisError, got %v", err)
	}
}

func TestAnalyzeInvalidURL(t *testing.T) {
	_, err := newTestExtractor().Analyze(context.Background(), "not a url")
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected *AnalysisError, got %v", err)
	}
}
