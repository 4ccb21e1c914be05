// Package server renders the sentiment dashboard. The credential travels in
// form fields per interaction and is never stored server-side; every request
// is its own render pass.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/svelten/finsent/internal/collect"
	"github.com/svelten/finsent/internal/config"
	"github.com/svelten/finsent/internal/database"
	"github.com/svelten/finsent/internal/extract"
	"github.com/svelten/finsent/internal/pipeline"
	"github.com/svelten/finsent/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server is the HTTP server for the dashboard.
type Server struct {
	pipe      *pipeline.Pipeline
	extractor *extract.Extractor
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server. db may be nil (no watchlist).
func New(cfg *config.Config, db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"fmtTime":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"fmtScore": func(c float64) string { return fmt.Sprintf("%.4f", c) },
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page clones the base so it gets its own {{define "content"}}.
	pageNames := []string{"index.html", "dashboard.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	pipe := pipeline.New(cfg, db)
	s := &Server{
		pipe:      pipe,
		extractor: extract.NewExtractor(pipe.Scorer(), time.Duration(cfg.Extract.TimeoutSeconds)*time.Second),
		pages:     pages,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/export.csv", s.handleExport)
	s.mux.HandleFunc("/analyze", s.handleAnalyze)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, "index.html", map[string]any{})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	apiKey := strings.TrimSpace(r.FormValue("api_key"))
	pass, errData := s.runPass(r, apiKey)
	if errData != nil {
		s.render(w, "index.html", errData)
		return
	}

	s.renderDashboard(w, pass, apiKey, nil)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	apiKey := strings.TrimSpace(r.FormValue("api_key"))
	pass, errData := s.runPass(r, apiKey)
	if errData != nil {
		s.render(w, "index.html", errData)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.CSVFilename))
	if err := report.WriteCSV(w, pass.Records); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	apiKey := strings.TrimSpace(r.FormValue("api_key"))
	pass, errData := s.runPass(r, apiKey)
	if errData != nil {
		s.render(w, "index.html", errData)
		return
	}

	// Analysis failures are local: the dashboard above stays rendered.
	extra := map[string]any{}
	articleURL := strings.TrimSpace(r.FormValue("url"))
	if articleURL == "" {
		extra["AnalysisError"] = "Paste a news article URL to analyze its sentiment."
	} else {
		analysis, err := s.extractor.Analyze(r.Context(), articleURL)
		if err != nil {
			extra["AnalysisError"] = fmt.Sprintf("Failed to analyze the article. Reason: %v", err)
		} else {
			extra["Analysis"] = analysis
		}
		extra["AnalyzeURL"] = articleURL
	}

	s.renderDashboard(w, pass, apiKey, extra)
}

// runPass runs one batch render pass. On failure it returns template data for
// the index page; no partial table or charts get rendered.
func (s *Server) runPass(r *http.Request, apiKey string) (*pipeline.RenderPass, map[string]any) {
	if apiKey == "" {
		return nil, map[string]any{"Warning": "Please enter your NewsAPI key."}
	}

	pass, err := s.pipe.Run(r.Context(), apiKey)
	if err != nil {
		var fetchErr *collect.FetchError
		var parseErr *report.ParseError
		switch {
		case errors.Is(err, collect.ErrMissingCredential):
			return nil, map[string]any{"Warning": "Please enter your NewsAPI key."}
		case errors.As(err, &fetchErr):
			log.Printf("News fetch failed: %v", err)
			return nil, map[string]any{"Error": "Failed to fetch articles. Check your API key or try again later."}
		case errors.As(err, &parseErr):
			log.Printf("Record build failed: %v", err)
			return nil, map[string]any{"Error": "The news service returned an article with an unreadable timestamp. Try again later."}
		default:
			log.Printf("Render pass failed: %v", err)
			return nil, map[string]any{"Error": "Failed to fetch articles. Try again later."}
		}
	}
	return pass, nil
}

func (s *Server) renderDashboard(w http.ResponseWriter, pass *pipeline.RenderPass, apiKey string, extra map[string]any) {
	chartJSON, err := marshalChartData(pass)
	if err != nil {
		log.Printf("Error building chart data: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Pass":       pass,
		"APIKey":     apiKey,
		"ChartJSON":  chartJSON,
		"AnalyzeURL": "",
	}
	for k, v := range extra {
		data[k] = v
	}
	s.render(w, "dashboard.html", data)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

type chartRow struct {
	Title     string  `json:"title"`
	Sentiment string  `json:"sentiment"`
	Compound  float64 `json:"compound"`
	Published string  `json:"published"`
}

type chartPayload struct {
	Counts   map[string]int `json:"counts"`
	Bars     []chartRow     `json:"bars"`
	Timeline []chartRow     `json:"timeline"`
}

func chartRows(records []report.ArticleRecord) []chartRow {
	rows := make([]chartRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, chartRow{
			Title:     r.Title,
			Sentiment: string(r.Sentiment),
			Compound:  r.Compound,
			Published: r.PublishedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// marshalChartData feeds the external chart renderer row-level fields so
// every chart tooltip can show title, sentiment, score, and date.
func marshalChartData(pass *pipeline.RenderPass) (template.JS, error) {
	counts := make(map[string]int, len(pass.Counts))
	for label, n := range pass.Counts {
		counts[string(label)] = n
	}

	payload := chartPayload{
		Counts:   counts,
		Bars:     chartRows(pass.Bars),
		Timeline: chartRows(pass.Timeline),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(cfg *config.Config, db *database.DB, port int) error {
	srv, err := New(cfg, db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
