package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/svelten/finsent/internal/collect"
	"github.com/svelten/finsent/internal/config"
	"github.com/svelten/finsent/internal/database"
	"github.com/svelten/finsent/internal/extract"
	"github.com/svelten/finsent/internal/pipeline"
	"github.com/svelten/finsent/internal/report"
	"github.com/svelten/finsent/internal/sentiment"
	"github.com/svelten/finsent/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "finsent",
	Short:   "Financial news sentiment dashboard",
	Long:    "finsent fetches recent financial news, scores each article for sentiment, and serves an interactive dashboard.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Keys commonly live in a local .env file
		godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchlistCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("finsent", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/finsent/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, the news query, and the API key env var.")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- preview command ---

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run one render pass and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := runPass()
		if err != nil {
			return err
		}

		fmt.Printf("Query: %s\n", pass.Query)
		fmt.Printf("Articles: %d\n\n", len(pass.Records))

		for _, r := range pass.Records {
			fmt.Printf("  [%8s %+.4f] %s\n", r.Sentiment, r.Compound, r.Title)
			fmt.Printf("             %s | %s\n", r.Source, r.PublishedAt.Format("2006-01-02 15:04"))
		}

		fmt.Println("\nDistribution:")
		for _, label := range []sentiment.Label{sentiment.Positive, sentiment.Neutral, sentiment.Negative} {
			fmt.Printf("  %s: %d\n", label, pass.Counts[label])
		}
		return nil
	},
}

// --- export command ---

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Run one render pass and write the CSV export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := runPass()
		if err != nil {
			return err
		}

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := report.WriteCSV(out, pass.Records); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "Wrote %d records to %s\n", len(pass.Records), args[0])
		}
		return nil
	},
}

// --- analyze command ---

var analyzeFull bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Score the sentiment of a single article URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scorer := sentiment.NewScorer()
		extractor := extract.NewExtractor(scorer, time.Duration(cfg.Extract.TimeoutSeconds)*time.Second)

		analysis, err := extractor.Analyze(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Title:     %s\n", analysis.Title)
		fmt.Printf("Sentiment: %s\n", analysis.Result.Label)
		fmt.Printf("Compound:  %+.4f\n", analysis.Result.Compound)
		if analyzeFull {
			fmt.Printf("\n%s\n", analysis.Text)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "Print the full extracted article text")
}

// --- watchlist command ---

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage watchlist topics added to the news query",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all watchlist topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		topics, err := db.GetAllTopics()
		if err != nil {
			return err
		}

		if len(topics) == 0 {
			fmt.Println("No watchlist topics. Add one with: finsent watchlist add")
			return nil
		}

		fmt.Println("Watchlist:")
		fmt.Println()
		for _, t := range topics {
			icon := " "
			if t.IsActive {
				icon = "*"
			}
			fmt.Printf("  [%d] %s %s\n", t.ID, icon, t.Topic)
			if t.Notes != nil && *t.Notes != "" {
				fmt.Printf("        %s\n", *t.Notes)
			}
		}
		return nil
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add [topic] [notes]",
	Short: "Add a watchlist topic",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		notes := ""
		if len(args) > 1 {
			notes = args[1]
		}

		id, err := db.InsertTopic(args[0], notes)
		if err != nil {
			return err
		}
		if id == 0 {
			fmt.Printf("Topic already on the watchlist: %s\n", args[0])
			return nil
		}
		fmt.Printf("Added topic [%d]: %s\n", id, args[0])
		return nil
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a watchlist topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid topic ID: %s", args[0])
		}

		topic, err := db.GetTopic(id)
		if err != nil {
			return err
		}
		if topic == nil {
			return fmt.Errorf("topic %d not found", id)
		}

		if err := db.DeleteTopic(id); err != nil {
			return err
		}
		fmt.Printf("Removed topic [%d]: %s\n", id, topic.Topic)
		return nil
	},
}

var watchlistToggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Toggle a topic's active state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid topic ID: %s", args[0])
		}

		topic, err := db.GetTopic(id)
		if err != nil {
			return err
		}
		if topic == nil {
			return fmt.Errorf("topic %d not found", id)
		}

		if err := db.ToggleTopic(id); err != nil {
			return err
		}
		newState := "disabled"
		if !topic.IsActive {
			newState = "enabled"
		}
		fmt.Printf("Topic [%d] %s: %s\n", id, topic.Topic, newState)
		return nil
	},
}

func init() {
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
	watchlistCmd.AddCommand(watchlistToggleCmd)
}

// runPass runs one batch render pass with the key from the configured env var.
func runPass() (*pipeline.RenderPass, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	apiKey := os.Getenv(cfg.NewsAPI.APIKeyEnv)
	pipe := pipeline.New(cfg, db)

	pass, err := pipe.Run(context.Background(), apiKey)
	if errors.Is(err, collect.ErrMissingCredential) {
		return nil, fmt.Errorf("no API key found; set %s (or put it in .env)", cfg.NewsAPI.APIKeyEnv)
	}
	if err != nil {
		return nil, err
	}
	return pass, nil
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "finsent.db")
	return database.Open(dbPath)
}
