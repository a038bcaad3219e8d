// Package main provides the report command that renders an existing
// sentiment CSV as an aligned preview table, with optional run history from
// the ledger.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"newsmood/internal/config"
	"newsmood/internal/ledger"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/internal/report"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	csvPath := flag.String("csv", "", "Sentiment CSV to render (overrides config)")
	rows := flag.Int("rows", 0, "Preview row limit (0 = config value)")
	showRuns := flag.Int("runs", 0, "Show the last N ledger runs")
	flag.Parse()

	// Config is optional here; flags alone are enough to render a file.
	var cfg *config.Config

	configPath := *configFile
	if configPath == "" {
		if _, statErr := os.Stat("configs/pipeline.yaml"); statErr == nil {
			configPath = "configs/pipeline.yaml"
		}
	}

	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Printf("⚠️  Failed to load config: %v (proceeding with defaults)\n", err)
		} else {
			cfg = loaded
		}
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	path := *csvPath
	if path == "" {
		path = cfg.Pipeline.Output.Path
	}

	limit := *rows
	if limit <= 0 {
		limit = cfg.Pipeline.Output.PreviewRows
	}

	fmt.Printf("📂 Reading: %s\n", path)

	records, err := report.ReadCSV(path)
	if err != nil {
		log.Fatalf("❌ Failed to read CSV: %v\n", err)
	}

	fmt.Printf("📊 %d scored articles\n\n", len(records))

	if preview := report.RenderPreview(records, limit); preview != "" {
		fmt.Println(preview)
	}

	if *showRuns > 0 {
		printRunHistory(cfg, *showRuns)
	}
}

// printRunHistory renders the most recent ledger runs and the skipped
// articles of the latest one.
func printRunHistory(cfg *config.Config, limit int) {
	if cfg.Pipeline.Ledger.Path == "" {
		fmt.Println("\n⚠️  No ledger configured (set ledger.path to record run history)")

		return
	}

	lg, err := ledger.Open(cfg.Pipeline.Ledger.Path, logger.NewLogger(cfg.Pipeline.Logging.Level))
	if err != nil {
		log.Fatalf("❌ Failed to open ledger: %v\n", err)
	}
	defer lg.Close()

	runs, err := lg.Runs(limit)
	if err != nil {
		log.Fatalf("❌ Failed to read runs: %v\n", err)
	}

	if len(runs) == 0 {
		fmt.Println("\nNo recorded runs yet.")

		return
	}

	fmt.Printf("\n📈 Last %d runs:\n", len(runs))

	for _, run := range runs {
		status := "finished"
		if run.FinishedAt.IsZero() {
			status = "unfinished"
		}

		fmt.Printf("  %s  %s  articles=%d scored=%d skipped=%d (%s)\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.ID,
			run.ArticleCount,
			run.Scored,
			run.Skipped,
			status,
		)
	}

	// Skip details for the newest run
	latest := runs[0]

	articles, err := lg.Articles(latest.ID)
	if err != nil {
		log.Fatalf("❌ Failed to read run articles: %v\n", err)
	}

	skipped := 0

	for _, article := range articles {
		if article.State.IsSkip() || article.State == models.StateScoring {
			if skipped == 0 {
				fmt.Printf("\n⚠️  Skips in latest run %s:\n", latest.ID)
			}

			skipped++

			fmt.Printf("  - %s [%s]: %s\n", article.ArticleID, article.State, article.Detail)
		}
	}

	if skipped == 0 {
		fmt.Printf("\n✅ No skips in latest run %s\n", latest.ID)
	}
}
