// Package main provides the pipeline command that runs the full article flow:
// read references, fetch or load from cache, extract, normalize, score, and
// write the sentiment CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"newsmood/internal/config"
	"newsmood/internal/fetch"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/internal/pipeline"
	"newsmood/internal/report"
	"newsmood/internal/source"
)

const defaultConfigPath = "configs/pipeline.yaml"

func main() {
	// 1. Define Command-Line Flags
	// ---------------------------
	configFile := flag.String("config", "", "Path to YAML configuration file")
	inputCSV := flag.String("input", "", "Input CSV path (overrides config)")
	feedURL := flag.String("feed", "", "RSS/Atom feed URL (overrides config)")
	outputPath := flag.String("output", "", "Output CSV path (overrides config)")
	cacheDir := flag.String("cache", "", "Cache directory (overrides config)")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	// 2. Load Configuration
	// ---------------------
	cfg := loadConfig(*configFile, *inputCSV, *feedURL, *outputPath, *cacheDir)

	// Initialize Logger
	log := logger.NewLogger(cfg.Pipeline.Logging.Level)

	log.Info("🚀 Starting newsmood pipeline")
	log.Info(fmt.Sprintf("📍 Input: %s", cfg.Pipeline.Input.GetSource()))
	log.Info(fmt.Sprintf("🎯 Output: %s", cfg.Pipeline.Output.Path))

	startTime := time.Now()
	ctx := context.Background()

	// 3. Build the Pipeline
	// ---------------------
	p, err := pipeline.New(cfg, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to build pipeline: %v", err))
		os.Exit(1)
	}
	defer p.Close()

	// 4. Read Input References
	// ------------------------
	log.Info("Phase 1: Reading input references...")

	refs, err := readRefs(ctx, cfg, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to read input: %v", err))
		os.Exit(1)
	}

	if len(refs) == 0 {
		log.Warn("⚠️  Input contains no usable article references")
	}

	log.Info(fmt.Sprintf("✅ Loaded %d article references", len(refs)))

	// 5. Process
	// ----------
	log.Info("Phase 2: Processing (fetch, extract, normalize, score)...")

	outcome, err := p.Run(ctx, refs)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Pipeline run failed: %v", err))
		os.Exit(1)
	}

	// 6. Verify Scores
	// ----------------
	if cfg.Features.StrictValidation {
		log.Info("🔍 Verifying score invariants...")

		if verifyErr := report.NewVerifier().Verify(outcome.Records); verifyErr != nil {
			if !cfg.Advanced.ContinueOnValidationErrors {
				log.Error(fmt.Sprintf("❌ Verification failed: %v", verifyErr))
				os.Exit(1)
			}

			log.Warn(fmt.Sprintf("⚠️  Verification failed: %v (writing output anyway)", verifyErr))
		} else {
			log.Info("✅ All scores within range")
		}
	}

	// 7. Write Output
	// ---------------
	log.Info("Phase 3: Writing output...")

	if err := report.WriteCSV(cfg.Pipeline.Output.Path, outcome.Records); err != nil {
		log.Error(fmt.Sprintf("❌ Failed to write output: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Saved %d rows to: %s", len(outcome.Records), cfg.Pipeline.Output.Path))

	// 8. Final Report
	// ---------------
	if cfg.Features.EnablePreviewTable && cfg.Pipeline.Output.PreviewRows > 0 {
		preview := report.RenderPreview(outcome.Records, cfg.Pipeline.Output.PreviewRows)
		if preview != "" {
			fmt.Println()
			fmt.Println(preview)
		}
	}

	log.Info("✨ Pipeline Complete!")
	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("Run ID: %s\n", outcome.RunID)
	fmt.Printf("Articles In: %d\n", len(refs))
	fmt.Printf("Rows Written: %d\n", len(outcome.Records))
	fmt.Printf("Fetch Failed: %d\n", outcome.Skipped(models.StateFetchFailed))
	fmt.Printf("No Content: %d\n", outcome.Skipped(models.StateNoContent))
	fmt.Printf("From Cache: %d (network: %d)\n", outcome.FromCache, outcome.FromNetwork)
	fmt.Printf("Total Duration: %v\n", time.Since(startTime))

	if len(outcome.Skips) > 0 {
		fmt.Printf("⚠️  Skipped articles: %d\n", len(outcome.Skips))

		for _, s := range outcome.Skips {
			fmt.Printf("  - %s [%s]: %s\n", s.Ref.ID, s.State, s.Reason)
		}
	}

	fmt.Println("------------------------------------------------")
}

// loadConfig resolves the configuration from the flag cascade: an explicit
// -config file, the default config location, or pure CLI flags. Flag
// overrides are applied on top of whatever was loaded.
func loadConfig(configFile, inputCSV, feedURL, outputPath, cacheDir string) *config.Config {
	if inputCSV != "" && feedURL != "" {
		fmt.Println("❌ -input and -feed are mutually exclusive")
		os.Exit(1)
	}

	var cfg *config.Config

	var err error

	switch {
	case configFile != "":
		fmt.Printf("⚙️  Loading configuration from: %s\n", configFile)

		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			fmt.Printf("❌ Failed to load config: %v\n", err)
			os.Exit(1)
		}

	case fileExists(defaultConfigPath):
		fmt.Printf("⚙️  Loading default configuration: %s\n", defaultConfigPath)

		cfg, err = config.LoadConfig(defaultConfigPath)
		if err != nil {
			fmt.Printf("❌ Failed to load default config: %v\n", err)
			os.Exit(1)
		}

	case inputCSV != "" || feedURL != "":
		fmt.Println("⚙️  Using command-line arguments")

		cfg = config.DefaultConfig()
		cfg.ApplyEnvOverrides()

	default:
		fmt.Println("❌ Please provide -config, -input or -feed, or place configs/pipeline.yaml in the working directory")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Flags win over file and environment
	if inputCSV != "" {
		cfg.Pipeline.Input.CSV = inputCSV
		cfg.Pipeline.Input.Feed = ""
	}

	if feedURL != "" {
		cfg.Pipeline.Input.Feed = feedURL
		cfg.Pipeline.Input.CSV = ""
	}

	if outputPath != "" {
		cfg.Pipeline.Output.Path = outputPath
	}

	if cacheDir != "" {
		cfg.Pipeline.Cache.Dir = cacheDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Configuration loaded: %s\n\n", cfg)

	return cfg
}

// readRefs reads the article references from the configured source.
func readRefs(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]models.ArticleRef, error) {
	if cfg.Pipeline.Input.IsFeed() {
		reader := source.NewFeedReader(fetch.NewFetcher(cfg, log), log)

		return reader.Read(ctx, cfg.Pipeline.Input.Feed)
	}

	return source.NewCSVReader(cfg, log).Read(cfg.Pipeline.Input.CSV)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func printUsage() {
	fmt.Println("Usage: ./bin/pipeline [OPTIONS]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  1. Config-based:   ./bin/pipeline -config configs/pipeline.yaml")
	fmt.Println("  2. Default config: ./bin/pipeline (reads configs/pipeline.yaml if exists)")
	fmt.Println("  3. CLI arguments:  ./bin/pipeline -input <CSV> -output <PATH>")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/pipeline -config configs/pipeline.yaml")
	fmt.Println("  ./bin/pipeline -input articles.csv -output sentiment.csv")
	fmt.Println("  ./bin/pipeline -feed https://news.example.com/rss -output sentiment.csv")
}
