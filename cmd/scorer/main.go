// Package main provides the scorer command that re-processes a warmed cache
// into the sentiment CSV without touching the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"newsmood/internal/config"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/internal/pipeline"
	"newsmood/internal/report"
	"newsmood/internal/source"
)

func main() {
	configFile := flag.String("config", "configs/pipeline.yaml", "Path to YAML configuration file")
	inputCSV := flag.String("input", "", "Input CSV path (overrides config)")
	outputPath := flag.String("output", "", "Output CSV path (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	if *inputCSV != "" {
		cfg.Pipeline.Input.CSV = *inputCSV
		cfg.Pipeline.Input.Feed = ""
	}

	if *outputPath != "" {
		cfg.Pipeline.Output.Path = *outputPath
	}

	// Feeds need the network, so offline scoring only takes CSV input.
	if cfg.Pipeline.Input.IsFeed() {
		log.Fatalf("❌ Offline scoring requires a CSV input, not a feed (use -input)\n")
	}

	plog := logger.NewLogger(cfg.Pipeline.Logging.Level)

	fmt.Printf("📂 Cache: %s\n", cfg.Pipeline.Cache.Dir)
	fmt.Printf("📍 Input: %s\n", cfg.Pipeline.Input.CSV)

	p, err := pipeline.NewOffline(cfg, plog)
	if err != nil {
		log.Fatalf("❌ Failed to build pipeline: %v\n", err)
	}
	defer p.Close()

	refs, err := source.NewCSVReader(cfg, plog).Read(cfg.Pipeline.Input.CSV)
	if err != nil {
		log.Fatalf("❌ Failed to read input: %v\n", err)
	}

	fmt.Printf("🔍 Scoring %d articles from cache...\n", len(refs))

	outcome, err := p.Run(context.Background(), refs)
	if err != nil {
		log.Fatalf("❌ Scoring run failed: %v\n", err)
	}

	if cfg.Features.StrictValidation {
		if verifyErr := report.NewVerifier().Verify(outcome.Records); verifyErr != nil {
			if !cfg.Advanced.ContinueOnValidationErrors {
				log.Fatalf("❌ Verification failed: %v\n", verifyErr)
			}

			fmt.Printf("⚠️  Verification failed: %v (writing output anyway)\n", verifyErr)
		}
	}

	if err := report.WriteCSV(cfg.Pipeline.Output.Path, outcome.Records); err != nil {
		log.Fatalf("❌ Failed to write output: %v\n", err)
	}

	fmt.Printf("✅ Saved %d rows to: %s\n", len(outcome.Records), cfg.Pipeline.Output.Path)

	if len(outcome.Skips) > 0 {
		fmt.Printf("⚠️  Skipped %d articles:\n", len(outcome.Skips))

		for _, s := range outcome.Skips {
			fmt.Printf("  - %s [%s]: %s\n", s.Ref.ID, s.State, s.Reason)
		}
	}

	if missing := outcome.Skipped(models.StateFetchFailed); missing > 0 {
		fmt.Printf("❌ %d articles missing from cache, run the fetcher first\n", missing)
		os.Exit(1)
	}
}
