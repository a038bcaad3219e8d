// Package main provides the fetcher command that warms the page cache
// without scoring anything. Useful before an offline scoring run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"newsmood/internal/config"
	"newsmood/internal/fetch"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/internal/source"
)

func main() {
	configFile := flag.String("config", "configs/pipeline.yaml", "Path to YAML configuration file")
	inputCSV := flag.String("input", "", "Input CSV path (overrides config)")
	feedURL := flag.String("feed", "", "RSS/Atom feed URL (overrides config)")
	flag.Parse()

	if *inputCSV != "" && *feedURL != "" {
		fmt.Println("❌ -input and -feed are mutually exclusive")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *inputCSV != "" {
		cfg.Pipeline.Input.CSV = *inputCSV
		cfg.Pipeline.Input.Feed = ""
	}

	if *feedURL != "" {
		cfg.Pipeline.Input.Feed = *feedURL
		cfg.Pipeline.Input.CSV = ""
	}

	log := logger.NewLogger(cfg.Pipeline.Logging.Level)

	log.Info("🚀 Starting cache warm-up")
	log.Info(fmt.Sprintf("📍 Input: %s", cfg.Pipeline.Input.GetSource()))
	log.Info(fmt.Sprintf("📂 Cache: %s", cfg.Pipeline.Cache.Dir))

	startTime := time.Now()
	ctx := context.Background()

	fetcher := fetch.NewFetcher(cfg, log)

	cache, err := fetch.NewCache(cfg.Pipeline.Cache.Dir, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to open cache: %v", err))
		os.Exit(1)
	}

	refs, err := readRefs(ctx, cfg, fetcher, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to read input: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Loaded %d article references", len(refs)))

	// Warm the cache with the same bounded pool the pipeline uses.
	sem := make(chan struct{}, cfg.Pipeline.Fetch.Concurrency)

	var (
		wg                 sync.WaitGroup
		hits, misses, fail atomic.Int64
	)

	for _, ref := range refs {
		wg.Add(1)

		go func(ref models.ArticleRef) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			doc, err := cache.GetOrFetch(ctx, ref, fetcher)
			if err != nil {
				fail.Add(1)
				log.Warn(fmt.Sprintf("❌ %s: %v", ref.ID, err))

				return
			}

			if doc.Source == models.SourceCache {
				hits.Add(1)
			} else {
				misses.Add(1)
			}
		}(ref)
	}

	wg.Wait()

	log.Info("✨ Warm-up complete!")
	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Cache Warm-up Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("Articles: %d\n", len(refs))
	fmt.Printf("Already Cached: %d\n", hits.Load())
	fmt.Printf("Fetched: %d\n", misses.Load())
	fmt.Printf("Failed: %d\n", fail.Load())
	fmt.Printf("Total Duration: %v\n", time.Since(startTime))
	fmt.Println("------------------------------------------------")

	if fail.Load() > 0 {
		os.Exit(1)
	}
}

// readRefs reads the article references from the configured source.
func readRefs(ctx context.Context, cfg *config.Config, fetcher *fetch.Fetcher, log *logger.Logger) ([]models.ArticleRef, error) {
	if cfg.Pipeline.Input.IsFeed() {
		return source.NewFeedReader(fetcher, log).Read(ctx, cfg.Pipeline.Input.Feed)
	}

	return source.NewCSVReader(cfg, log).Read(cfg.Pipeline.Input.CSV)
}
