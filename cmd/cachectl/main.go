// Package main provides the cachectl command for inspecting the page cache:
// listing entries, verifying them against their metadata sidecars, and
// removing individual entries.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"newsmood/internal/config"
	"newsmood/internal/fetch"
	"newsmood/internal/logger"
	"newsmood/pkg/cachemeta"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	cacheDir := flag.String("cache", "", "Cache directory (overrides config)")
	mode := flag.String("mode", "list", "Operation: 'list', 'verify' or 'remove'")
	key := flag.String("key", "", "Cache key for -mode remove")
	flag.Parse()

	dir := resolveCacheDir(*configFile, *cacheDir)

	cache, err := fetch.NewCache(dir, logger.NewLogger("warn"))
	if err != nil {
		log.Fatalf("❌ Failed to open cache: %v\n", err)
	}

	fmt.Printf("📂 Cache: %s\n", dir)

	switch *mode {
	case "list":
		runList(cache)
	case "verify":
		runVerify(cache)
	case "remove":
		runRemove(cache, *key)
	default:
		fmt.Printf("❌ Unknown mode: %s\n", *mode)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

// resolveCacheDir picks the cache directory from the flag, the config file,
// or the default configuration, in that order.
func resolveCacheDir(configFile, cacheDir string) string {
	if cacheDir != "" {
		return cacheDir
	}

	configPath := configFile
	if configPath == "" {
		if _, statErr := os.Stat("configs/pipeline.yaml"); statErr == nil {
			configPath = "configs/pipeline.yaml"
		}
	}

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v\n", err)
		}

		return cfg.Pipeline.Cache.Dir
	}

	return config.DefaultConfig().Pipeline.Cache.Dir
}

func runList(cache *fetch.Cache) {
	entries, err := cache.Entries()
	if err != nil {
		log.Fatalf("❌ Failed to list cache: %v\n", err)
	}

	if len(entries) == 0 {
		fmt.Println("Cache is empty.")

		return
	}

	var total int64

	for _, entry := range entries {
		fetched := "unknown"
		if !entry.FetchedAt.IsZero() {
			fetched = entry.FetchedAt.Format("2006-01-02 15:04:05")
		}

		url := entry.URL
		if url == "" {
			url = "(no sidecar)"
		}

		fmt.Printf("  %-40s %8d bytes  %s  %s\n", entry.Key, entry.Size, fetched, url)

		total += entry.Size
	}

	fmt.Printf("\n📊 %d entries, %d bytes total\n", len(entries), total)
}

func runVerify(cache *fetch.Cache) {
	entries, err := cache.Entries()
	if err != nil {
		log.Fatalf("❌ Failed to list cache: %v\n", err)
	}

	ok := 0
	unsigned := 0
	bad := 0

	for _, entry := range entries {
		verifyErr := cache.VerifyEntry(entry.Key)

		switch {
		case verifyErr == nil:
			ok++
		case errors.Is(verifyErr, cachemeta.ErrNoMetadata):
			unsigned++

			fmt.Printf("⚠️  %s: no metadata sidecar\n", entry.Key)
		default:
			bad++

			fmt.Printf("❌ %s: %v\n", entry.Key, verifyErr)
		}
	}

	fmt.Printf("\n📊 Verified %d entries: %d ok, %d without sidecar, %d corrupt\n",
		len(entries), ok, unsigned, bad)

	if bad > 0 {
		os.Exit(1)
	}
}

func runRemove(cache *fetch.Cache, key string) {
	if key == "" {
		fmt.Println("❌ -key is required for -mode remove")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := cache.Remove(key); err != nil {
		log.Fatalf("❌ Failed to remove %s: %v\n", key, err)
	}

	fmt.Printf("✅ Removed: %s\n", key)
}
