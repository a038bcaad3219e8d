package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"newsmood/internal/config"
	"newsmood/internal/fetch"
	"newsmood/internal/ledger"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/internal/pipeline"
	"newsmood/internal/report"
	"newsmood/internal/source"
)

// serveFixture returns a handler that serves one HTML fixture file.
func serveFixture(t *testing.T, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := os.ReadFile(filepath.Join("..", "fixtures", name))
		if err != nil {
			t.Errorf("Failed to read fixture %s: %v", name, err)
			http.Error(w, "fixture missing", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	}
}

// fixtureMux routes the fixture pages like a small news site.
func fixtureMux(t *testing.T) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/articles/recovery", serveFixture(t, "recovery.html"))
	mux.Handle("/articles/storm", serveFixture(t, "storm.html"))
	mux.Handle("/articles/landing", serveFixture(t, "landing.html"))

	return mux
}

// newFixtureServer serves the HTML fixtures and counts every request it
// receives.
func newFixtureServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64

	mux := fixtureMux(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		mux.ServeHTTP(w, r)
	}))

	t.Cleanup(server.Close)

	return server, &requests
}

// flowConfig builds a runnable configuration with throwaway directories.
func flowConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Pipeline.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Pipeline.Output.Path = filepath.Join(dir, "sentiment.csv")
	cfg.Pipeline.Ledger.Path = filepath.Join(dir, "runs.db")
	cfg.Pipeline.Fetch.RatePerSec = 0
	cfg.Pipeline.Fetch.Concurrency = 2
	cfg.Pipeline.Logging.Level = "error"
	cfg.Pipeline.Logging.ShowProgress = false

	return cfg
}

// writeInputCSV writes an input file whose URLs point at the fixture server.
func writeInputCSV(t *testing.T, cfg *config.Config, serverURL string) {
	t.Helper()

	content := fmt.Sprintf("URL_ID,URL\n"+
		"rec-1,%s/articles/recovery\n"+
		"sto-2,%s/articles/storm\n"+
		"miss-3,%s/articles/missing\n"+
		"land-4,%s/articles/landing\n",
		serverURL, serverURL, serverURL, serverURL)

	path := filepath.Join(t.TempDir(), "articles.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write input CSV: %v", err)
	}

	cfg.Pipeline.Input.CSV = path
}

func TestPipelineFlow_EndToEnd(t *testing.T) {
	server, _ := newFixtureServer(t)
	cfg := flowConfig(t)
	writeInputCSV(t, cfg, server.URL)

	log := logger.NewLogger("error")

	// 1. Input (Simulating 'pipeline' phase 1)
	refs, err := source.NewCSVReader(cfg, log).Read(cfg.Pipeline.Input.CSV)
	if err != nil {
		t.Fatalf("Failed to read input: %v", err)
	}

	if len(refs) != 4 {
		t.Fatalf("Expected 4 refs, got %d", len(refs))
	}

	// 2. Processing
	p, err := pipeline.New(cfg, log)
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}
	defer p.Close()

	outcome, err := p.Run(context.Background(), refs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 3. Verification of records
	if len(outcome.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(outcome.Records))
	}

	recovery := outcome.Records[0]
	storm := outcome.Records[1]

	if recovery.Ref.ID != "rec-1" || storm.Ref.ID != "sto-2" {
		t.Fatalf("Expected input order preserved, got %s then %s", recovery.Ref.ID, storm.Ref.ID)
	}

	if !strings.Contains(recovery.Title, "Remarkable Recovery") {
		t.Errorf("Unexpected recovery title: %q", recovery.Title)
	}

	if recovery.Positive <= recovery.Negative || recovery.Polarity <= 0 {
		t.Errorf("Expected positive recovery article, got %+v", recovery)
	}

	if storm.Negative <= storm.Positive || storm.Polarity >= 0 {
		t.Errorf("Expected negative storm article, got %+v", storm)
	}

	if err := report.NewVerifier().Verify(outcome.Records); err != nil {
		t.Errorf("Verification failed: %v", err)
	}

	// 4. Verification of skips
	if len(outcome.Skips) != 2 {
		t.Fatalf("Expected 2 skips, got %d: %+v", len(outcome.Skips), outcome.Skips)
	}

	if outcome.Skips[0].Ref.ID != "miss-3" || outcome.Skips[0].State != models.StateFetchFailed {
		t.Errorf("Unexpected first skip: %+v", outcome.Skips[0])
	}

	if outcome.Skips[1].Ref.ID != "land-4" || outcome.Skips[1].State != models.StateNoContent {
		t.Errorf("Unexpected second skip: %+v", outcome.Skips[1])
	}

	// 5. Output artifact round trip
	if err := report.WriteCSV(cfg.Pipeline.Output.Path, outcome.Records); err != nil {
		t.Fatalf("Failed to write output: %v", err)
	}

	loaded, err := report.ReadCSV(cfg.Pipeline.Output.Path)
	if err != nil {
		t.Fatalf("Failed to read output back: %v", err)
	}

	if len(loaded) != 2 || loaded[0].Title != recovery.Title {
		t.Errorf("Output round trip mismatch: %+v", loaded)
	}

	// 6. Ledger recorded the run
	lg, err := ledger.Open(cfg.Pipeline.Ledger.Path, log)
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer lg.Close()

	runs, err := lg.Runs(1)
	if err != nil {
		t.Fatalf("Failed to read runs: %v", err)
	}

	if len(runs) != 1 {
		t.Fatalf("Expected 1 recorded run, got %d", len(runs))
	}

	run := runs[0]
	if run.ID != outcome.RunID || run.ArticleCount != 4 || run.Scored != 2 || run.Skipped != 2 {
		t.Errorf("Unexpected run record: %+v", run)
	}

	articles, err := lg.Articles(run.ID)
	if err != nil {
		t.Fatalf("Failed to read run articles: %v", err)
	}

	states := make(map[string]models.ArticleState)
	for _, article := range articles {
		states[article.ArticleID] = article.State
	}

	expected := map[string]models.ArticleState{
		"rec-1":  models.StateAssembled,
		"sto-2":  models.StateAssembled,
		"miss-3": models.StateFetchFailed,
		"land-4": models.StateNoContent,
	}

	for id, state := range expected {
		if states[id] != state {
			t.Errorf("Expected %s in state %s, got %s", id, state, states[id])
		}
	}
}

func TestPipelineFlow_ResumeOffline(t *testing.T) {
	server, requests := newFixtureServer(t)
	cfg := flowConfig(t)
	writeInputCSV(t, cfg, server.URL)

	log := logger.NewLogger("error")

	refs, err := source.NewCSVReader(cfg, log).Read(cfg.Pipeline.Input.CSV)
	if err != nil {
		t.Fatalf("Failed to read input: %v", err)
	}

	// 1. Online run warms the cache
	online, err := pipeline.New(cfg, log)
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}
	defer online.Close()

	first, err := online.Run(context.Background(), refs)
	if err != nil {
		t.Fatalf("Online run failed: %v", err)
	}

	if err := report.WriteCSV(cfg.Pipeline.Output.Path, first.Records); err != nil {
		t.Fatalf("Failed to write first output: %v", err)
	}

	firstBytes, err := os.ReadFile(cfg.Pipeline.Output.Path)
	if err != nil {
		t.Fatalf("Failed to read first output: %v", err)
	}

	fetched := requests.Load()
	if fetched != 4 {
		t.Fatalf("Expected 4 requests during warm-up, got %d", fetched)
	}

	// 2. Offline run resumes from the cache alone
	offline, err := pipeline.NewOffline(cfg, log)
	if err != nil {
		t.Fatalf("Failed to build offline pipeline: %v", err)
	}
	defer offline.Close()

	second, err := offline.Run(context.Background(), refs)
	if err != nil {
		t.Fatalf("Offline run failed: %v", err)
	}

	if requests.Load() != fetched {
		t.Errorf("Offline run made %d network requests", requests.Load()-fetched)
	}

	if len(second.Records) != 2 {
		t.Fatalf("Expected 2 records offline, got %d", len(second.Records))
	}

	if second.FromCache != 3 {
		t.Errorf("Expected 3 cache hits offline, got %d", second.FromCache)
	}

	// The article that 404ed is the only one the cache cannot serve
	if got := second.Skipped(models.StateFetchFailed); got != 1 {
		t.Errorf("Expected 1 fetch_failed offline, got %d", got)
	}

	// 3. The regenerated artifact is byte-identical
	if err := report.WriteCSV(cfg.Pipeline.Output.Path, second.Records); err != nil {
		t.Fatalf("Failed to write second output: %v", err)
	}

	secondBytes, err := os.ReadFile(cfg.Pipeline.Output.Path)
	if err != nil {
		t.Fatalf("Failed to read second output: %v", err)
	}

	if string(firstBytes) != string(secondBytes) {
		t.Errorf("Expected byte-identical output across runs:\nfirst:\n%s\nsecond:\n%s", firstBytes, secondBytes)
	}
}

func TestPipelineFlow_CacheSurvivesCorruptEntry(t *testing.T) {
	server, requests := newFixtureServer(t)
	cfg := flowConfig(t)
	writeInputCSV(t, cfg, server.URL)

	log := logger.NewLogger("error")

	refs, err := source.NewCSVReader(cfg, log).Read(cfg.Pipeline.Input.CSV)
	if err != nil {
		t.Fatalf("Failed to read input: %v", err)
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}
	defer p.Close()

	if _, err := p.Run(context.Background(), refs); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Tamper with one cached page body
	key, err := fetch.CacheKey(refs[0].URL)
	if err != nil {
		t.Fatalf("CacheKey failed: %v", err)
	}

	entryPath := p.Cache().Path(key)
	if err := os.WriteFile(entryPath, []byte("<html>tampered</html>"), 0644); err != nil {
		t.Fatalf("Failed to tamper with cache entry: %v", err)
	}

	if err := p.Cache().VerifyEntry(key); err == nil {
		t.Fatal("Expected verification to fail for tampered entry")
	}

	before := requests.Load()

	// The tampered entry is refetched, the others still hit
	outcome, err := p.Run(context.Background(), refs)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if got := requests.Load() - before; got != 2 {
		t.Errorf("Expected 2 requests on rerun (tampered + 404), got %d", got)
	}

	if len(outcome.Records) != 2 {
		t.Fatalf("Expected 2 records after refetch, got %d", len(outcome.Records))
	}

	if err := p.Cache().VerifyEntry(key); err != nil {
		t.Errorf("Expected repaired entry to verify, got %v", err)
	}
}
