// Package pipeline orchestrates the article flow: fetch or load from cache,
// extract, normalize, score, assemble. Each article runs the whole chain
// inside one worker; failures never cross the article boundary.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"newsmood/internal/config"
	"newsmood/internal/extract"
	"newsmood/internal/fetch"
	"newsmood/internal/ledger"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/internal/normalize"
	"newsmood/internal/sentiment"
)

// Pipeline wires the processing stages together.
type Pipeline struct {
	cfg        *config.Config
	log        *logger.Logger
	cache      *fetch.Cache
	fetcher    fetch.PageFetcher
	extractor  *extract.Extractor
	normalizer *normalize.Normalizer
	suite      *sentiment.Suite
	ledger     *ledger.Ledger
}

// New creates a pipeline from the configuration, with network access.
func New(cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	return build(cfg, log, fetch.NewFetcher(cfg, log))
}

// NewOffline creates a pipeline that never touches the network. Articles
// without a cache entry fail their fetch stage.
func NewOffline(cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	return build(cfg, log, offlineFetcher{})
}

func build(cfg *config.Config, log *logger.Logger, fetcher fetch.PageFetcher) (*Pipeline, error) {
	cache, err := fetch.NewCache(cfg.Pipeline.Cache.Dir, log)
	if err != nil {
		return nil, err
	}

	stopwords := normalize.DefaultStopwords()
	if cfg.Pipeline.Normalize.StopwordsFile != "" {
		stopwords, err = normalize.LoadStopwords(cfg.Pipeline.Normalize.StopwordsFile)
		if err != nil {
			return nil, err
		}
	}

	p := &Pipeline{
		cfg:        cfg,
		log:        log,
		cache:      cache,
		fetcher:    fetcher,
		extractor:  extract.NewExtractor(cfg, log),
		normalizer: normalize.NewNormalizer(stopwords),
		suite:      sentiment.NewSuite(),
	}

	if cfg.Pipeline.Ledger.Path != "" {
		led, err := ledger.Open(cfg.Pipeline.Ledger.Path, log)
		if err != nil {
			return nil, err
		}

		p.ledger = led
	}

	return p, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.ledger != nil {
		return p.ledger.Close()
	}

	return nil
}

// Cache exposes the underlying page cache.
func (p *Pipeline) Cache() *fetch.Cache {
	return p.cache
}

// Run processes every reference through the full chain and assembles the
// results in input order. A bounded worker pool fans the articles out; the
// fetch concurrency setting caps the workers.
func (p *Pipeline) Run(ctx context.Context, refs []models.ArticleRef) (*Outcome, error) {
	runID := uuid.NewString()
	start := time.Now()

	p.log.Info("🚀 Pipeline run starting", "run_id", runID, "articles", len(refs))

	if p.ledger != nil {
		if err := p.ledger.BeginRun(runID, start, len(refs)); err != nil {
			p.log.Warn("Failed to record run start", "error", err)
		}
	}

	slots := make([]slot, len(refs))
	sem := make(chan struct{}, p.cfg.Pipeline.Fetch.Concurrency)

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
	)

	for i, ref := range refs {
		wg.Add(1)

		go func(i int, ref models.ArticleRef) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			record, skip, source := p.process(ctx, ref)
			slots[i] = slot{record: record, skip: skip, source: source}

			if p.cfg.Pipeline.Logging.ShowProgress {
				p.log.Info("⏳ Progress", "done", processed.Add(1), "total", len(refs))
			}
		}(i, ref)
	}

	wg.Wait()

	outcome := assemble(runID, slots)
	outcome.Duration = time.Since(start)

	p.recordOutcome(outcome, refs)

	p.log.Info("✅ Pipeline run complete",
		"run_id", runID,
		"scored", len(outcome.Records),
		"skipped", len(outcome.Skips),
		"from_cache", outcome.FromCache,
		"from_network", outcome.FromNetwork,
		"duration", outcome.Duration,
	)

	return outcome, nil
}

// process runs one article through the state machine. It returns either a
// scored record or a skip, never both, plus where the page body came from.
func (p *Pipeline) process(ctx context.Context, ref models.ArticleRef) (*models.SentimentRecord, *models.Skip, models.DocumentSource) {
	log := p.log.WithArticle(ref.ID)

	if ctx.Err() != nil {
		return nil, &models.Skip{Ref: ref, State: models.StateFetchFailed, Reason: ctx.Err().Error()}, ""
	}

	log.Debug("State transition", "state", models.StateFetching)

	doc, err := p.cache.GetOrFetch(ctx, ref, p.fetcher)
	if err != nil {
		log.Warn("⚠️ Fetch failed", "url", ref.URL, "error", err)

		return nil, &models.Skip{Ref: ref, State: models.StateFetchFailed, Reason: err.Error()}, ""
	}

	log.Debug("State transition", "state", models.StateFetched, "source", doc.Source)
	log.Debug("State transition", "state", models.StateExtracting)

	article, err := p.extractor.Extract(doc)
	if err != nil {
		log.Warn("⚠️ Extraction failed", "url", ref.URL, "error", err)

		return nil, &models.Skip{Ref: ref, State: models.StateNoContent, Reason: err.Error()}, doc.Source
	}

	if !article.HasBody {
		log.Info("Article has no content container", "url", ref.URL)

		return nil, &models.Skip{Ref: ref, State: models.StateNoContent, Reason: "content container not found"}, doc.Source
	}

	log.Debug("State transition", "state", models.StateExtracted)
	log.Debug("State transition", "state", models.StateNormalizing)

	normalized := p.normalizer.Normalize(article)

	log.Debug("State transition", "state", models.StateNormalized)
	log.Debug("State transition", "state", models.StateScoring)

	record, err := p.suite.Score(normalized)
	if err != nil {
		log.Warn("⚠️ Scoring failed", "url", ref.URL, "error", err)

		return nil, &models.Skip{Ref: ref, State: models.StateScoring, Reason: err.Error()}, doc.Source
	}

	log.Debug("State transition", "state", models.StateScored)

	return &record, nil, doc.Source
}

// recordOutcome writes each article's final state to the ledger.
func (p *Pipeline) recordOutcome(outcome *Outcome, refs []models.ArticleRef) {
	if p.ledger == nil {
		return
	}

	for _, record := range outcome.Records {
		if err := p.ledger.RecordArticle(outcome.RunID, record.Ref, models.StateAssembled, ""); err != nil {
			p.log.Warn("Failed to record article", "article_id", record.Ref.ID, "error", err)
		}
	}

	for _, skip := range outcome.Skips {
		if err := p.ledger.RecordArticle(outcome.RunID, skip.Ref, skip.State, skip.Reason); err != nil {
			p.log.Warn("Failed to record article", "article_id", skip.Ref.ID, "error", err)
		}
	}

	if err := p.ledger.FinishRun(outcome.RunID, time.Now(), len(outcome.Records), len(outcome.Skips)); err != nil {
		p.log.Warn("Failed to record run completion", "error", err)
	}
}

// offlineFetcher refuses the network, so a cache miss fails the fetch stage.
type offlineFetcher struct{}

func (offlineFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	return nil, fmt.Errorf("%w: offline mode, %s not cached", fetch.ErrCacheMiss, rawURL)
}
