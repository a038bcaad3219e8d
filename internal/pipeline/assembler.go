package pipeline

import (
	"time"

	"newsmood/internal/models"
)

// slot holds one article's result in its input position.
type slot struct {
	record *models.SentimentRecord
	skip   *models.Skip
	source models.DocumentSource
}

// Outcome is the assembled result of one pipeline run. Records keep the
// input order with skipped articles removed; Skips keep the input order of
// the articles that produced no row.
type Outcome struct {
	RunID       string
	Records     []models.SentimentRecord
	Skips       []models.Skip
	Duration    time.Duration
	FromCache   int
	FromNetwork int
}

// Skipped reports how many articles ended in a given state.
func (o *Outcome) Skipped(state models.ArticleState) int {
	count := 0

	for _, skip := range o.Skips {
		if skip.State == state {
			count++
		}
	}

	return count
}

// assemble collects the per-article slots into an outcome, preserving input
// order on both sides.
func assemble(runID string, slots []slot) *Outcome {
	outcome := &Outcome{RunID: runID}

	for _, s := range slots {
		switch s.source {
		case models.SourceCache:
			outcome.FromCache++
		case models.SourceNetwork:
			outcome.FromNetwork++
		}

		if s.record != nil {
			outcome.Records = append(outcome.Records, *s.record)

			continue
		}

		if s.skip != nil {
			outcome.Skips = append(outcome.Skips, *s.skip)
		}
	}

	return outcome
}
