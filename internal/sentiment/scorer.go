// Package sentiment scores cleaned article text. Two scorers run per
// article: a lexicon scorer producing positive/negative/neutral proportions
// and an evaluative scorer producing polarity and subjectivity.
package sentiment

import (
	"errors"
	"fmt"

	"newsmood/internal/models"
)

// ErrScoring wraps any failure inside a scorer so callers can classify it.
var ErrScoring = errors.New("scoring failed")

// Result carries the scores one scorer produced for one text. A scorer
// fills the fields its method defines and leaves the rest zero.
type Result struct {
	Positive     float64
	Negative     float64
	Neutral      float64
	Compound     float64
	Polarity     float64
	Subjectivity float64
}

// Scorer computes sentiment over cleaned text. Implementations must be
// deterministic and safe for concurrent use; empty input yields an all-zero
// result, not an error.
type Scorer interface {
	Name() string
	Score(cleaned string) (Result, error)
}

// Suite runs both scorers over one article and merges their results into a
// record.
type Suite struct {
	lexicon    Scorer
	evaluative Scorer
}

// NewSuite creates the default scorer pair.
func NewSuite() *Suite {
	return &Suite{
		lexicon:    NewVaderScorer(),
		evaluative: NewPatternScorer(),
	}
}

// Score computes all four output scores for a normalized article.
func (s *Suite) Score(article models.NormalizedArticle) (models.SentimentRecord, error) {
	record := models.SentimentRecord{
		Ref:         article.Ref,
		Title:       article.Title,
		CleanedText: article.CleanedText,
	}

	lex, err := s.lexicon.Score(article.CleanedText)
	if err != nil {
		return record, fmt.Errorf("%w: %s: %v", ErrScoring, s.lexicon.Name(), err)
	}

	eval, err := s.evaluative.Score(article.CleanedText)
	if err != nil {
		return record, fmt.Errorf("%w: %s: %v", ErrScoring, s.evaluative.Name(), err)
	}

	record.Positive = lex.Positive
	record.Negative = lex.Negative
	record.Polarity = eval.Polarity
	record.Subjectivity = eval.Subjectivity

	return record, nil
}
