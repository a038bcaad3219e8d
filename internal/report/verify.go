package report

import (
	"errors"
	"fmt"
	"math"

	"newsmood/internal/models"
)

// Verification errors.
var (
	ErrShareOutOfRange        = errors.New("lexicon share outside [0, 1]")
	ErrPolarityOutOfRange     = errors.New("polarity outside [-1, 1]")
	ErrSubjectivityOutOfRange = errors.New("subjectivity outside [0, 1]")
	ErrNonFiniteScore         = errors.New("score is not a finite number")
)

// Verifier checks assembled records against the score range contracts
// before they are written out.
type Verifier struct{}

// NewVerifier creates a new verifier instance.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks every record. An empty record set is valid; a run where all
// articles were skipped still produces a well-formed, header-only file.
func (v *Verifier) Verify(records []models.SentimentRecord) error {
	for i, record := range records {
		if err := verifyRecord(record); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, record.Title, err)
		}
	}

	return nil
}

func verifyRecord(record models.SentimentRecord) error {
	scores := []float64{record.Positive, record.Negative, record.Polarity, record.Subjectivity}
	for _, score := range scores {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return fmt.Errorf("%w: %v", ErrNonFiniteScore, score)
		}
	}

	if record.Positive < 0 || record.Positive > 1 {
		return fmt.Errorf("%w: positive=%v", ErrShareOutOfRange, record.Positive)
	}

	if record.Negative < 0 || record.Negative > 1 {
		return fmt.Errorf("%w: negative=%v", ErrShareOutOfRange, record.Negative)
	}

	if record.Polarity < -1 || record.Polarity > 1 {
		return fmt.Errorf("%w: %v", ErrPolarityOutOfRange, record.Polarity)
	}

	if record.Subjectivity < 0 || record.Subjectivity > 1 {
		return fmt.Errorf("%w: %v", ErrSubjectivityOutOfRange, record.Subjectivity)
	}

	return nil
}
