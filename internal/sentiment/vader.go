package sentiment

import "github.com/jonreiter/govader"

// VaderScorer scores text against the VADER sentiment lexicon. The analyzer
// is read-only after construction, so one instance serves all workers.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer creates a scorer with the stock VADER lexicon.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Name identifies this scorer in logs and errors.
func (v *VaderScorer) Name() string {
	return "vader"
}

// Score returns the lexicon proportions for cleaned text. Empty text
// short-circuits to an all-zero result.
func (v *VaderScorer) Score(cleaned string) (Result, error) {
	if cleaned == "" {
		return Result{}, nil
	}

	scores := v.analyzer.PolarityScores(cleaned)

	return Result{
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
		Compound: scores.Compound,
	}, nil
}
