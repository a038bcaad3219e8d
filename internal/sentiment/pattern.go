package sentiment

import (
	"bufio"
	"bytes"
	_ "embed"
	"strconv"
	"strings"
)

//go:embed lexicon_en.txt
var embeddedLexicon []byte

// Modifier weights applied to the word immediately following a negator or
// booster.
const (
	negationWeight    = -0.5
	boosterWeight     = 1.3
	boosterSubjWeight = 1.2
)

// lexEntry holds one lexicon word's base scores.
type lexEntry struct {
	polarity     float64
	subjectivity float64
}

// PatternScorer scores text against an embedded evaluative lexicon,
// producing polarity in [-1, 1] and subjectivity in [0, 1] as means over the
// matched words. A negator halves and flips the next matched word; a booster
// amplifies it.
type PatternScorer struct {
	lexicon  map[string]lexEntry
	negators map[string]struct{}
	boosters map[string]struct{}
}

// NewPatternScorer creates a scorer with the embedded English lexicon.
func NewPatternScorer() *PatternScorer {
	return &PatternScorer{
		lexicon: parseLexicon(embeddedLexicon),
		negators: wordSet(
			"not", "no", "never", "n't", "cannot", "without", "hardly", "barely",
		),
		boosters: wordSet(
			"very", "really", "extremely", "absolutely", "so", "too", "highly", "incredibly",
		),
	}
}

// Name identifies this scorer in logs and errors.
func (p *PatternScorer) Name() string {
	return "pattern"
}

// Score averages the lexicon scores of the matched words. Text without a
// single match scores zero on both axes.
func (p *PatternScorer) Score(cleaned string) (Result, error) {
	if cleaned == "" {
		return Result{}, nil
	}

	var (
		polaritySum     float64
		subjectivitySum float64
		matches         int
		negate          bool
		boost           bool
	)

	for _, token := range strings.Fields(cleaned) {
		word := strings.ToLower(token)

		if _, ok := p.negators[word]; ok {
			negate = true

			continue
		}

		if _, ok := p.boosters[word]; ok {
			boost = true

			continue
		}

		if entry, ok := p.lexicon[word]; ok {
			polarity := entry.polarity
			subjectivity := entry.subjectivity

			if boost {
				polarity *= boosterWeight
				subjectivity *= boosterSubjWeight
			}

			if negate {
				polarity *= negationWeight
			}

			polaritySum += clampPolarity(polarity)
			subjectivitySum += clampSubjectivity(subjectivity)
			matches++
		}

		// Modifiers reach only the next word.
		negate, boost = false, false
	}

	if matches == 0 {
		return Result{}, nil
	}

	return Result{
		Polarity:     polaritySum / float64(matches),
		Subjectivity: subjectivitySum / float64(matches),
	}, nil
}

// parseLexicon reads "word polarity subjectivity" lines, skipping comments
// and anything malformed.
func parseLexicon(data []byte) map[string]lexEntry {
	lexicon := make(map[string]lexEntry)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}

		polarity, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		subjectivity, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}

		lexicon[strings.ToLower(fields[0])] = lexEntry{
			polarity:     polarity,
			subjectivity: subjectivity,
		}
	}

	return lexicon
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))

	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}

func clampPolarity(v float64) float64 {
	if v > 1 {
		return 1
	}

	if v < -1 {
		return -1
	}

	return v
}

func clampSubjectivity(v float64) float64 {
	if v > 1 {
		return 1
	}

	if v < 0 {
		return 0
	}

	return v
}
