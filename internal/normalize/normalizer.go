// Package normalize turns extracted article text into cleaned text: Unicode
// word tokens, stopwords removed, single spaces between the survivors.
package normalize

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"

	"newsmood/internal/models"
)

// Normalizer produces cleaned text. It is deterministic: the same input and
// stopword set always yield the same output, regardless of call order or
// concurrency.
type Normalizer struct {
	stopwords Stopwords
}

// NewNormalizer creates a normalizer over the given stopword set.
func NewNormalizer(stopwords Stopwords) *Normalizer {
	return &Normalizer{stopwords: stopwords}
}

// Normalize cleans one extracted article, carrying its identity and title
// through unchanged.
func (n *Normalizer) Normalize(article models.ExtractedArticle) models.NormalizedArticle {
	return models.NormalizedArticle{
		Ref:         article.Ref,
		Title:       article.Title,
		CleanedText: n.Clean(article.Body),
	}
}

// Clean tokenizes text on Unicode word boundaries, drops punctuation-only
// tokens and stopwords, and rejoins the rest with single spaces. Kept tokens
// preserve their original case; the stopword comparison ignores it.
func (n *Normalizer) Clean(text string) string {
	var tokens []string

	segments := words.FromString(text)
	for segments.Next() {
		token := segments.Value()
		if !isWord(token) {
			continue
		}

		if n.stopwords.Contains(token) {
			continue
		}

		tokens = append(tokens, token)
	}

	return strings.Join(tokens, " ")
}

// isWord reports whether a segment carries at least one letter or digit.
func isWord(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}

	return false
}
