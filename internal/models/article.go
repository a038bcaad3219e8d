// Package models defines the data structures flowing through the sentiment pipeline.
package models

// DocumentSource tells where a cached document's bytes came from.
type DocumentSource string

// Document sources.
const (
	SourceNetwork DocumentSource = "network"
	SourceCache   DocumentSource = "cache"
)

// ArticleRef identifies one unit of pipeline work: an article id paired with
// the URL it is retrieved from. Immutable once created from the input stream.
type ArticleRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CachedDocument is the raw HTML of an article as returned by the fetch cache.
// Written once per URL, read many times for the lifetime of the cache directory.
type CachedDocument struct {
	Ref    ArticleRef     `json:"ref"`
	HTML   []byte         `json:"-"`
	Source DocumentSource `json:"source"`
}

// ExtractedArticle is the best-effort plain-text body of an article.
// HasBody is the presence discriminator: false means the content container was
// not found (the article is skipped), while true with an empty Body means the
// container was found but empty and the article proceeds to a zero-score row.
type ExtractedArticle struct {
	Ref     ArticleRef `json:"ref"`
	Title   string     `json:"title"`
	Body    string     `json:"body"`
	HasBody bool       `json:"hasBody"`
}

// NormalizedArticle carries the cleaned token stream derived deterministically
// from an extracted body. The cleaned text exists for scoring only; the
// transform is lossy and not reversible.
type NormalizedArticle struct {
	Ref         ArticleRef `json:"ref"`
	Title       string     `json:"title"`
	CleanedText string     `json:"cleanedText"`
}

// SentimentRecord is the final, immutable output row for one article:
// identifiers, cleaned text, and the fused outputs of both scorers.
// Positive, Negative and Subjectivity are in [0,1]; Polarity is in [-1,1].
type SentimentRecord struct {
	Ref          ArticleRef `json:"ref"`
	Title        string     `json:"title"`
	CleanedText  string     `json:"cleanedText"`
	Positive     float64    `json:"positiveScore"`
	Negative     float64    `json:"negativeScore"`
	Polarity     float64    `json:"polarityScore"`
	Subjectivity float64    `json:"subjectivityScore"`
}
