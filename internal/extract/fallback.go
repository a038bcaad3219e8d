package extract

import (
	"bytes"
	"fmt"
	"net/url"

	readability "github.com/go-shiori/go-readability"

	"newsmood/internal/models"
	"newsmood/pkg/utils"
)

// readabilityFallback recovers article content with a generic content
// heuristic when the expected container is missing. Enabled per
// configuration; the container extraction always runs first.
type readabilityFallback struct{}

// Recover parses the page with the readability heuristic and returns the
// title and whitespace-normalized body it found.
func (readabilityFallback) Recover(doc *models.CachedDocument) (string, string, error) {
	pageURL, err := url.Parse(doc.Ref.URL)
	if err != nil {
		return "", "", fmt.Errorf("parsing article url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(doc.HTML), pageURL)
	if err != nil {
		return "", "", fmt.Errorf("readability extraction: %w", err)
	}

	return article.Title, utils.NormalizeWhitespace(article.TextContent), nil
}
