// Package extract pulls article titles and body text out of fetched pages.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsmood/internal/config"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/pkg/utils"
)

// ErrUnparseableHTML reports a document the HTML parser could not read.
var ErrUnparseableHTML = errors.New("cannot parse document html")

// fallback recovers content from pages whose expected container is absent.
type fallback interface {
	Recover(doc *models.CachedDocument) (title, body string, err error)
}

// Extractor locates the article content container and collects its text.
type Extractor struct {
	selector string
	fallback fallback
	log      *logger.Logger
}

// NewExtractor creates an extractor from the pipeline configuration.
func NewExtractor(cfg *config.Config, log *logger.Logger) *Extractor {
	e := &Extractor{
		selector: cfg.Pipeline.Extract.ContainerSelector(),
		log:      log,
	}

	if cfg.Pipeline.Extract.Fallback == config.FallbackReadability {
		e.fallback = readabilityFallback{}
	}

	return e
}

// Extract parses one cached page and returns its title and body text. The
// body comes from the first matching container; only its direct child
// elements contribute, so bare text nodes sitting directly inside the
// container are skipped. An absent container yields HasBody false, which is
// a skip for the caller, not an error.
func (e *Extractor) Extract(doc *models.CachedDocument) (models.ExtractedArticle, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.HTML))
	if err != nil {
		return models.ExtractedArticle{Ref: doc.Ref}, fmt.Errorf("%w: %v", ErrUnparseableHTML, err)
	}

	article := models.ExtractedArticle{
		Ref:   doc.Ref,
		Title: extractTitle(parsed),
	}

	container := parsed.Find(e.selector).First()
	if container.Length() == 0 {
		if e.fallback != nil {
			return e.recoverContent(doc, article)
		}

		e.log.Debug("Content container not found", "article_id", doc.Ref.ID, "selector", e.selector)

		return article, nil
	}

	article.HasBody = true
	article.Body = containerText(container)

	return article, nil
}

// recoverContent runs the fallback strategy for a page without the expected
// container. A fallback that finds nothing leaves the article body-less.
func (e *Extractor) recoverContent(doc *models.CachedDocument, article models.ExtractedArticle) (models.ExtractedArticle, error) {
	title, body, err := e.fallback.Recover(doc)
	if err != nil {
		e.log.Debug("Fallback extraction failed", "article_id", doc.Ref.ID, "error", err)

		return article, nil
	}

	if body == "" {
		e.log.Debug("Fallback extraction found no content", "article_id", doc.Ref.ID)

		return article, nil
	}

	article.HasBody = true
	article.Body = body

	if article.Title == "" {
		article.Title = utils.NormalizeWhitespace(title)
	}

	return article, nil
}

// extractTitle prefers the document title element, falling back to the first
// h1 heading.
func extractTitle(parsed *goquery.Document) string {
	title := parsed.Find("title").First().Text()
	if strings.TrimSpace(title) == "" {
		title = parsed.Find("h1").First().Text()
	}

	return utils.NormalizeWhitespace(title)
}

// containerText concatenates the text of the container's direct child
// elements, one space between blocks.
func containerText(container *goquery.Selection) string {
	var blocks []string

	container.Children().Each(func(_ int, child *goquery.Selection) {
		text := utils.NormalizeWhitespace(child.Text())
		if text == "" {
			return
		}

		blocks = append(blocks, text)
	})

	return strings.Join(blocks, " ")
}
