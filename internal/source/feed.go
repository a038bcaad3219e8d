package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"newsmood/internal/fetch"
	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/pkg/utils"
)

// FeedReader reads article references from an RSS or Atom feed. The feed
// itself is downloaded through the shared fetcher, so the identification
// header and the rate limit apply to it like to any other request.
type FeedReader struct {
	fetcher fetch.PageFetcher
	log     *logger.Logger
}

// NewFeedReader creates a feed reader on top of the given fetcher.
func NewFeedReader(fetcher fetch.PageFetcher, log *logger.Logger) *FeedReader {
	return &FeedReader{
		fetcher: fetcher,
		log:     log,
	}
}

// Read downloads and parses the feed at feedURL. Each item becomes one
// reference, identified by its GUID when present, otherwise by its link.
// Items without a usable link are dropped with a warning.
func (r *FeedReader) Read(ctx context.Context, feedURL string) ([]models.ArticleRef, error) {
	body, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFeed, feedURL, err)
	}

	refs := make([]models.ArticleRef, 0, len(feed.Items))

	for i, item := range feed.Items {
		if item.Link == "" {
			r.log.Warn("Skipping feed item without link", "feed", feedURL, "item", i)

			continue
		}

		if err := utils.ValidateURL(item.Link); err != nil {
			r.log.Warn("Skipping feed item with invalid link", "feed", feedURL, "link", item.Link, "error", err)

			continue
		}

		id := item.GUID
		if id == "" {
			id = item.Link
		}

		refs = append(refs, models.ArticleRef{ID: id, URL: item.Link})
	}

	r.log.Info("📥 Feed parsed", "feed", feedURL, "items", len(feed.Items), "usable", len(refs))

	return refs, nil
}
