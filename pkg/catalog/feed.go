package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/mmcdole/gofeed"

	"speech-corpus/pkg/domain"
)

// FeedSource discovers speeches published after the seed catalog snapshot by
// reading the site's RSS feed. Feed items carry far less metadata than the
// catalog, so the records it produces are minimal: id, title, url, delivery
// date and summary.
type FeedSource struct {
	feedParser *gofeed.Parser
}

// NewFeedSource creates a new feed source.
func NewFeedSource() *FeedSource {
	return &FeedSource{
		feedParser: gofeed.NewParser(),
	}
}

// FetchRecords fetches and parses the feed at feedURL and converts its items
// to catalog records. Items without a link are skipped.
func (s *FeedSource) FetchRecords(feedURL string) ([]domain.Speech, error) {
	feed, err := s.feedParser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	records := make([]domain.Speech, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		rec := domain.Speech{
			ID:     URLID(item.Link),
			Titre:  item.Title,
			URL:    item.Link,
			Resume: item.Description,
		}
		if item.PublishedParsed != nil {
			rec.Prononciation = item.PublishedParsed.Format(DateLayout)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no usable items in feed")
	}

	return records, nil
}

// URLID derives a stable record id from a URL (hex md5). Used for records
// discovered outside the seed catalog, which have no catalog id.
func URLID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}
