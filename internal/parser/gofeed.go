package parser

import (
	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/models"

	"github.com/mmcdole/gofeed"
)

// Gofeed parses RSS, Atom and JSON feeds with gofeed. Documents gofeed
// rejects yield no entries.
type Gofeed struct {
	fp *gofeed.Parser
}

// NewGofeed returns a gofeed-backed parser.
func NewGofeed() *Gofeed {
	return &Gofeed{fp: gofeed.NewParser()}
}

func (g *Gofeed) Parse(raw string) []models.Entry {
	feed, err := g.fp.ParseString(raw)
	if err != nil {
		logger.Log.WithError(err).Warn("Feed document rejected by parser")
		return []models.Entry{}
	}

	entries := make([]models.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		pub := item.Published
		if pub == "" {
			pub = item.Updated
		}
		entries = append(entries, models.Entry{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			PubDate:     pub,
			Author:      itemAuthor(item),
			Categories:  item.Categories,
		})
	}
	return entries
}

func itemAuthor(item *gofeed.Item) string {
	if dc := item.DublinCoreExt; dc != nil && len(dc.Creator) > 0 && dc.Creator[0] != "" {
		return dc.Creator[0]
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
