package pipeline

import (
	"regexp"

	"feed_ingestor/internal/models"
)

const (
	MaxTitleLen   = 200
	MaxSummaryLen = 500
	DefaultAuthor = "Staff Writer"
)

var markupTag = regexp.MustCompile(`<[^>]*>`)

// ImageResolver returns the placeholder image for a source name.
type ImageResolver interface {
	Image(source string) string
}

// Assembler maps a kept entry to the article that will be stored.
type Assembler struct {
	images ImageResolver
}

func NewAssembler(images ImageResolver) *Assembler {
	return &Assembler{images: images}
}

// Assemble builds the article for e published by source. The summary is
// stripped of tags before it is truncated, so a cut never leaves half a
// tag behind. PublishedAt keeps the feed's raw date string.
func (a *Assembler) Assemble(e models.Entry, source string, topic models.Topic) models.Article {
	author := e.Author
	if author == "" {
		author = DefaultAuthor
	}
	return models.Article{
		Title:       truncate(e.Title, MaxTitleLen),
		Summary:     truncate(StripTags(e.Description), MaxSummaryLen),
		Source:      source,
		Author:      author,
		Topic:       topic,
		URL:         e.Link,
		ImageURL:    a.images.Image(source),
		PublishedAt: e.PubDate,
	}
}

// StripTags removes every <...> sequence from s.
func StripTags(s string) string {
	return markupTag.ReplaceAllString(s, "")
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
