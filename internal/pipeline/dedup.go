package pipeline

import (
	"context"

	"feed_ingestor/internal/logger"
)

// ArticleLookup reports whether an article with the exact URL is stored.
type ArticleLookup interface {
	ArticleExists(ctx context.Context, url string) (bool, error)
}

// SeenCache is a fast, lossy record of URLs already stored.
type SeenCache interface {
	Seen(ctx context.Context, url string) (bool, error)
	MarkSeen(ctx context.Context, urls ...string) error
}

// Deduplicator drops entries whose URL is already stored. URLs are
// compared as exact strings: scheme, trailing slash and query differences
// make two URLs distinct.
type Deduplicator struct {
	store ArticleLookup
	cache SeenCache
}

// NewDeduplicator builds a Deduplicator. cache may be nil.
func NewDeduplicator(store ArticleLookup, cache SeenCache) *Deduplicator {
	return &Deduplicator{store: store, cache: cache}
}

// Check decides whether url is new. A failed lookup keeps the entry; the
// store's unique constraint rejects it at insert time if it was a duplicate.
func (d *Deduplicator) Check(ctx context.Context, url string) Outcome {
	if url == "" {
		return Skip(ReasonMissingLink)
	}
	log := logger.Log.WithField("url", url)

	if d.cache != nil {
		seen, err := d.cache.Seen(ctx, url)
		if err != nil {
			log.WithError(err).Warn("Seen-URL cache lookup failed")
		} else if seen {
			return Skip(ReasonDuplicate)
		}
	}

	exists, err := d.store.ArticleExists(ctx, url)
	if err != nil {
		log.WithError(err).Warn("Article lookup failed, keeping entry")
		return Keep()
	}
	if exists {
		if d.cache != nil {
			if err := d.cache.MarkSeen(ctx, url); err != nil {
				log.WithError(err).Debug("Failed to backfill seen-URL cache")
			}
		}
		return Skip(ReasonDuplicate)
	}
	return Keep()
}

// Remember records freshly stored URLs in the cache, if any.
func (d *Deduplicator) Remember(ctx context.Context, urls []string) {
	if d.cache == nil || len(urls) == 0 {
		return
	}
	if err := d.cache.MarkSeen(ctx, urls...); err != nil {
		logger.Log.WithError(err).WithField("count", len(urls)).Warn("Failed to record stored URLs in cache")
	}
}
