package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/metrics"
	"feed_ingestor/internal/models"
	"feed_ingestor/internal/parser"
	"feed_ingestor/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

const noNewArticles = "No new articles found"

// ErrMissingUser is returned when a request carries no user id.
var ErrMissingUser = errors.New("userId is required")

// Store is the persistence the orchestrator reads from and writes to.
type Store interface {
	ActiveSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error)
	ArticleExists(ctx context.Context, url string) (bool, error)
	InsertArticles(ctx context.Context, articles []models.Article) ([]models.Article, error)
}

// Fetcher downloads a feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sources resolves source names to feed endpoints and placeholder images.
type Sources interface {
	FeedURL(name string) (string, bool)
	Image(name string) string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers bounds how many subscriptions are processed at once.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithCache puts a seen-URL cache in front of the store's existence check.
func WithCache(c pipeline.SeenCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithMetrics records run statistics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock replaces the time source used for the recency cutoff.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator runs the ingestion pipeline for one user at a time:
// subscriptions, fetch, parse, recency filter, dedup, classify, assemble,
// then a single batch insert.
type Orchestrator struct {
	store     Store
	fetcher   Fetcher
	parser    parser.Parser
	sources   Sources
	dedup     *pipeline.Deduplicator
	assembler *pipeline.Assembler
	cache     pipeline.SeenCache
	metrics   *metrics.Metrics
	workers   int
	now       func() time.Time
}

func New(store Store, fetcher Fetcher, p parser.Parser, sources Sources, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		fetcher: fetcher,
		parser:  p,
		sources: sources,
		workers: 4,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.dedup = pipeline.NewDeduplicator(store, o.cache)
	o.assembler = pipeline.NewAssembler(sources)
	return o
}

// Run ingests new articles for req.UserID. Failing to load subscriptions
// or to insert the batch fails the run; a source that cannot be fetched
// only contributes nothing.
func (o *Orchestrator) Run(ctx context.Context, req models.Request) (models.Result, error) {
	start := time.Now()
	res, err := o.run(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.metrics.RunFinished(status, time.Since(start))
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, req models.Request) (models.Result, error) {
	if req.UserID == "" {
		return models.Result{}, ErrMissingUser
	}

	now := o.now()
	window := pipeline.NewWindow(req.TimeFilter).WithClock(func() time.Time { return now })
	log := logger.Log.WithFields(logger.Fields{
		"user_id": req.UserID,
		"window":  window.Keyword(),
	})

	subs, err := o.store.ActiveSubscriptions(ctx, req.UserID)
	if err != nil {
		return models.Result{}, fmt.Errorf("load subscriptions: %w", err)
	}
	log = log.WithField("subscriptions", len(subs))
	log.Info("Starting ingestion run")

	// One slot per subscription; each worker writes only its own slot.
	perSub := make([][]models.Article, len(subs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, sub := range subs {
		if !sub.Active {
			continue
		}
		g.Go(func() error {
			perSub[i] = o.collect(gctx, sub, window)
			return nil
		})
	}
	// Workers report failures through logs and metrics, never through the group.
	g.Wait()

	batch := mergeBatch(perSub)
	if len(batch) == 0 {
		log.Info("No new articles to insert")
		return models.Result{Success: true, Message: noNewArticles}, nil
	}

	inserted, err := o.store.InsertArticles(ctx, batch)
	if err != nil {
		return models.Result{}, fmt.Errorf("insert articles: %w", err)
	}
	o.metrics.Inserted(len(inserted))

	urls := make([]string, len(inserted))
	for i, a := range inserted {
		urls[i] = a.URL
	}
	o.dedup.Remember(ctx, urls)

	log.WithFields(logger.Fields{
		"assembled": len(batch),
		"inserted":  len(inserted),
	}).Info("Ingestion run finished")

	res := models.Result{Success: true, ArticlesAdded: len(inserted), Articles: inserted}
	if len(inserted) == 0 {
		res.Message = noNewArticles
	}
	return res, nil
}

// collect runs fetch through assembly for one subscription. Every failure
// here is soft: it is logged and the subscription yields fewer articles.
func (o *Orchestrator) collect(ctx context.Context, sub models.Subscription, window *pipeline.Window) []models.Article {
	log := logger.Log.WithFields(logger.Fields{
		"user_id": sub.UserID,
		"source":  sub.Name,
	})

	feedURL, ok := o.sources.FeedURL(sub.Name)
	if !ok {
		log.Debug("No feed registered for source, skipping")
		return nil
	}
	log = log.WithField("url", feedURL)

	log.Debug("Fetching feed")
	raw, err := o.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		o.metrics.FetchFailed(sub.Name)
		log.WithError(err).Warn("Failed to fetch feed")
		return nil
	}

	entries := o.parser.Parse(raw)
	fresh, outcomes := window.Filter(entries)
	for i, out := range outcomes {
		if !out.Kept {
			o.record(log, entries[i], out)
		}
	}

	var articles []models.Article
	for _, e := range fresh {
		out := o.dedup.Check(ctx, e.Link)
		o.record(log, e, out)
		if !out.Kept {
			continue
		}
		topic := pipeline.Classify(e.Title, e.Description, e.Categories)
		articles = append(articles, o.assembler.Assemble(e, sub.Name, topic))
	}

	log.WithFields(logger.Fields{
		"entries":   len(entries),
		"in_window": len(fresh),
		"new":       len(articles),
	}).Info("Processed feed")
	return articles
}

func (o *Orchestrator) record(log *logger.Entry, e models.Entry, out pipeline.Outcome) {
	o.metrics.Entry(out.Label())
	if !out.Kept {
		log.WithFields(logger.Fields{
			"link":   e.Link,
			"reason": out.Reason,
		}).Debug("Entry skipped")
	}
}

// mergeBatch flattens per-subscription results in subscription order and
// drops repeated URLs, keeping the first occurrence.
func mergeBatch(perSub [][]models.Article) []models.Article {
	seen := make(map[string]struct{})
	var batch []models.Article
	for _, articles := range perSub {
		for _, a := range articles {
			if _, dup := seen[a.URL]; dup {
				continue
			}
			seen[a.URL] = struct{}{}
			batch = append(batch, a)
		}
	}
	return batch
}
