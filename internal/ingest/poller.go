package ingest

import (
	"context"
	"time"

	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/models"
)

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context, req models.Request) (models.Result, error)
}

// StartPolling runs ingestion for every user on each tick until ctx is
// cancelled. Users are processed one after another so runs never overlap.
func StartPolling(ctx context.Context, runner Runner, users []string, interval time.Duration, window string) {
	log := logger.Log.WithFields(logger.Fields{
		"service":  "poller",
		"interval": interval.String(),
		"users":    len(users),
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Info("Starting new polling cycle")
			pollOnce(ctx, runner, users, window)

		case <-ctx.Done():
			log.Info("Stopping poller by context")
			return
		}
	}
}

func pollOnce(ctx context.Context, runner Runner, users []string, window string) {
	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		log := logger.Log.WithField("user_id", user)
		res, err := runner.Run(ctx, models.Request{UserID: user, TimeFilter: window})
		if err != nil {
			log.Errorf("Scheduled ingestion failed: %v", err)
			continue
		}
		log.WithField("articles_added", res.ArticlesAdded).Info("Scheduled ingestion done")
	}
}
