package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feed_ingestor/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Database wraps the PostgreSQL connection pool.
type Database struct {
	Pool Pool
}

// NewDB opens a connection pool for connString.
func NewDB(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &Database{Pool: pool}, nil
}

// Close closes the pool.
func (db *Database) Close() {
	db.Pool.Close()
}

// Ping checks that the database answers.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id SERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	summary TEXT NOT NULL,
	source TEXT NOT NULL,
	author TEXT NOT NULL,
	topic TEXT NOT NULL,
	url TEXT UNIQUE NOT NULL,
	image_url TEXT NOT NULL,
	published_at TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

// Migrate creates the tables if they do not exist.
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ActiveSubscriptions returns the active sources of userID.
func (db *Database) ActiveSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT user_id, name, active
        FROM sources
        WHERE user_id = $1 AND active = TRUE
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.UserID, &s.Name, &s.Active); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read subscriptions: %w", err)
	}
	return subs, nil
}

// ArticleExists reports whether an article with exactly this URL is stored.
func (db *Database) ArticleExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article: %w", err)
	}
	return exists, nil
}

// InsertArticles stores the batch in one transaction and returns the rows
// actually inserted. Rows whose URL is already stored are skipped.
func (db *Database) InsertArticles(ctx context.Context, articles []models.Article) ([]models.Article, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	inserted := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		var createdAt time.Time
		err := tx.QueryRow(ctx, `
            INSERT INTO articles (title, summary, source, author, topic, url, image_url, published_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (url) DO NOTHING
            RETURNING id, created_at
        `, a.Title, a.Summary, a.Source, a.Author, string(a.Topic), a.URL, a.ImageURL, a.PublishedAt).Scan(&a.ID, &createdAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("insert article %s: %w", a.URL, err)
		}
		a.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		inserted = append(inserted, a)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}
