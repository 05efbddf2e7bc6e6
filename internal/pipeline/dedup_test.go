package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/pipeline"

	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	urls  map[string]bool
	err   error
	calls int
}

func (f *fakeLookup) ArticleExists(_ context.Context, url string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.urls[url], nil
}

type fakeCache struct {
	seen map[string]bool
	err  error
}

func (f *fakeCache) Seen(_ context.Context, url string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.seen[url], nil
}

func (f *fakeCache) MarkSeen(_ context.Context, urls ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, u := range urls {
		f.seen[u] = true
	}
	return nil
}

func TestDeduplicator_Check(t *testing.T) {
	logger.Silence()
	ctx := context.Background()
	store := &fakeLookup{urls: map[string]bool{"https://example.com/a": true}}
	d := pipeline.NewDeduplicator(store, nil)

	require.Equal(t, pipeline.Skip(pipeline.ReasonDuplicate), d.Check(ctx, "https://example.com/a"))
	require.Equal(t, pipeline.Keep(), d.Check(ctx, "https://example.com/b"))
	require.Equal(t, pipeline.Skip(pipeline.ReasonMissingLink), d.Check(ctx, ""))
}

func TestDeduplicator_ExactMatchOnly(t *testing.T) {
	store := &fakeLookup{urls: map[string]bool{"https://example.com/a": true}}
	d := pipeline.NewDeduplicator(store, nil)

	for _, near := range []string{"https://example.com/a/", "http://example.com/a", "https://example.com/a?utm_source=x"} {
		require.True(t, d.Check(context.Background(), near).Kept, near)
	}
}

func TestDeduplicator_LookupErrorKeeps(t *testing.T) {
	logger.Silence()
	d := pipeline.NewDeduplicator(&fakeLookup{err: errors.New("db down")}, nil)
	require.True(t, d.Check(context.Background(), "https://example.com/a").Kept)
}

func TestDeduplicator_Cache(t *testing.T) {
	logger.Silence()
	ctx := context.Background()
	store := &fakeLookup{urls: map[string]bool{"https://example.com/stored": true}}
	cache := &fakeCache{seen: map[string]bool{"https://example.com/cached": true}}
	d := pipeline.NewDeduplicator(store, cache)

	require.Equal(t, pipeline.Skip(pipeline.ReasonDuplicate), d.Check(ctx, "https://example.com/cached"))
	require.Equal(t, 0, store.calls, "cache hit must not query the store")

	require.Equal(t, pipeline.Skip(pipeline.ReasonDuplicate), d.Check(ctx, "https://example.com/stored"))
	require.True(t, cache.seen["https://example.com/stored"], "store hit backfills cache")

	d.Remember(ctx, []string{"https://example.com/new"})
	require.True(t, cache.seen["https://example.com/new"])
}

func TestDeduplicator_CacheErrorFallsBackToStore(t *testing.T) {
	logger.Silence()
	store := &fakeLookup{urls: map[string]bool{"https://example.com/a": true}}
	d := pipeline.NewDeduplicator(store, &fakeCache{err: errors.New("redis down")})

	require.Equal(t, pipeline.Skip(pipeline.ReasonDuplicate), d.Check(context.Background(), "https://example.com/a"))
	require.Equal(t, 1, store.calls)
}
