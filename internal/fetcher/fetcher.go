package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "feed-ingestor/1.0"

var (
	// ErrStatus is returned when the feed endpoint answers with a non-2xx status.
	ErrStatus = errors.New("unexpected status")
	// ErrEncoding is returned when the body is not valid UTF-8 text.
	ErrEncoding = errors.New("malformed body encoding")
)

// Fetcher downloads raw feed documents over HTTP.
type Fetcher struct {
	client *resty.Client
}

// New returns a Fetcher whose every request is bounded by timeout.
// An empty userAgent selects the default one.
func New(timeout time.Duration, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/rss+xml, application/xml, text/xml, */*")
	return &Fetcher{client: client}
}

// Fetch returns the body of the resource at url. Transport failures,
// non-2xx answers and non-UTF-8 bodies are all reported as errors; callers
// decide whether they are fatal.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("get %s: %w %d", url, ErrStatus, resp.StatusCode())
	}

	body := resp.Body()
	if !utf8.Valid(body) {
		return "", fmt.Errorf("get %s: %w", url, ErrEncoding)
	}
	return string(body), nil
}
