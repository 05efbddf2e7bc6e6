package pipeline

import (
	"strings"
	"time"

	"feed_ingestor/internal/models"
)

const (
	WindowShort   = "2h"
	WindowDefault = "24h"
	WindowLong    = "7d"
)

var windowDurations = map[string]time.Duration{
	WindowShort:   2 * time.Hour,
	WindowDefault: 24 * time.Hour,
	WindowLong:    7 * 24 * time.Hour,
}

// Layouts tried, in order, when parsing a publish date.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.RFC850,
	time.ANSIC,
}

// North American zones allowed by RFC 822. time.Parse gives abbreviations
// the local zone does not know a zero offset.
var namedZones = map[string]int{
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

// Window drops entries published before now minus its duration.
type Window struct {
	keyword  string
	duration time.Duration
	now      func() time.Time
}

// NewWindow resolves keyword to one of the fixed windows. Unknown or empty
// keywords select the 24h default.
func NewWindow(keyword string) *Window {
	d, ok := windowDurations[keyword]
	if !ok {
		keyword, d = WindowDefault, windowDurations[WindowDefault]
	}
	return &Window{keyword: keyword, duration: d, now: time.Now}
}

// WithClock replaces the time source.
func (w *Window) WithClock(now func() time.Time) *Window {
	w.now = now
	return w
}

// Keyword returns the resolved window keyword.
func (w *Window) Keyword() string {
	return w.keyword
}

// Cutoff returns the earliest publish instant that is kept.
func (w *Window) Cutoff() time.Time {
	return w.now().Add(-w.duration)
}

// Check keeps e iff its publish date parses and is not before the cutoff.
// The cutoff itself is inclusive. Unparseable dates are dropped.
func (w *Window) Check(e models.Entry) Outcome {
	return w.checkAt(e, w.Cutoff())
}

// Filter applies Check to every entry against a single cutoff and returns
// the kept entries along with the outcome of each input entry.
func (w *Window) Filter(entries []models.Entry) ([]models.Entry, []Outcome) {
	cutoff := w.Cutoff()
	kept := make([]models.Entry, 0, len(entries))
	outcomes := make([]Outcome, len(entries))
	for i, e := range entries {
		outcomes[i] = w.checkAt(e, cutoff)
		if outcomes[i].Kept {
			kept = append(kept, e)
		}
	}
	return kept, outcomes
}

func (w *Window) checkAt(e models.Entry, cutoff time.Time) Outcome {
	published, ok := ParseDate(e.PubDate)
	if !ok {
		return Skip(ReasonBadDate)
	}
	if published.Before(cutoff) {
		return Skip(ReasonStale)
	}
	return Keep()
}

// ParseDate parses the feed date formats seen in practice.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return resolveZone(t), true
		}
	}
	return time.Time{}, false
}

func resolveZone(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}
	known, ok := namedZones[name]
	if !ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, known))
}
