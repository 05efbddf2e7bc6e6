// Package parser turns raw feed documents into entries. Parsing is total:
// malformed input produces fewer or emptier entries, never an error.
package parser

import "feed_ingestor/internal/models"

// Parser extracts entries from a raw feed document.
type Parser interface {
	Parse(raw string) []models.Entry
}
