// Package pipeline holds the per-entry stages of an ingestion run. Each
// filtering stage returns an Outcome so callers can count and log why an
// entry was dropped.
package pipeline

// Reason explains why an entry left the pipeline.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonStale       Reason = "stale"
	ReasonBadDate     Reason = "unparseable_date"
	ReasonMissingLink Reason = "missing_link"
	ReasonDuplicate   Reason = "duplicate"
)

// Outcome is the decision of one stage for one entry.
type Outcome struct {
	Kept   bool
	Reason Reason
}

// Keep is the outcome of an entry that passes a stage.
func Keep() Outcome {
	return Outcome{Kept: true}
}

// Skip is the outcome of an entry dropped for reason.
func Skip(reason Reason) Outcome {
	return Outcome{Reason: reason}
}

// Label names the outcome for logs and metrics.
func (o Outcome) Label() string {
	if o.Kept {
		return "kept"
	}
	return string(o.Reason)
}
