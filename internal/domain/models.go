package domain

import "time"

// Domain contains the core models shared across the pipeline.

// Sentinel values substituted when a field cannot be determined.
const (
	JournalistUnknown = "N/A"
	CategoryUnknown   = "N/A"
	SynopsisError     = "Error generating synopsis"
)

// Article is a single scraped news item before classification. The keyword
// that produced it is carried along as provenance.
type Article struct {
	Title      string
	Media      string
	Journalist string
	Keyword    string
}

// ClassifiedArticle is an Article enriched with the model's category and
// synopsis.
type ClassifiedArticle struct {
	Category   string
	Media      string
	Journalist string
	Synopsis   string
}

// DateRange is the inclusive start/end calendar-date filter applied to every
// search. Inverted ranges are passed through to the search endpoint as-is.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// LastDays returns a range covering the n days up to today.
func LastDays(n int) DateRange {
	now := time.Now()
	return DateRange{Start: now.AddDate(0, 0, -n), End: now}
}

// Report is the final deduplicated, ordered result table of one run.
type Report struct {
	Rows       []ClassifiedArticle
	Keywords   []string
	Range      DateRange
	Collected  int // articles extracted across all keywords, before dedup
	StartedAt  time.Time
	FinishedAt time.Time
}

// Phase identifies which stage of a run a progress event belongs to.
type Phase string

const (
	PhaseFetching    Phase = "fetching"
	PhaseClassifying Phase = "classifying"
)

// ProgressEvent reports completion of one unit of work: one keyword during
// fetching, one article during classification.
type ProgressEvent struct {
	Phase    Phase
	Fraction float64
	Label    string
}
