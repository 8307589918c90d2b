package domain

import "time"

// Failure reasons recorded in the failure log.
const (
	ReasonFetchError     = "fetch-error"
	ReasonExtractionMiss = "extraction-miss"
)

// FailureEntry records one per-URL crawl failure. Entries are append-only:
// written once to the failure log, never mutated.
type FailureEntry struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
