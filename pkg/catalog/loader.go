package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"speech-corpus/pkg/domain"
)

// Load reads the full speech catalog (a JSON array of metadata records) into
// memory. A catalog that cannot be opened or parsed is a fatal condition for
// the run: there is no partial recovery.
func Load(path string) ([]domain.Speech, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()

	var records []domain.Speech
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	return records, nil
}

// FilterByDateRange returns the subset of records whose delivery date
// (prononciation) falls within dr, preserving catalog order. Records with a
// missing or unparseable date are excluded silently.
func FilterByDateRange(records []domain.Speech, dr DateRange) []domain.Speech {
	filtered := make([]domain.Speech, 0, len(records))
	for _, rec := range records {
		if rec.Prononciation == "" {
			continue
		}
		d, err := time.Parse(DateLayout, rec.Prononciation)
		if err != nil {
			continue
		}
		if dr.Contains(d) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Merge appends supplemental records (feed discoveries, ad-hoc URL lists) to
// the base catalog, skipping any URL the base already covers. Within the
// supplements the first occurrence of a URL wins.
func Merge(base, extra []domain.Speech) []domain.Speech {
	return append(base, NewURLs(base, extra)...)
}

// NewURLs returns the supplemental records whose URL the base catalog does
// not already cover, first occurrence winning within the supplements.
// Dateless discoveries are checked against the full catalog before joining a
// date-filtered selection, so a known speech cannot come back under a
// derived id.
func NewURLs(base, extra []domain.Speech) []domain.Speech {
	seen := make(map[string]bool, len(base))
	for _, rec := range base {
		seen[rec.URL] = true
	}

	out := make([]domain.Speech, 0, len(extra))
	for _, rec := range extra {
		if rec.URL == "" || seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true
		out = append(out, rec)
	}
	return out
}
