package catalog

import (
	"fmt"
	"time"
)

// DateLayout is the date format used by the catalog's date fields.
const DateLayout = "2006-01-02"

// Corpus bounds: the earliest and latest delivery dates present in the
// catalog. Crawl ranges are clamped to these, so the date filter can never
// select a record dated outside them.
var (
	CorpusBegin = time.Date(1959, time.January, 15, 0, 0, 0, 0, time.UTC)
	CorpusEnd   = time.Date(2025, time.December, 22, 0, 0, 0, 0, time.UTC)
)

// DateRange is an inclusive begin/end pair bounding a crawl.
type DateRange struct {
	Begin time.Time
	End   time.Time
}

// ParseDateRange parses begin and end strings in YYYY-MM-DD form and returns
// the range clamped to the corpus bounds. The end date must not precede the
// begin date.
func ParseDateRange(begin, end string) (DateRange, error) {
	b, err := time.Parse(DateLayout, begin)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid begin date %q: %w", begin, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if b.After(e) {
		return DateRange{}, fmt.Errorf("begin date %s is after end date %s", begin, end)
	}
	return DateRange{Begin: b, End: e}.Clamp(), nil
}

// Clamp narrows the range to the corpus bounds. A range entirely outside the
// bounds comes back empty (Begin after End) and contains no dates.
func (dr DateRange) Clamp() DateRange {
	if dr.Begin.Before(CorpusBegin) {
		dr.Begin = CorpusBegin
	}
	if dr.End.After(CorpusEnd) {
		dr.End = CorpusEnd
	}
	return dr
}

// Contains reports whether d falls within the range. Both bounds are
// inclusive.
func (dr DateRange) Contains(d time.Time) bool {
	return !d.Before(dr.Begin) && !d.After(dr.End)
}

// Slug returns the range as "<begin>_to_<end>", used in artifact file names.
func (dr DateRange) Slug() string {
	return dr.Begin.Format(DateLayout) + "_to_" + dr.End.Format(DateLayout)
}

func (dr DateRange) String() string {
	return dr.Begin.Format(DateLayout) + ".." + dr.End.Format(DateLayout)
}
