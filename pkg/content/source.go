package content

import (
	"regexp"
	"strings"
)

// sourcePattern matches a trailing attribution line such as
// "Source : France Inter" or "(source: RTL)". Some transcripts end with one;
// the attribution belongs in its own field, not in the body.
var sourcePattern = regexp.MustCompile(`(?i)^\(?\s*source\s*[:.：]?\s*(.*)`)

// sourceTrimSet holds the punctuation stripped from both ends of a matched
// attribution.
const sourceTrimSet = " .,;。，:)"

// splitSource checks whether the last fragment is a source-attribution line.
// On a match the fragment is removed from the body and the cleaned
// attribution is returned; otherwise the fragments come back unchanged.
func splitSource(fragments []string) ([]string, string) {
	if len(fragments) == 0 {
		return fragments, ""
	}

	last := fragments[len(fragments)-1]
	m := sourcePattern.FindStringSubmatch(last)
	if m == nil {
		return fragments, ""
	}

	source := strings.Trim(m[1], sourceTrimSet)
	return fragments[:len(fragments)-1], source
}
