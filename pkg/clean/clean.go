// Package clean implements the post-processing pass over a crawl's dataset
// artifact: key renaming, empty-text row dropping, id-deduplication, and
// sparse-column dropping.
//
// It works on generic JSON rows rather than typed records because the column
// set of the cleaned artifact is decided at runtime.
package clean

import (
	"fmt"
	"sort"
	"strings"
)

// SparseThreshold is the default minimum populated ratio a column needs to
// survive the pass.
const SparseThreshold = 0.05

// keyRenames maps the catalog's French field names to the cleaned dataset's
// English ones. Keys not listed (id, url, media, source) keep their names.
var keyRenames = map[string]string{
	"titre":         "title",
	"domaine":       "domain",
	"prononciation": "delivery_date",
	"intervenants":  "speakers",
	"auteur_moral":  "institutional_authors",
	"circonstance":  "circumstance",
	"type_emetteur": "issuer_type",
	"type_document": "document_type",
	"type_media":    "media_type",
	"resume":        "summary",
	"thematiques":   "themes",
	"descripteurs":  "descriptors",
	"mise_en_ligne": "online_date",
	"mise_a_jour":   "update_date",
	"texte":         "text",
}

// speakerKeyRenames maps the nested keys inside each speakers entry.
var speakerKeyRenames = map[string]string{
	"nom":     "name",
	"qualite": "role",
}

// Report summarizes what the post-processing pass changed.
type Report struct {
	RowsIn         int
	RowsOut        int
	EmptyTextRows  int
	Duplicates     int
	DroppedColumns []string
}

// Process runs the full cleanup over raw dataset rows and returns the
// cleaned rows plus a report. Steps, in order: rename keys, drop rows whose
// text is missing or whitespace-only, dedupe by id keeping the first
// occurrence, then drop columns populated in less than threshold of the
// surviving rows. The order makes the pass idempotent: running it over its
// own output changes nothing.
//
// A threshold <= 0 means the default SparseThreshold.
func Process(rows []map[string]interface{}, threshold float64) ([]map[string]interface{}, Report) {
	if threshold <= 0 {
		threshold = SparseThreshold
	}
	report := Report{RowsIn: len(rows)}

	renamed := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		renamed = append(renamed, RenameKeys(row))
	}

	kept := dropEmptyTextRows(renamed, &report)
	deduped := dedupeByID(kept, &report)
	out := dropSparseColumns(deduped, threshold, &report)

	report.RowsOut = len(out)
	return out, report
}

// RenameKeys returns a copy of row with French keys renamed to English,
// including the nested speaker keys. Values are never modified, only key
// names change.
func RenameKeys(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for key, value := range row {
		newKey, ok := keyRenames[key]
		if !ok {
			newKey = key
		}
		if newKey == "speakers" {
			value = renameSpeakerKeys(value)
		}
		out[newKey] = value
	}
	return out
}

func renameSpeakerKeys(value interface{}) interface{} {
	list, ok := value.([]interface{})
	if !ok {
		return value
	}

	renamed := make([]interface{}, 0, len(list))
	for _, item := range list {
		speaker, ok := item.(map[string]interface{})
		if !ok {
			renamed = append(renamed, item)
			continue
		}
		out := make(map[string]interface{}, len(speaker))
		for key, v := range speaker {
			newKey, ok := speakerKeyRenames[key]
			if !ok {
				newKey = key
			}
			out[newKey] = v
		}
		renamed = append(renamed, out)
	}
	return renamed
}

// dropEmptyTextRows removes rows whose text is null, missing, empty, or
// whitespace-only. Every emitted row is guaranteed a non-empty transcript.
func dropEmptyTextRows(rows []map[string]interface{}, report *Report) []map[string]interface{} {
	kept := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		text, _ := row["text"].(string)
		if strings.TrimSpace(text) == "" {
			report.EmptyTextRows++
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// dedupeByID keeps the first-seen row for each id. Rows without an id are
// kept as-is; there is nothing to deduplicate them on.
func dedupeByID(rows []map[string]interface{}, report *Report) []map[string]interface{} {
	seen := make(map[string]bool, len(rows))
	kept := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		id, ok := row["id"]
		if !ok || id == nil {
			kept = append(kept, row)
			continue
		}
		key := fmt.Sprint(id)
		if seen[key] {
			report.Duplicates++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept
}

// dropSparseColumns removes columns whose populated ratio over the surviving
// rows is below threshold. Nulls, empty strings, and empty lists count as
// not populated; so does a key simply missing from a row.
func dropSparseColumns(rows []map[string]interface{}, threshold float64, report *Report) []map[string]interface{} {
	if len(rows) == 0 {
		return rows
	}

	populated := make(map[string]int)
	for _, row := range rows {
		for key, value := range row {
			if isPopulated(value) {
				populated[key]++
			} else if _, ok := populated[key]; !ok {
				populated[key] = 0
			}
		}
	}

	drop := make(map[string]bool)
	for key, count := range populated {
		if float64(count)/float64(len(rows)) < threshold {
			drop[key] = true
			report.DroppedColumns = append(report.DroppedColumns, key)
		}
	}
	if len(drop) == 0 {
		return rows
	}
	sort.Strings(report.DroppedColumns)

	for _, row := range rows {
		for key := range drop {
			delete(row, key)
		}
	}
	return rows
}

func isPopulated(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}
