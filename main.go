package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"speech-corpus/pkg/catalog"
)

func main() {
	// Default to the seed catalog location the crawl uses
	catalogPath := "dataset/vp_discours.json"

	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}

	records, err := catalog.Load(catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	var earliest, latest time.Time
	dated := 0
	for _, rec := range records {
		d, err := time.Parse(catalog.DateLayout, rec.Prononciation)
		if err != nil {
			continue
		}
		dated++
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
		if d.After(latest) {
			latest = d
		}
	}

	fmt.Printf("Loaded %d records (%d with delivery dates)\n", len(records), dated)
	if dated > 0 {
		fmt.Printf("Delivery dates span %s to %s\n", earliest.Format(catalog.DateLayout), latest.Format(catalog.DateLayout))
	}

	// Print first 10 entries
	maxEntries := 10
	if len(records) < maxEntries {
		maxEntries = len(records)
	}

	fmt.Printf("Showing first %d:\n\n", maxEntries)

	for i := 0; i < maxEntries; i++ {
		rec := records[i]
		fmt.Printf("Entry %d:\n", i+1)
		fmt.Printf("  ID: %s\n", rec.ID)
		fmt.Printf("  Title: %s\n", rec.Titre)
		if rec.Prononciation != "" {
			fmt.Printf("  Delivered: %s\n", rec.Prononciation)
		}
		fmt.Printf("  URL: %s\n", rec.URL)
		fmt.Println()
	}
}
