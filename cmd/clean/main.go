package main

import (
	"flag"
	"log"
	"time"

	"speech-corpus/pkg/clean"
	"speech-corpus/pkg/dataset"
)

func main() {
	var (
		inPath    = flag.String("in", "", "Path to the crawl dataset JSON to clean")
		outPath   = flag.String("out", "", "Path for the cleaned dataset JSON")
		threshold = flag.Float64("threshold", clean.SparseThreshold, "Minimum populated ratio a column needs to survive")
	)
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		log.Fatalf("Both -in and -out are required")
	}

	start := time.Now()

	rows, err := dataset.LoadRaw(*inPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	cleaned, report := clean.Process(rows, *threshold)

	if err := dataset.WriteRaw(*outPath, cleaned); err != nil {
		log.Fatalf("Failed to write cleaned dataset: %v", err)
	}

	log.Printf("Cleaned %d rows down to %d: dropped %d empty-text rows, %d duplicates",
		report.RowsIn, report.RowsOut, report.EmptyTextRows, report.Duplicates)
	if len(report.DroppedColumns) > 0 {
		log.Printf("Dropped sparse columns: %v", report.DroppedColumns)
	}
	log.Printf("Wrote %s. Duration: %s", *outPath, time.Since(start))
}
