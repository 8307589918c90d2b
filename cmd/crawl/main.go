package main

import (
	"context"
	"flag"
	"log"
	"time"

	"speech-corpus/pkg/catalog"
	"speech-corpus/pkg/crawler"
	"speech-corpus/pkg/dataset"
	"speech-corpus/pkg/db"
	"speech-corpus/pkg/faillog"
	"speech-corpus/pkg/httpclient"
)

func main() {
	var (
		catalogPath = flag.String("catalog", "dataset/vp_discours.json", "Path to the speech metadata catalog JSON")
		begin       = flag.String("begin", catalog.CorpusBegin.Format(catalog.DateLayout), "Start of the delivery-date range (YYYY-MM-DD, inclusive)")
		end         = flag.String("end", catalog.CorpusEnd.Format(catalog.DateLayout), "End of the delivery-date range (YYYY-MM-DD, inclusive)")
		outDir      = flag.String("out", "dataset", "Directory for the dataset artifact")
		logsDir     = flag.String("logs", "logs", "Directory for the failure log")
		workers     = flag.Int("workers", 4, "Number of parallel fetch workers")
		delay       = flag.Duration("delay", httpclient.DefaultRequestDelay, "Politeness delay between requests")
		timeout     = flag.Duration("timeout", httpclient.DefaultTimeout, "Per-request timeout")
		limit       = flag.Int("limit", 0, "Max records to process (<=0 means no limit)")
		feedURL     = flag.String("feed", "", "Optional RSS feed URL to supplement the catalog")
		sitemapURL  = flag.String("sitemap", "", "Optional sitemap URL to discover extra speech pages")
		urlsFile    = flag.String("urls-file", "", "Optional file with extra speech URLs, one per line")

		mongoURI = flag.String("mongo-uri", "", "Optional MongoDB connection string for the crawl mirror")
		mongoDB  = flag.String("mongo-db", "speechcorpus", "MongoDB database name for the crawl mirror")
	)
	flag.Parse()

	ctx := context.Background()

	dr, err := catalog.ParseDateRange(*begin, *end)
	if err != nil {
		log.Fatalf("Invalid date range: %v", err)
	}

	records, err := catalog.Load(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Loaded %d catalog records from %s", len(records), *catalogPath)

	if *feedURL != "" {
		extra, err := catalog.NewFeedSource().FetchRecords(*feedURL)
		if err != nil {
			log.Fatalf("Failed to fetch feed: %v", err)
		}
		records = catalog.Merge(records, extra)
		log.Printf("Merged %d feed records, catalog now holds %d", len(extra), len(records))
	}

	selected := catalog.FilterByDateRange(records, dr)

	// Sitemap and ad-hoc URLs carry no delivery date, so they join after
	// the filter; NewURLs keeps catalog speeches from re-entering as bare
	// URL records
	if *sitemapURL != "" {
		extra, err := catalog.NewSitemapSource().FetchRecords(*sitemapURL)
		if err != nil {
			log.Fatalf("Failed to fetch sitemap: %v", err)
		}
		fresh := catalog.NewURLs(records, extra)
		selected = catalog.Merge(selected, fresh)
		log.Printf("Merged %d new sitemap records", len(fresh))
	}

	if *urlsFile != "" {
		extra, err := catalog.LoadURLFile(*urlsFile)
		if err != nil {
			log.Fatalf("Failed to load URL file: %v", err)
		}
		selected = catalog.Merge(selected, catalog.NewURLs(records, extra))
	}
	log.Printf("Selected %d records in range %s", len(selected), dr)

	failures, err := faillog.New(faillog.DefaultPath(*logsDir, dr))
	if err != nil {
		log.Fatalf("Failed to open failure log: %v", err)
	}
	defer failures.Close()

	var saver crawler.SpeechSaver
	if *mongoURI != "" {
		dbClient := db.NewClient(*mongoURI, *mongoDB, "speeches")
		if err := dbClient.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer dbClient.Close(ctx)

		if existing, err := dbClient.GetAllIDs(ctx); err == nil {
			log.Printf("Mongo mirror already holds %d records", len(existing))
		}
		saver = dbClient
	}

	client := httpclient.NewClient(httpclient.Config{
		ClientType:   httpclient.BrowserClient,
		Timeout:      *timeout,
		RequestDelay: *delay,
	})

	service := crawler.New(crawler.Config{
		Client:   client,
		Failures: failures,
		Saver:    saver,
		Workers:  *workers,
		Limit:    *limit,
	})

	start := time.Now()
	out, stats, err := service.Run(ctx, selected)
	if err != nil {
		log.Fatalf("Crawl failed: %v", err)
	}

	outPath := dataset.DefaultPath(*outDir, dr)
	if err := dataset.Write(outPath, out); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	log.Printf("Wrote %d records to %s (%d fetch errors, %d extraction misses logged to %s)",
		len(out), outPath, stats.FetchErrors, stats.Misses, failures.Path())
	log.Printf("Done. Duration: %s", time.Since(start))
}
