// Package crawler runs the one-shot crawl over the filtered catalog: fetch
// each record's page, extract the transcript, and assemble output records.
package crawler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"speech-corpus/pkg/content"
	"speech-corpus/pkg/domain"
	"speech-corpus/pkg/faillog"
	"speech-corpus/pkg/httpclient"
)

// maxBodySize caps how much of a response body is read (10 MB).
const maxBodySize = 10 << 20

// Fetcher issues the per-record HTTP GET. Implemented by httpclient.HTTPClient.
type Fetcher interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// SpeechSaver persists records as they are produced. Optional; used for the
// MongoDB mirror.
type SpeechSaver interface {
	SaveSpeech(ctx context.Context, speech *domain.Speech) error
}

// Stats summarizes a completed run.
type Stats struct {
	Selected    int
	Succeeded   int
	FetchErrors int
	Misses      int
	Duration    time.Duration
}

// Config configures a Crawler. Client and Extractor fall back to the
// defaults for vie-publique.fr when nil; Saver is optional.
type Config struct {
	Client    Fetcher
	Extractor content.Extractor
	Failures  *faillog.Logger
	Saver     SpeechSaver
	Workers   int
	// Limit caps the number of records processed. Zero or negative means
	// no limit.
	Limit int
}

// Crawler fetches speech pages and extracts transcripts with a bounded
// worker pool. The politeness delay lives in the HTTP client, so the request
// rate does not depend on the worker count.
type Crawler struct {
	client    Fetcher
	extractor content.Extractor
	failures  *faillog.Logger
	saver     SpeechSaver
	workers   int
	limit     int
}

// New creates a new crawler.
func New(cfg Config) *Crawler {
	client := cfg.Client
	if client == nil {
		client = httpclient.NewClient(httpclient.Config{ClientType: httpclient.BrowserClient})
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = content.NewSpeechExtractor()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Crawler{
		client:    client,
		extractor: extractor,
		failures:  cfg.Failures,
		saver:     cfg.Saver,
		workers:   workers,
		limit:     cfg.Limit,
	}
}

type result struct {
	record   domain.Speech
	fetchErr bool
	miss     bool
}

// Run processes every record and returns the assembled output records.
//
// A record whose fetch fails (network error or non-2xx status) is logged as
// a fetch-error and produces no output record. A record whose page yields no
// transcript is logged as an extraction-miss but IS emitted with empty text;
// the post-processor drops empty-text rows later. Output order follows
// completion order, not input order.
func (c *Crawler) Run(ctx context.Context, records []domain.Speech) ([]domain.Speech, Stats, error) {
	if c.limit > 0 && len(records) > c.limit {
		records = records[:c.limit]
	}

	start := time.Now()
	stats := Stats{Selected: len(records)}
	if len(records) == 0 {
		return nil, stats, nil
	}

	log.Printf("Crawler: Processing %d records with %d workers", len(records), c.workers)

	jobs := make(chan domain.Speech, len(records))
	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)

	results := make(chan result, len(records))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case rec, ok := <-jobs:
					if !ok {
						return
					}
					results <- c.processRecord(ctx, rec)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect in a single goroutine, so the counters need no lock
	var out []domain.Speech
	processed := 0
	for res := range results {
		processed++
		switch {
		case res.fetchErr:
			stats.FetchErrors++
		case res.miss:
			stats.Misses++
			out = append(out, res.record)
		default:
			stats.Succeeded++
			out = append(out, res.record)
		}
		if processed%100 == 0 {
			log.Printf("Crawler: Progress: %d/%d processed, %d fetch errors, %d misses",
				processed, len(records), stats.FetchErrors, stats.Misses)
		}
	}

	stats.Duration = time.Since(start)
	log.Printf("Crawler: Completed: %d emitted, %d fetch errors, %d extraction misses in %s",
		len(out), stats.FetchErrors, stats.Misses, stats.Duration)

	if err := ctx.Err(); err != nil {
		return out, stats, err
	}
	return out, stats, nil
}

// processRecord fetches one speech page and assembles the output record.
func (c *Crawler) processRecord(ctx context.Context, rec domain.Speech) result {
	htmlContent, err := c.fetchHTML(ctx, rec.URL)
	if err != nil {
		log.Printf("Crawler: Failed to fetch %s (%s): %v", rec.URL, rec.ID, err)
		c.logFailure(rec, domain.ReasonFetchError)
		return result{fetchErr: true}
	}

	res := result{}
	extraction, err := c.extractor.ExtractTranscript(htmlContent)
	if err != nil {
		c.logFailure(rec, domain.ReasonExtractionMiss)
		res.miss = true
	}

	rec.Texte = extraction.Text
	rec.Source = extraction.Source

	// Records discovered outside the catalog come in without a title
	if rec.Titre == "" {
		if title, titleErr := content.ExtractTitle(htmlContent); titleErr == nil {
			rec.Titre = title
		}
	}

	if c.saver != nil {
		if err := c.saver.SaveSpeech(ctx, &rec); err != nil {
			log.Printf("Crawler: Failed to save %s: %v", rec.ID, err)
		}
	}

	res.record = rec
	return res
}

// fetchHTML fetches a speech page. Any non-2xx status is a fetch error; the
// crawl never retries.
func (c *Crawler) fetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	bodyStr := string(body)
	if strings.TrimSpace(bodyStr) == "" {
		return "", fmt.Errorf("server returned empty response")
	}

	return bodyStr, nil
}

func (c *Crawler) logFailure(rec domain.Speech, reason string) {
	if c.failures == nil {
		return
	}
	entry := domain.FailureEntry{ID: rec.ID, URL: rec.URL, Reason: reason}
	if err := c.failures.Log(entry); err != nil {
		log.Printf("Crawler: Failed to record failure for %s: %v", rec.ID, err)
	}
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
