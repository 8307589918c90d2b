package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"speech-corpus/pkg/domain"
)

// speechPathMarker identifies discourse pages among the site URLs a sitemap
// lists. Everything else (dossiers, reports, consultations) is skipped.
const speechPathMarker = "/discours/"

// XML structures for parsing sitemap XML

// urlSet represents a regular sitemap structure
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

// urlEntry represents a single URL entry in XML
type urlEntry struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// sitemapIndex represents a sitemap index structure
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// sitemapRef represents a reference to another sitemap in an index
type sitemapRef struct {
	Location string `xml:"loc"`
}

// SitemapSource discovers speech URLs from the site's XML sitemaps. Sitemap
// entries carry no catalog metadata, so the records it produces hold only a
// derived id, the URL, and the page's last-modified date.
type SitemapSource struct {
	client *http.Client
}

// NewSitemapSource creates a new sitemap source.
func NewSitemapSource() *SitemapSource {
	return &SitemapSource{
		client: &http.Client{},
	}
}

// FetchRecords fetches the sitemap at sitemapURL, following sitemap-index
// indirection, and converts discourse-page entries to catalog records.
// Non-discourse URLs are skipped.
func (s *SitemapSource) FetchRecords(sitemapURL string) ([]domain.Speech, error) {
	entries, err := s.parseFromURL(sitemapURL)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Speech, 0, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry.Location, speechPathMarker) {
			continue
		}

		rec := domain.Speech{
			ID:  URLID(entry.Location),
			URL: entry.Location,
		}
		// lastmod is the page's update date, possibly with a time part
		if len(entry.LastMod) >= len(DateLayout) {
			if _, err := time.Parse(DateLayout, entry.LastMod[:len(DateLayout)]); err == nil {
				rec.MiseAJour = entry.LastMod[:len(DateLayout)]
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no speech URLs in sitemap")
	}

	return records, nil
}

// parseFromURL fetches and parses a sitemap, recursing into sitemap indexes.
func (s *SitemapSource) parseFromURL(sitemapURL string) ([]urlEntry, error) {
	resp, err := s.client.Get(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Read first few bytes to detect the sitemap type
	peekBuffer := make([]byte, 512)
	n, err := resp.Body.Read(peekBuffer)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	head := string(peekBuffer[:n])
	reader := io.MultiReader(strings.NewReader(head), resp.Body)

	if strings.Contains(head, "<sitemapindex") {
		childURLs, err := parseSitemapIndex(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sitemap index: %w", err)
		}
		if len(childURLs) == 0 {
			return nil, fmt.Errorf("sitemap index contained no sitemap URLs")
		}

		// Parse all sitemaps in the index and combine their entries,
		// skipping children that fail
		var allEntries []urlEntry
		for _, childURL := range childURLs {
			entries, err := s.parseFromURL(childURL)
			if err != nil {
				continue
			}
			allEntries = append(allEntries, entries...)
		}

		if len(allEntries) == 0 {
			return nil, fmt.Errorf("no entries found in any sitemap from index")
		}

		return allEntries, nil
	}

	return parseSitemap(reader)
}

// parseSitemapIndex parses a sitemap index file
func parseSitemapIndex(reader io.Reader) ([]string, error) {
	var index sitemapIndex
	if err := xml.NewDecoder(reader).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, ref := range index.Sitemaps {
		if ref.Location != "" {
			urls = append(urls, ref.Location)
		}
	}

	return urls, nil
}

// parseSitemap parses a regular sitemap XML
func parseSitemap(reader io.Reader) ([]urlEntry, error) {
	var set urlSet
	if err := xml.NewDecoder(reader).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	entries := make([]urlEntry, 0, len(set.URLs))
	for _, entry := range set.URLs {
		if entry.Location != "" {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
