package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSitemapSourceFetchRecords(t *testing.T) {
	xmlData := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url>
		<loc>https://www.vie-publique.fr/discours/290000-declaration</loc>
		<lastmod>2024-01-15T10:02:00+01:00</lastmod>
	</url>
	<url>
		<loc>https://www.vie-publique.fr/rapport/12345-rapport-annuel</loc>
		<lastmod>2024-01-16</lastmod>
	</url>
	<url>
		<loc>https://www.vie-publique.fr/discours/290001-interview</loc>
	</url>
</urlset>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(xmlData))
	}))
	defer server.Close()

	records, err := NewSitemapSource().FetchRecords(server.URL + "/sitemap.xml")
	if err != nil {
		t.Fatalf("FetchRecords failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 discourse records, got %d", len(records))
	}

	first := records[0]
	if first.URL != "https://www.vie-publique.fr/discours/290000-declaration" {
		t.Errorf("Unexpected first URL: %s", first.URL)
	}
	if first.ID != URLID(first.URL) {
		t.Errorf("Expected id derived from URL, got %s", first.ID)
	}
	if first.MiseAJour != "2024-01-15" {
		t.Errorf("Expected update date '2024-01-15' from lastmod, got %q", first.MiseAJour)
	}

	second := records[1]
	if second.URL != "https://www.vie-publique.fr/discours/290001-interview" {
		t.Errorf("Unexpected second URL: %s", second.URL)
	}
	if second.MiseAJour != "" {
		t.Errorf("Expected no update date without lastmod, got %q", second.MiseAJour)
	}
}

func TestSitemapSourceFollowsIndex(t *testing.T) {
	sitemap1 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url>
		<loc>https://www.vie-publique.fr/discours/100001-allocution</loc>
	</url>
</urlset>`

	sitemap2 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url>
		<loc>https://www.vie-publique.fr/discours/100002-conference</loc>
	</url>
</urlset>`

	var serverURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		switch r.URL.Path {
		case "/sitemap-index.xml":
			index := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<sitemap>
		<loc>` + serverURL + `/sitemap1.xml</loc>
	</sitemap>
	<sitemap>
		<loc>` + serverURL + `/sitemap2.xml</loc>
	</sitemap>
</sitemapindex>`
			w.Write([]byte(index))
		case "/sitemap1.xml":
			w.Write([]byte(sitemap1))
		case "/sitemap2.xml":
			w.Write([]byte(sitemap2))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	serverURL = server.URL

	records, err := NewSitemapSource().FetchRecords(server.URL + "/sitemap-index.xml")
	if err != nil {
		t.Fatalf("FetchRecords failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records from both child sitemaps, got %d", len(records))
	}

	urls := make(map[string]bool)
	for _, rec := range records {
		urls[rec.URL] = true
	}
	if !urls["https://www.vie-publique.fr/discours/100001-allocution"] ||
		!urls["https://www.vie-publique.fr/discours/100002-conference"] {
		t.Errorf("Expected URLs from both child sitemaps, got %v", urls)
	}
}

func TestSitemapSourceNoSpeechURLs(t *testing.T) {
	xmlData := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url>
		<loc>https://www.vie-publique.fr/rapport/12345-rapport-annuel</loc>
	</url>
</urlset>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(xmlData))
	}))
	defer server.Close()

	if _, err := NewSitemapSource().FetchRecords(server.URL); err == nil {
		t.Error("Expected an error for a sitemap without discourse URLs, got nil")
	}
}

func TestParseSitemapInvalidXML(t *testing.T) {
	_, err := parseSitemap(strings.NewReader(`<?xml version="1.0"?><invalid>`))
	if err == nil {
		t.Error("Expected error for invalid XML, got nil")
	}
}
