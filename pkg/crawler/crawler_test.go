package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"speech-corpus/pkg/domain"
	"speech-corpus/pkg/faillog"
	"speech-corpus/pkg/httpclient"
)

const speechPage = `<html lang="fr">
<head><title>Déclaration de M. Jacques Chirac</title></head>
<body>
	<div class="field field--name-field-texte-integral field--type-text-long">
		<p>Mesdames, Messieurs,</p>
		<p>Je vous remercie.</p>
		<p>(Source : France Inter.)</p>
	</div>
</body></html>`

const emptyPage = `<html><head><title>Page sans discours</title></head><body></body></html>`

// mockSaver records saved speeches for inspection
type mockSaver struct {
	mu    sync.Mutex
	saved []*domain.Speech
}

func (m *mockSaver) SaveSpeech(ctx context.Context, speech *domain.Speech) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, speech)
	return nil
}

func (m *mockSaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func newTestLogger(t *testing.T) *faillog.Logger {
	t.Helper()
	dir, err := os.MkdirTemp("", "test-crawler-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	logger, err := faillog.New(filepath.Join(dir, "failures.jsonl"))
	if err != nil {
		t.Fatalf("Failed to create failure logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func testClient() *httpclient.HTTPClient {
	return httpclient.NewClient(httpclient.Config{ClientType: httpclient.DefaultClient, RequestDelay: -1})
}

func TestCrawler_Run(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/discours/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(speechPage))
	})
	mux.HandleFunc("/discours/2", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/discours/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyPage))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	records := []domain.Speech{
		{ID: "X1", Titre: "Déclaration", URL: server.URL + "/discours/1", Prononciation: "2005-06-01"},
		{ID: "X2", Titre: "Interview", URL: server.URL + "/discours/2", Prononciation: "2005-06-02"},
		{ID: "X3", Titre: "Allocution", URL: server.URL + "/discours/3", Prononciation: "2005-06-03"},
	}

	logger := newTestLogger(t)
	c := New(Config{Client: testClient(), Failures: logger, Workers: 2})

	out, stats, err := c.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Failed to run crawl: %v", err)
	}

	// X2's fetch failed, so it produces no output record; X3 missed
	// extraction but is still emitted with empty text
	if len(out) != 2 {
		t.Fatalf("Expected 2 output records, got %d", len(out))
	}

	byID := make(map[string]domain.Speech, len(out))
	for _, rec := range out {
		byID[rec.ID] = rec
	}

	x1, ok := byID["X1"]
	if !ok {
		t.Fatal("Expected X1 in output")
	}
	if x1.Texte != "Mesdames, Messieurs,\nJe vous remercie." {
		t.Errorf("Expected extracted transcript for X1, got %q", x1.Texte)
	}
	if x1.Source != "France Inter" {
		t.Errorf("Expected source 'France Inter' for X1, got '%s'", x1.Source)
	}

	if _, ok := byID["X2"]; ok {
		t.Error("Expected no output record for failed fetch X2")
	}

	x3, ok := byID["X3"]
	if !ok {
		t.Fatal("Expected X3 in output despite extraction miss")
	}
	if x3.Texte != "" {
		t.Errorf("Expected empty text for X3, got %q", x3.Texte)
	}

	if stats.Selected != 3 || stats.Succeeded != 1 || stats.FetchErrors != 1 || stats.Misses != 1 {
		t.Errorf("Expected stats {3 selected, 1 succeeded, 1 fetch error, 1 miss}, got %+v", stats)
	}

	// Both failures must be in the log with the right reasons
	entries, err := faillog.Read(logger.Path())
	if err != nil {
		t.Fatalf("Failed to read failure log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 failure entries, got %d", len(entries))
	}
	reasons := make(map[string]string, len(entries))
	for _, e := range entries {
		reasons[e.ID] = e.Reason
	}
	if reasons["X2"] != domain.ReasonFetchError {
		t.Errorf("Expected fetch-error for X2, got '%s'", reasons["X2"])
	}
	if reasons["X3"] != domain.ReasonExtractionMiss {
		t.Errorf("Expected extraction-miss for X3, got '%s'", reasons["X3"])
	}
}

func TestCrawler_Run_FillsMissingTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(speechPage))
	}))
	defer server.Close()

	// A record discovered from a URL list has no title of its own
	records := []domain.Speech{{ID: "abc123", URL: server.URL + "/discours/9"}}

	c := New(Config{Client: testClient(), Workers: 1})
	out, _, err := c.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Failed to run crawl: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 output record, got %d", len(out))
	}
	if out[0].Titre != "Déclaration de M. Jacques Chirac" {
		t.Errorf("Expected title filled from the page, got '%s'", out[0].Titre)
	}
}

func TestCrawler_Run_SaverReceivesRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(speechPage))
	}))
	defer server.Close()

	records := []domain.Speech{
		{ID: "X1", Titre: "Un", URL: server.URL + "/1"},
		{ID: "X2", Titre: "Deux", URL: server.URL + "/2"},
	}

	saver := &mockSaver{}
	c := New(Config{Client: testClient(), Saver: saver, Workers: 2})

	out, _, err := c.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Failed to run crawl: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 output records, got %d", len(out))
	}
	if saver.count() != 2 {
		t.Errorf("Expected saver to receive 2 records, got %d", saver.count())
	}
}

func TestCrawler_Run_Limit(t *testing.T) {
	var mu sync.Mutex
	served := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		mu.Unlock()
		w.Write([]byte(speechPage))
	}))
	defer server.Close()

	records := []domain.Speech{
		{ID: "X1", URL: server.URL + "/1"},
		{ID: "X2", URL: server.URL + "/2"},
		{ID: "X3", URL: server.URL + "/3"},
	}

	c := New(Config{Client: testClient(), Workers: 1, Limit: 1})
	out, stats, err := c.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Failed to run crawl: %v", err)
	}

	if stats.Selected != 1 {
		t.Errorf("Expected 1 selected record under limit, got %d", stats.Selected)
	}
	if len(out) != 1 || out[0].ID != "X1" {
		t.Errorf("Expected only the first record processed, got %v", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if served != 1 {
		t.Errorf("Expected 1 request to the server, got %d", served)
	}
}

func TestCrawler_Run_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(speechPage))
	}))
	defer server.Close()

	records := []domain.Speech{
		{ID: "X1", URL: server.URL + "/1"},
		{ID: "X2", URL: server.URL + "/2"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{Client: testClient(), Workers: 1})
	out, _, err := c.Run(ctx, records)
	if err == nil {
		t.Error("Expected context error for cancelled run, got nil")
	}
	if len(out) != 0 {
		t.Errorf("Expected no output records under a cancelled context, got %d", len(out))
	}
}

func TestCrawler_Run_NoRecords(t *testing.T) {
	c := New(Config{Client: testClient(), Workers: 4})
	out, stats, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to run empty crawl: %v", err)
	}
	if len(out) != 0 || stats.Selected != 0 {
		t.Errorf("Expected empty run to produce nothing, got %d records", len(out))
	}
}
