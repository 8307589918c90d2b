// Package faillog writes the crawl failure log: one JSON object per line,
// append-only, so a run's skipped and failed records can be inspected later.
package faillog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"speech-corpus/pkg/catalog"
	"speech-corpus/pkg/domain"
)

// Logger appends failure entries to a JSONL file. A mutex serializes writes
// so concurrent workers cannot interleave partial lines.
type Logger struct {
	mu    sync.Mutex
	file  *os.File
	enc   *json.Encoder
	path  string
	count int
}

// New opens the failure log at path in append mode, creating the parent
// directory and the file as needed. Existing entries are kept.
func New(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open failure log: %w", err)
	}

	return &Logger{
		file: file,
		enc:  json.NewEncoder(file),
		path: path,
	}, nil
}

// Log appends one entry. Sets the timestamp if the caller left it zero.
func (l *Logger) Log(entry domain.FailureEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := l.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to write failure entry: %w", err)
	}
	l.count++
	return nil
}

// Count returns the number of entries written through this logger.
func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// DefaultPath returns the conventional failure-log location for a crawl
// range: <dir>/failures_<begin>_to_<end>.jsonl.
func DefaultPath(dir string, dr catalog.DateRange) string {
	return filepath.Join(dir, "failures_"+dr.Slug()+".jsonl")
}

// Read loads every entry from a failure log, for inspection and tests.
func Read(path string) ([]domain.FailureEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open failure log: %w", err)
	}
	defer file.Close()

	var entries []domain.FailureEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.FailureEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("failed to parse failure entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading failure log: %w", err)
	}

	return entries, nil
}
