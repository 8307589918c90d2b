// Package dataset reads and writes the crawl's JSON artifacts.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"speech-corpus/pkg/catalog"
	"speech-corpus/pkg/domain"
)

// DefaultPath returns the conventional dataset location for a crawl range:
// <dir>/french_speeches_<begin>_to_<end>.json.
func DefaultPath(dir string, dr catalog.DateRange) string {
	return filepath.Join(dir, "french_speeches_"+dr.Slug()+".json")
}

// Write writes records as an indented JSON array, creating the parent
// directory as needed. HTML escaping is off so URLs stay readable in the
// artifact.
func Write(path string, records []domain.Speech) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// WriteRaw writes generic JSON rows the same way Write writes typed records.
// The post-processor uses it for the cleaned artifact, whose column set is
// decided at runtime.
func WriteRaw(path string, rows []map[string]interface{}) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// Load reads a dataset artifact back into typed records.
func Load(path string) ([]domain.Speech, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	var records []domain.Speech
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return records, nil
}

// LoadRaw reads a dataset artifact as generic JSON objects, the shape the
// post-processor works on.
func LoadRaw(path string) ([]map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	var rows []map[string]interface{}
	if err := json.NewDecoder(file).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return rows, nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset file: %w", err)
	}
	return file, nil
}
