package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"speech-corpus/pkg/domain"
)

// LoadURLFile reads speech page URLs from a plain-text file (one URL per
// line) and converts them to minimal catalog records with md5-derived ids.
// Blank lines and lines starting with "#" are skipped. Intended for ad-hoc
// additions that are in neither the catalog nor the feed.
func LoadURLFile(path string) ([]domain.Speech, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer file.Close()

	var records []domain.Speech
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimRight(line, ", \t")
		if line == "" {
			continue
		}

		records = append(records, domain.Speech{
			ID:  URLID(line),
			URL: line,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading URL file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no URLs found in file")
	}

	return records, nil
}
