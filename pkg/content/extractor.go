package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Selectors for the transcript container on vie-publique.fr discourse pages.
const (
	// transcriptSelector is the full-text field on the current page template
	transcriptSelector = "div.field--name-field-texte-integral"

	// textLongSelector is the wider long-text field wrapper, present on some
	// older template variants where the named field is missing
	textLongSelector = "div.field--type-text-long"
)

// ErrNoTranscript is returned when no extraction strategy matched the page.
var ErrNoTranscript = errors.New("no transcript content matched")

// Extraction holds what was recovered from a speech page: the transcript
// body, the optional trailing source-attribution line, and the name of the
// strategy that matched.
type Extraction struct {
	Text     string
	Source   string
	Strategy string
}

// Extractor defines an interface for extracting a speech transcript from HTML content
type Extractor interface {
	ExtractTranscript(htmlContent string) (Extraction, error)
}

// strategy is one structural heuristic tried against a page. It returns the
// raw text fragments of the region it matched, already trimmed, empty
// fragments dropped.
type strategy struct {
	name    string
	extract func(htmlContent string) ([]string, error)
}

// SpeechExtractor implements the Extractor interface for vie-publique.fr
// discourse pages. Strategies are tried in order and the first one yielding
// non-empty fragments wins: the known transcript container, then the
// long-text field variant, then generic article extraction for pages where
// neither selector exists.
type SpeechExtractor struct {
	strategies []strategy
}

// NewSpeechExtractor creates a new speech extractor with the default
// strategy order.
func NewSpeechExtractor() *SpeechExtractor {
	return &SpeechExtractor{
		strategies: []strategy{
			{name: "transcript-container", extract: selectorFragments(transcriptSelector)},
			{name: "text-long-field", extract: selectorFragments(textLongSelector)},
			{name: "readability", extract: readabilityFragments},
		},
	}
}

// ExtractTranscript applies the strategies in order. The fragments of the
// first match are checked for a trailing source-attribution line, then
// joined with newlines so paragraph breaks survive. Returns ErrNoTranscript
// when nothing matched.
func (e *SpeechExtractor) ExtractTranscript(htmlContent string) (Extraction, error) {
	for _, s := range e.strategies {
		fragments, err := s.extract(htmlContent)
		if err != nil || len(fragments) == 0 {
			continue
		}

		body, source := splitSource(fragments)
		text := strings.Join(body, "\n")
		if text == "" && source == "" {
			continue
		}

		return Extraction{
			Text:     text,
			Source:   source,
			Strategy: s.name,
		}, nil
	}

	return Extraction{}, ErrNoTranscript
}

// selectorFragments builds a strategy function that collects the text nodes
// under every element matching the given selector.
func selectorFragments(selector string) func(string) ([]string, error) {
	return func(htmlContent string) ([]string, error) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}

		container := doc.Find(selector)
		if container.Length() == 0 {
			return nil, nil
		}

		return collectTextNodes(container), nil
	}
}

// collectTextNodes walks the selection in document order and returns each
// text node as one fragment, trimmed, with empty fragments dropped. Script
// and style bodies are skipped.
func collectTextNodes(sel *goquery.Selection) []string {
	var fragments []string
	sel.Contents().Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			if text := strings.TrimSpace(s.Text()); text != "" {
				fragments = append(fragments, text)
			}
		case "script", "style", "noscript":
			// skip
		default:
			fragments = append(fragments, collectTextNodes(s)...)
		}
	})
	return fragments
}

// readabilityFragments extracts the main article text with readability and
// splits it into trimmed non-empty lines. Last-resort strategy for pages
// that carry the transcript outside the known field containers.
func readabilityFragments(htmlContent string) ([]string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	var fragments []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fragments = append(fragments, line)
		}
	}
	return fragments, nil
}

// ExtractTitle extracts the page title from HTML content with fallback mechanisms.
// Used to fill in titles for records discovered outside the seed catalog.
func ExtractTitle(htmlContent string) (string, error) {
	// Try readability first
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		title := strings.TrimSpace(article.Title)
		if title != "" {
			return title, nil
		}
	}

	// Fallback: Try parsing HTML directly with goquery
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Try <title> tag
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	// Try <h1> tag (often the main heading)
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	// Try meta property="og:title"
	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", fmt.Errorf("title not found in HTML")
}
