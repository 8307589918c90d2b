package content

import "testing"

func TestSplitSource(t *testing.T) {
	fragments := []string{
		"Monsieur le Président,",
		"Je vous remercie.",
		"Source : France Inter",
	}

	body, source := splitSource(fragments)

	if source != "France Inter" {
		t.Errorf("Expected source 'France Inter', got '%s'", source)
	}
	if len(body) != 2 {
		t.Fatalf("Expected 2 body fragments after split, got %d", len(body))
	}
	if body[1] != "Je vous remercie." {
		t.Errorf("Expected last body fragment unchanged, got '%s'", body[1])
	}
}

func TestSplitSource_Variants(t *testing.T) {
	cases := []struct {
		fragment string
		expected string
	}{
		{"Source : France Inter", "France Inter"},
		{"(source: RTL.)", "RTL"},
		{"SOURCE. Europe 1", "Europe 1"},
		{"( Source : TF1 ) ", "TF1"},
		{"source France 2", "France 2"},
	}

	for _, tc := range cases {
		_, source := splitSource([]string{"Texte du discours.", tc.fragment})
		if source != tc.expected {
			t.Errorf("Expected source '%s' for fragment '%s', got '%s'", tc.expected, tc.fragment, source)
		}
	}
}

func TestSplitSource_NoAttribution(t *testing.T) {
	fragments := []string{
		"Monsieur le Président,",
		"Je vous remercie.",
	}

	body, source := splitSource(fragments)

	if source != "" {
		t.Errorf("Expected no source, got '%s'", source)
	}
	if len(body) != 2 {
		t.Errorf("Expected fragments unchanged, got %d", len(body))
	}
}

func TestSplitSource_NotAtLineStart(t *testing.T) {
	// An attribution must start the line; a sentence mentioning a source is
	// not one
	fragments := []string{
		"Premier paragraphe.",
		"La source de ce problème est connue.",
	}

	body, source := splitSource(fragments)

	if source != "" {
		t.Errorf("Expected no source for mid-sentence mention, got '%s'", source)
	}
	if len(body) != 2 {
		t.Errorf("Expected fragments unchanged, got %d", len(body))
	}
}

func TestSplitSource_OnlyLastFragmentChecked(t *testing.T) {
	// An attribution buried mid-transcript stays in the body
	fragments := []string{
		"Source : France Inter",
		"Je vous remercie.",
	}

	body, source := splitSource(fragments)

	if source != "" {
		t.Errorf("Expected no source when attribution is not last, got '%s'", source)
	}
	if len(body) != 2 {
		t.Errorf("Expected fragments unchanged, got %d", len(body))
	}
}

func TestSplitSource_BareLabel(t *testing.T) {
	// A bare "Source :" line is still removed from the body, with nothing to
	// keep as the attribution
	body, source := splitSource([]string{"Texte.", "Source :"})

	if source != "" {
		t.Errorf("Expected empty source for bare label, got '%s'", source)
	}
	if len(body) != 1 {
		t.Errorf("Expected bare label removed from body, got %d fragments", len(body))
	}
}

func TestSplitSource_Empty(t *testing.T) {
	body, source := splitSource(nil)
	if source != "" || len(body) != 0 {
		t.Errorf("Expected empty result for empty input, got (%v, '%s')", body, source)
	}
}
