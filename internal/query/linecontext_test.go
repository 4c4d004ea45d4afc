package query

import "testing"

func TestReconstructMatchesUsesHighlightFragment(t *testing.T) {
	content := "package main\n\nfunc UserService() {\n\treturn nil\n}\n"
	matches := reconstructMatches(content, "UserService", []string{"func <mark>UserService</mark>() {"}, 1, true)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Line != 3 {
		t.Errorf("Line = %d, want 3", matches[0].Line)
	}
	if len(matches[0].Before) != 1 || matches[0].Before[0] != "" {
		t.Errorf("Before = %v, want one blank line", matches[0].Before)
	}
}

func TestReconstructMatchesFallsBackToSubstring(t *testing.T) {
	content := "line one\nline TWO has target\nline three\n"
	matches := reconstructMatches(content, "target", nil, 1, true)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Line != 2 {
		t.Errorf("Line = %d, want 2", matches[0].Line)
	}
}

func TestReconstructMatchesFallsBackToQueryTokenCoverage(t *testing.T) {
	content := "alpha\nbeta gamma\ndelta\n"
	matches := reconstructMatches(content, "gamma epsilon", nil, 0, true)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Line != 2 {
		t.Errorf("Line = %d, want 2", matches[0].Line)
	}
}

func TestReconstructMatchesDedupesByLine(t *testing.T) {
	content := "func Foo() {}\n"
	matches := reconstructMatches(content, "Foo", []string{"<mark>Foo</mark>", "func <mark>Foo</mark>"}, 0, true)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1 (deduplicated)", len(matches))
	}
}

func TestReconstructMatchesReturnsNilForEmptyContent(t *testing.T) {
	if matches := reconstructMatches("", "anything", nil, 3, true); matches != nil {
		t.Errorf("expected nil matches for empty content, got %v", matches)
	}
}
