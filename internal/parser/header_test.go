package parser

import "testing"

func TestDetectHeaderRow_SkipsPreamble(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Category Research Export"},
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue"},
		{"All", "100", "600", "30"},
	}
	got := DetectHeaderRow(rows, marketAnalysisKeywords)
	if got != 1 {
		t.Fatalf("header row = %d, want 1", got)
	}
}

func TestDetectHeaderRow_DefaultsToFirstRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"foo", "bar"},
		{"baz"},
	}
	if got := DetectHeaderRow(rows, []string{"weight", "volume"}); got != 0 {
		t.Fatalf("header row = %d, want 0", got)
	}
}

func TestDetectHeaderRow_TieTakesEarliestRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Revenue"},
		{"Revenue"},
	}
	if got := DetectHeaderRow(rows, marketAnalysisKeywords); got != 0 {
		t.Fatalf("header row = %d, want 0", got)
	}
}
