package parser

import (
	"errors"
	"testing"
)

func TestResolveColumns_SingularPluralDisambiguation(t *testing.T) {
	t.Parallel()

	header := []string{"Sample Type", "Sample Size", "Unit Sales", "Revenue", "Price", "Ratings", "Rating"}
	cols, err := ResolveColumns("market_analysis", header, marketAnalysisColumns)
	if err != nil {
		t.Fatalf("resolve columns: %v", err)
	}
	if cols["ratings"] != 5 {
		t.Fatalf("ratings column = %d, want 5", cols["ratings"])
	}
	if cols["rating"] != 6 {
		t.Fatalf("rating column = %d, want 6", cols["rating"])
	}
}

func TestResolveColumns_MissingRequired(t *testing.T) {
	t.Parallel()

	header := []string{"Sample Type", "Sample Size", "Unit Sales"}
	_, err := ResolveColumns("market_analysis", header, marketAnalysisColumns)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if missing.Column != "revenue" {
		t.Fatalf("missing column = %q, want revenue", missing.Column)
	}
}

func TestResolveColumns_OptionalMissingIsSilent(t *testing.T) {
	t.Parallel()

	header := []string{"Sample Type", "Sample Size", "Unit Sales", "Revenue"}
	cols, err := ResolveColumns("market_analysis", header, marketAnalysisColumns)
	if err != nil {
		t.Fatalf("resolve columns: %v", err)
	}
	if _, ok := cols["price"]; ok {
		t.Fatalf("price should be absent")
	}
}
