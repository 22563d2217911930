package parser

import (
	"math"
	"testing"

	"github.com/dattodev/amazon-crawler/internal/model"
)

func TestPublicationTimeParser_SumsMonthGranularityRows(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Publication Time", "Proportion"},
		{"Within 3 months", "10%"},
		{"3-6 months", "0.15"},
		{"6-12 months", "5%"},
		{"1-2 years", "30%"},
		{"Over 2 years", "40%"},
	}
	records, err := NewPublicationTimeParser().Parse("ds1", "cat1", rows, "2024-06")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	r := records[0]
	if r.Metric != model.MetricNewProductRatio {
		t.Fatalf("metric = %s, want %s", r.Metric, model.MetricNewProductRatio)
	}
	if math.Abs(r.Value-30) > 1e-9 {
		t.Fatalf("new_product_ratio = %v, want 30", r.Value)
	}
	if r.Bucket != model.BucketOverall {
		t.Fatalf("bucket = %q, want overall", r.Bucket)
	}
}

func TestIsNewProductLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  bool
	}{
		{"Within 3 months", true},
		{"3-6 months", true},
		{"12 Months", true},
		{"1-2 years", false},
		{"Over 2 years", false},
		{"Unknown", false},
	}
	for _, c := range cases {
		if got := isNewProductLabel(c.label); got != c.want {
			t.Fatalf("isNewProductLabel(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}
