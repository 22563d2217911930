package parser

import (
	"math"
	"testing"

	"github.com/dattodev/amazon-crawler/internal/model"
)

func TestOriginSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"United States", "united_states"},
		{"China (Mainland)", "china_mainland"},
		{"  Hong Kong  ", "hong_kong"},
		{"UK", "uk"},
		{"???", ""},
	}
	for _, c := range cases {
		if got := OriginSlug(c.in); got != c.want {
			t.Fatalf("OriginSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSellerOriginParser_SumsDuplicateLabels(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Origin of Seller", "Proportion"},
		{"China", "55%"},
		{"United States", "0.3"},
		{"china", "5%"}, // 大小写不同但 slug 相同
		{"Other", "10%"},
	}
	records, err := NewSellerOriginParser().Parse("ds1", "cat1", rows, "2024-06")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want 3", len(records))
	}

	// 首次出现顺序保持
	if records[0].Metric != model.MetricSellerOriginPrefix+"china" {
		t.Fatalf("first metric = %s, want seller_origin_china", records[0].Metric)
	}
	if math.Abs(records[0].Value-60) > 1e-9 {
		t.Fatalf("china share = %v, want 60", records[0].Value)
	}
	if records[1].Metric != model.MetricSellerOriginPrefix+"united_states" || math.Abs(records[1].Value-30) > 1e-9 {
		t.Fatalf("united_states = %+v", records[1])
	}
	for _, r := range records {
		if r.Bucket != model.BucketOverall {
			t.Fatalf("bucket = %q, want overall", r.Bucket)
		}
	}
}
