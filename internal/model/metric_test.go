package model

import "testing"

func TestIsAllSampleType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"All", true},
		{"all", true},
		{" ALL ", true},
		{"Top 50", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsAllSampleType(c.in); got != c.want {
			t.Fatalf("IsAllSampleType(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIsMonthBucket(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"2024-06", true},
		{"2024/06", false},
		{"2024-6", false},
		{BucketOverall, false},
		{BucketTop10, false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsMonthBucket(c.in); got != c.want {
			t.Fatalf("IsMonthBucket(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
