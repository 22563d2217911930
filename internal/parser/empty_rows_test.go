package parser

import (
	"errors"
	"testing"
)

// 空输入必须拿到 NoValidRowsError 而不是越界崩溃
func TestParsers_EmptyRows(t *testing.T) {
	t.Parallel()

	parsers := map[string]func([][]string) error{
		"market_analysis": func(rows [][]string) error {
			_, err := NewMarketAnalysisParser(nil, nil).Parse("ds1", "cat1", rows, "2024-06")
			return err
		},
		"fulfillment": func(rows [][]string) error {
			_, err := NewFulfillmentParser().Parse("ds1", "cat1", rows, "")
			return err
		},
		"publication_time": func(rows [][]string) error {
			_, err := NewPublicationTimeParser().Parse("ds1", "cat1", rows, "")
			return err
		},
		"seller_origin": func(rows [][]string) error {
			_, err := NewSellerOriginParser().Parse("ds1", "cat1", rows, "")
			return err
		},
		"concentration": func(rows [][]string) error {
			_, err := NewConcentrationParser().Parse("ds1", "cat1", rows, "")
			return err
		},
		"ads_metrics": func(rows [][]string) error {
			_, err := NewAdsParser(nil).Parse("ds1", "cat1", rows, "2024-06")
			return err
		},
		"market_research": func(rows [][]string) error {
			_, _, err := NewMarketResearchParser(nil).Parse("ds1", "cat1", rows, "2024-06")
			return err
		},
	}

	for name, parse := range parsers {
		for _, rows := range [][][]string{nil, {}} {
			err := parse(rows)
			var noRows *NoValidRowsError
			if !errors.As(err, &noRows) {
				t.Fatalf("%s: err = %v, want NoValidRowsError", name, err)
			}
		}
	}
}
