package parser

import (
	"errors"
	"math"
	"testing"

	"github.com/dattodev/amazon-crawler/internal/fees"
	"github.com/dattodev/amazon-crawler/internal/model"
)

func findMetric(records []*model.MetricRecord, metric string) *model.MetricRecord {
	for _, r := range records {
		if r.Metric == metric {
			return r
		}
	}
	return nil
}

func TestMarketAnalysisParser_ScalesUnitsAndRevenue(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue", "Price"},
		{"All", "100", "600", "30", "25.99"},
	}
	p := NewMarketAnalysisParser(nil, nil)
	records, err := p.Parse("ds1", "cat1", rows, "2024-06")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	sales := findMetric(records, model.MetricSalesUnits)
	if sales == nil || sales.Value != 60000 {
		t.Fatalf("sales_units = %v, want 60000", sales)
	}
	revenue := findMetric(records, model.MetricRevenue)
	if revenue == nil || revenue.Value != 3000 {
		t.Fatalf("revenue = %v, want 3000", revenue)
	}
	price := findMetric(records, model.MetricAvgPrice)
	if price == nil || price.Value != 25.99 {
		t.Fatalf("avg_price = %v, want 25.99", price)
	}
	for _, r := range records {
		if r.Bucket != "2024-06" {
			t.Fatalf("bucket = %q, want 2024-06", r.Bucket)
		}
		if r.SampleType != "All" || r.SampleSize == nil || *r.SampleSize != 100 {
			t.Fatalf("sample annotation missing on %s", r.Metric)
		}
	}
}

func TestMarketAnalysisParser_RowMonthOverridesDefault(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue", "Month"},
		{"All", "100", "600", "30", "2024-03"},
	}
	p := NewMarketAnalysisParser(nil, nil)
	records, err := p.Parse("ds1", "cat1", rows, "2024-06")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if records[0].Bucket != "2024-03" {
		t.Fatalf("bucket = %q, want 2024-03", records[0].Bucket)
	}
}

func TestMarketAnalysisParser_SkipsInvalidRows(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue"},
		{"", "100", "600", "30"},      // 缺口径
		{"Top 50", "-", "600", "30"},  // 样本量无效
		{"Top 100", "50", "0", "30"},  // 销量非正
		{"All", "100", "600", "30"},   // 唯一有效行
	}
	p := NewMarketAnalysisParser(nil, nil)
	records, err := p.Parse("ds1", "cat1", rows, "overall")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := len(records); got != 2 {
		t.Fatalf("record count = %d, want 2 (sales_units + revenue)", got)
	}
}

func TestMarketAnalysisParser_MissingColumn(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales"},
		{"All", "100", "600"},
	}
	p := NewMarketAnalysisParser(nil, nil)
	_, err := p.Parse("ds1", "cat1", rows, "overall")
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
}

func TestMarketAnalysisParser_NoValidRows(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue"},
		{"All", "--", "--", "--"},
	}
	p := NewMarketAnalysisParser(nil, nil)
	_, err := p.Parse("ds1", "cat1", rows, "overall")
	var noRows *NoValidRowsError
	if !errors.As(err, &noRows) {
		t.Fatalf("expected NoValidRowsError, got %v", err)
	}
}

func TestMarketAnalysisParser_EnrichesFees(t *testing.T) {
	t.Parallel()

	pct := 0.15
	matcher := fees.NewMatcher([]*model.ReferralFeeRule{
		{Category: "Home & Kitchen", FeePercent: pct, ApplyTo: model.ApplyToTotal},
	}, nil, nil)
	fbaFee := 3.9
	category := &model.Category{ID: "cat1", Name: "Home & Kitchen", FbaFeeUSD: &fbaFee}

	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue", "Price"},
		{"All", "100", "600", "30", "20"},
	}
	p := NewMarketAnalysisParser(matcher, category)
	records, err := p.Parse("ds1", "cat1", rows, "2024-06")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	referral := findMetric(records, model.MetricReferralFee)
	if referral == nil {
		t.Fatalf("missing referral_fee record")
	}
	if math.Abs(referral.Value-3.0) > 1e-9 {
		t.Fatalf("referral fee = %v, want 3.0", referral.Value)
	}
	if referral.FeePercent == nil || math.Abs(*referral.FeePercent-0.15) > 1e-9 {
		t.Fatalf("fee percent = %v, want 0.15", referral.FeePercent)
	}
	if referral.BasePrice == nil || *referral.BasePrice != 20 {
		t.Fatalf("base price = %v, want 20", referral.BasePrice)
	}

	// cogs_cap = 20 - (广告 4 + 佣金 3 + FBA 3.9 + 目标利润 4) = 5.1
	cogsCap := findMetric(records, model.MetricCogsCap)
	if cogsCap == nil || math.Abs(cogsCap.Value-5.1) > 1e-9 {
		t.Fatalf("cogs_cap = %v, want 5.1", cogsCap)
	}
	for _, metric := range []string{model.MetricProfit, model.MetricMargin, model.MetricROI} {
		if findMetric(records, metric) == nil {
			t.Fatalf("missing %s record", metric)
		}
	}
}

func TestMarketAnalysisParser_EnrichmentFailureKeepsBaseRecords(t *testing.T) {
	t.Parallel()

	// 空规则表且无类目兜底：佣金查不到，但主记录照常落库
	matcher := fees.NewMatcher(nil, nil, nil)
	rows := [][]string{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue", "Price"},
		{"All", "100", "600", "30", "20"},
	}
	p := NewMarketAnalysisParser(matcher, nil)
	records, err := p.Parse("ds1", "cat1", rows, "overall")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if findMetric(records, model.MetricReferralFee) != nil {
		t.Fatalf("referral_fee should be absent without matching rules")
	}
	if findMetric(records, model.MetricSalesUnits) == nil {
		t.Fatalf("base records must survive enrichment failure")
	}
	// 利润测算在佣金缺失时按零费用继续
	if findMetric(records, model.MetricCogsCap) == nil {
		t.Fatalf("cogs_cap should still be computed")
	}
}
