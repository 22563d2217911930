package parser

import (
	"github.com/dattodev/amazon-crawler/internal/calculator"
	"github.com/dattodev/amazon-crawler/internal/fees"
	"github.com/dattodev/amazon-crawler/internal/model"
)

// revenueReportingMultiplier 面板月营收的上报口径倍数
const revenueReportingMultiplier = 100

// MarketAnalysisParser 市场分析表解析器
// 多口径（Sample Type）行逐行落库，权威口径在读取端归一
type MarketAnalysisParser struct {
	matcher  *fees.Matcher
	category *model.Category
}

// NewMarketAnalysisParser 创建市场分析解析器
// matcher 可为 nil，此时跳过佣金与利润测算富化
func NewMarketAnalysisParser(matcher *fees.Matcher, category *model.Category) *MarketAnalysisParser {
	return &MarketAnalysisParser{
		matcher:  matcher,
		category: category,
	}
}

// 表头探测关键字
var marketAnalysisKeywords = []string{
	"sample type", "sample size", "unit sales", "revenue", "price", "rating", "month",
}

// 目标列定义，顺序即解析顺序
var marketAnalysisColumns = []ColumnTarget{
	{Name: "sample_type", Required: true, Predicates: []Predicate{Contains("sample type"), Contains("cohort")}},
	{Name: "sample_size", Required: true, Predicates: []Predicate{Contains("sample size"), Contains("samples")}},
	{Name: "unit_sales", Required: true, Predicates: []Predicate{Contains("unit sales"), Contains("monthly sales")}},
	{Name: "revenue", Required: true, Predicates: []Predicate{Contains("revenue")}},
	{Name: "price", Required: false, Predicates: []Predicate{Contains("price")}},
	// 复数列先行，单数列排除复数形式，避免 "ratings" 抢占 "rating"
	{Name: "ratings", Required: false, Predicates: []Predicate{Contains("ratings"), Contains("reviews")}},
	{Name: "rating", Required: false, Predicates: []Predicate{ContainsWithout("rating", "ratings"), ContainsWithout("review", "reviews")}},
	{Name: "month", Required: false, Predicates: []Predicate{Contains("month"), Contains("date")}},
}

// Parse 解析市场分析表
func (p *MarketAnalysisParser) Parse(datasetID, categoryID string, rows [][]string, defaultBucket string) ([]*model.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetMarketAnalysis)}
	}
	headerIdx := DetectHeaderRow(rows, marketAnalysisKeywords)
	cols, err := ResolveColumns(string(SheetMarketAnalysis), rows[headerIdx], marketAnalysisColumns)
	if err != nil {
		return nil, err
	}

	var records []*model.MetricRecord
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		rowRecords := p.parseRow(datasetID, categoryID, row, cols, defaultBucket)
		records = append(records, rowRecords...)
	}

	if len(records) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetMarketAnalysis)}
	}
	return records, nil
}

// parseRow 解析单个口径行，校验不过时返回空而非报错
func (p *MarketAnalysisParser) parseRow(datasetID, categoryID string, row []string, cols map[string]int, defaultBucket string) []*model.MetricRecord {
	get := func(name string) string {
		idx, ok := cols[name]
		return cellAt(row, idx, ok)
	}

	sampleType := get("sample_type")
	if sampleType == "" {
		return nil
	}
	sampleSize, ok := ParseNumber(get("sample_size"))
	if !ok || !IsPositiveFinite(sampleSize) {
		return nil
	}
	unitSales, ok := ParseNumber(get("unit_sales"))
	if !ok || !IsPositiveFinite(unitSales) {
		return nil
	}
	revenue, ok := ParseNumber(get("revenue"))
	if !ok || !IsPositiveFinite(revenue) {
		return nil
	}

	bucket := defaultBucket
	if month, ok := ParseMonthBucket(get("month")); ok {
		bucket = month
	}

	base := model.MetricRecord{
		DatasetID:   datasetID,
		CategoryID:  categoryID,
		Bucket:      bucket,
		SourceSheet: string(SheetMarketAnalysis),
		SampleSize:  &sampleSize,
		SampleType:  sampleType,
	}

	emit := func(metric string, value float64, unit model.Unit) *model.MetricRecord {
		rec := base
		rec.Metric = metric
		rec.Value = value
		rec.Unit = unit
		return &rec
	}

	records := []*model.MetricRecord{
		emit(model.MetricSalesUnits, unitSales*sampleSize, model.UnitUnits),
		emit(model.MetricRevenue, revenue*revenueReportingMultiplier, model.UnitUSD),
	}

	var price float64
	if v, ok := ParseNumber(get("price")); ok && IsPositiveFinite(v) {
		price = v
		records = append(records, emit(model.MetricAvgPrice, v, model.UnitUSD))
	}
	if v, ok := ParseNumber(get("ratings")); ok && IsPositiveFinite(v) {
		records = append(records, emit(model.MetricAvgRatings, v, model.UnitCount))
	}
	if v, ok := ParseNumber(get("rating")); ok && IsPositiveFinite(v) {
		records = append(records, emit(model.MetricAvgRating, v, model.UnitCount))
	}

	// 佣金与利润测算为可选富化，任何失败都不影响主记录
	if p.matcher != nil && price > 0 {
		records = append(records, p.enrich(emit, price)...)
	}
	return records
}

// enrich 按行计算佣金与利润测算记录
func (p *MarketAnalysisParser) enrich(emit func(string, float64, model.Unit) *model.MetricRecord, price float64) []*model.MetricRecord {
	categoryName := ""
	var fbaFee float64
	if p.category != nil {
		categoryName = p.category.Name
		if p.category.FbaFeeUSD != nil {
			fbaFee = *p.category.FbaFeeUSD
		}
	}

	var records []*model.MetricRecord
	var referralFee float64
	if result, ok := p.matcher.ReferralFee(categoryName, price, p.category); ok {
		referralFee = result.FeeUSD
		rec := emit(model.MetricReferralFee, result.FeeUSD, model.UnitUSD)
		pct := result.FeePercent
		rec.FeePercent = &pct
		basePrice := price
		rec.BasePrice = &basePrice
		records = append(records, rec)
	}

	profit := calculator.ComputeProfit(calculator.ProfitInputs{
		Price:       price,
		ReferralFee: referralFee,
		FbaFee:      fbaFee,
	})
	records = append(records,
		emit(model.MetricCogsCap, profit.CogsCap, model.UnitUSD),
		emit(model.MetricProfit, profit.Profit, model.UnitUSD),
		emit(model.MetricMargin, profit.MarginPct, model.UnitPct),
		emit(model.MetricROI, profit.ROIPct, model.UnitPct),
	)
	return records
}
