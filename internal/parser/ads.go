package parser

import (
	"github.com/dattodev/amazon-crawler/internal/calculator"
	"github.com/dattodev/amazon-crawler/internal/model"
)

// AvgPriceFallback 均价兜底解析函数
// 表内无价格列时由调用方注入（见 importer 的均价解析策略链）
type AvgPriceFallback func(bucket string) (float64, bool)

// AdsParser 广告指标表解析器
// 两条路径：表内已有比值列时逐行直采；只有点击/曝光等原始列时按类目聚合推导
type AdsParser struct {
	avgPriceFallback AvgPriceFallback
}

// NewAdsParser 创建广告指标解析器，fallback 可为 nil
func NewAdsParser(fallback AvgPriceFallback) *AdsParser {
	return &AdsParser{avgPriceFallback: fallback}
}

var adsKeywords = []string{
	"ctr", "cpc", "roas", "acos", "tacos", "cpp", "click", "impression",
	"search", "bid", "conversion", "month", "price",
}

// 直采比值列，全部可选
var adsDirectColumns = []ColumnTarget{
	{Name: "ctr", Predicates: []Predicate{Contains("ctr"), Contains("click-through")}},
	{Name: "cpc", Predicates: []Predicate{Contains("cpc"), Contains("cost per click")}},
	{Name: "roas", Predicates: []Predicate{Contains("roas")}},
	{Name: "cr", Predicates: []Predicate{Matches(`\bcr\b`), Contains("conversion rate")}},
	// tacos 包含 acos 字样，先解析 tacos，acos 再排除之
	{Name: "tacos", Predicates: []Predicate{Contains("tacos")}},
	{Name: "acos", Predicates: []Predicate{ContainsWithout("acos", "tacos")}},
	{Name: "cpp", Predicates: []Predicate{Contains("cpp"), Contains("cost per purchase")}},
	{Name: "click_share", Predicates: []Predicate{Contains("click share"), Contains("click-share")}},
	{Name: "month", Predicates: []Predicate{Contains("month"), Contains("date")}},
}

// 聚合路径的原始列
var adsRawColumns = []ColumnTarget{
	{Name: "clicks", Predicates: []Predicate{ContainsWithout("click", "share", "ctr", "through")}},
	{Name: "impressions", Predicates: []Predicate{Contains("impression")}},
	{Name: "sales", Predicates: []Predicate{Contains("sales"), Contains("orders"), Contains("purchases")}},
	{Name: "searches", Predicates: []Predicate{Contains("search")}},
	{Name: "bid", Predicates: []Predicate{Contains("bid")}},
	{Name: "click_share", Predicates: []Predicate{Contains("click share"), Contains("click-share")}},
	{Name: "price", Predicates: []Predicate{Contains("price")}},
}

// Parse 解析广告指标表
func (p *AdsParser) Parse(datasetID, categoryID string, rows [][]string, defaultBucket string) ([]*model.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetAdsMetrics)}
	}
	headerIdx := DetectHeaderRow(rows, adsKeywords)
	header := rows[headerIdx]

	directCols, _ := ResolveColumns(string(SheetAdsMetrics), header, adsDirectColumns)
	if hasDirectMetricColumn(directCols) {
		return p.parseDirect(datasetID, categoryID, rows, headerIdx, directCols, defaultBucket)
	}

	rawCols, _ := ResolveColumns(string(SheetAdsMetrics), header, adsRawColumns)
	if _, ok := rawCols["clicks"]; ok {
		return p.parseAggregate(datasetID, categoryID, rows, headerIdx, rawCols, defaultBucket)
	}

	return nil, &MissingColumnError{Sheet: string(SheetAdsMetrics), Column: "clicks"}
}

// hasDirectMetricColumn 是否存在任一已算好的比值列
// click_share 不算：它同时是聚合路径的原始输入，单独出现不代表比值已算好
func hasDirectMetricColumn(cols map[string]int) bool {
	for _, name := range []string{"ctr", "cpc", "roas", "cr", "acos", "tacos", "cpp"} {
		if _, ok := cols[name]; ok {
			return true
		}
	}
	return false
}

// directMetricSpec 直采列与指标名/单位的映射
var directMetricSpec = []struct {
	column  string
	metric  string
	unit    model.Unit
	percent bool
}{
	{"ctr", model.MetricCTR, model.UnitPct, true},
	{"cpc", model.MetricCPC, model.UnitUSD, false},
	{"roas", model.MetricROAS, model.UnitRatio, false},
	{"cr", model.MetricCR, model.UnitPct, true},
	{"acos", model.MetricACOS, model.UnitPct, true},
	{"tacos", model.MetricTACOS, model.UnitPct, true},
	{"cpp", model.MetricCPP, model.UnitUSD, false},
	{"click_share", model.MetricClickShare, model.UnitPct, true},
}

// parseDirect 逐行直采已算好的比值列
func (p *AdsParser) parseDirect(datasetID, categoryID string, rows [][]string, headerIdx int, cols map[string]int, defaultBucket string) ([]*model.MetricRecord, error) {
	var records []*model.MetricRecord
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		bucket := defaultBucket
		if idx, ok := cols["month"]; ok {
			if month, ok := ParseMonthBucket(cellAt(row, idx, true)); ok {
				bucket = month
			}
		}
		for _, spec := range directMetricSpec {
			idx, ok := cols[spec.column]
			if !ok {
				continue
			}
			raw := cellAt(row, idx, true)
			if raw == "" {
				continue
			}
			var value float64
			if spec.percent {
				value, ok = ParsePercent(raw)
			} else {
				value, ok = ParseNumber(raw)
			}
			if !ok || !IsPositiveFinite(value) {
				continue
			}
			records = append(records, &model.MetricRecord{
				DatasetID:   datasetID,
				CategoryID:  categoryID,
				Metric:      spec.metric,
				Bucket:      bucket,
				Value:       value,
				Unit:        spec.unit,
				SourceSheet: string(SheetAdsMetrics),
			})
		}
	}
	if len(records) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetAdsMetrics)}
	}
	return records, nil
}

// parseAggregate 汇总原始点击数据并推导类目级比值
func (p *AdsParser) parseAggregate(datasetID, categoryID string, rows [][]string, headerIdx int, cols map[string]int, defaultBucket string) ([]*model.MetricRecord, error) {
	var (
		sumClicks        float64
		sumImpressions   float64
		sumSales         float64
		sumSearches      float64
		sumBidClicks     float64
		sumShareClicks   float64
		sumPrice         float64
		priceRows        float64
		validRows        int
		hasBid, hasShare bool
	)

	get := func(row []string, name string) (float64, bool) {
		idx, ok := cols[name]
		if !ok {
			return 0, false
		}
		return ParseNumber(cellAt(row, idx, true))
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		clicks, ok := get(row, "clicks")
		if !ok || !IsPositiveFinite(clicks) {
			continue
		}
		validRows++
		sumClicks += clicks
		if v, ok := get(row, "impressions"); ok && v > 0 {
			sumImpressions += v
		}
		if v, ok := get(row, "sales"); ok && v > 0 {
			sumSales += v
		}
		if v, ok := get(row, "searches"); ok && v > 0 {
			sumSearches += v
		}
		if v, ok := get(row, "bid"); ok && v > 0 {
			sumBidClicks += v * clicks
			hasBid = true
		}
		if idx, ok := cols["click_share"]; ok {
			if pct, ok := ParsePercent(cellAt(row, idx, true)); ok {
				sumShareClicks += pct / 100 * clicks
				hasShare = true
			}
		}
		if v, ok := get(row, "price"); ok && v > 0 {
			sumPrice += v
			priceRows++
		}
	}

	if validRows == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetAdsMetrics)}
	}

	base := model.MetricRecord{
		DatasetID:   datasetID,
		CategoryID:  categoryID,
		Bucket:      defaultBucket,
		SourceSheet: string(SheetAdsMetrics),
	}
	emit := func(metric string, value float64, unit model.Unit) *model.MetricRecord {
		rec := base
		rec.Metric = metric
		rec.Value = value
		rec.Unit = unit
		return &rec
	}

	var records []*model.MetricRecord

	var cr, cpc, clickShare *float64
	if sumImpressions > 0 && sumClicks > 0 {
		records = append(records, emit(model.MetricCTR, sumClicks/sumImpressions*100, model.UnitPct))
	}
	if sumSearches > 0 && sumSales > 0 {
		v := sumSales / sumSearches
		cr = &v
		records = append(records, emit(model.MetricCR, v*100, model.UnitPct))
	}
	if hasBid && sumClicks > 0 {
		v := sumBidClicks / sumClicks
		cpc = &v
		records = append(records, emit(model.MetricCPC, v, model.UnitUSD))
	}
	if hasShare && sumClicks > 0 {
		v := sumShareClicks / sumClicks
		clickShare = &v
		records = append(records, emit(model.MetricClickShare, v*100, model.UnitPct))
	}
	if sumSearches > 0 {
		records = append(records, emit(model.MetricMonthlySearches, sumSearches, model.UnitCount))
	}

	// 均价：表内价格列优先，缺失时走注入的策略链，拿不到就放弃比值链
	avgPrice := 0.0
	if priceRows > 0 {
		avgPrice = sumPrice / priceRows
	} else if p.avgPriceFallback != nil {
		if v, ok := p.avgPriceFallback(defaultBucket); ok {
			avgPrice = v
		}
	}

	chain := calculator.ComputeAdsChain(cr, cpc, clickShare, avgPrice)
	if chain.ROAS != nil {
		records = append(records, emit(model.MetricROAS, *chain.ROAS, model.UnitRatio))
	}
	if chain.ACOS != nil {
		records = append(records, emit(model.MetricACOS, *chain.ACOS*100, model.UnitPct))
	}
	if chain.TACOS != nil {
		records = append(records, emit(model.MetricTACOS, *chain.TACOS*100, model.UnitPct))
	}
	if cr != nil && cpc != nil && *cr > 0 {
		records = append(records, emit(model.MetricCPP, *cpc / *cr, model.UnitUSD))
	}

	return records, nil
}
