package parser

import (
	"strings"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// FulfillmentParser 配送方式表解析器
// 自由文本的配送类型归入 fba/fbm/amz/na 四类，单次快照无月度维度
type FulfillmentParser struct{}

// NewFulfillmentParser 创建配送方式解析器
func NewFulfillmentParser() *FulfillmentParser {
	return &FulfillmentParser{}
}

var fulfillmentKeywords = []string{"fulfillment", "fulfilment", "type", "percentage", "proportion", "share"}

var fulfillmentColumns = []ColumnTarget{
	{Name: "type", Required: true, Predicates: []Predicate{Contains("fulfillment"), Contains("fulfilment"), Contains("type")}},
	{Name: "percentage", Required: true, Predicates: []Predicate{Contains("percentage"), Contains("proportion"), Contains("share"), Contains("%")}},
}

// Parse 解析配送方式表，时间桶恒为 overall
func (p *FulfillmentParser) Parse(datasetID, categoryID string, rows [][]string, _ string) ([]*model.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetFulfillment)}
	}
	headerIdx := DetectHeaderRow(rows, fulfillmentKeywords)
	cols, err := ResolveColumns(string(SheetFulfillment), rows[headerIdx], fulfillmentColumns)
	if err != nil {
		return nil, err
	}

	// 同类多行累加为一条记录
	shares := map[string]float64{}
	seen := map[string]bool{}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		typeIdx, typeOK := cols["type"]
		pctIdx, pctOK := cols["percentage"]
		rawType := cellAt(row, typeIdx, typeOK)
		if rawType == "" {
			continue
		}
		pct, ok := ParsePercent(cellAt(row, pctIdx, pctOK))
		if !ok {
			continue
		}
		class := classifyFulfillment(rawType)
		shares[class] += pct
		seen[class] = true
	}

	if len(seen) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetFulfillment)}
	}

	var records []*model.MetricRecord
	for _, class := range []string{"fba", "fbm", "amz", "na"} {
		if !seen[class] {
			continue
		}
		records = append(records, &model.MetricRecord{
			DatasetID:   datasetID,
			CategoryID:  categoryID,
			Metric:      model.MetricFulfillmentPrefix + class,
			Bucket:      model.BucketOverall,
			Value:       shares[class],
			Unit:        model.UnitPct,
			SourceSheet: string(SheetFulfillment),
		})
	}
	return records, nil
}

// classifyFulfillment 自由文本配送类型分类
func classifyFulfillment(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "fba"):
		return "fba"
	case strings.Contains(s, "fbm") || strings.Contains(s, "merchant"):
		return "fbm"
	case strings.Contains(s, "amazon") || strings.Contains(s, "amz"):
		return "amz"
	default:
		return "na"
	}
}
