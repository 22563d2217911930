package parser

import (
	"regexp"
	"strings"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// PublicationTimeParser 上架时间分布表解析器
// 月粒度区间视为新品，新品各档销售占比求和得到 new_product_ratio
type PublicationTimeParser struct{}

// NewPublicationTimeParser 创建上架时间解析器
func NewPublicationTimeParser() *PublicationTimeParser {
	return &PublicationTimeParser{}
}

var publicationKeywords = []string{"publication", "time", "age", "proportion", "share", "percentage"}

var publicationColumns = []ColumnTarget{
	{Name: "label", Required: true, Predicates: []Predicate{Contains("publication"), Contains("time"), Contains("age")}},
	{Name: "proportion", Required: true, Predicates: []Predicate{Contains("proportion"), Contains("share"), Contains("percentage"), Contains("%")}},
}

// 月粒度区间标记，如 "Within 3 months" / "3-6 months"
var monthGranularityRe = regexp.MustCompile(`(?i)\d+\s*(?:-\s*\d+\s*)?month`)

// Parse 解析上架时间表，输出单条聚合记录，时间桶恒为 overall
func (p *PublicationTimeParser) Parse(datasetID, categoryID string, rows [][]string, _ string) ([]*model.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetPublicationTime)}
	}
	headerIdx := DetectHeaderRow(rows, publicationKeywords)
	cols, err := ResolveColumns(string(SheetPublicationTime), rows[headerIdx], publicationColumns)
	if err != nil {
		return nil, err
	}

	newRatio := 0.0
	validRows := 0
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		labelIdx, labelOK := cols["label"]
		propIdx, propOK := cols["proportion"]
		label := cellAt(row, labelIdx, labelOK)
		if label == "" {
			continue
		}
		pct, ok := ParsePercent(cellAt(row, propIdx, propOK))
		if !ok {
			continue
		}
		validRows++
		if isNewProductLabel(label) {
			newRatio += pct
		}
	}

	if validRows == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetPublicationTime)}
	}

	return []*model.MetricRecord{{
		DatasetID:   datasetID,
		CategoryID:  categoryID,
		Metric:      model.MetricNewProductRatio,
		Bucket:      model.BucketOverall,
		Value:       newRatio,
		Unit:        model.UnitPct,
		SourceSheet: string(SheetPublicationTime),
	}}, nil
}

// isNewProductLabel 月粒度且不含年份字样的区间视为新品
func isNewProductLabel(label string) bool {
	if strings.Contains(strings.ToLower(label), "year") {
		return false
	}
	return monthGranularityRe.MatchString(label)
}
