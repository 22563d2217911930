package parser

import (
	"strings"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// SellerOriginParser 卖家所属地分布表解析器
// 每个地区标签产出一条 seller_origin_<slug> 记录
type SellerOriginParser struct{}

// NewSellerOriginParser 创建卖家所属地解析器
func NewSellerOriginParser() *SellerOriginParser {
	return &SellerOriginParser{}
}

var originKeywords = []string{"origin", "seller", "country", "proportion", "share", "percentage"}

var originColumns = []ColumnTarget{
	{Name: "origin", Required: true, Predicates: []Predicate{Contains("origin"), Contains("country"), Contains("region")}},
	{Name: "proportion", Required: true, Predicates: []Predicate{Contains("proportion"), Contains("share"), Contains("percentage"), Contains("%")}},
}

// Parse 解析卖家所属地表，时间桶恒为 overall
func (p *SellerOriginParser) Parse(datasetID, categoryID string, rows [][]string, _ string) ([]*model.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetSellerOrigin)}
	}
	headerIdx := DetectHeaderRow(rows, originKeywords)
	cols, err := ResolveColumns(string(SheetSellerOrigin), rows[headerIdx], originColumns)
	if err != nil {
		return nil, err
	}

	shares := map[string]float64{}
	var order []string
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		originIdx, originOK := cols["origin"]
		propIdx, propOK := cols["proportion"]
		label := cellAt(row, originIdx, originOK)
		if label == "" {
			continue
		}
		pct, ok := ParsePercent(cellAt(row, propIdx, propOK))
		if !ok {
			continue
		}
		slug := OriginSlug(label)
		if slug == "" {
			continue
		}
		if _, exists := shares[slug]; !exists {
			order = append(order, slug)
		}
		shares[slug] += pct
	}

	if len(order) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetSellerOrigin)}
	}

	records := make([]*model.MetricRecord, 0, len(order))
	for _, slug := range order {
		records = append(records, &model.MetricRecord{
			DatasetID:   datasetID,
			CategoryID:  categoryID,
			Metric:      model.MetricSellerOriginPrefix + slug,
			Bucket:      model.BucketOverall,
			Value:       shares[slug],
			Unit:        model.UnitPct,
			SourceSheet: string(SheetSellerOrigin),
		})
	}
	return records, nil
}

// OriginSlug 地区标签转 slug：小写，非字母折叠为单个下划线
func OriginSlug(label string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
