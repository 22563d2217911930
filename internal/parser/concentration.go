package parser

import (
	"github.com/dattodev/amazon-crawler/internal/model"
)

// ConcentrationParser Listing 集中度表解析器
// 排名 1-10 的销售占比求和，时间桶恒为 top10
type ConcentrationParser struct{}

// NewConcentrationParser 创建集中度解析器
func NewConcentrationParser() *ConcentrationParser {
	return &ConcentrationParser{}
}

var concentrationKeywords = []string{"rank", "asin", "proportion", "share", "percentage"}

var concentrationColumns = []ColumnTarget{
	{Name: "rank", Required: true, Predicates: []Predicate{Contains("rank"), Matches(`^#$`), Contains("no.")}},
	{Name: "proportion", Required: true, Predicates: []Predicate{Contains("proportion"), Contains("share"), Contains("percentage"), Contains("%")}},
}

// top10MaxRank 头部集中度统计的排名上限
const top10MaxRank = 10

// Parse 解析集中度表，输出单条头部占比记录
func (p *ConcentrationParser) Parse(datasetID, categoryID string, rows [][]string, _ string) ([]*model.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetConcentration)}
	}
	headerIdx := DetectHeaderRow(rows, concentrationKeywords)
	cols, err := ResolveColumns(string(SheetConcentration), rows[headerIdx], concentrationColumns)
	if err != nil {
		return nil, err
	}

	share := 0.0
	validRows := 0
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		rankIdx, rankOK := cols["rank"]
		propIdx, propOK := cols["proportion"]
		rank, ok := ParseNumber(cellAt(row, rankIdx, rankOK))
		if !ok || !IsPositiveFinite(rank) {
			continue
		}
		pct, ok := ParsePercent(cellAt(row, propIdx, propOK))
		if !ok {
			continue
		}
		validRows++
		if rank >= 1 && rank <= top10MaxRank {
			share += pct
		}
	}

	if validRows == 0 {
		return nil, &NoValidRowsError{Sheet: string(SheetConcentration)}
	}

	return []*model.MetricRecord{{
		DatasetID:   datasetID,
		CategoryID:  categoryID,
		Metric:      model.MetricTop10SalesShare,
		Bucket:      model.BucketTop10,
		Value:       share,
		Unit:        model.UnitPct,
		SourceSheet: string(SheetConcentration),
	}}, nil
}
