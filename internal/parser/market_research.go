package parser

import (
	"math"

	"github.com/dattodev/amazon-crawler/internal/fees"
	"github.com/dattodev/amazon-crawler/internal/model"
)

// dimensionalDivisor 体积重换算除数（in³ → lb）
const dimensionalDivisor = 139.0

// MarketResearchParser 市场调研重量/分级表解析器
// 取首个重量与体积齐备的行，按立方体假设推导尺寸、计费重量、分级与 FBA 费
type MarketResearchParser struct {
	matcher *fees.Matcher
}

// NewMarketResearchParser 创建市场调研解析器
func NewMarketResearchParser(matcher *fees.Matcher) *MarketResearchParser {
	return &MarketResearchParser{matcher: matcher}
}

var marketResearchKeywords = []string{"weight", "volume", "dimension", "size"}

var marketResearchColumns = []ColumnTarget{
	{Name: "weight", Required: true, Predicates: []Predicate{Contains("weight")}},
	{Name: "volume", Required: true, Predicates: []Predicate{Contains("volume")}},
}

// Parse 解析重量/分级表
// 与其他解析器不同，分级或费用区间查不到属于用户可见错误，需要上抛
func (p *MarketResearchParser) Parse(datasetID, categoryID string, rows [][]string, defaultBucket string) ([]*model.MetricRecord, *model.CategoryConstantUpdate, error) {
	if len(rows) == 0 {
		return nil, nil, &NoValidRowsError{Sheet: string(SheetMarketResearch)}
	}
	headerIdx := DetectHeaderRow(rows, marketResearchKeywords)
	cols, err := ResolveColumns(string(SheetMarketResearch), rows[headerIdx], marketResearchColumns)
	if err != nil {
		return nil, nil, err
	}

	var weightLb, volumeIn3 float64
	found := false
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		weightIdx, weightOK := cols["weight"]
		volumeIdx, volumeOK := cols["volume"]
		w, ok1 := ParseNumber(cellAt(row, weightIdx, weightOK))
		v, ok2 := ParseNumber(cellAt(row, volumeIdx, volumeOK))
		if ok1 && ok2 && IsPositiveFinite(w) && IsPositiveFinite(v) {
			weightLb, volumeIn3 = w, v
			found = true
			break
		}
	}
	if !found {
		return nil, nil, &NoValidRowsError{Sheet: string(SheetMarketResearch)}
	}

	// 立方体假设：三边等长，围长 = 边长 + 2×(边长+边长)
	side := math.Cbrt(volumeIn3)
	dimensionalWeight := volumeIn3 / dimensionalDivisor
	shippingWeight := math.Max(weightLb, dimensionalWeight)
	dims := fees.Dimensions{
		Longest:     side,
		Median:      side,
		Shortest:    side,
		LengthGirth: side + 2*(side+side),
	}

	tier, err := p.matcher.ResolveSizeTier(dims, shippingWeight)
	if err != nil {
		return nil, nil, err
	}
	fbaFee, err := p.matcher.FbaFee(tier, shippingWeight)
	if err != nil {
		return nil, nil, err
	}

	update := &model.CategoryConstantUpdate{
		FbaFeeUSD:        &fbaFee,
		SizeTierEstimate: &tier,
		AvgWeightLb:      &weightLb,
		AvgVolumeIn3:     &volumeIn3,
	}

	// 已知数据月份时同步产出月度记录
	var records []*model.MetricRecord
	if model.IsMonthBucket(defaultBucket) {
		emit := func(metric string, value float64, unit model.Unit) *model.MetricRecord {
			return &model.MetricRecord{
				DatasetID:   datasetID,
				CategoryID:  categoryID,
				Metric:      metric,
				Bucket:      defaultBucket,
				Value:       value,
				Unit:        unit,
				SourceSheet: string(SheetMarketResearch),
			}
		}
		records = append(records,
			emit(model.MetricAvgWeightLb, weightLb, model.UnitCount),
			emit(model.MetricAvgVolumeIn3, volumeIn3, model.UnitCount),
			emit(model.MetricFbaFee, fbaFee, model.UnitUSD),
		)
	}

	return records, update, nil
}
