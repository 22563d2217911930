package model

// ApplyTo 佣金费率的计费口径
type ApplyTo string

const (
	ApplyToTotal   ApplyTo = "total"   // 按全价计费
	ApplyToPortion ApplyTo = "portion" // 只对落在价格区间内的部分计费
)

// ReferralFeeRule 类目佣金规则
// 同一类目可能命中多条规则，各自按 ApplyTo 口径贡献费用后求和
type ReferralFeeRule struct {
	ID         int64    `json:"id"`
	Category   string   `json:"category"`
	PriceMin   *float64 `json:"priceMin,omitempty"` // 缺省 0
	PriceMax   *float64 `json:"priceMax,omitempty"` // 缺省 +Inf
	FeePercent float64  `json:"feePercent"`         // 0-1 小数
	ApplyTo    ApplyTo  `json:"applyTo"`
	MinFeeUSD  *float64 `json:"minFeeUsd,omitempty"`
}

// SizeTierRule 尺寸分级规则，按给定顺序首条满足者生效
type SizeTierRule struct {
	ID                int64    `json:"id"`
	Tier              string   `json:"tier"`
	LongestMax        *float64 `json:"longestMax,omitempty"`
	MedianMax         *float64 `json:"medianMax,omitempty"`
	ShortestMax       *float64 `json:"shortestMax,omitempty"`
	LengthGirthMax    *float64 `json:"lengthGirthMax,omitempty"`
	ShippingWeightMax *float64 `json:"shippingWeightMax,omitempty"`
	UnitLength        string   `json:"unitLength"` // in / cm
	UnitWeight        string   `json:"unitWeight"` // lb / oz
}

// 规范化后的尺寸分级名称
const (
	TierSmallStandard = "Small Standard"
	TierLargeStandard = "Large Standard"
	TierOversize      = "Oversize"
)

// FbaOverageRule 超重阶梯加价规则
type FbaOverageRule struct {
	OverThresholdValue float64 `json:"overThresholdValue"`
	OverThresholdUnit  string  `json:"overThresholdUnit"` // lb / oz
	StepValue          float64 `json:"stepValue"`
	StepFeeUSD         float64 `json:"stepFeeUsd"`
}

// FbaFeeRule FBA 配送费规则，按尺寸分级 + 重量区间匹配
type FbaFeeRule struct {
	ID        int64            `json:"id"`
	Tier      string           `json:"tier"`
	Unit      string           `json:"unit"` // 重量区间单位 lb / oz
	WeightMin *float64         `json:"weightMin,omitempty"`
	WeightMax *float64         `json:"weightMax,omitempty"`
	FeeUSD    *float64         `json:"feeUsd,omitempty"`  // 固定费用
	BaseUSD   *float64         `json:"baseUsd,omitempty"` // 基础费用 + 超重阶梯
	Overage   []FbaOverageRule `json:"overage,omitempty"`
}
