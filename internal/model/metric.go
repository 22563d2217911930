package model

import (
	"strings"
	"time"
)

// Unit 指标数值单位
type Unit string

const (
	UnitUSD   Unit = "usd"   // 美元金额
	UnitPct   Unit = "pct"   // 百分比（0-100 百分点）
	UnitUnits Unit = "units" // 销量件数
	UnitCount Unit = "count" // 普通计数
	UnitRatio Unit = "ratio" // 比值
)

// 固定时间桶标记（非 YYYY-MM 月份）
const (
	BucketOverall = "overall" // 单次快照，无月度维度
	BucketTop10   = "top10"   // 头部 10 名 listing 汇总
)

// 指标名称
const (
	MetricSalesUnits      = "sales_units"
	MetricRevenue         = "revenue"
	MetricAvgPrice        = "avg_price"
	MetricAvgRatings      = "avg_ratings"
	MetricAvgRating       = "avg_rating"
	MetricReferralFee     = "referral_fee"
	MetricCogsCap         = "cogs_cap"
	MetricProfit          = "profit"
	MetricMargin          = "margin"
	MetricROI             = "roi"
	MetricNewProductRatio = "new_product_ratio"
	MetricTop10SalesShare = "top10_sales_share"
	MetricCTR             = "ctr"
	MetricCPC             = "cpc"
	MetricCR              = "cr"
	MetricROAS            = "roas"
	MetricACOS            = "acos"
	MetricTACOS           = "tacos"
	MetricCPP             = "cpp"
	MetricClickShare      = "click_share"
	MetricMonthlySearches = "monthly_searches"
	MetricAvgWeightLb     = "avg_weight_lb"
	MetricAvgVolumeIn3    = "avg_volume_in3"
	MetricFbaFee          = "fba_fee"
)

// 配送方式指标前缀与卖家所属地指标前缀
const (
	MetricFulfillmentPrefix  = "fulfillment_"
	MetricSellerOriginPrefix = "seller_origin_"
)

// MetricRecord 规范化后的时间序列指标记录
type MetricRecord struct {
	ID          int64     `json:"id"`
	DatasetID   string    `json:"datasetId"`
	CategoryID  string    `json:"categoryId"`
	Metric      string    `json:"metric"`
	Bucket      string    `json:"bucket"` // YYYY-MM / overall / top10
	Value       float64   `json:"value"`
	Unit        Unit      `json:"unit"`
	SourceSheet string    `json:"sourceSheet"`
	SampleSize  *float64  `json:"sampleSize,omitempty"` // 样本量（市场分析多口径行）
	SampleType  string    `json:"sampleType,omitempty"` // 样本口径，如 All / Top 50
	FeePercent  *float64  `json:"feePercent,omitempty"` // 佣金费率（referral_fee 记录）
	BasePrice   *float64  `json:"basePrice,omitempty"`  // 计算费用时使用的单价
	CreatedAt   time.Time `json:"createdAt"`
}

// IsAllSampleType 判断样本口径是否为权威 All
func IsAllSampleType(sampleType string) bool {
	return strings.EqualFold(strings.TrimSpace(sampleType), "all")
}

// IsMonthBucket 判断是否为 YYYY-MM 月份桶
func IsMonthBucket(bucket string) bool {
	if len(bucket) != 7 || bucket[4] != '-' {
		return false
	}
	for i, c := range bucket {
		if i == 4 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
