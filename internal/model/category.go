package model

import "time"

// DatasetStatus 数据集导入状态
type DatasetStatus string

const (
	DatasetUploaded DatasetStatus = "uploaded"
	DatasetParsed   DatasetStatus = "parsed"
	DatasetReady    DatasetStatus = "ready"
	DatasetFailed   DatasetStatus = "failed"
)

// Dataset 一次类目调研的上传数据集
type Dataset struct {
	ID            string        `json:"id"`
	CategoryID    string        `json:"categoryId"`
	Name          string        `json:"name"`
	Status        DatasetStatus `json:"status"`
	TimeRangeFrom string        `json:"timeRangeFrom"` // 识别出的数据月份 YYYY-MM，作为缺省时间桶
	CreatedAt     time.Time     `json:"createdAt"`
}

// Category 类目实体，缓存最近一次计算出的常量
// 常量作为行级规则匹配失败时的兜底来源
type Category struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Slug                      string    `json:"slug"`
	FbaFeeUSD                 *float64  `json:"fbaFeeUsd,omitempty"`
	SizeTierEstimate          string    `json:"sizeTierEstimate,omitempty"`
	AvgWeightLb               *float64  `json:"avgWeightLb,omitempty"`
	AvgVolumeIn3              *float64  `json:"avgVolumeIn3,omitempty"`
	ReferralFeePercentDefault *float64  `json:"referralFeePercentDefault,omitempty"`
	ReferralMinFeeUSD         *float64  `json:"referralMinFeeUsd,omitempty"`
	DefaultCTR                *float64  `json:"defaultCtr,omitempty"`
	DefaultCPC                *float64  `json:"defaultCpc,omitempty"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// CategoryConstantUpdate 解析产生的类目常量增量
// 由解析器返回、调用方落库，解析器内部不做任何写入
type CategoryConstantUpdate struct {
	FbaFeeUSD                 *float64 `json:"fbaFeeUsd,omitempty"`
	SizeTierEstimate          *string  `json:"sizeTierEstimate,omitempty"`
	AvgWeightLb               *float64 `json:"avgWeightLb,omitempty"`
	AvgVolumeIn3              *float64 `json:"avgVolumeIn3,omitempty"`
	ReferralFeePercentDefault *float64 `json:"referralFeePercentDefault,omitempty"`
	ReferralMinFeeUSD         *float64 `json:"referralMinFeeUsd,omitempty"`
}

// IsEmpty 判断增量是否没有任何字段
func (u *CategoryConstantUpdate) IsEmpty() bool {
	return u == nil ||
		(u.FbaFeeUSD == nil && u.SizeTierEstimate == nil &&
			u.AvgWeightLb == nil && u.AvgVolumeIn3 == nil &&
			u.ReferralFeePercentDefault == nil && u.ReferralMinFeeUSD == nil)
}
