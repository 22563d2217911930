package importer

import "github.com/dattodev/amazon-crawler/internal/model"

// MetricStore 指标记录的持久化边界
// 同一 (datasetID, sourceSheet) 的记录集整体替换，先删后插，不做局部合并
type MetricStore interface {
	ReplaceSheetRecords(datasetID, sourceSheet string, records []*model.MetricRecord) error
	MetricsByDataset(datasetID string) ([]*model.MetricRecord, error)
}

// RuleStore 外部供给的费用规则表，引擎只读
type RuleStore interface {
	ReferralFeeRules() ([]*model.ReferralFeeRule, error)
	SizeTierRules() ([]*model.SizeTierRule, error)
	FbaFeeRules() ([]*model.FbaFeeRule, error)
}

// CategoryStore 类目实体及其常量缓存
type CategoryStore interface {
	Category(id string) (*model.Category, error)
	UpdateConstants(id string, update *model.CategoryConstantUpdate) error
}

// DatasetStore 数据集实体与导入状态
type DatasetStore interface {
	Dataset(id string) (*model.Dataset, error)
	DatasetsByCategory(categoryID string) ([]*model.Dataset, error)
	SetStatus(id string, status model.DatasetStatus) error
	SetTimeRangeFrom(id, month string) error
}
