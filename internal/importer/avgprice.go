package importer

import (
	"github.com/dattodev/amazon-crawler/internal/calculator"
	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/parser"
)

// AvgPriceStrategy 均价解析策略，失败返回 ok=false 交给下一个策略
type AvgPriceStrategy func(bucket string) (float64, bool)

// avgPriceFallback 将策略链封装为解析器可用的兜底函数
// 顺序：本数据集同桶均价 → 同类目其他数据集同月份 → 本数据集最近可用均价
// 任何存储错误都按未命中处理，富化查询不允许影响主流程
func (c *Coordinator) avgPriceFallback(dataset *model.Dataset) parser.AvgPriceFallback {
	strategies := []AvgPriceStrategy{
		c.avgPriceInDataset(dataset.ID),
		c.avgPriceInCategory(dataset),
		c.latestAvgPrice(dataset.ID),
	}
	return func(bucket string) (float64, bool) {
		for _, strategy := range strategies {
			if v, ok := strategy(bucket); ok {
				return v, true
			}
		}
		return 0, false
	}
}

// avgPriceInDataset 本数据集内同一时间桶的权威均价
func (c *Coordinator) avgPriceInDataset(datasetID string) AvgPriceStrategy {
	return func(bucket string) (float64, bool) {
		return c.authoritativeAvgPrice(datasetID, bucket)
	}
}

// avgPriceInCategory 同类目其他数据集在同一月份的均价
func (c *Coordinator) avgPriceInCategory(dataset *model.Dataset) AvgPriceStrategy {
	return func(bucket string) (float64, bool) {
		if !model.IsMonthBucket(bucket) {
			return 0, false
		}
		siblings, err := c.datasets.DatasetsByCategory(dataset.CategoryID)
		if err != nil {
			return 0, false
		}
		for _, sibling := range siblings {
			if sibling.ID == dataset.ID {
				continue
			}
			if v, ok := c.authoritativeAvgPrice(sibling.ID, bucket); ok {
				return v, true
			}
		}
		return 0, false
	}
}

// latestAvgPrice 本数据集任意桶中最近的均价
func (c *Coordinator) latestAvgPrice(datasetID string) AvgPriceStrategy {
	return func(string) (float64, bool) {
		records, err := c.metrics.MetricsByDataset(datasetID)
		if err != nil {
			return 0, false
		}
		byBucket := map[string][]*model.MetricRecord{}
		latest := ""
		for _, rec := range records {
			if rec.Metric != model.MetricAvgPrice {
				continue
			}
			byBucket[rec.Bucket] = append(byBucket[rec.Bucket], rec)
			// 月份桶按字典序即时间序，非月份桶劣后
			if latest == "" || bucketAfter(rec.Bucket, latest) {
				latest = rec.Bucket
			}
		}
		if latest == "" {
			return 0, false
		}
		best := calculator.SelectAuthoritative(byBucket[latest])
		if best == nil {
			return 0, false
		}
		return best.Value, true
	}
}

func bucketAfter(a, b string) bool {
	aMonth, bMonth := model.IsMonthBucket(a), model.IsMonthBucket(b)
	if aMonth != bMonth {
		return aMonth
	}
	return a > b
}

// authoritativeAvgPrice 指定数据集、指定桶的权威均价
func (c *Coordinator) authoritativeAvgPrice(datasetID, bucket string) (float64, bool) {
	records, err := c.metrics.MetricsByDataset(datasetID)
	if err != nil {
		return 0, false
	}
	var candidates []*model.MetricRecord
	for _, rec := range records {
		if rec.Metric == model.MetricAvgPrice && rec.Bucket == bucket {
			candidates = append(candidates, rec)
		}
	}
	best := calculator.SelectAuthoritative(candidates)
	if best == nil {
		return 0, false
	}
	return best.Value, true
}
