package calculator

import (
	"fmt"
	"sort"

	"github.com/dattodev/amazon-crawler/internal/model"
)

// MetricReader 汇总查询所需的最小读取接口
type MetricReader interface {
	MetricsByDataset(datasetID string) ([]*model.MetricRecord, error)
}

// Summary 按时间桶整理的指标序列
type Summary struct {
	TimeBuckets    []string                      `json:"timeBuckets"`
	SeriesByMetric map[string]map[string]float64 `json:"seriesByMetric"`
}

// SummaryOptions 汇总查询参数
type SummaryOptions struct {
	Metrics   []string // 指标过滤，空则返回全部
	FromMonth string   // YYYY-MM，含
	ToMonth   string   // YYYY-MM，含
}

// BuildSummary 构建数据集的指标汇总
// 先做多口径归一（见 SelectAuthoritative），再按桶即时推导 ROAS/ACOS/TACOS
func BuildSummary(reader MetricReader, datasetID string, opts SummaryOptions) (*Summary, error) {
	records, err := reader.MetricsByDataset(datasetID)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	inRange := records[:0:0]
	for _, rec := range records {
		if model.IsMonthBucket(rec.Bucket) {
			if opts.FromMonth != "" && rec.Bucket < opts.FromMonth {
				continue
			}
			if opts.ToMonth != "" && rec.Bucket > opts.ToMonth {
				continue
			}
		}
		inRange = append(inRange, rec)
	}

	reconciled := ReconcileByBucket(inRange)

	wanted := func(metric string) bool {
		if len(opts.Metrics) == 0 {
			return true
		}
		for _, m := range opts.Metrics {
			if m == metric {
				return true
			}
		}
		return false
	}

	series := make(map[string]map[string]float64)
	bucketSet := make(map[string]struct{})
	put := func(metric, bucket string, value float64) {
		if !wanted(metric) {
			return
		}
		if series[metric] == nil {
			series[metric] = make(map[string]float64)
		}
		series[metric][bucket] = value
		bucketSet[bucket] = struct{}{}
	}

	for metric, buckets := range reconciled {
		for bucket, rec := range buckets {
			put(metric, bucket, rec.Value)
		}
	}

	// 广告效率比值按桶即时推导，不覆盖已落库的值
	for bucket := range collectBuckets(reconciled) {
		cr := bucketValue(reconciled, model.MetricCR, bucket)
		cpc := bucketValue(reconciled, model.MetricCPC, bucket)
		price := bucketValue(reconciled, model.MetricAvgPrice, bucket)
		clickShare := bucketValue(reconciled, model.MetricClickShare, bucket)
		if cr == nil || cpc == nil || price == nil {
			continue
		}
		crFrac := *cr / 100
		var shareFrac *float64
		if clickShare != nil {
			f := *clickShare / 100
			shareFrac = &f
		}
		chain := ComputeAdsChain(&crFrac, cpc, shareFrac, *price)
		if chain.ROAS != nil && !hasBucket(reconciled, model.MetricROAS, bucket) {
			put(model.MetricROAS, bucket, *chain.ROAS)
		}
		if chain.ACOS != nil && !hasBucket(reconciled, model.MetricACOS, bucket) {
			put(model.MetricACOS, bucket, *chain.ACOS*100)
		}
		if chain.TACOS != nil && !hasBucket(reconciled, model.MetricTACOS, bucket) {
			put(model.MetricTACOS, bucket, *chain.TACOS*100)
		}
	}

	return &Summary{
		TimeBuckets:    sortBuckets(bucketSet),
		SeriesByMetric: series,
	}, nil
}

func collectBuckets(reconciled map[string]map[string]*model.MetricRecord) map[string]struct{} {
	buckets := make(map[string]struct{})
	for _, byBucket := range reconciled {
		for bucket := range byBucket {
			buckets[bucket] = struct{}{}
		}
	}
	return buckets
}

func bucketValue(reconciled map[string]map[string]*model.MetricRecord, metric, bucket string) *float64 {
	rec, ok := reconciled[metric][bucket]
	if !ok || rec == nil {
		return nil
	}
	v := rec.Value
	return &v
}

func hasBucket(reconciled map[string]map[string]*model.MetricRecord, metric, bucket string) bool {
	_, ok := reconciled[metric][bucket]
	return ok
}

// sortBuckets 月份升序在前，固定标记桶在后
func sortBuckets(set map[string]struct{}) []string {
	buckets := make([]string, 0, len(set))
	for b := range set {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		mi, mj := model.IsMonthBucket(buckets[i]), model.IsMonthBucket(buckets[j])
		if mi != mj {
			return mi
		}
		return buckets[i] < buckets[j]
	})
	return buckets
}
