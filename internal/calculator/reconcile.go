package calculator

import (
	"github.com/dattodev/amazon-crawler/internal/model"
)

// SelectAuthoritative 从同一 (metric, bucket) 的多条候选记录中挑选权威记录
// 优先级：Sample Type 为 All > 样本量更大 > 创建时间更晚
// 在读取端执行，落库的各口径原始记录保持可审计
func SelectAuthoritative(candidates []*model.MetricRecord) *model.MetricRecord {
	var best *model.MetricRecord
	for _, rec := range candidates {
		if rec == nil {
			continue
		}
		if best == nil || preferred(rec, best) {
			best = rec
		}
	}
	return best
}

// preferred 判断 a 是否应取代当前最优 b
func preferred(a, b *model.MetricRecord) bool {
	aAll := model.IsAllSampleType(a.SampleType)
	bAll := model.IsAllSampleType(b.SampleType)
	if aAll != bAll {
		return aAll
	}
	aSize, bSize := sampleSize(a), sampleSize(b)
	if aSize != bSize {
		return aSize > bSize
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func sampleSize(r *model.MetricRecord) float64 {
	if r.SampleSize == nil {
		return 0
	}
	return *r.SampleSize
}

// ReconcileByBucket 将记录按 (metric, bucket) 归组并各取权威记录
func ReconcileByBucket(records []*model.MetricRecord) map[string]map[string]*model.MetricRecord {
	grouped := make(map[string]map[string][]*model.MetricRecord)
	for _, rec := range records {
		if grouped[rec.Metric] == nil {
			grouped[rec.Metric] = make(map[string][]*model.MetricRecord)
		}
		grouped[rec.Metric][rec.Bucket] = append(grouped[rec.Metric][rec.Bucket], rec)
	}

	result := make(map[string]map[string]*model.MetricRecord, len(grouped))
	for metric, buckets := range grouped {
		result[metric] = make(map[string]*model.MetricRecord, len(buckets))
		for bucket, candidates := range buckets {
			result[metric][bucket] = SelectAuthoritative(candidates)
		}
	}
	return result
}
