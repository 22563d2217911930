package calculator

import (
	"testing"
	"time"

	"github.com/dattodev/amazon-crawler/internal/model"
)

func rec(sampleType string, sampleSize float64, value float64, createdAt time.Time) *model.MetricRecord {
	return &model.MetricRecord{
		Metric:     model.MetricSalesUnits,
		Bucket:     "2024-06",
		Value:      value,
		SampleType: sampleType,
		SampleSize: &sampleSize,
		CreatedAt:  createdAt,
	}
}

func TestSelectAuthoritative_AllBeatsLargerSample(t *testing.T) {
	t.Parallel()

	now := time.Now()
	all := rec("All", 50, 100, now)
	top := rec("Top 500", 500, 200, now)

	if got := SelectAuthoritative([]*model.MetricRecord{top, all}); got != all {
		t.Fatalf("expected All record to win over larger sample")
	}
	if got := SelectAuthoritative([]*model.MetricRecord{all, top}); got != all {
		t.Fatalf("selection must not depend on input order")
	}
}

func TestSelectAuthoritative_LargerSampleWins(t *testing.T) {
	t.Parallel()

	now := time.Now()
	small := rec("Top 50", 50, 100, now)
	large := rec("Top 500", 500, 200, now)

	if got := SelectAuthoritative([]*model.MetricRecord{small, large}); got != large {
		t.Fatalf("expected larger sample to win")
	}
}

func TestSelectAuthoritative_NewerWinsOnTie(t *testing.T) {
	t.Parallel()

	older := rec("Top 50", 50, 100, time.Now().Add(-time.Hour))
	newer := rec("Top 50", 50, 200, time.Now())

	if got := SelectAuthoritative([]*model.MetricRecord{older, newer}); got != newer {
		t.Fatalf("expected newer record to win on tie")
	}
}

func TestReconcileByBucket(t *testing.T) {
	t.Parallel()

	now := time.Now()
	all := rec("All", 50, 100, now)
	top := rec("Top 500", 500, 200, now)
	other := rec("All", 50, 300, now)
	other.Bucket = "2024-07"

	result := ReconcileByBucket([]*model.MetricRecord{top, all, other})
	if result[model.MetricSalesUnits]["2024-06"] != all {
		t.Fatalf("2024-06 should reconcile to the All record")
	}
	if result[model.MetricSalesUnits]["2024-07"] != other {
		t.Fatalf("2024-07 should keep its single record")
	}
}
