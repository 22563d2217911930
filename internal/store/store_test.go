package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dattodev/amazon-crawler/internal/model"
)

func newTestDB(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedCategoryDataset(t *testing.T, st *Store) {
	t.Helper()

	if err := st.CreateCategory(&model.Category{ID: "cat1", Name: "Home & Kitchen", Slug: "home-kitchen"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := st.CreateDataset(&model.Dataset{ID: "ds1", CategoryID: "cat1", Name: "2024-06", Status: model.DatasetUploaded}); err != nil {
		t.Fatalf("create dataset: %v", err)
	}
}

func TestSeededRules(t *testing.T) {
	t.Parallel()
	st := newTestDB(t)

	referral, err := st.ReferralFeeRules()
	if err != nil {
		t.Fatalf("referral rules: %v", err)
	}
	if len(referral) != 16 {
		t.Fatalf("referral rules = %d, want 16", len(referral))
	}

	tiers, err := st.SizeTierRules()
	if err != nil {
		t.Fatalf("tier rules: %v", err)
	}
	if len(tiers) != 3 {
		t.Fatalf("tier rules = %d, want 3", len(tiers))
	}
	if tiers[0].Tier != model.TierSmallStandard || tiers[2].Tier != model.TierOversize {
		t.Fatalf("tier order broken: %s .. %s", tiers[0].Tier, tiers[2].Tier)
	}

	fbaFees, err := st.FbaFeeRules()
	if err != nil {
		t.Fatalf("fba rules: %v", err)
	}
	if len(fbaFees) != 19 {
		t.Fatalf("fba rules = %d, want 19", len(fbaFees))
	}

	// 超重阶梯必须跟随所属区间一起装载
	overages := 0
	for _, r := range fbaFees {
		overages += len(r.Overage)
	}
	if overages != 4 {
		t.Fatalf("overage steps = %d, want 4", overages)
	}
	for _, r := range fbaFees {
		if r.Tier == model.TierLargeStandard && r.BaseUSD != nil && *r.BaseUSD == 6.13 {
			if len(r.Overage) != 1 || r.Overage[0].StepFeeUSD != 0.16 {
				t.Fatalf("large standard 3-20lb overage = %+v", r.Overage)
			}
		}
	}
}

func TestReplaceSheetRecords_Idempotent(t *testing.T) {
	t.Parallel()
	st := newTestDB(t)
	seedCategoryDataset(t, st)

	sample := 100.0
	fee := 0.15
	records := []*model.MetricRecord{
		{CategoryID: "cat1", Metric: model.MetricSalesUnits, Bucket: "2024-06", Value: 60000, Unit: model.UnitCount, SampleSize: &sample, SampleType: "All"},
		{CategoryID: "cat1", Metric: model.MetricReferralFee, Bucket: "2024-06", Value: 3.9, Unit: model.UnitUSD, FeePercent: &fee},
	}
	if err := st.ReplaceSheetRecords("ds1", "market_analysis", records); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := st.ReplaceSheetRecords("ds1", "market_analysis", records); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := st.MetricsByDataset("ds1")
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records after rewrite = %d, want 2", len(got))
	}
	if got[0].Metric != model.MetricSalesUnits || got[0].SampleSize == nil || *got[0].SampleSize != 100 {
		t.Fatalf("first record round trip broken: %+v", got[0])
	}
	if got[1].FeePercent == nil || *got[1].FeePercent != 0.15 {
		t.Fatalf("fee percent lost: %+v", got[1])
	}
	if got[0].SourceSheet != "market_analysis" || got[0].DatasetID != "ds1" {
		t.Fatalf("record keys not filled: %+v", got[0])
	}
}

func TestReplaceSheetRecords_ScopedToSheet(t *testing.T) {
	t.Parallel()
	st := newTestDB(t)
	seedCategoryDataset(t, st)

	write := func(sheet, metric string, value float64) {
		t.Helper()
		err := st.ReplaceSheetRecords("ds1", sheet, []*model.MetricRecord{
			{CategoryID: "cat1", Metric: metric, Bucket: model.BucketOverall, Value: value, Unit: model.UnitPct},
		})
		if err != nil {
			t.Fatalf("write %s: %v", sheet, err)
		}
	}

	write("fulfillment", "fulfillment_fba", 60)
	write("seller_origin", "seller_origin_china", 70)
	// 重写其中一张表不得波及另一张
	write("fulfillment", "fulfillment_fba", 65)

	got, err := st.MetricsByDataset("ds1")
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	values := map[string]float64{}
	for _, r := range got {
		values[r.Metric] = r.Value
	}
	if values["fulfillment_fba"] != 65 || values["seller_origin_china"] != 70 {
		t.Fatalf("values = %v", values)
	}
}

func TestDatasetLifecycle(t *testing.T) {
	t.Parallel()
	st := newTestDB(t)
	seedCategoryDataset(t, st)

	if _, err := st.Dataset("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing dataset err = %v, want ErrNotFound", err)
	}

	if err := st.SetStatus("ds1", model.DatasetReady); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := st.SetTimeRangeFrom("ds1", "2024-06"); err != nil {
		t.Fatalf("set time range: %v", err)
	}

	ds, err := st.Dataset("ds1")
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if ds.Status != model.DatasetReady || ds.TimeRangeFrom != "2024-06" {
		t.Fatalf("dataset = %+v", ds)
	}

	list, err := st.DatasetsByCategory("cat1")
	if err != nil {
		t.Fatalf("list datasets: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ds1" {
		t.Fatalf("datasets = %+v", list)
	}

	if err := st.DeleteDataset("ds1"); err != nil {
		t.Fatalf("delete dataset: %v", err)
	}
	if _, err := st.Dataset("ds1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted dataset err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDataset_CascadesRecords(t *testing.T) {
	t.Parallel()
	st := newTestDB(t)
	seedCategoryDataset(t, st)

	err := st.ReplaceSheetRecords("ds1", "fulfillment", []*model.MetricRecord{
		{CategoryID: "cat1", Metric: "fulfillment_fba", Bucket: model.BucketOverall, Value: 60, Unit: model.UnitPct},
	})
	if err != nil {
		t.Fatalf("write records: %v", err)
	}
	if err := st.DeleteDataset("ds1"); err != nil {
		t.Fatalf("delete dataset: %v", err)
	}
	got, err := st.MetricsByDataset("ds1")
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("records survived dataset delete: %d", len(got))
	}
}

func TestUpdateConstants_Partial(t *testing.T) {
	t.Parallel()
	st := newTestDB(t)
	seedCategoryDataset(t, st)

	fee := 4.15
	weight := 0.6
	err := st.UpdateConstants("cat1", &model.CategoryConstantUpdate{
		FbaFeeUSD:   &fee,
		AvgWeightLb: &weight,
	})
	if err != nil {
		t.Fatalf("update constants: %v", err)
	}

	cat, err := st.Category("cat1")
	if err != nil {
		t.Fatalf("load category: %v", err)
	}
	if cat.FbaFeeUSD == nil || *cat.FbaFeeUSD != 4.15 {
		t.Fatalf("fba fee = %+v", cat.FbaFeeUSD)
	}
	if cat.AvgWeightLb == nil || *cat.AvgWeightLb != 0.6 {
		t.Fatalf("avg weight = %+v", cat.AvgWeightLb)
	}
	// 未提供的字段不得被覆盖
	if cat.SizeTierEstimate != "" || cat.ReferralFeePercentDefault != nil {
		t.Fatalf("untouched fields changed: %+v", cat)
	}

	tier := "Large Standard"
	if err := st.UpdateConstants("cat1", &model.CategoryConstantUpdate{SizeTierEstimate: &tier}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	cat, err = st.Category("cat1")
	if err != nil {
		t.Fatalf("reload category: %v", err)
	}
	if cat.SizeTierEstimate != "Large Standard" {
		t.Fatalf("tier estimate = %q", cat.SizeTierEstimate)
	}
	if cat.FbaFeeUSD == nil || *cat.FbaFeeUSD != 4.15 {
		t.Fatalf("earlier constant lost: %+v", cat.FbaFeeUSD)
	}

	// 空增量应当是无操作
	if err := st.UpdateConstants("cat1", &model.CategoryConstantUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
}
