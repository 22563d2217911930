package importer

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/parser"
	"github.com/dattodev/amazon-crawler/internal/store"
)

// writeFixtureWorkbook 生成一个四表工作簿：
// 市场分析（可解析）、配送方式（可解析）、卖家所属地（表头残缺）、无关表
func writeFixtureWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	write := func(sheet string, rows [][]interface{}) {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			r := row
			if err := f.SetSheetRow(sheet, cell, &r); err != nil {
				t.Fatalf("write sheet %s: %v", sheet, err)
			}
		}
	}

	f.SetSheetName("Sheet1", "Market Analysis 2024年6月")
	write("Market Analysis 2024年6月", [][]interface{}{
		{"Sample Type", "Sample Size", "Unit Sales", "Revenue", "Price"},
		{"All", 100, 600, 30, 25.99},
		{"Top 50", 50, 700, 35, 26.50},
	})

	for _, name := range []string{"Fulfillment", "Origin of Seller", "Readme"} {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %s: %v", name, err)
		}
	}
	write("Fulfillment", [][]interface{}{
		{"Fulfillment Type", "Percentage"},
		{"FBA", "60%"},
		{"FBM", "40%"},
	})
	// 缺少比例列，解析必须失败但不拖垮其他表
	write("Origin of Seller", [][]interface{}{
		{"Country"},
		{"China"},
	})
	write("Readme", [][]interface{}{
		{"Note"},
		{"This sheet is not research data"},
	})

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()

	st := store.NewMemoryStore()
	st.SetRules([]*model.ReferralFeeRule{
		{Category: "Home & Kitchen", FeePercent: 0.15, ApplyTo: model.ApplyToTotal},
	}, nil, nil)
	if err := st.CreateCategory(&model.Category{ID: "cat1", Name: "Home & Kitchen", Slug: "home-kitchen"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := st.CreateDataset(&model.Dataset{ID: "ds1", CategoryID: "cat1", Name: "fixture", Status: model.DatasetUploaded}); err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	return st
}

func runIngest(t *testing.T, c *Coordinator, datasetID, path string) *parser.IngestReport {
	t.Helper()

	var report *parser.IngestReport
	for evt := range c.Ingest(IngestOptions{FilePath: path, DatasetID: datasetID}) {
		if evt.Type == "error" {
			t.Fatalf("ingest error event: %s", evt.Message)
		}
		if evt.Type == "done" {
			report = evt.Data.(*parser.IngestReport)
		}
	}
	if report == nil {
		t.Fatalf("missing done report")
	}
	return report
}

func TestIngest_SheetFaultIsolation(t *testing.T) {
	t.Parallel()

	path := writeFixtureWorkbook(t)
	st := newTestStore(t)
	c := NewCoordinator(st, st, st, st)

	report := runIngest(t, c, "ds1", path)

	if report.TotalSheets != 4 {
		t.Fatalf("total sheets = %d, want 4", report.TotalSheets)
	}
	if report.ImportedSheets != 2 {
		t.Fatalf("imported sheets = %d, want 2: %+v", report.ImportedSheets, report.Sheets)
	}
	if report.SkippedSheets != 1 {
		t.Fatalf("skipped sheets = %d, want 1", report.SkippedSheets)
	}

	statuses := map[string]string{}
	for _, s := range report.Sheets {
		statuses[s.SheetName] = s.Status
	}
	if statuses["Origin of Seller"] != "error" {
		t.Fatalf("origin sheet status = %q, want error", statuses["Origin of Seller"])
	}
	if statuses["Fulfillment"] != "imported" {
		t.Fatalf("fulfillment must import despite origin failure, got %q", statuses["Fulfillment"])
	}

	dataset, err := st.Dataset("ds1")
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if dataset.Status != model.DatasetReady {
		t.Fatalf("dataset status = %s, want ready", dataset.Status)
	}
	if dataset.TimeRangeFrom != "2024-06" {
		t.Fatalf("time range = %q, want 2024-06 (from sheet name)", dataset.TimeRangeFrom)
	}

	records, err := st.MetricsByDataset("ds1")
	if err != nil {
		t.Fatalf("load metrics: %v", err)
	}
	var sales *model.MetricRecord
	for _, r := range records {
		if r.Metric == model.MetricSalesUnits && r.SampleType == "All" {
			sales = r
		}
	}
	if sales == nil || sales.Value != 60000 {
		t.Fatalf("sales_units (All) = %+v, want 60000", sales)
	}
	if sales.Bucket != "2024-06" {
		t.Fatalf("sales bucket = %q, want 2024-06", sales.Bucket)
	}
}

func TestIngest_Reingestion_Idempotent(t *testing.T) {
	t.Parallel()

	path := writeFixtureWorkbook(t)
	st := newTestStore(t)
	c := NewCoordinator(st, st, st, st)

	runIngest(t, c, "ds1", path)
	first, err := st.MetricsByDataset("ds1")
	if err != nil {
		t.Fatalf("load metrics: %v", err)
	}

	runIngest(t, c, "ds1", path)
	second, err := st.MetricsByDataset("ds1")
	if err != nil {
		t.Fatalf("load metrics: %v", err)
	}

	if len(first) == 0 {
		t.Fatalf("no records after first ingest")
	}
	if len(second) != len(first) {
		t.Fatalf("record count changed after re-ingest: %d -> %d", len(first), len(second))
	}
}

func TestIngest_MissingDatasetFails(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	c := NewCoordinator(st, st, st, st)

	sawError := false
	for evt := range c.Ingest(IngestOptions{FilePath: "nope.xlsx", DatasetID: "missing"}) {
		if evt.Type == "error" {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected error event for missing dataset")
	}
}
