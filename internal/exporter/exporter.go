package exporter

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/dattodev/amazon-crawler/internal/calculator"
	"github.com/dattodev/amazon-crawler/internal/model"
)

// Exporter 数据集导出器，把汇总序列与原始记录写入新工作簿
type Exporter struct {
	reader calculator.MetricReader
}

// NewExporter 创建导出器
func NewExporter(reader calculator.MetricReader) *Exporter {
	return &Exporter{reader: reader}
}

const (
	summarySheet = "指标汇总"
	recordsSheet = "原始记录"
)

// Export 导出数据集到 Excel
func (e *Exporter) Export(datasetID string) (*excelize.File, error) {
	summary, err := calculator.BuildSummary(e.reader, datasetID, calculator.SummaryOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	records, err := e.reader.MetricsByDataset(datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)
	if err := e.fillSummary(f, summary); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(recordsSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.fillRecords(f, records); err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// fillSummary 写入时间序列汇总，行是指标，列是时间桶
func (e *Exporter) fillSummary(f *excelize.File, summary *calculator.Summary) error {
	header := append([]any{"指标"}, toAnySlice(summary.TimeBuckets)...)
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	metrics := make([]string, 0, len(summary.SeriesByMetric))
	for metric := range summary.SeriesByMetric {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	for i, metric := range metrics {
		series := summary.SeriesByMetric[metric]
		row := make([]any, 0, len(summary.TimeBuckets)+1)
		row = append(row, metric)
		for _, bucket := range summary.TimeBuckets {
			if v, ok := series[bucket]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// fillRecords 写入原始指标记录
func (e *Exporter) fillRecords(f *excelize.File, records []*model.MetricRecord) error {
	header := []any{"指标", "时间桶", "数值", "单位", "来源 Sheet", "样本量", "样本类型"}
	if err := f.SetSheetRow(recordsSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		row := []any{r.Metric, r.Bucket, r.Value, string(r.Unit), r.SourceSheet, nil, r.SampleType}
		if r.SampleSize != nil {
			row[5] = *r.SampleSize
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func toAnySlice(values []string) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
