package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dattodev/amazon-crawler/internal/fees"
	"github.com/dattodev/amazon-crawler/internal/model"
	"github.com/dattodev/amazon-crawler/internal/parser"
	"github.com/dattodev/amazon-crawler/internal/workbook"
)

// Coordinator 导入协调器
// 逐 Sheet 独立处理，单表失败不影响其余表
type Coordinator struct {
	metrics    MetricStore
	rules      RuleStore
	categories CategoryStore
	datasets   DatasetStore
	recognizer *parser.SheetRecognizer
}

// NewCoordinator 创建导入协调器
func NewCoordinator(metrics MetricStore, rules RuleStore, categories CategoryStore, datasets DatasetStore) *Coordinator {
	return &Coordinator{
		metrics:    metrics,
		rules:      rules,
		categories: categories,
		datasets:   datasets,
		recognizer: parser.NewSheetRecognizer(),
	}
}

// IngestOptions 导入选项
type IngestOptions struct {
	FilePath  string
	DatasetID string
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/warning/sheet_start/sheet_done/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ingestContext 单次导入的上下文
type ingestContext struct {
	dataset       *model.Dataset
	category      *model.Category
	matcher       *fees.Matcher
	defaultBucket string
	report        *parser.IngestReport
	progressChan  chan ProgressEvent
}

// Ingest 执行导入，立即返回进度通道，导入在后台进行
func (c *Coordinator) Ingest(opts IngestOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)
	go func() {
		defer close(progressChan)
		c.doIngest(opts, progressChan)
	}()
	return progressChan
}

// doIngest 执行导入逻辑
func (c *Coordinator) doIngest(opts IngestOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始导入工作簿",
		Data:      map[string]string{"filename": filepath.Base(opts.FilePath)},
		Timestamp: time.Now(),
	})

	dataset, err := c.datasets.Dataset(opts.DatasetID)
	if err != nil {
		c.fail(progressChan, opts.DatasetID, fmt.Sprintf("数据集不存在: %v", err))
		return
	}

	category, err := c.categories.Category(dataset.CategoryID)
	if err != nil {
		// 类目缺失只影响富化，不阻断主流程
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("类目加载失败，跳过费用富化: %v", err),
			Timestamp: time.Now(),
		})
		category = nil
	}

	wb, err := workbook.Open(opts.FilePath)
	if err != nil {
		c.fail(progressChan, dataset.ID, fmt.Sprintf("打开工作簿失败: %v", err))
		return
	}
	defer wb.Close()

	if err := c.datasets.SetStatus(dataset.ID, model.DatasetParsed); err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("状态更新失败: %v", err),
			Timestamp: time.Now(),
		})
	}

	ctx := &ingestContext{
		dataset:      dataset,
		category:     category,
		matcher:      c.loadMatcher(progressChan),
		progressChan: progressChan,
		report: &parser.IngestReport{
			Filename:  filepath.Base(opts.FilePath),
			DatasetID: dataset.ID,
			Sheets:    []parser.ParseResult{},
		},
	}
	ctx.defaultBucket = c.resolveDefaultBucket(ctx, wb)

	sheetNames := wb.SheetNames()
	ctx.report.TotalSheets = len(sheetNames)
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("发现 %d 个 Sheet，数据月份 %s", len(sheetNames), ctx.defaultBucket),
		Timestamp: time.Now(),
	})

	for _, sheetName := range sheetNames {
		c.processSheet(ctx, wb, sheetName)
	}

	status := model.DatasetReady
	if ctx.report.ImportedSheets == 0 {
		status = model.DatasetFailed
	}
	if err := c.datasets.SetStatus(dataset.ID, status); err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("状态更新失败: %v", err),
			Timestamp: time.Now(),
		})
	}

	ctx.report.Duration = time.Since(startTime)
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      ctx.report,
		Timestamp: time.Now(),
	})
}

// loadMatcher 加载费用规则表，失败时退化为空表（仅影响富化与分级查找）
func (c *Coordinator) loadMatcher(progressChan chan ProgressEvent) *fees.Matcher {
	referral, err1 := c.rules.ReferralFeeRules()
	tiers, err2 := c.rules.SizeTierRules()
	fbaFees, err3 := c.rules.FbaFeeRules()
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("规则表加载失败: %v", err),
				Timestamp: time.Now(),
			})
		}
	}
	return fees.NewMatcher(referral, tiers, fbaFees)
}

// resolveDefaultBucket 推断缺省时间桶
// 数据集已有识别月份则沿用；否则从 Sheet 名中找月份并回写数据集
func (c *Coordinator) resolveDefaultBucket(ctx *ingestContext, wb *workbook.Workbook) string {
	if model.IsMonthBucket(ctx.dataset.TimeRangeFrom) {
		return ctx.dataset.TimeRangeFrom
	}
	for _, name := range wb.SheetNames() {
		if month, ok := parser.ParseMonthBucket(name); ok {
			if err := c.datasets.SetTimeRangeFrom(ctx.dataset.ID, month); err == nil {
				ctx.dataset.TimeRangeFrom = month
			}
			return month
		}
	}
	return model.BucketOverall
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ctx *ingestContext, wb *workbook.Workbook, sheetName string) {
	sheetStart := time.Now()

	rows, err := wb.Rows(sheetName)
	if err != nil || len(rows) < 2 {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			Kind:      parser.SheetUnknown,
			Status:    "skipped",
			Errors:    []string{"sheet 为空或读取失败"},
			Duration:  time.Since(sheetStart),
		})
		return
	}

	recognition := c.recognizer.Recognize(sheetName, rows[0])
	if recognition.Kind == parser.SheetUnknown {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			Kind:      parser.SheetUnknown,
			Status:    "skipped",
			Errors:    []string{"无法识别 Sheet 形态"},
			Duration:  time.Since(sheetStart),
		})
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("跳过无法识别的 Sheet: %s", sheetName),
			Timestamp: time.Now(),
		})
		return
	}

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:      "sheet_start",
		Message:   fmt.Sprintf("正在解析 Sheet: %s (%s)", sheetName, recognition.Kind),
		Timestamp: time.Now(),
	})

	records, update, err := c.parseSheet(ctx, recognition.Kind, rows)
	if err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			Kind:      recognition.Kind,
			Status:    "error",
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStart),
		})
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("Sheet \"%s\" 解析失败: %v", sheetName, err),
			Timestamp: time.Now(),
		})
		return
	}

	// 同一 (数据集, Sheet 形态) 的记录整体替换，保证重复导入幂等
	if err := c.metrics.ReplaceSheetRecords(ctx.dataset.ID, string(recognition.Kind), records); err != nil {
		c.recordSheetResult(ctx, parser.ParseResult{
			SheetName: sheetName,
			Kind:      recognition.Kind,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("写入指标记录失败: %v", err)},
			Duration:  time.Since(sheetStart),
		})
		return
	}

	// 类目常量回写属于富化，失败降级为警告
	if !update.IsEmpty() && ctx.category != nil {
		if err := c.categories.UpdateConstants(ctx.category.ID, update); err != nil {
			c.sendProgress(ctx.progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("类目常量回写失败: %v", err),
				Timestamp: time.Now(),
			})
		}
	}

	c.recordSheetResult(ctx, parser.ParseResult{
		SheetName: sheetName,
		Kind:      recognition.Kind,
		Status:    "imported",
		Records:   len(records),
		Duration:  time.Since(sheetStart),
	})
	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:      "sheet_done",
		Message:   fmt.Sprintf("Sheet \"%s\" 导入成功: %d 条记录", sheetName, len(records)),
		Timestamp: time.Now(),
	})
}

// parseSheet 按形态分发到对应解析器
func (c *Coordinator) parseSheet(ctx *ingestContext, kind parser.SheetKind, rows [][]string) ([]*model.MetricRecord, *model.CategoryConstantUpdate, error) {
	datasetID := ctx.dataset.ID
	categoryID := ctx.dataset.CategoryID

	switch kind {
	case parser.SheetMarketAnalysis:
		p := parser.NewMarketAnalysisParser(ctx.matcher, ctx.category)
		records, err := p.Parse(datasetID, categoryID, rows, ctx.defaultBucket)
		return records, nil, err
	case parser.SheetFulfillment:
		records, err := parser.NewFulfillmentParser().Parse(datasetID, categoryID, rows, ctx.defaultBucket)
		return records, nil, err
	case parser.SheetPublicationTime:
		records, err := parser.NewPublicationTimeParser().Parse(datasetID, categoryID, rows, ctx.defaultBucket)
		return records, nil, err
	case parser.SheetSellerOrigin:
		records, err := parser.NewSellerOriginParser().Parse(datasetID, categoryID, rows, ctx.defaultBucket)
		return records, nil, err
	case parser.SheetConcentration:
		records, err := parser.NewConcentrationParser().Parse(datasetID, categoryID, rows, ctx.defaultBucket)
		return records, nil, err
	case parser.SheetAdsMetrics:
		p := parser.NewAdsParser(c.avgPriceFallback(ctx.dataset))
		records, err := p.Parse(datasetID, categoryID, rows, ctx.defaultBucket)
		return records, nil, err
	case parser.SheetMarketResearch:
		return parser.NewMarketResearchParser(ctx.matcher).Parse(datasetID, categoryID, rows, ctx.defaultBucket)
	default:
		return nil, nil, fmt.Errorf("unsupported sheet kind: %s", kind)
	}
}

// fail 标记数据集失败并发送错误事件
func (c *Coordinator) fail(progressChan chan ProgressEvent, datasetID, message string) {
	_ = c.datasets.SetStatus(datasetID, model.DatasetFailed)
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "error",
		Message:   message,
		Timestamp: time.Now(),
	})
}

// recordSheetResult 记录 Sheet 处理结果
func (c *Coordinator) recordSheetResult(ctx *ingestContext, result parser.ParseResult) {
	ctx.report.Sheets = append(ctx.report.Sheets, result)
	switch result.Status {
	case "imported":
		ctx.report.ImportedSheets++
		ctx.report.TotalRecords += result.Records
	case "skipped":
		ctx.report.SkippedSheets++
	}
}

// sendProgress 发送进度事件，通道满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
