package parser

import "time"

// SheetKind Sheet 形态
type SheetKind string

const (
	SheetMarketAnalysis  SheetKind = "market_analysis"
	SheetFulfillment     SheetKind = "fulfillment"
	SheetPublicationTime SheetKind = "publication_time"
	SheetSellerOrigin    SheetKind = "seller_origin"
	SheetConcentration   SheetKind = "listing_concentration"
	SheetAdsMetrics      SheetKind = "ads_metrics"
	SheetMarketResearch  SheetKind = "market_research"
	SheetUnknown         SheetKind = "unknown"
)

// RecognitionResult Sheet 识别结果
type RecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	Kind       SheetKind `json:"kind"`
	Confidence float64   `json:"confidence"` // 置信度 0-1
}

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName    string        `json:"sheetName"`
	Kind         SheetKind     `json:"kind"`
	Status       string        `json:"status"` // imported/skipped/error
	ImportedRows int           `json:"importedRows"`
	Records      int           `json:"records"`
	Errors       []string      `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// IngestReport 整个工作簿的导入报告
type IngestReport struct {
	Filename       string        `json:"filename"`
	DatasetID      string        `json:"datasetId"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRecords   int           `json:"totalRecords"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
