package parser

import "strings"

// SheetRecognizer Sheet 形态识别器
// 优先按 Sheet 名称的宽松子串匹配，名称无信息时退化为表头关键字计分
type SheetRecognizer struct{}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{}
}

// nameTokens Sheet 名称特征，按序尝试，命中即定型
var nameTokens = []struct {
	kind   SheetKind
	tokens []string
}{
	{SheetMarketResearch, []string{"market-research", "market research", "weight & tier", "weight tier"}},
	{SheetMarketAnalysis, []string{"market analysis", "market-analysis"}},
	{SheetConcentration, []string{"concentration", "listing"}},
	{SheetFulfillment, []string{"fulfillment", "fulfilment", "delivery"}},
	{SheetPublicationTime, []string{"publication", "publish", "listing age"}},
	{SheetSellerOrigin, []string{"origin", "seller country"}},
	{SheetAdsMetrics, []string{"ads", "advertis", "keyword"}},
}

// headerKeywords 各形态的表头关键字，用于名称不可辨识时的计分
// 顺序固定，计分持平时取靠前者，保证识别结果可复现
var headerKeywords = []struct {
	kind     SheetKind
	keywords []string
}{
	{SheetMarketAnalysis, []string{"sample type", "sample size", "unit sales", "revenue", "price"}},
	{SheetAdsMetrics, []string{"click", "impression", "cpc", "ctr", "bid", "search"}},
	{SheetConcentration, []string{"rank", "proportion", "asin"}},
	{SheetFulfillment, []string{"fulfillment", "fulfilment", "percentage", "proportion"}},
	{SheetPublicationTime, []string{"publication", "time", "proportion"}},
	{SheetSellerOrigin, []string{"origin", "seller", "proportion"}},
	{SheetMarketResearch, []string{"weight", "volume"}},
}

// Recognize 识别 Sheet 形态
func (r *SheetRecognizer) Recognize(sheetName string, header []string) RecognitionResult {
	name := strings.ToLower(strings.TrimSpace(sheetName))

	for _, entry := range nameTokens {
		for _, token := range entry.tokens {
			if strings.Contains(name, token) {
				return RecognitionResult{
					SheetName:  sheetName,
					Kind:       entry.kind,
					Confidence: 1.0,
				}
			}
		}
	}

	// 名称不可辨识，按表头关键字计分
	bestKind := SheetUnknown
	bestConfidence := 0.0
	for _, entry := range headerKeywords {
		matched := 0
		for _, kw := range entry.keywords {
			for _, cell := range header {
				if strings.Contains(strings.ToLower(cell), kw) {
					matched++
					break
				}
			}
		}
		confidence := float64(matched) / float64(len(entry.keywords))
		if confidence > bestConfidence {
			bestConfidence = confidence
			bestKind = entry.kind
		}
	}

	if bestConfidence >= 0.5 {
		return RecognitionResult{
			SheetName:  sheetName,
			Kind:       bestKind,
			Confidence: bestConfidence,
		}
	}

	return RecognitionResult{
		SheetName:  sheetName,
		Kind:       SheetUnknown,
		Confidence: bestConfidence,
	}
}
