package parser

import "strings"

// headerScanLimit 表头探测扫描的最大行数
const headerScanLimit = 10

// DetectHeaderRow 在前若干行中定位真正的表头行
// 逐行统计包含期望关键字的单元格数，得分最高者胜出
// 平分（包括全部为 0）时取最先出现的行，缺省第 0 行
func DetectHeaderRow(rows [][]string, expectedKeywords []string) int {
	keywords := make([]string, 0, len(expectedKeywords))
	for _, kw := range expectedKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	bestIdx := 0
	bestScore := 0
	for i := 0; i < limit; i++ {
		score := scoreHeaderRow(rows[i], keywords)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

// scoreHeaderRow 统计一行中命中关键字的单元格数
func scoreHeaderRow(row []string, keywords []string) int {
	score := 0
	for _, cell := range row {
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				score++
				break
			}
		}
	}
	return score
}
