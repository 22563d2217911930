package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseNumber 宽容地解析单元格数值
// 去除货币符号、百分号、千分位、首尾空白，全角符号归一
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "，", ",")
	s = strings.ReplaceAll(s, "％", "%")
	s = strings.TrimPrefix(s, "US$")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParsePercent 解析百分比并归一为百分点（0-100）
// "45%" 与 0.45 均归一为 45.0；83 视为已是百分点，保持 83.0
func ParsePercent(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	hasSign := strings.Contains(s, "%") || strings.Contains(s, "％")
	v, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	if hasSign {
		return v, true
	}
	// 小数形式的比例提升为百分点
	if v > 0 && v < 1 {
		return v * 100, true
	}
	return v, true
}

var (
	monthISORe = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})`)
	monthCNRe  = regexp.MustCompile(`(\d{4})年0?(\d{1,2})月`)
)

// ParseMonthBucket 从单元格文本解析 YYYY-MM 月份桶
// 支持 "2025-06" / "2025/6" / "2025.06" / "2025-06-15" / "2025年6月"
func ParseMonthBucket(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	m := monthISORe.FindStringSubmatch(s)
	if m == nil {
		m = monthCNRe.FindStringSubmatch(s)
	}
	if m == nil {
		return "", false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if year < 2000 || month < 1 || month > 12 {
		return "", false
	}
	return strconv.Itoa(year) + "-" + pad2(month), true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// IsPositiveFinite 校验天然为正的数值字段（销量、营收、价格、样本量等）
func IsPositiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
