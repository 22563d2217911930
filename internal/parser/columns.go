package parser

import (
	"regexp"
	"strings"
)

// Predicate 列名匹配谓词，入参为已小写化、去首尾空白的表头文本
type Predicate func(header string) bool

// Contains 子串匹配谓词
func Contains(sub string) Predicate {
	sub = strings.ToLower(sub)
	return func(header string) bool {
		return strings.Contains(header, sub)
	}
}

// ContainsWithout 子串匹配但排除干扰词
// 用于单复数歧义：如 "rating" 列必须排除 "ratings"
func ContainsWithout(sub string, excluded ...string) Predicate {
	sub = strings.ToLower(sub)
	excl := make([]string, len(excluded))
	for i, e := range excluded {
		excl[i] = strings.ToLower(e)
	}
	return func(header string) bool {
		if !strings.Contains(header, sub) {
			return false
		}
		for _, e := range excl {
			if strings.Contains(header, e) {
				return false
			}
		}
		return true
	}
}

// Matches 正则匹配谓词，模式非法时恒为 false
func Matches(pattern string) Predicate {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return func(string) bool { return false }
	}
	return func(header string) bool {
		return re.MatchString(header)
	}
}

// ColumnTarget 目标列定义：按序尝试各谓词，任一命中即解析成功
type ColumnTarget struct {
	Name       string
	Required   bool
	Predicates []Predicate
}

// ResolveColumns 在表头行中解析目标列
// 按目标定义顺序处理，每个目标取第一个命中的表头单元格
// 必需列缺失时返回 MissingColumnError
func ResolveColumns(sheet string, header []string, targets []ColumnTarget) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	resolved := make(map[string]int, len(targets))
	for _, target := range targets {
		idx := -1
		for i, cell := range normalized {
			if cell == "" {
				continue
			}
			for _, pred := range target.Predicates {
				if pred(cell) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				break
			}
		}
		if idx < 0 {
			if target.Required {
				return nil, &MissingColumnError{Sheet: sheet, Column: target.Name}
			}
			continue
		}
		resolved[target.Name] = idx
	}
	return resolved, nil
}

// cellAt 安全取行内单元格，越界返回空串
func cellAt(row []string, idx int, ok bool) string {
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
