package parser

import "fmt"

// MissingColumnError 必需列在表头中无法解析
type MissingColumnError struct {
	Sheet  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("sheet %q: required column %q not found", e.Sheet, e.Column)
}

// NoValidRowsError 列已找到但没有任何数据行通过校验
type NoValidRowsError struct {
	Sheet string
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("sheet %q: no valid data rows", e.Sheet)
}
