package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook Excel 工作簿的只读封装
type Workbook struct {
	file *excelize.File
}

// Open 打开工作簿文件
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close 关闭底层文件
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames 按工作簿内顺序返回全部 Sheet 名
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows 读取 Sheet 的全部行，丢弃开头的整行空白
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	start := 0
	for start < len(rows) && emptyRow(rows[start]) {
		start++
	}
	return rows[start:], nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
