package parser

import "fmt"

// FormatError 不支持的文件类型
type FormatError struct {
	Filename string
	Ext      string
}

func (e *FormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported file %q: missing extension (expected .xlsx, .xls, .csv or .json)", e.Filename)
	}
	return fmt.Sprintf("unsupported file type %q (expected .xlsx, .xls, .csv or .json)", e.Ext)
}

// StructureError 文件结构不完整（缺少表头/数据行，或 JSON 缺少数组）
type StructureError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Reason)
}

func (e *StructureError) Unwrap() error { return e.Err }
