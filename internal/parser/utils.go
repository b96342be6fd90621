package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeHeader 规范化列名：去 BOM、去首尾空格、压缩空白、转小写
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\t", " ")
	name = reSpaces.ReplaceAllString(strings.TrimSpace(name), " ")
	return strings.ToLower(name)
}

// NormalizeHeaders 批量规范化表头
func NormalizeHeaders(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = NormalizeHeader(CellString(c))
	}
	return out
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CellString 将单元格转换为去空格的字符串
func CellString(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return strings.TrimSpace(string(v))
	}
	return ""
}

// CellAt 越界安全地取单元格；idx < 0 表示列不存在
func CellAt(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// IsBlankRow 整行为空
func IsBlankRow(row []Cell) bool {
	for _, c := range row {
		if CellString(c) != "" {
			return false
		}
	}
	return true
}

func stringsToCells(row []string) []Cell {
	out := make([]Cell, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
