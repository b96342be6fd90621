package normalize

import (
	"math"
	"strconv"
	"strings"

	"scorecard/internal/parser"
)

var numberReplacer = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	",", "",
	"%", "",
	" ", "",
	"\t", "",
	"\u00a0", "",
)

// CleanNumber 将金额类单元格转换为数字；无法解析时返回 0
//
// 数值直接使用；字符串去掉货币符号、千分位逗号、空白与 %，(x) 视为 -x。
func CleanNumber(c parser.Cell) float64 {
	v, ok := parseNumber(c)
	if !ok {
		return 0
	}
	return v
}

// OptionalNumber 可选数值：空单元格或无法解析时返回 nil
func OptionalNumber(c parser.Cell) *float64 {
	v, ok := parseNumber(c)
	if !ok {
		return nil
	}
	return &v
}

// OptionalString 非空时返回去空格的字符串
func OptionalString(c parser.Cell) *string {
	s := parser.CellString(c)
	if s == "" {
		return nil
	}
	return &s
}

func parseNumber(c parser.Cell) (float64, bool) {
	switch v := c.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	s := parser.CellString(c)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = numberReplacer.Replace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
