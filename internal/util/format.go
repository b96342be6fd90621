package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPercent 格式化百分比；值已是百分数，nil 显示 n/a
func FormatPercent(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *value)
}

// FormatCurrency 格式化货币（千分位，两位小数）
func FormatCurrency(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	s := strconv.FormatFloat(math.Round(value*100)/100, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// FormatScore 分数保留一位小数
func FormatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}
