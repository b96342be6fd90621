package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// splitCSVNaive 按行、按逗号切分，不识别引号。
// 文本字段中的逗号会把一列拆成多列，这是旧模板的已知限制。
func splitCSVNaive(content []byte) [][]Cell {
	text := strings.TrimPrefix(string(content), "\ufeff")
	lines := strings.Split(text, "\n")

	rows := make([][]Cell, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, stringsToCells(strings.Split(line, ",")))
	}
	return rows
}

// readCSVQuoted 标准 CSV 解析：支持引号、转义与不等长行
func readCSVQuoted(content []byte) ([][]Cell, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]Cell
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		rows = append(rows, stringsToCells(record))
	}
	return rows, nil
}
