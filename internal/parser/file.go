package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"scorecard/internal/model"
)

// .xls 读取上限
const (
	maxXLSRows = 100000
	maxXLSCols = 256 // BIFF8 每行最多 256 列
)

// FileParser 上传文件解析器
type FileParser struct {
	csvMode CSVMode
}

// NewFileParser 创建解析器；未知的 CSV 模式按 quoted 处理
func NewFileParser(mode CSVMode) *FileParser {
	if mode != CSVNaive {
		mode = CSVQuoted
	}
	return &FileParser{csvMode: mode}
}

// DetectKind 根据扩展名识别文件类型
func DetectKind(filename string) (FileKind, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	switch ext {
	case ".xlsx":
		return KindXLSX, nil
	case ".xls":
		return KindXLS, nil
	case ".csv":
		return KindCSV, nil
	case ".json":
		return KindJSON, nil
	}
	return "", &FormatError{Filename: filename, Ext: ext}
}

// Parse 解析文件内容，返回表头与数据行（JSON 返回记录）
func (p *FileParser) Parse(filename string, content []byte) (*ParsedFile, error) {
	kind, err := DetectKind(filename)
	if err != nil {
		return nil, err
	}

	if kind == KindJSON {
		return parseJSON(filename, content)
	}

	var rows [][]Cell
	switch kind {
	case KindXLSX:
		rows, err = readXLSX(content)
	case KindXLS:
		rows, err = readXLS(content)
	case KindCSV:
		if p.csvMode == CSVNaive {
			rows = splitCSVNaive(content)
		} else {
			rows, err = readCSVQuoted(content)
		}
	}
	if err != nil {
		return nil, &StructureError{Filename: filename, Reason: "failed to read " + string(kind), Err: err}
	}

	if len(rows) < 2 {
		return nil, &StructureError{Filename: filename, Reason: "file has no data rows"}
	}

	header := NormalizeHeaders(rows[0])
	if IsBlankRow(rows[0]) {
		return nil, &StructureError{Filename: filename, Reason: "header row is empty"}
	}

	return &ParsedFile{
		Filename: filename,
		Kind:     kind,
		Header:   header,
		Rows:     rows[1:],
	}, nil
}

// readXLSX 读取第一个工作表
func readXLSX(content []byte) ([][]Cell, error) {
	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	out := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		out = append(out, stringsToCells(row))
	}
	return out, nil
}

// readXLS 读取旧版 .xls 的第一个工作表
func readXLS(content []byte) ([][]Cell, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no worksheet found")
	}
	return sheetCells(int(sheet.MaxRow), func(i int) []string { return xlsRowCells(sheet, i) }), nil
}

// sheetCells 按行号 0..maxRow 取行；缺失的行为空行，超过 maxXLSRows 的部分丢弃
func sheetCells(maxRow int, rowAt func(i int) []string) [][]Cell {
	if maxRow >= maxXLSRows {
		maxRow = maxXLSRows - 1
	}
	out := make([][]Cell, 0, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		out = append(out, stringsToCells(trimTrailingBlank(rowAt(i))))
	}
	return out
}

// xlsRowCells 读取一行；没有 ROW 记录的行 LastCol 为 0，此时扫描到 .xls 的列上限
func xlsRowCells(sheet *xls.WorkSheet, i int) []string {
	row := xlsRow(sheet, i)
	if row == nil {
		return nil
	}
	last := row.LastCol()
	if last <= 0 {
		last = maxXLSCols - 1
	}
	cells := make([]string, 0, last+1)
	for j := 0; j <= last; j++ {
		cells = append(cells, row.Col(j))
	}
	return cells
}

// xlsRow 行不存在时 WorkSheet.Row 会解引用空指针
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func trimTrailingBlank(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}

// parseJSON 只解码被选中的数组，逐条解码；字段类型不符的记录单独跳过
//
// 数值字段必须是 JSON 数字，不做字符串清洗。
func parseJSON(filename string, content []byte) (*ParsedFile, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(content, &envelope); err != nil {
		return nil, &StructureError{Filename: filename, Reason: "invalid JSON", Err: err}
	}

	out := &ParsedFile{Filename: filename, Kind: KindJSON}
	var raw json.RawMessage
	switch {
	case isJSONArray(envelope["workrooms"]):
		raw, out.Batch = envelope["workrooms"], BatchVisual
	case isJSONArray(envelope["surveys"]):
		raw, out.Batch = envelope["surveys"], BatchSurvey
	default:
		return nil, &StructureError{Filename: filename, Reason: `expected a "workrooms" or "surveys" array`}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &StructureError{Filename: filename, Reason: "invalid JSON array", Err: err}
	}

	out.Records = make([]model.WorkroomRecord, 0, len(items))
	for i, item := range items {
		var rec model.WorkroomRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			out.Invalid = append(out.Invalid, fmt.Sprintf("record %d: %v", i+1, err))
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
