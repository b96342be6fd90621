package parser

import "scorecard/internal/model"

// FileKind 上传文件类型
type FileKind string

const (
	KindXLSX FileKind = "xlsx"
	KindXLS  FileKind = "xls"
	KindCSV  FileKind = "csv"
	KindJSON FileKind = "json"
)

// IsTabular 表格类文件（需要列识别与逐行归一化）
func (k FileKind) IsTabular() bool {
	return k == KindXLSX || k == KindXLS || k == KindCSV
}

// BatchKind 数据批次类型
type BatchKind string

const (
	BatchVisual BatchKind = "visual" // 视觉数据（销售额/人工/供应商扣款）
	BatchSurvey BatchKind = "survey" // 客户问卷
)

// CSVMode CSV 切分方式
type CSVMode string

const (
	// CSVQuoted 支持引号与转义的标准 CSV
	CSVQuoted CSVMode = "quoted"
	// CSVNaive 按行、按逗号直接切分，不处理引号（旧模板兼容）
	CSVNaive CSVMode = "naive"
)

// Cell 宽松类型的单元格值：string / float64 / bool / nil
type Cell = any

// ParsedFile 文件解析结果
type ParsedFile struct {
	Filename string   `json:"filename"`
	Kind     FileKind `json:"kind"`
	Header   []string `json:"header"` // 已小写、去空格
	Rows     [][]Cell `json:"-"`

	// 仅 JSON：已归一化（workrooms）或部分字段（surveys）的记录
	Records []model.WorkroomRecord `json:"-"`
	// 仅 JSON：无法解码而跳过的记录（"record N: 原因"）
	Invalid []string `json:"-"`
	// 仅 JSON 时由顶层键决定；表格文件由列识别结果决定
	Batch BatchKind `json:"batch,omitempty"`
}

// RowCount 数据行数（不含表头）
func (f *ParsedFile) RowCount() int {
	if f.Kind == KindJSON {
		return len(f.Records) + len(f.Invalid)
	}
	return len(f.Rows)
}
