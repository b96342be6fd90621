package importer

import (
	"time"

	"scorecard/internal/model"
	"scorecard/internal/parser"
	"scorecard/internal/score"
)

// 文件处理状态
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FileResult 单个文件的处理结果
type FileResult struct {
	Filename     string           `json:"filename"`
	Kind         parser.FileKind  `json:"kind"`
	Batch        parser.BatchKind `json:"batch"`
	TotalRows    int              `json:"totalRows"`
	ImportedRows int              `json:"importedRows"`
	SkippedRows  int              `json:"skippedRows"`
	Status       string           `json:"status"`
	Errors       []string         `json:"errors,omitempty"`
	Duration     time.Duration    `json:"duration"`
}

// ImportReport 一次导入的汇总
type ImportReport struct {
	Files        []FileResult           `json:"files"`
	VisualRows   int                    `json:"visualRows"`
	SurveyRows   int                    `json:"surveyRows"`
	SurveyOnly   int                    `json:"surveyOnly"` // 合并后没有视觉数据的 workroom
	WithSurvey   int                    `json:"withSurvey"` // 合并后带问卷数据的 workroom
	Records      []model.WorkroomRecord `json:"records"`
	Results      []score.Result         `json:"results"`
	RiskFlags    []score.RiskFlag       `json:"riskFlags"`
	Duration     time.Duration          `json:"duration"`
	ImportedRows int                    `json:"importedRows"`
	SkippedRows  int                    `json:"skippedRows"`
}

// Dashboard 导入结果对应的数据集
func (r *ImportReport) Dashboard() model.DashboardData {
	return model.DashboardData{Workrooms: r.Records}
}
