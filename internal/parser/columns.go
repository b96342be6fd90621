package parser

import "strings"

// 逻辑字段名
const (
	FieldWorkroom           = "workroom"
	FieldStore              = "store"
	FieldLocation           = "location"
	FieldSales              = "sales"
	FieldLaborPO            = "laborPO"
	FieldVendorDebit        = "vendorDebit"
	FieldCycleTime          = "cycleTime"
	FieldCompleted          = "completed"
	FieldJobsWorkCycleTime  = "jobsWorkCycleTime"
	FieldRescheduleRate     = "rescheduleRate"
	FieldGetItRight         = "getItRight"
	FieldDetailsCycleTime   = "detailsCycleTime"
	FieldSurveyDate         = "surveyDate"
	FieldSurveyComment      = "surveyComment"
	FieldLaborCategory      = "laborCategory"
	FieldLTRScore           = "ltrScore"
	FieldCraftScore         = "craftScore"
	FieldProfScore          = "profScore"
	FieldScheduleScore      = "scheduleScore"
	FieldCommunicationScore = "communicationScore"
	FieldCleanlinessScore   = "cleanlinessScore"
	FieldTimelinessScore    = "timelinessScore"
	FieldValueScore         = "valueScore"
)

// NotFound 列不存在
const NotFound = -1

// ColumnRule 逻辑字段到列的匹配规则
//
// Contains 按顺序尝试，每个关键词从左到右扫描表头，首个命中即返回。
// Exclude 中任一关键词出现在列名里时该列不参与匹配。
// Fallback >= 0 时，名称无法命中且表头长度大于该位置才使用固定列位。
type ColumnRule struct {
	Field         string
	Contains      []string
	Exclude       []string
	Fallback      int
	FallbackKinds []FileKind // 为空表示所有表格类型
}

func (r ColumnRule) allowsFallback(kind FileKind) bool {
	if r.Fallback < 0 {
		return false
	}
	if len(r.FallbackKinds) == 0 {
		return true
	}
	for _, k := range r.FallbackKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// DefaultRules 已知模板的列识别规则；固定列位来自模板布局（S=18, T=19, X=23, AC=28, AD=29, AQ=42）
var DefaultRules = []ColumnRule{
	{Field: FieldWorkroom, Contains: []string{"workroom"}, Fallback: NotFound},
	{Field: FieldStore, Contains: []string{"store #", "store number", "store no", "store"}, Exclude: []string{"store name"}, Fallback: 4, FallbackKinds: []FileKind{KindCSV}},
	{Field: FieldLocation, Contains: []string{"location #", "location number", "location"}, Fallback: 4},
	{Field: FieldSales, Contains: []string{"total sales", "sales $", "sales"}, Exclude: []string{"%"}, Fallback: NotFound},
	{Field: FieldLaborPO, Contains: []string{"labor po $", "labor po", "labor $", "labor cost"}, Fallback: NotFound},
	{Field: FieldVendorDebit, Contains: []string{"vendor debit", "vendor debits"}, Fallback: NotFound},
	{Field: FieldCycleTime, Contains: []string{"work order cycle time", "wo cycle time", "cycle time"}, Exclude: []string{"job", "detail"}, Fallback: 28},
	{Field: FieldCompleted, Contains: []string{"jobs completed", "completed"}, Fallback: 19},
	{Field: FieldJobsWorkCycleTime, Contains: []string{"jobs work cycle time", "job work cycle time", "jobs cycle time"}, Fallback: 23},
	{Field: FieldRescheduleRate, Contains: []string{"reschedule rate", "reschedule"}, Fallback: 29},
	{Field: FieldGetItRight, Contains: []string{"get it right"}, Fallback: 42},
	{Field: FieldDetailsCycleTime, Contains: []string{"details cycle time", "detail cycle time"}, Fallback: 18},
	{Field: FieldSurveyDate, Contains: []string{"survey date", "response date", "date"}, Fallback: NotFound},
	{Field: FieldSurveyComment, Contains: []string{"survey comment", "comment"}, Fallback: NotFound},
	{Field: FieldLaborCategory, Contains: []string{"labor category", "category"}, Fallback: NotFound},
	{Field: FieldLTRScore, Contains: []string{"ltr score", "likely to recommend", "ltr"}, Exclude: []string{"%"}, Fallback: NotFound},
	{Field: FieldCraftScore, Contains: []string{"craft"}, Fallback: NotFound},
	{Field: FieldProfScore, Contains: []string{"professionalism", "prof score", "prof"}, Exclude: []string{"profit"}, Fallback: NotFound},
	{Field: FieldScheduleScore, Contains: []string{"scheduling", "schedule score"}, Exclude: []string{"reschedul"}, Fallback: NotFound},
	{Field: FieldCommunicationScore, Contains: []string{"communication"}, Fallback: NotFound},
	{Field: FieldCleanlinessScore, Contains: []string{"cleanliness", "clean"}, Fallback: NotFound},
	{Field: FieldTimelinessScore, Contains: []string{"timeliness", "on time"}, Fallback: NotFound},
	{Field: FieldValueScore, Contains: []string{"value score", "value"}, Fallback: NotFound},
}

// ColumnMap 逻辑字段 -> 列索引（未找到为 -1），同一文件内所有行复用
type ColumnMap map[string]int

// Index 返回字段所在列，未识别返回 -1
func (m ColumnMap) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return NotFound
}

// Has 字段是否已识别
func (m ColumnMap) Has(field string) bool {
	return m.Index(field) != NotFound
}

// IsSurvey 只有问卷分数列、没有视觉数据列时视为问卷批次
func (m ColumnMap) IsSurvey() bool {
	hasSurvey := m.Has(FieldLTRScore) || m.Has(FieldCraftScore) || m.Has(FieldProfScore)
	hasVisual := m.Has(FieldSales) || m.Has(FieldLaborPO) || m.Has(FieldVendorDebit)
	return hasSurvey && !hasVisual
}

// ColumnResolver 列识别器
type ColumnResolver struct {
	rules []ColumnRule
}

// NewColumnResolver 创建列识别器；rules 为空时使用 DefaultRules
func NewColumnResolver(rules []ColumnRule) *ColumnResolver {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &ColumnResolver{rules: rules}
}

// Resolve 根据表头计算每个逻辑字段的列位置
func (r *ColumnResolver) Resolve(header []string, kind FileKind) ColumnMap {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}

	cols := make(ColumnMap, len(r.rules))
	for _, rule := range r.rules {
		idx := matchRule(rule, normalized)
		if idx == NotFound && rule.allowsFallback(kind) && len(normalized) > rule.Fallback {
			idx = rule.Fallback
		}
		cols[rule.Field] = idx
	}
	return cols
}

func matchRule(rule ColumnRule, header []string) int {
	for _, kw := range rule.Contains {
		for idx, col := range header {
			if col == "" || !strings.Contains(col, kw) {
				continue
			}
			if ContainsAny(col, rule.Exclude) {
				continue
			}
			return idx
		}
	}
	return NotFound
}
