package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"scorecard/internal/model"
	"scorecard/internal/parser"
)

// Normalizer 将原始行转换为 WorkroomRecord
type Normalizer struct {
	lookup *Lookup
	newID  func() string
}

// NewNormalizer 创建归一化器；lookup 为 nil 时使用内置对照表
func NewNormalizer(lookup *Lookup) *Normalizer {
	if lookup == nil {
		lookup = DefaultLookup()
	}
	return &Normalizer{
		lookup: lookup,
		newID:  func() string { return uuid.New().String() },
	}
}

// Normalize 归一化一行数据；rowNo 为从 1 开始的数据行号。空行返回 false。
// 单元格解析失败不会报错：必填金额字段取 0，可选字段为 nil。
func (n *Normalizer) Normalize(row []parser.Cell, cols parser.ColumnMap, rowNo int) (model.WorkroomRecord, bool) {
	if parser.IsBlankRow(row) {
		return model.WorkroomRecord{}, false
	}

	cell := func(field string) parser.Cell {
		return parser.CellAt(row, cols.Index(field))
	}

	storeRaw := parser.CellString(cell(parser.FieldStore))
	if storeRaw == "" {
		storeRaw = parser.CellString(cell(parser.FieldLocation))
	}

	rec := model.WorkroomRecord{
		ID:    n.newID(),
		Name:  parser.CellString(cell(parser.FieldWorkroom)),
		Store: storeRaw,

		Sales:       CleanNumber(cell(parser.FieldSales)),
		LaborPO:     CleanNumber(cell(parser.FieldLaborPO)),
		VendorDebit: CleanNumber(cell(parser.FieldVendorDebit)),

		CycleTime:         OptionalNumber(cell(parser.FieldCycleTime)),
		JobsWorkCycleTime: OptionalNumber(cell(parser.FieldJobsWorkCycleTime)),
		RescheduleRate:    OptionalNumber(cell(parser.FieldRescheduleRate)),
		DetailsCycleTime:  OptionalNumber(cell(parser.FieldDetailsCycleTime)),
		Completed:         OptionalNumber(cell(parser.FieldCompleted)),
		GetItRight:        OptionalNumber(cell(parser.FieldGetItRight)),

		SurveyDate:    normalizeDate(cell(parser.FieldSurveyDate)),
		SurveyComment: OptionalString(cell(parser.FieldSurveyComment)),
		LaborCategory: OptionalString(cell(parser.FieldLaborCategory)),

		LTRScore:           OptionalNumber(cell(parser.FieldLTRScore)),
		CraftScore:         OptionalNumber(cell(parser.FieldCraftScore)),
		ProfScore:          OptionalNumber(cell(parser.FieldProfScore)),
		ScheduleScore:      OptionalNumber(cell(parser.FieldScheduleScore)),
		CommunicationScore: OptionalNumber(cell(parser.FieldCommunicationScore)),
		CleanlinessScore:   OptionalNumber(cell(parser.FieldCleanlinessScore)),
		TimelinessScore:    OptionalNumber(cell(parser.FieldTimelinessScore)),
		ValueScore:         OptionalNumber(cell(parser.FieldValueScore)),
	}

	n.resolveIdentity(&rec, rowNo)
	return rec, true
}

// NormalizeRecord 整理 JSON 上传的记录：补齐 id、门店号与名称
func (n *Normalizer) NormalizeRecord(rec model.WorkroomRecord, rowNo int) model.WorkroomRecord {
	out := rec.Clone()
	if strings.TrimSpace(out.ID) == "" {
		out.ID = n.newID()
	}
	n.resolveIdentity(&out, rowNo)
	return out
}

// resolveIdentity 依次使用 workroom 列、门店对照表、"Record N" 确定名称
func (n *Normalizer) resolveIdentity(rec *model.WorkroomRecord, rowNo int) {
	rec.Store = NormalizeStore(rec.Store)

	name := strings.TrimSpace(rec.Name)
	if model.IsPlaceholderName(name) {
		name = ""
	}
	if canonical, ok := n.lookup.WorkroomForStore(rec.Store); ok {
		name = canonical
	}
	if name == "" {
		name = fmt.Sprintf("Record %d", rowNo)
	}
	rec.Name = n.lookup.FixName(name)
}

// Excel 日期序列号的合理范围（1954 ~ 2119）
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	time.RFC3339,
}

// normalizeDate 问卷日期统一为 YYYY-MM-DD；无法识别时保留原文
func normalizeDate(c parser.Cell) *string {
	s := parser.CellString(c)
	if s == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= minDateSerial && serial <= maxDateSerial {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				out := t.Format("2006-01-02")
				return &out
			}
		}
		return &s
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.Format("2006-01-02")
			return &out
		}
	}
	return &s
}
