package model

import "strings"

// WorkroomRecord 单个 workroom 在一次上传中的指标
//
// 可选字段使用指针：nil 表示未提供，0 表示实测为零。
type WorkroomRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Store string `json:"store,omitempty"`

	// 视觉数据（缺省为 0）
	Sales       float64 `json:"sales"`
	LaborPO     float64 `json:"laborPO"`
	VendorDebit float64 `json:"vendorDebit"`

	// 周期类指标（可选）
	CycleTime         *float64 `json:"cycleTime,omitempty"`
	JobsWorkCycleTime *float64 `json:"jobsWorkCycleTime,omitempty"`
	RescheduleRate    *float64 `json:"rescheduleRate,omitempty"`
	DetailsCycleTime  *float64 `json:"detailsCycleTime,omitempty"`
	Completed         *float64 `json:"completed,omitempty"`
	GetItRight        *float64 `json:"getItRight,omitempty"`

	// 问卷数据（可选）
	SurveyDate         *string  `json:"surveyDate,omitempty"`
	SurveyComment      *string  `json:"surveyComment,omitempty"`
	LaborCategory      *string  `json:"laborCategory,omitempty"`
	LTRScore           *float64 `json:"ltrScore,omitempty"`
	CraftScore         *float64 `json:"craftScore,omitempty"`
	ProfScore          *float64 `json:"profScore,omitempty"`
	ScheduleScore      *float64 `json:"scheduleScore,omitempty"`
	CommunicationScore *float64 `json:"communicationScore,omitempty"`
	CleanlinessScore   *float64 `json:"cleanlinessScore,omitempty"`
	TimelinessScore    *float64 `json:"timelinessScore,omitempty"`
	ValueScore         *float64 `json:"valueScore,omitempty"`
}

// placeholderNames 模板中的占位名称，不能作为 workroom 名称
var placeholderNames = map[string]struct{}{
	"":           {},
	"location":   {},
	"location #": {},
}

// IsPlaceholderName 判断名称是否为空或占位符
func IsPlaceholderName(name string) bool {
	_, ok := placeholderNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// HasValidName 名称非空且不是占位符
func (r *WorkroomRecord) HasValidName() bool {
	return !IsPlaceholderName(r.Name)
}

// HasVisualData sales/laborPO/vendorDebit 全为 0 视为无视觉数据
func (r *WorkroomRecord) HasVisualData() bool {
	return r.Sales != 0 || r.LaborPO != 0 || r.VendorDebit != 0
}

// HasSurveyData 任一问卷字段有值
func (r *WorkroomRecord) HasSurveyData() bool {
	return r.SurveyDate != nil || r.SurveyComment != nil || r.LaborCategory != nil ||
		r.LTRScore != nil || r.CraftScore != nil || r.ProfScore != nil ||
		r.ScheduleScore != nil || r.CommunicationScore != nil || r.CleanlinessScore != nil ||
		r.TimelinessScore != nil || r.ValueScore != nil
}

// MergeSurveyFrom 用 src 中非空的问卷字段覆盖当前记录，视觉字段保持不变
func (r *WorkroomRecord) MergeSurveyFrom(src *WorkroomRecord) {
	overwriteString(&r.SurveyDate, src.SurveyDate)
	overwriteString(&r.SurveyComment, src.SurveyComment)
	overwriteString(&r.LaborCategory, src.LaborCategory)
	overwriteFloat(&r.LTRScore, src.LTRScore)
	overwriteFloat(&r.CraftScore, src.CraftScore)
	overwriteFloat(&r.ProfScore, src.ProfScore)
	overwriteFloat(&r.ScheduleScore, src.ScheduleScore)
	overwriteFloat(&r.CommunicationScore, src.CommunicationScore)
	overwriteFloat(&r.CleanlinessScore, src.CleanlinessScore)
	overwriteFloat(&r.TimelinessScore, src.TimelinessScore)
	overwriteFloat(&r.ValueScore, src.ValueScore)
}

// Clone 深拷贝，避免批次之间共享指针字段
func (r *WorkroomRecord) Clone() WorkroomRecord {
	out := *r
	out.CycleTime = cloneFloat(r.CycleTime)
	out.JobsWorkCycleTime = cloneFloat(r.JobsWorkCycleTime)
	out.RescheduleRate = cloneFloat(r.RescheduleRate)
	out.DetailsCycleTime = cloneFloat(r.DetailsCycleTime)
	out.Completed = cloneFloat(r.Completed)
	out.GetItRight = cloneFloat(r.GetItRight)
	out.SurveyDate = cloneString(r.SurveyDate)
	out.SurveyComment = cloneString(r.SurveyComment)
	out.LaborCategory = cloneString(r.LaborCategory)
	out.LTRScore = cloneFloat(r.LTRScore)
	out.CraftScore = cloneFloat(r.CraftScore)
	out.ProfScore = cloneFloat(r.ProfScore)
	out.ScheduleScore = cloneFloat(r.ScheduleScore)
	out.CommunicationScore = cloneFloat(r.CommunicationScore)
	out.CleanlinessScore = cloneFloat(r.CleanlinessScore)
	out.TimelinessScore = cloneFloat(r.TimelinessScore)
	out.ValueScore = cloneFloat(r.ValueScore)
	return out
}

// DashboardData 当前数据集（整体替换语义）
type DashboardData struct {
	Workrooms []WorkroomRecord `json:"workrooms"`
}

// Float 返回指向 v 的指针
func Float(v float64) *float64 { return &v }

// String 返回指向 v 的指针
func String(v string) *string { return &v }

func overwriteFloat(dst **float64, src *float64) {
	if src != nil {
		*dst = cloneFloat(src)
	}
}

func overwriteString(dst **string, src *string) {
	if src != nil {
		*dst = cloneString(src)
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
