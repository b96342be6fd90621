package normalize

import (
	"strings"

	"scorecard/internal/model"
)

// MergeKey 合并键：门店号 + "|||" + 名称
func MergeKey(r *model.WorkroomRecord) string {
	return strings.TrimSpace(r.Store) + "|||" + strings.TrimSpace(r.Name)
}

// Merge 合并视觉数据与问卷数据
//
// 相同键的视觉行累加 sales/laborPO/vendorDebit；问卷行只覆盖问卷字段，
// 找不到对应视觉行时新建一条金额为 0 的记录。输入切片不会被修改，
// 输出顺序为键首次出现的顺序（视觉在前）。
func Merge(visual, survey []model.WorkroomRecord) []model.WorkroomRecord {
	index := make(map[string]int, len(visual)+len(survey))
	out := make([]model.WorkroomRecord, 0, len(visual)+len(survey))

	for i := range visual {
		key := MergeKey(&visual[i])
		if pos, ok := index[key]; ok {
			out[pos].Sales += visual[i].Sales
			out[pos].LaborPO += visual[i].LaborPO
			out[pos].VendorDebit += visual[i].VendorDebit
			continue
		}
		index[key] = len(out)
		out = append(out, visual[i].Clone())
	}

	for i := range survey {
		key := MergeKey(&survey[i])
		if pos, ok := index[key]; ok {
			out[pos].MergeSurveyFrom(&survey[i])
			continue
		}

		rec := survey[i].Clone()
		rec.Sales = 0
		rec.LaborPO = 0
		rec.VendorDebit = 0
		index[key] = len(out)
		out = append(out, rec)
	}

	return out
}
