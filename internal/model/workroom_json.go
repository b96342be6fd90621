package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// UnmarshalJSON store 字段兼容字符串与数字两种写法
func (r *WorkroomRecord) UnmarshalJSON(data []byte) error {
	type alias WorkroomRecord
	aux := struct {
		Store any `json:"store"`
		*alias
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.Store.(type) {
	case string:
		r.Store = strings.TrimSpace(v)
	case float64:
		r.Store = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		r.Store = ""
	}
	return nil
}
