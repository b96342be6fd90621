package exporter

import (
	"fmt"
	"net/url"
	"time"
)

// ContentDisposition 导出文件的下载头，同时给出 ASCII 与 UTF-8 文件名
func ContentDisposition(kind string, at time.Time) string {
	name := fmt.Sprintf("scorecard-%s-%s.xlsx", kind, at.Format("2006-01-02"))
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(name))
}
