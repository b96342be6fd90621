package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// ImportLog 一次导入的记录
type ImportLog struct {
	ID           int64  `json:"id"`
	Filename     string `json:"filename"`
	FileKind     string `json:"fileKind"`
	BatchKind    string `json:"batchKind"`
	TotalRows    int    `json:"totalRows"`
	ImportedRows int    `json:"importedRows"`
	SkippedRows  int    `json:"skippedRows"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, callerID, filename string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (caller_id, filename, status)
		VALUES (?, ?, 'processing')
	`, callerID, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(ctx context.Context, id int64, entry ImportLog) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			file_kind = ?,
			batch_kind = ?,
			total_rows = ?,
			imported_rows = ?,
			skipped_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, entry.FileKind, entry.BatchKind, entry.TotalRows, entry.ImportedRows, entry.SkippedRows,
		entry.Status, entry.ErrorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志（新的在前）
func (s *Store) ListImportLogs(ctx context.Context, callerID string, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, file_kind, batch_kind, total_rows, imported_rows, skipped_rows,
			status, error_message, created_at
		FROM import_logs
		WHERE caller_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	out := []ImportLog{}
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.Filename, &l.FileKind, &l.BatchKind, &l.TotalRows, &l.ImportedRows,
			&l.SkippedRows, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
