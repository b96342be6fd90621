package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scorecard/internal/history"
	"scorecard/internal/model"
)

// SaveSnapshot 以指定上传日期保存一个快照
func (s *Store) SaveSnapshot(ctx context.Context, callerID string, data model.DashboardData, date time.Time) (model.HistoricalSnapshot, error) {
	snap := history.NewSnapshot(data, date, time.Now())
	if err := s.InsertSnapshot(ctx, callerID, snap); err != nil {
		return model.HistoricalSnapshot{}, err
	}
	return snap, nil
}

// InsertSnapshot 写入已构造好的快照
func (s *Store) InsertSnapshot(ctx context.Context, callerID string, snap model.HistoricalSnapshot) error {
	payload, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (
			id, caller_id, upload_date, week, month, year,
			timestamp, workroom_count, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, callerID, snap.UploadDate, snap.Week, snap.Month, snap.Year,
		snap.Timestamp, len(snap.Data.Workrooms), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots 按月份/年份查询快照，按上传日期升序
func (s *Store) LoadSnapshots(ctx context.Context, callerID string, filter model.SnapshotFilter) ([]model.HistoricalSnapshot, error) {
	conds := []string{"caller_id = ?"}
	args := []any{callerID}
	if filter.Year > 0 {
		conds = append(conds, "year = ?")
		args = append(args, fmt.Sprintf("%04d", filter.Year))
	}
	if filter.Month > 0 {
		conds = append(conds, "substr(month, 6, 2) = ?")
		args = append(args, fmt.Sprintf("%02d", filter.Month))
	}

	query := `
		SELECT id, upload_date, week, month, year, timestamp, payload
		FROM snapshots
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY upload_date, timestamp
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	out := []model.HistoricalSnapshot{}
	for rows.Next() {
		var snap model.HistoricalSnapshot
		var payload string
		if err := rows.Scan(&snap.ID, &snap.UploadDate, &snap.Week, &snap.Month, &snap.Year, &snap.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &snap.Data); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %s: %w", snap.ID, err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}

// DeleteSnapshot 删除单个快照；不存在时返回 ErrNotFound
func (s *Store) DeleteSnapshot(ctx context.Context, callerID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE caller_id = ? AND id = ?", callerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearSnapshots 删除调用方的全部快照，返回删除数量
func (s *Store) ClearSnapshots(ctx context.Context, callerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE caller_id = ?", callerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return n, nil
}
