package store

import (
	"context"
	"encoding/json"
	"fmt"

	"scorecard/internal/model"
)

// LoadDashboard 读取调用方的当前数据集；没有数据时返回空集合
func (s *Store) LoadDashboard(ctx context.Context, callerID string) (model.DashboardData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM dashboard_records
		WHERE caller_id = ?
		ORDER BY position
	`, callerID)
	if err != nil {
		return model.DashboardData{}, fmt.Errorf("failed to query dashboard: %w", err)
	}
	defer rows.Close()

	data := model.DashboardData{Workrooms: []model.WorkroomRecord{}}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return model.DashboardData{}, fmt.Errorf("failed to scan dashboard record: %w", err)
		}
		var rec model.WorkroomRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return model.DashboardData{}, fmt.Errorf("failed to decode dashboard record: %w", err)
		}
		data.Workrooms = append(data.Workrooms, rec)
	}
	if err := rows.Err(); err != nil {
		return model.DashboardData{}, fmt.Errorf("failed to iterate dashboard: %w", err)
	}
	return data, nil
}

// SaveDashboard 整体替换调用方的当前数据集
//
// 先删除后插入，且不使用事务：两步之间失败会留下一个空数据集，由调用方回退到本地缓存。
func (s *Store) SaveDashboard(ctx context.Context, callerID string, data model.DashboardData) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM dashboard_records WHERE caller_id = ?", callerID); err != nil {
		return fmt.Errorf("failed to clear dashboard: %w", err)
	}
	if len(data.Workrooms) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO dashboard_records (
			caller_id, position, record_id, name, store,
			sales, labor_po, vendor_debit, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range data.Workrooms {
		r := &data.Workrooms[i]
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", r.Name, err)
		}
		if _, err := stmt.ExecContext(ctx,
			callerID, i, r.ID, r.Name, r.Store,
			r.Sales, r.LaborPO, r.VendorDebit, string(payload),
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.Name, err)
		}
	}
	return nil
}
