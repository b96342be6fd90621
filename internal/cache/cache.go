package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"scorecard/internal/model"
)

// Cache 本地 KV 缓存：保存每个调用方最近一次成功读写的数据集与快照
//
// 键布局：
//
//	dashboard/<caller>
//	snapshot/<caller>/<snapshotID>
//
// caller 经过 url.PathEscape 编码，键中不会出现额外的 '/'，前缀扫描只覆盖同一调用方。
type Cache struct {
	db *pebble.DB
}

// Open 打开（必要时创建）缓存目录
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close 关闭缓存
func (c *Cache) Close() error { return c.db.Close() }

func callerSegment(callerID string) string {
	return url.PathEscape(callerID)
}

func dashboardKey(callerID string) []byte {
	return []byte("dashboard/" + callerSegment(callerID))
}

func snapshotPrefix(callerID string) []byte {
	return []byte("snapshot/" + callerSegment(callerID) + "/")
}

func snapshotKey(callerID, id string) []byte {
	return append(snapshotPrefix(callerID), id...)
}

// prefixUpperBound 前缀扫描的上界（最后一个字节加一）
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// PutDashboard 缓存当前数据集
func (c *Cache) PutDashboard(callerID string, data model.DashboardData) error {
	val, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	if err := c.db.Set(dashboardKey(callerID), val, pebble.Sync); err != nil {
		return fmt.Errorf("cache dashboard: %w", err)
	}
	return nil
}

// GetDashboard 读取缓存的数据集；没有缓存时 ok 为 false
func (c *Cache) GetDashboard(callerID string) (data model.DashboardData, ok bool, err error) {
	val, closer, err := c.db.Get(dashboardKey(callerID))
	if errors.Is(err, pebble.ErrNotFound) {
		return model.DashboardData{}, false, nil
	}
	if err != nil {
		return model.DashboardData{}, false, fmt.Errorf("read cached dashboard: %w", err)
	}
	defer closer.Close()

	if err := json.Unmarshal(val, &data); err != nil {
		return model.DashboardData{}, false, fmt.Errorf("decode cached dashboard: %w", err)
	}
	return data, true, nil
}

// PutSnapshot 缓存单个快照
func (c *Cache) PutSnapshot(callerID string, snap model.HistoricalSnapshot) error {
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.db.Set(snapshotKey(callerID, snap.ID), val, pebble.Sync); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	return nil
}

// ReplaceSnapshots 用 snaps 整体替换调用方的快照缓存
func (c *Cache) ReplaceSnapshots(callerID string, snaps []model.HistoricalSnapshot) error {
	prefix := snapshotPrefix(callerID)

	batch := c.db.NewBatch()
	defer batch.Close()

	if err := batch.DeleteRange(prefix, prefixUpperBound(prefix), nil); err != nil {
		return fmt.Errorf("clear cached snapshots: %w", err)
	}
	for _, snap := range snaps {
		val, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
		}
		if err := batch.Set(snapshotKey(callerID, snap.ID), val, nil); err != nil {
			return fmt.Errorf("cache snapshot %s: %w", snap.ID, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit snapshot cache: %w", err)
	}
	return nil
}

// Snapshots 读取调用方缓存的全部快照（按 id 排序，调用方自行排序/过滤）
func (c *Cache) Snapshots(callerID string) ([]model.HistoricalSnapshot, error) {
	prefix := snapshotPrefix(callerID)
	it, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	defer it.Close()

	out := []model.HistoricalSnapshot{}
	for it.First(); it.Valid(); it.Next() {
		var snap model.HistoricalSnapshot
		if err := json.Unmarshal(it.Value(), &snap); err != nil {
			return nil, fmt.Errorf("decode cached snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, it.Error()
}

// DeleteSnapshot 删除单个缓存快照
func (c *Cache) DeleteSnapshot(callerID, id string) error {
	if err := c.db.Delete(snapshotKey(callerID, id), pebble.Sync); err != nil {
		return fmt.Errorf("delete cached snapshot: %w", err)
	}
	return nil
}

// ClearSnapshots 删除调用方全部缓存快照
func (c *Cache) ClearSnapshots(callerID string) error {
	prefix := snapshotPrefix(callerID)
	if err := c.db.DeleteRange(prefix, prefixUpperBound(prefix), pebble.Sync); err != nil {
		return fmt.Errorf("clear cached snapshots: %w", err)
	}
	return nil
}
