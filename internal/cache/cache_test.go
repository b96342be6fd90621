package cache

import (
	"testing"

	"scorecard/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDashboardRoundTrip(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	if _, ok, err := c.GetDashboard("alice"); ok || err != nil {
		t.Fatalf("empty cache ok=%v err=%v", ok, err)
	}

	data := model.DashboardData{Workrooms: []model.WorkroomRecord{{ID: "1", Name: "Tampa", Store: "101", LaborPO: 500}}}
	if err := c.PutDashboard("alice", data); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.GetDashboard("alice")
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if len(got.Workrooms) != 1 || got.Workrooms[0].Store != "101" || got.Workrooms[0].LaborPO != 500 {
		t.Fatalf("got=%+v", got)
	}
	if _, ok, _ := c.GetDashboard("alicex"); ok {
		t.Fatalf("caller keys overlap")
	}
}

func TestSnapshotsByCaller(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	for _, id := range []string{"a", "b"} {
		if err := c.PutSnapshot("alice", model.HistoricalSnapshot{ID: id, UploadDate: "2025-03-03"}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	if err := c.PutSnapshot("bob", model.HistoricalSnapshot{ID: "c"}); err != nil {
		t.Fatalf("put bob: %v", err)
	}

	snaps, err := c.Snapshots("alice")
	if err != nil || len(snaps) != 2 {
		t.Fatalf("alice snapshots=%d err=%v, want 2", len(snaps), err)
	}

	if err := c.DeleteSnapshot("alice", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snaps, _ = c.Snapshots("alice")
	if len(snaps) != 1 || snaps[0].ID != "b" {
		t.Fatalf("after delete=%+v", snaps)
	}

	if err := c.ReplaceSnapshots("alice", []model.HistoricalSnapshot{{ID: "x"}, {ID: "y"}, {ID: "z"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	snaps, _ = c.Snapshots("alice")
	if len(snaps) != 3 || snaps[0].ID != "x" {
		t.Fatalf("after replace=%+v", snaps)
	}

	if err := c.ClearSnapshots("alice"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	snaps, _ = c.Snapshots("alice")
	if len(snaps) != 0 {
		t.Fatalf("after clear=%d, want 0", len(snaps))
	}
	bob, _ := c.Snapshots("bob")
	if len(bob) != 1 {
		t.Fatalf("bob=%d, want 1", len(bob))
	}
}

func TestPrefixUpperBound(t *testing.T) {
	t.Parallel()

	if got := string(prefixUpperBound([]byte("snapshot/a/"))); got != "snapshot/a0" {
		t.Fatalf("upper=%q, want snapshot/a0", got)
	}
	if got := prefixUpperBound([]byte{0xff}); got != nil {
		t.Fatalf("upper=%v, want nil", got)
	}
}

func TestSnapshotsCallerWithSlash(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	if err := c.PutSnapshot("acme/eve", model.HistoricalSnapshot{ID: "secret"}); err != nil {
		t.Fatalf("put acme/eve: %v", err)
	}
	if err := c.PutSnapshot("acme", model.HistoricalSnapshot{ID: "own"}); err != nil {
		t.Fatalf("put acme: %v", err)
	}

	snaps, err := c.Snapshots("acme")
	if err != nil || len(snaps) != 1 || snaps[0].ID != "own" {
		t.Fatalf("acme snapshots=%+v err=%v, want only own", snaps, err)
	}

	if err := c.ClearSnapshots("acme"); err != nil {
		t.Fatalf("clear acme: %v", err)
	}
	other, err := c.Snapshots("acme/eve")
	if err != nil || len(other) != 1 || other[0].ID != "secret" {
		t.Fatalf("acme/eve snapshots=%+v err=%v, want secret kept", other, err)
	}

	if err := c.PutDashboard("acme/eve", model.DashboardData{Workrooms: []model.WorkroomRecord{{ID: "1", Name: "Tampa"}}}); err != nil {
		t.Fatalf("put dashboard: %v", err)
	}
	if _, ok, _ := c.GetDashboard("acme"); ok {
		t.Fatalf("acme sees acme/eve dashboard")
	}
}
