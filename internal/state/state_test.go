package state

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rcliao/agent-sync/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPassageMapRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	pm, err := s.LoadPassageMap(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(pm) != 0 {
		t.Errorf("expected empty map, got %v", pm)
	}

	want := model.PassageMap{
		"a.go": {"p1", "p2"},
		"b.go": {"p3"},
	}
	if err := s.SavePassageMap(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadPassageMap(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSavePassageMap_Replaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.SavePassageMap(ctx, model.PassageMap{"old.go": {"p1"}})
	if err := s.SavePassageMap(ctx, model.PassageMap{"new.go": {"p2"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := s.LoadPassageMap(ctx)
	if _, ok := got["old.go"]; ok {
		t.Error("old entry should be gone after replace")
	}
	if !reflect.DeepEqual(got["new.go"], []string{"p2"}) {
		t.Errorf("new.go: got %v", got["new.go"])
	}
}

func TestPassageOrderPreserved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := []string{"z9", "a1", "m5", "b2"}
	s.SavePassageMap(ctx, model.PassageMap{"f.go": want})

	got, _ := s.LoadPassageMap(ctx)
	if !reflect.DeepEqual(got["f.go"], want) {
		t.Errorf("ID order not preserved: got %v, want %v", got["f.go"], want)
	}
}

func TestLastSyncCommit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.LastSyncCommit(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c != "" {
		t.Errorf("expected empty commit before first sync, got %q", c)
	}

	s.SetLastSyncCommit(ctx, "abc123")
	s.SetLastSyncCommit(ctx, "def456") // overwrite

	c, _ = s.LastSyncCommit(ctx)
	if c != "def456" {
		t.Errorf("expected def456, got %q", c)
	}
}

func TestRunHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.RecordRun(ctx, Run{
		StartedAt:       time.Now().UTC().Add(-time.Minute),
		Commit:          "abc",
		FilesIndexed:    3,
		PassagesCreated: 5,
		PassagesDeleted: 2,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == "" {
		t.Error("expected generated run ID")
	}

	s.RecordRun(ctx, Run{Commit: "def", FullReindex: true})

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Commit != "def" || !runs[0].FullReindex {
		t.Errorf("newest run first: got %+v", runs[0])
	}
	if runs[1].PassagesCreated != 5 {
		t.Errorf("expected 5 passages created, got %d", runs[1].PassagesCreated)
	}
}
