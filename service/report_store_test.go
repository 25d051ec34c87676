package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/testutil"
)

func newTestStore(t *testing.T) *ReportStore {
	t.Helper()
	store, err := NewReportStore(t.TempDir(), "/work/project")
	if err != nil {
		t.Fatalf("NewReportStore failed: %v", err)
	}
	return store
}

func TestRootKey(t *testing.T) {
	a := RootKey("/work/project")
	if len(a) != rootKeyLength {
		t.Errorf("Expected %d hex digits, got %q", rootKeyLength, a)
	}
	if RootKey("/work/project/") != a {
		t.Error("Trailing separator should not change the key")
	}
	if RootKey("/work/other") == a {
		t.Error("Different roots should get different keys")
	}
}

func TestReportStore_ReportRoundTrip(t *testing.T) {
	store := newTestStore(t)
	set := testutil.ScenarioReports()

	for _, kind := range domain.AllToolKinds() {
		if err := store.SaveReport(set.Get(kind)); err != nil {
			t.Fatalf("SaveReport(%s) failed: %v", kind, err)
		}
		if _, err := os.Stat(store.ReportPath(kind)); err != nil {
			t.Errorf("Expected %s on disk: %v", store.ReportPath(kind), err)
		}
	}

	loaded, err := store.LoadReports()
	if err != nil {
		t.Fatalf("LoadReports failed: %v", err)
	}
	for _, kind := range domain.AllToolKinds() {
		if !loaded.Get(kind).Usable() {
			t.Errorf("Loaded %s report should be usable", kind)
		}
	}
	if got := loaded.LineCount.LineCount.Files[0].Lines; got != 450 {
		t.Errorf("Expected 450 lines, got %d", got)
	}
}

func TestReportStore_LoadReportsSkipsMissing(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveReport(domain.FailedReport(domain.ToolKindLint, "exit code 2")); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadReports()
	if err != nil {
		t.Fatalf("LoadReports failed: %v", err)
	}
	if loaded.Lint == nil || !loaded.Lint.Failed || loaded.Lint.FailureReason != "exit code 2" {
		t.Errorf("Unexpected lint report %+v", loaded.Lint)
	}
	if loaded.DepGraph != nil || loaded.DeadCode != nil || loaded.LineCount != nil {
		t.Error("Missing reports should stay nil")
	}
}

func TestReportStore_CorruptReport(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.ReportPath(domain.ToolKindDeadCode), []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.LoadReports(); err == nil {
		t.Error("Expected an error for a corrupt report")
	}
}

func TestReportStore_Snapshot(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.LoadSnapshot(); !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("Expected ErrNotReady before the first save, got %v", err)
	}

	snapshot := newTestAggregator().Aggregate(testutil.ScenarioReports())
	if err := store.SaveSnapshot(snapshot); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded.Cycles) != 1 || !loaded.GeneratedAt.Equal(snapshot.GeneratedAt) {
		t.Errorf("Unexpected snapshot %+v", loaded)
	}

	entries, _ := os.ReadDir(store.Dir())
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" && !e.IsDir() {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestReportStore_WorkDirAndReset(t *testing.T) {
	store := newTestStore(t)

	work, err := store.PrepareWorkDir()
	if err != nil {
		t.Fatalf("PrepareWorkDir failed: %v", err)
	}
	stale := filepath.Join(work, "lint.raw.json")
	if err := os.WriteFile(stale, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.PrepareWorkDir(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("PrepareWorkDir should clear previous cycle output")
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := os.Stat(store.Dir()); !os.IsNotExist(err) {
		t.Error("Reset should remove the store directory")
	}
}

func TestReportStore_NilValues(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveReport(nil); err == nil {
		t.Error("Expected error saving nil report")
	}
	if err := store.SaveSnapshot(nil); err == nil {
		t.Error("Expected error saving nil snapshot")
	}
}
