package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
)

func newTestPipeline(t *testing.T, cfg *config.Config, adapters []*fakeAdapter, collect FileCollector) (*Pipeline, *ReportStore) {
	t.Helper()
	store := newTestStore(t)
	list := make([]domain.ToolAdapter, len(adapters))
	for i, a := range adapters {
		list[i] = a
	}
	if collect == nil {
		collect = func(ctx context.Context) ([]string, error) {
			return []string{testRoot + "/src/app.ts"}, nil
		}
	}
	p := NewPipeline(cfg, testRoot, collect, PipelineOptions{Adapters: list, Store: store})
	return p, store
}

func TestPipeline_RunToolsAndAggregate(t *testing.T) {
	adapters := scenarioAdapters()
	p, store := newTestPipeline(t, config.DefaultConfig(), adapters, nil)

	reports := p.RunTools(context.Background())

	for _, a := range adapters {
		if a.calls.Load() != 1 {
			t.Errorf("Adapter %s ran %d times", a.kind, a.calls.Load())
		}
		if !reports.Get(a.kind).Usable() {
			t.Errorf("Expected usable %s report", a.kind)
		}
		if _, err := os.Stat(store.ReportPath(a.kind)); err != nil {
			t.Errorf("Report %s not persisted: %v", a.kind, err)
		}
	}
	if len(reports.Files) != 1 {
		t.Errorf("Expected collected files on the report set, got %v", reports.Files)
	}

	snapshot := p.Aggregate(reports)
	if len(snapshot.Cycles) != 1 || len(snapshot.MaxLineOffenders) != 1 {
		t.Errorf("Unexpected snapshot %+v", snapshot)
	}
	saved, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("Snapshot not persisted: %v", err)
	}
	if len(saved.DeadCode) != 1 {
		t.Errorf("Unexpected persisted snapshot %+v", saved)
	}
}

func TestPipeline_DisabledToolGetsFailedReport(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tools.DeadCode.Enabled = false
	adapters := scenarioAdapters()
	p, _ := newTestPipeline(t, cfg, adapters, nil)

	reports := p.RunTools(context.Background())

	dead := reports.DeadCode
	if dead == nil || !dead.Failed || dead.FailureReason != DisabledReason {
		t.Errorf("Expected disabled deadcode report, got %+v", dead)
	}
	if adapters[2].calls.Load() != 0 {
		t.Error("Disabled adapter should not run")
	}

	snapshot := p.Aggregate(reports)
	if len(snapshot.DeadCode) != 0 || len(snapshot.Cycles) != 1 {
		t.Errorf("Only dead code should be empty, got %+v", snapshot)
	}
}

func TestPipeline_FailingToolDoesNotAbortCycle(t *testing.T) {
	adapters := scenarioAdapters()
	adapters[0].report = func() *domain.ToolReport {
		return domain.FailedReport(domain.ToolKindLint, "exit code 2: Oops")
	}
	p, _ := newTestPipeline(t, config.DefaultConfig(), adapters, nil)

	snapshot := p.Aggregate(p.RunTools(context.Background()))

	if len(snapshot.DataQuality.FailedTools) != 1 || snapshot.DataQuality.FailedTools[0] != domain.ToolKindLint {
		t.Errorf("Expected lint failure, got %v", snapshot.DataQuality.FailedTools)
	}
	if len(snapshot.LargestFiles) != 1 || len(snapshot.Cycles) != 1 {
		t.Error("Other tools should still contribute")
	}
}

func TestPipeline_CollectionErrorStillRunsTools(t *testing.T) {
	adapters := scenarioAdapters()
	p, _ := newTestPipeline(t, config.DefaultConfig(), adapters, func(ctx context.Context) ([]string, error) {
		return nil, errors.New("permission denied")
	})

	reports := p.RunTools(context.Background())

	if len(reports.Files) != 0 {
		t.Errorf("Expected no files, got %v", reports.Files)
	}
	if !reports.LineCount.Usable() {
		t.Error("Adapters should still run")
	}
}

func TestPipeline_WithoutStoreUsesTempWorkDir(t *testing.T) {
	var seen string
	adapter := &fakeAdapter{kind: domain.ToolKindLineCount}
	adapter.report = func() *domain.ToolReport { return domain.FailedReport(domain.ToolKindLineCount, "fixture") }

	cfg := config.DefaultConfig()
	collect := func(ctx context.Context) ([]string, error) { return nil, nil }
	p := NewPipeline(cfg, testRoot, collect, PipelineOptions{Adapters: []domain.ToolAdapter{&workDirProbe{fakeAdapter: adapter, seen: &seen}}})

	p.RunTools(context.Background())

	if seen == "" {
		t.Fatal("Adapter should receive a work directory")
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Error("Temporary work directory should be removed after the cycle")
	}
}

type workDirProbe struct {
	*fakeAdapter
	seen *string
}

func (p *workDirProbe) Run(ctx context.Context, in domain.AdapterInput) *domain.ToolReport {
	*p.seen = in.WorkDir
	return p.fakeAdapter.Run(ctx, in)
}
