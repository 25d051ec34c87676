package service

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/constants"
)

// FileCollector returns the absolute paths of the files to analyze
type FileCollector func(ctx context.Context) ([]string, error)

// PipelineOptions wires the collaborators of a Pipeline. Zero values get
// production defaults.
type PipelineOptions struct {
	Adapters []domain.ToolAdapter
	Runner   CommandRunner
	Executor *Executor
	Store    *ReportStore
	Logger   *log.Logger
}

// Pipeline performs one analysis cycle: collect files, run every tool
// adapter in parallel, persist their reports and aggregate a snapshot
type Pipeline struct {
	root       string
	cfg        *config.Config
	collect    FileCollector
	adapters   []domain.ToolAdapter
	executor   *Executor
	store      *ReportStore
	aggregator *Aggregator
	logger     *log.Logger
}

// NewAdapters builds the four tool adapters from configuration
func NewAdapters(cfg *config.Config, runner CommandRunner, logger *log.Logger) []domain.ToolAdapter {
	return []domain.ToolAdapter{
		NewLintAdapter(cfg.Tools.Lint, runner, logger),
		NewDepsAdapter(cfg.Tools.Deps, runner, logger),
		NewDeadCodeAdapter(cfg.Tools.DeadCode, runner, logger),
		NewLineCountAdapter(cfg.Tools.LineCount, logger),
	}
}

// NewPipeline creates a pipeline for the absolute analysis root
func NewPipeline(cfg *config.Config, root string, collect FileCollector, opts PipelineOptions) *Pipeline {
	logger := orDiscard(opts.Logger)
	if opts.Adapters == nil {
		opts.Adapters = NewAdapters(cfg, opts.Runner, logger)
	}
	if opts.Executor == nil {
		opts.Executor = NewExecutor(WithPerformance(cfg.Performance))
	}
	return &Pipeline{
		root:       root,
		cfg:        cfg,
		collect:    collect,
		adapters:   opts.Adapters,
		executor:   opts.Executor,
		store:      opts.Store,
		aggregator: NewAggregator(root, AggregatorOptions{
			TopN:       cfg.Report.TopN,
			Thresholds: cfg.Thresholds.ToDomain(),
			Logger:     logger,
		}),
		logger: logger,
	}
}

// RunTools runs every adapter and waits for all of them. Failures are
// carried in the reports and never abort the cycle.
func (p *Pipeline) RunTools(ctx context.Context) domain.ReportSet {
	var reports domain.ReportSet

	workDir := ""
	if p.store != nil {
		dir, err := p.store.PrepareWorkDir()
		if err != nil {
			p.logger.Error("cannot prepare work directory", "err", err)
		}
		workDir = dir
	}
	if workDir == "" {
		dir, err := os.MkdirTemp("", constants.ToolName+"-work-*")
		if err != nil {
			p.logger.Error("cannot create work directory", "err", err)
		} else {
			workDir = dir
			defer os.RemoveAll(dir)
		}
	}

	files, err := p.collect(ctx)
	if err != nil {
		p.logger.Error("file collection failed", "err", err)
	}
	reports.Files = files

	input := domain.AdapterInput{
		Root:            p.root,
		Files:           files,
		IncludePatterns: p.cfg.Analysis.IncludePatterns,
		ExcludePatterns: p.cfg.Analysis.ExcludePatterns,
		Thresholds:      p.cfg.Thresholds.ToDomain(),
		WorkDir:         workDir,
	}

	tasks := make([]*adapterTask, len(p.adapters))
	executable := make([]domain.ExecutableTask, len(p.adapters))
	for i, a := range p.adapters {
		tasks[i] = newAdapterTask(a, input, p.cfg.Tools.Get(a.Kind()).Enabled)
		executable[i] = tasks[i]
	}

	if err := p.executor.Execute(ctx, executable); err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			for _, f := range cycleErr.Failures {
				p.logger.Warn("tool did not produce a report", "tool", f.Tool, "elapsed", f.Elapsed, "err", f.Err)
			}
		} else {
			p.logger.Warn("tool execution incomplete", "err", err)
		}
	}

	// A cancelled run must not replace the reports of the last complete one
	persist := p.store != nil && ctx.Err() == nil
	for _, t := range tasks {
		report := t.Report()
		if report == nil {
			reason := DisabledReason
			if t.IsEnabled() {
				reason = "not run"
			}
			report = domain.FailedReport(t.adapter.Kind(), reason)
		}
		reports.Put(report)
		if persist {
			if err := p.store.SaveReport(report); err != nil {
				p.logger.Warn("cannot persist report", "tool", report.Kind, "err", err)
			}
		}
	}
	return reports
}

// Aggregate merges reports into a snapshot and persists it
func (p *Pipeline) Aggregate(reports domain.ReportSet) *domain.Snapshot {
	snapshot := p.aggregator.Aggregate(reports)
	if p.store != nil {
		if err := p.store.SaveSnapshot(snapshot); err != nil {
			p.logger.Warn("cannot persist snapshot", "err", err)
		}
	}
	return snapshot
}
