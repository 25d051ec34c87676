package app

import (
	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/ignore"
	"github.com/ludo-technologies/jsboard/service"
)

// workspace is everything one analysis root needs to run cycles
type workspace struct {
	root     string
	matcher  *ignore.Matcher
	store    *service.ReportStore
	pipeline *service.Pipeline
}

type workspaceOptions struct {
	adapters []domain.ToolAdapter
	runner   service.CommandRunner
	progress domain.ProgressManager
	logger   *log.Logger
}

func newWorkspace(cfg *config.Config, root string, opts workspaceOptions) (*workspace, error) {
	matcher, err := NewMatcher(cfg, root)
	if err != nil {
		return nil, domain.NewConfigError("invalid include/exclude patterns", err)
	}
	store, err := service.NewReportStore(cfg.Report.Directory, root)
	if err != nil {
		return nil, err
	}
	// A report directory inside the root must not feed back into analysis
	matcher.ExcludeDir(store.Dir())

	var executor *service.Executor
	if opts.progress != nil {
		executor = service.NewExecutor(service.WithPerformance(cfg.Performance), service.WithProgress(opts.progress))
	}

	collector := NewFileCollector(matcher, cfg.Analysis.FollowSymlinks)
	pipeline := service.NewPipeline(cfg, root, collector.Collect, service.PipelineOptions{
		Adapters: opts.adapters,
		Runner:   opts.runner,
		Executor: executor,
		Store:    store,
		Logger:   opts.logger,
	})

	return &workspace{root: root, matcher: matcher, store: store, pipeline: pipeline}, nil
}
