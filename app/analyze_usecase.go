package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/service"
)

// AnalyzeConfig holds configuration for the one-shot analyze use case
type AnalyzeConfig struct {
	// Root is the analysis root; empty falls back to the configured root
	Root   string
	Config *config.Config

	// Output options
	OutputFormat domain.OutputFormat
	OutputWriter io.Writer

	// Progress reports per-tool progress; nil disables it
	Progress domain.ProgressManager
}

// AnalyzeResult holds the outcome of one analysis cycle
type AnalyzeResult struct {
	Snapshot  *domain.Snapshot
	ReportDir string
	Duration  time.Duration
}

// AnalyzeUseCase runs every tool once, aggregates and prints the snapshot
type AnalyzeUseCase struct {
	adapters  []domain.ToolAdapter
	runner    service.CommandRunner
	formatter *service.OutputFormatterImpl
	logger    *log.Logger
}

// NewAnalyzeUseCase creates an analyze use case with production adapters
func NewAnalyzeUseCase(logger *log.Logger) *AnalyzeUseCase {
	return NewAnalyzeUseCaseBuilder().WithLogger(logger).Build()
}

// Execute performs a single cycle and writes the snapshot in the requested
// format. Tool failures degrade the snapshot; only setup problems return
// an error.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, cfg AnalyzeConfig) (*AnalyzeResult, error) {
	start := time.Now()
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = domain.OutputFormat(cfg.Config.Output.Format)
	}

	root, err := ResolveRoot(cfg.Config, cfg.Root)
	if err != nil {
		return nil, domain.NewInvalidInputError("invalid analysis root", err)
	}

	ws, err := newWorkspace(cfg.Config, root, workspaceOptions{
		adapters: uc.adapters,
		runner:   uc.runner,
		progress: cfg.Progress,
		logger:   uc.logger,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Config.Performance.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Config.Performance.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	uc.logger.Debug("starting analysis", "root", root, "store", ws.store.Dir())
	reports := ws.pipeline.RunTools(ctx)
	if cfg.Progress != nil {
		cfg.Progress.Close()
	}
	snapshot := ws.pipeline.Aggregate(reports)

	if cfg.OutputWriter != nil {
		if err := uc.formatter.WriteSnapshot(snapshot, cfg.OutputFormat, cfg.OutputWriter); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
	}

	return &AnalyzeResult{
		Snapshot:  snapshot,
		ReportDir: ws.store.Dir(),
		Duration:  time.Since(start),
	}, nil
}

// AnalyzeUseCaseBuilder builds an AnalyzeUseCase
type AnalyzeUseCaseBuilder struct {
	adapters  []domain.ToolAdapter
	runner    service.CommandRunner
	formatter *service.OutputFormatterImpl
	logger    *log.Logger
}

// NewAnalyzeUseCaseBuilder creates a new builder
func NewAnalyzeUseCaseBuilder() *AnalyzeUseCaseBuilder {
	return &AnalyzeUseCaseBuilder{}
}

// WithAdapters replaces the production tool adapters
func (b *AnalyzeUseCaseBuilder) WithAdapters(adapters ...domain.ToolAdapter) *AnalyzeUseCaseBuilder {
	b.adapters = adapters
	return b
}

// WithRunner sets the command runner used by the external tool adapters
func (b *AnalyzeUseCaseBuilder) WithRunner(runner service.CommandRunner) *AnalyzeUseCaseBuilder {
	b.runner = runner
	return b
}

// WithFormatter sets the output formatter
func (b *AnalyzeUseCaseBuilder) WithFormatter(f *service.OutputFormatterImpl) *AnalyzeUseCaseBuilder {
	b.formatter = f
	return b
}

// WithLogger sets the logger
func (b *AnalyzeUseCaseBuilder) WithLogger(logger *log.Logger) *AnalyzeUseCaseBuilder {
	b.logger = logger
	return b
}

// Build creates the AnalyzeUseCase
func (b *AnalyzeUseCaseBuilder) Build() *AnalyzeUseCase {
	formatter := b.formatter
	if formatter == nil {
		formatter = service.NewOutputFormatter()
	}
	return &AnalyzeUseCase{
		adapters:  b.adapters,
		runner:    b.runner,
		formatter: formatter,
		logger:    orDiscard(b.logger),
	}
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
