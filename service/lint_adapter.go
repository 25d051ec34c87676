package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
)

const lintOutputFile = "lint.raw.json"

// LintAdapter runs eslint with the configured thresholds as rule overrides
type LintAdapter struct {
	*externalTool
}

// NewLintAdapter creates the eslint adapter
func NewLintAdapter(cfg config.ToolConfig, runner CommandRunner, logger *log.Logger) *LintAdapter {
	return &LintAdapter{externalTool: newExternalTool(domain.ToolKindLint, cfg, runner, logger)}
}

// Run lints the collected files. eslint exits with 1 when it reports
// findings; only higher codes or a missing report mean failure.
func (a *LintAdapter) Run(ctx context.Context, in domain.AdapterInput) *domain.ToolReport {
	start := time.Now()
	if !a.cfg.Enabled {
		return a.failed(start, DisabledReason)
	}

	files := relativeFiles(in.Root, in.Files)
	if len(files) == 0 {
		report := a.succeeded(ctx, in, start)
		report.Lint = &domain.LintReport{Files: []domain.LintFileResult{}}
		return report
	}

	targets, narrowed := fileArgs(files)
	out := filepath.Join(in.WorkDir, lintOutputFile)
	name, args := a.command(lintArgs(out, in.Thresholds, targets)...)
	res, err := a.runner.Run(ctx, in.Root, name, args...)
	if err != nil {
		return a.failed(start, "%v", err)
	}
	if res.ExitCode > 1 {
		return a.failed(start, "%s", exitFailure(res))
	}

	data, err := readOutput(out, res.Stdout)
	if err != nil {
		return a.failed(start, "%v", err)
	}
	var results []domain.LintFileResult
	if err := decodeToolOutput(a.kind, data, &results); err != nil {
		return a.failed(start, "%v", err)
	}
	if narrowed {
		results = filterLintResults(results, in.Root, in.Files)
	}

	report := a.succeeded(ctx, in, start)
	report.Lint = &domain.LintReport{Files: results}
	a.logger.Debug("lint complete", "files", len(results), "duration_ms", report.DurationMs)
	return report
}

// lintArgs builds eslint flags. The size and complexity rules are forced on
// with the configured limits so their messages carry comparable numbers.
func lintArgs(out string, th domain.Thresholds, files []string) []string {
	args := []string{
		"--format", "json",
		"--output-file", out,
		"--no-error-on-unmatched-pattern",
		"--rule", fmt.Sprintf("complexity: [warn, %d]", th.Complexity),
		"--rule", fmt.Sprintf("max-lines: [warn, {max: %d, skipBlankLines: false, skipComments: false}]", th.MaxFileLines),
		"--rule", fmt.Sprintf("max-lines-per-function: [warn, {max: %d, skipBlankLines: false, skipComments: false}]", th.MaxFunctionLines),
	}
	return append(args, files...)
}

func filterLintResults(results []domain.LintFileResult, root string, files []string) []domain.LintFileResult {
	collected := newCollectedSet(root, files)
	out := make([]domain.LintFileResult, 0, len(results))
	for _, r := range results {
		if collected.has(root, r.FilePath) {
			out = append(out, r)
		}
	}
	return out
}
