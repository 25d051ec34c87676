package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
)

// DeadCodeAdapter runs knip. knip resolves the project from its own entry
// points, so its findings are narrowed to the collected file set afterwards.
type DeadCodeAdapter struct {
	*externalTool
}

// NewDeadCodeAdapter creates the knip adapter
func NewDeadCodeAdapter(cfg config.ToolConfig, runner CommandRunner, logger *log.Logger) *DeadCodeAdapter {
	return &DeadCodeAdapter{externalTool: newExternalTool(domain.ToolKindDeadCode, cfg, runner, logger)}
}

// Run executes knip in the analysis root
func (a *DeadCodeAdapter) Run(ctx context.Context, in domain.AdapterInput) *domain.ToolReport {
	start := time.Now()
	if !a.cfg.Enabled {
		return a.failed(start, DisabledReason)
	}

	name, args := a.command("--reporter", "json", "--no-exit-code", "--no-progress")
	res, err := a.runner.Run(ctx, in.Root, name, args...)
	if err != nil {
		return a.failed(start, "%v", err)
	}

	data := jsonPayload(res.Stdout)
	if len(data) == 0 {
		return a.failed(start, "no report produced: %s", exitFailure(res))
	}
	var dc domain.DeadCodeReport
	if err := decodeToolOutput(a.kind, data, &dc); err != nil {
		return a.failed(start, "%v", err)
	}

	report := a.succeeded(ctx, in, start)
	report.DeadCode = filterDeadCode(&dc, in.Root, in.Files)
	a.logger.Debug("dead code complete",
		"files", len(report.DeadCode.Files), "issues", len(report.DeadCode.Issues))
	return report
}

// filterDeadCode keeps unused files and issues that belong to the collected
// set. An empty set keeps everything.
func filterDeadCode(dc *domain.DeadCodeReport, root string, files []string) *domain.DeadCodeReport {
	out := &domain.DeadCodeReport{
		Files:  []string{},
		Issues: []domain.DeadCodeIssue{},
	}
	if len(files) == 0 {
		out.Files = append(out.Files, dc.Files...)
		out.Issues = append(out.Issues, dc.Issues...)
		return out
	}

	collected := newCollectedSet(root, files)
	for _, f := range dc.Files {
		if collected.has(root, f) {
			out.Files = append(out.Files, f)
		}
	}
	for _, issue := range dc.Issues {
		if len(issue.Exports) == 0 && len(issue.Types) == 0 {
			continue
		}
		if collected.has(root, issue.File) {
			out.Issues = append(out.Issues, issue)
		}
	}
	return out
}
