package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
)

const (
	depsConfigFile = "depcruise.json"
	depsOutputFile = "deps.raw.json"
)

// DepsAdapter runs dependency-cruiser with a generated no-circular rule set
type DepsAdapter struct {
	*externalTool
}

// NewDepsAdapter creates the dependency-cruiser adapter
func NewDepsAdapter(cfg config.ToolConfig, runner CommandRunner, logger *log.Logger) *DepsAdapter {
	return &DepsAdapter{externalTool: newExternalTool(domain.ToolKindDependencyGraph, cfg, runner, logger)}
}

// Run cruises the collected files
func (a *DepsAdapter) Run(ctx context.Context, in domain.AdapterInput) *domain.ToolReport {
	start := time.Now()
	if !a.cfg.Enabled {
		return a.failed(start, DisabledReason)
	}

	files := relativeFiles(in.Root, in.Files)
	if len(files) == 0 {
		report := a.succeeded(ctx, in, start)
		report.DepGraph = &domain.DepGraphReport{Modules: []domain.DepModule{}}
		return report
	}

	cfgPath := filepath.Join(in.WorkDir, depsConfigFile)
	if err := writeDepsConfig(cfgPath, in.Root); err != nil {
		return a.failed(start, "failed to write dependency-cruiser config: %v", err)
	}

	out := filepath.Join(in.WorkDir, depsOutputFile)
	extra := []string{"--output-type", "json", "--config", cfgPath, "--output-to", out}
	targets, narrowed := fileArgs(files)
	name, args := a.command(append(extra, targets...)...)
	res, err := a.runner.Run(ctx, in.Root, name, args...)
	if err != nil {
		return a.failed(start, "%v", err)
	}

	data, err := readOutput(out, res.Stdout)
	if err != nil {
		return a.failed(start, "%s: %v", exitFailure(res), err)
	}
	var graph domain.DepGraphReport
	if err := decodeToolOutput(a.kind, data, &graph); err != nil {
		return a.failed(start, "%v", err)
	}

	if narrowed {
		graph.Modules = filterModules(graph.Modules, in.Root, in.Files)
	}

	report := a.succeeded(ctx, in, start)
	report.DepGraph = &graph
	a.logger.Debug("dependency graph complete",
		"modules", len(graph.Modules), "violations", len(graph.Summary.Violations))
	return report
}

type depsRule struct {
	Name     string         `json:"name"`
	Severity string         `json:"severity"`
	From     map[string]any `json:"from"`
	To       map[string]any `json:"to"`
}

type depsConfig struct {
	Forbidden []depsRule     `json:"forbidden"`
	Options   map[string]any `json:"options"`
}

// writeDepsConfig writes a cruise configuration whose only rule flags
// circular dependencies. The root tsconfig is used when present so path
// aliases resolve.
func writeDepsConfig(path, root string) error {
	cfg := depsConfig{
		Forbidden: []depsRule{{
			Name:     domain.CircularRuleName,
			Severity: "warn",
			From:     map[string]any{},
			To:       map[string]any{"circular": true},
		}},
		Options: map[string]any{
			"doNotFollow":          map[string]any{"path": "node_modules"},
			"tsPreCompilationDeps": true,
		},
	}
	tsconfig := filepath.Join(root, "tsconfig.json")
	if _, err := os.Stat(tsconfig); err == nil {
		cfg.Options["tsConfig"] = map[string]any{"fileName": tsconfig}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// filterModules drops modules outside the collected set. Edges to them stay
// so dependency counts of collected files are unchanged.
func filterModules(modules []domain.DepModule, root string, files []string) []domain.DepModule {
	collected := newCollectedSet(root, files)
	out := make([]domain.DepModule, 0, len(modules))
	for _, m := range modules {
		if collected.has(root, m.Source) {
			out = append(out, m)
		}
	}
	return out
}
