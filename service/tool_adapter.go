package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/identity"
	"github.com/ludo-technologies/jsboard/internal/schema"
)

// DisabledReason is the failure reason of a tool turned off in configuration
const DisabledReason = "disabled"

// externalTool holds what every subprocess-backed adapter shares
type externalTool struct {
	kind   domain.ToolKind
	cfg    config.ToolConfig
	runner CommandRunner
	logger *log.Logger

	versionOnce sync.Once
	version     string
}

func newExternalTool(kind domain.ToolKind, cfg config.ToolConfig, runner CommandRunner, logger *log.Logger) *externalTool {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &externalTool{
		kind:   kind,
		cfg:    cfg,
		runner: runner,
		logger: orDiscard(logger).With("tool", kind),
	}
}

// Kind returns the tool kind
func (t *externalTool) Kind() domain.ToolKind {
	return t.kind
}

// Timeout returns the configured wall-clock bound of one run
func (t *externalTool) Timeout() time.Duration {
	return t.cfg.Timeout()
}

// command returns the configured executable followed by base args and extra
func (t *externalTool) command(extra ...string) (string, []string) {
	args := make([]string, 0, len(t.cfg.Args)+len(extra))
	args = append(args, t.cfg.Args...)
	args = append(args, extra...)
	return t.cfg.Command, args
}

// toolVersion asks the tool for its version once per adapter
func (t *externalTool) toolVersion(ctx context.Context, dir string) string {
	t.versionOnce.Do(func() {
		t.version = "unknown"
		name, args := t.command("--version")
		res, err := t.runner.Run(ctx, dir, name, args...)
		if err != nil || res.ExitCode != 0 {
			t.logger.Debug("version probe failed", "err", err)
			return
		}
		if v := firstLine(res.Stdout); v != "" {
			t.version = v
		}
	})
	return t.version
}

// failed builds a failed report and logs the reason
func (t *externalTool) failed(start time.Time, format string, args ...any) *domain.ToolReport {
	return failedReport(t.logger, t.kind, start, fmt.Sprintf(format, args...))
}

// succeeded stamps a usable report
func (t *externalTool) succeeded(ctx context.Context, in domain.AdapterInput, start time.Time) *domain.ToolReport {
	return &domain.ToolReport{
		Kind:        t.kind,
		Version:     t.toolVersion(ctx, in.Root),
		GeneratedAt: time.Now(),
		DurationMs:  time.Since(start).Milliseconds(),
	}
}

// exitFailure describes a process result that produced no report
func exitFailure(res *CommandResult) string {
	if s := res.StderrSummary(); s != "" {
		return fmt.Sprintf("exit code %d: %s", res.ExitCode, s)
	}
	return fmt.Sprintf("exit code %d", res.ExitCode)
}

func failedReport(logger *log.Logger, kind domain.ToolKind, start time.Time, reason string) *domain.ToolReport {
	r := domain.FailedReport(kind, reason)
	r.DurationMs = time.Since(start).Milliseconds()
	if reason != DisabledReason {
		logger.Debug("tool failed", "reason", reason)
	}
	return r
}

// decodeToolOutput validates raw tool output against the kind's schema and
// decodes it into v
func decodeToolOutput(kind domain.ToolKind, data []byte, v any) error {
	validator, err := schema.Default()
	if err != nil {
		return err
	}
	if err := validator.ValidateTool(kind, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s output: %w", kind, err)
	}
	return nil
}

// readOutput reads a report file written by a tool. When the file is
// missing the tool's stdout is used instead.
func readOutput(path string, stdout []byte) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil && len(bytes.TrimSpace(data)) > 0 {
		return data, nil
	}
	if trimmed := jsonPayload(stdout); len(trimmed) > 0 {
		return trimmed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("no report produced: %w", err)
	}
	return nil, fmt.Errorf("no report produced: %s is empty", filepath.Base(path))
}

// jsonPayload skips any banner a tool prints before its JSON document
func jsonPayload(out []byte) []byte {
	out = bytes.TrimSpace(out)
	if i := bytes.IndexAny(out, "[{"); i > 0 {
		out = out[i:]
	}
	return out
}

// maxFileArgBytes bounds the file list passed on a command line. Larger
// sets are replaced by the root and results narrowed to the collected files.
const maxFileArgBytes = 96 * 1024

// fileArgs returns the paths to pass to a tool and whether the root was
// passed instead of the explicit list.
func fileArgs(files []string) ([]string, bool) {
	total := 0
	for _, f := range files {
		total += len(f) + 1
		if total > maxFileArgBytes {
			return []string{"."}, true
		}
	}
	return files, false
}

// collectedSet is the canonical identity set of the collected files. A nil
// set accepts everything.
type collectedSet map[domain.FileIdentity]bool

func newCollectedSet(root string, files []string) collectedSet {
	if len(files) == 0 {
		return nil
	}
	set := make(collectedSet, len(files))
	for _, f := range files {
		set[identity.Canonicalize(f, root)] = true
	}
	return set
}

func (c collectedSet) has(root, path string) bool {
	return c == nil || c[identity.Canonicalize(path, root)]
}

// relativeFiles converts collected files to slash-separated root-relative paths
func relativeFiles(root string, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel := f
		if filepath.IsAbs(f) {
			r, err := filepath.Rel(root, f)
			if err != nil {
				continue
			}
			rel = r
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func firstLine(b []byte) string {
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// orDiscard substitutes a silent logger for nil
func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
