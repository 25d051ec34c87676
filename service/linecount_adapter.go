package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/boyter/scc/v3/processor"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/parser"
)

var sccInitOnce sync.Once

// LineCountAdapter counts lines in-process with scc and adds function
// metrics from the tree-sitter scanner
type LineCountAdapter struct {
	cfg    config.ToolConfig
	logger *log.Logger
}

// NewLineCountAdapter creates the line counter. scc's language tables are
// built once per process.
func NewLineCountAdapter(cfg config.ToolConfig, logger *log.Logger) *LineCountAdapter {
	sccInitOnce.Do(func() {
		processor.ProcessConstants()
	})
	return &LineCountAdapter{
		cfg:    cfg,
		logger: orDiscard(logger).With("tool", domain.ToolKindLineCount),
	}
}

// Kind returns domain.ToolKindLineCount
func (a *LineCountAdapter) Kind() domain.ToolKind {
	return domain.ToolKindLineCount
}

// Timeout returns the configured bound of one run
func (a *LineCountAdapter) Timeout() time.Duration {
	return a.cfg.Timeout()
}

// Run counts every collected file. Unreadable and binary files are skipped.
func (a *LineCountAdapter) Run(ctx context.Context, in domain.AdapterInput) *domain.ToolReport {
	start := time.Now()
	if !a.cfg.Enabled {
		return failedReport(a.logger, domain.ToolKindLineCount, start, DisabledReason)
	}

	entries := make([]*domain.LineCountEntry, len(in.Files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range in.Files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			entries[i] = a.countFile(gCtx, in.Root, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failedReport(a.logger, domain.ToolKindLineCount, start, fmt.Sprintf("line count interrupted: %v", err))
	}

	report := &domain.LineCountReport{Files: make([]domain.LineCountEntry, 0, len(entries))}
	for _, e := range entries {
		if e != nil {
			report.Files = append(report.Files, *e)
		}
	}
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })

	if err := validateLineCount(report); err != nil {
		return failedReport(a.logger, domain.ToolKindLineCount, start, err.Error())
	}

	a.logger.Debug("line count complete", "files", len(report.Files))
	return &domain.ToolReport{
		Kind:        domain.ToolKindLineCount,
		Version:     "scc " + processor.Version,
		GeneratedAt: time.Now(),
		DurationMs:  time.Since(start).Milliseconds(),
		LineCount:   report,
	}
}

// countFile returns nil for files that cannot be counted
func (a *LineCountAdapter) countFile(ctx context.Context, root, path string) *domain.LineCountEntry {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, path)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		a.logger.Debug("skipping unreadable file", "file", path, "err", err)
		return nil
	}

	name := filepath.Base(abs)
	possible, _ := processor.DetectLanguage(name)
	if len(possible) == 0 {
		return nil
	}
	job := &processor.FileJob{
		Filename:          name,
		Content:           content,
		Bytes:             int64(len(content)),
		PossibleLanguages: possible,
	}
	job.Language = processor.DetermineLanguage(job.Filename, job.Language, job.PossibleLanguages, job.Content)
	if job.Language == "" {
		return nil
	}
	processor.CountStats(job)
	if job.Binary {
		return nil
	}

	rel := abs
	if r, err := filepath.Rel(root, abs); err == nil {
		rel = filepath.ToSlash(r)
	}
	complexity := job.Complexity
	entry := &domain.LineCountEntry{
		Path:       rel,
		Language:   job.Language,
		Lines:      job.Lines,
		Code:       job.Code,
		Comment:    job.Comment,
		Blank:      job.Blank,
		Complexity: &complexity,
	}

	stats, ok, err := parser.ScanFile(ctx, name, content)
	switch {
	case err != nil:
		a.logger.Debug("function scan failed", "file", rel, "err", err)
	case ok:
		avg := stats.AvgLength
		entry.Functions = domain.IntPtr(stats.Count)
		entry.AvgFunctionLength = &avg
		entry.MaxFunctionLength = domain.IntPtr(stats.MaxLength)
	}
	return entry
}

// validateLineCount holds the in-process report to the same schema as the
// external tools' output
func validateLineCount(report *domain.LineCountReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	var decoded domain.LineCountReport
	return decodeToolOutput(domain.ToolKindLineCount, data, &decoded)
}
