// Package testutil provides helper functions for testing jsboard components
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/jsboard/domain"
)

// FixedTime is the timestamp stamped on fixture reports
var FixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// WriteProject creates files under a temporary root and returns the root.
// Keys are slash-separated paths relative to the root.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return root
}

// LineCountReport wraps line-count entries in a tool report
func LineCountReport(entries ...domain.LineCountEntry) *domain.ToolReport {
	return &domain.ToolReport{
		Kind:        domain.ToolKindLineCount,
		Version:     "scc-test",
		GeneratedAt: FixedTime,
		LineCount:   &domain.LineCountReport{Files: entries},
	}
}

// LintReport wraps lint file results in a tool report
func LintReport(files ...domain.LintFileResult) *domain.ToolReport {
	return &domain.ToolReport{
		Kind:        domain.ToolKindLint,
		Version:     "eslint-test",
		GeneratedAt: FixedTime,
		Lint:        &domain.LintReport{Files: files},
	}
}

// DepGraphReport wraps circular violations, one per cycle, in a tool report
func DepGraphReport(cycles ...[]string) *domain.ToolReport {
	report := &domain.DepGraphReport{}
	for _, c := range cycles {
		v := domain.DepViolation{Rule: domain.DepRule{Name: domain.CircularRuleName, Severity: "warn"}}
		if len(c) > 0 {
			v.From = c[0]
		}
		if len(c) > 1 {
			v.To = c[1]
		}
		for _, name := range c {
			v.Cycle = append(v.Cycle, domain.CycleStep{Name: name})
		}
		report.Summary.Violations = append(report.Summary.Violations, v)
	}
	return &domain.ToolReport{
		Kind:        domain.ToolKindDependencyGraph,
		Version:     "depcruise-test",
		GeneratedAt: FixedTime,
		DepGraph:    report,
	}
}

// DeadCodeReport wraps unused files and issues in a tool report
func DeadCodeReport(files []string, issues ...domain.DeadCodeIssue) *domain.ToolReport {
	return &domain.ToolReport{
		Kind:        domain.ToolKindDeadCode,
		Version:     "knip-test",
		GeneratedAt: FixedTime,
		DeadCode:    &domain.DeadCodeReport{Files: files, Issues: issues},
	}
}

// ScenarioReports returns the four-tool reference scenario: one 450-line
// file over a 400-line limit, a two-file cycle and one unused export
func ScenarioReports() domain.ReportSet {
	var set domain.ReportSet
	set.Put(LineCountReport(domain.LineCountEntry{
		Path: "src/app.ts", Language: "TypeScript", Lines: 450, Code: 400, Comment: 20, Blank: 30,
	}))
	set.Put(LintReport(domain.LintFileResult{
		FilePath: "src/app.ts",
		Messages: []domain.LintMessage{{
			RuleID:   "max-lines",
			Severity: 1,
			Message:  "File has too many lines (450). Maximum allowed is 400.",
			Line:     401,
		}},
		WarningCount: 1,
	}))
	set.Put(DepGraphReport([]string{"src/a.ts", "src/b.ts", "src/a.ts"}))
	set.Put(DeadCodeReport(nil, domain.DeadCodeIssue{
		File:    "src/unused.ts",
		Exports: []domain.DeadCodeSymbol{{Name: "helper"}},
	}))
	return set
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// Eventually polls cond until it holds or the timeout expires
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", timeout, msg)
}
