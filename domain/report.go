package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ToolKind identifies which external analyzer produced a report
type ToolKind string

const (
	// ToolKindLint is the lint engine (eslint)
	ToolKindLint ToolKind = "lint"

	// ToolKindDependencyGraph is the dependency graph builder (dependency-cruiser)
	ToolKindDependencyGraph ToolKind = "deps"

	// ToolKindDeadCode is the dead-code detector (knip)
	ToolKindDeadCode ToolKind = "deadcode"

	// ToolKindLineCount is the line counter
	ToolKindLineCount ToolKind = "linecount"
)

// AllToolKinds lists every tool kind in a stable order
func AllToolKinds() []ToolKind {
	return []ToolKind{
		ToolKindLint,
		ToolKindDependencyGraph,
		ToolKindDeadCode,
		ToolKindLineCount,
	}
}

// ParseToolKind converts a string to a ToolKind
func ParseToolKind(s string) (ToolKind, error) {
	for _, k := range AllToolKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", NewInvalidInputError(fmt.Sprintf("unknown tool kind %q", s), nil)
}

// ToolReport is the normalized output of one external analyzer for one run.
// Exactly one payload field is set for a successful report. A failed report
// carries no payload and a FailureReason.
type ToolReport struct {
	Kind          ToolKind  `json:"kind" yaml:"kind"`
	Version       string    `json:"version" yaml:"version"`
	GeneratedAt   time.Time `json:"generated_at" yaml:"generated_at"`
	Failed        bool      `json:"failed,omitempty" yaml:"failed,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
	DurationMs    int64     `json:"duration_ms" yaml:"duration_ms"`

	Lint      *LintReport      `json:"lint,omitempty" yaml:"lint,omitempty"`
	DepGraph  *DepGraphReport  `json:"deps,omitempty" yaml:"deps,omitempty"`
	DeadCode  *DeadCodeReport  `json:"deadcode,omitempty" yaml:"deadcode,omitempty"`
	LineCount *LineCountReport `json:"linecount,omitempty" yaml:"linecount,omitempty"`
}

// FailedReport builds a report marking a tool run as unusable
func FailedReport(kind ToolKind, reason string) *ToolReport {
	return &ToolReport{
		Kind:          kind,
		GeneratedAt:   time.Now(),
		Failed:        true,
		FailureReason: reason,
	}
}

// Usable reports whether the report carries data of its declared kind
func (r *ToolReport) Usable() bool {
	if r == nil || r.Failed {
		return false
	}
	switch r.Kind {
	case ToolKindLint:
		return r.Lint != nil
	case ToolKindDependencyGraph:
		return r.DepGraph != nil
	case ToolKindDeadCode:
		return r.DeadCode != nil
	case ToolKindLineCount:
		return r.LineCount != nil
	}
	return false
}

// LintReport is eslint's JSON formatter output: one entry per file
type LintReport struct {
	Files []LintFileResult `json:"files" yaml:"files"`
}

// LintFileResult holds the messages reported for one file
type LintFileResult struct {
	FilePath     string        `json:"filePath" yaml:"file_path"`
	Messages     []LintMessage `json:"messages" yaml:"messages"`
	ErrorCount   int           `json:"errorCount" yaml:"error_count"`
	WarningCount int           `json:"warningCount" yaml:"warning_count"`
}

// LintMessage is a single lint finding
type LintMessage struct {
	RuleID   string `json:"ruleId" yaml:"rule_id"`
	Severity int    `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
}

// DepGraphReport is dependency-cruiser's JSON output
type DepGraphReport struct {
	Modules []DepModule `json:"modules" yaml:"modules"`
	Summary DepSummary  `json:"summary" yaml:"summary"`
}

// DepModule is one cruised module and its edges
type DepModule struct {
	Source          string          `json:"source" yaml:"source"`
	Dependencies    []DepDependency `json:"dependencies" yaml:"dependencies"`
	Dependents      []string        `json:"dependents,omitempty" yaml:"dependents,omitempty"`
	CoreModule      bool            `json:"coreModule,omitempty" yaml:"core_module,omitempty"`
	CouldNotResolve bool            `json:"couldNotResolve,omitempty" yaml:"could_not_resolve,omitempty"`
}

// DepDependency is an outgoing edge of a module
type DepDependency struct {
	Resolved        string   `json:"resolved" yaml:"resolved"`
	CoreModule      bool     `json:"coreModule,omitempty" yaml:"core_module,omitempty"`
	CouldNotResolve bool     `json:"couldNotResolve,omitempty" yaml:"could_not_resolve,omitempty"`
	Circular        bool     `json:"circular,omitempty" yaml:"circular,omitempty"`
	DependencyTypes []string `json:"dependencyTypes,omitempty" yaml:"dependency_types,omitempty"`
}

// DepSummary carries rule violations
type DepSummary struct {
	Violations   []DepViolation `json:"violations" yaml:"violations"`
	TotalCruised int            `json:"totalCruised" yaml:"total_cruised"`
}

// DepViolation is a rule violation reported by the dependency graph builder
type DepViolation struct {
	From  string      `json:"from" yaml:"from"`
	To    string      `json:"to" yaml:"to"`
	Rule  DepRule     `json:"rule" yaml:"rule"`
	Cycle []CycleStep `json:"cycle,omitempty" yaml:"cycle,omitempty"`
}

// DepRule names the violated rule
type DepRule struct {
	Name     string `json:"name" yaml:"name"`
	Severity string `json:"severity" yaml:"severity"`
}

// CircularRuleName is the rule dependency-cruiser uses for cycles
const CircularRuleName = "no-circular"

// IsCircular reports whether the violation describes a dependency cycle
func (v DepViolation) IsCircular() bool {
	return v.Rule.Name == CircularRuleName || len(v.Cycle) > 0
}

// CycleStep is one hop of a reported cycle. Older dependency-cruiser versions
// emit plain strings, newer ones emit {"name": ...} objects; both decode here.
type CycleStep struct {
	Name string `json:"name" yaml:"name"`
}

// UnmarshalJSON accepts either a string or an object with a name field
func (s *CycleStep) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("cycle step: %w", err)
	}
	s.Name = obj.Name
	return nil
}

// DeadCodeReport is knip's JSON reporter output
type DeadCodeReport struct {
	Files  []string        `json:"files" yaml:"files"`
	Issues []DeadCodeIssue `json:"issues" yaml:"issues"`
}

// DeadCodeIssue groups unused symbols of one file
type DeadCodeIssue struct {
	File    string           `json:"file" yaml:"file"`
	Exports []DeadCodeSymbol `json:"exports,omitempty" yaml:"exports,omitempty"`
	Types   []DeadCodeSymbol `json:"types,omitempty" yaml:"types,omitempty"`
}

// DeadCodeSymbol is one unused exported symbol
type DeadCodeSymbol struct {
	Name string `json:"name" yaml:"name"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
	Col  int    `json:"col,omitempty" yaml:"col,omitempty"`
}

// LineCountReport holds per-file line statistics
type LineCountReport struct {
	Files []LineCountEntry `json:"files" yaml:"files"`
}

// LineCountEntry holds line statistics for one file
type LineCountEntry struct {
	Path       string `json:"path" yaml:"path"`
	Language   string `json:"language,omitempty" yaml:"language,omitempty"`
	Lines      int64  `json:"lines" yaml:"lines"`
	Code       int64  `json:"code" yaml:"code"`
	Comment    int64  `json:"comment" yaml:"comment"`
	Blank      int64  `json:"blank" yaml:"blank"`
	Complexity *int64 `json:"complexity,omitempty" yaml:"complexity,omitempty"`

	// Function metrics, present only when the file could be parsed
	Functions         *int     `json:"functions,omitempty" yaml:"functions,omitempty"`
	AvgFunctionLength *float64 `json:"avg_function_length,omitempty" yaml:"avg_function_length,omitempty"`
	MaxFunctionLength *int     `json:"max_function_length,omitempty" yaml:"max_function_length,omitempty"`
}

// ReportSet is the input of one aggregation: each report is optional
type ReportSet struct {
	Lint      *ToolReport
	DepGraph  *ToolReport
	DeadCode  *ToolReport
	LineCount *ToolReport

	// Files is the collected file set of the run. It widens the identity
	// candidates beyond what the line counter reported.
	Files []string
}

// Put stores a report under its kind
func (s *ReportSet) Put(r *ToolReport) {
	if r == nil {
		return
	}
	switch r.Kind {
	case ToolKindLint:
		s.Lint = r
	case ToolKindDependencyGraph:
		s.DepGraph = r
	case ToolKindDeadCode:
		s.DeadCode = r
	case ToolKindLineCount:
		s.LineCount = r
	}
}

// Get returns the report for kind, or nil
func (s *ReportSet) Get(kind ToolKind) *ToolReport {
	switch kind {
	case ToolKindLint:
		return s.Lint
	case ToolKindDependencyGraph:
		return s.DepGraph
	case ToolKindDeadCode:
		return s.DeadCode
	case ToolKindLineCount:
		return s.LineCount
	}
	return nil
}
