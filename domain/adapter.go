package domain

import (
	"context"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Thresholds are the configured limits handed to the lint tool
type Thresholds struct {
	MaxFileLines     int `json:"max_file_lines" yaml:"max_file_lines"`
	MaxFunctionLines int `json:"max_function_lines" yaml:"max_function_lines"`
	Complexity       int `json:"complexity" yaml:"complexity"`
}

// AdapterInput is everything a tool adapter needs for one run
type AdapterInput struct {
	// Root is the absolute analysis root
	Root string

	// Files is the collected file set, absolute paths
	Files []string

	IncludePatterns []string
	ExcludePatterns []string
	Thresholds      Thresholds

	// WorkDir is scratch space scoped to one cycle and one analysis root
	WorkDir string
}

// ToolAdapter invokes one external analyzer. Run never returns an error:
// every failure is converted into a failed ToolReport.
type ToolAdapter interface {
	Kind() ToolKind
	Timeout() time.Duration
	Run(ctx context.Context, in AdapterInput) *ToolReport
}

// ExecutableTask is a unit of work for the parallel executor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ProgressManager creates progress tasks
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}
