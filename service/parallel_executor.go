package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
)

const (
	// DefaultMaxConcurrency applies when performance.max_goroutines is not positive.
	DefaultMaxConcurrency = 4
	// DefaultTimeout bounds one Execute call as a whole.
	DefaultTimeout = 10 * time.Minute
)

// ToolFailure is one task that ended with an error.
type ToolFailure struct {
	Tool    string
	Err     error
	Elapsed time.Duration
}

func (f ToolFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Tool, f.Err)
}

func (f ToolFailure) Unwrap() error {
	return f.Err
}

// CycleError lists the tasks of one Execute call that failed, ordered by
// tool name.
type CycleError struct {
	Failures []ToolFailure
}

func (e *CycleError) Error() string {
	switch len(e.Failures) {
	case 0:
		return "no tool failures"
	case 1:
		return e.Failures[0].Error()
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d tools failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes every underlying error to errors.Is and errors.As.
func (e *CycleError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Executor runs a cycle's tasks concurrently and waits for all of them.
// A failing task never cancels its siblings.
type Executor struct {
	limit    int
	budget   time.Duration
	progress domain.ProgressManager
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPerformance takes the concurrency limit and overall budget from the
// performance section. Non-positive values fall back to the defaults.
func WithPerformance(cfg config.PerformanceConfig) ExecutorOption {
	return func(e *Executor) {
		e.limit = DefaultMaxConcurrency
		if cfg.MaxGoroutines > 0 {
			e.limit = cfg.MaxGoroutines
		}
		e.budget = DefaultTimeout
		if cfg.TimeoutSeconds > 0 {
			e.budget = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
	}
}

// WithLimit caps the number of tasks running at once.
func WithLimit(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithProgress reports each finished task to pm.
func WithProgress(pm domain.ProgressManager) ExecutorOption {
	return func(e *Executor) { e.progress = pm }
}

// NewExecutor runs every tool at once by default.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{limit: len(domain.AllToolKinds()), budget: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the enabled tasks. It returns a *CycleError when any failed.
func (e *Executor) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	var enabled []domain.ExecutableTask
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	var task domain.TaskProgress = silentProgress{}
	if e.progress != nil {
		task = e.progress.StartTask("Running tools", len(enabled))
	}
	defer task.Complete()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	var mu sync.Mutex
	var failures []ToolFailure
	fail := func(name string, err error, elapsed time.Duration) {
		mu.Lock()
		failures = append(failures, ToolFailure{Tool: name, Err: err, Elapsed: elapsed})
		mu.Unlock()
	}

	for _, t := range enabled {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				fail(t.Name(), err, 0)
				return nil
			}

			start := time.Now()
			_, err := t.Execute(gCtx)
			elapsed := time.Since(start)

			outcome := "ok"
			if err != nil {
				outcome = "failed"
				fail(t.Name(), err, elapsed)
			}
			task.Describe(fmt.Sprintf("%s %s (%s)", t.Name(), outcome, elapsed.Round(time.Millisecond)))
			task.Increment(1)
			return nil
		})
	}

	_ = g.Wait()

	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Tool < failures[j].Tool })
	return &CycleError{Failures: failures}
}

// adapterTask runs one tool adapter under its own timeout. The adapter's
// report is kept even when the run failed.
type adapterTask struct {
	adapter domain.ToolAdapter
	input   domain.AdapterInput
	enabled bool

	report *domain.ToolReport
}

func newAdapterTask(adapter domain.ToolAdapter, input domain.AdapterInput, enabled bool) *adapterTask {
	return &adapterTask{adapter: adapter, input: input, enabled: enabled}
}

// Name returns the tool kind
func (t *adapterTask) Name() string {
	return string(t.adapter.Kind())
}

// IsEnabled reports whether the tool is turned on
func (t *adapterTask) IsEnabled() bool {
	return t.enabled
}

// Execute runs the adapter. An adapter that outlives its timeout, or whose
// parent context is cancelled, is abandoned and recorded as failed.
func (t *adapterTask) Execute(ctx context.Context) (interface{}, error) {
	start := time.Now()
	timeout := t.adapter.Timeout()
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan *domain.ToolReport, 1)
	go func() {
		done <- t.adapter.Run(runCtx, t.input)
	}()

	var report *domain.ToolReport
	select {
	case report = <-done:
	case <-runCtx.Done():
		elapsed := time.Since(start)
		verb := "timed out"
		if ctx.Err() != nil && !errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
			verb = "cancelled"
		}
		report = domain.FailedReport(t.adapter.Kind(),
			fmt.Sprintf("%s after %s", verb, elapsed.Round(time.Millisecond)))
		report.DurationMs = elapsed.Milliseconds()
	}
	if report == nil {
		report = domain.FailedReport(t.adapter.Kind(), "adapter returned no report")
	}
	t.report = report

	if report.Failed {
		return report, domain.NewToolError(report.Kind, report.FailureReason, nil)
	}
	return report, nil
}

// Report returns the report of the last Execute, or nil before the first
func (t *adapterTask) Report() *domain.ToolReport {
	return t.report
}
