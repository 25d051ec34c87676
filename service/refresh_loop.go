package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
)

// RefreshState is the phase of the refresh loop
type RefreshState int

const (
	// StateIdle means no cycle is active
	StateIdle RefreshState = iota
	// StateRunning means tool adapters are executing
	StateRunning
	// StateAggregating means reports are being merged
	StateAggregating
)

// String returns the lowercase state name
func (s RefreshState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAggregating:
		return "aggregating"
	default:
		return "idle"
	}
}

// changeBuffer bounds queued change notifications. Dropped notifications
// are harmless: any queued one already restarts the debounce window.
const changeBuffer = 64

// CycleRunner performs the two halves of an analysis cycle
type CycleRunner interface {
	RunTools(ctx context.Context) domain.ReportSet
	Aggregate(reports domain.ReportSet) *domain.Snapshot
}

// RefreshStatus describes the loop for status endpoints
type RefreshStatus struct {
	State           string     `json:"state" yaml:"state"`
	ChangePending   bool       `json:"change_pending" yaml:"change_pending"`
	Ready           bool       `json:"ready" yaml:"ready"`
	Cycles          int64      `json:"cycles" yaml:"cycles"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty" yaml:"last_completed_at,omitempty"`
	LastDurationMs  int64      `json:"last_duration_ms" yaml:"last_duration_ms"`
}

// RefreshLoop keeps the latest snapshot fresh. At most one cycle runs at a
// time; changes arriving during a cycle collapse into a single follow-up.
type RefreshLoop struct {
	runner   CycleRunner
	debounce time.Duration
	logger   *log.Logger

	latest  atomic.Pointer[domain.Snapshot]
	changes chan struct{}

	mu            sync.Mutex
	state         RefreshState
	pending       bool
	cycles        int64
	lastCompleted time.Time
	lastDuration  time.Duration
	listeners     []func(*domain.Snapshot)
}

// NewRefreshLoop creates a loop. A non-positive debounce disables the quiet
// window.
func NewRefreshLoop(runner CycleRunner, debounce time.Duration, logger *log.Logger) *RefreshLoop {
	return &RefreshLoop{
		runner:   runner,
		debounce: debounce,
		logger:   orDiscard(logger),
		changes:  make(chan struct{}, changeBuffer),
	}
}

// OnPublish registers fn to be called with every new snapshot, in
// publication order. Listeners must not block.
func (l *RefreshLoop) OnPublish(fn func(*domain.Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Latest returns the last published snapshot, or nil before the first cycle
// completes
func (l *RefreshLoop) Latest() *domain.Snapshot {
	return l.latest.Load()
}

// Snapshot returns the last published snapshot or domain.ErrNotReady
func (l *RefreshLoop) Snapshot() (*domain.Snapshot, error) {
	if s := l.latest.Load(); s != nil {
		return s, nil
	}
	return nil, domain.ErrNotReady
}

// Status reports the current phase and counters
func (l *RefreshLoop) Status() RefreshStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	status := RefreshStatus{
		State:          l.state.String(),
		ChangePending:  l.pending,
		Ready:          l.latest.Load() != nil,
		Cycles:         l.cycles,
		LastDurationMs: l.lastDuration.Milliseconds(),
	}
	if !l.lastCompleted.IsZero() {
		t := l.lastCompleted
		status.LastCompletedAt = &t
	}
	return status
}

// Notify records a file-system change. It never blocks.
func (l *RefreshLoop) Notify() {
	select {
	case l.changes <- struct{}{}:
	default:
	}
}

// RunOnce runs a single cycle synchronously and publishes its snapshot.
// When ctx is cancelled before the tools finish, nothing is published and
// the previous snapshot, possibly nil, is returned.
func (l *RefreshLoop) RunOnce(ctx context.Context) *domain.Snapshot {
	return l.cycle(ctx)
}

// Run performs the initial cycle immediately, then re-runs after each
// debounced burst of changes until ctx is done. Cycles run detached from
// ctx: one active at shutdown finishes and publishes before Run returns.
// Adapter timeouts and the executor budget bound how long that takes.
func (l *RefreshLoop) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		running bool
		done    = make(chan struct{}, 1)
	)
	cycleCtx := context.WithoutCancel(ctx)
	start := func() {
		running = true
		go func() {
			l.cycle(cycleCtx)
			done <- struct{}{}
		}()
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	start()
	for {
		select {
		case <-ctx.Done():
			if running {
				l.logger.Info("waiting for the active analysis cycle to finish")
				<-done
			}
			return

		case <-l.changes:
			if l.debounce <= 0 {
				l.trigger(running, start)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(l.debounce)
			} else {
				timer.Reset(l.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			l.trigger(running, start)

		case <-done:
			running = false
			if l.takePending() {
				l.logger.Debug("change arrived during cycle, re-running")
				start()
			}
		}
	}
}

// trigger starts a cycle, or marks one pending when a cycle is active
func (l *RefreshLoop) trigger(running bool, start func()) {
	if running {
		l.mu.Lock()
		l.pending = true
		l.mu.Unlock()
		return
	}
	start()
}

func (l *RefreshLoop) takePending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.pending
	l.pending = false
	return p
}

func (l *RefreshLoop) setState(s RefreshState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// cycle runs tools, aggregates and publishes. The snapshot becomes visible
// only after it is complete.
func (l *RefreshLoop) cycle(ctx context.Context) *domain.Snapshot {
	begin := time.Now()

	l.setState(StateRunning)
	reports := l.runner.RunTools(ctx)
	if err := ctx.Err(); err != nil {
		l.setState(StateIdle)
		l.logger.Warn("analysis cycle abandoned, keeping the previous snapshot", "err", err)
		return l.latest.Load()
	}

	l.setState(StateAggregating)
	snapshot := l.runner.Aggregate(reports)

	l.latest.Store(snapshot)

	l.mu.Lock()
	l.state = StateIdle
	l.cycles++
	l.lastCompleted = time.Now()
	l.lastDuration = time.Since(begin)
	cycle := l.cycles
	listeners := make([]func(*domain.Snapshot), len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	l.logger.Info("analysis cycle complete",
		"cycle", cycle,
		"duration", time.Since(begin).Round(time.Millisecond),
		"files", len(snapshot.Files),
		"failed_tools", len(snapshot.DataQuality.FailedTools))

	for _, fn := range listeners {
		fn(snapshot)
	}
	return snapshot
}
