package service

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/ludo-technologies/jsboard/domain"
)

// NewProgressManager returns a stderr progress display for tool runs, or a
// silent one when disabled or not attached to a terminal.
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return newToolProgress(os.Stderr)
	}
	return silentProgress{}
}

// toolProgress draws one bar per started task and, on Close, prints the
// outcome of every tool that reported in.
type toolProgress struct {
	w io.Writer

	mu   sync.Mutex
	bars []*toolBar
}

func newToolProgress(w io.Writer) *toolProgress {
	return &toolProgress{w: w}
}

func (p *toolProgress) StartTask(title string, total int) domain.TaskProgress {
	b := &toolBar{
		title: title,
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(title),
			progressbar.OptionSetWidth(24),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "|",
				BarEnd:        "|",
			}),
			progressbar.OptionClearOnFinish(),
		),
	}

	p.mu.Lock()
	p.bars = append(p.bars, b)
	p.mu.Unlock()
	return b
}

func (p *toolProgress) IsInteractive() bool { return true }

func (p *toolProgress) Close() {
	p.mu.Lock()
	bars := p.bars
	p.bars = nil
	p.mu.Unlock()

	for _, b := range bars {
		b.Complete()
		if summary := b.summary(); summary != "" {
			fmt.Fprintf(p.w, "%s: %s\n", b.title, summary)
		}
	}
}

type toolBar struct {
	title string
	bar   *progressbar.ProgressBar

	mu       sync.Mutex
	outcomes []string
}

func (b *toolBar) Increment(n int) {
	_ = b.bar.Add(n)
}

// Describe records a finished item and shows it as the bar's suffix.
func (b *toolBar) Describe(outcome string) {
	b.mu.Lock()
	b.outcomes = append(b.outcomes, outcome)
	b.mu.Unlock()
	b.bar.Describe(b.title + " [" + outcome + "]")
}

func (b *toolBar) Complete() {
	if !b.bar.IsFinished() {
		_ = b.bar.Finish()
	}
}

func (b *toolBar) summary() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.outcomes, ", ")
}

// silentProgress discards all progress. It serves as both manager and task.
type silentProgress struct{}

func (silentProgress) StartTask(string, int) domain.TaskProgress { return silentProgress{} }
func (silentProgress) IsInteractive() bool                       { return false }
func (silentProgress) Close()                                    {}
func (silentProgress) Increment(int)                             {}
func (silentProgress) Describe(string)                           {}
func (silentProgress) Complete()                                 {}
