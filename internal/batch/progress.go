package batch

import (
	"fmt"
	"io"
	"sync"
)

// ProgressStatus is the state of a job within a run.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is emitted as jobs move through a run.
type ProgressEvent struct {
	Index   int
	Job     string
	Status  ProgressStatus
	Message string
}

// String renders the event as a status line without a trailing newline.
func (ev ProgressEvent) String() string {
	switch ev.Status {
	case ProgressPending:
		return "○ " + ev.Job + " pending"
	case ProgressWorking:
		return "● " + ev.Job + " working"
	case ProgressComplete:
		return "✓ " + ev.Job + " complete"
	case ProgressFailed:
		return "✗ " + ev.Job + " failed: " + ev.Message
	}
	return fmt.Sprintf("? %s %s", ev.Job, ev.Status)
}

// ProgressPrinter writes a counted status line for every job that starts or
// finishes. Report is called from runner workers and serializes its writes,
// so no event is dropped and lines never interleave.
type ProgressPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	total  int
	done   int
	failed int
}

// NewProgressPrinter creates a ProgressPrinter for a run of total jobs.
func NewProgressPrinter(w io.Writer, total int) *ProgressPrinter {
	return &ProgressPrinter{w: w, total: total}
}

// Report records ev and prints it. Pending events only queue a job and are
// not printed.
func (p *ProgressPrinter) Report(ev ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Status {
	case ProgressPending:
		return
	case ProgressComplete:
		p.done++
	case ProgressFailed:
		p.done++
		p.failed++
	}
	fmt.Fprintf(p.w, "[%d/%d] %s\n", p.done, p.total, ev)
}

// Counts returns how many jobs have finished and how many of those failed.
func (p *ProgressPrinter) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.failed
}
