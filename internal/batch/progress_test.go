package batch

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressEvent_String(t *testing.T) {
	tests := []struct {
		ev   ProgressEvent
		want string
	}{
		{ProgressEvent{Job: "api", Status: ProgressPending}, "○ api pending"},
		{ProgressEvent{Job: "api", Status: ProgressWorking}, "● api working"},
		{ProgressEvent{Job: "api", Status: ProgressComplete}, "✓ api complete"},
		{ProgressEvent{Job: "api", Status: ProgressFailed, Message: "boom"}, "✗ api failed: boom"},
		{ProgressEvent{Job: "api", Status: "odd"}, "? api odd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ev.String())
	}
}

func TestProgressPrinter_Report(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressPrinter(&buf, 2)

	p.Report(ProgressEvent{Index: 0, Job: "api", Status: ProgressPending})
	p.Report(ProgressEvent{Index: 0, Job: "api", Status: ProgressWorking})
	p.Report(ProgressEvent{Index: 0, Job: "api", Status: ProgressComplete})
	p.Report(ProgressEvent{Index: 1, Job: "docs", Status: ProgressFailed, Message: "boom"})

	assert.Equal(t, "[0/2] ● api working\n"+
		"[1/2] ✓ api complete\n"+
		"[2/2] ✗ docs failed: boom\n", buf.String())

	done, failed := p.Counts()
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, failed)
}

func TestProgressPrinter_ConcurrentReportsKeepEveryLine(t *testing.T) {
	var buf bytes.Buffer
	const jobs = 200
	p := NewProgressPrinter(&buf, jobs)

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Report(ProgressEvent{Index: i, Job: fmt.Sprintf("job-%d", i), Status: ProgressComplete})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, jobs)
	assert.True(t, strings.HasPrefix(lines[jobs-1], fmt.Sprintf("[%d/%d] ", jobs, jobs)), lines[jobs-1])
	done, failed := p.Counts()
	assert.Equal(t, jobs, done)
	assert.Zero(t, failed)
}
