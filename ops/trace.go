package ops

import (
	"sync"
	"time"

	"github.com/rlch/ogm"
)

// Trace accumulates the statements of one operation.
type Trace struct {
	mu sync.RWMutex

	Operation string
	StartTime time.Time
	EndTime   time.Time

	Steps   []Step
	Summary ogm.Summary
	Errors  int
}

// NewTrace creates a trace for operation.
func NewTrace(operation string) *Trace {
	return &Trace{
		Operation: operation,
		StartTime: time.Now(),
	}
}

// Add records a terminal event.
func (t *Trace) Add(event Event) {
	if !event.Action.IsTerminal() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.Steps = append(t.Steps, Step{
		Name:    event.Step,
		Type:    event.Type,
		Query:   event.Query,
		Rows:    event.Rows,
		Summary: event.Summary,
		Elapsed: event.Elapsed,
		Error:   event.Error,
	})
	t.Summary.Add(event.Summary)

	if event.Action == ActionError {
		t.Errors++
	}
}

// Finish marks the trace as complete.
func (t *Trace) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.EndTime = time.Now()
}

// Elapsed returns the time the operation took so far.
func (t *Trace) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}

	return t.EndTime.Sub(t.StartTime)
}

// Ok reports whether no statement failed.
func (t *Trace) Ok() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.Errors == 0
}

// StepNames returns the step names in execution order.
func (t *Trace) StepNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.Name
	}

	return out
}
