package ops

import (
	"time"

	"github.com/rlch/ogm"
)

// Action is the kind of a statement event.
type Action string

// Statement event actions.
const (
	ActionRun    Action = "run"
	ActionResult Action = "result"
	ActionError  Action = "error"
)

// IsTerminal reports whether the action ends a statement.
func (a Action) IsTerminal() bool {
	return a == ActionResult || a == ActionError
}

// Event is emitted around every statement an operation runs.
type Event struct {
	Time   time.Time
	Action Action

	// Operation is the facade method, e.g. "save" or "find-all".
	Operation string

	// Step names the statement within the operation, e.g. "create-node".
	Step string

	// Type is the entity type the statement is about.
	Type string

	Query  string
	Params map[string]any

	// Set on terminal events.
	Rows    int
	Summary ogm.Summary
	Elapsed time.Duration
	Error   error
}

// Step is the outcome of one statement of an operation.
type Step struct {
	Name    string
	Type    string
	Query   string
	Rows    int
	Summary ogm.Summary
	Elapsed time.Duration
	Error   error
}
