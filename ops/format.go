package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rlch/ogm"
)

// Formatter renders statement events and traces.
type Formatter interface {
	Format(event Event, trace *Trace) error
	Summary(trace *Trace) error
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter) *FormatHandler {
	return &FormatHandler{formatter: f}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, trace *Trace) error {
	return h.formatter.Format(event, trace)
}

// Summary renders the summary of a finished operation.
func (h *FormatHandler) Summary(trace *Trace) error {
	return h.formatter.Summary(trace)
}

// -----------------------------------------------------------------------------
// Verbose Formatter
// -----------------------------------------------------------------------------

// VerboseFormatter prints every statement and its outcome.
type VerboseFormatter struct {
	w io.Writer
}

// NewVerboseFormatter creates a verbose formatter.
func NewVerboseFormatter(w io.Writer) *VerboseFormatter {
	return &VerboseFormatter{w: w}
}

// Format prints each event as it occurs.
func (v *VerboseFormatter) Format(event Event, _ *Trace) error {
	switch event.Action {
	case ActionRun:
		_, _ = fmt.Fprintf(v.w, "=== %s %s\n", event.Step, event.Type)
		_, _ = fmt.Fprintf(v.w, "    %s\n", event.Query)
	case ActionResult:
		_, _ = fmt.Fprintf(v.w, "--- OK: %s (%d rows, %s)\n", event.Step, event.Rows, event.Elapsed)
	case ActionError:
		_, _ = fmt.Fprintf(v.w, "--- ERROR: %s (%s)\n", event.Step, event.Elapsed)
		_, _ = fmt.Fprintf(v.w, "    %v\n", event.Error)
	}

	return nil
}

// Summary prints the counters of the operation.
func (v *VerboseFormatter) Summary(trace *Trace) error {
	status := "OK"
	if !trace.Ok() {
		status = "FAIL"
	}

	s := trace.Summary

	_, _ = fmt.Fprintf(v.w, "%s %s: %d statements\n", status, trace.Operation, len(trace.Steps))
	_, _ = fmt.Fprintf(v.w, "  nodes +%d -%d, relationships +%d -%d, properties %d, labels +%d -%d\n",
		s.NodesCreated,
		s.NodesDeleted,
		s.RelationshipsCreated,
		s.RelationshipsDeleted,
		s.PropertiesSet,
		s.LabelsAdded,
		s.LabelsRemoved,
	)
	_, _ = fmt.Fprintf(v.w, "  elapsed: %s\n", trace.Elapsed().Round(time.Millisecond))

	return nil
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON events.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time      string       `json:"time"`
	Action    string       `json:"action"`
	Operation string       `json:"operation"`
	Step      string       `json:"step"`
	Type      string       `json:"type,omitempty"`
	Query     string       `json:"query,omitempty"`
	Rows      int          `json:"rows,omitempty"`
	Elapsed   float64      `json:"elapsed,omitempty"`
	Error     string       `json:"error,omitempty"`
	Summary   *ogm.Summary `json:"summary,omitempty"`
}

// Format outputs a JSON event.
func (j *JSONFormatter) Format(event Event, _ *Trace) error {
	je := jsonEvent{
		Time:      event.Time.Format(time.RFC3339Nano),
		Action:    string(event.Action),
		Operation: event.Operation,
		Step:      event.Step,
		Type:      event.Type,
	}

	switch event.Action {
	case ActionRun:
		je.Query = event.Query
	case ActionResult:
		je.Rows = event.Rows
		je.Elapsed = event.Elapsed.Seconds()
		je.Summary = counters(event.Summary)
	case ActionError:
		je.Elapsed = event.Elapsed.Seconds()
	}

	if event.Error != nil {
		je.Error = event.Error.Error()
	}

	return j.enc.Encode(je)
}

type jsonSummary struct {
	Action     string       `json:"action"`
	Operation  string       `json:"operation"`
	Statements int          `json:"statements"`
	Errors     int          `json:"errors"`
	Elapsed    float64      `json:"elapsed"`
	Ok         bool         `json:"ok"`
	Summary    *ogm.Summary `json:"summary,omitempty"`
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(trace *Trace) error {
	return j.enc.Encode(jsonSummary{
		Action:     "summary",
		Operation:  trace.Operation,
		Statements: len(trace.Steps),
		Errors:     trace.Errors,
		Elapsed:    trace.Elapsed().Seconds(),
		Ok:         trace.Ok(),
		Summary:    counters(trace.Summary),
	})
}

func counters(s ogm.Summary) *ogm.Summary {
	if s == (ogm.Summary{}) {
		return nil
	}

	return &s
}

// NewFormatter creates a formatter by name: "json" or "verbose".
func NewFormatter(name string, w io.Writer) Formatter { //nolint:ireturn
	if name == "json" {
		return NewJSONFormatter(w)
	}

	return NewVerboseFormatter(w)
}
