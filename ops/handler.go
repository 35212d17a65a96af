package ops

import (
	"context"

	"go.uber.org/zap"
)

// Handler receives statement events.
type Handler interface {
	// Event is called for each event as it occurs. A non-nil error aborts
	// the operation.
	Event(ctx context.Context, event Event, trace *Trace) error
}

// MultiHandler fans out events to multiple handlers.
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a handler that dispatches to multiple handlers.
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Event dispatches to all handlers, stopping on first error.
func (m *MultiHandler) Event(ctx context.Context, event Event, trace *Trace) error {
	for _, h := range m.handlers {
		err := h.Event(ctx, event, trace)
		if err != nil {
			return err
		}
	}

	return nil
}

// TraceHandler records terminal events in the trace.
type TraceHandler struct{}

// NewTraceHandler creates a handler that accumulates traces.
func NewTraceHandler() *TraceHandler {
	return &TraceHandler{}
}

// Event updates the trace.
func (h *TraceHandler) Event(_ context.Context, event Event, trace *Trace) error {
	trace.Add(event)

	return nil
}

// LogHandler logs statements at debug level and failures at warn level.
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a handler logging to logger.
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// Event logs the event.
func (h *LogHandler) Event(_ context.Context, event Event, _ *Trace) error {
	fields := []zap.Field{
		zap.String("operation", event.Operation),
		zap.String("step", event.Step),
		zap.String("type", event.Type),
	}

	switch event.Action {
	case ActionRun:
		h.logger.Debug("Running statement",
			append(fields, zap.String("query", event.Query), zap.Any("params", event.Params))...)
	case ActionResult:
		h.logger.Debug("Statement finished",
			append(fields,
				zap.Int("rows", event.Rows),
				zap.Duration("elapsed", event.Elapsed),
				zap.Any("summary", event.Summary))...)
	case ActionError:
		h.logger.Warn("Statement failed",
			append(fields, zap.String("query", event.Query), zap.Error(event.Error))...)
	}

	return nil
}

var (
	_ Handler = (*MultiHandler)(nil)
	_ Handler = (*TraceHandler)(nil)
	_ Handler = (*LogHandler)(nil)
	_ Handler = (*FormatHandler)(nil)
)
