// Package ops runs save, find and delete operations of mapped entities
// through a statement runner.
package ops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/mapping"
	"github.com/rlch/ogm/schema"
)

// Template is the operations facade. It is safe for concurrent use when its
// runner is.
type Template struct {
	runner     ogm.StatementRunner
	mapper     *mapping.Mapper
	generator  *cyphergen.Generator
	logger     *zap.Logger
	handlers   []Handler
	generators map[string]mapping.IDGenerator
}

// Option configures a Template.
type Option func(*Template)

// WithLogger sets the logger statements are logged to.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Template) {
		t.logger = logger
	}
}

// WithHandler adds a handler receiving every statement event.
func WithHandler(h Handler) Option {
	return func(t *Template) {
		t.handlers = append(t.handlers, h)
	}
}

// WithIDGenerator registers the generator used for generated ids naming it.
func WithIDGenerator(name string, gen mapping.IDGenerator) Option {
	return func(t *Template) {
		t.generators[name] = gen
	}
}

// New creates a template. The mapper and the generator must share a schema.
// Both may be nil for a template only used with Run.
func New(runner ogm.StatementRunner, mapper *mapping.Mapper, generator *cyphergen.Generator, opts ...Option) *Template {
	t := &Template{
		runner:     runner,
		mapper:     mapper,
		generator:  generator,
		logger:     zap.NewNop(),
		generators: map[string]mapping.IDGenerator{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Mapper returns the template's mapper.
func (t *Template) Mapper() *mapping.Mapper {
	return t.mapper
}

// WithRunner returns a copy of t running its statements through runner.
func (t *Template) WithRunner(runner ogm.StatementRunner) *Template {
	c := *t
	c.runner = runner

	return &c
}

// InTransaction runs fn with a template bound to a new transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
func (t *Template) InTransaction(ctx context.Context, fn func(tx *Template) error) error {
	tr, ok := t.runner.(ogm.TransactionalRunner)
	if !ok {
		return ogm.ErrNoTransactionSupport
	}

	tx, err := tr.Begin(ctx)
	if err != nil {
		return translate(err)
	}

	if err := fn(t.WithRunner(ogm.TxRunner(tx))); err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil {
			t.logger.Warn("Rollback failed", zap.Error(rerr))
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translate(err)
	}

	return nil
}

// Run executes one hand-written statement as operation and returns its raw
// result. Nothing is mapped; typeName only labels the events.
func (t *Template) Run(
	ctx context.Context,
	operation, typeName, query string,
	params map[string]any,
) (*ogm.Result, *Trace, error) {
	c := t.newCall(ctx, operation)

	res, err := c.runText(operation, typeName, query, params)

	return res, c.finish(), err
}

func (t *Template) describe(typeName string) (*schema.NodeDescription, error) {
	d, ok := t.mapper.Schema().Describe(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	return d, nil
}

// call is the state of one operation. It must not be shared across
// operations or goroutines.
type call struct {
	t         *Template
	ctx       context.Context //nolint:containedctx
	operation string
	trace     *Trace
	handler   Handler

	// saved maps entities written by this call to their wire ids.
	saved     map[any]any
	processed *mapping.ProcessedRelationships
}

func (t *Template) newCall(ctx context.Context, operation string) *call {
	handlers := append([]Handler{NewTraceHandler(), NewLogHandler(t.logger)}, t.handlers...)

	return &call{
		t:         t,
		ctx:       ctx,
		operation: operation,
		trace:     NewTrace(operation),
		handler:   NewMultiHandler(handlers...),
		saved:     map[any]any{},
		processed: mapping.NewProcessedRelationships(),
	}
}

func (c *call) finish() *Trace {
	c.trace.Finish()

	return c.trace
}

// run executes one statement of the operation.
func (c *call) run(step, typeName string, stmt *cypher.Statement, params map[string]any) (*ogm.Result, error) {
	return c.runText(step, typeName, stmt.Cypher(), params)
}

func (c *call) runText(step, typeName, query string, params map[string]any) (*ogm.Result, error) {
	event := Event{
		Time:      time.Now(),
		Action:    ActionRun,
		Operation: c.operation,
		Step:      step,
		Type:      typeName,
		Query:     query,
		Params:    params,
	}

	if err := c.handler.Event(c.ctx, event, c.trace); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.t.runner.Run(c.ctx, query, params)

	event.Time = time.Now()
	event.Elapsed = time.Since(start)

	if err != nil {
		err = translate(err)
		event.Action = ActionError
		event.Error = err

		if herr := c.handler.Event(c.ctx, event, c.trace); herr != nil {
			return nil, errors.Join(err, herr)
		}

		return nil, err
	}

	event.Action = ActionResult
	event.Rows = len(res.Rows)
	event.Summary = res.Summary

	if err := c.handler.Event(c.ctx, event, c.trace); err != nil {
		return nil, err
	}

	return res, nil
}

// translate maps runner failures to the caller-facing categories. Context
// errors are returned unchanged.
func translate(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rerr *ogm.RunnerError
	if errors.As(err, &rerr) && strings.Contains(rerr.Code, "ConstraintValidationFailed") {
		return fmt.Errorf("%w: %w", ogm.ErrConstraintViolation, err)
	}

	return fmt.Errorf("%w: %w", ogm.ErrDataAccess, err)
}

// internalID reads the KeyInternalID column of a single-row result.
func internalID(res *ogm.Result) (int64, bool) {
	row, ok := res.Single()
	if !ok {
		return 0, false
	}

	v, _ := row.Get(ogm.KeyInternalID)
	id, ok := v.(int64)

	return id, ok
}
