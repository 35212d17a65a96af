package ops

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/rlch/ogm"
)

// RunnerFactory opens a statement runner for one asynchronous call.
type RunnerFactory func(ctx context.Context) (ogm.StatementRunner, error)

// Async runs template operations on goroutines. Every call gets its own
// runner and its own per-call state.
type Async struct {
	template *Template
	open     RunnerFactory
	limit    int
}

// NewAsync creates an asynchronous facade over t. limit bounds the number of
// concurrent calls of SaveAll; limit <= 0 means no bound.
func NewAsync(t *Template, open RunnerFactory, limit int) *Async {
	return &Async{template: t, open: open, limit: limit}
}

// Go runs fn on a new goroutine with a template bound to a fresh runner. The
// returned channel receives the result once and is closed.
func (a *Async) Go(ctx context.Context, fn func(ctx context.Context, t *Template) error) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)

		done <- a.do(ctx, fn)
	}()

	return done
}

func (a *Async) do(ctx context.Context, fn func(ctx context.Context, t *Template) error) (err error) {
	runner, err := a.open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, runner.Close())
	}()

	return fn(ctx, a.template.WithRunner(runner))
}

// Save saves entity asynchronously.
func (a *Async) Save(ctx context.Context, entity any) <-chan error {
	return a.Go(ctx, func(ctx context.Context, t *Template) error {
		_, err := t.Save(ctx, entity)

		return err
	})
}

// SaveAll saves each entity in its own call, concurrently, and returns the
// traces in the order of entities. The first failure cancels the remaining
// calls. Graphs of different entities must not share objects.
func (a *Async) SaveAll(ctx context.Context, entities ...any) ([]*Trace, error) {
	g, ctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}

	traces := make([]*Trace, len(entities))

	for i, e := range entities {
		g.Go(func() error {
			return a.do(ctx, func(ctx context.Context, t *Template) error {
				trace, err := t.Save(ctx, e)
				traces[i] = trace

				return err
			})
		})
	}

	return traces, g.Wait()
}
