package ogm

import (
	"context"
	"fmt"
	"slices"
)

// StatementRunner executes rendered statements with their parameters.
type StatementRunner interface {
	// Run executes query with params and returns all result rows.
	Run(ctx context.Context, query string, params map[string]any) (*Result, error)

	// Close releases runner resources.
	Close() error
}

// Transaction is an active database transaction. Statements run through a
// transaction are isolated until Commit or Rollback.
type Transaction interface {
	// Run executes a statement within this transaction.
	Run(ctx context.Context, query string, params map[string]any) (*Result, error)

	// Commit commits the transaction.
	Commit(ctx context.Context) error

	// Rollback aborts the transaction.
	Rollback(ctx context.Context) error
}

// TransactionalRunner is implemented by runners that support transactions.
type TransactionalRunner interface {
	StatementRunner

	// Begin starts a new transaction.
	Begin(ctx context.Context) (Transaction, error)
}

// RunnerFactory creates a StatementRunner from configuration.
type RunnerFactory func(cfg any) (StatementRunner, error)

var runners = make(map[string]RunnerFactory)

// RegisterRunner registers a runner factory by name.
func RegisterRunner(name string, factory RunnerFactory) {
	runners[name] = factory
}

// NewRunner creates a runner by name.
func NewRunner(name string, cfg any) (StatementRunner, error) { //nolint:ireturn
	factory, ok := runners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRunner, name)
	}

	return factory(cfg)
}

// RegisteredRunners returns the names of all registered runners, sorted.
func RegisteredRunners() []string {
	names := make([]string, 0, len(runners))
	for name := range runners {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// TxRunner adapts a Transaction to the StatementRunner interface so that a
// sequence of operations can share one transaction. Close is a no-op; the
// caller commits or rolls back.
func TxRunner(tx Transaction) StatementRunner { //nolint:ireturn
	return txRunner{tx: tx}
}

type txRunner struct {
	tx Transaction
}

func (r txRunner) Run(ctx context.Context, query string, params map[string]any) (*Result, error) {
	return r.tx.Run(ctx, query, params)
}

func (txRunner) Close() error {
	return nil
}
