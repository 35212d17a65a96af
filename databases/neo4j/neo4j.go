// Package neo4j provides an ogm statement runner for Neo4j.
package neo4j

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/rlch/ogm"
)

// ErrInvalidConfig is returned when an invalid configuration is provided.
var ErrInvalidConfig = errors.New("neo4j: expected *ogm.Neo4jConfig")

//nolint:gochecknoinits // Runner self-registration pattern
func init() {
	ogm.RegisterRunner(ogm.RunnerNeo4j, func(cfg any) (ogm.StatementRunner, error) {
		neo4jCfg, ok := cfg.(*ogm.Neo4jConfig)
		if !ok {
			return nil, fmt.Errorf("%w, got %T", ErrInvalidConfig, cfg)
		}

		return New(context.Background(), neo4jCfg)
	})
}

// Runner implements ogm.StatementRunner and ogm.TransactionalRunner for
// Neo4j. A Runner holds one session and must not be used concurrently; Fork
// returns a runner with its own session over the same driver.
type Runner struct {
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
	db      string
	logger  *zap.Logger

	// owner is false for forks, which leave the driver open on Close.
	owner bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger connection events are logged to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New connects to the database described by cfg.
func New(ctx context.Context, cfg *ogm.Neo4jConfig, opts ...Option) (*Runner, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	r := &Runner{
		driver: driver,
		db:     cfg.Database,
		logger: zap.NewNop(),
		owner:  true,
	}

	for _, opt := range opts {
		opt(r)
	}

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("neo4j: failed to connect: %w", err)
	}

	r.logger.Debug("Connected", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))
	r.session = r.newSession(ctx)

	return r, nil
}

func (r *Runner) newSession(ctx context.Context) neo4j.SessionWithContext {
	sessionCfg := neo4j.SessionConfig{
		AccessMode: neo4j.AccessModeWrite,
	}
	if r.db != "" {
		sessionCfg.DatabaseName = r.db
	}

	return r.driver.NewSession(ctx, sessionCfg)
}

// Fork returns a runner with a new session sharing the driver of r. Closing
// the fork closes only its session.
func (r *Runner) Fork(ctx context.Context) *Runner {
	return &Runner{
		driver:  r.driver,
		session: r.newSession(ctx),
		db:      r.db,
		logger:  r.logger,
	}
}

// Run executes one statement and returns all its rows.
func (r *Runner) Run(ctx context.Context, query string, params map[string]any) (*ogm.Result, error) {
	result, err := r.session.Run(ctx, query, toDriverMap(params))
	if err != nil {
		return nil, runnerError(query, err)
	}

	return collect(ctx, query, result)
}

// Close releases the session, and the driver unless r is a fork.
func (r *Runner) Close() error {
	ctx := context.Background()

	if r.session != nil {
		err := r.session.Close(ctx)
		if err != nil {
			return fmt.Errorf("neo4j: failed to close session: %w", err)
		}
	}

	if r.owner && r.driver != nil {
		err := r.driver.Close(ctx)
		if err != nil {
			return fmt.Errorf("neo4j: failed to close driver: %w", err)
		}

		r.logger.Debug("Disconnected")
	}

	return nil
}

// Begin starts a new explicit transaction on the session of r.
func (r *Runner) Begin(ctx context.Context) (ogm.Transaction, error) { //nolint:ireturn
	tx, err := r.session.BeginTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to begin transaction: %w", runnerError("", err))
	}

	return &Transaction{tx: tx}, nil
}

// Transaction wraps a Neo4j transaction to implement ogm.Transaction.
type Transaction struct {
	tx neo4j.ExplicitTransaction
}

// Run executes a statement within this transaction.
func (t *Transaction) Run(ctx context.Context, query string, params map[string]any) (*ogm.Result, error) {
	result, err := t.tx.Run(ctx, query, toDriverMap(params))
	if err != nil {
		return nil, runnerError(query, err)
	}

	return collect(ctx, query, result)
}

// Commit commits the transaction.
func (t *Transaction) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return runnerError("", err)
	}

	return nil
}

// Rollback aborts the transaction.
func (t *Transaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// collect reads every record of result and its counters.
func collect(ctx context.Context, query string, result neo4j.ResultWithContext) (*ogm.Result, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, runnerError(query, err)
	}

	keys, err := result.Keys()
	if err != nil {
		return nil, runnerError(query, err)
	}

	summary, err := result.Consume(ctx)
	if err != nil {
		return nil, runnerError(query, err)
	}

	out := &ogm.Result{
		Keys:    keys,
		Rows:    make([]ogm.Row, len(records)),
		Summary: summaryOf(summary.Counters()),
	}

	for i, record := range records {
		out.Rows[i] = rowOf(record.Keys, record.Values)
	}

	return out, nil
}

// runnerError wraps a driver failure, keeping the server status code.
func runnerError(query string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	rerr := &ogm.RunnerError{Message: err.Error(), Query: query, Err: err}

	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		rerr.Code = nerr.Code
		rerr.Message = nerr.Msg
	}

	return rerr
}

// Compile-time interface checks.
var (
	_ ogm.StatementRunner     = (*Runner)(nil)
	_ ogm.TransactionalRunner = (*Runner)(nil)
	_ ogm.Transaction         = (*Transaction)(nil)
)
