package ops_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/ops"
)

// txRunner is a fakeRunner that hands out transactions recording into the
// same statement list.
type txRunner struct {
	fakeRunner

	mu        sync.Mutex
	committed int
	rolled    int
	beginErr  error
}

func (r *txRunner) Begin(context.Context) (ogm.Transaction, error) {
	if r.beginErr != nil {
		return nil, r.beginErr
	}

	return &fakeTx{runner: r}, nil
}

type fakeTx struct {
	runner *txRunner
}

func (tx *fakeTx) Run(ctx context.Context, query string, params map[string]any) (*ogm.Result, error) {
	return tx.runner.Run(ctx, query, params)
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.runner.mu.Lock()
	defer tx.runner.mu.Unlock()

	tx.runner.committed++

	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.runner.mu.Lock()
	defer tx.runner.mu.Unlock()

	tx.runner.rolled++

	return nil
}

func TestInTransaction(t *testing.T) {
	t.Parallel()

	t.Run("commit", func(t *testing.T) {
		t.Parallel()

		runner := &txRunner{}
		tpl := newTemplate(t, runner)

		err := tpl.InTransaction(context.Background(), func(tx *ops.Template) error {
			if _, err := tx.Save(context.Background(), &Thing{Name: "a"}); err != nil {
				return err
			}

			_, err := tx.Save(context.Background(), &Thing{Name: "b"})

			return err
		})
		require.NoError(t, err)

		assert.Equal(t, 1, runner.committed)
		assert.Zero(t, runner.rolled)
		assert.Len(t, runner.queries(), 2)
	})

	t.Run("rollback", func(t *testing.T) {
		t.Parallel()

		runner := &txRunner{}
		tpl := newTemplate(t, runner)
		boom := errors.New("boom")

		err := tpl.InTransaction(context.Background(), func(tx *ops.Template) error {
			if _, err := tx.Save(context.Background(), &Thing{Name: "a"}); err != nil {
				return err
			}

			return boom
		})
		require.ErrorIs(t, err, boom)

		assert.Zero(t, runner.committed)
		assert.Equal(t, 1, runner.rolled)
	})

	t.Run("begin fails", func(t *testing.T) {
		t.Parallel()

		runner := &txRunner{beginErr: errors.New("no session")}
		tpl := newTemplate(t, runner)

		err := tpl.InTransaction(context.Background(), func(*ops.Template) error {
			t.Fatal("fn must not run")

			return nil
		})
		require.ErrorIs(t, err, ogm.ErrDataAccess)
	})

	t.Run("runner without transactions", func(t *testing.T) {
		t.Parallel()

		tpl := newTemplate(t, &fakeRunner{})

		err := tpl.InTransaction(context.Background(), func(*ops.Template) error { return nil })
		require.ErrorIs(t, err, ogm.ErrNoTransactionSupport)
	})
}

type recordingHandler struct {
	mu      sync.Mutex
	actions []ops.Action
	fail    error
}

func (h *recordingHandler) Event(_ context.Context, event ops.Event, _ *ops.Trace) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.actions = append(h.actions, event.Action)

	return h.fail
}

func TestTemplate_Handlers(t *testing.T) {
	t.Parallel()

	t.Run("events", func(t *testing.T) {
		t.Parallel()

		h := &recordingHandler{}
		tpl := newTemplate(t, &fakeRunner{}, ops.WithHandler(h))

		_, err := tpl.Save(context.Background(), &Thing{Name: "a"})
		require.NoError(t, err)
		assert.Equal(t, []ops.Action{ops.ActionRun, ops.ActionResult}, h.actions)
	})

	t.Run("handler error aborts", func(t *testing.T) {
		t.Parallel()

		stop := errors.New("stop")
		runner := &fakeRunner{}
		tpl := newTemplate(t, runner, ops.WithHandler(&recordingHandler{fail: stop}))

		_, err := tpl.Save(context.Background(), &Thing{Name: "a"})
		require.ErrorIs(t, err, stop)
		assert.Empty(t, runner.queries())
	})
}

func TestTemplate_Run(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		respond: func(string, map[string]any) (*ogm.Result, error) {
			return &ogm.Result{
				Keys:    []string{"name"},
				Rows:    []ogm.Row{ogm.NewRow([]string{"name"}, []any{"Keanu"})},
				Summary: ogm.Summary{NodesCreated: 1},
			}, nil
		},
	}
	tpl := ops.New(runner, nil, nil)

	res, trace, err := tpl.Run(context.Background(), "find", "Person",
		"MATCH (n:`Person`) WHERE n.name = $name RETURN n.name AS name", map[string]any{"name": "Keanu"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	assert.Equal(t, "find", trace.Operation)
	require.Len(t, trace.Steps, 1)
	assert.Equal(t, "find", trace.Steps[0].Name)
	assert.Equal(t, 1, trace.Summary.NodesCreated)
	assert.Equal(t, []string{"MATCH (n:`Person`) WHERE n.name = $name RETURN n.name AS name"}, runner.queries())

	failing := &fakeRunner{
		respond: func(string, map[string]any) (*ogm.Result, error) {
			return nil, &ogm.RunnerError{Code: "Neo.ClientError.Statement.SyntaxError"}
		},
	}

	_, trace, err = ops.New(failing, nil, nil).Run(context.Background(), "find", "Person", "MATCH", nil)
	require.ErrorIs(t, err, ogm.ErrDataAccess)
	assert.Equal(t, 1, trace.Errors)
}

func TestTemplate_Logging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	runner := &fakeRunner{
		respond: func(string, map[string]any) (*ogm.Result, error) {
			return nil, &ogm.RunnerError{Code: "Neo.ClientError.Statement.SyntaxError"}
		},
	}
	tpl := newTemplate(t, runner, ops.WithLogger(zap.New(core)))

	_, err := tpl.Count(context.Background(), "Thing")
	require.ErrorIs(t, err, ogm.ErrDataAccess)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Running statement", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "Statement failed", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "count", entries[1].ContextMap()["step"])
}

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("save all", func(t *testing.T) {
		t.Parallel()

		var (
			mu      sync.Mutex
			runners []*fakeRunner
		)

		open := func(context.Context) (ogm.StatementRunner, error) {
			mu.Lock()
			defer mu.Unlock()

			r := &fakeRunner{}
			runners = append(runners, r)

			return r, nil
		}

		async := ops.NewAsync(newTemplate(t, &fakeRunner{}), open, 2)

		things := []any{&Thing{Name: "a"}, &Thing{Name: "b"}, &Thing{Name: "c"}}

		traces, err := async.SaveAll(context.Background(), things...)
		require.NoError(t, err)
		require.Len(t, traces, 3)

		for _, tr := range traces {
			assert.Equal(t, []string{"create-node"}, tr.StepNames())
		}

		require.Len(t, runners, 3)

		for _, r := range runners {
			assert.True(t, r.closed)
			assert.Len(t, r.queries(), 1)
		}

		for _, th := range things {
			assert.NotNil(t, th.(*Thing).ID)
		}
	})

	t.Run("save", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{}
		open := func(context.Context) (ogm.StatementRunner, error) { return runner, nil }

		async := ops.NewAsync(newTemplate(t, &fakeRunner{}), open, 0)
		thing := &Thing{Name: "a"}

		require.NoError(t, <-async.Save(context.Background(), thing))
		assert.Equal(t, ptr(int64(1)), thing.ID)
		assert.True(t, runner.closed)
	})

	t.Run("open fails", func(t *testing.T) {
		t.Parallel()

		refused := errors.New("connection refused")
		open := func(context.Context) (ogm.StatementRunner, error) { return nil, refused }

		async := ops.NewAsync(newTemplate(t, &fakeRunner{}), open, 0)

		_, err := async.SaveAll(context.Background(), &Thing{Name: "a"})
		require.ErrorIs(t, err, refused)
	})
}

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	a, err := ops.UUIDGenerator{}.Generate("Pet", nil)
	require.NoError(t, err)

	b, err := ops.UUIDGenerator{}.Generate("Pet", nil)
	require.NoError(t, err)

	require.IsType(t, "", a)
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
