package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/ops"
	"github.com/rlch/ogm/schema"
)

// ErrIntrospectionUnsupported is returned when the runner cannot describe
// the stored graph.
var ErrIntrospectionUnsupported = errors.New("runner does not support introspection")

type introspector interface {
	Introspect(ctx context.Context) ([]schema.TypeDescriptor, error)
}

// session is what a database command needs: the schema, a statement
// generator and a template running statements through the configured runner.
type session struct {
	schema    *schema.Schema
	generator *cyphergen.Generator
	runner    ogm.StatementRunner
	template  *ops.Template
	handler   *ops.FormatHandler
}

func (a *app) openSession(cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s, _, err := loadSchema(cmd, cfg)
	if err != nil {
		return nil, err
	}

	g, err := cyphergen.New(s, cfg.CacheSize())
	if err != nil {
		return nil, err
	}

	runner, err := openRunner(cmd, cfg)
	if err != nil {
		return nil, err
	}

	sess := &session{schema: s, generator: g, runner: runner}
	opts := []ops.Option{ops.WithLogger(a.logger)}

	if h := formatHandler(cmd, os.Stderr); h != nil {
		sess.handler = h
		opts = append(opts, ops.WithHandler(h))
	}

	sess.template = ops.New(runner, nil, nil, opts...)

	return sess, nil
}

// formatHandler prints statement events when --json or --verbose is set.
func formatHandler(cmd *cli.Command, w io.Writer) *ops.FormatHandler {
	switch {
	case cmd.Bool("json"):
		return ops.NewFormatHandler(ops.NewFormatter("json", w))
	case cmd.Bool("verbose"):
		return ops.NewFormatHandler(ops.NewFormatter("verbose", w))
	default:
		return nil
	}
}

func (s *session) describe(typeName string) (*schema.NodeDescription, error) {
	d, ok := s.schema.Describe(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	return d, nil
}

// run executes stmt and prints the summary when events are formatted.
func (s *session) run(
	ctx context.Context,
	operation string,
	d *schema.NodeDescription,
	stmt *cypher.Statement,
	params map[string]any,
) (*ogm.Result, error) {
	res, trace, err := s.template.Run(ctx, operation, d.TypeName, stmt.Cypher(), params)

	if s.handler != nil {
		if serr := s.handler.Summary(trace); serr != nil && err == nil {
			err = serr
		}
	}

	return res, err
}

func (s *session) close(logger *zap.Logger) {
	if err := s.runner.Close(); err != nil {
		logger.Warn("Closing runner failed", zap.Error(err))
	}
}

func countCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Count the stored entities of a type",
		ArgsUsage: "<type>",
		Flags:     connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one type name", 2)
			}

			sess, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.close(a.logger)

			d, err := sess.describe(cmd.Args().First())
			if err != nil {
				return err
			}

			stmt, err := sess.generator.Count(d)
			if err != nil {
				return err
			}

			res, err := sess.run(ctx, "count", d, stmt, nil)
			if err != nil {
				return err
			}

			count, err := countOf(res)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, count)

			return nil
		},
	}
}

func countOf(res *ogm.Result) (int64, error) {
	row, ok := res.Single()
	if !ok {
		return 0, fmt.Errorf("%w: expected one row, got %d", ogm.ErrDataAccess, len(res.Rows))
	}

	v, _ := row.Get(cyphergen.ColumnCount)

	count, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: count is %T", ogm.ErrDataAccess, v)
	}

	return count, nil
}

func findCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Print the stored entities of a type as JSON",
		ArgsUsage: "<type> [id]",
		Flags:     connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if n := cmd.Args().Len(); n < 1 || n > 2 {
				return cli.Exit("expected a type name and an optional id", 2)
			}

			sess, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.close(a.logger)

			d, err := sess.describe(cmd.Args().First())
			if err != nil {
				return err
			}

			var (
				stmt   *cypher.Statement
				params map[string]any
			)

			if cmd.Args().Len() == 2 {
				id, perr := parseID(d, cmd.Args().Get(1))
				if perr != nil {
					return perr
				}

				params = map[string]any{ogm.ParamID: id}
				stmt, err = sess.generator.MatchByID(d)
			} else {
				stmt, err = sess.generator.MatchAll(d)
			}

			if err != nil {
				return err
			}

			res, err := sess.run(ctx, "find", d, stmt, params)
			if err != nil {
				return err
			}

			return writeRows(os.Stdout, res)
		},
	}
}

// parseID converts a command line id to the value stored for d: internal ids
// and integer id properties are int64, everything else is a string.
func parseID(d *schema.NodeDescription, arg string) (any, error) {
	integer := d.ID.IsInternal()
	if t := d.ID.Type; t != nil && t.Kind == ogm.TypeKindPrimitive {
		switch t.Name {
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			integer = true
		}
	}

	if !integer {
		return arg, nil
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q for %s: %w", arg, d.TypeName, err)
	}

	return id, nil
}

// writeRows prints each row as one indented JSON object.
func writeRows(w io.Writer, res *ogm.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	for _, row := range res.Rows {
		if err := enc.Encode(row.Map()); err != nil {
			return err
		}
	}

	return nil
}

func introspectCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "introspect",
		Usage: "Print a schema batch derived from the stored graph",
		Flags: connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			runner, err := openRunner(cmd, cfg)
			if err != nil {
				return err
			}

			defer func() {
				if cerr := runner.Close(); cerr != nil {
					a.logger.Warn("Closing runner failed", zap.Error(cerr))
				}
			}()

			in, ok := runner.(introspector)
			if !ok {
				return ErrIntrospectionUnsupported
			}

			types, err := in.Introspect(ctx)
			if err != nil {
				return err
			}

			a.logger.Debug("Introspected graph", zap.Int("types", len(types)))

			return schema.Write(os.Stdout, types)
		},
	}
}
