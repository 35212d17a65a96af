// Command ogm inspects object-graph schemas, previews the statements
// generated for them and runs simple reads against a live database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/rlch/ogm/databases/neo4j"
)

func main() {
	a := &app{logger: zap.NewNop()}

	err := a.command().Run(context.Background(), os.Args)

	_ = a.logger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "ogm: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by all commands.
type app struct {
	logger *zap.Logger
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "ogm",
		Usage: "Inspect schemas and query mapped entities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (default: nearest .ogm.yaml)",
			},
			&cli.StringSliceFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "schema files or directories (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			schemaCommand(a),
			cypherCommand(a),
			countCommand(a),
			findCommand(a),
			introspectCommand(a),
		},
	}
}

// setup builds the logger. Logs go to stderr; stdout is for results.
func (a *app) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if cmd.Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return ctx, fmt.Errorf("building logger: %w", err)
	}

	a.logger = logger

	return ctx, nil
}

// connectionFlags are shared by commands talking to a database.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "database connection URI",
			Sources: cli.EnvVars("OGM_URI"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "database username",
			Sources: cli.EnvVars("OGM_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "database password",
			Sources: cli.EnvVars("OGM_PASS"),
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print statement events as JSON",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "print every statement",
		},
	}
}
