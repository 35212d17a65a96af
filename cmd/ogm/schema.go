package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/ogm/cypher"
	"github.com/rlch/ogm/cyphergen"
	"github.com/rlch/ogm/schema"
)

// ErrUnknownType is returned when a command names a type missing from the schema.
var ErrUnknownType = errors.New("unknown type")

func schemaCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Show the resolved schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "print the schema as a YAML batch",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s, files, err := loadSchema(cmd, cfg)
			if err != nil {
				return err
			}

			a.logger.Debug("Loaded schema", zap.Strings("files", files))

			if cmd.Bool("yaml") {
				return schema.Write(os.Stdout, s.Descriptors())
			}

			st := stylesFor(os.Stdout)

			for _, f := range files {
				fmt.Fprintln(os.Stdout, st.Dim("# "+relPath(f)))
			}

			writeSchema(os.Stdout, st, s)

			return nil
		},
	}
}

// writeSchema prints one block per type: its labels, id, properties and
// relationships.
func writeSchema(w io.Writer, st styles, s *schema.Schema) {
	for _, d := range s.Descriptions() {
		fmt.Fprintf(w, "\n%s %s", st.Title(d.TypeName), st.Label(":"+strings.Join(d.StaticLabels(), ":")))

		if d.Parent != nil {
			fmt.Fprintf(w, " %s %s", st.Keyword("extends"), d.Parent.TypeName)
		}

		fmt.Fprintln(w)

		if d.ID != nil {
			id := d.ID.Field + " " + st.Keyword(string(d.ID.Strategy))
			if d.ID.Property != "" {
				id += " " + d.ID.Property
			}

			if d.ID.Generator != "" {
				id += " " + st.Dim("("+d.ID.Generator+")")
			}

			fmt.Fprintf(w, "  %s %s\n", st.Keyword("id"), id)
		}

		for _, p := range d.Properties {
			line := fmt.Sprintf("  %s %s %s", p.Field, p.Name, st.Dim(p.Type.String()))
			if d.Version != nil && d.Version.Field == p.Field {
				line += " " + st.Keyword("version")
			}

			fmt.Fprintln(w, line)
		}

		if d.DynamicLabelsField != "" {
			fmt.Fprintf(w, "  %s %s\n", d.DynamicLabelsField, st.Keyword("labels"))
		}

		for _, rel := range d.Relationships {
			line := fmt.Sprintf("  %s %s %s", rel.Field, st.Relation(arrow(rel)), rel.Target.TypeName)
			if rel.Many {
				line += " " + st.Dim("many")
			}

			if rel.HasProperties() {
				line += " " + st.Dim("via "+rel.Properties.TypeName)
			}

			fmt.Fprintln(w, line)
		}
	}
}

// arrow renders the relationship pattern as seen from its source.
func arrow(rel *schema.RelationshipDescription) string {
	typ := ":" + rel.Type
	if rel.Dynamic {
		typ = "*"
	}

	switch rel.Direction {
	case schema.Incoming:
		return "<-[" + typ + "]-"
	case schema.Undirected:
		return "-[" + typ + "]-"
	default:
		return "-[" + typ + "]->"
	}
}

func cypherCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "cypher",
		Usage:     "Preview the statements generated for a type",
		ArgsUsage: "<type>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one type name", 2)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s, _, err := loadSchema(cmd, cfg)
			if err != nil {
				return err
			}

			d, ok := s.Describe(cmd.Args().First())
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownType, cmd.Args().First())
			}

			g, err := cyphergen.New(s, cfg.CacheSize())
			if err != nil {
				return err
			}

			a.logger.Debug("Generating statements", zap.String("type", d.TypeName))

			return writeStatements(os.Stdout, stylesFor(os.Stdout), g, d)
		},
	}
}

// writeStatements prints the node statements generated for d.
func writeStatements(w io.Writer, st styles, g *cyphergen.Generator, d *schema.NodeDescription) error {
	previews := []struct {
		name  string
		build func() (*cypher.Statement, error)
	}{
		{"match-all", func() (*cypher.Statement, error) { return g.MatchAll(d) }},
		{"match-by-id", func() (*cypher.Statement, error) { return g.MatchByID(d) }},
		{"count", func() (*cypher.Statement, error) { return g.Count(d) }},
		{"exists-by-id", func() (*cypher.Statement, error) { return g.ExistsByID(d) }},
		{"create-node", func() (*cypher.Statement, error) { return g.CreateNode(d, nil) }},
		{"update-node", func() (*cypher.Statement, error) { return g.UpdateNode(d, nil, nil) }},
		{"merge-node", func() (*cypher.Statement, error) { return g.MergeNode(d, nil, nil) }},
		{"delete-by-id", func() (*cypher.Statement, error) { return g.DeleteByID(d, true) }},
		{"delete-all", func() (*cypher.Statement, error) { return g.DeleteAll(d) }},
	}

	for _, p := range previews {
		stmt, err := p.build()
		if errors.Is(err, cyphergen.ErrInternalMerge) {
			continue
		}

		if err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}

		fmt.Fprintf(w, "%s\n%s\n\n", st.Keyword("// "+p.name), stmt.Cypher())
	}

	return nil
}
