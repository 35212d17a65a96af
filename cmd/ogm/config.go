package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
	"github.com/urfave/cli/v3"

	"github.com/rlch/ogm"
	"github.com/rlch/ogm/schema"
)

// CLI errors.
var (
	ErrNoSchema        = errors.New("no schema files found (use --schema or schema in .ogm.yaml)")
	ErrNoConnectionURI = errors.New("no connection URI specified (use --uri or .ogm.yaml)")
)

// schemaSuffixes are the file name endings picked up when walking a schema
// directory.
var schemaSuffixes = []string{".schema.yaml", ".schema.yml"}

// loadConfig loads the config named by --config, or the nearest .ogm.yaml.
// A missing config yields an empty one.
func loadConfig(cmd *cli.Command) (*ogm.Config, error) {
	if path := cmd.String("config"); path != "" {
		return ogm.LoadConfigFile(path)
	}

	cfg, err := ogm.LoadConfig(".")
	if errors.Is(err, ogm.ErrConfigNotFound) {
		return &ogm.Config{}, nil
	}

	return cfg, err
}

// loadSchema loads the schema files given by --schema, or listed in the
// config, and returns the files read. Directories are walked for
// *.schema.yaml files.
func loadSchema(cmd *cli.Command, cfg *ogm.Config) (*schema.Schema, []string, error) {
	paths := cmd.StringSlice("schema")
	if len(paths) == 0 {
		paths = cfg.SchemaPaths()
	}

	files, err := schemaFiles(paths)
	if err != nil {
		return nil, nil, err
	}

	if len(files) == 0 {
		return nil, nil, ErrNoSchema
	}

	s, err := schema.LoadFiles(files...)
	if err != nil {
		return nil, nil, err
	}

	return s, files, nil
}

// schemaFiles expands paths into schema files, sorted within each directory.
func schemaFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)

			continue
		}

		var found []string

		var mu sync.Mutex

		err = walkDir(path, func(location string) {
			mu.Lock()
			defer mu.Unlock()

			found = append(found, location)
		})
		if err != nil {
			return nil, err
		}

		slices.Sort(found)
		files = append(files, found...)
	}

	return files, nil
}

// walkDir walks a directory for schema files, respecting .gitignore.
func walkDir(root string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = []string{"yaml", "yml"}

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e

		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			if isSchemaFile(f.Filename) {
				callback(f.Location)
			}
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()

	return walkErr
}

func isSchemaFile(name string) bool {
	for _, suffix := range schemaSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

// openRunner creates the configured statement runner. Connection flags
// override the config.
func openRunner(cmd *cli.Command, cfg *ogm.Config) (ogm.StatementRunner, error) { //nolint:ireturn
	neo4jCfg := &ogm.Neo4jConfig{}
	if cfg.Neo4j != nil {
		*neo4jCfg = *cfg.Neo4j
	}

	if uri := cmd.String("uri"); uri != "" {
		neo4jCfg.URI = uri
	}

	if username := cmd.String("username"); username != "" {
		neo4jCfg.Username = username
	}

	if password := cmd.String("password"); password != "" {
		neo4jCfg.Password = password
	}

	if neo4jCfg.URI == "" {
		return nil, ErrNoConnectionURI
	}

	runner, err := ogm.NewRunner(ogm.RunnerNeo4j, neo4jCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return runner, nil
}

// relPath shortens path relative to the working directory for display.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return rel
}
