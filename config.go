package ogm

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultStatementCacheSize is the statement cache size used when the config
// does not set one.
const DefaultStatementCacheSize = 256

// Config represents the .ogm.yaml configuration file.
type Config struct {
	// Neo4j holds the connection settings of the statement runner.
	Neo4j *Neo4jConfig `yaml:"neo4j,omitempty"`

	// Schema lists schema files or directories, relative to the config file.
	Schema []string `yaml:"schema,omitempty"`

	// StatementCache is the number of generated statements kept per generator.
	StatementCache int `yaml:"statement_cache,omitempty"`

	// Dir is the directory of the loaded config file.
	Dir string `yaml:"-"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// RunnerName returns the configured runner name, or empty if none.
func (c *Config) RunnerName() string {
	if c.Neo4j != nil {
		return RunnerNeo4j
	}

	return ""
}

// RunnerConfig returns the runner-specific config block.
func (c *Config) RunnerConfig() any {
	if c.Neo4j != nil {
		return c.Neo4j
	}

	return nil
}

// CacheSize returns the statement cache size, falling back to the default.
func (c *Config) CacheSize() int {
	if c.StatementCache > 0 {
		return c.StatementCache
	}

	return DefaultStatementCacheSize
}

// SchemaPaths returns the schema entries resolved against the config directory.
func (c *Config) SchemaPaths() []string {
	paths := make([]string, len(c.Schema))
	for i, p := range c.Schema {
		if filepath.IsAbs(p) || c.Dir == "" {
			paths[i] = p

			continue
		}

		paths[i] = filepath.Join(c.Dir, p)
	}

	return paths
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".ogm.yaml", ".ogm.yml", "ogm.yaml", "ogm.yml"}

// LoadConfig finds and loads the nearest .ogm.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.Dir = filepath.Dir(path)

	return &cfg, nil
}
