package schema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a registration batch.
type File struct {
	Types []TypeDescriptor `yaml:"types"`
}

// Decode reads a registration batch from YAML without validating it.
func Decode(r io.Reader) ([]TypeDescriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("decoding schema: %w", err)
	}

	return f.Types, nil
}

// Load reads and validates a schema from YAML.
func Load(r io.Reader) (*Schema, error) {
	batch, err := Decode(r)
	if err != nil {
		return nil, err
	}

	return New(batch)
}

// LoadFile reads and validates a schema from a YAML file.
func LoadFile(path string) (*Schema, error) {
	return LoadFiles(path)
}

// LoadFiles concatenates the batches of several YAML files, in order, and
// validates them as one schema. Types may refer to types declared in other
// files.
func LoadFiles(paths ...string) (*Schema, error) {
	var batch []TypeDescriptor

	for _, path := range paths {
		part, err := decodeFile(path)
		if err != nil {
			return nil, err
		}

		batch = append(batch, part...)
	}

	return New(batch)
}

func decodeFile(path string) ([]TypeDescriptor, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	batch, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return batch, nil
}

// Write writes a registration batch as YAML.
func Write(w io.Writer, batch []TypeDescriptor) (err error) {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	defer func() {
		if cerr := encoder.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return encoder.Encode(File{Types: batch})
}
