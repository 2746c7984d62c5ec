// Package config handles cao-lang.toml project configuration: the
// recursion limit, VM stack/step bounds, and source layout a host
// embedding cao-lang wants to load from a file rather than hard-code.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/chazu/caolang/compiler"
	"github.com/chazu/caolang/pkg/bytecode"
)

// Config represents a cao-lang.toml project configuration.
type Config struct {
	Project  Project  `toml:"project"`
	Source   Source   `toml:"source"`
	Compile  Compile  `toml:"compile"`
	VM       VM       `toml:"vm"`

	// Dir is the directory containing the cao-lang.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures where module definitions live relative to Dir.
type Source struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// Compile mirrors compiler.CompileOptions as TOML-loadable fields.
type Compile struct {
	RecursionLimit int `toml:"recursion-limit"`
}

// VM mirrors bytecode.VMOptions as TOML-loadable fields. Zero means
// "use the VM's built-in default" for every field except StepBudget,
// where zero means unbounded, matching bytecode.VMOptions itself.
type VM struct {
	ValueStackCapacity  int `toml:"value-stack-capacity"`
	CallStackCapacity   int `toml:"call-stack-capacity"`
	ObjectArenaCapacity int `toml:"object-arena-capacity"`
	StepBudget          int `toml:"step-budget"`
}

// Load parses a cao-lang.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "cao-lang.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", dir)
	}

	if len(c.Source.Dirs) == 0 {
		c.Source.Dirs = []string{"src"}
	}

	return &c, nil
}

// FindAndLoad walks up from startDir looking for a cao-lang.toml file,
// returning nil (not an error) if none is found by the filesystem root.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "cao-lang.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (c *Config) SourceDirPaths() []string {
	paths := make([]string, len(c.Source.Dirs))
	for i, d := range c.Source.Dirs {
		paths[i] = filepath.Join(c.Dir, d)
	}
	return paths
}

// CompileOptions converts the loaded Compile section to
// compiler.CompileOptions, falling back to the compiler's defaults for
// any field left at zero.
func (c *Config) CompileOptions() compiler.CompileOptions {
	opts := compiler.DefaultCompileOptions()
	if c.Compile.RecursionLimit > 0 {
		opts.RecursionLimit = c.Compile.RecursionLimit
	}
	return opts
}

// VMOptions converts the loaded VM section to bytecode.VMOptions,
// falling back to the VM's defaults for ValueStackCapacity and
// CallStackCapacity when left at zero. ObjectArenaCapacity and
// StepBudget pass through unchanged: zero is their own meaningful
// "unbounded" default.
func (c *Config) VMOptions() bytecode.VMOptions {
	opts := bytecode.DefaultVMOptions()
	if c.VM.ValueStackCapacity > 0 {
		opts.ValueStackCapacity = c.VM.ValueStackCapacity
	}
	if c.VM.CallStackCapacity > 0 {
		opts.CallStackCapacity = c.VM.CallStackCapacity
	}
	opts.ObjectArenaCapacity = c.VM.ObjectArenaCapacity
	opts.StepBudget = c.VM.StepBudget
	return opts
}
