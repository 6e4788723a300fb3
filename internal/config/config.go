// Package config loads the optional sortenv configuration file.
//
// The file is HCL. The process environment is available to expressions as
// the env object, e.g. `jobs = env.SORTENV_JOBS`.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".sortenv.hcl"

var (
	DefaultPatterns = []string{".env", ".env.*", "*.env"}
	DefaultExclude  = []string{".git", "node_modules", "vendor"}
)

// Config holds the settings a config file may provide. Pointer fields are
// nil when the attribute is absent so callers can tell unset from false.
type Config struct {
	Overwrite *bool    `hcl:"overwrite,optional"`
	Recursive *bool    `hcl:"recursive,optional"`
	Jobs      *int     `hcl:"jobs,optional"`
	Patterns  []string `hcl:"patterns,optional"`
	Exclude   []string `hcl:"exclude,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Patterns: append([]string(nil), DefaultPatterns...),
		Exclude:  append([]string(nil), DefaultExclude...),
	}
}

// Load reads the config file at path. An empty path means DefaultFile, which
// is allowed to be missing; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
	}

	cfg := &Config{}
	if diags := gohcl.DecodeBody(file.Body, evalContext(), cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, diags)
	}

	if cfg.Patterns == nil {
		cfg.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if cfg.Exclude == nil {
		cfg.Exclude = append([]string(nil), DefaultExclude...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that decode fine but make no sense.
func (c *Config) Validate() error {
	if c.Jobs != nil && *c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", *c.Jobs)
	}
	for _, p := range c.Patterns {
		if strings.TrimSpace(p) == "" {
			return errors.New("patterns must not contain empty entries")
		}
	}
	return nil
}

// JobLimit returns the configured worker count, falling back to the number of CPUs.
func (c *Config) JobLimit() int {
	if c.Jobs != nil && *c.Jobs > 0 {
		return *c.Jobs
	}
	return runtime.NumCPU()
}

func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
