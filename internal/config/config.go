// Package config loads the run configuration: a YAML file decoded with
// strict field checking, then validated against an embedded CUE schema so
// value constraints live in one declarative place.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the validated run configuration.
type Config struct {
	// Engine is the engine executable name or path.
	Engine string `yaml:"engine"`

	// Timeout bounds each engine invocation, Go duration syntax.
	Timeout string `yaml:"timeout"`

	// Parallelism bounds concurrent engine invocations.
	Parallelism int `yaml:"parallelism"`

	// RequireApproval skips tests without explicit approval.
	RequireApproval bool `yaml:"require_approval"`

	// GraphComparator is an optional external graph comparison tool.
	GraphComparator string `yaml:"graph_comparator"`

	// WorkDir is the scratch root for per-test working directories.
	WorkDir string `yaml:"work_dir"`

	// Database is the run-history SQLite path; empty disables persistence.
	Database string `yaml:"database"`

	// FailFast cancels remaining tests after the first failure.
	FailFast bool `yaml:"fail_fast"`
}

// Default is the configuration used when no file is given: engine on PATH,
// sequential, five-minute bound per invocation.
func Default() Config {
	return Config{
		Engine:      "roqet",
		Timeout:     "5m",
		Parallelism: 1,
	}
}

// Load reads, decodes, and validates the configuration at path. Unknown
// YAML fields and schema violations are both errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration content.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TimeoutDuration parses the timeout field; empty means no bound.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: bad timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: negative timeout %q", c.Timeout)
	}
	return d, nil
}

// validate unifies the configuration with the embedded schema and reports
// any constraint violation.
func validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("config schema: #Config not found")
	}

	value := ctx.Encode(asSchemaFields(cfg))
	if err := value.Err(); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// asSchemaFields renders the struct with the schema's field names, leaving
// out empties so optional fields stay optional.
func asSchemaFields(cfg Config) map[string]any {
	m := map[string]any{
		"engine": cfg.Engine,
	}
	if cfg.Timeout != "" {
		m["timeout"] = cfg.Timeout
	}
	if cfg.Parallelism != 0 {
		m["parallelism"] = cfg.Parallelism
	}
	if cfg.RequireApproval {
		m["require_approval"] = true
	}
	if cfg.GraphComparator != "" {
		m["graph_comparator"] = cfg.GraphComparator
	}
	if cfg.WorkDir != "" {
		m["work_dir"] = cfg.WorkDir
	}
	if cfg.Database != "" {
		m["database"] = cfg.Database
	}
	if cfg.FailFast {
		m["fail_fast"] = true
	}
	return m
}
