// Package config loads jackparse settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jreyes33/jackparse/format"
	"github.com/jreyes33/jackparse/jack/grammar"
	"github.com/jreyes33/jackparse/jack/parser"
)

var (
	ErrNotFound          = errors.New("config file not found")
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	ErrInvalid           = errors.New("invalid configuration")
)

// DefaultFiles are looked up, in order, when no file is named explicitly.
var DefaultFiles = []string{"jackparse.toml", "jackparse.yaml", "jackparse.yml"}

const DefaultTimeout = 10 * time.Second

type Config struct {
	Parse  ParseConfig  `toml:"parse" yaml:"parse"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Batch  BatchConfig  `toml:"batch" yaml:"batch"`
}

type ParseConfig struct {
	Grammar     string   `toml:"grammar" yaml:"grammar"`
	Comments    bool     `toml:"comments" yaml:"comments"`
	MaxDepth    int      `toml:"max_depth" yaml:"max_depth"`
	SyncStop    []string `toml:"sync_stop" yaml:"sync_stop"`
	SyncConsume []string `toml:"sync_consume" yaml:"sync_consume"`
}

type OutputConfig struct {
	Format    string `toml:"format" yaml:"format"`
	Positions bool   `toml:"positions" yaml:"positions"`
	Color     string `toml:"color" yaml:"color"`
}

type BatchConfig struct {
	Workers int      `toml:"workers" yaml:"workers"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Duration wraps time.Duration so files can say "500ms" or "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path, choosing the decoder by extension. Keys the
// configuration does not know are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Discover returns the first of DefaultFiles present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Resolve loads the explicit path if given, else a discovered file in dir,
// else the defaults. It also returns the path it loaded, or "".
func Resolve(explicit, dir string) (*Config, string, error) {
	path := explicit
	if path == "" {
		var ok bool
		if path, ok = Discover(dir); !ok {
			return Default(), "", nil
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func (c *Config) applyDefaults() {
	if c.Parse.Grammar == "" {
		c.Parse.Grammar = "jack"
	}
	if c.Parse.MaxDepth == 0 {
		c.Parse.MaxDepth = parser.DefaultMaxDepth
	}
	if c.Output.Format == "" {
		c.Output.Format = "sexp"
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = runtime.NumCPU()
	}
	if c.Batch.Timeout.Duration == 0 {
		c.Batch.Timeout.Duration = DefaultTimeout
	}
}

// Validate reports every setting that names something unknown or is out
// of range.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(grammar.Names(), c.Parse.Grammar) {
		errs = append(errs, fmt.Errorf("%w: parse.grammar %q (want one of %v)", ErrInvalid, c.Parse.Grammar, grammar.Names()))
	}
	if c.Parse.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: parse.max_depth must not be negative", ErrInvalid))
	}
	if !slices.Contains(format.Names(), c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w: output.format %q (want one of %v)", ErrInvalid, c.Output.Format, format.Names()))
	}
	if _, err := format.ParseColorMode(c.Output.Color); err != nil {
		errs = append(errs, fmt.Errorf("%w: output.color: %w", ErrInvalid, err))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: batch.workers must not be negative", ErrInvalid))
	}
	if c.Batch.Timeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("%w: batch.timeout must not be negative", ErrInvalid))
	}
	return errors.Join(errs...)
}

// ParserOptions turns the parse settings into parser options.
func (c *Config) ParserOptions() []parser.Option {
	opts := []parser.Option{parser.WithMaxDepth(c.Parse.MaxDepth)}
	if c.Parse.Comments {
		opts = append(opts, parser.WithComments())
	}
	if len(c.Parse.SyncStop) > 0 || len(c.Parse.SyncConsume) > 0 {
		opts = append(opts, parser.WithSyncSet(c.Parse.SyncStop, c.Parse.SyncConsume))
	}
	return opts
}

// Table returns the grammar table the configuration names.
func (c *Config) Table() (*grammar.Table, error) {
	return grammar.Lookup(c.Parse.Grammar)
}
