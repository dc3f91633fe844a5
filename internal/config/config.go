// Package config loads corogen.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file searched for.
const FileName = "corogen.toml"

// Config is the decoded corogen.toml.
type Config struct {
	Target TargetConfig `toml:"target"`
	Lower  LowerConfig  `toml:"lower"`
	Cache  CacheConfig  `toml:"cache"`
}

// TargetConfig describes the properties of the target that coroutine lowering depends on.
type TargetConfig struct {
	// NewAlign is the alignment guaranteed by operator new, in bits.
	NewAlign int `toml:"new_align"`
	// CharWidth is the width of char, in bits.
	CharWidth int `toml:"char_width"`
}

// LowerConfig controls the lowering pipeline.
type LowerConfig struct {
	Jobs      int  `toml:"jobs"`
	DebugInfo bool `toml:"debug_info"`
	Validate  bool `toml:"validate"`
}

// CacheConfig controls the on-disk IR cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no corogen.toml exists.
func Default() Config {
	return Config{
		Target: TargetConfig{NewAlign: 128, CharWidth: 8},
		Lower:  LowerConfig{Validate: true},
	}
}

// NewAlignBytes returns the operator new alignment in bytes.
func (c TargetConfig) NewAlignBytes() int {
	return c.NewAlign / c.CharWidth
}

// EffectiveJobs resolves Jobs=0 to GOMAXPROCS.
func (c LowerConfig) EffectiveJobs() int {
	if c.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Jobs
}

// Validate checks the configuration for values lowering cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.Target.CharWidth <= 0 {
		errs = append(errs, fmt.Errorf("[target].char_width must be positive, got %d", c.Target.CharWidth))
	}
	if c.Target.NewAlign <= 0 {
		errs = append(errs, fmt.Errorf("[target].new_align must be positive, got %d", c.Target.NewAlign))
	}
	if c.Target.CharWidth > 0 && c.Target.NewAlign%c.Target.CharWidth != 0 {
		errs = append(errs, fmt.Errorf("[target].new_align (%d) must be a multiple of char_width (%d)", c.Target.NewAlign, c.Target.CharWidth))
	}
	if c.Lower.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[lower].jobs must not be negative, got %d", c.Lower.Jobs))
	}
	return errors.Join(errs...)
}

// Load decodes path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from startDir looking for corogen.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the explicit path if given, otherwise the nearest corogen.toml
// above startDir, otherwise Default.
func Discover(explicit, startDir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}
