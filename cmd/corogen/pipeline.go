package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"corogen/internal/config"
	"corogen/internal/driver"
)

// loadConfig resolves corogen.toml for input and applies flag overrides.
func loadConfig(cmd *cobra.Command, input string) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	explicit, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, _, err := config.Discover(explicit, filepath.Dir(input))
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
		}
		if jobs < 0 {
			return config.Config{}, fmt.Errorf("--jobs must not be negative, got %d", jobs)
		}
		cfg.Lower.Jobs = jobs
	}
	return cfg, nil
}

// runPipeline lowers input with tracing, configuration and the cache set
// up from the command line. Diagnostics are printed to stderr; when the
// front end rejected the file errReported is returned.
func runPipeline(cmd *cobra.Command, input string) (res *driver.Result, err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return nil, err
	}
	defer func() { cleanup(err) }()

	cfg, err := loadConfig(cmd, input)
	if err != nil {
		return nil, err
	}
	flags := cmd.Root().PersistentFlags()
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	opts := driver.Options{Config: cfg, MaxDiagnostics: maxDiagnostics}
	if cfg.Cache.Enabled && !noCache {
		cache, err := driver.OpenDiskCache(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		opts.Cache = cache
	}

	res, err = driver.LowerFile(cmd.Context(), input, opts)
	if res != nil && res.Diags != nil && res.Diags.Len() > 0 {
		printDiagnostics(cmd.ErrOrStderr(), res)
	}
	if timings && res != nil {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timings.Summary())
	}
	if err != nil {
		return nil, err
	}
	if res.HasErrors() {
		return nil, errReported
	}
	return res, nil
}
