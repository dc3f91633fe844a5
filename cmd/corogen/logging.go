package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"corogen/internal/cirgen"
	"corogen/internal/driver"
)

// newLogger builds the logger for --log-level. "debug" gets the
// human-readable development encoder, everything else JSON on stderr.
func newLogger(level string) (*zap.Logger, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" || level == "off" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q (expected off|debug|info|warn|error)", level)
	}
	var cfg zap.Config
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func setupLogging(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logger, err := newLogger(value)
	if err != nil {
		return err
	}
	cirgen.SetLogger(logger.Named("cirgen"))
	driver.SetLogger(logger.Named("driver"))
	return nil
}
