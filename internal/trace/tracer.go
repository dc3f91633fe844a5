package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tracer receives pass spans and point events. Implementations are
// shared by the per-function lowering goroutines and must lock.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Mode selects where events go. The names double as --trace-mode values.
type Mode string

const (
	ModeStream Mode = "stream" // write each event as it happens
	ModeRing   Mode = "ring"   // keep the last DefaultHistory events for a crash dump
	ModeBoth   Mode = "both"
)

// DefaultHistory is the ring size used when Config.History is unset.
const DefaultHistory = 4096

// ParseMode validates a --trace-mode value; empty means stream.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(s))
	switch m {
	case "":
		return ModeStream, nil
	case ModeStream, ModeRing, ModeBoth:
		return m, nil
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

func (m Mode) streams() bool { return m == "" || m == ModeStream || m == ModeBoth }
func (m Mode) keeps() bool   { return m == ModeRing || m == ModeBoth }

// Config describes the tracer behind corogen's --trace* flags.
type Config struct {
	Level  Level
	Mode   Mode
	Format Format
	// Sink overrides Path for the stream half; tests use a buffer.
	Sink io.Writer
	// Path is the --trace value: empty or "-" is stderr, else a file
	// that is created or truncated.
	Path    string
	History int
}

// New assembles the tracer for cfg. LevelOff always yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if !cfg.Mode.streams() && !cfg.Mode.keeps() {
		return nil, fmt.Errorf("unknown storage mode: %q", cfg.Mode)
	}

	var sinks []Tracer
	if cfg.Mode.streams() {
		w, err := cfg.sink()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, cfg.format()))
	}
	if cfg.Mode.keeps() {
		sinks = append(sinks, NewRingTracer(cfg.History, cfg.Level))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

// format resolves FormatAuto: .json and .ndjson files get NDJSON.
func (cfg Config) format() Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".json", ".ndjson":
		return FormatNDJSON
	}
	return FormatText
}

func (cfg Config) sink() (io.Writer, error) {
	if cfg.Sink != nil {
		return cfg.Sink, nil
	}
	if cfg.Path == "" || cfg.Path == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
