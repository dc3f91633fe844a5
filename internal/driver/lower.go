package driver

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"corogen/internal/cir"
	"corogen/internal/cirgen"
	"corogen/internal/config"
	"corogen/internal/diag"
	"corogen/internal/observ"
	"corogen/internal/sema"
	"corogen/internal/source"
	"corogen/internal/syntax"
	"corogen/internal/trace"
)

// Options configure one run of the pipeline.
type Options struct {
	Config         config.Config
	MaxDiagnostics int
	// Cache is consulted before parsing and filled after a clean lowering.
	// A nil cache disables caching.
	Cache *DiskCache
}

// Result is the outcome of lowering one translation unit.
type Result struct {
	Path    string
	FileSet *source.FileSet
	FileID  source.FileID
	// Module is nil when the result came from the cache or the unit had errors.
	Module *cir.Module
	Text   string
	Diags  *diag.Bag
	Stats  []FuncStat
	Cached bool
	Digest Digest
	// Timings holds the passes that ran; a cache hit runs none.
	Timings observ.Report
}

// HasErrors reports whether the front end rejected the unit.
func (r *Result) HasErrors() bool {
	return r != nil && r.Diags != nil && r.Diags.HasErrors()
}

// LowerFile reads path and runs the pipeline on it.
func LowerFile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return run(ctx, fs, id, opts)
}

// LowerSource runs the pipeline on src registered under name.
func LowerSource(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, src)
	return run(ctx, fs, id, opts)
}

// run parses, checks and lowers one file. Front-end errors end up in
// Result.Diags with a nil error; lowering and validation failures are
// returned as errors and produce no module.
func run(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	file := fs.Get(id)
	res := &Result{
		Path:    file.Path,
		FileSet: fs,
		FileID:  id,
		Diags:   diag.NewBag(opts.MaxDiagnostics),
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return res, fmt.Errorf("invalid configuration: %w", err)
	}

	tracer := trace.FromContext(ctx)
	unit := trace.Begin(tracer, trace.ScopeDriver, "unit:"+file.Path, trace.CurrentSpan(ctx))
	defer unit.End("")
	ctx = trace.WithSpan(ctx, unit.ID())
	timer := observ.NewTimer()
	defer func() { res.Timings = timer.Report() }()

	digest, err := ComputeDigest(file.Content, cfg)
	if err != nil {
		return res, fmt.Errorf("hash %s: %w", file.Path, err)
	}
	res.Digest = digest
	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(digest, &payload)
		if err != nil {
			Logger().Warn("cache read failed", zap.String("path", file.Path), zap.Error(err))
		} else if hit {
			res.Text = payload.Text
			res.Stats = payload.Funcs
			res.Cached = true
			Logger().Debug("cache hit", zap.String("path", file.Path), zap.String("digest", digest.String()))
			return res, nil
		}
	}

	rep := diag.BagReporter{Bag: res.Diags}

	passes := &passRecorder{tracer: tracer, parent: unit.ID(), timer: timer}

	end, _ := passes.begin("parse")
	tree := syntax.ParseFile(fs, id, rep)
	end("")
	if res.Diags.HasErrors() {
		res.Diags.Sort()
		return res, nil
	}

	end, _ = passes.begin("sema")
	checked := sema.Check(tree, sema.Options{Reporter: rep})
	end("")
	if res.Diags.HasErrors() {
		res.Diags.Sort()
		return res, nil
	}

	mod := cir.NewModule(filepath.Base(file.Path))
	gen := cirgen.New(mod, cirgen.Options{
		NewAlign:  cfg.Target.NewAlign,
		CharWidth: cfg.Target.CharWidth,
		DebugInfo: cfg.Lower.DebugInfo,
	})
	defs := checked.Definitions()
	end, spanID := passes.begin("lower")
	stats, err := lowerFunctions(trace.WithSpan(ctx, spanID), gen, defs, cfg.Lower.EffectiveJobs())
	if err != nil {
		end(err.Error())
		return res, err
	}
	end(fmt.Sprintf("%d funcs", len(defs)))

	if cfg.Lower.Validate {
		end, _ = passes.begin("validate")
		if err := cir.Validate(mod); err != nil {
			end(err.Error())
			return res, fmt.Errorf("%s: invalid module: %w", file.Path, err)
		}
		end("")
	}

	res.Module = mod
	res.Text = cir.String(mod)
	res.Stats = make([]FuncStat, len(stats))
	for i, st := range stats {
		res.Stats[i] = FuncStat(st)
	}

	if opts.Cache != nil {
		payload := &DiskPayload{
			Schema: diskCacheSchemaVersion,
			Digest: digest,
			Text:   res.Text,
			Funcs:  res.Stats,
		}
		if err := opts.Cache.Put(digest, payload); err != nil {
			Logger().Warn("cache write failed", zap.String("path", file.Path), zap.Error(err))
		}
	}

	Logger().Info("unit lowered",
		zap.String("path", file.Path),
		zap.Int("funcs", len(res.Stats)),
		zap.Float64("total_ms", timer.Report().TotalMS),
	)
	return res, nil
}

// passRecorder pairs the trace span and the timer phase of each pass.
type passRecorder struct {
	tracer trace.Tracer
	parent uint64
	timer  *observ.Timer
}

// begin starts the pass name. The returned func ends it with a note; the
// span ID parents per-function spans.
func (p *passRecorder) begin(name string) (func(note string), uint64) {
	span := trace.Begin(p.tracer, trace.ScopePass, name, p.parent)
	idx := p.timer.Begin(name)
	return func(note string) {
		span.End(note)
		p.timer.End(idx, note)
	}, span.ID()
}
