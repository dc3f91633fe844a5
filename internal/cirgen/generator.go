package cirgen

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
	"corogen/internal/trace"
)

// Options are the target and emission settings lowering depends on.
type Options struct {
	// NewAlign is the alignment guaranteed by operator new, in bits.
	NewAlign int
	// CharWidth is the width of char, in bits.
	CharWidth int
	// DebugInfo requests debug metadata for coroutine parameters.
	DebugInfo bool
}

// DefaultOptions matches a 64-bit target with 16-byte operator new.
func DefaultOptions() Options {
	return Options{NewAlign: 128, CharWidth: 8}
}

// Generator lowers functions into one module. It is safe for concurrent use
// as long as every goroutine lowers a different function.
type Generator struct {
	mod  *cir.Module
	opts Options
}

// New creates a generator emitting into mod.
func New(mod *cir.Module, opts Options) *Generator {
	if opts.CharWidth <= 0 {
		opts.CharWidth = 8
	}
	if opts.NewAlign <= 0 {
		opts.NewAlign = 128
	}
	return &Generator{mod: mod, opts: opts}
}

// Module returns the module being filled.
func (g *Generator) Module() *cir.Module { return g.mod }

// FuncStats summarizes the lowering of one function.
type FuncStats struct {
	Name         string
	Coroutine    bool
	Coreturns    int
	Awaits       int
	FinalSuspend bool
}

// EmitFunction lowers the definition decl. order fixes its position in the
// printed module. Internal invariant violations raised during lowering are
// returned as *cirerr.Error; on any error the definition is discarded.
func (g *Generator) EmitFunction(ctx context.Context, decl *ast.FuncDecl, order int) (fn *cir.Func, stats FuncStats, err error) {
	name := decl.QualifiedName()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFunc, "lower:"+name, trace.CurrentSpan(ctx))
	defer func() {
		if err != nil {
			span.End(err.Error())
			return
		}
		span.WithExtra("coroutine", strconv.FormatBool(stats.Coroutine)).
			WithExtra("awaits", strconv.Itoa(stats.Awaits)).
			End("")
	}()

	if decl.Body == nil {
		return nil, stats, cirerr.Lowering("func", fmt.Errorf("%s has no body", name))
	}

	def, err := g.mod.Define(name, funcType(decl), order)
	if err != nil {
		return nil, stats, cirerr.Lowering("func", err)
	}

	f := newFunction(ctx, g, decl, def, span.ID())
	defer func() {
		if r := recover(); r != nil {
			cerr, ok := r.(*cirerr.Error)
			if !ok {
				panic(r)
			}
			err = cerr
		}
		if err != nil {
			if cerr, ok := cirerr.AsError(err); ok && cerr.Func == "" {
				cerr.Func = name
			}
			g.mod.Discard(def)
			Logger().Debug("function lowering failed", zap.String("func", name), zap.Error(err))
			fn, stats = nil, FuncStats{Name: name}
		}
	}()

	if err = f.emitBody(); err != nil {
		return nil, stats, err
	}

	stats = f.stats()
	Logger().Debug("function lowered",
		zap.String("func", name),
		zap.Bool("coroutine", stats.Coroutine),
		zap.Int("coreturns", stats.Coreturns),
		zap.Int("awaits", stats.Awaits),
		zap.Bool("final_suspend", stats.FinalSuspend),
	)
	return def, stats, nil
}
