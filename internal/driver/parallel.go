package driver

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"corogen/internal/ast"
	"corogen/internal/cirgen"
)

// lowerFunctions lowers defs into gen's module with at most jobs functions
// in flight. Each job owns its own function state; the first error cancels
// the jobs that have not started yet. Stats are indexed like defs.
func lowerFunctions(ctx context.Context, gen *cirgen.Generator, defs []*ast.FuncDecl, jobs int) ([]cirgen.FuncStats, error) {
	stats := make([]cirgen.FuncStats, len(defs))
	if len(defs) == 0 {
		return stats, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(defs)))
	for i, fn := range defs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			_, st, err := gen.EmitFunction(gctx, fn, i)
			if err != nil {
				Logger().Debug("lowering job failed", zap.String("func", fn.QualifiedName()), zap.Error(err))
				return err
			}
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
