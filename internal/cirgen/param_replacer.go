package cirgen

import (
	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// paramReplacer points parameters at their coroutine-frame copies while the
// body is lowered. restore must run on every exit path.
type paramReplacer struct {
	localDeclMap map[*ast.VarDecl]*cir.Value
	saved        map[*ast.VarDecl]*cir.Value
}

func newParamReplacer(localDeclMap map[*ast.VarDecl]*cir.Value) *paramReplacer {
	return &paramReplacer{
		localDeclMap: localDeclMap,
		saved:        make(map[*ast.VarDecl]*cir.Value),
	}
}

// addCopy rebinds the single parameter referenced by the initializer of the
// copy declared in pm.
func (r *paramReplacer) addCopy(pm *ast.Stmt) {
	if pm.Kind != ast.StmtDecl {
		panic(cirerr.Internal("coro.params", "parameter move is a %s statement", pm.Kind))
	}
	copyDecl := pm.Data.(*ast.DeclData).Var

	var ref *ast.DeclRefData
	refs := 0
	ast.Inspect(copyDecl.Init, func(n ast.Node) bool {
		if e, ok := n.(*ast.Expr); ok && e.Kind == ast.ExprDeclRef {
			ref = e.Data.(*ast.DeclRefData)
			refs++
		}
		return true
	})
	switch {
	case refs == 0:
		panic(cirerr.Internal("coro.params", "copy %s references no parameter", copyDecl.Name))
	case refs > 1:
		panic(cirerr.Internal("coro.params", "copy %s references %d declarations, want 1", copyDecl.Name, refs))
	}

	param := ref.Var
	orig, ok := r.localDeclMap[param]
	if !ok {
		panic(cirerr.Internal("coro.params", "parameter %s has no storage", ref.Name))
	}
	copyAddr, ok := r.localDeclMap[copyDecl]
	if !ok {
		panic(cirerr.Internal("coro.params", "copy %s has no storage", copyDecl.Name))
	}
	if _, seen := r.saved[param]; !seen {
		r.saved[param] = orig
	}
	r.localDeclMap[param] = copyAddr
}

// restore puts every rebound parameter back to its original slot.
func (r *paramReplacer) restore() {
	for param, addr := range r.saved {
		r.localDeclMap[param] = addr
	}
	clear(r.saved)
}
