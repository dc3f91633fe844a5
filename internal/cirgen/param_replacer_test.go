package cirgen

import (
	"errors"
	"testing"

	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
	"corogen/internal/source"
)

func TestParamCopiesAreUsedInsideTheBody(t *testing.T) {
	mod, _ := mustLower(t, `
task f(int n) {
  co_return n;
}
`)
	fn := lookup(t, mod, "f")
	copies := allocaNamed(fn, "__copy_n")
	orig := allocaNamed(fn, "n.addr")
	if len(copies) != 1 || len(orig) != 1 {
		t.Fatalf("slots: %d copies, %d originals", len(copies), len(orig))
	}
	for _, op := range collect(fn, cir.OpCall) {
		if op.Call.Callee.Name != "task::promise_type::return_value" {
			continue
		}
		load := op.Operands[1].Def
		if load.Kind != cir.OpLoad || load.Operands[0] != copies[0].Result {
			t.Error("the body must read the parameter copy")
		}
	}
}

func TestParamBindingsRestored(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"success", `task f(int n, bool b) { if (b) { co_return n; } co_return 0; }`, false},
		{"failure", `task f(int n, bool b) { complex c = co_await C(); co_return n; }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkSource(t, tt.src)
			f := prepare(t, res, "f", DefaultOptions())
			err := catch(f.emitBody)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			for _, p := range res.Funcs["f"].Params {
				addr := f.localDeclMap[p]
				if addr == nil || addr.Def.Alloca.Name != p.Name+".addr" {
					t.Errorf("%s bound to %v after lowering, want its own slot", p.Name, addr)
				}
			}
		})
	}
}

func TestAddCopyRejectsBadInitializers(t *testing.T) {
	var sp source.Span
	param := &ast.VarDecl{Name: "n", Type: ast.IntType, IsParam: true}
	other := &ast.VarDecl{Name: "m", Type: ast.IntType, IsParam: true}
	ref := func(v *ast.VarDecl) *ast.Expr {
		e := ast.NewExpr(ast.ExprDeclRef, sp, &ast.DeclRefData{Name: v.Name, Var: v})
		e.Type = v.Type
		return e
	}
	lit := ast.NewExpr(ast.ExprIntLit, sp, &ast.IntLitData{Value: 1})
	sum := ast.NewExpr(ast.ExprBinary, sp, &ast.BinaryData{Op: ast.BinaryAdd, X: ref(param), Y: ref(other)})

	tests := []struct {
		name string
		init *ast.Expr
	}{
		{"no reference", lit},
		{"two references", sum},
		{"unknown parameter", ref(&ast.VarDecl{Name: "ghost", Type: ast.IntType})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copyDecl := &ast.VarDecl{Name: "__copy_n", Type: ast.IntType, Init: tt.init}
			decls := map[*ast.VarDecl]*cir.Value{
				param:    {ID: 0},
				other:    {ID: 1},
				copyDecl: {ID: 2},
			}
			r := newParamReplacer(decls)
			err := catch(func() error {
				r.addCopy(ast.NewDeclStmt(copyDecl))
				return nil
			})
			if !errors.Is(err, cirerr.ErrInternal) {
				t.Errorf("err = %v, want an internal invariant violation", err)
			}
		})
	}
}

func TestRestoreKeepsFirstBinding(t *testing.T) {
	param := &ast.VarDecl{Name: "n", Type: ast.IntType, IsParam: true}
	orig := &cir.Value{ID: 0}
	decls := map[*ast.VarDecl]*cir.Value{param: orig}
	r := newParamReplacer(decls)
	for i := 1; i <= 2; i++ {
		ref := ast.NewExpr(ast.ExprDeclRef, param.Span, &ast.DeclRefData{Name: "n", Var: param})
		cp := &ast.VarDecl{Name: "__copy_n", Type: ast.IntType, Init: ref}
		decls[cp] = &cir.Value{ID: i}
		r.addCopy(ast.NewDeclStmt(cp))
		if decls[param].ID != i {
			t.Fatalf("copy %d not installed", i)
		}
	}
	r.restore()
	if decls[param] != orig {
		t.Errorf("param bound to %v after restore, want the original slot", decls[param])
	}
}
