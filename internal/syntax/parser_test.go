package syntax_test

import (
	"testing"

	"corogen/internal/ast"
	"corogen/internal/diag"
)

const taskSrc = `
awaiter A { ready; suspend; resume int; }
promise task {
  return_value int;
  initial_suspend suspend_always;
  final_suspend suspend_always;
  unhandled_exception;
}
extern void log(int);

task f(int n) {
  int x = co_await A();
  if (x < n) co_return x; else { log(x); }
  while (true) { co_await A(); break; }
  co_return n + 1;
}
`

func TestParseDeclarations(t *testing.T) {
	f := mustParse(t, taskSrc)
	if len(f.Awaiters) != 1 || f.Awaiters[0].Name != "A" {
		t.Fatalf("awaiters = %+v", f.Awaiters)
	}
	a := f.Awaiters[0]
	if a.ResumeType == nil || a.ResumeType.Name != "int" || a.SuspendBool || a.ReadyNoexcept {
		t.Errorf("awaiter A = %+v", a)
	}
	if len(f.Promises) != 1 {
		t.Fatalf("promises = %d", len(f.Promises))
	}
	pr := f.Promises[0]
	if pr.Name != "task" || pr.ReturnValue == nil || pr.ReturnVoid || !pr.UnhandledException {
		t.Errorf("promise = %+v", pr)
	}
	if pr.InitialSuspend.Name != "suspend_always" || pr.FinalSuspend.Name != "suspend_always" {
		t.Errorf("suspend awaiters = %s/%s", pr.InitialSuspend.Name, pr.FinalSuspend.Name)
	}
	if len(f.Funcs) != 2 {
		t.Fatalf("funcs = %d", len(f.Funcs))
	}
	if !f.Funcs[0].Extern || f.Funcs[0].Body != nil || len(f.Funcs[0].Params) != 1 {
		t.Errorf("extern log = %+v", f.Funcs[0])
	}
	fn := f.Funcs[1]
	if fn.Name != "f" || fn.ResultRef.Name != "task" || len(fn.Params) != 1 || fn.Params[0].Name != "n" {
		t.Errorf("func f = %+v", fn)
	}
}

func TestParseStatements(t *testing.T) {
	f := mustParse(t, taskSrc)
	body := f.Funcs[1].Body.Data.(*ast.CompoundData)
	want := []ast.StmtKind{ast.StmtDecl, ast.StmtIf, ast.StmtWhile, ast.StmtCoreturn}
	if len(body.Stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(body.Stmts), len(want))
	}
	for i, s := range body.Stmts {
		if s.Kind != want[i] {
			t.Errorf("stmt %d: got %s, want %s", i, s.Kind, want[i])
		}
	}
	decl := body.Stmts[0].Data.(*ast.DeclData).Var
	if decl.Name != "x" || decl.Init == nil || decl.Init.Kind != ast.ExprCoawait {
		t.Errorf("decl x = %+v", decl)
	}
	ret := body.Stmts[3].Data.(*ast.CoreturnData)
	if ret.Operand == nil || ret.Operand.Kind != ast.ExprBinary {
		t.Errorf("co_return operand = %+v", ret.Operand)
	}
}

func TestParseCoreturnForms(t *testing.T) {
	f := mustParse(t, `task g() { co_return; co_return {}; co_return 1; }`)
	stmts := f.Funcs[0].Body.Data.(*ast.CompoundData).Stmts
	if len(stmts) != 3 {
		t.Fatalf("got %d statements", len(stmts))
	}
	if op := stmts[0].Data.(*ast.CoreturnData).Operand; op != nil {
		t.Errorf("bare co_return has operand %v", op.Kind)
	}
	if op := stmts[1].Data.(*ast.CoreturnData).Operand; op == nil || op.Kind != ast.ExprInitList {
		t.Errorf("co_return {} operand = %v", op)
	}
	if op := stmts[2].Data.(*ast.CoreturnData).Operand; op == nil || op.Kind != ast.ExprIntLit {
		t.Errorf("co_return 1 operand = %v", op)
	}
}

func TestParsePrecedence(t *testing.T) {
	f := mustParse(t, `int h(int a) { a = 1 + 2 * 3 < 4; return a; }`)
	stmt := f.Funcs[0].Body.Data.(*ast.CompoundData).Stmts[0]
	assign := stmt.Data.(*ast.ExprStmtData).Expr
	if assign.Kind != ast.ExprAssign {
		t.Fatalf("top = %s", assign.Kind)
	}
	cmp := assign.Data.(*ast.AssignData).Value
	if cmp.Kind != ast.ExprBinary || cmp.Data.(*ast.BinaryData).Op != ast.BinaryLt {
		t.Fatalf("rhs = %s", cmp.Kind)
	}
	sum := cmp.Data.(*ast.BinaryData).X.Data.(*ast.BinaryData)
	if sum.Op != ast.BinaryAdd || sum.Y.Data.(*ast.BinaryData).Op != ast.BinaryMul {
		t.Errorf("sum = %+v", sum)
	}
}

func TestParseBuiltinCall(t *testing.T) {
	f := mustParse(t, `task k() { __builtin_coro_frame(); co_return; }`)
	e := f.Funcs[0].Body.Data.(*ast.CompoundData).Stmts[0].Data.(*ast.ExprStmtData).Expr
	if e.Kind != ast.ExprBuiltinCall || e.Data.(*ast.BuiltinCallData).Name != "__builtin_coro_frame" {
		t.Errorf("got %s", e.Kind)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"missing semicolon", "int f() { return 1 }", diag.SynExpectSemicolon},
		{"unknown awaiter member", "awaiter A { frob; }", diag.SynUnknownMember},
		{"unknown promise member", "promise p { get_lost; }", diag.SynUnknownMember},
		{"bad declaration", "42;", diag.SynUnexpectedToken},
		{"missing expression", "int f() { return +; }", diag.SynUnexpectedToken},
		{"literal overflow", "int f() { return 99999999999; }", diag.LexBadNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := parseSource(t, tt.src)
			if !bag.HasErrors() {
				t.Fatal("expected an error")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("missing %s in %s", tt.code.ID(), diagnosticsSummary(bag))
			}
		})
	}
}
