package ast

// Node is implemented by *Stmt and *Expr.
type Node interface {
	node()
}

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// every node. If f returns false, the children of that node are skipped.
// Opaque values are not descended into; their source is visited where it is
// written (SuspendData.Common).
func Inspect(n Node, f func(Node) bool) {
	switch n := n.(type) {
	case *Stmt:
		if n == nil || !f(n) {
			return
		}
		for _, c := range stmtChildren(n) {
			Inspect(c, f)
		}
	case *Expr:
		if n == nil || !f(n) {
			return
		}
		for _, c := range exprChildren(n) {
			Inspect(c, f)
		}
	}
}

func stmtChildren(s *Stmt) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, n := range ns {
			switch n := n.(type) {
			case *Stmt:
				if n != nil {
					out = append(out, n)
				}
			case *Expr:
				if n != nil {
					out = append(out, n)
				}
			}
		}
	}
	switch d := s.Data.(type) {
	case *CompoundData:
		for _, st := range d.Stmts {
			add(st)
		}
	case *DeclData:
		if d.Var != nil {
			add(d.Var.Init)
		}
	case *ExprStmtData:
		add(d.Expr)
	case *IfData:
		add(d.Cond, d.Then, d.Else)
	case *WhileData:
		add(d.Cond, d.Body)
	case *ReturnData:
		add(d.Value)
	case *CoreturnData:
		add(d.Operand)
	case *CoroutineBodyData:
		add(d.Body)
	}
	return out
}

func exprChildren(e *Expr) []Node {
	var out []Node
	add := func(es ...*Expr) {
		for _, x := range es {
			if x != nil {
				out = append(out, x)
			}
		}
	}
	switch d := e.Data.(type) {
	case *CallData:
		add(d.Args...)
	case *MemberCallData:
		add(d.Object)
		add(d.Args...)
	case *BuiltinCallData:
		add(d.Args...)
	case *UnaryData:
		add(d.X)
	case *BinaryData:
		add(d.X, d.Y)
	case *AssignData:
		add(d.Target, d.Value)
	case *ParenData:
		add(d.X)
	case *ImplicitCastData:
		add(d.X)
	case *InitListData:
		add(d.Elems...)
	case *SuspendData:
		if d.Common != nil {
			add(d.Common)
		} else {
			add(d.Operand)
		}
	}
	return out
}
