package sema

import "corogen/internal/ast"

type scope struct {
	parent *scope
	vars   map[string]*ast.VarDecl
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*ast.VarDecl)}
}

// declare adds v and reports false when the name is taken in this scope.
func (s *scope) declare(v *ast.VarDecl) bool {
	if _, ok := s.vars[v.Name]; ok {
		return false
	}
	s.vars[v.Name] = v
	return true
}

func (s *scope) lookup(name string) *ast.VarDecl {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

func (tc *typeChecker) pushScope() {
	tc.scope = newScope(tc.scope)
}

func (tc *typeChecker) popScope() {
	tc.scope = tc.scope.parent
}
