package cir

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Module is one translation unit. Its symbol table is safe for concurrent
// use so functions can be lowered in parallel; each Func is owned by the job
// lowering it.
type Module struct {
	Name string

	mu    sync.Mutex
	funcs map[string]*Func
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, funcs: make(map[string]*Func)}
}

// Lookup returns the function called name, or nil.
func (m *Module) Lookup(name string) *Func {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.funcs[name]
}

// GetOrDeclare returns the function called name, declaring it with type ty
// when it does not exist yet. An existing symbol must have the same type.
func (m *Module) GetOrDeclare(name string, ty *Type, builtin bool) (*Func, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.funcs[name]; ok {
		if !f.Type.Equal(ty) {
			return nil, fmt.Errorf("cir: %s redeclared with type %s, previously %s", name, ty, f.Type)
		}
		return f, nil
	}
	f := &Func{Name: name, Type: ty, Builtin: builtin}
	m.funcs[name] = f
	return f, nil
}

// Define turns the symbol name into a definition with an empty entry block.
func (m *Module) Define(name string, ty *Type, order int) (*Func, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.funcs[name]
	switch {
	case !ok:
		f = &Func{Name: name, Type: ty}
		m.funcs[name] = f
	case f.Body != nil:
		return nil, fmt.Errorf("cir: %s is already defined", name)
	case !f.Type.Equal(ty):
		return nil, fmt.Errorf("cir: definition of %s has type %s, declared %s", name, ty, f.Type)
	case f.Builtin:
		return nil, fmt.Errorf("cir: cannot define builtin %s", name)
	}
	f.Order = order
	f.Body = &Region{Func: f}
	f.Body.Blocks = append(f.Body.Blocks, &Block{Parent: f.Body})
	f.Args = make([]*Value, len(ty.Params))
	for i, p := range ty.Params {
		f.Args[i] = &Value{ID: -1, Type: p, Arg: i}
	}
	return f, nil
}

// Discard turns a failed definition back into a declaration so no partial
// body is ever printed or validated.
func (m *Module) Discard(f *Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.Body = nil
	f.Args = nil
	f.Coroutine = false
}

// Funcs returns declarations sorted by name followed by definitions in
// definition order.
func (m *Module) Funcs() []*Func {
	m.mu.Lock()
	all := make([]*Func, 0, len(m.funcs))
	for _, f := range m.funcs {
		all = append(all, f)
	}
	m.mu.Unlock()

	slices.SortFunc(all, func(a, b *Func) int {
		ad, bd := a.IsDeclaration(), b.IsDeclaration()
		switch {
		case ad && !bd:
			return -1
		case !ad && bd:
			return 1
		case ad && bd:
			return strings.Compare(a.Name, b.Name)
		}
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})
	return all
}
