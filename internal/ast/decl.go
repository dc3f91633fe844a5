package ast

import "corogen/internal/source"

// RecordKind distinguishes the roles a record type plays.
type RecordKind uint8

const (
	// RecordAwaiter is a type with await_ready/await_suspend/await_resume.
	RecordAwaiter RecordKind = iota
	// RecordPromise is a coroutine promise_type.
	RecordPromise
	// RecordTask is the task-like return type of a coroutine.
	RecordTask
)

// RecordDecl declares a class type together with its member functions.
type RecordDecl struct {
	Name    string
	Kind    RecordKind
	Span    source.Span
	Type    *Type
	Methods map[string]*FuncDecl

	// Promise links a task type to its promise_type.
	Promise *RecordDecl
	// Task links a promise_type back to the task type it produces.
	Task *RecordDecl
}

// NewRecord creates a record together with its type.
func NewRecord(name string, kind RecordKind, span source.Span) *RecordDecl {
	rd := &RecordDecl{
		Name:    name,
		Kind:    kind,
		Span:    span,
		Methods: make(map[string]*FuncDecl),
	}
	rd.Type = &Type{Kind: TypeRecord, Record: rd}
	return rd
}

// AddMethod declares a member function of rd.
func (rd *RecordDecl) AddMethod(name string, result *Type, noexcept bool, params ...*VarDecl) *FuncDecl {
	fn := &FuncDecl{
		Name:     name,
		Params:   params,
		Result:   result,
		Parent:   rd,
		Noexcept: noexcept,
		Span:     rd.Span,
	}
	rd.Methods[name] = fn
	return fn
}

// Method looks up a member function by name.
func (rd *RecordDecl) Method(name string) *FuncDecl {
	if rd == nil {
		return nil
	}
	return rd.Methods[name]
}

// FuncDecl declares a free function, a member function or a coroutine.
type FuncDecl struct {
	Name      string
	Span      source.Span
	Params    []*VarDecl
	ResultRef *TypeRef
	Result    *Type
	Body      *Stmt // nil for declarations
	Parent    *RecordDecl
	Noexcept  bool
	Extern    bool

	// IsCoroutine is set by sema when the body contains a suspend point or co_return.
	IsCoroutine bool
}

// QualifiedName returns Record::name for members.
func (fn *FuncDecl) QualifiedName() string {
	if fn.Parent != nil {
		return fn.Parent.Name + "::" + fn.Name
	}
	return fn.Name
}

// CoroutineBody returns the synthesized coroutine body, or nil.
func (fn *FuncDecl) CoroutineBody() *CoroutineBodyData {
	if fn == nil || fn.Body == nil || fn.Body.Kind != StmtCoroutineBody {
		return nil
	}
	data, _ := fn.Body.Data.(*CoroutineBodyData)
	return data
}

// VarDecl declares a parameter or a local variable.
type VarDecl struct {
	Name     string
	Span     source.Span
	TypeRef  *TypeRef
	Type     *Type
	Init     *Expr
	IsParam  bool
	Implicit bool
}

// File is one parsed translation unit.
type File struct {
	Path    string
	Span    source.Span
	Records []*RecordDecl
	Funcs   []*FuncDecl

	// Awaiters and Promises hold the raw declarations as parsed; sema turns
	// them into records.
	Awaiters []*AwaiterSpec
	Promises []*PromiseSpec
}

// AwaiterSpec is the parsed form of `awaiter NAME { ... }`.
type AwaiterSpec struct {
	Name           string
	Span           source.Span
	ReadyNoexcept  bool
	SuspendBool    bool
	ResumeType     *TypeRef
	ResumeNoexcept bool
}

// PromiseSpec is the parsed form of `promise NAME { ... }`.
type PromiseSpec struct {
	Name               string
	Span               source.Span
	ReturnVoid         bool
	ReturnValue        *TypeRef
	InitialSuspend     *TypeRef
	FinalSuspend       *TypeRef
	YieldValue         *TypeRef
	UnhandledException bool
	AllocFailure       bool
}

// TypeRef is an unresolved type name as written.
type TypeRef struct {
	Name string
	Span source.Span
}
