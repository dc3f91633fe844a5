package sema

import (
	"slices"
	"strings"

	"corogen/internal/ast"
	"corogen/internal/diag"
	"corogen/internal/source"
)

// Member names the lowering looks up on awaiters and promises.
const (
	AwaitReady   = "await_ready"
	AwaitSuspend = "await_suspend"
	AwaitResume  = "await_resume"

	GetReturnObject      = "get_return_object"
	InitialSuspend       = "initial_suspend"
	FinalSuspend         = "final_suspend"
	ReturnVoid           = "return_void"
	ReturnValue          = "return_value"
	YieldValue           = "yield_value"
	UnhandledException   = "unhandled_exception"
	ReturnOnAllocFailure = "get_return_object_on_allocation_failure"
)

func (tc *typeChecker) declareRecords() {
	f := tc.result.File
	// every name is bound before any member is resolved, so awaiters may
	// resume with task values and promises may name any awaiter
	var awaiters []*ast.RecordDecl
	var awaiterSpecs []*ast.AwaiterSpec
	for _, a := range f.Awaiters {
		if tc.claimTypeName(a.Name, a.Span) {
			awaiters = append(awaiters, tc.addAwaiter(a))
			awaiterSpecs = append(awaiterSpecs, a)
		}
	}
	var promises []*ast.PromiseSpec
	for _, p := range f.Promises {
		if tc.claimTypeName(p.Name, p.Span) {
			tc.addTask(p)
			promises = append(promises, p)
		}
	}
	for i, rd := range awaiters {
		spec := awaiterSpecs[i]
		resume := ast.VoidType
		if spec.ResumeType != nil {
			if t := tc.resolveType(spec.ResumeType); t != nil {
				resume = t
			}
		}
		fillAwaiter(rd, spec, resume)
	}
	for _, p := range promises {
		tc.fillPromise(p)
	}
	for _, rd := range tc.result.Records {
		f.Records = append(f.Records, rd)
	}
	slices.SortFunc(f.Records, func(a, b *ast.RecordDecl) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func (tc *typeChecker) claimTypeName(name string, sp source.Span) bool {
	if _, taken := tc.types[name]; taken {
		tc.errorf(diag.SemRedeclared, sp, "type %q is already declared", name)
		return false
	}
	return true
}

func (tc *typeChecker) addAwaiter(spec *ast.AwaiterSpec) *ast.RecordDecl {
	rd := ast.NewRecord(spec.Name, ast.RecordAwaiter, spec.Span)
	tc.types[spec.Name] = rd.Type
	tc.result.Records[rd.Name] = rd
	return rd
}

func fillAwaiter(rd *ast.RecordDecl, spec *ast.AwaiterSpec, resume *ast.Type) {
	rd.AddMethod(AwaitReady, ast.BoolType, spec.ReadyNoexcept)
	suspendResult := ast.VoidType
	if spec.SuspendBool {
		suspendResult = ast.BoolType
	}
	handle := &ast.VarDecl{Name: "handle", Type: ast.VoidPtrType, IsParam: true}
	rd.AddMethod(AwaitSuspend, suspendResult, false, handle)
	rd.AddMethod(AwaitResume, resume, spec.ResumeNoexcept)
}

func (tc *typeChecker) addTask(spec *ast.PromiseSpec) {
	task := ast.NewRecord(spec.Name, ast.RecordTask, spec.Span)
	promise := ast.NewRecord(spec.Name+"::"+PromiseTypeName, ast.RecordPromise, spec.Span)
	task.Promise = promise
	promise.Task = task
	tc.types[spec.Name] = task.Type
	tc.result.Records[task.Name] = task
	tc.result.Records[promise.Name] = promise
}

func (tc *typeChecker) awaiterRef(ref *ast.TypeRef, member string) *ast.Type {
	t := tc.resolveType(ref)
	if t == nil {
		return nil
	}
	if !t.IsRecord() || t.Record.Kind != ast.RecordAwaiter {
		tc.errorf(diag.SemNotAwaitable, ref.Span, "%s must name an awaiter, %s is not one", member, t)
		return nil
	}
	return t
}

func (tc *typeChecker) fillPromise(spec *ast.PromiseSpec) {
	task := tc.result.Records[spec.Name]
	promise := task.Promise

	promise.AddMethod(PromiseTypeName, ast.VoidType, true)
	promise.AddMethod(GetReturnObject, task.Type, false)

	switch {
	case spec.ReturnVoid && spec.ReturnValue != nil:
		tc.errorf(diag.SemIncompletePromise, spec.Span, "promise %q declares both return_void and return_value", spec.Name)
	case spec.ReturnVoid:
		promise.AddMethod(ReturnVoid, ast.VoidType, false)
	case spec.ReturnValue != nil:
		if t := tc.resolveType(spec.ReturnValue); t != nil {
			if t.Kind != ast.TypeInt && t.Kind != ast.TypeBool {
				tc.errorf(diag.SemTypeMismatch, spec.ReturnValue.Span, "return_value type %s is not supported", t)
			} else {
				value := &ast.VarDecl{Name: "value", Type: t, IsParam: true}
				promise.AddMethod(ReturnValue, ast.VoidType, false, value)
			}
		}
	}

	if spec.InitialSuspend == nil {
		tc.errorf(diag.SemIncompletePromise, spec.Span, "promise %q has no initial_suspend", spec.Name)
	} else if t := tc.awaiterRef(spec.InitialSuspend, InitialSuspend); t != nil {
		promise.AddMethod(InitialSuspend, t, false)
	}
	if spec.FinalSuspend == nil {
		tc.errorf(diag.SemIncompletePromise, spec.Span, "promise %q has no final_suspend", spec.Name)
	} else if t := tc.awaiterRef(spec.FinalSuspend, FinalSuspend); t != nil {
		promise.AddMethod(FinalSuspend, t, true)
	}
	if spec.YieldValue != nil {
		if t := tc.awaiterRef(spec.YieldValue, YieldValue); t != nil {
			value := &ast.VarDecl{Name: "value", Type: ast.IntType, IsParam: true}
			promise.AddMethod(YieldValue, t, false, value)
		}
	}
	if spec.UnhandledException {
		promise.AddMethod(UnhandledException, ast.VoidType, false)
	}
	if spec.AllocFailure {
		promise.AddMethod(ReturnOnAllocFailure, task.Type, true)
	}
}
