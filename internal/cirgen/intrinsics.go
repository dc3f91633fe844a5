package cirgen

import (
	"fortio.org/safecast"

	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// Each intrinsic is declared in the module on first use and marked builtin.
var (
	coroIDType    = cir.FuncTy([]*cir.Type{cir.U32Ty, cir.VoidPtrTy, cir.VoidPtrTy, cir.VoidPtrTy}, cir.U32Ty)
	coroAllocType = cir.FuncTy([]*cir.Type{cir.U32Ty}, cir.BoolTy)
	coroBeginType = cir.FuncTy([]*cir.Type{cir.U32Ty, cir.VoidPtrTy}, cir.VoidPtrTy)
	coroEndType   = cir.FuncTy([]*cir.Type{cir.VoidPtrTy, cir.BoolTy}, cir.BoolTy)
	coroSizeType  = cir.FuncTy(nil, cir.U64Ty)
)

func (f *Function) builtinCallee(name string, ty *cir.Type) *cir.Func {
	return f.declareCallee(name, ty, true)
}

// emitCoroIDBuiltinCall emits the coroutine identity. The alignment argument
// is the operator new alignment of the target in bytes.
func (f *Function) emitCoroIDBuiltinCall(nullPtr *cir.Value) *cir.Op {
	opts := f.gen.opts
	align, err := safecast.Conv[uint32](opts.NewAlign / opts.CharWidth)
	if err != nil {
		panic(cirerr.Internal("coro.id", "new alignment out of range: %v", err))
	}
	alignVal := f.builder.ConstInt(cir.U32Ty, int64(align))
	return f.emitCall(f.builtinCallee(cir.BuiltinCoroID, coroIDType), alignVal, nullPtr, nullPtr, nullPtr)
}

// emitCoroAllocBuiltinCall tests whether the frame needs a heap allocation.
func (f *Function) emitCoroAllocBuiltinCall() *cir.Op {
	return f.emitCall(f.builtinCallee(cir.BuiltinCoroAlloc, coroAllocType), f.coro().coroID.Result)
}

// emitCoroBeginBuiltinCall materializes the frame pointer from the raw
// allocation.
func (f *Function) emitCoroBeginBuiltinCall(rawFrame *cir.Value) *cir.Op {
	return f.emitCall(f.builtinCallee(cir.BuiltinCoroBegin, coroBeginType), f.coro().coroID.Result, rawFrame)
}

// emitCoroEndBuiltinCall marks the end of the coroutine on the return path.
func (f *Function) emitCoroEndBuiltinCall(nullPtr *cir.Value) *cir.Op {
	return f.emitCall(f.builtinCallee(cir.BuiltinCoroEnd, coroEndType), nullPtr, f.builder.ConstBool(false))
}

func (f *Function) emitCoroSizeBuiltinCall() *cir.Value {
	return f.emitCall(f.builtinCallee(cir.BuiltinCoroSize, coroSizeType)).Result
}

// emitCoroutineFrame returns the frame pointer for __builtin_coro_frame.
func (f *Function) emitCoroutineFrame() (*cir.Value, error) {
	if f.curCoro != nil && f.curCoro.coroBegin != nil {
		return f.curCoro.coroBegin, nil
	}
	return nil, cirerr.Unsupported("coro.frame", "__builtin_coro_frame outside of a coroutine body")
}

// emitCoroutineIntrinsic covers the remaining __builtin_coro_* calls.
func (f *Function) emitCoroutineIntrinsic(name string) error {
	return cirerr.Unsupported("coro.intrinsic", name)
}
