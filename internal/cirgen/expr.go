package cirgen

import (
	"strings"

	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
	"corogen/internal/sema"
)

// emitAnyExpr lowers e for its value. Record results are written to slot,
// or to a fresh temporary when slot is nil. With ignore set the result is
// evaluated for side effects only.
func (f *Function) emitAnyExpr(e *ast.Expr, slot *cir.Value, ignore bool) (RValue, error) {
	f.builder.SetLoc(e.Span)
	switch inner := e.IgnoreParens(); inner.Kind {
	case ast.ExprCoawait:
		return f.emitCoawaitExpr(inner, slot, ignore)
	case ast.ExprCoyield:
		return f.emitCoyieldExpr(inner, slot, ignore)
	}

	switch {
	case e.Type.IsVoid():
		_, err := f.emitCallExpr(e)
		return RValue{}, err
	case e.Type.IsRecord():
		if ignore && slot == nil {
			if inner := e.IgnoreParens(); inner.Kind == ast.ExprCall || inner.Kind == ast.ExprMemberCall {
				_, err := f.emitCallExpr(inner)
				return RValue{}, err
			}
		}
		if slot == nil {
			slot = f.createTempAlloca("agg.tmp", convertType(e.Type))
		}
		if err := f.emitAggExpr(e, slot); err != nil {
			return RValue{}, err
		}
		if ignore {
			return RValue{}, nil
		}
		return aggregateRV(slot), nil
	case e.Type.IsComplex():
		op, err := f.emitCallExpr(e)
		if err != nil {
			return RValue{}, err
		}
		if op == nil || op.Result == nil {
			return RValue{}, f.errorf("expr", "%s does not produce a complex value", e.Kind)
		}
		if ignore {
			return RValue{}, nil
		}
		return complexRV(op.Result), nil
	}

	v, err := f.emitScalarExpr(e)
	if err != nil || ignore {
		return RValue{}, err
	}
	return scalarRV(v), nil
}

// evaluateExprAsBool lowers e as a !cir.bool condition.
func (f *Function) evaluateExprAsBool(e *ast.Expr) (*cir.Value, error) {
	v, err := f.emitScalarExpr(e)
	if err != nil {
		return nil, err
	}
	if v.Type.Kind != cir.TypeBool {
		v = f.builder.Cast("int_to_bool", v, cir.BoolTy)
	}
	return v, nil
}

// emitLValue lowers e to the address it designates.
func (f *Function) emitLValue(e *ast.Expr) (LValue, error) {
	f.builder.SetLoc(e.Span)
	switch e.Kind {
	case ast.ExprParen:
		return f.emitLValue(e.Data.(*ast.ParenData).X)
	case ast.ExprDeclRef:
		d := e.Data.(*ast.DeclRefData)
		addr, ok := f.localDeclMap[d.Var]
		if !ok {
			return LValue{}, f.errorf("lvalue", "no storage for %q", d.Name)
		}
		return LValue{addr: addr}, nil
	case ast.ExprOpaqueValue:
		addr, ok := f.opaqueLValues[e]
		if !ok {
			panic(cirerr.Internal("lvalue", "opaque value is not bound"))
		}
		return LValue{addr: addr}, nil
	case ast.ExprAssign:
		d := e.Data.(*ast.AssignData)
		v, err := f.emitScalarExpr(d.Value)
		if err != nil {
			return LValue{}, err
		}
		lv, err := f.emitLValue(d.Target)
		if err != nil {
			return LValue{}, err
		}
		f.builder.Store(v, lv.addr)
		return lv, nil
	case ast.ExprCoawait:
		return f.emitCoawaitLValue(e)
	case ast.ExprCoyield:
		return f.emitCoyieldLValue(e)
	}
	return LValue{}, f.errorf("lvalue", "%s expression is not addressable", e.Kind)
}

// emitScalarExpr lowers an expression of scalar type.
func (f *Function) emitScalarExpr(e *ast.Expr) (*cir.Value, error) {
	b := f.builder
	b.SetLoc(e.Span)
	switch d := e.Data.(type) {
	case *ast.IntLitData:
		return b.ConstInt(convertType(e.Type), d.Value), nil
	case *ast.BoolLitData:
		return b.ConstBool(d.Value), nil
	case *ast.NullPtrData:
		return b.NullPtr(cir.VoidPtrTy), nil
	case *ast.DeclRefData:
		lv, err := f.emitLValue(e)
		if err != nil {
			return nil, err
		}
		return b.Load(lv.addr), nil
	case *ast.ParenData:
		return f.emitScalarExpr(d.X)
	case *ast.ImplicitCastData:
		return f.emitCast(e, d)
	case *ast.UnaryData:
		x, err := f.emitScalarExpr(d.X)
		if err != nil {
			return nil, err
		}
		if d.Op == ast.UnaryNot {
			return b.Unary("not", x), nil
		}
		return b.Unary("minus", x), nil
	case *ast.BinaryData:
		return f.emitBinary(d)
	case *ast.AssignData:
		v, err := f.emitScalarExpr(d.Value)
		if err != nil {
			return nil, err
		}
		lv, err := f.emitLValue(d.Target)
		if err != nil {
			return nil, err
		}
		b.Store(v, lv.addr)
		return v, nil
	case *ast.InitListData:
		if e.Type.Kind == ast.TypeBool {
			return b.ConstBool(false), nil
		}
		return b.ConstInt(convertType(e.Type), 0), nil
	case *ast.BuiltinCallData:
		return f.emitBuiltinExpr(d)
	case *ast.CallData, *ast.MemberCallData:
		op, err := f.emitCallExpr(e)
		if err != nil {
			return nil, err
		}
		if op == nil || op.Result == nil {
			return nil, f.errorf("expr", "call to void function used as a value")
		}
		return op.Result, nil
	case *ast.SuspendData:
		rv, err := f.emitAnyExpr(e, nil, false)
		if err != nil {
			return nil, err
		}
		if !rv.IsScalar() {
			return nil, f.errorf("expr", "%s does not produce a scalar", e.Kind)
		}
		return rv.Value(), nil
	}
	return nil, f.errorf("expr", "%s is not a scalar expression", e.Kind)
}

func (f *Function) emitCast(e *ast.Expr, d *ast.ImplicitCastData) (*cir.Value, error) {
	b := f.builder
	if d.Cast == ast.CastLValueToRValue {
		lv, err := f.emitLValue(d.X)
		if err != nil {
			return nil, err
		}
		return b.Load(lv.addr), nil
	}
	x, err := f.emitScalarExpr(d.X)
	if err != nil {
		return nil, err
	}
	switch d.Cast {
	case ast.CastIntToBool:
		return b.Cast("int_to_bool", x, cir.BoolTy), nil
	case ast.CastBoolToInt:
		return b.Cast("bool_to_int", x, convertType(e.Type)), nil
	}
	return x, nil
}

var binaryPreds = map[ast.BinaryOp]string{
	ast.BinaryAdd: "add",
	ast.BinarySub: "sub",
	ast.BinaryMul: "mul",
	ast.BinaryDiv: "div",
	ast.BinaryLt:  "lt",
	ast.BinaryLe:  "le",
	ast.BinaryGt:  "gt",
	ast.BinaryGe:  "ge",
	ast.BinaryEq:  "eq",
	ast.BinaryNe:  "ne",
}

func (f *Function) emitBinary(d *ast.BinaryData) (*cir.Value, error) {
	x, err := f.emitScalarExpr(d.X)
	if err != nil {
		return nil, err
	}
	y, err := f.emitScalarExpr(d.Y)
	if err != nil {
		return nil, err
	}
	if d.Op.IsComparison() {
		return f.builder.Cmp(binaryPreds[d.Op], x, y), nil
	}
	return f.builder.BinOp(binaryPreds[d.Op], x, y), nil
}

// emitAggExpr initializes the record slot at addr from e.
func (f *Function) emitAggExpr(e *ast.Expr, addr *cir.Value) error {
	b := f.builder
	b.SetLoc(e.Span)
	switch d := e.Data.(type) {
	case *ast.ParenData:
		return f.emitAggExpr(d.X, addr)
	case *ast.ConstructData:
		// Awaiters are trivially constructible; promises run their constructor.
		if ctor := d.Record.Method(sema.PromiseTypeName); ctor != nil {
			f.emitCall(f.declareFunc(ctor), addr)
		}
		return nil
	case *ast.ImplicitCastData:
		if d.Cast != ast.CastLValueToRValue {
			break
		}
		lv, err := f.emitLValue(d.X)
		if err != nil {
			return err
		}
		b.Store(b.Load(lv.addr), addr)
		return nil
	case *ast.CallData, *ast.MemberCallData:
		op, err := f.emitCallExpr(e)
		if err != nil {
			return err
		}
		b.Store(op.Result, addr)
		return nil
	case *ast.SuspendData:
		_, err := f.emitAnyExpr(e, addr, false)
		return err
	}
	return f.errorf("expr", "cannot initialize a record from %s", e.Kind)
}

// emitCallExpr lowers a call and returns the call op. Builtins yield a nil op.
func (f *Function) emitCallExpr(e *ast.Expr) (*cir.Op, error) {
	switch d := e.Data.(type) {
	case *ast.ParenData:
		return f.emitCallExpr(d.X)
	case *ast.CallData:
		args, err := f.emitArgs(d.Args)
		if err != nil {
			return nil, err
		}
		return f.emitCall(f.declareFunc(d.Func), args...), nil
	case *ast.MemberCallData:
		this, err := f.emitLValue(d.Object)
		if err != nil {
			return nil, err
		}
		args, err := f.emitArgs(d.Args)
		if err != nil {
			return nil, err
		}
		return f.emitCall(f.declareFunc(d.Method), append([]*cir.Value{this.addr}, args...)...), nil
	case *ast.BuiltinCallData:
		_, err := f.emitBuiltinExpr(d)
		return nil, err
	}
	return nil, f.errorf("expr", "%s is not a call", e.Kind)
}

func (f *Function) emitArgs(exprs []*ast.Expr) ([]*cir.Value, error) {
	args := make([]*cir.Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := f.emitScalarExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// emitBuiltinExpr lowers a source-level __builtin_coro_* call.
func (f *Function) emitBuiltinExpr(d *ast.BuiltinCallData) (*cir.Value, error) {
	switch d.Name {
	case sema.BuiltinFrame:
		return f.emitCoroutineFrame()
	case sema.BuiltinSize:
		return f.emitCoroSizeBuiltinCall(), nil
	}
	if strings.HasPrefix(d.Name, "__builtin_coro_") {
		return nil, f.emitCoroutineIntrinsic(d.Name)
	}
	return nil, f.errorf("expr", "unknown builtin %s", d.Name)
}
