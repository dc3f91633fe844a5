package cirgen

import (
	"corogen/internal/ast"
	"corogen/internal/cir"
	"corogen/internal/cirerr"
)

// convertType maps a source type to its CIR type.
func convertType(t *ast.Type) *cir.Type {
	if t == nil {
		panic(cirerr.Internal("types", "nil source type"))
	}
	switch t.Kind {
	case ast.TypeVoid:
		return cir.VoidTy
	case ast.TypeBool:
		return cir.BoolTy
	case ast.TypeInt:
		return cir.S32Ty
	case ast.TypeSize:
		return cir.U64Ty
	case ast.TypeVoidPtr:
		return cir.VoidPtrTy
	case ast.TypeComplex:
		return cir.ComplexOf(cir.S32Ty)
	case ast.TypeRecord:
		return cir.RecordTy(t.Record.Name)
	}
	panic(cirerr.Internal("types", "unknown source type %s", t))
}

// funcType returns the CIR signature of fn; members take this first.
func funcType(fn *ast.FuncDecl) *cir.Type {
	params := make([]*cir.Type, 0, len(fn.Params)+1)
	if fn.Parent != nil {
		params = append(params, cir.PtrTo(cir.RecordTy(fn.Parent.Name)))
	}
	for _, p := range fn.Params {
		params = append(params, convertType(p.Type))
	}
	var result *cir.Type
	if !fn.Result.IsVoid() {
		result = convertType(fn.Result)
	}
	return cir.FuncTy(params, result)
}

// alignOf returns the natural alignment used for stack slots of t.
func alignOf(t *cir.Type) int {
	if n := t.SizeInBytes(); n > 0 {
		return n
	}
	return 1
}
