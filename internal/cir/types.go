package cir

import (
	"fmt"
	"strings"
)

// TypeKind enumerates IR type kinds.
type TypeKind uint8

const (
	TypeVoid TypeKind = iota
	TypeBool
	TypeInt
	TypePtr
	TypeRecord
	TypeComplex
	TypeFunc
)

// Type is an IR type. Compare with Equal; only the scalar singletons are shared.
type Type struct {
	Kind   TypeKind
	Width  int  // TypeInt
	Signed bool // TypeInt
	Elem   *Type
	Name   string // TypeRecord
	Params []*Type
	Result *Type
}

var (
	VoidTy = &Type{Kind: TypeVoid}
	BoolTy = &Type{Kind: TypeBool}
	S32Ty  = &Type{Kind: TypeInt, Width: 32, Signed: true}
	U32Ty  = &Type{Kind: TypeInt, Width: 32}
	U64Ty  = &Type{Kind: TypeInt, Width: 64}
	// VoidPtrTy is !cir.ptr<!void>.
	VoidPtrTy = PtrTo(VoidTy)
)

// PtrTo returns the pointer type to elem.
func PtrTo(elem *Type) *Type {
	return &Type{Kind: TypePtr, Elem: elem}
}

// RecordTy returns the record type called name.
func RecordTy(name string) *Type {
	return &Type{Kind: TypeRecord, Name: name}
}

// ComplexOf returns the complex type with elem components.
func ComplexOf(elem *Type) *Type {
	return &Type{Kind: TypeComplex, Elem: elem}
}

// FuncTy returns a function type. A nil result means void.
func FuncTy(params []*Type, result *Type) *Type {
	if result == nil {
		result = VoidTy
	}
	return &Type{Kind: TypeFunc, Params: params, Result: result}
}

// Equal compares types structurally.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TypeInt:
		return t.Width == o.Width && t.Signed == o.Signed
	case TypePtr, TypeComplex:
		return t.Elem.Equal(o.Elem)
	case TypeRecord:
		return t.Name == o.Name
	case TypeFunc:
		if !t.Result.Equal(o.Result) || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
	}
	return true
}

// IsVoid reports whether t is !void.
func (t *Type) IsVoid() bool { return t != nil && t.Kind == TypeVoid }

// IsScalar reports whether values of t fit a single slot.
func (t *Type) IsScalar() bool {
	return t != nil && (t.Kind == TypeBool || t.Kind == TypeInt || t.Kind == TypePtr)
}

// SizeInBytes is the storage size used for alloca alignment.
func (t *Type) SizeInBytes() int {
	switch t.Kind {
	case TypeBool:
		return 1
	case TypeInt:
		return t.Width / 8
	case TypePtr:
		return 8
	case TypeComplex:
		return 2 * t.Elem.SizeInBytes()
	case TypeRecord:
		return 1
	}
	return 0
}

func (t *Type) String() string {
	if t == nil {
		return "<<nil type>>"
	}
	switch t.Kind {
	case TypeVoid:
		return "!void"
	case TypeBool:
		return "!cir.bool"
	case TypeInt:
		sign := "u"
		if t.Signed {
			sign = "s"
		}
		return fmt.Sprintf("!%s%di", sign, t.Width)
	case TypePtr:
		return "!cir.ptr<" + t.Elem.String() + ">"
	case TypeRecord:
		return "!rec_" + t.Name
	case TypeComplex:
		return "!cir.complex<" + t.Elem.String() + ">"
	case TypeFunc:
		return "!cir.func<" + signature(t) + ">"
	}
	return "<<unknown type>>"
}

// signature renders "(params) -> result" with "()" for void results.
func signature(t *Type) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	result := "()"
	if !t.Result.IsVoid() {
		result = t.Result.String()
	}
	return "(" + strings.Join(params, ", ") + ") -> " + result
}
