package ast

// TypeKind enumerates source-level type kinds.
type TypeKind uint8

const (
	// TypeVoid is the void type.
	TypeVoid TypeKind = iota
	// TypeBool is bool.
	TypeBool
	// TypeInt is a 32-bit signed int.
	TypeInt
	// TypeSize is the unsigned 64-bit size type.
	TypeSize
	// TypeVoidPtr is void*.
	TypeVoidPtr
	// TypeComplex is _Complex int.
	TypeComplex
	// TypeRecord is a class type (awaiter, promise or task).
	TypeRecord
)

// Type is a source-level type. Builtin types are singletons; record types are
// owned by their RecordDecl.
type Type struct {
	Kind   TypeKind
	Record *RecordDecl
}

var (
	VoidType    = &Type{Kind: TypeVoid}
	BoolType    = &Type{Kind: TypeBool}
	IntType     = &Type{Kind: TypeInt}
	SizeType    = &Type{Kind: TypeSize}
	VoidPtrType = &Type{Kind: TypeVoidPtr}
	ComplexType = &Type{Kind: TypeComplex}
)

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeSize:
		return "size_t"
	case TypeVoidPtr:
		return "void*"
	case TypeComplex:
		return "complex"
	case TypeRecord:
		if t.Record != nil {
			return t.Record.Name
		}
		return "<record>"
	}
	return "<unknown>"
}

func (t *Type) IsVoid() bool    { return t != nil && t.Kind == TypeVoid }
func (t *Type) IsRecord() bool  { return t != nil && t.Kind == TypeRecord }
func (t *Type) IsComplex() bool { return t != nil && t.Kind == TypeComplex }

// IsScalar reports whether values of t live in a single IR value.
func (t *Type) IsScalar() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeBool, TypeInt, TypeSize, TypeVoidPtr:
		return true
	}
	return false
}

// IsArithmetic reports whether t takes part in arithmetic and comparisons.
func (t *Type) IsArithmetic() bool {
	return t != nil && (t.Kind == TypeInt || t.Kind == TypeBool || t.Kind == TypeSize)
}

// SameType compares types structurally.
func SameType(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == TypeRecord {
		return a.Record == b.Record
	}
	return true
}
