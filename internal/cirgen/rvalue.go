package cirgen

import "corogen/internal/cir"

type rvalueKind uint8

const (
	rvIgnored rvalueKind = iota
	rvScalar
	rvComplex
	rvAggregate
)

// RValue is the result of lowering an expression for its value.
type RValue struct {
	kind  rvalueKind
	value *cir.Value // scalar or complex value
	addr  *cir.Value // aggregate slot
}

func scalarRV(v *cir.Value) RValue       { return RValue{kind: rvScalar, value: v} }
func complexRV(v *cir.Value) RValue      { return RValue{kind: rvComplex, value: v} }
func aggregateRV(addr *cir.Value) RValue { return RValue{kind: rvAggregate, addr: addr} }

func (rv RValue) IsIgnored() bool   { return rv.kind == rvIgnored }
func (rv RValue) IsScalar() bool    { return rv.kind == rvScalar }
func (rv RValue) IsComplex() bool   { return rv.kind == rvComplex }
func (rv RValue) IsAggregate() bool { return rv.kind == rvAggregate }

// Value returns the scalar or complex value.
func (rv RValue) Value() *cir.Value { return rv.value }

// Addr returns the slot of an aggregate.
func (rv RValue) Addr() *cir.Value { return rv.addr }

// LValue is an addressable location.
type LValue struct {
	addr *cir.Value
}

// Addr returns the pointer to the location.
func (lv LValue) Addr() *cir.Value { return lv.addr }
