package cir

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print writes the textual form of m.
func Print(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "module @%s {\n", symbol(m.Name))
	for _, f := range m.Funcs() {
		p := newPrinter(bw, f)
		p.printFunc()
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// String returns the textual form of m.
func String(m *Module) string {
	var sb strings.Builder
	if err := Print(&sb, m); err != nil {
		return err.Error()
	}
	return sb.String()
}

// FuncString returns the textual form of a single function.
func FuncString(f *Func) string {
	var sb strings.Builder
	bw := bufio.NewWriter(&sb)
	newPrinter(bw, f).printFunc()
	if err := bw.Flush(); err != nil {
		return err.Error()
	}
	return sb.String()
}

type printer struct {
	w      *bufio.Writer
	fn     *Func
	values map[*Value]int
	blocks map[*Block]int
	depth  int
}

func newPrinter(w *bufio.Writer, f *Func) *printer {
	p := &printer{
		w:      w,
		fn:     f,
		values: make(map[*Value]int),
		blocks: make(map[*Block]int),
	}
	// values and blocks are numbered in textual order
	next, nextBlock := 0, 0
	var number func(r *Region)
	number = func(r *Region) {
		for i, b := range r.Blocks {
			if i > 0 {
				p.blocks[b] = nextBlock
				nextBlock++
			}
			for _, op := range b.Ops {
				if op.Result != nil {
					p.values[op.Result] = next
					next++
				}
				for _, sub := range op.Regions {
					number(sub)
				}
			}
		}
	}
	if f.Body != nil {
		number(f.Body)
	}
	return p
}

// symbol quotes names that are not plain identifiers.
func symbol(name string) string {
	for _, r := range name {
		if !(r == '_' || r == '.' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return strconv.Quote(name)
		}
	}
	return name
}

func (p *printer) indent() {
	p.w.WriteString(strings.Repeat("  ", p.depth))
}

func (p *printer) value(v *Value) string {
	if v == nil {
		return "<<null>>"
	}
	if v.Def == nil {
		return "%arg" + strconv.Itoa(v.Arg)
	}
	n, ok := p.values[v]
	if !ok {
		return "<<unknown value>>"
	}
	return "%" + strconv.Itoa(n)
}

func (p *printer) block(b *Block) string {
	if n, ok := p.blocks[b]; ok {
		return "^bb" + strconv.Itoa(n+1)
	}
	return "^bb0"
}

func (p *printer) printFunc() {
	f := p.fn
	p.depth = 1
	p.indent()
	p.w.WriteString("cir.func ")
	if f.Builtin {
		p.w.WriteString("builtin ")
	}
	if f.Coroutine {
		p.w.WriteString("coroutine ")
	}
	if f.IsDeclaration() {
		p.w.WriteString("private ")
	}
	fmt.Fprintf(p.w, "@%s(", symbol(f.Name))
	for i, t := range f.Type.Params {
		if i > 0 {
			p.w.WriteString(", ")
		}
		if f.IsDeclaration() {
			p.w.WriteString(t.String())
		} else {
			fmt.Fprintf(p.w, "%%arg%d: %s", i, t)
		}
	}
	p.w.WriteString(")")
	if !f.Type.Result.IsVoid() {
		fmt.Fprintf(p.w, " -> %s", f.Type.Result)
	}
	if f.IsDeclaration() {
		p.w.WriteString("\n")
		return
	}
	p.w.WriteString(" {\n")
	p.printRegionBody(f.Body)
	p.indent()
	p.w.WriteString("}\n")
}

func (p *printer) printRegionBody(r *Region) {
	for i, b := range r.Blocks {
		if i > 0 {
			p.indent()
			fmt.Fprintf(p.w, "%s:\n", p.block(b))
		}
		p.depth++
		for _, op := range b.Ops {
			p.printOp(op)
		}
		p.depth--
	}
}

func (p *printer) printRegion(r *Region) {
	p.w.WriteString("{\n")
	p.printRegionBody(r)
	p.indent()
	p.w.WriteString("}")
}

func (p *printer) printOp(op *Op) {
	p.indent()
	if op.Result != nil {
		fmt.Fprintf(p.w, "%s = ", p.value(op.Result))
	}
	p.w.WriteString(op.Kind.String())
	switch op.Kind {
	case OpConst:
		fmt.Fprintf(p.w, " %s : %s", constText(op), op.Result.Type)
	case OpAlloca:
		a := op.Alloca
		fmt.Fprintf(p.w, " %s, %s, [%q", a.Elem, op.Result.Type, a.Name)
		if a.Init {
			p.w.WriteString(", init")
		}
		fmt.Fprintf(p.w, "] {alignment = %d : i64}", a.Align)
	case OpLoad:
		fmt.Fprintf(p.w, " %s : %s, %s", p.value(op.Operands[0]), op.Operands[0].Type, op.Result.Type)
	case OpStore:
		fmt.Fprintf(p.w, " %s, %s : %s, %s", p.value(op.Operands[0]), p.value(op.Operands[1]),
			op.Operands[0].Type, op.Operands[1].Type)
	case OpCall:
		callee := op.Call.Callee
		fmt.Fprintf(p.w, " @%s(%s) : %s", symbol(callee.Name), p.valueList(op.Operands), signature(callee.Type))
	case OpBinOp, OpCmp:
		fmt.Fprintf(p.w, "(%s, %s, %s) : %s", op.Pred, p.value(op.Operands[0]), p.value(op.Operands[1]), op.Operands[0].Type)
		if op.Kind == OpCmp {
			fmt.Fprintf(p.w, ", %s", op.Result.Type)
		}
	case OpUnary:
		fmt.Fprintf(p.w, "(%s, %s) : %s, %s", op.Pred, p.value(op.Operands[0]), op.Operands[0].Type, op.Result.Type)
	case OpCast:
		fmt.Fprintf(p.w, "(%s, %s : %s), %s", op.Pred, p.value(op.Operands[0]), op.Operands[0].Type, op.Result.Type)
	case OpIf:
		fmt.Fprintf(p.w, " %s ", p.value(op.Operands[0]))
		p.printRegion(op.Regions[RegionThen])
		if len(op.Regions) > 1 {
			p.w.WriteString(" else ")
			p.printRegion(op.Regions[RegionElse])
		}
	case OpWhile:
		p.w.WriteString(" ")
		p.printRegion(op.Regions[RegionCond])
		p.w.WriteString(" do ")
		p.printRegion(op.Regions[RegionBody])
	case OpScope:
		p.w.WriteString(" ")
		p.printRegion(op.Regions[0])
	case OpAwait:
		fmt.Fprintf(p.w, "(%s", op.Await)
		for i, name := range []string{"ready", "suspend", "resume"} {
			if i >= len(op.Regions) {
				break
			}
			fmt.Fprintf(p.w, ", %s : ", name)
			p.printRegion(op.Regions[i])
		}
		p.w.WriteString(",)")
	case OpCondition:
		fmt.Fprintf(p.w, "(%s)", p.value(op.Operands[0]))
	case OpBr:
		fmt.Fprintf(p.w, " %s", p.block(op.Target))
	case OpReturn:
		if len(op.Operands) > 0 {
			fmt.Fprintf(p.w, " %s : %s", p.value(op.Operands[0]), op.Operands[0].Type)
		}
	}
	p.w.WriteString("\n")
}

func (p *printer) valueList(vs []*Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = p.value(v)
	}
	return strings.Join(parts, ", ")
}

func constText(op *Op) string {
	switch op.Const.Kind {
	case ConstBool:
		if op.Const.Bool {
			return "#true"
		}
		return "#false"
	case ConstNull:
		return "#cir.ptr<null>"
	}
	return fmt.Sprintf("#cir.int<%d>", op.Const.Int)
}
