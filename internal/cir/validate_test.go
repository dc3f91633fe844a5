package cir_test

import (
	"strings"
	"testing"

	"corogen/internal/cir"
)

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *cir.Module, f *cir.Func, b *cir.Builder)
		want  string
	}{
		{
			name:  "unterminated",
			build: func(_ *cir.Module, _ *cir.Func, b *cir.Builder) { b.ConstInt(cir.S32Ty, 1) },
			want:  "not terminated",
		},
		{
			name: "terminator in the middle",
			build: func(_ *cir.Module, _ *cir.Func, b *cir.Builder) {
				b.Return(nil)
				b.Return(nil)
			},
			want: "is not the last op",
		},
		{
			name: "yield at function level",
			build: func(_ *cir.Module, _ *cir.Func, b *cir.Builder) {
				b.Yield()
			},
			want: "cir.yield at function level",
		},
		{
			name: "break outside loop",
			build: func(_ *cir.Module, _ *cir.Func, b *cir.Builder) {
				_, _ = b.Scope(func() error { b.Break(); return nil })
				b.Return(nil)
			},
			want: "cir.break outside a loop",
		},
		{
			name: "ready region without condition",
			build: func(_ *cir.Module, _ *cir.Func, b *cir.Builder) {
				_, _ = b.Await(cir.AwaitUser,
					func() error { b.Yield(); return nil },
					func() error { b.Yield(); return nil },
					func() error { b.Yield(); return nil })
				b.Return(nil)
			},
			want: "must end with cir.condition",
		},
		{
			name: "branch leaves region",
			build: func(_ *cir.Module, f *cir.Func, b *cir.Builder) {
				outer := f.Body.Entry()
				_, _ = b.Scope(func() error { b.Br(outer); return nil })
				b.Return(nil)
			},
			want: "cir.br leaves its region",
		},
		{
			name: "coroutine without intrinsics",
			build: func(_ *cir.Module, f *cir.Func, b *cir.Builder) {
				f.Coroutine = true
				b.Return(nil)
			},
			want: "__builtin_coro_id calls, want 1",
		},
		{
			name: "two final suspends",
			build: func(m *cir.Module, f *cir.Func, b *cir.Builder) {
				f.Coroutine = true
				id, _ := m.GetOrDeclare(cir.BuiltinCoroID, cir.FuncTy(nil, cir.U32Ty), true)
				begin, _ := m.GetOrDeclare(cir.BuiltinCoroBegin, cir.FuncTy(nil, cir.VoidPtrTy), true)
				b.Call(id)
				b.Call(begin)
				for range 2 {
					_, _ = b.Await(cir.AwaitFinal,
						func() error { b.Condition(b.ConstBool(true)); return nil },
						func() error { b.Yield(); return nil },
						func() error { b.Yield(); return nil })
				}
				b.Return(nil)
			},
			want: "2 final suspends",
		},
		{
			name: "argument type mismatch",
			build: func(m *cir.Module, _ *cir.Func, b *cir.Builder) {
				g, _ := m.GetOrDeclare("g", cir.FuncTy([]*cir.Type{cir.S32Ty}, nil), false)
				b.Call(g, b.ConstBool(true))
				b.Return(nil)
			},
			want: "argument 0 has type !cir.bool",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := cir.NewModule("v")
			f, b := newFunc(t, m, "f", nil, nil)
			tt.build(m, f, b)
			err := cir.Validate(m)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateBuiltinWithBody(t *testing.T) {
	m := cir.NewModule("v")
	f, b := newFunc(t, m, "f", nil, nil)
	f.Builtin = true
	b.Return(nil)
	if err := cir.ValidateFunc(f); err == nil || !strings.Contains(err.Error(), "builtin function has a body") {
		t.Errorf("got %v", err)
	}
}
