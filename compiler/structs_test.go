package compiler

import (
	"testing"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
	"github.com/stretchr/testify/require"
)

func TestStructDefinition(t *testing.T) {
	prog := compile(t, "struct Point { x, y }\nstruct Empty")
	requireCode(t, prog, 0, ins(op.Ret0, 0, 0, 0))
	require.Len(t, prog.Structs, 2)

	point := prog.Structs[0]
	require.Equal(t, "Point", point.Name)
	require.Equal(t, []uint16{0, 1}, point.Fields)
	require.Equal(t, []value.Value{value.Nil, value.Nil}, point.Defaults)
	require.Equal(t, -1, point.Constructor)
	require.Equal(t, 1, point.Line)
	require.Equal(t, []string{"x", "y"}, prog.Fields)

	require.Equal(t, "Empty", prog.Structs[1].Name)
	require.Empty(t, prog.Structs[1].Fields)
}

func TestInstantiate(t *testing.T) {
	prog := compile(t, "struct P { x }\nlet p = new P()")
	requireCode(t, prog, 0,
		ins(op.StructNew, 0, 0, 0),
		ins(op.MovTL, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
}

func TestFieldAccess(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []bytecode.Instruction
	}{
		{
			name: "local",
			source: `struct P { x, y }
{
let p = new P()
let a = p.x
p.y = a
p.x = 3
}`,
			want: []bytecode.Instruction{
				ins(op.StructNew, 0, 0, 0),
				ins(op.StructField, 1, 0, 0),
				ins(op.StructSetL, 1, 1, 0),
				ins(op.StructSetI, 0, 3, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name: "top level",
			source: `struct P { x }
let p = new P()
p.x = 1`,
			want: []bytecode.Instruction{
				ins(op.StructNew, 0, 0, 0),
				ins(op.MovTL, 0, 0, 0),
				ins(op.MovLT, 0, 0, 0),
				ins(op.StructSetI, 0, 1, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name: "compound",
			source: `struct P { x }
{
let p = new P()
p.x += 2
}`,
			want: []bytecode.Instruction{
				ins(op.StructNew, 0, 0, 0),
				ins(op.StructField, 2, 0, 0),
				ins(op.AddLI, 2, 2, 2),
				ins(op.StructSetL, 0, 2, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, compile(t, tt.source), 0, tt.want...)
		})
	}
}

func TestMethodDefinition(t *testing.T) {
	prog := compile(t, `struct Counter { n }
fn (Counter) inc(by) {
	self.n = self.n + by
}`)
	requireCode(t, prog, 0, ins(op.Ret0, 0, 0, 0))
	requireCode(t, prog, 1,
		ins(op.StructField, 3, 0, 0),
		ins(op.AddLL, 3, 3, 1),
		ins(op.StructSetL, 0, 3, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	fn := prog.Functions[1]
	require.Equal(t, "Counter.inc", fn.Name)
	require.Equal(t, 2, fn.Arity)

	def := prog.Structs[0]
	require.Equal(t, []uint16{0, 1}, def.Fields)
	require.Equal(t, []value.Value{value.Nil, value.Function(1)}, def.Defaults)
	require.Equal(t, []string{"n", "inc"}, prog.Fields)
}

func TestSelfCapturedByClosure(t *testing.T) {
	prog := compile(t, `struct C { n }
fn (C) get() {
	let f = fn() { return self.n }
}`)
	requireCode(t, prog, 1,
		ins(op.MovLF, 1, 2, 0),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 2,
		ins(op.MovLU, 0, 0, 0),
		ins(op.StructField, 0, 0, 0),
		ins(op.RetL, 0, 0, 0),
	)
	require.Equal(t, "self", prog.Upvalues[0].Name)
}

func TestMethodCall(t *testing.T) {
	const defs = "struct C {}\nfn (C) get() { return 1 }\n"
	tests := []struct {
		name   string
		source string
		want   []bytecode.Instruction
	}{
		{
			name:   "local receiver",
			source: "{\nlet c = new C()\nlet v = c.get()\n}",
			want: []bytecode.Instruction{
				ins(op.StructNew, 0, 0, 0),
				ins(op.StructField, 2, 0, 0),
				ins(op.MovLL, 3, 0, 0),
				ins(op.Call, 2, 1, 1),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "top level receiver",
			source: "let c = new C()\nc.get()",
			want: []bytecode.Instruction{
				ins(op.StructNew, 0, 0, 0),
				ins(op.MovTL, 0, 0, 0),
				ins(op.MovLT, 0, 0, 0),
				ins(op.StructField, 0, 0, 0),
				ins(op.MovLT, 1, 0, 0),
				ins(op.Call, 0, 1, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, compile(t, defs+tt.source), 0, tt.want...)
		})
	}
}

func TestMethodCallOnUpvalue(t *testing.T) {
	prog := compile(t, `struct C {}
fn (C) get() { return 1 }
{
let c = new C()
let f = fn() { c.get() }
}`)
	requireCode(t, prog, 0,
		ins(op.StructNew, 0, 0, 0),
		ins(op.MovLF, 1, 2, 0),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 2,
		ins(op.MovLU, 0, 0, 0),
		ins(op.StructField, 0, 0, 0),
		ins(op.MovLU, 1, 0, 0),
		ins(op.Call, 0, 1, 0),
		ins(op.Ret0, 0, 0, 0),
	)
}

func TestConstructor(t *testing.T) {
	prog := compile(t, `struct P { x }
fn (P) new(x) {
	self.x = x
}
let p = new P(3)`)
	requireCode(t, prog, 0,
		ins(op.StructNew, 0, 0, 0),
		ins(op.MovLI, 1, 3, 0),
		ins(op.StructCallConstructor, 0, 1, 1),
		ins(op.MovTL, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 1,
		ins(op.StructSetL, 0, 1, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	def := prog.Structs[0]
	require.Equal(t, 1, def.Constructor)
	require.Equal(t, []uint16{0}, def.Fields)
	require.Equal(t, "P.new", prog.Functions[1].Name)
	require.Equal(t, 2, prog.Functions[1].Arity)
}

func TestStructErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		code    errors.ErrorCode
		message string
		line    int
	}{
		{"undefined struct", "let p = new Missing()", errors.E3006, "Undefined struct `Missing`", 1},
		{"method on undefined struct", "fn (Q) m() {}", errors.E3006, "Undefined struct `Q`", 1},
		{"redefined struct", "struct P {}\nstruct P {}", errors.E3008, "Struct `P` is already defined", 2},
		{"second constructor", "struct P {}\nfn (P) new() {}\nfn (P) new() {}", errors.E3008, "Constructor already defined on struct `P`", 3},
		{"arguments without constructor", "struct P {}\nlet p = new P(1)", errors.E3009, "Struct `P` has no constructor and takes no arguments", 2},
		{"constructor arity", "struct P {}\nfn (P) new(a) {}\nlet p = new P()", errors.E3009, "Expected 1 arguments to constructor of `P`, found 0", 3},
		{"duplicate field", "struct P { x, x }", errors.E3002, "Duplicate field `x` in struct `P`", 1},
		{"method shadows field", "struct P { x }\nfn (P) x() {}", errors.E3002, "Struct `P` already has a field named `x`", 2},
		{"struct named like variable", "let P = 1\nstruct P {}", errors.E3002, "Variable `P` is already defined", 2},
		{"variable named like struct", "struct P {}\nlet P = 1", errors.E3002, "Variable `P` is already defined", 2},
		{"self at top level", "self.x = 1", errors.E3010, "`self` used outside of a method", 1},
		{"unclosed fields", "struct P { x y }", errors.E2001, "Expected `}` to close struct fields, found identifier", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileError(t, tt.source)
			require.Equal(t, tt.code, err.Code)
			require.Equal(t, tt.message, err.Message)
			require.Equal(t, tt.line, err.Line)
		})
	}
}

func TestUndefinedStructSuggestions(t *testing.T) {
	err := compileError(t, "struct Point { x }\nlet p = new Pont()")
	require.Equal(t, errors.E3006, err.Code)
	require.NotEmpty(t, err.Suggestions)
	require.Equal(t, "Point", err.Suggestions[0].Value)
}
