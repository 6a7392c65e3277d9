package compiler

import (
	"testing"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/stretchr/testify/require"
)

func TestFunctionDefinition(t *testing.T) {
	prog := compile(t, `
fn add(a, b) {
	return a + b
}
`)
	requireCode(t, prog, 0,
		ins(op.MovTF, 0, 1, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 1,
		ins(op.AddLL, 2, 0, 1),
		ins(op.RetL, 0, 2, 0),
	)
	fn := prog.Functions[1]
	require.Equal(t, "add", fn.Name)
	require.Equal(t, 2, fn.Arity)
	require.Equal(t, 4, fn.FrameSize)
	require.Equal(t, 2, fn.Line)
	require.Equal(t, []string{"add"}, prog.Packages[0].Names)
}

func TestReturn(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []bytecode.Instruction
	}{
		{
			name:   "integer",
			source: "fn f() { return 3 }",
			want:   []bytecode.Instruction{ins(op.RetI, 0, 3, 0)},
		},
		{
			name:   "string",
			source: "fn f() { return 'x' }",
			want:   []bytecode.Instruction{ins(op.RetS, 0, 0, 0)},
		},
		{
			name:   "primitive",
			source: "fn f() { return nil }",
			want:   []bytecode.Instruction{ins(op.RetP, 0, tagNil, 0)},
		},
		{
			name:   "parameter",
			source: "fn f(a) { return a }",
			want:   []bytecode.Instruction{ins(op.RetL, 0, 0, 0)},
		},
		{
			name:   "no value",
			source: "fn f() { return }",
			want:   []bytecode.Instruction{ins(op.Ret0, 0, 0, 0)},
		},
		{
			name:   "empty body",
			source: "fn f() {}",
			want:   []bytecode.Instruction{ins(op.Ret0, 0, 0, 0)},
		},
		{
			name:   "nested return keeps implicit return",
			source: "fn f(a) {\nif a {\nreturn 1\n}\n}",
			want: []bytecode.Instruction{
				ins(op.IsFalseL, 0, 0, 0),
				jmp(2),
				ins(op.RetI, 0, 1, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "condition",
			source: "fn f(a) { return a == 1 }",
			want: []bytecode.Instruction{
				ins(op.NeqLI, 0, 1, 0),
				jmp(3),
				ins(op.RetP, 0, tagTrue, 0),
				jmp(2),
				ins(op.RetP, 0, tagFalse, 0),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, compile(t, tt.source), 1, tt.want...)
		})
	}
}

func TestCalls(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []bytecode.Instruction
	}{
		{
			name:   "top level",
			source: "fn f() {}\nf()",
			want: []bytecode.Instruction{
				ins(op.MovTF, 0, 1, 0),
				ins(op.MovLT, 0, 0, 0),
				ins(op.Call, 0, 0, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "arguments",
			source: "fn f(a, b) {}\nf(1, 'x')",
			want: []bytecode.Instruction{
				ins(op.MovTF, 0, 1, 0),
				ins(op.MovLT, 0, 0, 0),
				ins(op.MovLI, 1, 1, 0),
				ins(op.MovLS, 2, 0, 0),
				ins(op.Call, 0, 2, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "result",
			source: "fn f() { return 1 }\nlet a = f()",
			want: []bytecode.Instruction{
				ins(op.MovTF, 0, 1, 0),
				ins(op.MovLT, 0, 0, 0),
				ins(op.Call, 0, 0, 0),
				ins(op.MovTL, 1, 0, 0),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "local",
			source: "{\nfn f() {}\nf()\n}",
			want: []bytecode.Instruction{
				ins(op.MovLF, 0, 1, 0),
				ins(op.MovLL, 2, 0, 0),
				ins(op.Call, 2, 0, 1),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "result into local",
			source: "{\nfn f(x) { return x }\nlet a = 2\nlet b = f(a)\n}",
			want: []bytecode.Instruction{
				ins(op.MovLF, 0, 1, 0),
				ins(op.MovLI, 1, 2, 0),
				ins(op.MovLL, 3, 0, 0),
				ins(op.MovLL, 4, 1, 0),
				ins(op.Call, 3, 1, 2),
				ins(op.Ret0, 0, 0, 0),
			},
		},
		{
			name:   "anonymous",
			source: "let f = fn(x) { return x }",
			want: []bytecode.Instruction{
				ins(op.MovTF, 0, 1, 0),
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

func TestSiblingClosures(t *testing.T) {
	prog := compile(t, `{
let a = 1
let f = fn() { return a }
let g = fn() { return a }
}`)
	requireCode(t, prog, 0,
		ins(op.MovLI, 0, 1, 0),
		ins(op.MovLF, 1, 1, 0),
		ins(op.MovLF, 2, 2, 0),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.UpvalueClose, 1, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 1,
		ins(op.MovLU, 0, 0, 0),
		ins(op.RetL, 0, 0, 0),
	)
	requireCode(t, prog, 2,
		ins(op.MovLU, 0, 1, 0),
		ins(op.RetL, 0, 0, 0),
	)
	require.Equal(t, []bytecode.Upvalue{
		{Name: "a", Function: 0, Slot: 0},
		{Name: "a", Function: 0, Slot: 0},
	}, prog.Upvalues)
	require.Equal(t, []uint16{0}, prog.Functions[1].Upvalues)
	require.Equal(t, []uint16{1}, prog.Functions[2].Upvalues)
}

func TestUpvalueReusedWithinFunction(t *testing.T) {
	prog := compile(t, `{
let a = 1
let f = fn() {
	let b = a
	let c = a
}
}`)
	requireCode(t, prog, 1,
		ins(op.MovLU, 0, 0, 0),
		ins(op.MovLU, 1, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	require.Len(t, prog.Upvalues, 1)
}

func TestUpvalueAssign(t *testing.T) {
	prog := compile(t, `{
let a = 1
let f = fn() { a = 2 }
}`)
	requireCode(t, prog, 0,
		ins(op.MovLI, 0, 1, 0),
		ins(op.MovLF, 1, 1, 0),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 1,
		ins(op.MovUI, 0, 2, 0),
		ins(op.Ret0, 0, 0, 0),
	)
}

func TestReturnClosesUpvalues(t *testing.T) {
	prog := compile(t, `
fn outer() {
	let a = 1
	let f = fn() { return a }
	return f
}
`)
	requireCode(t, prog, 1,
		ins(op.MovLI, 0, 1, 0),
		ins(op.MovLF, 1, 2, 0),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.RetL, 0, 1, 0),
	)
	requireCode(t, prog, 2,
		ins(op.MovLU, 0, 0, 0),
		ins(op.RetL, 0, 0, 0),
	)
	require.Equal(t, uint16(1), prog.Upvalues[0].Function)
}

func TestEarlyReturnClosesUpvalues(t *testing.T) {
	prog := compile(t, `
fn outer(c) {
	let a = 1
	let f = fn() { return a }
	if c {
		return f
	}
}
`)
	requireCode(t, prog, 1,
		ins(op.MovLI, 1, 1, 0),
		ins(op.MovLF, 2, 2, 0),
		ins(op.IsFalseL, 0, 0, 0),
		jmp(3),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.RetL, 0, 2, 0),
		ins(op.UpvalueClose, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
}

func TestCaptureThroughIntermediateFunction(t *testing.T) {
	prog := compile(t, `
fn a() {
	let x = 1
	fn b() {
		fn c() { return x }
	}
}
`)
	require.Len(t, prog.Functions, 4)
	requireCode(t, prog, 3,
		ins(op.MovLU, 0, 0, 0),
		ins(op.RetL, 0, 0, 0),
	)
	require.Equal(t, bytecode.Upvalue{Name: "x", Function: 1, Slot: 0}, prog.Upvalues[0])
	require.Empty(t, prog.Functions[2].Upvalues)
}

func TestTopLevelFromFunction(t *testing.T) {
	prog := compile(t, `
let count = 0
fn bump() {
	count = count + 1
}
`)
	requireCode(t, prog, 1,
		ins(op.MovLT, 0, 0, 0),
		ins(op.AddLI, 0, 0, 1),
		ins(op.MovTL, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	require.Empty(t, prog.Upvalues)
}

func TestFunctionErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		code    errors.ErrorCode
		message string
		line    int
	}{
		{"duplicate parameter", "fn f(a, a) {}", errors.E3002, "Duplicate parameter `a`", 1},
		{"redefined function", "fn f() {}\nfn f() {}", errors.E3002, "Variable `f` is already defined", 2},
		{"return in top level block", "{\nreturn\n}", errors.E3005, "Cannot return from package top level", 2},
		{"missing body", "fn f()", errors.E2001, "Expected `{` to start block, found end of file", 1},
		{"bad parameter", "fn f(1) {}", errors.E2001, "Expected identifier in parameter list, found number", 1},
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
