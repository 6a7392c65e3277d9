package builtins

import (
	"bytes"
	"testing"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/value"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	prog := bytecode.NewProgram()
	require.NoError(t, Register(prog, &bytes.Buffer{}))

	require.Len(t, prog.Natives, len(Docs()))
	io := prog.FindPackage("io")
	require.GreaterOrEqual(t, io, 0)
	require.Equal(t, 0, prog.Packages[io].TopLevel("print"))
	require.Equal(t, 1, prog.Packages[io].TopLevel("println"))

	math := prog.FindPackage("math")
	require.GreaterOrEqual(t, math, 0)
	for _, native := range prog.Natives {
		require.NotNil(t, native.Fn, native.Name)
	}
	sqrt := prog.Natives[5]
	require.Equal(t, "sqrt", sqrt.Name)
	require.Equal(t, uint16(math), sqrt.Package)
	require.Equal(t, 1, sqrt.Arity)
	require.Equal(t, -1, prog.Natives[0].Arity)
}

func TestRegisterTwice(t *testing.T) {
	prog := bytecode.NewProgram()
	require.NoError(t, Register(prog, &bytes.Buffer{}))
	require.EqualError(t, Register(prog, &bytes.Buffer{}), "native io.print is already defined")
}

func TestArity(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{nil, 0},
		{[]string{"x"}, 1},
		{[]string{"x", "y"}, 2},
		{[]string{"x", "y?"}, -1},
		{[]string{"values..."}, -1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FuncSpec{Args: tt.args}.Arity(), "%v", tt.args)
	}
}

func TestPrint(t *testing.T) {
	prog := bytecode.NewProgram()
	hello, err := prog.AddString("hello")
	require.NoError(t, err)
	var buf bytes.Buffer

	args := []value.Value{
		value.StringRef(uint32(hello)),
		value.Number(2.5),
		value.True,
		value.Nil,
	}
	result, err := Print(&buf)(prog, args)
	require.NoError(t, err)
	require.Equal(t, value.Nil, result)
	require.Equal(t, "hello 2.5 true nil", buf.String())

	buf.Reset()
	_, err = Println(&buf)(prog, args[:2])
	require.NoError(t, err)
	require.Equal(t, "hello 2.5\n", buf.String())

	buf.Reset()
	_, err = Println(&buf)(prog, nil)
	require.NoError(t, err)
	require.Equal(t, "\n", buf.String())
}

func TestMath(t *testing.T) {
	prog := bytecode.NewProgram()
	natives := Natives(nil)["math"]
	tests := []struct {
		name string
		args []float64
		want float64
	}{
		{"abs", []float64{-3}, 3},
		{"floor", []float64{2.7}, 2},
		{"ceil", []float64{2.1}, 3},
		{"sqrt", []float64{16}, 4},
		{"max", []float64{1, 5, 3}, 5},
		{"min", []float64{4, 2, 8}, 2},
		{"max", []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]value.Value, len(tt.args))
			for i, a := range tt.args {
				args[i] = value.Number(a)
			}
			result, err := natives[tt.name](prog, args)
			require.NoError(t, err)
			require.Equal(t, value.Number(tt.want), result)
		})
	}
}

func TestMathErrors(t *testing.T) {
	prog := bytecode.NewProgram()
	natives := Natives(nil)["math"]

	_, err := natives["abs"](prog, nil)
	require.EqualError(t, err, "abs: expected 1 argument, got 0")

	_, err = natives["sqrt"](prog, []value.Value{value.True})
	require.EqualError(t, err, "type error: sqrt() expected a number (true given)")

	_, err = natives["min"](prog, nil)
	require.EqualError(t, err, "min: expected at least 1 argument, got 0")

	_, err = natives["max"](prog, []value.Value{value.Number(1), value.Nil})
	require.EqualError(t, err, "type error: max() expected a number (nil given)")
}
