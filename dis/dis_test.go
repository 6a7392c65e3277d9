package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/compiler"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	c, err := compiler.New(bytecode.NewProgram())
	require.NoError(t, err)
	_, err = c.Compile("test.hy", src)
	require.NoError(t, err)
	return c.Program()
}

func TestFunctionDisassembly(t *testing.T) {
	// Disable colors for consistent test output
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	prog := compile(t, "let a = 1\nlet b = a + 2.5\n")
	instructions, err := Disassemble(prog, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Print(instructions, &buf))

	expected := strings.TrimSpace(`
+--------+------+--------+----------+-----------+
| OFFSET | LINE | OPCODE | OPERANDS |   INFO    |
+--------+------+--------+----------+-----------+
|      0 |    1 | MOV_TI |  0, 1, 0 | main.a, 1 |
|      1 |    2 | MOV_LT |  0, 0, 0 | main.a    |
|      2 |    2 | ADD_LN |  0, 0, 0 | 2.5       |
|      3 |    2 | MOV_TL |  1, 0, 0 | main.b    |
|      4 |    2 | RET0   |          |           |
+--------+------+--------+----------+-----------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestAnnotations(t *testing.T) {
	prog := compile(t, `struct P { x }
fn (P) get() { return self.x }
{
let p = new P()
let s = 'hi'
let n = nil
let i = 0
while i < 3 {
	i = i + 1
}
let f = fn() { return s }
}`)
	instructions, err := Disassemble(prog, 0)
	require.NoError(t, err)

	notes := map[string]string{}
	for _, instr := range instructions {
		if _, ok := notes[instr.Name]; !ok {
			notes[instr.Name] = instr.Annotation
		}
	}
	require.Equal(t, "struct P", notes["STRUCT_NEW"])
	require.Equal(t, `"hi"`, notes["MOV_LS"])
	require.Equal(t, "nil", notes["MOV_LP"])
	require.Equal(t, "0", notes["MOV_LI"])
	require.Equal(t, "3", notes["GE_LI"])
	require.Equal(t, "-> 8", notes["JMP"])
	require.Equal(t, "-> 4", notes["LOOP"])
	require.Equal(t, "fn <anonymous>/0", notes["MOV_LF"])
	require.Equal(t, "^s", notes["UPVALUE_CLOSE"])

	method, err := Disassemble(prog, 1)
	require.NoError(t, err)
	require.Equal(t, op.StructField, method[0].Opcode)
	require.Equal(t, ".x", method[0].Annotation)
	require.Equal(t, []uint16{1, 0, 0}, method[0].Operands)
}

func TestNativeAnnotation(t *testing.T) {
	prog := bytecode.NewProgram()
	c, err := compiler.New(prog)
	require.NoError(t, err)
	io, err := prog.AddPackage(&bytecode.Package{Name: "io"})
	require.NoError(t, err)
	_, err = prog.AddNative(&bytecode.Native{Name: "print", Package: io, Arity: -1})
	require.NoError(t, err)
	_, err = c.Compile("test.hy", "import \"io\"\nio.print()")
	require.NoError(t, err)

	instructions, err := Disassemble(prog, 0)
	require.NoError(t, err)
	require.Equal(t, "MOV_LV", instructions[0].Name)
	require.Equal(t, "native io.print", instructions[0].Annotation)
}

func TestDisassembleErrors(t *testing.T) {
	prog := compile(t, "let a = 1")
	_, err := Disassemble(prog, 5)
	require.EqualError(t, err, "function index out of range: 5")

	prog.Functions[0].Emit(op.MovLS, 0, 9, 0, 1)
	_, err = Disassemble(prog, 0)
	require.EqualError(t, err, "offset 2: string index out of range: 9")
}

func TestFindFunction(t *testing.T) {
	prog := compile(t, "fn double(x) { return x * 2 }")
	index, ok := FindFunction(prog, "double")
	require.True(t, ok)
	require.Equal(t, uint16(1), index)
	_, ok = FindFunction(prog, "triple")
	require.False(t, ok)
}
