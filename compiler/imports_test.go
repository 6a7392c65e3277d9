package compiler

import (
	"testing"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/importer"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/stretchr/testify/require"
)

var mathPackage = importer.MemoryLoader{
	"math.hy": "let pi = 3\nfn double(x) { return x * 2 }",
}

func TestImport(t *testing.T) {
	c := newCompiler(t, WithLoader(mathPackage))
	_, err := c.Compile("main.hy", `import "math"
let r = math.double(math.pi)`)
	require.NoError(t, err)
	prog := c.Program()

	requireCode(t, prog, 0,
		ins(op.MovLF, 0, 1, 0),
		ins(op.Call, 0, 0, 0),
		ins(op.MovLT, 0, 1, 1),
		ins(op.MovLT, 1, 0, 1),
		ins(op.Call, 0, 1, 0),
		ins(op.MovTL, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 1,
		ins(op.MovTI, 0, 3, 1),
		ins(op.MovTF, 1, 2, 1),
		ins(op.Ret0, 0, 0, 0),
	)
	requireCode(t, prog, 2,
		ins(op.MulLI, 1, 0, 2),
		ins(op.RetL, 0, 1, 0),
	)

	require.Len(t, prog.Packages, 2)
	math := prog.Packages[1]
	require.Equal(t, "math", math.Name)
	require.Equal(t, "math.hy", math.Path)
	require.Equal(t, []string{"pi", "double"}, math.Names)
	require.Equal(t, []uint16{1}, math.Main)
	require.Equal(t, uint16(1), prog.Functions[2].Package)
	require.Equal(t, []string{"r"}, prog.Packages[0].Names)
}

func TestImportList(t *testing.T) {
	loader := importer.MemoryLoader{
		"a.hy": "let x = 1",
		"b.hy": "let y = 2",
	}
	c := newCompiler(t, WithLoader(loader))
	_, err := c.Compile("main.hy", `import ("a", "b")
let z = a.x + b.y`)
	require.NoError(t, err)
	prog := c.Program()
	require.Len(t, prog.Packages, 3)
	requireCode(t, prog, 0,
		ins(op.MovLF, 0, 1, 0),
		ins(op.Call, 0, 0, 0),
		ins(op.MovLF, 0, 2, 0),
		ins(op.Call, 0, 0, 0),
		ins(op.MovLT, 0, 0, 1),
		ins(op.MovLT, 1, 0, 2),
		ins(op.AddLL, 0, 0, 1),
		ins(op.MovTL, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
}

func TestImportReusedAcrossFiles(t *testing.T) {
	c := newCompiler(t, WithLoader(mathPackage))
	_, err := c.Compile("a.hy", `import "math"`)
	require.NoError(t, err)
	functions := len(c.Program().Functions)

	index, err := c.Compile("b.hy", "import \"math\"\nlet x = math.pi")
	require.NoError(t, err)
	prog := c.Program()
	require.Len(t, prog.Packages, 2)
	// only the file function of b.hy was added
	require.Len(t, prog.Functions, functions+1)
	// and the package's top level is not run a second time
	for _, in := range prog.Functions[index].Code {
		require.NotEqual(t, op.Call, in.Op())
	}
}

func TestImportsAreFileScoped(t *testing.T) {
	c := newCompiler(t, WithLoader(mathPackage))
	_, err := c.Compile("a.hy", `import "math"`)
	require.NoError(t, err)
	cerr := compileErrorWith(t, c, "b.hy", "let x = math.pi")
	require.Equal(t, errors.E3001, cerr.Code)
}

func TestNativeCall(t *testing.T) {
	c, prog := nativeCompiler(t)
	_, err := c.Compile("main.hy", `import "io"
io.print("hi", 1)
let p = io.print`)
	require.NoError(t, err)
	requireCode(t, prog, 0,
		ins(op.MovLV, 1, 0, 0),
		ins(op.MovLS, 2, 0, 0),
		ins(op.MovLI, 3, 1, 0),
		ins(op.Call, 1, 2, 0),
		ins(op.MovTV, 0, 0, 0),
		ins(op.Ret0, 0, 0, 0),
	)
}

func TestNativeArity(t *testing.T) {
	c, _ := nativeCompiler(t)
	err := compileErrorWith(t, c, "main.hy", "import \"io\"\nio.println()")
	require.Equal(t, errors.E3009, err.Code)
	require.Equal(t, "Expected 1 arguments to `println`, found 0", err.Message)
	require.Equal(t, 2, err.Line)
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		loader  importer.Loader
		source  string
		code    errors.ErrorCode
		message string
		line    int
	}{
		{"invalid path", mathPackage, `import "../a.b"`, errors.E2004, "Invalid package path `../a.b`", 1},
		{"empty path", mathPackage, `import ""`, errors.E2004, "Invalid package path ``", 1},
		{"duplicate", mathPackage, "import \"math\"\nimport \"math\"", errors.E3012, "Package `math` already imported", 2},
		{"no loader", nil, `import "math"`, errors.E3012, "Failed to find package `math`", 1},
		{"not found", importer.MemoryLoader{}, `import "math"`, errors.E3012, "Failed to find package `math`", 1},
		{"nested", mathPackage, "{\nimport \"math\"\n}", errors.E2001, "`import` is only allowed at the top level of a file", 2},
		{"missing path", mathPackage, "import 3", errors.E2001, "Expected string or `(` after `import`, found number", 1},
		{"undefined member", mathPackage, "import \"math\"\nlet x = math.tau", errors.E3007, "Undefined variable `tau` in package `math`", 2},
		{"package as value", mathPackage, "import \"math\"\nlet x = math", errors.E3003, "Cannot use package `math` as a value", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.loader != nil {
				opts = append(opts, WithLoader(tt.loader))
			}
			err := compileErrorWith(t, newCompiler(t, opts...), "main.hy", tt.source)
			require.Equal(t, tt.code, err.Code)
			require.Equal(t, tt.message, err.Message)
			require.Equal(t, tt.line, err.Line)
		})
	}
}

func TestImportNotFoundNote(t *testing.T) {
	c := newCompiler(t, WithLoader(importer.MemoryLoader{}))
	err := compileErrorWith(t, c, "main.hy", `import "math"`)
	require.Contains(t, err.Note, importer.ErrNotFound.Error())
}

func TestSelfImport(t *testing.T) {
	loader := importer.MemoryLoader{"loop.hy": `import "loop"`}
	c := newCompiler(t, WithLoader(loader))
	err := compileErrorWith(t, c, "main.hy", `import "loop"`)
	require.Equal(t, errors.E3012, err.Code)
	require.Equal(t, "Package `loop` cannot import itself", err.Message)
	require.Equal(t, "loop.hy", err.Filename)
}

func TestFailedImportRollsBack(t *testing.T) {
	loader := importer.MemoryLoader{"bad.hy": "let a = 1\nlet b = missing"}
	c := newCompiler(t, WithLoader(loader))
	err := compileErrorWith(t, c, "main.hy", `import "bad"`)
	require.Equal(t, errors.E3001, err.Code)
	require.Equal(t, "bad.hy", err.Filename)
	require.Equal(t, 2, err.Line)

	prog := c.Program()
	require.Len(t, prog.Packages, 1)
	require.Empty(t, prog.Functions)
	require.Empty(t, prog.Sources)
}

func TestCompletedImportSurvivesFailure(t *testing.T) {
	c := newCompiler(t, WithLoader(mathPackage))
	cerr := compileErrorWith(t, c, "main.hy", "struct P { x }\nlet a = 1\nimport \"math\"\nlet b = missing")
	require.Equal(t, errors.E3001, cerr.Code)
	require.Equal(t, 4, cerr.Line)

	prog := c.Program()
	math := prog.FindPackage("math")
	require.Equal(t, 1, math)
	require.Equal(t, []string{"pi", "double"}, prog.Packages[math].Names)
	require.Len(t, prog.Packages[math].Main, 1)
	main := prog.Packages[c.Main()]
	require.Empty(t, main.Names)
	require.Empty(t, main.Main)
	require.Empty(t, main.Sources)
	require.Equal(t, -1, prog.FindStruct(c.Main(), "P"))

	// The corrected file reuses the package instead of compiling it again.
	_, err := c.Compile("main.hy", "struct P { x }\nimport \"math\"\nlet b = math.pi")
	require.NoError(t, err)
	require.Len(t, prog.Packages, 2)
	require.Equal(t, []string{"b"}, main.Names)
	require.GreaterOrEqual(t, prog.FindStruct(c.Main(), "P"), 0)
}

func TestNestedImportFailureDiscardsBoth(t *testing.T) {
	loader := importer.MemoryLoader{
		"math.hy": mathPackage["math.hy"],
		"geo.hy":  "import \"math\"\nlet area = missing",
	}
	c := newCompiler(t, WithLoader(loader))
	err := compileErrorWith(t, c, "main.hy", `import "geo"`)
	require.Equal(t, errors.E3001, err.Code)
	require.Equal(t, "geo.hy", err.Filename)

	prog := c.Program()
	require.Len(t, prog.Packages, 1)
	require.Equal(t, -1, prog.FindPackage("math"))
	require.Empty(t, prog.Functions)
}

func nativeCompiler(t *testing.T) (*Compiler, *bytecode.Program) {
	t.Helper()
	prog := bytecode.NewProgram()
	c, err := New(prog)
	require.NoError(t, err)
	io, err := prog.AddPackage(&bytecode.Package{Name: "io"})
	require.NoError(t, err)
	_, err = prog.AddNative(&bytecode.Native{Name: "print", Package: io, Arity: -1})
	require.NoError(t, err)
	_, err = prog.AddNative(&bytecode.Native{Name: "println", Package: io, Arity: 1})
	require.NoError(t, err)
	return c, prog
}

func compileErrorWith(t *testing.T, c *Compiler, file, source string) *errors.CompileError {
	t.Helper()
	_, err := c.Compile(file, source)
	require.Error(t, err)
	var cerr *errors.CompileError
	require.ErrorAs(t, err, &cerr)
	return cerr
}
