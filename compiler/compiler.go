// Package compiler turns Hydrogen source code directly into bytecode, in a
// single pass and without building a syntax tree.
//
// # Operands
//
// Every expression compiles to an operand describing where its value lives:
// a local slot, a constant, or a pending conditional jump. Operators pick the
// opcode variant matching the kinds of their operands, and operations over
// two constants are folded away. An operand only becomes an instruction when
// it is discharged into a destination (a local, an upvalue, a top level
// variable, a struct field or a return).
//
// # Jump Lists
//
// Conditions compile to an inverted comparison followed by a JMP that is
// taken when the condition fails. Pending jumps are linked into lists through
// their own arguments (see bytecode.JumpList) and patched once the address
// they lead to is known. `&&` and `||` chains merge the lists of both sides.
//
// # Scopes
//
// Each function being compiled has a frame holding its locals. Identifiers
// resolve, in order, to a local of the current function, an upvalue the
// function already captured, a local of an enclosing function (captured as a
// new upvalue), a top level variable of the package, an imported package.
//
// # Errors
//
// Any error aborts the file being compiled. Errors are raised as a panic
// carrying an *errors.CompileError and recovered by Compile, which discards
// the records of the file. Packages the file finished importing before the
// error are kept.
package compiler

import (
	stderrors "errors"
	"fmt"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/importer"
	"github.com/hydrogen-lang/hydrogen/internal/lexer"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
)

// MainPackage is the name of the package files are compiled into unless they
// are imported.
const MainPackage = "main"

// Compiler compiles source files into a shared program.
type Compiler struct {
	prog   *bytecode.Program
	loader importer.Loader

	// depth counts the files being compiled, 1 for the file passed to
	// CompileInto.
	depth int
	// committed is the program state after the last import completed by
	// the file passed to CompileInto.
	committed bytecode.Mark
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLoader sets the loader used to read imported packages. Without a
// loader only native packages can be imported.
func WithLoader(loader importer.Loader) Option {
	return func(c *Compiler) {
		c.loader = loader
	}
}

// New returns a Compiler writing into prog. The main package is created if
// the program does not have one yet.
func New(prog *bytecode.Program, opts ...Option) (*Compiler, error) {
	c := &Compiler{prog: prog}
	for _, opt := range opts {
		opt(c)
	}
	if prog.FindPackage(MainPackage) < 0 {
		if _, err := prog.AddPackage(&bytecode.Package{Name: MainPackage}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Program returns the program being compiled into.
func (c *Compiler) Program() *bytecode.Program {
	return c.prog
}

// Main returns the index of the main package.
func (c *Compiler) Main() uint16 {
	return uint16(c.prog.FindPackage(MainPackage))
}

// Compile compiles a file into the main package and returns the index of the
// function holding the file's top level code.
func (c *Compiler) Compile(file, source string) (uint16, error) {
	return c.CompileInto(c.Main(), file, source)
}

// CompileInto compiles a file into the given package. On error the records
// created while compiling the file are discarded, except for the packages
// it had finished importing.
func (c *Compiler) CompileInto(pkg uint16, file, source string) (index uint16, err error) {
	if int(pkg) >= len(c.prog.Packages) {
		return 0, fmt.Errorf("compile %s: unknown package %d", file, pkg)
	}
	start := c.prog.Mark()
	c.committed = start
	defer func() {
		if r := recover(); r != nil {
			cerr, ok := r.(*errors.CompileError)
			if !ok {
				panic(r)
			}
			c.prog.Truncate(c.committed)
			c.prog.Detach(start, int(pkg))
			err = cerr
		}
	}()
	return c.compileFile(pkg, file, source), nil
}

// compileFile compiles a file's top level into a new function. Errors are
// raised as panics.
func (c *Compiler) compileFile(pkg uint16, file, source string) uint16 {
	c.depth++
	defer func() { c.depth-- }()
	p := &parser{
		c:       c,
		prog:    c.prog,
		lex:     lexer.New(source, lexer.WithFile(file)),
		file:    file,
		pkg:     pkg,
		imports: map[string]uint16{},
	}
	p.source = p.check(c.prog.AddSource(file, source))
	pack := c.prog.Packages[pkg]
	pack.Sources = append(pack.Sources, p.source)

	fn := &bytecode.Function{Name: file, Package: pkg, Source: p.source, Line: 1}
	index := p.check(c.prog.AddFunction(fn))
	p.frame = &frame{fn: fn, index: index, depth: 1}
	pack.Main = append(pack.Main, index)

	p.next()
	for p.tok.Type != token.EOF {
		p.statement()
	}
	p.emit(op.Ret0, 0, 0, 0)
	return index
}

// parser holds the state of the compilation of one file.
type parser struct {
	c    *Compiler
	prog *bytecode.Program
	lex  *lexer.Lexer
	file string

	// tok is the lookahead token; line is the line of the last token
	// consumed, recorded against emitted instructions.
	tok  token.Token
	line int

	source uint16
	pkg    uint16
	frame  *frame

	// imports maps the names of packages imported by this file to their
	// index.
	imports map[string]uint16
}

// next consumes the lookahead token.
func (p *parser) next() {
	if p.tok.Type != "" {
		p.line = p.tok.StartPosition.LineNumber()
	}
	tok, err := p.lex.Next()
	if err != nil {
		var cerr *errors.CompileError
		if stderrors.As(err, &cerr) {
			panic(cerr)
		}
		panic(errors.New(errors.E1001, p.location(p.tok), "%s", err.Error()))
	}
	p.tok = tok
}

// accept consumes the lookahead token if it has the given type.
func (p *parser) accept(typ token.Type) bool {
	if p.tok.Type != typ {
		return false
	}
	p.next()
	return true
}

// expect consumes the lookahead token, which must have the given type.
// context completes the error message, as in "Expected `)` after arguments".
func (p *parser) expect(typ token.Type, context string) token.Token {
	if p.tok.Type != typ {
		msg := "Expected " + typ.Describe()
		if context != "" {
			msg += " " + context
		}
		p.fail(errors.E2001, p.tok, "%s, found %s", msg, p.tok.Type.Describe())
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *parser) location(tok token.Token) errors.SourceLocation {
	return errors.SourceLocation{
		Filename: p.file,
		Line:     tok.StartPosition.LineNumber(),
		Column:   tok.StartPosition.ColumnNumber(),
		Source:   p.lex.LineText(tok.StartPosition),
	}
}

// errorAt builds an error pointing at tok.
func (p *parser) errorAt(code errors.ErrorCode, tok token.Token, format string, args ...any) *errors.CompileError {
	return errors.New(code, p.location(tok), format, args...).WithSpan(len(tok.Literal))
}

// fail aborts the compilation with an error pointing at tok.
func (p *parser) fail(code errors.ErrorCode, tok token.Token, format string, args ...any) {
	panic(p.errorAt(code, tok, format, args...))
}

// check aborts the compilation if a program table is full.
func (p *parser) check(index uint16, err error) uint16 {
	if err != nil {
		panic(p.errorAt(errors.E3013, p.tok, "Too many entries: %s", err.Error()))
	}
	return index
}

// fn returns the function being compiled.
func (p *parser) fn() *bytecode.Function {
	return p.frame.fn
}

// emit appends an instruction to the current function.
func (p *parser) emit(code op.Code, arg1, arg2, arg3 uint16) int {
	return p.fn().Emit(code, arg1, arg2, arg3, p.line)
}

func (p *parser) jumps(head int) bytecode.JumpList {
	return p.fn().Jumps(head)
}

func (p *parser) addNumber(f float64) uint16 {
	return p.check(p.prog.AddNumber(f))
}

func (p *parser) addString(s string) uint16 {
	return p.check(p.prog.AddString(s))
}

func (p *parser) addField(name string) uint16 {
	return p.check(p.prog.AddField(name))
}

func (p *parser) addFunction(fn *bytecode.Function) uint16 {
	return p.check(p.prog.AddFunction(fn))
}
