package compiler

import (
	"math"
	"slices"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// local is a stack slot of the function being compiled. Temporaries have an
// empty name.
type local struct {
	name  string
	depth int
	// upvalues lists the upvalue records capturing this local, one per
	// nested function referencing it.
	upvalues []uint16
}

// loop tracks the pending `break` jumps of an enclosing loop.
type loop struct {
	breaks bytecode.JumpList
}

// frame is the compile time state of a function. Frames form a chain through
// parent, which is consulted only to capture upvalues.
type frame struct {
	parent *frame
	fn     *bytecode.Function
	index  uint16
	locals []local
	// depth is the current block depth. Top level code starts at 1.
	depth int
	loops []*loop
	// returned is set when the last statement of the function body is a
	// `return`, making the implicit RET0 unreachable.
	returned bool
}

// find returns the slot of the innermost local named name, or -1.
func (f *frame) find(name string) int {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return i
		}
	}
	return -1
}

// atTopLevel returns true when declarations create package variables rather
// than locals.
func (p *parser) atTopLevel() bool {
	return p.frame.parent == nil && p.frame.depth == 1
}

// reserve allocates an unnamed local on top of the stack.
func (p *parser) reserve() uint16 {
	f := p.frame
	if len(f.locals) > math.MaxUint16 {
		p.fail(errors.E3013, p.tok, "Too many locals in function")
	}
	f.locals = append(f.locals, local{depth: f.depth})
	if len(f.locals) > f.fn.FrameSize {
		f.fn.FrameSize = len(f.locals)
	}
	return uint16(len(f.locals) - 1)
}

// declare allocates a named local on top of the stack.
func (p *parser) declare(name string) uint16 {
	slot := p.reserve()
	p.frame.locals[slot].name = name
	return slot
}

// free releases the n most recently reserved temporaries.
func (p *parser) free(n int) {
	p.frame.locals = p.frame.locals[:len(p.frame.locals)-n]
}

// restore releases every local above the first count.
func (p *parser) restore(count int) {
	p.frame.locals = p.frame.locals[:count]
}

// isTop returns true if slot is the topmost allocated local.
func (p *parser) isTop(slot uint16) bool {
	return int(slot) == len(p.frame.locals)-1
}

func (p *parser) enterBlock() {
	p.frame.depth++
}

// exitBlock pops the locals of the innermost block, closing the upvalues
// that captured them. A function body ending in `return` has already closed
// them all.
func (p *parser) exitBlock() {
	f := p.frame
	for len(f.locals) > 0 {
		l := f.locals[len(f.locals)-1]
		if l.depth < f.depth {
			break
		}
		if !f.returned {
			p.closeUpvalues(l)
		}
		f.locals = f.locals[:len(f.locals)-1]
	}
	f.depth--
}

// closeAll closes the upvalues of every local of the current function, as
// needed before returning.
func (p *parser) closeAll() {
	f := p.frame
	for i := len(f.locals) - 1; i >= 0; i-- {
		p.closeUpvalues(f.locals[i])
	}
}

func (p *parser) closeUpvalues(l local) {
	for _, upv := range l.upvalues {
		p.emit(op.UpvalueClose, upv, 0, 0)
	}
}

// resolutionKind is the kind of storage an identifier resolves to.
type resolutionKind uint8

const (
	resolveLocal resolutionKind = iota
	resolveUpvalue
	resolveTopLevel
	resolvePackage
	resolveUndefined
)

// resolution is where an identifier lives. For top level variables, pkg is
// the owning package.
type resolution struct {
	kind  resolutionKind
	index uint16
	pkg   uint16
}

// resolve looks an identifier up in the fixed order: locals, captured
// upvalues, locals of enclosing functions, top level variables, imported
// packages.
func (p *parser) resolve(name string) resolution {
	f := p.frame
	if slot := f.find(name); slot >= 0 {
		return resolution{kind: resolveLocal, index: uint16(slot)}
	}
	for _, upv := range f.fn.Upvalues {
		if p.prog.Upvalues[upv].Name == name {
			return resolution{kind: resolveUpvalue, index: upv}
		}
	}
	for outer := f.parent; outer != nil; outer = outer.parent {
		slot := outer.find(name)
		if slot < 0 {
			continue
		}
		upv := p.check(p.prog.AddUpvalue(bytecode.Upvalue{
			Name:     name,
			Function: outer.index,
			Slot:     uint16(slot),
		}))
		outer.locals[slot].upvalues = append(outer.locals[slot].upvalues, upv)
		f.fn.Upvalues = append(f.fn.Upvalues, upv)
		return resolution{kind: resolveUpvalue, index: upv}
	}
	if idx := p.prog.Packages[p.pkg].TopLevel(name); idx >= 0 {
		return resolution{kind: resolveTopLevel, index: uint16(idx), pkg: p.pkg}
	}
	if pkg, ok := p.imports[name]; ok {
		return resolution{kind: resolvePackage, index: pkg}
	}
	return resolution{kind: resolveUndefined}
}

// visibleNames lists every name an identifier could have resolved to, for
// "did you mean" suggestions, innermost scope first.
func (p *parser) visibleNames() []string {
	var names []string
	for f := p.frame; f != nil; f = f.parent {
		for i := len(f.locals) - 1; i >= 0; i-- {
			if name := f.locals[i].name; name != "" {
				names = append(names, name)
			}
		}
	}
	names = append(names, p.prog.Packages[p.pkg].Names...)
	imports := make([]string, 0, len(p.imports))
	for name := range p.imports {
		imports = append(imports, name)
	}
	slices.Sort(imports)
	return append(names, imports...)
}

// undefined aborts the compilation for an identifier that did not resolve.
func (p *parser) undefined(tok token.Token) {
	err := p.errorAt(errors.E3001, tok, "Undefined variable `%s`", tok.Literal)
	panic(err.WithSuggestions(errors.SuggestSimilar(tok.Literal, p.visibleNames())))
}

// ensureUnique aborts the compilation if name cannot be declared: it is a
// local of the current function, a struct of the package, or, for top level
// code, a top level variable of the package.
func (p *parser) ensureUnique(tok token.Token) {
	name := tok.Literal
	taken := p.frame.find(name) >= 0 || p.prog.FindStruct(p.pkg, name) >= 0
	if p.frame.parent == nil && p.prog.Packages[p.pkg].TopLevel(name) >= 0 {
		taken = true
	}
	if taken {
		p.fail(errors.E3002, tok, "Variable `%s` is already defined", name)
	}
}

// addTopLevel declares a top level variable of the package.
func (p *parser) addTopLevel(name string) uint16 {
	pkg := p.prog.Packages[p.pkg]
	if len(pkg.Names) >= bytecode.MaxEntries {
		p.fail(errors.E3013, p.tok, "Too many top level variables in package `%s`", pkg.Name)
	}
	pkg.Names = append(pkg.Names, name)
	pkg.Values = append(pkg.Values, value.Nil)
	return uint16(len(pkg.Names) - 1)
}

// pushLoop starts tracking the breaks of a new innermost loop.
func (p *parser) pushLoop() *loop {
	l := &loop{breaks: p.jumps(-1)}
	p.frame.loops = append(p.frame.loops, l)
	return l
}

func (p *parser) popLoop() *loop {
	f := p.frame
	l := f.loops[len(f.loops)-1]
	f.loops = f.loops[:len(f.loops)-1]
	return l
}
