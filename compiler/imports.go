package compiler

import (
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/importer"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
)

// importStatement compiles `import "path"` or `import ("a", "b")`. Imports
// are only allowed at the top level of a file.
func (p *parser) importStatement() {
	importTok := p.tok
	if !p.atTopLevel() {
		p.fail(errors.E2001, importTok, "`import` is only allowed at the top level of a file")
	}
	p.next()
	if !p.accept(token.LPAREN) {
		p.importPath(p.expect(token.STRING, "or `(` after `import`"))
		return
	}
	p.importPath(p.expect(token.STRING, "after `(`"))
	for p.accept(token.COMMA) && p.tok.Type == token.STRING {
		p.importPath(p.tok)
		p.next()
	}
	p.expect(token.RPAREN, "to close import list")
}

// importPath binds the package named by a path string to the file's
// imports. A package already present in the program, such as a native
// package or one imported by another file, is reused; otherwise its source
// is loaded and compiled into a new package, and a call to the package's
// entry function is emitted.
func (p *parser) importPath(tok token.Token) {
	path := tok.Value
	if !importer.Valid(path) {
		p.fail(errors.E2004, tok, "Invalid package path `%s`", path)
	}
	name := importer.Name(path)
	if _, ok := p.imports[name]; ok {
		p.fail(errors.E3012, tok, "Package `%s` already imported", name)
	}
	if index := p.prog.FindPackage(name); index >= 0 {
		if uint16(index) == p.pkg {
			p.fail(errors.E3012, tok, "Package `%s` cannot import itself", name)
		}
		p.imports[name] = uint16(index)
		return
	}

	if p.c.loader == nil {
		p.fail(errors.E3012, tok, "Failed to find package `%s`", name)
	}
	src, err := p.c.loader.Load(p.file, path)
	if err != nil {
		panic(p.errorAt(errors.E3012, tok, "Failed to find package `%s`", name).WithNote(err.Error()))
	}
	index := p.check(p.prog.AddPackage(&bytecode.Package{Name: name, Path: src.Path}))
	p.imports[name] = index
	entry := p.c.compileFile(index, src.Path, src.Contents)
	if p.c.depth == 1 {
		p.c.committed = p.prog.Mark()
	}

	// Run the package's top level before anything that follows the import.
	slot := p.reserve()
	p.emit(op.MovLF, slot, entry, 0)
	p.emit(op.Call, slot, 0, slot)
	p.free(1)
}
