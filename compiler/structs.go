package compiler

import (
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// structStatement compiles a struct definition with an optional list of
// fields, all defaulting to nil:
//
//	struct Point { x, y }
func (p *parser) structStatement() {
	structTok := p.tok
	p.next()
	name := p.expect(token.IDENT, "after `struct`")
	if p.prog.FindStruct(p.pkg, name.Literal) >= 0 {
		p.fail(errors.E3008, name, "Struct `%s` is already defined", name.Literal)
	}
	if p.frame.find(name.Literal) >= 0 || p.prog.Packages[p.pkg].TopLevel(name.Literal) >= 0 {
		p.fail(errors.E3002, name, "Variable `%s` is already defined", name.Literal)
	}
	def := &bytecode.StructDefinition{
		Name:        name.Literal,
		Package:     p.pkg,
		Source:      p.source,
		Line:        structTok.StartPosition.LineNumber(),
		Constructor: -1,
	}
	p.check(p.prog.AddStruct(def))
	if !p.accept(token.LBRACE) {
		return
	}
	for p.tok.Type == token.IDENT {
		fieldTok := p.tok
		field := p.addField(fieldTok.Literal)
		if def.FieldIndex(field) >= 0 {
			p.fail(errors.E3002, fieldTok, "Duplicate field `%s` in struct `%s`", fieldTok.Literal, def.Name)
		}
		def.Fields = append(def.Fields, field)
		def.Defaults = append(def.Defaults, value.Nil)
		p.next()
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "to close struct fields")
}

// findStruct returns the index of the struct named by tok in the current
// package.
func (p *parser) findStruct(tok token.Token) int {
	index := p.prog.FindStruct(p.pkg, tok.Literal)
	if index < 0 {
		var names []string
		for _, def := range p.prog.Structs {
			if def.Package == p.pkg {
				names = append(names, def.Name)
			}
		}
		err := p.errorAt(errors.E3006, tok, "Undefined struct `%s`", tok.Literal)
		panic(err.WithSuggestions(errors.SuggestSimilar(tok.Literal, names)))
	}
	return index
}

// instantiate compiles `new Name(args)` into slot. Without a constructor the
// argument list must be empty.
func (p *parser) instantiate(slot uint16) operand {
	p.next()
	name := p.expect(token.IDENT, "after `new`")
	index := p.findStruct(name)
	def := p.prog.Structs[index]
	p.emit(op.StructNew, slot, uint16(index), 0)

	if def.Constructor < 0 {
		p.expect(token.LPAREN, "after struct name")
		if p.tok.Type != token.RPAREN {
			p.fail(errors.E3009, p.tok, "Struct `%s` has no constructor and takes no arguments", def.Name)
		}
		p.next()
		return localOperand(slot)
	}

	open := p.tok
	count := len(p.frame.locals)
	base := uint16(count)
	arity := p.arguments(0)
	ctor := p.prog.Functions[def.Constructor]
	if int(arity)+1 != ctor.Arity {
		p.fail(errors.E3009, open, "Expected %d arguments to constructor of `%s`, found %d", ctor.Arity-1, def.Name, arity)
	}
	p.emit(op.StructCallConstructor, slot, base, arity)
	p.restore(count)
	return localOperand(slot)
}
