package compiler

import (
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// selfName is the name of the receiver local of methods.
const selfName = "self"

// fnStatement compiles a named function or method definition. A function
// defined at the top level of a file is a package variable, elsewhere it is
// a local.
func (p *parser) fnStatement() {
	fnTok := p.tok
	p.next()
	if p.tok.Type == token.LPAREN {
		p.methodDefinition(fnTok)
		return
	}
	name := p.expect(token.IDENT, "after `fn`")
	p.ensureUnique(name)
	if p.atTopLevel() {
		index := p.addTopLevel(name.Literal)
		fn := p.function(fnTok, name.Literal, false)
		p.emit(op.MovTF, index, fn, p.pkg)
		return
	}
	slot := p.declare(name.Literal)
	fn := p.function(fnTok, name.Literal, false)
	p.emit(op.MovLF, slot, fn, 0)
}

// function compiles a parameter list and body into a new function and
// returns its index. Methods receive `self` in slot 0, before their
// parameters, and count it in their arity.
func (p *parser) function(fnTok token.Token, name string, method bool) uint16 {
	fn := &bytecode.Function{
		Name:    name,
		Package: p.pkg,
		Source:  p.source,
		Line:    fnTok.StartPosition.LineNumber(),
	}
	index := p.addFunction(fn)
	p.frame = &frame{parent: p.frame, fn: fn, index: index, depth: 1}
	if method {
		p.declare(selfName)
	}

	open := p.expect(token.LPAREN, "before parameters")
	for p.tok.Type != token.RPAREN {
		param := p.expect(token.IDENT, "in parameter list")
		if p.frame.find(param.Literal) >= 0 {
			p.fail(errors.E3002, param, "Duplicate parameter `%s`", param.Literal)
		}
		p.declare(param.Literal)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "after parameters")
	if len(p.frame.locals) > 0xff {
		p.fail(errors.E3013, open, "Too many parameters")
	}
	fn.Arity = len(p.frame.locals)

	p.block()
	if !p.frame.returned {
		p.closeAll()
		p.emit(op.Ret0, 0, 0, 0)
	}
	p.frame = p.frame.parent
	return index
}

// methodDefinition compiles `fn (Struct) name(params) { ... }`. A method
// named `new` is the struct's constructor; any other method is added to the
// struct as a field defaulting to the function.
func (p *parser) methodDefinition(fnTok token.Token) {
	p.next()
	structTok := p.expect(token.IDENT, "naming the struct of a method")
	p.expect(token.RPAREN, "after struct name")
	def := p.prog.Structs[p.findStruct(structTok)]

	var name token.Token
	if p.tok.Type == token.NEW {
		name = p.tok
		p.next()
	} else {
		name = p.expect(token.IDENT, "naming the method")
	}
	if name.Type == token.NEW {
		if def.Constructor >= 0 {
			p.fail(errors.E3008, name, "Constructor already defined on struct `%s`", def.Name)
		}
		def.Constructor = int(p.function(fnTok, def.Name+".new", true))
		return
	}
	field := p.addField(name.Literal)
	if def.FieldIndex(field) >= 0 {
		p.fail(errors.E3002, name, "Struct `%s` already has a field named `%s`", def.Name, name.Literal)
	}
	fn := p.function(fnTok, def.Name+"."+name.Literal, true)
	def.Fields = append(def.Fields, field)
	def.Defaults = append(def.Defaults, value.Function(fn))
}
