package compiler

import (
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
)

func (p *parser) statement() {
	p.frame.returned = false
	switch p.tok.Type {
	case token.LET:
		p.letStatement()
	case token.IF:
		p.ifStatement()
	case token.WHILE:
		p.whileStatement()
	case token.LOOP:
		p.loopStatement()
	case token.BREAK:
		p.breakStatement()
	case token.FN:
		p.fnStatement()
	case token.RETURN:
		p.returnStatement()
	case token.IMPORT:
		p.importStatement()
	case token.STRUCT:
		p.structStatement()
	case token.LBRACE:
		p.block()
	case token.IDENT, token.SELF:
		p.assignmentOrCall()
	case token.FOR:
		p.fail(errors.E2001, p.tok, "`for` loops are not supported, use `while` or `loop`")
	default:
		p.fail(errors.E2001, p.tok, "Unexpected %s, expected a statement", p.tok.Type.Describe())
	}
}

// block compiles a brace delimited list of statements in a new scope.
func (p *parser) block() {
	open := p.expect(token.LBRACE, "to start block")
	p.enterBlock()
	for p.tok.Type != token.RBRACE {
		if p.tok.Type == token.EOF {
			p.fail(errors.E2001, open, "Expected `}` to close block opened here")
		}
		p.statement()
	}
	p.exitBlock()
	p.next()
}

// letStatement declares a variable. At the top level of a file the variable
// belongs to the package, otherwise it is a local. A local's name is bound
// after its initialiser, so the initialiser cannot refer to it.
func (p *parser) letStatement() {
	p.next()
	name := p.expect(token.IDENT, "after `let`")
	p.ensureUnique(name)
	p.expect(token.ASSIGN, "after variable name")
	if p.atTopLevel() {
		index := p.addTopLevel(name.Literal)
		slot := p.reserve()
		p.discharge(op.MovTL, index, p.expr(slot), p.pkg)
		p.free(1)
		return
	}
	slot := p.reserve()
	p.discharge(op.MovLL, slot, p.expr(slot), 0)
	p.frame.locals[slot].name = name.Literal
}

// compoundOperators maps compound assignment tokens to their operator.
var compoundOperators = map[token.Type]token.Type{
	token.ADD_ASSIGN: token.ADD,
	token.SUB_ASSIGN: token.SUB,
	token.MUL_ASSIGN: token.MUL,
	token.DIV_ASSIGN: token.DIV,
	token.MOD_ASSIGN: token.MOD,
}

// assignmentOrCall compiles a statement starting with an identifier: an
// assignment to a variable or struct field, or a call.
//
// The target is compiled as an expression first. If an assignment follows,
// the instruction that loaded the target is replaced by the matching store.
func (p *parser) assignmentOrCall() {
	first := p.tok
	fn := p.fn()
	start := fn.Len()
	count := len(p.frame.locals)
	slot := p.reserve()
	target := p.postfix(slot, p.primary(slot))

	switch {
	case p.tok.Type == token.ASSIGN:
		p.next()
		p.assign(first, start, slot, target, token.Token{})
	case compoundOperators[p.tok.Type] != "":
		opTok := p.tok
		opTok.Type = compoundOperators[opTok.Type]
		p.next()
		p.assign(first, start, slot, target, opTok)
	default:
		last, ok := fn.Last()
		if !ok || fn.Len() == start || last.Op() != op.Call {
			p.fail(errors.E2001, p.tok, "Expected `=` or `(` after identifier, found %s", p.tok.Type.Describe())
		}
	}
	p.restore(count)
}

// assign compiles the right hand side of an assignment to target. For a
// compound assignment, opTok is the arithmetic operator applied to the
// current value.
func (p *parser) assign(first token.Token, start int, slot uint16, target operand, opTok token.Token) {
	fn := p.fn()
	compound := opTok.Type != ""
	if last, ok := fn.Last(); ok && fn.Len() > start && last.Arg(1) == slot {
		if base, dest, arg3, ok := storeFor(last); ok {
			temp := slot
			if base == op.StructSetL {
				// the struct may live in slot
				temp = p.reserve()
			}
			var v operand
			if compound {
				fn.Code[fn.Len()-1] = last.With(1, temp)
				v = p.compoundValue(temp, temp, opTok)
			} else {
				fn.Truncate(fn.Len() - 1)
				v = p.expr(temp)
			}
			p.discharge(base, dest, v, arg3)
			return
		}
	}
	if fn.Len() > start || target.kind != operandLocal {
		p.fail(errors.E3014, first, "Cannot assign to this expression")
	}
	var v operand
	if compound {
		v = p.compoundValue(slot, target.value, opTok)
	} else {
		v = p.expr(slot)
	}
	p.storeLocal(target.value, slot, v)
}

// storeFor returns the store matching the instruction that loaded an
// assignment target: its opcode family and first and third arguments.
func storeFor(load bytecode.Instruction) (base op.Code, dest, arg3 uint16, ok bool) {
	switch load.Op() {
	case op.MovLT:
		return op.MovTL, load.Arg(2), load.Arg(3), true
	case op.MovLU:
		return op.MovUL, load.Arg(2), 0, true
	case op.StructField:
		return op.StructSetL, load.Arg(3), load.Arg(2), true
	}
	return 0, 0, 0, false
}

// compoundValue compiles the right hand side of a compound assignment and
// applies the operator to the current value, held in the local current.
// The result is written to slot.
func (p *parser) compoundValue(slot, current uint16, opTok token.Token) operand {
	rightSlot := p.reserve()
	right := p.expr(rightSlot)
	result := p.binary(slot, rightSlot, opTok, localOperand(current), right)
	p.free(1)
	return result
}

// storeLocal stores v, compiled with temp as its result slot, into the local
// dest. When the last instruction computed v into temp it is retargeted to
// write dest directly.
func (p *parser) storeLocal(dest, temp uint16, v operand) {
	fn := p.fn()
	if last, ok := fn.Last(); ok && v.kind == operandLocal && v.value == temp {
		switch {
		case writesFirstArg(last.Op()) && last.Arg(1) == temp:
			fn.Code[fn.Len()-1] = last.With(1, dest)
			return
		case last.Op() == op.Call && last.Arg(3) == temp:
			fn.Code[fn.Len()-1] = last.With(3, dest)
			return
		}
	}
	p.discharge(op.MovLL, dest, v, 0)
}

// writesFirstArg returns true for instructions that read all their operands
// before writing their result to their first argument.
func writesFirstArg(code op.Code) bool {
	switch {
	case code >= op.AddLL && code <= op.BitNotL:
		return true
	case code >= op.MovLL && code <= op.MovLV:
		return true
	case code == op.MovLU, code == op.MovLT, code == op.StructField:
		return true
	}
	return false
}

// returnStatement compiles `return`, with or without a value. Upvalues of
// the function's locals are closed before returning.
func (p *parser) returnStatement() {
	tok := p.tok
	if p.frame.parent == nil {
		p.fail(errors.E3005, tok, "Cannot return from package top level")
	}
	p.next()
	p.frame.returned = p.frame.depth == 2
	if !canStartExpr(p.tok.Type) {
		p.closeAll()
		p.emit(op.Ret0, 0, 0, 0)
		return
	}
	slot := p.reserve()
	v := p.expr(slot)
	p.free(1)
	p.closeAll()
	p.discharge(op.RetL, 0, v, 0)
}
