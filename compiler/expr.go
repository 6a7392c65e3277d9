package compiler

import (
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// precedence of binary operators, lowest first.
type precedence int

const (
	precNone precedence = iota
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEq
	precOrd
	precAdd
	precMul
)

func precedenceOf(typ token.Type) precedence {
	switch typ {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.BIT_OR:
		return precBitOr
	case token.BIT_XOR:
		return precBitXor
	case token.BIT_AND:
		return precBitAnd
	case token.EQ, token.NEQ:
		return precEq
	case token.LT, token.LE, token.GT, token.GE:
		return precOrd
	case token.ADD, token.SUB, token.CONCAT:
		return precAdd
	case token.MUL, token.DIV, token.MOD:
		return precMul
	}
	return precNone
}

// opcodes maps binary operators to the first member of their opcode family.
var opcodes = map[token.Type]op.Code{
	token.ADD:     op.AddLL,
	token.SUB:     op.SubLL,
	token.MUL:     op.MulLL,
	token.DIV:     op.DivLL,
	token.MOD:     op.ModLL,
	token.BIT_AND: op.BitAndLL,
	token.BIT_OR:  op.BitOrLL,
	token.BIT_XOR: op.BitXorLL,
	token.CONCAT:  op.ConcatLL,
	token.EQ:      op.EqLL,
	token.NEQ:     op.NeqLL,
	token.LT:      op.LtLL,
	token.LE:      op.LeLL,
	token.GT:      op.GtLL,
	token.GE:      op.GeLL,
}

// canStartExpr returns true if an expression may begin with typ.
func canStartExpr(typ token.Type) bool {
	switch typ {
	case token.IDENT, token.INTEGER, token.NUMBER, token.STRING, token.TRUE,
		token.FALSE, token.NIL, token.LPAREN, token.SUB, token.NOT,
		token.BIT_NOT, token.FN, token.NEW, token.SELF:
		return true
	}
	return false
}

// expr compiles an expression. slot is a reserved local the expression may
// use to hold its result, but the returned operand need not refer to it.
func (p *parser) expr(slot uint16) operand {
	return p.exprPrec(slot, precNone)
}

// exprPrec compiles the longest expression whose binary operators bind
// tighter than prec.
func (p *parser) exprPrec(slot uint16, prec precedence) operand {
	left := p.unary(slot)
	for {
		opTok := p.tok
		opPrec := precedenceOf(opTok.Type)
		if opPrec <= prec {
			return left
		}
		p.next()
		left = p.binaryLeft(slot, opTok, left)
		rightSlot := p.reserve()
		right := p.exprPrec(rightSlot, opPrec)
		left = p.binary(slot, rightSlot, opTok, left, right)
		p.free(1)
	}
}

// unary compiles a prefix operator applied to an operand, or an operand
// followed by its postfix operators.
func (p *parser) unary(slot uint16) operand {
	switch p.tok.Type {
	case token.SUB, token.NOT, token.BIT_NOT:
		opTok := p.tok
		p.next()
		return p.unaryOp(slot, opTok, p.unary(slot))
	}
	tok := p.tok
	o := p.postfix(slot, p.primary(slot))
	if o.kind == operandPackage {
		p.fail(errors.E3003, tok, "Cannot use package `%s` as a value", tok.Literal)
	}
	return o
}

func (p *parser) unaryOp(slot uint16, opTok token.Token, o operand) operand {
	if o.isConstant() {
		if folded, ok := p.foldUnary(opTok, o); ok {
			return folded
		}
		p.fail(errors.E3003, opTok, "Invalid operand to unary operator `%s`", opTok.Literal)
	}
	switch opTok.Type {
	case token.NOT:
		o = p.toLocal(slot, o)
		p.emit(op.IsTrueL, o.value, 0, 0)
		return jumpOperand(p.emit(op.Jmp, 0, 0, 0))
	case token.SUB, token.BIT_NOT:
		if o.kind != operandLocal {
			p.fail(errors.E3003, opTok, "Invalid operand to unary operator `%s`", opTok.Literal)
		}
		code := op.NegL
		if opTok.Type == token.BIT_NOT {
			code = op.BitNotL
		}
		p.emit(code, slot, o.value, 0)
		return localOperand(slot)
	}
	return o
}

// primary compiles a literal, identifier, parenthesised expression,
// anonymous function or struct instantiation.
func (p *parser) primary(slot uint16) operand {
	tok := p.tok
	switch tok.Type {
	case token.INTEGER:
		p.next()
		return integerOperand(tok.Integer)
	case token.NUMBER:
		p.next()
		return p.number(tok.Number)
	case token.STRING:
		p.next()
		return operand{kind: operandString, value: p.addString(tok.Value)}
	case token.TRUE:
		p.next()
		return primitiveOperand(value.True)
	case token.FALSE:
		p.next()
		return primitiveOperand(value.False)
	case token.NIL:
		p.next()
		return primitiveOperand(value.Nil)
	case token.IDENT, token.SELF:
		p.next()
		return p.identifier(slot, tok)
	case token.LPAREN:
		p.next()
		o := p.expr(slot)
		p.expect(token.RPAREN, "to close `(`")
		return o
	case token.FN:
		p.next()
		return operand{kind: operandFunction, value: p.function(tok, "", false)}
	case token.NEW:
		return p.instantiate(slot)
	}
	p.fail(errors.E2002, tok, "Expected expression, found %s", tok.Type.Describe())
	return operand{}
}

// identifier loads a variable. Upvalues and top level variables are copied
// into slot.
func (p *parser) identifier(slot uint16, tok token.Token) operand {
	r := p.resolve(tok.Literal)
	switch r.kind {
	case resolveLocal:
		return localOperand(r.index)
	case resolveUpvalue:
		p.emit(op.MovLU, slot, r.index, 0)
		o := localOperand(slot)
		o.self, o.selfArg = selfUpvalue, r.index
		return o
	case resolveTopLevel:
		return p.loadTopLevel(slot, r.index, r.pkg)
	case resolvePackage:
		return operand{kind: operandPackage, value: r.index}
	}
	if tok.Type == token.SELF {
		p.fail(errors.E3010, tok, "`self` used outside of a method")
	}
	p.undefined(tok)
	return operand{}
}

func (p *parser) loadTopLevel(slot, index, pkg uint16) operand {
	p.emit(op.MovLT, slot, index, pkg)
	o := localOperand(slot)
	o.self, o.selfArg, o.selfPkg = selfTopLevel, index, pkg
	return o
}

// postfix compiles the field accesses and calls following an operand.
func (p *parser) postfix(slot uint16, o operand) operand {
	for {
		switch p.tok.Type {
		case token.DOT:
			o = p.field(slot, o)
		case token.LPAREN:
			o = p.call(slot, o)
		default:
			return o
		}
	}
}

// field compiles `.name`, which reads a struct field, calls a method or
// reads a variable of an imported package.
func (p *parser) field(slot uint16, recv operand) operand {
	dot := p.tok
	p.next()
	name := p.expect(token.IDENT, "after `.`")
	if recv.kind == operandPackage {
		return p.packageMember(slot, recv.value, name)
	}
	if recv.kind != operandLocal {
		p.fail(errors.E3003, dot, "Attempt to index non-local")
	}
	field := p.addField(name.Literal)
	if p.tok.Type == token.LPAREN {
		return p.methodCall(slot, recv, field)
	}
	p.emit(op.StructField, slot, recv.value, field)
	return localOperand(slot)
}

// packageMember reads a top level variable of an imported package. Natives
// become constants so calls to them skip the load.
func (p *parser) packageMember(slot, pkg uint16, name token.Token) operand {
	pack := p.prog.Packages[pkg]
	index := pack.TopLevel(name.Literal)
	if index < 0 {
		err := p.errorAt(errors.E3007, name, "Undefined variable `%s` in package `%s`", name.Literal, pack.Name)
		panic(err.WithSuggestions(errors.SuggestSimilar(name.Literal, pack.Names)))
	}
	if v := pack.Values[index]; v.Kind == value.KindNative {
		return operand{kind: operandNative, value: uint16(v.Index)}
	}
	return p.loadTopLevel(slot, uint16(index), pkg)
}

// call compiles a call to callee. The callee is placed in a base slot
// followed by the arguments, and the result is written to slot.
func (p *parser) call(slot uint16, callee operand) operand {
	open := p.tok
	count := len(p.frame.locals)
	var base uint16
	if callee.kind == operandLocal && p.isTop(callee.value) {
		base = callee.value
	} else {
		switch callee.kind {
		case operandLocal, operandFunction, operandNative:
		default:
			p.fail(errors.E3003, open, "Attempt to call non-function")
		}
		base = p.reserve()
		p.discharge(op.MovLL, base, callee, 0)
	}
	arity := p.arguments(0)
	if callee.kind == operandNative {
		native := p.prog.Natives[callee.value]
		if native.Arity >= 0 && int(arity) != native.Arity {
			p.fail(errors.E3009, open, "Expected %d arguments to `%s`, found %d", native.Arity, native.Name, arity)
		}
	}
	p.emit(op.Call, base, arity, slot)
	p.restore(count)
	return localOperand(slot)
}

// methodCall compiles `recv.field(args)`. The method is read into a base
// slot and the receiver is passed as the first argument.
func (p *parser) methodCall(slot uint16, recv operand, field uint16) operand {
	count := len(p.frame.locals)
	var base uint16
	if p.isTop(recv.value) && recv.self != selfNone {
		// the receiver is a copy that can be loaded again
		base = recv.value
	} else {
		base = p.reserve()
	}
	p.emit(op.StructField, base, recv.value, field)
	self := p.reserve()
	switch recv.self {
	case selfUpvalue:
		p.emit(op.MovLU, self, recv.selfArg, 0)
	case selfTopLevel:
		p.emit(op.MovLT, self, recv.selfArg, recv.selfPkg)
	default:
		p.emit(op.MovLL, self, recv.value, 0)
	}
	arity := p.arguments(1)
	p.emit(op.Call, base, arity, slot)
	p.restore(count)
	return localOperand(slot)
}

// arguments compiles a parenthesised argument list into consecutive slots
// on top of the stack. arity counts arguments already placed.
func (p *parser) arguments(arity uint16) uint16 {
	open := p.expect(token.LPAREN, "before arguments")
	for p.tok.Type != token.RPAREN {
		slot := p.reserve()
		p.discharge(op.MovLL, slot, p.expr(slot), 0)
		if arity == 0xffff {
			p.fail(errors.E3013, open, "Too many arguments")
		}
		arity++
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "after arguments")
	return arity
}

// binaryLeft prepares the left operand of a binary operator before the
// right operand is compiled.
func (p *parser) binaryLeft(slot uint16, opTok token.Token, left operand) operand {
	switch opTok.Type {
	case token.AND, token.OR:
		if left.kind == operandLocal {
			return p.toJump(left)
		}
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return p.toLocal(slot, left)
	}
	return left
}

// binary folds or emits a binary operator, writing any result to slot.
func (p *parser) binary(slot, rightSlot uint16, opTok token.Token, left, right operand) operand {
	switch opTok.Type {
	case token.AND, token.OR:
		if folded, ok := foldLogical(opTok, left, right); ok {
			p.discardJumps(folded, left, right)
			return folded
		}
		if opTok.Type == token.AND {
			return p.and(left, right)
		}
		return p.or(left, right)
	case token.EQ, token.NEQ:
		right = p.toLocal(rightSlot, right)
		if equal, ok := p.foldEqual(left, right); ok {
			return boolOperand(equal == (opTok.Type == token.EQ))
		}
		return p.compare(opTok, left, right)
	case token.LT, token.LE, token.GT, token.GE:
		p.ensureOperands(opTok, left, right, operandInteger, operandNumber)
		if result, ok := p.foldOrder(opTok, left, right); ok {
			return boolOperand(result)
		}
		return p.compare(opTok, left, right)
	case token.CONCAT:
		p.ensureOperands(opTok, left, right, operandString)
		if left.kind == operandString && right.kind == operandString {
			return p.foldConcat(left, right)
		}
		code := op.ConcatLL
		if right.kind == operandString {
			code = op.ConcatLS
		} else if left.kind == operandString {
			code = op.ConcatSL
		}
		p.emit(code, slot, left.value, right.value)
		return localOperand(slot)
	}
	p.ensureOperands(opTok, left, right, operandInteger, operandNumber)
	if (opTok.Type == token.DIV || opTok.Type == token.MOD) && isNumeric(right) && p.numeric(right) == 0 {
		p.fail(errors.E3011, opTok, "Attempt to divide by 0")
	}
	if left.kind != operandLocal && right.kind != operandLocal {
		return p.foldArithmetic(opTok, left, right)
	}
	base := opcodes[opTok.Type]
	code := base + op.Code(right.kind)
	if left.kind != operandLocal {
		code = base + op.Code(left.kind) + 2
	}
	p.emit(code, slot, left.value, right.value)
	return localOperand(slot)
}

// discardJumps points the pending jumps of every operand dropped by a folded
// `&&` or `||` at the next instruction, where execution continues whichever
// way the condition went.
func (p *parser) discardJumps(folded operand, operands ...operand) {
	for _, o := range operands {
		if o.kind == operandJump && o != folded {
			p.jumps(int(o.value)).FalseCase(p.fn().Len())
		}
	}
}

// ensureOperands aborts the compilation unless both operands are locals or
// constants of the given kinds.
func (p *parser) ensureOperands(opTok token.Token, left, right operand, kinds ...operandKind) {
	valid := func(o operand) bool {
		if o.kind == operandLocal {
			return true
		}
		for _, k := range kinds {
			if o.kind == k {
				return true
			}
		}
		return false
	}
	if !valid(left) || !valid(right) {
		p.fail(errors.E3003, opTok, "Invalid operand to binary operator `%s`", opTok.Literal)
	}
}

// compare emits a comparison that cannot be folded. The emitted test is the
// inverse of the operator, so the JMP following it is taken when the
// comparison is false.
func (p *parser) compare(opTok token.Token, left, right operand) operand {
	code := op.Invert(opcodes[opTok.Type])
	if left.kind != operandLocal {
		left, right = right, left
		code = op.Mirror(code)
	}
	p.emit(code+op.Code(right.kind), left.value, right.value, 0)
	return jumpOperand(p.emit(op.Jmp, 0, 0, 0))
}

// and merges the jump lists of both sides of `&&`. Every jump in the result
// leads to the false case.
func (p *parser) and(left, right operand) operand {
	if right.kind == operandLocal {
		right = p.toJump(right)
	}
	rightList, leftList := p.jumps(int(right.value)), p.jumps(int(left.value))
	rightList.Append(leftList)
	rightList.SetType(int(right.value), bytecode.JumpAnd)
	rightList.SetType(int(left.value), bytecode.JumpAnd)
	return right
}

// or merges the jump lists of both sides of `||`. The left condition is
// inverted so it skips the right side when true, and the jumps of nested
// `&&` chains on the left are sent to the start of the right side.
func (p *parser) or(left, right operand) operand {
	if right.kind == operandLocal {
		right = p.toJump(right)
	}
	leftJump, rightJump := int(left.value), int(right.value)
	rightList, leftList := p.jumps(rightJump), p.jumps(leftJump)
	rightList.Append(leftList)
	leftList.InvertCondition(leftJump)
	for _, j := range leftList.Indices() {
		if leftList.Type(j) == bytecode.JumpAnd {
			leftList.Target(j, leftJump+1)
		} else {
			leftList.Target(j, rightJump+1)
		}
	}
	leftList.Target(leftJump, rightJump+1)
	rightList.SetType(leftJump, bytecode.JumpOr)
	rightList.SetType(rightJump, bytecode.JumpOr)
	return right
}
