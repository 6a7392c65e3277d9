package compiler

import (
	"math"

	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/value"
)

// foldArithmetic evaluates an arithmetic or bitwise operator over two
// integer or number constants.
//
// Integers are computed in 32 bits and become numbers when the result leaves
// the 16-bit range. Division always produces a number. Bitwise operators
// truncate numbers to 32-bit integers.
func (p *parser) foldArithmetic(opTok token.Token, left, right operand) operand {
	if left.kind == operandInteger && right.kind == operandInteger {
		a, b := int64(left.integer()), int64(right.integer())
		switch opTok.Type {
		case token.ADD:
			return p.integerOrNumber(a + b)
		case token.SUB:
			return p.integerOrNumber(a - b)
		case token.MUL:
			return p.integerOrNumber(a * b)
		case token.DIV:
			if b == 0 {
				p.fail(errors.E3011, opTok, "Attempt to divide by 0")
			}
			return p.number(float64(a) / float64(b))
		case token.MOD:
			if b == 0 {
				p.fail(errors.E3011, opTok, "Attempt to divide by 0")
			}
			return p.integerOrNumber(a % b)
		}
	}
	switch opTok.Type {
	case token.BIT_AND, token.BIT_OR, token.BIT_XOR:
		a, b := truncate(p.numeric(left)), truncate(p.numeric(right))
		switch opTok.Type {
		case token.BIT_AND:
			return p.integerOrNumber(int64(a & b))
		case token.BIT_OR:
			return p.integerOrNumber(int64(a | b))
		default:
			return p.integerOrNumber(int64(a ^ b))
		}
	}
	a, b := p.numeric(left), p.numeric(right)
	switch opTok.Type {
	case token.ADD:
		return p.number(a + b)
	case token.SUB:
		return p.number(a - b)
	case token.MUL:
		return p.number(a * b)
	case token.DIV:
		return p.number(a / b)
	default:
		return p.number(math.Mod(a, b))
	}
}

// truncate converts a number to a 32-bit integer for bitwise operators.
func truncate(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

// foldEqual decides `==` at compile time. Two constants are equal only if
// they are of the same kind and value, except integers and numbers which
// compare numerically. A local is equal to itself. ok is false when the
// result depends on runtime values.
func (p *parser) foldEqual(left, right operand) (equal, ok bool) {
	if left.kind == operandJump || right.kind == operandJump {
		return false, false
	}
	if left.kind == operandLocal || right.kind == operandLocal {
		if left.kind == right.kind && left.value == right.value {
			return true, true
		}
		return false, false
	}
	if isNumeric(left) && isNumeric(right) {
		return p.numeric(left) == p.numeric(right), true
	}
	return left.kind == right.kind && left.value == right.value, true
}

// foldOrder decides an ordering operator at compile time. A local compared
// with itself uses the reflexive truth table.
func (p *parser) foldOrder(opTok token.Token, left, right operand) (result, ok bool) {
	if left.kind == operandLocal && right.kind == operandLocal {
		if left.value != right.value {
			return false, false
		}
		return opTok.Type == token.LE || opTok.Type == token.GE, true
	}
	if !isNumeric(left) || !isNumeric(right) {
		return false, false
	}
	a, b := p.numeric(left), p.numeric(right)
	switch opTok.Type {
	case token.LT:
		return a < b, true
	case token.LE:
		return a <= b, true
	case token.GT:
		return a > b, true
	default:
		return a >= b, true
	}
}

// foldLogical folds `&&` and `||` when at least one side is a constant.
func foldLogical(opTok token.Token, left, right operand) (operand, bool) {
	and := opTok.Type == token.AND
	switch {
	case left.isConstant() && right.isConstant():
		if and {
			return boolOperand(left.isTrue() && right.isTrue()), true
		}
		return boolOperand(left.isTrue() || right.isTrue()), true
	case left.isConstant():
		return foldLogicalConstant(and, left, right), true
	case right.isConstant():
		return foldLogicalConstant(and, right, left), true
	}
	return operand{}, false
}

// foldLogicalConstant folds an `&&` or `||` between the constant c and a
// runtime operand.
func foldLogicalConstant(and bool, c, other operand) operand {
	if and && !c.isTrue() {
		return boolOperand(false)
	}
	if !and && c.isTrue() {
		return boolOperand(true)
	}
	return other
}

// foldConcat joins two string constants.
func (p *parser) foldConcat(left, right operand) operand {
	s := p.prog.Strings[left.value] + p.prog.Strings[right.value]
	return operand{kind: operandString, value: p.addString(s)}
}

// foldUnary evaluates a unary operator over a constant. ok is false if the
// operator cannot be applied to the constant.
func (p *parser) foldUnary(opTok token.Token, o operand) (operand, bool) {
	switch opTok.Type {
	case token.SUB:
		switch o.kind {
		case operandInteger:
			return p.integerOrNumber(-int64(o.integer())), true
		case operandNumber:
			return p.number(-p.numeric(o)), true
		}
	case token.BIT_NOT:
		if isNumeric(o) {
			return p.integerOrNumber(int64(^truncate(p.numeric(o)))), true
		}
	case token.NOT:
		return primitiveOperand(value.Bool(!o.isTrue())), true
	}
	return operand{}, false
}

func isNumeric(o operand) bool {
	return o.kind == operandInteger || o.kind == operandNumber
}
