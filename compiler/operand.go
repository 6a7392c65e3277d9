package compiler

import (
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// operandKind is the kind of an operand. The kinds from local to native are
// in the same order as the members of each opcode family, so adding a kind
// to the first member of a family selects the matching variant.
type operandKind uint8

const (
	operandLocal operandKind = iota
	operandInteger
	operandNumber
	operandString
	operandPrimitive
	operandFunction
	operandNative
	operandJump
	operandPackage
)

// selfKind records where a local operand was loaded from, so the value can
// be loaded again as the receiver of a method call.
type selfKind uint8

const (
	selfNone selfKind = iota
	selfUpvalue
	selfTopLevel
)

// operand describes where the value of a compiled expression lives.
//
// The meaning of value depends on kind: a slot for locals, the bits of an
// int16 for integers, a table index for numbers, strings, functions, natives
// and packages, a primitive tag, or the index of the JMP instruction at the
// head of a jump list.
type operand struct {
	kind  operandKind
	value uint16

	self    selfKind
	selfArg uint16
	selfPkg uint16
}

func localOperand(slot uint16) operand {
	return operand{kind: operandLocal, value: slot}
}

func integerOperand(i int16) operand {
	return operand{kind: operandInteger, value: uint16(i)}
}

func primitiveOperand(v value.Value) operand {
	return operand{kind: operandPrimitive, value: uint16(v.Kind)}
}

func boolOperand(b bool) operand {
	return primitiveOperand(value.Bool(b))
}

func jumpOperand(jump int) operand {
	return operand{kind: operandJump, value: uint16(jump)}
}

func (o operand) integer() int16 {
	return int16(o.value)
}

func (o operand) isConstant() bool {
	return o.kind != operandLocal && o.kind != operandJump && o.kind != operandPackage
}

// isFalse returns true for the constants nil and false.
func (o operand) isFalse() bool {
	return o.kind == operandPrimitive && value.Kind(o.value) != value.KindTrue
}

// isTrue returns true for constants other than nil and false.
func (o operand) isTrue() bool {
	return o.isConstant() && !o.isFalse()
}

// number returns an operand for a floating point constant.
func (p *parser) number(f float64) operand {
	return operand{kind: operandNumber, value: p.addNumber(f)}
}

// integerOrNumber returns an integer operand if i fits in 16 bits, and a
// number operand otherwise.
func (p *parser) integerOrNumber(i int64) operand {
	if i >= -32768 && i <= 32767 {
		return integerOperand(int16(i))
	}
	return p.number(float64(i))
}

// numeric returns the value of an integer or number constant.
func (p *parser) numeric(o operand) float64 {
	if o.kind == operandInteger {
		return float64(o.integer())
	}
	return p.prog.Numbers[o.value]
}

// discharge emits the instruction storing o into a destination. base is the
// first member of a store family (MOV_LL, MOV_UL, MOV_TL, STRUCT_SET_L or
// RET_L) and dest and arg3 are its first and third arguments.
func (p *parser) discharge(base op.Code, dest uint16, o operand, arg3 uint16) {
	switch o.kind {
	case operandLocal:
		if base == op.MovLL && o.value == dest {
			return
		}
		p.emit(base, dest, o.value, arg3)
	case operandJump:
		p.reduce(base+(op.MovLP-op.MovLL), dest, int(o.value), arg3)
	case operandPackage:
		panic(p.errorAt(errors.E3003, p.tok, "Cannot use a package as a value"))
	default:
		p.emit(base+op.Code(o.kind), dest, o.value, arg3)
	}
}

// reduce materialises the jump list headed by jump as a boolean, stored by
// the primitive variant code of a store family.
func (p *parser) reduce(code op.Code, dest uint16, jump int, arg3 uint16) {
	p.emit(code, dest, uint16(value.KindTrue), arg3)
	p.emit(op.Jmp, 2, 0, 0)
	falseCase := p.emit(code, dest, uint16(value.KindFalse), arg3)
	p.jumps(jump).FalseCase(falseCase)
}

// toJump turns a local into a condition jumping when the local is falsy.
func (p *parser) toJump(o operand) operand {
	p.emit(op.IsFalseL, o.value, 0, 0)
	return jumpOperand(p.emit(op.Jmp, 0, 0, 0))
}

// toLocal reduces a jump into slot. Other operands are returned unchanged.
func (p *parser) toLocal(slot uint16, o operand) operand {
	if o.kind != operandJump {
		return o
	}
	p.reduce(op.MovLP, slot, int(o.value), 0)
	return localOperand(slot)
}
