package bytecode

import (
	"fmt"

	"github.com/hydrogen-lang/hydrogen/op"
)

// Instruction packs an opcode and three 16-bit arguments into 64 bits. The
// opcode is argument 0 and occupies the low 16 bits.
type Instruction uint64

// Encode packs an opcode and its arguments into an instruction.
func Encode(code op.Code, arg1, arg2, arg3 uint16) Instruction {
	return Instruction(uint64(code) |
		uint64(arg1)<<16 |
		uint64(arg2)<<32 |
		uint64(arg3)<<48)
}

// Arg returns argument n, where argument 0 is the opcode.
func (ins Instruction) Arg(n int) uint16 {
	return uint16(ins >> (uint(n) * 16))
}

// With returns a copy of the instruction with argument n replaced.
func (ins Instruction) With(n int, value uint16) Instruction {
	shift := uint(n) * 16
	return ins&^(0xffff<<shift) | Instruction(value)<<shift
}

// Op returns the instruction's opcode.
func (ins Instruction) Op() op.Code {
	return op.Code(ins.Arg(0))
}

// String returns the opcode name followed by its arguments.
func (ins Instruction) String() string {
	return fmt.Sprintf("%s %d %d %d", ins.Op(), ins.Arg(1), ins.Arg(2), ins.Arg(3))
}
