// Package bytecode provides the compiled representation of Hydrogen
// programs.
//
// # Instructions
//
// An [Instruction] is 64 bits wide: a 16-bit opcode followed by three 16-bit
// arguments. Argument 0 denotes the opcode itself.
//
//	ins := bytecode.Encode(op.AddLI, 0, 0, 1) // ADD_LI 0 0 1
//	ins.Arg(3)                                // 1
//
// # Jump lists
//
// Pending branches are linked together through the second argument of each
// JMP instruction, storing the distance back to the next jump of the same
// list. [JumpList] hides this encoding behind append, iterate and retarget
// operations used by the compiler's control flow code.
//
// # Programs
//
// A [Program] owns every table populated during a compilation session:
// functions, packages, struct definitions, natives, upvalue records and the
// number, string and field name pools. Instructions refer to entries of
// these tables by index. [Marshal] and [Unmarshal] convert a program to and
// from a canonical CBOR image in which values use their NaN-boxed encoding.
package bytecode
