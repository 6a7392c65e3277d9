package bytecode

import (
	"fmt"

	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// Function is a compiled function, method or package entry point.
//
// Code is append-only while the function is being compiled and only the
// control-flow backpatcher rewrites instructions already emitted.
type Function struct {
	Name    string
	Package uint16
	Source  uint16
	Line    int
	Arity   int
	// FrameSize is the largest number of locals live at once.
	FrameSize int
	Code      []Instruction
	// Lines holds the source line of each instruction.
	Lines []int
	// Upvalues lists the upvalue records created for this function, as
	// indices into the program's upvalue table.
	Upvalues []uint16
}

// Emit appends an instruction and returns its index.
func (f *Function) Emit(code op.Code, arg1, arg2, arg3 uint16, line int) int {
	f.Code = append(f.Code, Encode(code, arg1, arg2, arg3))
	f.Lines = append(f.Lines, line)
	return len(f.Code) - 1
}

// Len returns the number of instructions emitted so far.
func (f *Function) Len() int {
	return len(f.Code)
}

// Last returns the most recently emitted instruction.
func (f *Function) Last() (Instruction, bool) {
	if len(f.Code) == 0 {
		return 0, false
	}
	return f.Code[len(f.Code)-1], true
}

// Truncate discards every instruction at or after index n.
func (f *Function) Truncate(n int) {
	if n < len(f.Code) {
		f.Code = f.Code[:n]
		f.Lines = f.Lines[:n]
	}
}

// Jumps returns the jump list whose most recently linked jump is at index
// head. A negative head is the empty list.
func (f *Function) Jumps(head int) JumpList {
	return JumpList{fn: f, head: head}
}

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("fn %s/%d", name, f.Arity)
}

// Upvalue is a local of an enclosing function captured by a nested function.
// A local captured by two sibling functions has one record per function.
type Upvalue struct {
	Name string
	// Function is the index of the function declaring the captured local.
	Function uint16
	// Slot is the captured local's stack slot within that function.
	Slot uint16
}

// Native is a function implemented by the host. An Arity of -1 accepts any
// number of arguments.
type Native struct {
	Name    string
	Package uint16
	Arity   int
	Fn      NativeFunc
}

// NativeFunc is the callback invoked for a native function. The program is
// passed so that references in args can be resolved.
type NativeFunc func(prog *Program, args []value.Value) (value.Value, error)

// StructDefinition describes the fields of a struct type. Methods are fields
// whose default is a function reference.
type StructDefinition struct {
	Name    string
	Package uint16
	Source  uint16
	Line    int
	// Fields holds indices into the program's field name table.
	Fields   []uint16
	Defaults []value.Value
	// Constructor is the index of the `new` method, or -1.
	Constructor int
}

// FieldIndex returns the position of the named field within the struct.
func (s *StructDefinition) FieldIndex(field uint16) int {
	for i, f := range s.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Package groups the top level variables, functions and structs declared by
// one or more source files.
type Package struct {
	Name string
	// Path is the file the package was loaded from, empty for the main
	// package and native packages.
	Path    string
	Sources []uint16
	// Names and Values hold the top level variables in declaration order.
	Names  []string
	Values []value.Value
	// Main lists the entry function of each compiled source file.
	Main []uint16
}

// TopLevel returns the slot of a top level variable, or -1.
func (p *Package) TopLevel(name string) int {
	for i, n := range p.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Source is a unit of source code a package was compiled from.
type Source struct {
	File     string
	Contents string
}
