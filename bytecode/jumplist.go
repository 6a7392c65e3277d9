package bytecode

import "github.com/hydrogen-lang/hydrogen/op"

// Arguments of a JMP instruction.
const (
	// JumpTarget holds the forward distance to the jump's destination, or 0
	// while the destination is unknown.
	JumpTarget = 1
	// JumpLink holds the backward distance to the next jump of the same
	// list, or 0 at the end of the list.
	JumpLink = 2
	// JumpKind records whether the jump belongs to an `&&` or `||` chain.
	JumpKind = 3
)

// JumpType tags a pending jump with the short-circuit operator it was
// created for.
type JumpType uint16

const (
	JumpNone JumpType = iota
	JumpAnd
	JumpOr
)

// JumpList is a singly linked list of pending JMP instructions threaded
// through the function's own code. Each jump stores the distance back to the
// next jump in the list, so building a list never allocates.
type JumpList struct {
	fn   *Function
	head int
}

// Head returns the index of the first jump, or -1 for the empty list.
func (l JumpList) Head() int {
	if l.head < 0 {
		return -1
	}
	return l.head
}

// Empty returns true if the list holds no jumps.
func (l JumpList) Empty() bool {
	return l.head < 0
}

// Next returns the jump following the one at index jump, or -1.
func (l JumpList) Next(jump int) int {
	offset := l.fn.Code[jump].Arg(JumpLink)
	if offset == 0 {
		return -1
	}
	return jump - int(offset)
}

// Indices returns the index of every jump in the list, head first.
func (l JumpList) Indices() []int {
	var out []int
	for j := l.Head(); j >= 0; j = l.Next(j) {
		out = append(out, j)
	}
	return out
}

// Tail returns the index of the last jump in the list.
func (l JumpList) Tail() int {
	jump := l.Head()
	for next := jump; next >= 0; next = l.Next(jump) {
		jump = next
	}
	return jump
}

// Append links other after the tail of l. Every jump in other must precede
// the tail of l in the code.
func (l JumpList) Append(other JumpList) {
	if l.Empty() || other.Empty() {
		return
	}
	tail := l.Tail()
	l.set(tail, JumpLink, uint16(tail-other.head))
}

// Prepend returns the list with the jump at index jump placed in front.
func (l JumpList) Prepend(jump int) JumpList {
	front := l.fn.Jumps(jump)
	front.Append(l)
	return front
}

// Target points the jump at index jump to target, overwriting any existing
// destination.
func (l JumpList) Target(jump, target int) {
	l.set(jump, JumpTarget, uint16(target-jump))
}

// LazyTarget points the jump at index jump to target only if the jump has no
// destination yet.
func (l JumpList) LazyTarget(jump, target int) {
	if l.fn.Code[jump].Arg(JumpTarget) == 0 {
		l.Target(jump, target)
	}
}

// TargetAll points every jump in the list to target.
func (l JumpList) TargetAll(target int) {
	for j := l.Head(); j >= 0; j = l.Next(j) {
		l.Target(j, target)
	}
}

// FalseCase points every jump without a destination to target, and the head
// of the list to target unconditionally.
func (l JumpList) FalseCase(target int) {
	for j := l.Head(); j >= 0; j = l.Next(j) {
		l.LazyTarget(j, target)
	}
	if !l.Empty() {
		l.Target(l.head, target)
	}
}

// Type returns the short-circuit type of the jump at index jump.
func (l JumpList) Type(jump int) JumpType {
	return JumpType(l.fn.Code[jump].Arg(JumpKind))
}

// SetType tags the jump at index jump with t, unless it is already tagged.
func (l JumpList) SetType(jump int, t JumpType) {
	if l.Type(jump) == JumpNone {
		l.set(jump, JumpKind, uint16(t))
	}
}

// InvertCondition replaces the condition guarding the jump at index jump
// with its inverse.
func (l JumpList) InvertCondition(jump int) {
	cond := l.fn.Code[jump-1]
	l.fn.Code[jump-1] = cond.With(0, uint16(op.Invert(cond.Op())))
}

func (l JumpList) set(jump, arg int, v uint16) {
	l.fn.Code[jump] = l.fn.Code[jump].With(arg, v)
}
