package compiler

import (
	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
	"github.com/hydrogen-lang/hydrogen/op"
)

// condition compiles the condition of an `if` or `while`. The result is a
// jump taken when the condition fails, or a constant.
func (p *parser) condition() operand {
	slot := p.reserve()
	cond := p.expr(slot)
	p.free(1)
	if cond.kind == operandLocal {
		cond = p.toJump(cond)
	}
	return cond
}

// ifStatement compiles an `if` with any `else if` and `else` branches.
//
// Each branch but the last ends with a jump to the end of the chain; these
// jumps are collected into one list patched once the end is known. Branches
// whose condition is constant false, and every branch after one whose
// condition is constant true, are compiled then discarded.
func (p *parser) ifStatement() {
	fn := p.fn()
	ends := p.jumps(-1)
	previous := -1
	folded := false
	for first := true; ; first = false {
		kind := p.tok.Type
		if !first && kind != token.ELSE_IF && kind != token.ELSE {
			break
		}
		p.next()

		start := fn.Len()
		skip := -1
		if previous >= 0 {
			skip = p.emit(op.Jmp, 0, 0, 0)
		}
		cond := boolOperand(true)
		if kind != token.ELSE {
			cond = p.condition()
		}

		if folded || cond.isFalse() {
			p.block()
			p.discard(start)
		} else {
			if previous >= 0 {
				ends = ends.Prepend(skip)
				p.jumps(previous).FalseCase(skip + 1)
			}
			p.block()
			if cond.kind == operandJump {
				previous = int(cond.value)
			} else {
				previous = -1
				folded = true
			}
		}
		if kind == token.ELSE {
			break
		}
	}
	if previous >= 0 {
		p.jumps(previous).FalseCase(fn.Len())
	}
	ends.TargetAll(fn.Len())
}

// whileStatement compiles a `while` loop. A loop whose condition is constant
// false is discarded.
func (p *parser) whileStatement() {
	fn := p.fn()
	p.next()
	start := fn.Len()
	p.pushLoop()
	cond := p.condition()
	p.block()
	l := p.popLoop()
	if cond.isFalse() {
		p.discard(start)
		return
	}
	p.emit(op.Loop, uint16(fn.Len()-start), 0, 0)
	if cond.kind == operandJump {
		p.jumps(int(cond.value)).FalseCase(fn.Len())
	}
	l.breaks.TargetAll(fn.Len())
}

// loopStatement compiles an infinite `loop`, left only through `break` or
// `return`.
func (p *parser) loopStatement() {
	fn := p.fn()
	p.next()
	start := fn.Len()
	p.pushLoop()
	p.block()
	l := p.popLoop()
	p.emit(op.Loop, uint16(fn.Len()-start), 0, 0)
	l.breaks.TargetAll(fn.Len())
}

func (p *parser) breakStatement() {
	tok := p.tok
	p.next()
	loops := p.frame.loops
	if len(loops) == 0 {
		p.fail(errors.E3004, tok, "`break` not inside loop")
	}
	l := loops[len(loops)-1]
	l.breaks = l.breaks.Prepend(p.emit(op.Jmp, 0, 0, 0))
}

// discard removes the code emitted from index start onwards, along with any
// `break` jumps it contained.
func (p *parser) discard(start int) {
	for _, l := range p.frame.loops {
		head := l.breaks.Head()
		for head >= start {
			head = l.breaks.Next(head)
		}
		l.breaks = p.jumps(head)
	}
	p.fn().Truncate(start)
}
