package pluralforms

import (
	"errors"
	"fmt"
)

var (
	ErrStackImbalance = errors.New("plural expression stack imbalance")
	ErrModuloByZero   = errors.New("modulo by zero in plural expression")
)

// Expression selects a plural form index for a quantity n.
//
// Implemented by *Program (a compiled Plural-Forms expression) and by
// NativeRule (a built-in per-language selector). Implementations are
// safe for concurrent use.
type Expression interface {
	Eval(n uint32) (int, error)
}

// NativeRule adapts a plain Go selector function to Expression.
// Used for the built-in language rule table, which needs no compilation.
type NativeRule struct {
	NPlurals int
	Index    func(n uint32) int
}

func (r NativeRule) Eval(n uint32) (int, error) { return r.Index(n), nil }

// Eval runs the postfix program for n. Boolean intermediate results are
// the integers 0 and 1. Results are memoized per distinct n for the
// lifetime of the program; lookups overwhelmingly repeat small counts.
func (p *Program) Eval(n uint32) (int, error) {
	p.mu.Lock()
	v, ok := p.memo[n]
	p.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := p.run(n)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.memo[n] = v
	p.mu.Unlock()
	return v, nil
}

func (p *Program) run(n uint32) (int, error) {
	stack := make([]int, 0, 16)

	push := func(v int) { stack = append(stack, v) }
	pop := func() (int, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}
	pop2 := func() (left, right int, ok bool) {
		right, ok = pop()
		if !ok {
			return 0, 0, false
		}
		left, ok = pop()
		return left, right, ok
	}
	btoi := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	for _, in := range p.code {
		switch in.op {
		case opVar:
			push(int(n))
		case opNum:
			push(int(in.num))
		case opTernary:
			onFalse, ok := pop()
			if !ok {
				return 0, ErrStackImbalance
			}
			onTrue, ok := pop()
			if !ok {
				return 0, ErrStackImbalance
			}
			cond, ok := pop()
			if !ok {
				return 0, ErrStackImbalance
			}
			if cond != 0 {
				push(onTrue)
			} else {
				push(onFalse)
			}
		default:
			l, r, ok := pop2()
			if !ok {
				return 0, ErrStackImbalance
			}
			switch in.op {
			case opMod:
				if r == 0 {
					return 0, ErrModuloByZero
				}
				push(l % r)
			case opLt:
				push(btoi(l < r))
			case opLte:
				push(btoi(l <= r))
			case opGt:
				push(btoi(l > r))
			case opGte:
				push(btoi(l >= r))
			case opEq:
				push(btoi(l == r))
			case opNeq:
				push(btoi(l != r))
			case opAnd:
				push(btoi(l != 0 && r != 0))
			case opOr:
				push(btoi(l != 0 || r != 0))
			default:
				// Unreachable on programs produced by Compile.
				return 0, fmt.Errorf("unknown opcode %v", in.op)
			}
		}
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: %d values left", ErrStackImbalance, len(stack))
	}
	return stack[0], nil
}
