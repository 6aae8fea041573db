// Package pluralforms compiles and evaluates gettext Plural-Forms
// expressions like
//
//	n % 10 == 1 && n % 100 != 11 ? 0 : n % 10 >= 2 ? 1 : 2
//
// and carries the per-language fallback rules used when a catalog
// declares no Plural-Forms header.
package pluralforms

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

var (
	ErrEmptyExpression  = errors.New("empty plural expression")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrUnbalancedParens = errors.New("unbalanced parentheses")
	ErrDanglingColon    = errors.New("':' without matching '?'")
	ErrUnexpectedChar   = errors.New("unexpected character")
)

type opcode uint8

const (
	opInvalid opcode = iota

	opVar // push n
	opNum // push literal

	opMod // %
	opLt  // <
	opLte // <=
	opGt  // >
	opGte // >=
	opEq  // ==
	opNeq // !=
	opAnd // &&
	opOr  // ||
	opTernary

	// Stack markers, never emitted into a program.
	opParen
	opTernaryIf
)

var opNames = map[opcode]string{
	opVar: "n", opNum: "num",
	opMod: "%", opLt: "<", opLte: "<=", opGt: ">", opGte: ">=",
	opEq: "==", opNeq: "!=", opAnd: "&&", opOr: "||",
	opTernary: "?:", opParen: "(", opTernaryIf: "?",
}

func (o opcode) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

var operators = map[string]opcode{
	"%": opMod, "<": opLt, "<=": opLte, ">": opGt, ">=": opGte,
	"==": opEq, "!=": opNeq, "&&": opAnd, "||": opOr,
}

// Higher binds tighter. The combined ternary shares the precedence of
// its '?' marker so that nested ternaries chain to the right.
var precedence = map[opcode]int{
	opMod: 6,
	opLt:  5, opLte: 5, opGt: 5, opGte: 5,
	opEq: 4, opNeq: 4,
	opAnd:     3,
	opOr:      2,
	opTernary: 1, opTernaryIf: 1,
}

// instr is one postfix instruction.
type instr struct {
	op  opcode
	num uint32 // literal value when op == opNum
}

// Program is a plural expression compiled to postfix form.
// It is safe for concurrent use.
type Program struct {
	expr string
	code []instr

	mu   sync.Mutex
	memo map[uint32]int
}

// Expr returns the source expression the program was compiled from.
func (p *Program) Expr() string { return p.expr }

var (
	cacheMu sync.RWMutex
	cache   = map[string]*Program{}
)

// Compile converts expr to a postfix program using the shunting-yard
// algorithm. Results are memoized per distinct expression string, so
// repeated compilation of the same header is free.
func Compile(expr string) (*Program, error) {
	cacheMu.RLock()
	p, ok := cache[expr]
	cacheMu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := compile(expr)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	if existing, ok := cache[expr]; ok {
		p = existing
	} else {
		cache[expr] = p
	}
	cacheMu.Unlock()
	return p, nil
}

func isOperatorChar(b byte) bool {
	switch b {
	case '%', '<', '>', '=', '!', '&', '|':
		return true
	}
	return false
}

func compile(expr string) (*Program, error) {
	var code []instr
	var stack []opcode

	popTo := func(op opcode) {
		// Pop every stacked operator that binds at least as tightly.
		// The ternary marker is right-associative: on equal precedence
		// it stays put instead of being popped.
		prec := precedence[op]
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top == opParen || top == opTernaryIf {
				break
			}
			tp := precedence[top]
			if tp < prec || (tp == prec && (top == opTernary || op == opTernaryIf)) {
				break
			}
			code = append(code, instr{op: top})
			stack = stack[:len(stack)-1]
		}
	}

	for i := 0; i < len(expr); {
		b := expr[i]
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ';' || b == 0:
			i++

		case b == 'n':
			code = append(code, instr{op: opVar})
			i++

		case b >= '0' && b <= '9':
			j := i
			for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
				j++
			}
			v, err := strconv.ParseUint(expr[i:j], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("literal %q: %w", expr[i:j], err)
			}
			code = append(code, instr{op: opNum, num: uint32(v)})
			i = j

		case b == '(':
			stack = append(stack, opParen)
			i++

		case b == ')':
			for {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w: stray ')' at offset %d",
						ErrUnbalancedParens, i)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == opParen {
					break
				}
				code = append(code, instr{op: top})
			}
			i++

		case b == '?':
			popTo(opTernaryIf)
			stack = append(stack, opTernaryIf)
			i++

		case b == ':':
			// Close the innermost pending '?' and fuse both halves
			// into a single ternary operator left on the stack.
			for {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w at offset %d", ErrDanglingColon, i)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == opTernaryIf {
					stack = append(stack, opTernary)
					break
				}
				if top == opParen {
					return nil, fmt.Errorf("%w at offset %d", ErrDanglingColon, i)
				}
				code = append(code, instr{op: top})
			}
			i++

		case isOperatorChar(b):
			j := i
			for j < len(expr) && isOperatorChar(expr[j]) {
				j++
			}
			op, ok := operators[expr[i:j]]
			if !ok {
				return nil, fmt.Errorf("%w %q at offset %d",
					ErrUnknownOperator, expr[i:j], i)
			}
			popTo(op)
			stack = append(stack, op)
			i = j

		default:
			return nil, fmt.Errorf("%w %q at offset %d", ErrUnexpectedChar, rune(b), i)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch top {
		case opParen:
			return nil, fmt.Errorf("%w: unclosed '('", ErrUnbalancedParens)
		case opTernaryIf:
			return nil, fmt.Errorf("'?' without matching ':'")
		}
		code = append(code, instr{op: top})
	}

	if len(code) == 0 {
		return nil, ErrEmptyExpression
	}

	return &Program{expr: expr, code: code, memo: map[uint32]int{}}, nil
}
