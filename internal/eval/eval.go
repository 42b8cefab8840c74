// Package eval is the reference interpreter for expression trees.
//
// It computes exactly what the generated program computes: unsigned 64-bit
// wrapping arithmetic, low half of the product, truncating unsigned division.
package eval

import (
	"errors"
	"fmt"

	"arithc/internal/ast"
)

// ErrDivisionByZero is returned for x/0 and x%0. The emitted program traps
// on the same inputs.
var ErrDivisionByZero = errors.New("division by zero")

// Error wraps a failure with the node where it happened.
type Error struct {
	Node ast.NodeID
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("eval node %d: %v", e.Node, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Eval returns the value of the subtree rooted at root.
func Eval(builder *ast.Builder, root ast.NodeID) (uint64, error) {
	n := builder.Get(root)
	if n == nil {
		return 0, &Error{Node: root, Err: errors.New("missing node")}
	}
	switch n.Kind {
	case ast.NodeLeaf:
		return n.Value, nil
	case ast.NodeBinary:
		left, err := Eval(builder, n.Left)
		if err != nil {
			return 0, err
		}
		right, err := Eval(builder, n.Right)
		if err != nil {
			return 0, err
		}
		v, err := Apply(n.Op(), left, right)
		if err != nil {
			return 0, &Error{Node: root, Err: err}
		}
		return v, nil
	default:
		return 0, &Error{Node: root, Err: fmt.Errorf("unknown node kind %v", n.Kind)}
	}
}

// Apply performs one operator with machine semantics.
func Apply(op string, left, right uint64) (uint64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	case "%":
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left % right, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", op)
	}
}

// Signed reinterprets v the way printf("%lld") prints it.
func Signed(v uint64) int64 { return int64(v) } //nolint:gosec // two's complement reinterpretation is the point
