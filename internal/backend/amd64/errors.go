package amd64

import (
	"fmt"

	"arithc/internal/ast"
)

// InternalError reports a malformed tree. A tree produced by the parser
// never triggers it.
type InternalError struct {
	Node ast.NodeID
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("failed to generate code: node %d: %s", e.Node, e.Msg)
}
