package ast

import (
	"arithc/internal/source"
	"arithc/internal/token"
)

type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

type NodeKind uint8

const (
	// NodeLeaf is an integer literal; it has no children.
	NodeLeaf NodeKind = iota + 1
	// NodeBinary is an operator applied to exactly two children.
	NodeBinary
)

func (k NodeKind) String() string {
	switch k {
	case NodeLeaf:
		return "Leaf"
	case NodeBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Node is the tagged variant Leaf(token) | Binary(op, left, right).
// Left and Right are NoNodeID for leaves. Every child is referenced by
// exactly one parent, so the tree never shares nodes.
type Node struct {
	Kind  NodeKind
	Span  source.Span
	Token token.Token // Integer for leaves, operator for binaries
	Value uint64      // literal value, leaves only
	Left  NodeID
	Right NodeID
}

// Op returns the operator text of a binary node ("" for leaves).
func (n *Node) Op() string {
	if n.Kind != NodeBinary {
		return ""
	}
	return n.Token.Text
}
