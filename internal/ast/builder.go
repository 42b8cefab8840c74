package ast

import (
	"arithc/internal/token"
)

// Builder owns every node of one parsed expression.
// Dropping the builder releases the whole tree at once.
type Builder struct {
	Nodes *Arena[Node]
}

func NewBuilder(capHint uint) *Builder {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Builder{Nodes: NewArena[Node](capHint)}
}

// NewLeaf allocates an integer literal node.
func (b *Builder) NewLeaf(tok token.Token, value uint64) NodeID {
	return NodeID(b.Nodes.Allocate(Node{
		Kind:  NodeLeaf,
		Span:  tok.Span,
		Token: tok,
		Value: value,
	}))
}

// NewBinary allocates an operator node; its span covers both operands.
func (b *Builder) NewBinary(op token.Token, left, right NodeID) NodeID {
	span := op.Span
	if l := b.Get(left); l != nil {
		span = l.Span.Cover(span)
	}
	if r := b.Get(right); r != nil {
		span = span.Cover(r.Span)
	}
	return NodeID(b.Nodes.Allocate(Node{
		Kind:  NodeBinary,
		Span:  span,
		Token: op,
		Left:  left,
		Right: right,
	}))
}

func (b *Builder) Get(id NodeID) *Node {
	return b.Nodes.Get(uint32(id))
}

// Walk visits the subtree rooted at id in post-order: left, right, node.
// Returning false from fn stops the walk.
func (b *Builder) Walk(id NodeID, fn func(NodeID, *Node) bool) bool {
	n := b.Get(id)
	if n == nil {
		return true
	}
	if n.Left.IsValid() && !b.Walk(n.Left, fn) {
		return false
	}
	if n.Right.IsValid() && !b.Walk(n.Right, fn) {
		return false
	}
	return fn(id, n)
}

// Count returns the number of leaves and binary nodes under root.
func (b *Builder) Count(root NodeID) (leaves, binaries int) {
	b.Walk(root, func(_ NodeID, n *Node) bool {
		switch n.Kind {
		case NodeLeaf:
			leaves++
		case NodeBinary:
			binaries++
		}
		return true
	})
	return leaves, binaries
}

// Depth returns the height of the subtree rooted at id (a leaf has depth 1).
func (b *Builder) Depth(id NodeID) int {
	n := b.Get(id)
	if n == nil {
		return 0
	}
	return 1 + max(b.Depth(n.Left), b.Depth(n.Right))
}

// Checkpoint marks the arena size so a failed speculative parse can be undone.
type Checkpoint uint32

func (b *Builder) Mark() Checkpoint { return Checkpoint(b.Nodes.Len()) }

// Reset discards nodes allocated since cp. IDs handed out after cp become invalid.
func (b *Builder) Reset(cp Checkpoint) { b.Nodes.Truncate(uint32(cp)) }
