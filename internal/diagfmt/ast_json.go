package diagfmt

import (
	"encoding/json"
	"io"

	"arithc/internal/ast"
	"arithc/internal/source"
)

// NodeJSON is the nested JSON shape of an expression tree.
type NodeJSON struct {
	Kind  string      `json:"kind"`
	Op    string      `json:"op,omitempty"`
	Value *uint64     `json:"value,omitempty"`
	Span  source.Span `json:"span"`
	Left  *NodeJSON   `json:"left,omitempty"`
	Right *NodeJSON   `json:"right,omitempty"`
}

// BuildNodeJSON converts the subtree rooted at id.
func BuildNodeJSON(b *ast.Builder, id ast.NodeID) *NodeJSON {
	n := b.Get(id)
	if n == nil {
		return nil
	}
	out := &NodeJSON{Kind: n.Kind.String(), Span: n.Span}
	switch n.Kind {
	case ast.NodeLeaf:
		v := n.Value
		out.Value = &v
	case ast.NodeBinary:
		out.Op = n.Op()
		out.Left = BuildNodeJSON(b, n.Left)
		out.Right = BuildNodeJSON(b, n.Right)
	}
	return out
}

func FormatASTJSON(w io.Writer, b *ast.Builder, root ast.NodeID) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildNodeJSON(b, root))
}
