package diagfmt

import (
	"io"

	"github.com/davecgh/go-spew/spew"

	"arithc/internal/ast"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// FormatASTDump writes the raw arena contents reachable from root, in
// post-order, with spew. Meant for debugging the builder itself.
func FormatASTDump(w io.Writer, b *ast.Builder, root ast.NodeID) error {
	nodes := make(map[ast.NodeID]ast.Node)
	b.Walk(root, func(id ast.NodeID, n *ast.Node) bool {
		nodes[id] = *n
		return true
	})
	dumpConfig.Fdump(w, root, nodes)
	return nil
}
