package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"arithc/internal/ast"
)

type treeNode struct {
	label    string
	children []*treeNode
}

type treeBlock struct {
	lines []string
	width int
	root  int
}

func buildTreeNode(b *ast.Builder, id ast.NodeID) *treeNode {
	n := b.Get(id)
	if n == nil {
		return &treeNode{label: "<nil>"}
	}
	if n.Kind == ast.NodeLeaf {
		return &treeNode{label: n.Token.Text}
	}
	return &treeNode{
		label:    n.Op(),
		children: []*treeNode{buildTreeNode(b, n.Left), buildTreeNode(b, n.Right)},
	}
}

// FormatASTTree draws the expression as a top-down ASCII tree:
//
//	  *
//	 / \
//	+   4
func FormatASTTree(w io.Writer, b *ast.Builder, root ast.NodeID) error {
	block := renderTree(buildTreeNode(b, root))
	for _, line := range block.lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTOutline prints one node per line, depth shown by leading dots.
func FormatASTOutline(w io.Writer, b *ast.Builder, root ast.NodeID) error {
	var walk func(id ast.NodeID, depth int) error
	walk = func(id ast.NodeID, depth int) error {
		n := b.Get(id)
		if n == nil {
			return nil
		}
		if _, err := fmt.Fprintf(w, "%s%s %s\n", strings.Repeat(".", depth), n.Kind, n.Token.Text); err != nil {
			return err
		}
		if err := walk(n.Left, depth+1); err != nil {
			return err
		}
		return walk(n.Right, depth+1)
	}
	return walk(root, 0)
}

// renderTree converts a treeNode into a treeBlock containing an ASCII-art representation.
//
// The block's width is the horizontal extent of the rendered lines and root
// is the column of the node's label centre within those lines.
func renderTree(node *treeNode) treeBlock {
	label := node.label
	labelWidth := len(label)

	if len(node.children) == 0 {
		return treeBlock{
			lines: []string{label},
			width: labelWidth,
			root:  labelWidth / 2,
		}
	}

	childBlocks := make([]treeBlock, len(node.children))
	maxChildHeight := 0
	for i, child := range node.children {
		childBlocks[i] = renderTree(child)
		maxChildHeight = max(maxChildHeight, len(childBlocks[i].lines))
	}

	const spacing = 3

	positions := make([]int, len(childBlocks))
	totalWidth := 0
	for i, block := range childBlocks {
		positions[i] = totalWidth + block.root
		totalWidth += block.width
		if i != len(childBlocks)-1 {
			totalWidth += spacing
		}
	}

	childrenCenter := (positions[0] + positions[len(positions)-1]) / 2
	rootPos := labelWidth / 2
	shift := childrenCenter - rootPos

	childPrefix := 0
	if shift < 0 {
		childPrefix = -shift
		for i := range positions {
			positions[i] += childPrefix
		}
		totalWidth += childPrefix
		shift = 0
	} else {
		rootPos += shift
	}

	width := max(totalWidth, shift+labelWidth, rootPos+1)
	rootLine := strings.Repeat(" ", shift) + label
	rootLine += strings.Repeat(" ", width-len(rootLine))

	connector := []byte(strings.Repeat(" ", width))
	connector[rootPos] = '|'
	for _, pos := range positions {
		switch {
		case pos < rootPos:
			connector[pos] = '/'
		case pos > rootPos:
			connector[pos] = '\\'
		default:
			connector[pos] = '|'
		}
	}

	lines := make([]string, 0, 2+maxChildHeight)
	lines = append(lines, rootLine, string(connector))
	for row := range maxChildHeight {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", childPrefix))
		for i, block := range childBlocks {
			line := ""
			if row < len(block.lines) {
				line = block.lines[row]
			}
			sb.WriteString(line)
			sb.WriteString(strings.Repeat(" ", block.width-len(line)))
			if i != len(childBlocks)-1 {
				sb.WriteString(strings.Repeat(" ", spacing))
			}
		}
		rowStr := sb.String()
		rowStr += strings.Repeat(" ", max(width-len(rowStr), 0))
		lines = append(lines, rowStr)
	}

	return treeBlock{
		lines: lines,
		width: width,
		root:  rootPos,
	}
}
