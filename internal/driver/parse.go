package driver

import (
	"arithc/internal/ast"
	"arithc/internal/diag"
	"arithc/internal/lexer"
	"arithc/internal/parser"
	"arithc/internal/source"
	"arithc/internal/token"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Builder *ast.Builder
	Root    ast.NodeID
	// Consumed is the number of tokens the expression used; the rest are ignored.
	Consumed int
	Bag      *diag.Bag
}

// Parse loads, lexes and parses path. Root is NoNodeID when either phase failed;
// the reason is in Bag.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	bag := diag.NewBag(maxDiagnostics)

	res := &ParseResult{FileSet: fs, File: file, Bag: bag}
	reporter := diag.BagReporter{Bag: bag}

	tokens, err := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	if err != nil {
		return res, nil
	}
	res.Tokens = tokens

	builder := ast.NewBuilder(uint(len(tokens)))
	root, consumed, err := parser.ParseCount(tokens, builder, parser.Options{Reporter: reporter, File: file.ID})
	res.Builder = builder
	if err != nil {
		return res, nil
	}
	res.Root = root
	res.Consumed = consumed
	return res, nil
}
