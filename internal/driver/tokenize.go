package driver

import (
	"arithc/internal/diag"
	"arithc/internal/lexer"
	"arithc/internal/source"
	"arithc/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize loads path and lexes it. The returned error covers loading only;
// a lexical failure lands in Bag and leaves Tokens empty.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens, lexErr := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	if lexErr != nil {
		tokens = nil
	}

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
