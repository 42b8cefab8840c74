package parser

import (
	"arithc/internal/diag"
	"arithc/internal/source"
)

type Options struct {
	Reporter diag.Reporter // nil: only the returned error describes the failure
	// File owns the tokens. Spans of an empty token stream point at its start.
	File source.FileID
}
