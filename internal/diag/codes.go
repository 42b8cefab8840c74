package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0
	// Лексические
	LexInfo        Code = 1000
	LexUnknownChar Code = 1001
	LexBadNumber   Code = 1004

	// Парсерные
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynUnclosedParen     Code = 2006
	SynTrailingTokens    Code = 2011
	SynExpectExpression  Code = 2203
	SynIntegerOutOfRange Code = 2210

	// Ввод/вывод
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Кодогенерация
	GenInternal Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	LexInfo:              "Lexical information",
	LexUnknownChar:       "Unknown character",
	LexBadNumber:         "Bad number",
	SynInfo:              "Syntax information",
	SynUnexpectedToken:   "Unexpected token",
	SynUnclosedParen:     "Unclosed parenthesis",
	SynTrailingTokens:    "Trailing tokens ignored",
	SynExpectExpression:  "Expect expression",
	SynIntegerOutOfRange: "Integer literal out of range",
	IOLoadFileError:      "Failed to load file",
	IOWriteFileError:     "Failed to write file",
	GenInternal:          "Internal code generation error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("GEN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
