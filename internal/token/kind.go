package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Integer represents a decimal integer literal: [1-9][0-9]*.
	Integer
	// Punctuator represents one of + - * / % ( ).
	Punctuator
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case EOF:
		return "EOF"
	case Integer:
		return "Integer"
	case Punctuator:
		return "Punctuator"
	default:
		return "Unknown"
	}
}

// Punctuators lists every accepted punctuator byte.
const Punctuators = "+-*/%()"

// IsPunctuator reports whether b is one of the punctuator bytes.
func IsPunctuator(b byte) bool {
	switch b {
	case '+', '-', '*', '/', '%', '(', ')':
		return true
	default:
		return false
	}
}
