package lexer

import (
	"testing"

	"arithc/internal/source"
)

func TestCursorMarkReset(t *testing.T) {
	fs := source.NewFileSet()
	c := NewCursor(fs.Get(fs.AddVirtual("c.txt", []byte("12+"))))

	m := c.Mark()
	if c.Bump() != '1' || c.Bump() != '2' {
		t.Fatal("unexpected bytes")
	}
	if sp := c.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("SpanFrom = %v", sp)
	}
	c.Reset(m)
	if c.Peek() != '1' {
		t.Fatal("Reset did not rewind")
	}
	if c.Eat('+') {
		t.Fatal("Eat matched the wrong byte")
	}
	if string(c.Rest()) != "12+" {
		t.Fatalf("Rest = %q", c.Rest())
	}
	c.Off = 3
	if !c.EOF() || c.Peek() != 0 || c.Bump() != 0 {
		t.Fatal("cursor past end should read zero")
	}
	if c.Rest() != nil {
		t.Fatal("Rest past end must be nil")
	}
}
