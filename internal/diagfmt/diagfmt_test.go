package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"arithc/internal/ast"
	"arithc/internal/diag"
	"arithc/internal/lexer"
	"arithc/internal/parser"
	"arithc/internal/source"
)

func parseExpr(t *testing.T, input string) (*ast.Builder, ast.NodeID) {
	t.Helper()
	fs := source.NewFileSet()
	toks, err := lexer.Tokenize(fs.Get(fs.AddVirtual("e.txt", []byte(input))), lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	b := ast.NewBuilder(0)
	root, err := parser.Parse(toks, b, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return b, root
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	fileID := fs.AddVirtual("/home/user/project/exprs/test.txt", []byte("1+@\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.LexUnknownChar,
		Message:  "unknown character '@'",
		Primary:  source.Span{File: fileID, Start: 2, End: 3},
	})

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/exprs/test.txt:1:3"},
		{"Relative path", PathModeRelative, "exprs/test.txt:1:3"},
		{"Basename only", PathModeBasename, "test.txt:1:3"},
		{"Auto", PathModeAuto, "exprs/test.txt:1:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "LEX1001", "unknown character"} {
				if !strings.Contains(output, want) {
					t.Errorf("missing %q in:\n%s", want, output)
				}
			}
		})
	}
}

func TestPrettyCaret(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.txt", []byte("1\n+ 22 $\n3\n"))
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.LexUnknownChar,
		Message:  "unknown character '$'",
		Primary:  source.Span{File: fileID, Start: 7, End: 8},
		Notes:    []diag.Note{{Span: source.Span{File: fileID, Start: 0, End: 1}, Msg: "expression starts here"}},
	})

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	want := "c.txt:2:6: ERROR LEX1001: unknown character '$'\n" +
		"1 | 1\n" +
		"2 | + 22 $\n" +
		"  |      ^\n" +
		"3 | 3\n" +
		"  note: c.txt:1:1: expression starts here\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("１+@")
	fileID := fs.AddVirtual("w.txt", content)
	bag := diag.NewBag(1)
	at := uint32(len("１+"))
	bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: diag.LexUnknownChar, Message: "x",
		Primary: source.Span{File: fileID, Start: at, End: at + 1}})

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	// fullwidth digit occupies two cells, so the caret sits in cell 3
	if len(lines) < 3 || lines[2] != "  |    ^" {
		t.Fatalf("caret line = %q", lines[2])
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("j.txt", []byte("0"))
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError, Code: diag.LexBadNumber, Message: "leading zero",
		Primary: source.Span{File: fileID, Start: 0, End: 1},
		Notes:   []diag.Note{{Span: source.Span{File: fileID}, Msg: "n"}},
	})
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	d := out.Diagnostics[0]
	if out.Count != 1 || d.Code != "LEX1004" || d.Title != "Bad number" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if d.Location.Start == nil || d.Location.Start.Line != 1 || d.Location.Bytes != [2]uint32{0, 1} {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatal("notes missing")
	}
}

func TestFormatASTTree(t *testing.T) {
	b, root := parseExpr(t, "(2+3)*4")
	var buf bytes.Buffer
	if err := FormatASTTree(&buf, b, root); err != nil {
		t.Fatal(err)
	}
	want := "     *\n  /  |  \\\n  +     4\n/ | \\\n2   3\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestFormatASTOutline(t *testing.T) {
	b, root := parseExpr(t, "8-3-2")
	var buf bytes.Buffer
	if err := FormatASTOutline(&buf, b, root); err != nil {
		t.Fatal(err)
	}
	want := "Binary -\n.Binary -\n..Leaf 8\n..Leaf 3\n.Leaf 2\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s", buf.String())
	}
}

func TestFormatASTJSON(t *testing.T) {
	b, root := parseExpr(t, "1+2")
	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, b, root); err != nil {
		t.Fatal(err)
	}
	var n NodeJSON
	if err := json.Unmarshal(buf.Bytes(), &n); err != nil {
		t.Fatal(err)
	}
	if n.Op != "+" || n.Left == nil || *n.Left.Value != 1 || *n.Right.Value != 2 {
		t.Fatalf("unexpected tree: %s", buf.String())
	}
}

func TestFormatASTDump(t *testing.T) {
	b, root := parseExpr(t, "6%4")
	var buf bytes.Buffer
	if err := FormatASTDump(&buf, b, root); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Kind: (ast.NodeKind) Binary", `Text: (string) (len=1) "%"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("dump missing %q:\n%s", want, buf.String())
		}
	}
}

func TestJSONMaxReportsOmitted(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("m.txt", []byte("@@@"))
	bag := diag.NewBag(8)
	for i := uint32(0); i < 3; i++ {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError, Code: diag.LexUnknownChar, Message: "unknown character",
			Primary: source.Span{File: fileID, Start: i, End: i + 1},
		})
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 || out.Omitted != 1 {
		t.Fatalf("count = %d, omitted = %d", out.Count, out.Omitted)
	}
	if out.Diagnostics[0].Location.Start != nil {
		t.Fatal("positions must be omitted without IncludePositions")
	}
}
