package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"arithc/internal/source"
)

// shortLine is one rendered line of the short format.
type shortLine struct {
	kind string // "error", "warning", "note"...
	code string
	path string
	pos  source.LineCol
	text string
}

// FormatShortDiagnostics renders one line per diagnostic (and per note when
// includeNotes is set), ordered by path and position:
//
//	error LEX1001 expr.txt:1:3 unknown character '@'
//
// Paths are relative to the FileSet base directory. Spans pointing outside
// fs are skipped.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	var lines []shortLine
	add := func(kind string, code Code, span source.Span, msg string) {
		if int(span.File) >= fs.Len() {
			return
		}
		start, _ := fs.Resolve(span)
		lines = append(lines, shortLine{
			kind: kind,
			code: code.ID(),
			path: fs.Get(span.File).FormatPath("relative", fs.BaseDir()),
			pos:  start,
			text: strings.Join(strings.Fields(msg), " "),
		})
	}
	for i := range diags {
		d := &diags[i]
		add(strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}

	slices.SortStableFunc(lines, func(a, b shortLine) int {
		return cmp.Or(
			strings.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
		)
	})

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", l.kind, l.code, l.path, l.pos.Line, l.pos.Col, l.text)
	}
	return b.String()
}
