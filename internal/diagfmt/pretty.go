package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"arithc/internal/diag"
	"arithc/internal/source"
)

type palette struct {
	err, warn, info, code, path, caret, note, gutter *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		gutter: mk(color.FgBlue),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	file := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	sev := strings.ToUpper(d.Severity.String())

	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprintf("%s:%d:%d", formatPath(file, fs, opts.PathMode), start.Line, start.Col),
		pal.severity(d.Severity).Sprint(sev),
		pal.code.Sprint(d.Code.ID()),
		d.Message,
	)
	if file != nil && len(file.Content) > 0 {
		writeSnippet(w, file, start, end, opts.Context, pal)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		ns, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
			pal.note.Sprint("note:"),
			formatPath(nf, fs, opts.PathMode), ns.Line, ns.Col, n.Msg)
	}
}

// writeSnippet prints the primary line with context and a caret underline.
// The underline is measured in display cells so wide runes line up.
func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, ctx int8, pal palette) {
	if start.Line == 0 {
		return
	}
	first := int64(start.Line) - int64(max(ctx, 0))
	first = max(first, 1)
	last := int64(start.Line) + int64(max(ctx, 0))
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		line := f.GetLine(uint32(ln)) //nolint:gosec // bounded by start.Line + int8
		if ln > int64(start.Line) && line == "" {
			break
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), line)
		if ln != int64(start.Line) {
			continue
		}
		col := int(start.Col) - 1
		col = min(max(col, 0), len(line))
		endCol := len(line)
		if end.Line == start.Line {
			endCol = min(max(int(end.Col)-1, col), len(line))
		}
		pad := runewidth.StringWidth(line[:col])
		width := max(runewidth.StringWidth(line[col:endCol]), 1)
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n",
			pal.gutter.Sprintf("%*s |", gutterWidth, ""),
			strings.Repeat(" ", pad),
			pal.caret.Sprint(marker))
	}
}
