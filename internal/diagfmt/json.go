package diagfmt

import (
	"encoding/json"
	"io"

	"arithc/internal/diag"
	"arithc/internal/source"
)

// PositionJSON is a 1-based line/column pair.
type PositionJSON struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// LocationJSON locates a span: byte offsets always, line/col on request.
type LocationJSON struct {
	File  string        `json:"file"`
	Bytes [2]uint32     `json:"bytes"`
	Start *PositionJSON `json:"start,omitempty"`
	End   *PositionJSON `json:"end,omitempty"`
}

// NoteJSON is an attached note.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one diagnostic as written by JSON.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the document root. Omitted counts items cut by Max.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Omitted     int              `json:"omitted,omitempty"`
}

type locator struct {
	fs        *source.FileSet
	pathMode  PathMode
	positions bool
}

func (l locator) locate(span source.Span) LocationJSON {
	loc := LocationJSON{
		File:  formatPath(l.fs.Get(span.File), l.fs, l.pathMode),
		Bytes: [2]uint32{span.Start, span.End},
	}
	if l.positions {
		start, end := l.fs.Resolve(span)
		loc.Start = &PositionJSON{Line: start.Line, Col: start.Col}
		loc.End = &PositionJSON{Line: end.Line, Col: end.Col}
	}
	return loc
}

// BuildDiagnosticsOutput assembles the JSON document without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	shown := items
	if opts.Max > 0 && opts.Max < len(items) {
		shown = items[:opts.Max]
	}
	l := locator{fs: fs, pathMode: opts.PathMode, positions: opts.IncludePositions}

	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(shown)),
		Omitted:     len(items) - len(shown),
	}
	for _, d := range shown {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: l.locate(d.Primary),
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Message: note.Msg, Location: l.locate(note.Span)})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
