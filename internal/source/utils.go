package source

import (
	"bytes"
	"slices"

	"golang.org/x/text/unicode/norm"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Normalize strips a UTF-8 BOM, folds CRLF into LF and applies NFC so that
// byte offsets match what an editor shows. Flags report what changed.
func Normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if bytes.HasPrefix(content, bom) {
		content = content[len(bom):]
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		// одиночный \r не трогаем: лексер сам сообщит о нём
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	if !norm.NFC.IsNormal(content) {
		content = norm.NFC.Bytes(content)
		flags |= FileNormalizedNFC
	}
	return content, flags
}

func lineStarts(content []byte) []uint32 {
	starts := make([]uint32, 1, 8)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i+1)) //nolint:gosec // source files stay far below 4 GiB
		}
	}
	return starts
}

func (f *File) position(off uint32) LineCol {
	// индекс последней строки, начинающейся не позже off
	i, found := slices.BinarySearch(f.LineStarts, off)
	if !found {
		i--
	}
	return LineCol{Line: uint32(i + 1), Col: off - f.LineStarts[i] + 1} //nolint:gosec // i < len(LineStarts)
}
