package source

// FileID identifies a file inside one FileSet.
type FileID uint32

// FileFlags records how a file got into the set and what Load rewrote.
type FileFlags uint8

const (
	// FileVirtual: added from memory, not read from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File is one loaded source. Content is already normalised; spans index it.
type File struct {
	ID         FileID
	Path       string
	Content    []byte
	LineStarts []uint32 // смещение первого байта каждой строки, [0] == 0
	Hash       [32]byte
	Flags      FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
