package source

import "fmt"

// FileID indexes a file in its FileSet.
type FileID uint32

// FileFlags records how a file's bytes were obtained and normalized.
type FileFlags uint8

const (
	// FileVirtual marks content that never came from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// Has reports whether every bit of want is set.
func (f FileFlags) Has(want FileFlags) bool { return f&want == want }

// File is one loaded translation unit.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// Newlines holds the byte offset of every '\n', ascending.
	Newlines []uint32
	Flags    FileFlags
}

// LineCol is a 1-based line and column; the column counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Col) }

// LineCol resolves the byte offset off inside f.
func (f *File) LineCol(off uint32) LineCol {
	return toLineCol(f.Newlines, off)
}
