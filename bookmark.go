package linebookmark

// LineBookmark is an opaque, copyable resume point for a
// BookmarkingLineReader: the absolute byte offset in the source and
// the absolute character index (counted in 16-bit code units) at
// which the next line begins.
//
// The zero value is not a valid bookmark; use Start.
type LineBookmark struct {
	Position  int64
	CharIndex int64
}

// Start is the sentinel bookmark meaning "before the stream, including
// its optional preamble."
var Start = LineBookmark{Position: -1, CharIndex: -1}

// IsStart reports whether bm is the start-of-stream sentinel.
func (bm LineBookmark) IsStart() bool {
	return bm.Position == -1 && bm.CharIndex == -1
}
