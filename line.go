package linebookmark

// LineEnding identifies how a line was terminated.
type LineEnding int

const (
	// None means end-of-stream was reached without a terminator.
	None LineEnding = iota
	CR
	LF
	CRLF
)

func (e LineEnding) String() string {
	switch e {
	case CR:
		return "\r"
	case LF:
		return "\n"
	case CRLF:
		return "\r\n"
	default:
		return ""
	}
}

// byteLen returns how many bytes the terminator itself occupies.
func (e LineEnding) byteLen() int64 {
	switch e {
	case CR, LF:
		return 1
	case CRLF:
		return 2
	default:
		return 0
	}
}

// DetailedLine is the result of one successful ReadDetailedLine call.
type DetailedLine struct {
	// TextWithoutLineEnding is the decoded text of the line, excluding
	// its terminator.
	TextWithoutLineEnding string

	LineEnding LineEnding

	// StartPosition is the absolute byte offset of the line's first byte.
	StartPosition int64

	// LastLineEndingPosition is the absolute byte offset of the last byte
	// of the line including its terminator, or of the last text byte if
	// LineEnding == None.
	LastLineEndingPosition int64

	// LastSeenCharIndex is the absolute character index of the final code
	// unit emitted for this line, including its terminator.
	LastSeenCharIndex int64

	// BeforeReadingBookmark was captured prior to reading this line.
	BeforeReadingBookmark LineBookmark
}

// TextWithLineEnding returns the line's text followed by its terminator.
func (l DetailedLine) TextWithLineEnding() string {
	return l.TextWithoutLineEnding + l.LineEnding.String()
}

// PositionAfterLineEnding is the byte offset at which the next line begins.
func (l DetailedLine) PositionAfterLineEnding() int64 {
	return l.LastLineEndingPosition + 1
}

// LastTextPosition is the byte offset of the last byte of text, excluding
// the terminator.
func (l DetailedLine) LastTextPosition() int64 {
	return l.LastLineEndingPosition - l.LineEnding.byteLen()
}

// RereadBookmark returns a bookmark that, when resumed from, re-reads
// this exact line.
func (l DetailedLine) RereadBookmark() LineBookmark {
	return l.BeforeReadingBookmark
}

// ReadNextBookmark returns a bookmark that, when resumed from, reads the
// line following this one: the position and character index one past
// the last code unit this line consumed.
func (l DetailedLine) ReadNextBookmark() LineBookmark {
	return LineBookmark{
		Position:  l.PositionAfterLineEnding(),
		CharIndex: l.LastSeenCharIndex + 1,
	}
}
