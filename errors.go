package linebookmark

import "errors"

// Error kinds returned by this package. All are fatal to the call that
// produced them; after one, only ResumeFromBookmark, ResumeFromBeginning,
// or Close are legal on the reader.
var (
	// ErrUnsupportedEncoding is returned at construction time when the
	// encoding is not single-byte, "utf-8", or "utf-16*".
	ErrUnsupportedEncoding = errors.New("linebookmark: unsupported encoding")

	// ErrUnsupportedOperation is returned by the reader's disallowed
	// primitives (ReadRune, Peek, ReadToEnd): serving them would
	// desynchronize the position tracker.
	ErrUnsupportedOperation = errors.New("linebookmark: operation not supported by BookmarkingLineReader")

	// ErrInvalidBookmark is returned when a resume target lies past the
	// end of the stream, or its byte offset falls inside a known preamble
	// without being the start sentinel.
	ErrInvalidBookmark = errors.New("linebookmark: invalid bookmark")
)
