package linebookmark

import (
	"bytes"
	"io"
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/treetopinnovationab/BookmarkingStreamReader/internal/postrack"
)

// DefaultBufferSize is the byte buffer size used when Options.BufferSize
// is left at zero.
const DefaultBufferSize = 4096

// MinBufferSize is the smallest byte buffer size a reader will accept.
// Below this, each refill makes too little progress per physical read
// to decode lines at a reasonable rate.
const MinBufferSize = 16

// Options configures a BookmarkingLineReader.
type Options struct {
	// DetectPreamble, when true, makes the reader test the first bytes
	// of a fresh stream against the encoding's preamble (e.g. the UTF-8
	// BOM) and silently skip it. Detection happens only when the reader
	// is at the very start of the stream (construction, or a resume from
	// the Start sentinel); on a resume from any other bookmark, it makes
	// ResumeFromBookmark reject a position inside the preamble.
	DetectPreamble bool

	// BufferSize is the byte buffer capacity used for each refill.
	// Zero means DefaultBufferSize; values below MinBufferSize are
	// raised to it.
	BufferSize int
}

func (o Options) normalized() Options {
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.BufferSize < MinBufferSize {
		o.BufferSize = MinBufferSize
	}
	return o
}

// BookmarkingLineReader scans a ByteSource for lines while maintaining
// both a byte offset and a 16-bit-code-unit character index for every
// position it reports, so a caller can resume reading from any
// previously reported bookmark without redecoding the stream from its
// start.
type BookmarkingLineReader struct {
	source   ByteSource
	encoding Encoding
	decoder  Decoder
	options  Options

	tracker postrack.Tracker

	rawBuf         []byte
	decodeLeftover []byte

	charBuf []uint16
	charPos int
	charLen int

	preambleChecked    bool
	skippedPreambleLen int64

	atStreamStart bool
	exhausted     bool
}

// NewBookmarkingLineReader constructs a reader over source, decoding it
// as enc, positioned at the very start of the stream.
func NewBookmarkingLineReader(source ByteSource, enc Encoding, options Options) (*BookmarkingLineReader, error) {
	if err := checkSupported(enc); err != nil {
		return nil, err
	}

	options = options.normalized()

	r := &BookmarkingLineReader{
		source:   source,
		encoding: enc,
		decoder:  enc.NewDecoder(),
		options:  options,
		rawBuf:   make([]byte, options.BufferSize),
		charBuf:  make([]uint16, enc.MaxCharCount(options.BufferSize)),
	}

	if err := r.ResumeFromBeginning(); err != nil {
		return nil, err
	}
	return r, nil
}

// ResumeFromBeginning seeks the byte source to its start and resets all
// reader state, re-enabling preamble detection exactly as at
// construction. Equivalent to ResumeFromBookmark(Start).
func (r *BookmarkingLineReader) ResumeFromBeginning() error {
	return r.ResumeFromBookmark(Start)
}

// ResumeFromBookmark seeks the byte source to bm.Position (or to the
// very start, with preamble detection re-enabled, when bm is the Start
// sentinel) and resets the reader so the next ReadDetailedLine begins
// decoding from there with bm.CharIndex as the character index origin.
//
// The caller is responsible for only ever presenting bookmarks this
// reader (or an earlier run of an equivalent reader, over an unmodified
// prefix of the same stream, with the same encoding) produced.
func (r *BookmarkingLineReader) ResumeFromBookmark(bm LineBookmark) error {
	r.decoder.Reset()
	r.decodeLeftover = r.decodeLeftover[:0]
	r.charPos = 0
	r.charLen = 0
	r.exhausted = false
	r.skippedPreambleLen = 0

	if bm.IsStart() {
		if err := r.source.Seek(0); err != nil {
			return err
		}
		r.tracker.MovedToPosition(0, 0)
		r.preambleChecked = false
		r.atStreamStart = true
		return nil
	}

	if bm.Position < 0 || bm.CharIndex < 0 {
		return errors.Wrapf(ErrInvalidBookmark, "position=%d charIndex=%d", bm.Position, bm.CharIndex)
	}

	length, err := r.source.Length()
	if err != nil {
		return err
	}
	if bm.Position > length {
		return errors.Wrapf(ErrInvalidBookmark, "position=%d lies past end of stream (length=%d)", bm.Position, length)
	}

	if r.options.DetectPreamble {
		if preambleLen := int64(len(r.encoding.Preamble())); preambleLen > 0 && bm.Position < preambleLen {
			return errors.Wrapf(ErrInvalidBookmark, "position=%d falls inside the %d-byte preamble", bm.Position, preambleLen)
		}
	}

	if err := r.source.Seek(bm.Position); err != nil {
		return err
	}
	r.tracker.MovedToPosition(bm.Position, bm.CharIndex)
	// A caller-supplied, non-sentinel bookmark is always past any
	// preamble; never re-detect or re-subtract one.
	r.preambleChecked = true
	r.atStreamStart = false
	return nil
}

// ReadDetailedLine reads and returns the next line, or (nil, nil) at a
// clean end of stream with no pending partial line.
func (r *BookmarkingLineReader) ReadDetailedLine() (*DetailedLine, error) {
	if r.exhausted && r.charPos >= r.charLen {
		return nil, nil
	}

	before := r.captureBeforeReadingBookmark()

	var accum []uint16
	var lastBytePos, lastCharPos int64 = -1, -1

	for {
		if r.charPos >= r.charLen {
			if err := r.refill(); err != nil {
				return nil, err
			}
			if r.exhausted {
				if len(accum) == 0 {
					return nil, nil
				}
				return r.finishLine(accum, before, None, lastBytePos, lastCharPos), nil
			}
			continue
		}

		p := r.charPos
		c := r.charBuf[p]

		switch c {
		case '\r':
			crBytePos := r.lastByteOfChar(p)
			crCharPos := r.tracker.AbsoluteCharPositionOfCharIndexInCurrentBuffer(int64(p))
			r.charPos++

			if r.charPos >= r.charLen {
				if err := r.refill(); err != nil {
					return nil, err
				}
			}

			if !r.exhausted && r.charPos < r.charLen && r.charBuf[r.charPos] == '\n' {
				lfBytePos := r.lastByteOfChar(r.charPos)
				r.charPos++
				return r.finishLine(accum, before, CRLF, lfBytePos, crCharPos+1), nil
			}

			return r.finishLine(accum, before, CR, crBytePos, crCharPos), nil

		case '\n':
			lfBytePos := r.lastByteOfChar(p)
			lfCharPos := r.tracker.AbsoluteCharPositionOfCharIndexInCurrentBuffer(int64(p))
			r.charPos++
			return r.finishLine(accum, before, LF, lfBytePos, lfCharPos), nil

		default:
			lastBytePos = r.lastByteOfChar(p)
			lastCharPos = r.tracker.AbsoluteCharPositionOfCharIndexInCurrentBuffer(int64(p))
			accum = append(accum, c)
			r.charPos++
		}
	}
}

// captureBeforeReadingBookmark snapshots the position the reader is
// about to read from, before any refill this call might trigger. At
// the very start of the stream — including when a preamble has not yet
// been (or will never be) skipped — this is the Start sentinel.
func (r *BookmarkingLineReader) captureBeforeReadingBookmark() LineBookmark {
	if r.atStreamStart {
		r.atStreamStart = false
		return Start
	}
	bytePos := r.tracker.AbsoluteBytePositionOfCharIndexInCurrentBuffer(int64(r.charPos))
	charPos := r.tracker.AbsoluteCharPositionOfCharIndexInCurrentBuffer(int64(r.charPos))
	return LineBookmark{Position: bytePos, CharIndex: charPos}
}

// lastByteOfChar returns the absolute position of the last byte that
// belongs to the character at relative index k, which for multi-byte
// encodings may span more than one byte (UTF-8 scalars) or more than
// one code unit (surrogate pairs spend two slots on the same 4 bytes).
// It is computed as one byte before wherever character k+1 begins,
// which is well defined even when k is itself the low half of a
// surrogate pair.
func (r *BookmarkingLineReader) lastByteOfChar(k int) int64 {
	next := r.tracker.AbsoluteBytePositionOfCharIndexInCurrentBuffer(int64(k) + 1)
	return next - 1
}

func (r *BookmarkingLineReader) finishLine(accum []uint16, before LineBookmark, ending LineEnding, lastBytePos, lastCharPos int64) *DetailedLine {
	startPos := before.Position
	if before.IsStart() {
		startPos = r.skippedPreambleLen
	}
	return &DetailedLine{
		TextWithoutLineEnding:  string(utf16.Decode(accum)),
		LineEnding:             ending,
		StartPosition:          startPos,
		LastLineEndingPosition: lastBytePos,
		LastSeenCharIndex:      lastCharPos,
		BeforeReadingBookmark:  before,
	}
}

// refill pulls one physical chunk of raw bytes from the source, decodes
// as many characters from it (plus any undecoded tail left over from
// the previous chunk) as fit in the character buffer, and hands the
// result to the position tracker.
//
// A multi-byte scalar can straddle two physical chunks. decodeLeftover
// carries the undecoded tail bytes forward so the decoder can still
// assemble the scalar once its remaining bytes arrive, but the tracker
// is always handed this chunk's bytes exactly as read off the source —
// never decodeLeftover prepended a second time — so the advancer sees
// the same byte stream the source produced and can track the straddle
// itself via its own persisted state. It loops internally when a
// decode attempt produces zero characters because the scalar isn't
// complete yet and more bytes are needed.
func (r *BookmarkingLineReader) refill() error {
	for {
		n, err := r.source.Read(r.rawBuf)
		if n == 0 {
			if err != nil && err != io.EOF {
				return errors.Wrap(err, "linebookmark: reading byte source")
			}
			// EOF with an incomplete trailing character pending: discard
			// it silently rather than surfacing a decode error.
			r.decodeLeftover = r.decodeLeftover[:0]
			r.exhausted = true
			return nil
		}

		physicallyRead := r.rawBuf[:n]

		if !r.preambleChecked {
			r.preambleChecked = true
			preamble := r.encoding.Preamble()
			if r.options.DetectPreamble && len(preamble) > 0 &&
				n >= len(preamble) && bytes.Equal(physicallyRead[:len(preamble)], preamble) {
				physicallyRead = physicallyRead[len(preamble):]
				n = len(physicallyRead)
				r.tracker.MovedPastPreambleOfByteLength(int64(len(preamble)))
				r.skippedPreambleLen = int64(len(preamble))
			}
		}

		combined := append(r.decodeLeftover, physicallyRead...)

		maxChars := r.encoding.MaxCharCount(len(combined))
		if maxChars > len(r.charBuf) {
			maxChars = len(r.charBuf)
		}

		bytesUsed, charsProduced, _, err := r.decoder.Convert(combined, r.charBuf[:maxChars])
		if err != nil {
			return err
		}

		if len(combined)-bytesUsed > 8 {
			return errors.New("linebookmark: buffer too small to decode a single character")
		}
		r.decodeLeftover = append(r.decodeLeftover[:0], combined[bytesUsed:]...)

		if err := r.tracker.ReadBytesAndChars(int64(n), int64(charsProduced), physicallyRead, r.encoding.IsSingleByte(), r.encoding.Name()); err != nil {
			return err
		}

		if charsProduced == 0 {
			continue
		}

		r.charPos = 0
		r.charLen = charsProduced
		return nil
	}
}

// Close releases the underlying byte source.
func (r *BookmarkingLineReader) Close() error {
	return r.source.Close()
}

// ReadRune, Peek and ReadToEnd are deliberately unsupported: a
// BookmarkingLineReader only ever advances by whole lines, because
// partial-rune or partial-line positions cannot be expressed as a
// resumable bookmark.

func (r *BookmarkingLineReader) ReadRune() (rune, int, error) {
	return 0, 0, ErrUnsupportedOperation
}

func (r *BookmarkingLineReader) Peek(int) ([]byte, error) {
	return nil, ErrUnsupportedOperation
}

func (r *BookmarkingLineReader) ReadToEnd() (string, error) {
	return "", ErrUnsupportedOperation
}
