// Package postrack is the single authority on byte<->character
// correspondence for a BookmarkingLineReader: it holds the absolute
// position of the start of the current decode buffer and answers
// queries about positions of characters within that buffer.
package postrack

import "github.com/treetopinnovationab/BookmarkingStreamReader/internal/advance"

// Tracker holds the absolute byte offset and absolute character index
// of the start of the current decode buffer, and the advancer that
// relates positions within it.
type Tracker struct {
	byteAnchor int64
	charAnchor int64

	bufByteLen int64
	bufCharLen int64

	singleByte bool
	advancer   advance.Advancer
	info       advance.Info
}

// MovedToPosition forgets all buffer state and sets the anchor to
// (bytePos, charIndex). Called on open, on resume, and whenever the
// reader deliberately discards its buffer.
func (t *Tracker) MovedToPosition(bytePos, charIndex int64) {
	t.byteAnchor = bytePos
	t.charAnchor = charIndex
	t.bufByteLen = 0
	t.bufCharLen = 0
	t.info = advance.Info{}
	if t.advancer != nil {
		t.advancer.Reset()
	}
}

// MovedPastPreambleOfByteLength advances the byte anchor by n without
// touching the char anchor. Applied exactly once, when the encoding's
// preamble bytes are detected and skipped at the head of the stream.
func (t *Tracker) MovedPastPreambleOfByteLength(n int64) {
	t.byteAnchor += n
}

// ReadBytesAndChars is called on every refill after bytes have been
// decoded to characters. It folds the previous buffer's lengths into
// the anchor, records the new buffer's lengths, and (for multi-byte
// encodings) asks the appropriate advancer to build fresh advancement
// info from the new bytes.
func (t *Tracker) ReadBytesAndChars(byteCount, charCount int64, bytes []byte, singleByte bool, encodingName string) error {
	t.byteAnchor += t.bufByteLen
	t.charAnchor += t.bufCharLen

	t.bufByteLen = byteCount
	t.bufCharLen = charCount

	if singleByte {
		t.singleByte = true
		t.advancer = nil
		t.info = advance.Info{}
		return nil
	}

	t.singleByte = false
	if t.advancer == nil || t.advancer.LastEncoding() != encodingName {
		adv, err := advance.New(encodingName)
		if err != nil {
			return err
		}
		t.advancer = adv
	}

	t.info = t.advancer.Build(bytes)
	return nil
}

// AbsoluteBytePositionOfCharIndexInCurrentBuffer returns the absolute
// byte offset at which character index k (relative to the buffer's
// char-start) begins. For multi-byte encodings it returns -1 if k lies
// past the buffer; for single-byte encodings it returns byteAnchor+k
// for any k.
//
// When k is queried exactly at the boundary where a trailing character
// is incomplete (straddling into the next buffer), this method returns
// the absolute offset of that incomplete character's first byte rather
// than -1 or a one-past-the-end sentinel. The reader does issue this
// query, through lastByteOfChar and captureBeforeReadingBookmark.
func (t *Tracker) AbsoluteBytePositionOfCharIndexInCurrentBuffer(k int64) int64 {
	if t.singleByte {
		return t.byteAnchor + k
	}

	if k == t.bufCharLen && t.info.ExtraIncompleteCharWithByteCount == 0 {
		return t.byteAnchor + t.bufByteLen
	}

	for i, ci := range t.info.CharIndexesAtByteIndex {
		if ci >= k {
			if i == 0 && ci == k {
				return t.byteAnchor + int64(i) - int64(t.info.FirstCharExtendsBackByteCount)
			}
			return t.byteAnchor + int64(i)
		}
	}
	return -1
}

// AbsoluteCharPositionOfCharIndexInCurrentBuffer returns the absolute
// character index at which character index k (relative to the buffer)
// begins. Unlike the byte position, this never needs a table scan:
// every 16-bit code unit — including each half of a surrogate pair —
// occupies exactly one slot in the decoded character buffer, so the
// relative-to-absolute mapping is a plain offset.
func (t *Tracker) AbsoluteCharPositionOfCharIndexInCurrentBuffer(k int64) int64 {
	return t.charAnchor + k
}

// ForgetState fully resets the tracker: anchor to 0, flags cleared,
// advancer dropped.
func (t *Tracker) ForgetState() {
	*t = Tracker{}
}
