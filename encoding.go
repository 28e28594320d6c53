package linebookmark

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Encoding is the external collaborator that tells the reader how to
// recognize and decode a byte stream. Implementations must report
// whether they are single-byte, their preamble bytes (if any), a bound
// on how many 16-bit code units a given number of bytes can produce,
// and an incremental Decoder.
type Encoding interface {
	// Name is the encoding's canonical identity, used to decide when a
	// cached Advancer can be reused across refills.
	Name() string

	IsSingleByte() bool

	// Preamble returns the byte sequence identifying this encoding at the
	// head of a stream (e.g. the UTF-8 BOM), or nil if it has none.
	Preamble() []byte

	// MaxCharCount bounds the number of 16-bit code units byteCount bytes
	// could decode to.
	MaxCharCount(byteCount int) int

	NewDecoder() Decoder
}

// Decoder incrementally decodes bytes into 16-bit code units.
type Decoder interface {
	// Convert decodes as many complete characters from src as fit in dst,
	// returning how many bytes were consumed, how many code units were
	// produced, and whether all of src was consumed. When dst fills up or
	// src ends mid-character, completed is false and the undecoded
	// remainder must be represented again (by the caller re-slicing src)
	// on the next call.
	Convert(src []byte, dst []uint16) (bytesUsed, charsProduced int, completed bool, err error)

	// Reset discards any in-progress character state.
	Reset()
}

// supportedSingleByteEncodings maps canonical names to charmap tables.
// Every entry here maps each of the 256 byte values to exactly one rune
// at or below U+FFFF, satisfying the single-byte fast path's invariant.
var supportedSingleByteEncodings = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"koi8-r":       charmap.KOI8R,
}

// LookupEncoding resolves a canonical encoding name, case-insensitively,
// to an Encoding. Only registered names resolve: "utf-8", "utf-16le",
// "utf-16be", and the keys of supportedSingleByteEncodings; any other
// name returns ErrUnsupportedEncoding.
func LookupEncoding(name string) (Encoding, error) {
	lower := strings.ToLower(name)

	switch lower {
	case "utf-8":
		return utf8Encoding{}, nil
	case "utf-16le":
		return utf16Encoding{bigEndian: false}, nil
	case "utf-16be":
		return utf16Encoding{bigEndian: true}, nil
	}

	if cm, ok := supportedSingleByteEncodings[lower]; ok {
		return singleByteEncoding{name: lower, cm: cm}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
}

// checkSupported enforces the single-byte/utf-8/utf-16 gate against an
// arbitrary Encoding value, not just ones obtained from LookupEncoding.
func checkSupported(e Encoding) error {
	if e.IsSingleByte() {
		return nil
	}
	name := strings.ToLower(e.Name())
	if name == "utf-8" || strings.HasPrefix(name, "utf-16") {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedEncoding, e.Name())
}
