package linebookmark

import "golang.org/x/text/encoding/charmap"

// singleByteEncoding adapts a golang.org/x/text/encoding/charmap table
// to the Encoding interface: every one of its 256 byte values decodes
// to exactly one rune at or below U+FFFF, so it occupies exactly one
// 16-bit code unit and byte offset and character index stay identical.
type singleByteEncoding struct {
	name string
	cm   *charmap.Charmap
}

func (e singleByteEncoding) Name() string         { return e.name }
func (singleByteEncoding) IsSingleByte() bool     { return true }
func (singleByteEncoding) Preamble() []byte       { return nil }
func (singleByteEncoding) MaxCharCount(n int) int { return n }

func (e singleByteEncoding) NewDecoder() Decoder {
	return &singleByteDecoder{cm: e.cm}
}

type singleByteDecoder struct {
	cm *charmap.Charmap
}

func (d *singleByteDecoder) Reset() {}

func (d *singleByteDecoder) Convert(src []byte, dst []uint16) (bytesUsed, charsProduced int, completed bool, err error) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = uint16(d.cm.DecodeByte(src[i]))
	}
	return n, n, n == len(src), nil
}
