package linebookmark

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

type utf8Encoding struct{}

func (utf8Encoding) Name() string           { return "utf-8" }
func (utf8Encoding) IsSingleByte() bool     { return false }
func (utf8Encoding) Preamble() []byte       { return []byte{0xEF, 0xBB, 0xBF} }
func (utf8Encoding) MaxCharCount(n int) int { return n }
func (utf8Encoding) NewDecoder() Decoder    { return &utf8Decoder{} }

type utf8Decoder struct{}

func (d *utf8Decoder) Reset() {}

func (d *utf8Decoder) Convert(src []byte, dst []uint16) (bytesUsed, charsProduced int, completed bool, err error) {
	si, di := 0, 0

	for si < len(src) {
		r, size := utf8.DecodeRune(src[si:])

		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(src[si:]) {
				// Incomplete scalar straddling the end of this buffer;
				// leave it for the next refill.
				break
			}
			return si, di, false, fmt.Errorf("linebookmark: invalid UTF-8 byte sequence at offset %d", si)
		}

		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if di+need > len(dst) {
			break
		}

		if need == 2 {
			hi, lo := utf16.EncodeRune(r)
			dst[di] = uint16(hi)
			dst[di+1] = uint16(lo)
		} else {
			dst[di] = uint16(r)
		}

		di += need
		si += size
	}

	return si, di, si == len(src), nil
}
