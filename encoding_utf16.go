package linebookmark

type utf16Encoding struct {
	bigEndian bool
}

func (e utf16Encoding) Name() string {
	if e.bigEndian {
		return "utf-16be"
	}
	return "utf-16le"
}

func (utf16Encoding) IsSingleByte() bool { return false }

func (e utf16Encoding) Preamble() []byte {
	if e.bigEndian {
		return []byte{0xFE, 0xFF}
	}
	return []byte{0xFF, 0xFE}
}

func (utf16Encoding) MaxCharCount(byteCount int) int { return byteCount / 2 }

func (e utf16Encoding) NewDecoder() Decoder {
	return &utf16Decoder{bigEndian: e.bigEndian}
}

type utf16Decoder struct {
	bigEndian bool
}

func (d *utf16Decoder) Reset() {}

func (d *utf16Decoder) Convert(src []byte, dst []uint16) (bytesUsed, charsProduced int, completed bool, err error) {
	si, di := 0, 0

	for si+1 < len(src) && di < len(dst) {
		var u uint16
		if d.bigEndian {
			u = uint16(src[si])<<8 | uint16(src[si+1])
		} else {
			u = uint16(src[si]) | uint16(src[si+1])<<8
		}
		dst[di] = u
		di++
		si += 2
	}

	return si, di, si == len(src), nil
}
