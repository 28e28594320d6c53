package linebookmark

import "testing"

// Every registered single-byte encoding must map every one of the 256
// possible byte values to exactly one 16-bit code unit: this is what
// lets the position tracker treat byte offset and character index as
// identical for these encodings, without ever consulting an advancer.
func TestSingleByteEncodingsMapEveryByteToExactlyOneCodeUnit(t *testing.T) {
	for name := range supportedSingleByteEncodings {
		t.Run(name, func(t *testing.T) {
			enc, err := LookupEncoding(name)
			if err != nil {
				t.Fatalf("LookupEncoding(%q): %v", name, err)
			}

			src := make([]byte, 256)
			for i := range src {
				src[i] = byte(i)
			}
			dst := make([]uint16, 256)

			d := enc.NewDecoder()
			bytesUsed, charsProduced, completed, err := d.Convert(src, dst)
			if err != nil {
				t.Fatalf("%s: Convert returned an error: %v", name, err)
			}
			if !completed {
				t.Fatalf("%s: Convert did not report completed", name)
			}
			if bytesUsed != 256 {
				t.Fatalf("%s: bytesUsed = %d, want 256", name, bytesUsed)
			}
			if charsProduced != 256 {
				t.Fatalf("%s: charsProduced = %d, want 256", name, charsProduced)
			}

			// Re-run one byte at a time: every single value, in isolation,
			// must still produce exactly one code unit, matching the
			// whole-buffer run above byte for byte.
			for i := 0; i < 256; i++ {
				d.Reset()
				one := make([]uint16, 1)
				n, produced, ok, err := d.Convert([]byte{byte(i)}, one)
				if err != nil {
					t.Fatalf("%s: Convert(0x%02X) returned an error: %v", name, i, err)
				}
				if n != 1 || produced != 1 || !ok {
					t.Fatalf("%s: Convert(0x%02X) = bytesUsed=%d charsProduced=%d completed=%v, want 1,1,true", name, i, n, produced, ok)
				}
				if one[0] != dst[i] {
					t.Fatalf("%s: byte 0x%02X decoded to %d alone but %d as part of the full buffer", name, i, one[0], dst[i])
				}
			}
		})
	}
}
