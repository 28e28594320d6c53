package advance

import (
	"reflect"
	"testing"
)

func TestNewRejectsUnknownEncoding(t *testing.T) {
	if _, err := New("shift-jis"); err == nil {
		t.Fatal("expected an error for an unsupported encoding name")
	}
}

func TestUTF8AdvancerASCII(t *testing.T) {
	a, err := New("utf-8")
	if err != nil {
		t.Fatal(err)
	}

	info := a.Build([]byte("abc"))
	want := []int64{0, 1, 2}
	if !reflect.DeepEqual(info.CharIndexesAtByteIndex, want) {
		t.Fatalf("CharIndexesAtByteIndex = %v, want %v", info.CharIndexesAtByteIndex, want)
	}
	if info.FirstCharExtendsBackByteCount != 0 || info.ExtraIncompleteCharWithByteCount != 0 {
		t.Fatalf("unexpected straddle state: %+v", info)
	}
}

// Every byte of a multi-byte scalar maps to the scalar's own starting
// character index, and a scalar above U+FFFF consumes two character
// slots for the code unit count that follow it.
func TestUTF8AdvancerMultiByteScalars(t *testing.T) {
	a, err := New("utf-8")
	if err != nil {
		t.Fatal(err)
	}

	// "é" (2 bytes, 1 code unit) then the U+1F600 emoji (4 bytes, 2 code
	// units, a surrogate pair) then "z" (1 byte, 1 code unit).
	buf := append([]byte{0xC3, 0xA9}, append([]byte{0xF0, 0x9F, 0x98, 0x80}, 'z')...)
	info := a.Build(buf)

	want := []int64{0, 0, 1, 1, 1, 1, 3}
	if !reflect.DeepEqual(info.CharIndexesAtByteIndex, want) {
		t.Fatalf("CharIndexesAtByteIndex = %v, want %v", info.CharIndexesAtByteIndex, want)
	}
	if info.ExtraIncompleteCharWithByteCount != 0 {
		t.Fatalf("expected no incomplete trailing character, got %+v", info)
	}
}

// A scalar's lead and continuation bytes split across two refills must
// still resolve to the same character index once the whole thing has
// arrived.
func TestUTF8AdvancerScalarStraddlesBuffers(t *testing.T) {
	a, err := New("utf-8")
	if err != nil {
		t.Fatal(err)
	}

	// "é" split after its lead byte.
	first := a.Build([]byte{'a', 0xC3})
	if first.ExtraIncompleteCharWithByteCount != 1 {
		t.Fatalf("expected 1 incomplete trailing byte, got %+v", first)
	}

	second := a.Build([]byte{0xA9, 'b'})
	if second.FirstCharExtendsBackByteCount != 1 {
		t.Fatalf("expected the first byte to extend back into the prior buffer, got %+v", second)
	}
	want := []int64{0, 1}
	if !reflect.DeepEqual(second.CharIndexesAtByteIndex, want) {
		t.Fatalf("CharIndexesAtByteIndex = %v, want %v", second.CharIndexesAtByteIndex, want)
	}
}

func TestUTF8AdvancerResetClearsStraddleState(t *testing.T) {
	a, err := New("utf-8")
	if err != nil {
		t.Fatal(err)
	}

	a.Build([]byte{0xC3}) // leaves a scalar in progress
	a.Reset()

	info := a.Build([]byte{0xA9, 'b'})
	if info.FirstCharExtendsBackByteCount != 0 {
		t.Fatalf("expected Reset to clear straddle state, got %+v", info)
	}
}

func TestUTF16AdvancerPairsBytesRegardlessOfSurrogates(t *testing.T) {
	a, err := New("utf-16be")
	if err != nil {
		t.Fatal(err)
	}

	// Two 2-byte code units: surrogate pairing doesn't matter here, only
	// byte pairing does.
	info := a.Build([]byte{0xD8, 0x3D, 0xDE, 0x00})
	want := []int64{0, 0, 1, 1}
	if !reflect.DeepEqual(info.CharIndexesAtByteIndex, want) {
		t.Fatalf("CharIndexesAtByteIndex = %v, want %v", info.CharIndexesAtByteIndex, want)
	}
}

func TestUTF16AdvancerCodeUnitStraddlesBuffers(t *testing.T) {
	a, err := New("utf-16le")
	if err != nil {
		t.Fatal(err)
	}

	first := a.Build([]byte{0x41, 0x00, 0x5A})
	if first.ExtraIncompleteCharWithByteCount != 1 {
		t.Fatalf("expected 1 pending byte, got %+v", first)
	}

	second := a.Build([]byte{0x00})
	if second.FirstCharExtendsBackByteCount != 1 {
		t.Fatalf("expected the byte to extend back into the prior buffer, got %+v", second)
	}
	if second.CharIndexesAtByteIndex[0] != 0 {
		t.Fatalf("expected char index 0, got %v", second.CharIndexesAtByteIndex)
	}
}
