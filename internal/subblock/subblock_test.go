package subblock

import (
	"bytes"
	"errors"
	"testing"

	"github.com/markokr/libacm/internal/bitio"
)

// bitWriter is a tiny LSB-first packer local to this test file, the
// write-side mirror of internal/bitio.Reader used to build known-good
// bit streams for each pack code.
type bitWriter struct {
	buf  []byte
	acc  uint64
	bits uint
}

func (w *bitWriter) writeBits(v uint32, numBits uint) {
	mask := uint32(1)<<numBits - 1
	w.acc |= uint64(v&mask) << w.bits
	w.bits += numBits

	for w.bits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.bits -= 8
	}
}

func (w *bitWriter) reader() *bitio.Reader {
	buf := append([]byte{}, w.buf...)
	if w.bits > 0 {
		buf = append(buf, byte(w.acc))
	}

	return bitio.NewReader(bytes.NewReader(buf))
}

func TestUnpack_Code0Zero(t *testing.T) {
	t.Parallel()

	out := make([]int32, 4)
	for i := range out {
		out[i] = 99
	}

	if err := Unpack(0, nil, 4, out); err != nil {
		t.Fatal(err)
	}

	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0", i, v)
		}
	}
}

func TestUnpack_Code1UnaryTrit(t *testing.T) {
	t.Parallel()

	var bw bitWriter
	bw.writeBits(0, 1) // zero
	bw.writeBits(1, 1) // nonzero
	bw.writeBits(0, 1) // sign=0 -> +1
	bw.writeBits(1, 1) // nonzero
	bw.writeBits(1, 1) // sign=1 -> -1

	out := make([]int32, 3)
	if err := Unpack(1, bw.reader(), 3, out); err != nil {
		t.Fatal(err)
	}

	want := []int32{0, 1, -1}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestUnpack_SignMagnitude(t *testing.T) {
	t.Parallel()

	var bw bitWriter
	bw.writeBits(0, 1) // sign=0
	bw.writeBits(5, 3) // magnitude=5
	bw.writeBits(1, 1) // sign=1
	bw.writeBits(2, 3) // magnitude=2 -> -2

	out := make([]int32, 2)
	if err := Unpack(4, bw.reader(), 2, out); err != nil {
		t.Fatal(err)
	}

	if out[0] != 5 || out[1] != -2 {
		t.Fatalf("got [%d %d], want [5 -2]", out[0], out[1])
	}
}

func TestUnpack_SignMagnitudeZeroEscape(t *testing.T) {
	t.Parallel()

	var bw bitWriter
	bw.writeBits(1, 1)     // sign=1
	bw.writeBits(0, 3)     // magnitude=0 -> escape
	bw.writeBits(12345, 16)

	out := make([]int32, 1)
	if err := Unpack(4, bw.reader(), 1, out); err != nil {
		t.Fatal(err)
	}

	if out[0] != -12345 {
		t.Fatalf("got %d, want -12345", out[0])
	}
}

func TestUnpack_Dense(t *testing.T) {
	t.Parallel()

	var bw bitWriter
	bw.writeBits(uint32(int32(-4)&0x1f), 5) // code 12 -> numBits = 12-7 = 5
	bw.writeBits(uint32(int32(7)&0x1f), 5)

	out := make([]int32, 2)
	if err := Unpack(12, bw.reader(), 2, out); err != nil {
		t.Fatal(err)
	}

	if out[0] != -4 || out[1] != 7 {
		t.Fatalf("got [%d %d], want [-4 7]", out[0], out[1])
	}
}

func TestUnpack_EscapePrefixShortCodes(t *testing.T) {
	t.Parallel()

	var bw bitWriter
	bw.writeBits(0, 1) // prefix terminator immediately: prefix=0
	bw.writeBits(0, 1) // sign=0
	bw.writeBits(1, 1) // magnitude (1 bit, prefix+1=1) = 1

	out := make([]int32, 1)
	if err := Unpack(16, bw.reader(), 1, out); err != nil {
		t.Fatal(err)
	}

	if out[0] != 1 {
		t.Fatalf("got %d, want 1", out[0])
	}
}

func TestUnpack_EscapePrefixLongEscape(t *testing.T) {
	t.Parallel()

	var bw bitWriter
	bw.writeBits(0xff, 8) // 8 one-bits: long escape, no terminator consumed
	bw.writeBits(0x1234, 16)
	bw.writeBits(0x5678, 16)

	out := make([]int32, 1)
	if err := Unpack(16, bw.reader(), 1, out); err != nil {
		t.Fatal(err)
	}

	want := int32(0x12345678)
	if out[0] != want {
		t.Fatalf("got %#x, want %#x", out[0], want)
	}
}

func TestUnpack_BadPackCode(t *testing.T) {
	t.Parallel()

	out := make([]int32, 1)

	for _, code := range []int{-1, 17, 31, 1000} {
		if err := Unpack(code, nil, 1, out); !errors.Is(err, ErrBadPackCode) {
			t.Fatalf("code %d: got %v, want ErrBadPackCode", code, err)
		}
	}
}
