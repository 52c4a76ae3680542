package acm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/markokr/libacm/internal/synth"
)

// readOnly hides io.Seeker from a bytes.Reader, for testing decoder
// behavior against a non-seekable source.
type readOnly struct {
	r *bytes.Reader
}

func (s *readOnly) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func multiBlockStream(t *testing.T) synth.Stream {
	t.Helper()

	return synth.Build(1, 8000, 2, 2, 5, func(block, _, row int) []int32 {
		base := int32(block*10 + row)

		return []int32{base, 1, 0, 0}
	})
}

func readAllSamples(t *testing.T, dec *Decoder, n int64) []int16 {
	t.Helper()

	buf := make([]byte, n*2)

	if _, err := dec.ReadLoop(buf, false, 2, true); err != nil {
		t.Fatalf("ReadLoop: %v", err)
	}

	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}

	return out
}

func TestSeekPCM_ForwardMatchesSuffix(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)
	total := int64(len(s.PCM[0]))

	full := readAllSamples(t, openStream(t, s), total)

	const skip = 5

	dec := openStream(t, s)

	pos, err := dec.SeekPCM(skip)
	if err != nil {
		t.Fatalf("SeekPCM: %v", err)
	}

	if pos != skip {
		t.Fatalf("SeekPCM returned %d, want %d", pos, skip)
	}

	suffix := readAllSamples(t, dec, total-skip)

	for i, v := range suffix {
		if v != full[skip+int64(i)] {
			t.Fatalf("sample %d: got %d, want %d", i, v, full[skip+int64(i)])
		}
	}
}

func TestSeekPCM_Backward(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)
	total := int64(len(s.PCM[0]))

	dec := openStream(t, s)

	_ = readAllSamples(t, dec, total/2)

	if _, err := dec.SeekPCM(0); err != nil {
		t.Fatalf("SeekPCM backward: %v", err)
	}

	if dec.PCMTell() != 0 {
		t.Fatalf("PCMTell after backward seek = %d, want 0", dec.PCMTell())
	}

	got := readAllSamples(t, dec, total)
	want := readAllSamples(t, openStream(t, s), total)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSeekPCM_BackwardOnNonSeekableFails(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)

	dec, err := Open(&readOnly{r: bytes.NewReader(s.Bytes)})
	if err != nil {
		t.Fatal(err)
	}

	_ = readAllSamples(t, dec, 3)

	_, err = dec.SeekPCM(0)
	if !errors.Is(err, ErrNotSeekable) {
		t.Fatalf("got %v, want ErrNotSeekable", err)
	}
}

func TestSeekPCM_ZeroOnNonSeekableAtStartSucceeds(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)

	dec, err := Open(&readOnly{r: bytes.NewReader(s.Bytes)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := dec.SeekPCM(0); err != nil {
		t.Fatalf("seek to 0 at pcm_tell 0 should not require seeking: %v", err)
	}
}

func TestSeekPCM_ClampsToTotal(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)
	total := int64(len(s.PCM[0]))

	dec := openStream(t, s)

	pos, err := dec.SeekPCM(total + 1000)
	if err != nil {
		t.Fatal(err)
	}

	if pos != total {
		t.Fatalf("got %d, want %d", pos, total)
	}
}

func TestPCMTell_Monotonic(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)
	dec := openStream(t, s)

	buf := make([]byte, 4)

	prev := int64(0)

	for range 5 {
		if _, err := dec.ReadLoop(buf, false, 2, true); err != nil {
			t.Fatal(err)
		}

		cur := dec.PCMTell()
		if cur < prev {
			t.Fatalf("PCMTell went backward: %d -> %d", prev, cur)
		}

		prev = cur
	}
}

func TestBitrate_FallsBackWhenLengthUnknown(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)

	dec, err := Open(&readOnly{r: bytes.NewReader(s.Bytes)})
	if err != nil {
		t.Fatal(err)
	}

	if got := dec.Bitrate(); got != 13000 {
		t.Fatalf("Bitrate = %d, want 13000", got)
	}
}

func TestTimeTotal_ZeroAtStart(t *testing.T) {
	t.Parallel()

	s := multiBlockStream(t)
	dec := openStream(t, s)

	if dec.TimeTell() != 0 {
		t.Fatalf("TimeTell at start = %v, want 0", dec.TimeTell())
	}

	// 40 samples at 8000 Hz last 5 ms; the coarsened (10*pcm/rate)*100 ms
	// mapping counts whole 100 ms steps, so the total rounds down to 0.
	if dec.TimeTotal() != 0 {
		t.Fatalf("TimeTotal = %v, want 0", dec.TimeTotal())
	}
}
