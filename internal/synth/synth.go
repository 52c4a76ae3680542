/*
   Copyright Marko Kreen and contributors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package synth builds synthetic ACM byte streams for round-trip testing.
// It is not an encoder in the product sense (encoding is out of scope):
// every subblock it emits uses pack code 16, the escape code, so the
// caller's chosen middle-value coefficients survive at full 32-bit
// precision with no pack-code quantization. Build also runs those same
// coefficients through internal/transform.Apply -- the decoder's own
// reconstruction primitive -- to record the PCM a correct decoder must
// produce, giving tests a reference value without reimplementing the
// transform a second time.
package synth

import (
	"encoding/binary"

	"github.com/markokr/libacm/internal/transform"
)

const (
	headerLen        = 14
	packCodeBits     = 5
	expBits          = 4
	escapeCode       = 16
	escapePrefixBits = 8
)

// bitWriter packs bits LSB-first within each byte, the write-side mirror
// of internal/bitio.Reader's layout.
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

func (w *bitWriter) flush() []byte {
	if w.bits > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc = 0
		w.bits = 0
	}

	return w.buf
}

// Stream is a synthetic ACM file plus the PCM it must decode to.
type Stream struct {
	Channels int
	Rate     int
	Level    int
	Rows     int
	Bytes    []byte
	// PCM[ch] holds the full per-channel sample sequence across every
	// encoded big block, in decode order.
	PCM [][]int32
}

// CoeffFunc supplies the cols middle-value coefficients for one
// (block, channel, row) subblock.
type CoeffFunc func(block, ch, row int) []int32

// Build encodes numBlocks big blocks (rows x channels subblocks each,
// acm_cols = 1<<level samples per subblock) from caller-supplied
// coefficients, and returns both the resulting byte stream and the PCM
// a spec-conformant decoder must reconstruct from it.
func Build(channels, rate, level, rows, numBlocks int, coeffs CoeffFunc) Stream {
	cols := 1 << level
	totalValues := int64(numBlocks) * int64(rows) * int64(cols) * int64(channels)

	var hdr [headerLen]byte

	hdr[0], hdr[1], hdr[2] = 0x97, 0x28, 0x03
	hdr[3] = 0x01
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(totalValues)) //nolint:gosec // test fixture
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(channels))   //nolint:gosec // test fixture
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(rate))      //nolint:gosec // test fixture
	hdr[12] = byte(level)
	hdr[13] = byte(rows)

	var bw bitWriter

	wrap := make([][]int32, channels)
	pcm := make([][]int32, channels)

	for ch := range channels {
		wrap[ch] = make([]int32, rows)
		pcm[ch] = make([]int32, 0, numBlocks*rows*cols)
	}

	ampbuf := make([]int32, 2*cols)

	for block := range numBlocks {
		for row := range rows {
			for ch := range channels {
				mid := coeffs(block, ch, row)

				bw.writeBits(escapeCode, packCodeBits)
				bw.writeBits(0, expBits)

				for _, v := range mid {
					u := uint32(v) //nolint:gosec // intentional 32-bit reinterpretation
					bw.writeBits(0xff, escapePrefixBits)
					bw.writeBits(u>>16, 16)
					bw.writeBits(u&0xffff, 16)
				}

				copy(ampbuf[cols:], mid)
				wrap[ch][row] = transform.Apply(ampbuf, level, wrap[ch][row])
				pcm[ch] = append(pcm[ch], append([]int32(nil), ampbuf[:cols]...)...)
			}
		}
	}

	body := bw.flush()
	data := make([]byte, 0, headerLen+len(body))
	data = append(data, hdr[:]...)
	data = append(data, body...)

	return Stream{
		Channels: channels,
		Rate:     rate,
		Level:    level,
		Rows:     rows,
		Bytes:    data,
		PCM:      pcm,
	}
}
