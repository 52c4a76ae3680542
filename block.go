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

package acm

import (
	"errors"
	"io"

	"github.com/markokr/libacm/internal/subblock"
	"github.com/markokr/libacm/internal/transform"
)

const (
	packCodeBits = 5
	expBits      = 4
)

// errCleanEOF signals that the source ended exactly on a big-block
// boundary: not a fault, just the natural end of the compressed body.
// It never escapes the package; ensureBlock turns it into zero-padding.
var errCleanEOF = errors.New("acm: clean eof at block boundary")

// decodeBigBlock reads one acm_rows x channels grid of subblocks,
// applying amplitude scaling and the inverse transform to reconstruct
// acm_cols samples per (channel, row) into d.blocks.
func (d *Decoder) decodeBigBlock() error {
	channels := d.info.Channels
	rows := d.info.Rows
	cols := d.info.Cols
	level := d.info.Level

	for row := 0; row < rows; row++ {
		for ch := 0; ch < channels; ch++ {
			firstSubblock := row == 0 && ch == 0

			code, err := d.br.ReadBits(packCodeBits)
			if err != nil {
				if firstSubblock {
					return errCleanEOF
				}

				return wrapErr(CodeUnexpectedEOF, ErrUnexpectedEOF, err)
			}

			exp, err := d.br.ReadBits(expBits)
			if err != nil {
				return wrapErr(CodeUnexpectedEOF, ErrUnexpectedEOF, err)
			}

			mid := d.ampbuf[cols : 2*cols]
			if err := subblock.Unpack(int(code), d.br, cols, mid); err != nil {
				if errors.Is(err, subblock.ErrBadPackCode) {
					return wrapErr(CodeCorrupt, ErrCorrupt, err)
				}

				return wrapErr(CodeUnexpectedEOF, ErrUnexpectedEOF, err)
			}

			for i := range mid {
				mid[i] <<= exp
			}

			newWrap := transform.Apply(d.ampbuf, level, d.wrapbuf[ch][row])
			copy(d.blocks[ch][row*cols:(row+1)*cols], d.ampbuf[:cols])
			d.wrapbuf[ch][row] = newWrap
		}
	}

	return nil
}

// ensureBlock makes sure a decoded big block is available to serve from,
// decoding the next one (or, past the compressed body's natural end but
// short of total_values, synthesizing a zero block) if needed.
func (d *Decoder) ensureBlock() error {
	if d.blockReady {
		return nil
	}

	if d.deliveredPerChannel >= d.perChanTotal {
		return io.EOF
	}

	err := d.decodeBigBlock()
	switch {
	case err == nil:
		d.blockReady = true
		d.blockPos = 0
		d.frameChOff = 0

		return nil
	case errors.Is(err, errCleanEOF):
		for ch := range d.info.Channels {
			clear(d.blocks[ch])
		}

		d.blockReady = true
		d.blockPos = 0
		d.frameChOff = 0

		return nil
	default:
		return err
	}
}

// Read fills dst with interleaved PCM samples, decoding big blocks on
// demand. wordWidth must be 2 (16-bit). Once a fault is latched, this
// call and every subsequent call return the same error; a fault that
// occurs mid-call is not surfaced until the following call, so bytes
// already produced before the fault are never lost.
func (d *Decoder) Read(dst []byte, bigEndian bool, wordWidth int, signed bool) (int, error) {
	if wordWidth != 2 {
		return 0, wrapErr(CodeOther, ErrOther, errBadWordWidth)
	}

	if d.latchedErr != nil {
		return 0, d.latchedErr
	}

	channels := d.info.Channels
	blockLen := d.info.Cols * d.info.Rows

	n := 0

	for len(dst) >= 2 {
		if d.deliveredPerChannel >= d.perChanTotal {
			break
		}

		if !d.blockReady || d.blockPos >= blockLen {
			d.blockReady = false

			if err := d.ensureBlock(); err != nil {
				if !errors.Is(err, io.EOF) {
					d.latchedErr = err
				}

				break
			}
		}

		sample := d.blocks[d.frameChOff][d.blockPos]
		writeSample(dst, sample, bigEndian, signed)
		dst = dst[2:]
		n += 2

		d.frameChOff++
		if d.frameChOff >= channels {
			d.frameChOff = 0
			d.blockPos++
			d.deliveredPerChannel++
		}
	}

	return n, nil
}

var errBadWordWidth = errors.New("word_width must be 2")

// writeSample clamps v to the int16 range and writes it as a 16-bit PCM
// word, per the requested endianness and signedness. Unsigned output is
// the signed representation with its sign bit flipped, so switching
// signed off is exactly an XOR 0x8000 of the signed bytes.
func writeSample(dst []byte, v int32, bigEndian, signed bool) {
	switch {
	case v > 32767:
		v = 32767
	case v < -32768:
		v = -32768
	}

	u := uint16(int16(v))
	if !signed {
		u ^= 0x8000
	}

	if bigEndian {
		dst[0] = byte(u >> 8)
		dst[1] = byte(u)
	} else {
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
	}
}
