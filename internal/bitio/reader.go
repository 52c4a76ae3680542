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

// Package bitio provides a little-endian, LSB-first variable-length bit
// reader over an io.Reader byte source.
//
// Ported in spirit from the ALAC decoder's BitBuffer (reusable backing
// storage, no per-packet allocation), adapted to LSB-first bit order and to
// streaming from an arbitrary io.Reader instead of a single preloaded byte
// slice.
package bitio

import (
	"errors"
	"io"
)

// ErrOverrun is returned once the underlying source is exhausted and no
// more bits can be produced. After the first occurrence the reader is
// latched: every subsequent call returns the same error.
var ErrOverrun = errors.New("bitio: source exhausted")

const refillSize = 4096

// Reader extracts unsigned integers of 1..24 bits, LSB-first within each
// byte, bytes consumed in ascending stream order.
type Reader struct {
	src io.Reader
	buf []byte
	pos int // next unread byte in buf
	size int // valid bytes in buf

	bufStartOfs int64 // absolute offset corresponding to buf[0]

	acc  uint64
	bits uint

	latched    bool
	latchedErr error
}

// NewReader creates a Reader with a freshly allocated ring buffer.
func NewReader(src io.Reader) *Reader {
	r := &Reader{buf: make([]byte, refillSize)}
	r.Reset(src, 0)

	return r
}

// Reset rebinds the reader to a new source and base offset, reusing the
// existing backing buffer rather than reallocating it.
func (r *Reader) Reset(src io.Reader, baseOffset int64) {
	r.src = src
	r.pos = 0
	r.size = 0
	r.bufStartOfs = baseOffset
	r.acc = 0
	r.bits = 0
	r.latched = false
	r.latchedErr = nil
}

// fill refills buf from src when exhausted. Returns io.EOF (or the
// source's error) when no further bytes are available.
func (r *Reader) fill() error {
	if r.pos < r.size {
		return nil
	}

	r.bufStartOfs += int64(r.size)

	n, err := r.src.Read(r.buf)
	r.pos = 0
	r.size = n

	if n > 0 {
		return nil
	}

	if err == nil {
		err = io.EOF
	}

	return err
}

func (r *Reader) nextByte() (byte, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}

	b := r.buf[r.pos]
	r.pos++

	return b, nil
}

// ReadBits reads an unsigned integer of numBits bits (1 <= numBits <= 24),
// LSB-first. Once the source is exhausted, the reader latches ErrOverrun
// and every subsequent call returns it without touching the source again.
func (r *Reader) ReadBits(numBits uint) (uint32, error) {
	if r.latched {
		return 0, r.latchedErr
	}

	for r.bits < numBits {
		b, err := r.nextByte()
		if err != nil {
			r.latched = true
			r.latchedErr = ErrOverrun

			return 0, r.latchedErr
		}

		r.acc |= uint64(b) << r.bits
		r.bits += 8
	}

	mask := uint64(1)<<numBits - 1
	v := uint32(r.acc & mask)
	r.acc >>= numBits
	r.bits -= numBits

	return v, nil
}

// Latched reports whether the reader has hit end of stream and is stuck
// returning ErrOverrun.
func (r *Reader) Latched() bool {
	return r.latched
}

// RawTell reports the absolute byte offset of the byte containing the
// next unconsumed bit. Useful for position accounting, not for decoding.
func (r *Reader) RawTell() int64 {
	unconsumedBytes := int64(r.bits+7) / 8

	return r.bufStartOfs + int64(r.pos) - unconsumedBytes
}
