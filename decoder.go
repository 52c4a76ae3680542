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

// Package acm decodes the Interplay ACM audio format into interleaved
// signed 16-bit PCM. The decoder is a single pull-based engine: callers
// request bytes via Read, and the decoder lazily decodes one big block at
// a time from an abstract byte Source.
package acm

import (
	"io"

	"github.com/markokr/libacm/internal/acmio"
	"github.com/markokr/libacm/internal/bitio"
)

const maxChannels = 2

// Decoder decodes one ACM stream. It is single-threaded and cooperative:
// an instance holds no internal locks and must not be shared across
// concurrent callers (all suspension points are synchronous reads from
// the byte Source).
type Decoder struct {
	src       Source
	seeker    io.Seeker
	closer    io.Closer
	headerLen int64
	dataLen   int64 // -1 if unknown

	info StreamInfo

	br *bitio.Reader

	// blocks[ch] and wrapbuf[ch] hold per-channel big-block state; both
	// channels decode in lockstep (same row/col grid) so a single
	// blockPos indexes both.
	blocks  [maxChannels][]int32
	wrapbuf [maxChannels][]int32
	ampbuf  []int32 // shared transform scratch, length 2*Cols

	blockReady  bool
	blockPos    int // per-channel sample index within the current big block
	frameChOff  int // 0..channels-1: which channel of the current frame Read is mid-way through

	deliveredPerChannel int64 // per-channel samples delivered so far
	perChanTotal        int64

	latchedErr error
}

// Open parses the ACM header from src and returns a ready decoder. src is
// owned by the returned Decoder for its lifetime; Close releases it
// exactly once, including when Open itself fails partway (fixing the
// reference CLI shim's documented leak on a failed open).
func Open(src Source, opts ...Option) (*Decoder, error) {
	o := buildOptions(opts)

	ph, err := parseHeader(src, o.allowWAVC)
	if err != nil {
		closeIfCloser(src)

		return nil, err
	}

	if ph.info.Channels > maxChannels {
		closeIfCloser(src)

		return nil, wrapErr(CodeBadFormat, ErrBadFormat, nil)
	}

	dataLen := int64(-1)
	if n, ok := acmio.DetectLength(src); ok {
		dataLen = n
	}

	d := &Decoder{
		src:          src,
		headerLen:    ph.headerSkip,
		dataLen:      dataLen,
		info:         ph.info,
		perChanTotal: ph.info.TotalValues / int64(ph.info.Channels),
	}

	if s, ok := src.(io.Seeker); ok {
		d.seeker = s
	}

	if c, ok := src.(io.Closer); ok {
		d.closer = c
	}

	d.br = bitio.NewReader(src)
	d.br.Reset(src, ph.headerSkip)

	cols, rows := ph.info.Cols, ph.info.Rows
	for ch := range ph.info.Channels {
		d.blocks[ch] = make([]int32, cols*rows)
		d.wrapbuf[ch] = make([]int32, rows)
	}

	d.ampbuf = make([]int32, 2*cols)

	return d, nil
}

func closeIfCloser(src Source) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}

// Info returns the stream's immutable parameters.
func (d *Decoder) Info() StreamInfo {
	return d.info
}

// Close releases the underlying byte source, if it supports closing.
// Safe to call exactly once; the Decoder must not be used afterward.
func (d *Decoder) Close() error {
	if d.closer == nil {
		return nil
	}

	return d.closer.Close()
}
