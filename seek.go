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
	"time"

	"github.com/markokr/libacm/internal/acmio"
)

// discardChunk bounds how many per-channel samples a forward seek
// decodes and throws away in one Read call.
const discardChunk = 4096

// PCMTell returns the number of per-channel PCM samples delivered so far.
func (d *Decoder) PCMTell() int64 {
	return d.deliveredPerChannel
}

// PCMTotal returns the stream's total per-channel PCM sample count.
func (d *Decoder) PCMTotal() int64 {
	return d.perChanTotal
}

// RawTell returns the decoder's current byte offset into the source.
func (d *Decoder) RawTell() int64 {
	return d.br.RawTell()
}

// RawTotal returns the source's total byte length, or -1 if unknown
// (the source does not support seeking).
func (d *Decoder) RawTotal() int64 {
	return d.dataLen
}

// TimeTell returns the playback position corresponding to PCMTell.
func (d *Decoder) TimeTell() time.Duration {
	return pcmToDuration(d.PCMTell(), d.info.Rate)
}

// TimeTotal returns the playback duration corresponding to PCMTotal.
func (d *Decoder) TimeTotal() time.Duration {
	return pcmToDuration(d.PCMTotal(), d.info.Rate)
}

func pcmToDuration(pcm int64, rate int) time.Duration {
	if rate == 0 {
		return 0
	}

	ms := (pcm * 10 / int64(rate)) * 100

	return time.Duration(ms) * time.Millisecond
}

// Bitrate estimates the stream's average bitrate in bits/second from its
// raw byte length and total playback time, falling back to a nominal
// 13000 when the source length is unknown (matching the reference
// decoder's documented fallback). A stream shorter than one second is
// treated as lasting one second.
func (d *Decoder) Bitrate() int {
	if d.dataLen < 0 || d.info.Rate == 0 {
		return 13000
	}

	secs := d.PCMTotal() / int64(d.info.Rate)
	if secs == 0 {
		secs = 1
	}

	return int(d.dataLen / secs * 8)
}

// SeekPCM seeks to per-channel PCM sample position p, clamped to
// [0, PCMTotal()]. Seeking forward decodes and discards blocks; seeking
// backward rewinds the source to the end of the header and redecodes
// from the start, since the format carries no random-access markers.
// Backward seeks on a non-seekable source fail with ErrNotSeekable,
// except when p has already been reached (no rewind needed).
func (d *Decoder) SeekPCM(p int64) (int64, error) {
	if p < 0 {
		p = 0
	}

	if p > d.perChanTotal {
		p = d.perChanTotal
	}

	if p < d.deliveredPerChannel {
		if d.seeker == nil {
			return d.deliveredPerChannel, wrapErr(CodeNotSeekable, ErrNotSeekable, nil)
		}

		if _, err := acmio.RewindTo(d.src, d.headerLen); err != nil {
			return d.deliveredPerChannel, wrapErr(CodeNotSeekable, ErrNotSeekable, err)
		}

		d.resetDecodeState()
	}

	channels := int64(d.info.Channels)
	discard := make([]byte, discardChunk*channels*2)

	for d.deliveredPerChannel < p {
		want := p - d.deliveredPerChannel
		if want > discardChunk {
			want = discardChunk
		}

		n, err := d.Read(discard[:want*channels*2], false, 2, true)
		if n <= 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return d.deliveredPerChannel, err
			}

			if d.latchedErr != nil {
				return d.deliveredPerChannel, d.latchedErr
			}

			break
		}
	}

	return d.deliveredPerChannel, nil
}

// SeekTime seeks to the PCM sample nearest the given playback time, using
// the reference decoder's coarsened (ms/100)*(rate/10) mapping.
func (d *Decoder) SeekTime(dur time.Duration) (int64, error) {
	ms := int64(dur / time.Millisecond)
	samples := (ms / 100) * (int64(d.info.Rate) / 10)

	return d.SeekPCM(samples)
}

// resetDecodeState clears all block-decode bookkeeping so decoding can
// restart from the byte immediately following the header.
func (d *Decoder) resetDecodeState() {
	d.br.Reset(d.src, d.headerLen)

	for ch := range d.info.Channels {
		clear(d.wrapbuf[ch])
	}

	d.blockReady = false
	d.blockPos = 0
	d.frameChOff = 0
	d.deliveredPerChannel = 0
	d.latchedErr = nil
}

// ReadLoop repeats Read until dst is full or no further progress is
// possible, the Go counterpart to the reference decoder's
// acm_read_loop wrapper around the raw single-shot read callback.
func (d *Decoder) ReadLoop(dst []byte, bigEndian bool, wordWidth int, signed bool) (int, error) {
	got := 0

	for len(dst) > 0 {
		n, err := d.Read(dst, bigEndian, wordWidth, signed)
		if n > 0 {
			dst = dst[n:]
			got += n

			continue
		}

		if err != nil && got == 0 {
			return got, err
		}

		break
	}

	return got, nil
}
