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
	"encoding/binary"
	"io"
)

// HeaderLen is the size in bytes of the ACM header proper.
const HeaderLen = 14

const (
	wavcTotalSkip = 20 // WAVC magic + embedded header + 2 padding bytes.
	maxAcmLevel   = 15 // Implementations must support at least 0..15.
)

// StreamInfo describes the immutable parameters of an opened ACM stream,
// the Go counterpart to the reference decoder's ACMInfo.
type StreamInfo struct {
	Channels    int
	Rate        int
	Level       int
	Cols        int // 1 << Level
	Rows        int
	TotalValues int64
}

// parsedHeader is StreamInfo plus the header's own raw byte length
// consumed, so the caller knows where the body starts.
type parsedHeader struct {
	info       StreamInfo
	headerSkip int64
}

// parseHeader reads the 14-byte ACM header (or, with allowWAVC, a WAVC
// wrapper around it) from r and validates it per the reference decoder's
// acm_open_decoder checks.
func parseHeader(r io.Reader, allowWAVC bool) (parsedHeader, error) {
	var prefix [4]byte

	skip := int64(0)

	if allowWAVC {
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			return parsedHeader{}, wrapErr(CodeNotAcm, ErrNotAcm, err)
		}

		if prefix == [4]byte{'W', 'A', 'V', 'C'} {
			skip = wavcTotalSkip
		}
	}

	var hdr [HeaderLen]byte

	if skip != 0 {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return parsedHeader{}, wrapErr(CodeNotAcm, ErrNotAcm, err)
		}
	} else if allowWAVC {
		// Already consumed 4 bytes above that were not "WAVC"; they are
		// the first 4 header bytes.
		copy(hdr[:4], prefix[:])

		if _, err := io.ReadFull(r, hdr[4:]); err != nil {
			return parsedHeader{}, wrapErr(CodeNotAcm, ErrNotAcm, err)
		}
	} else {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return parsedHeader{}, wrapErr(CodeNotAcm, ErrNotAcm, err)
		}
	}

	info, err := decodeHeaderFields(hdr)
	if err != nil {
		return parsedHeader{}, err
	}

	if skip != 0 {
		var pad [wavcTotalSkip - 4 - HeaderLen]byte
		if _, err := io.ReadFull(r, pad[:]); err != nil {
			return parsedHeader{}, wrapErr(CodeNotAcm, ErrNotAcm, err)
		}

		return parsedHeader{info: info, headerSkip: wavcTotalSkip}, nil
	}

	return parsedHeader{info: info, headerSkip: HeaderLen}, nil
}

// decodeHeaderFields validates and extracts the fields of one raw
// 14-byte ACM header per the format table:
//
//	offset  size  field
//	0       3     magic 97 28 03
//	3       1     format marker 01
//	4       4     total_values (u32 LE)
//	8       2     channels
//	10      2     rate
//	12      1     acm_level
//	13      1     acm_rows
func decodeHeaderFields(hdr [HeaderLen]byte) (StreamInfo, error) {
	if hdr[0] != 0x97 || hdr[1] != 0x28 || hdr[2] != 0x03 {
		return StreamInfo{}, wrapErr(CodeNotAcm, ErrNotAcm, nil)
	}

	if hdr[3] != 0x01 {
		return StreamInfo{}, wrapErr(CodeNotAcm, ErrNotAcm, nil)
	}

	channels := int(binary.LittleEndian.Uint16(hdr[8:10]))
	if channels != 1 && channels != 2 {
		return StreamInfo{}, wrapErr(CodeBadFormat, ErrBadFormat, nil)
	}

	level := int(hdr[12])
	if level > maxAcmLevel {
		return StreamInfo{}, wrapErr(CodeBadFormat, ErrBadFormat, nil)
	}

	rows := int(hdr[13])
	if rows == 0 {
		return StreamInfo{}, wrapErr(CodeBadFormat, ErrBadFormat, nil)
	}

	return StreamInfo{
		Channels:    channels,
		Rate:        int(binary.LittleEndian.Uint16(hdr[10:12])),
		Level:       level,
		Cols:        1 << level,
		Rows:        rows,
		TotalValues: int64(binary.LittleEndian.Uint32(hdr[4:8])),
	}, nil
}
