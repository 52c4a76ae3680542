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

// Package subblock implements the seventeen ACM subblock unpacking
// schemes (pack codes 0..16), table-dispatched by the 5-bit pack code
// read ahead of each subblock. Each routine fills exactly cols middle
// values; the caller scales them by the subblock's amplitude factor.
//
// Generalized from the reference decoder's description (bit width, sign
// extension, and short/escape code shape per pack code) into a fixed
// dispatch table, per the design note that seventeen unpack routines are
// not polymorphism in the OO sense but a branch-predictable lookup table
// — the same table-of-small-functions idiom the ALAC predictor uses to
// select unpcBlock4/unpcBlock8/unpcBlockGeneral by coefficient count.
package subblock

const (
	// NumCodes is the number of valid pack codes (0..16).
	NumCodes = 17

	escapePrefixBits = 8
)

// BitReader is the minimal surface subblock unpacking needs from
// internal/bitio.Reader.
type BitReader interface {
	ReadBits(numBits uint) (uint32, error)
}

type unpackFunc func(br BitReader, cols int, out []int32) error

var table [NumCodes]unpackFunc

func init() {
	table[0] = unpackZero
	table[1] = unpackUnaryTrit

	for code := 2; code <= 7; code++ {
		table[code] = signMagnitudeUnpacker(uint(code))
	}

	for code := 8; code <= 15; code++ {
		table[code] = denseUnpacker(uint(code - 7))
	}

	table[16] = unpackEscapePrefix
}

// Unpack fills out[:cols] with the middle values for one subblock using
// the unpacker selected by code. code outside 0..16 is a corrupt stream.
func Unpack(code int, br BitReader, cols int, out []int32) error {
	if code < 0 || code >= NumCodes {
		return ErrBadPackCode
	}

	return table[code](br, cols, out[:cols])
}

// signExtend sign-extends the low numBits bits of v to a full int32.
func signExtend(v uint32, numBits uint) int32 {
	shift := 32 - numBits

	return int32(v<<shift) >> shift
}

// unpackZero implements pack code 0: the silence subblock.
func unpackZero(_ BitReader, cols int, out []int32) error {
	clear(out[:cols])

	return nil
}

// unpackUnaryTrit implements pack code 1: a 1-bit flag per sample selects
// zero or a signed unit impulse, read as at most two bits per sample.
func unpackUnaryTrit(br BitReader, cols int, out []int32) error {
	for i := range cols {
		nonzero, err := br.ReadBits(1)
		if err != nil {
			return err
		}

		if nonzero == 0 {
			out[i] = 0

			continue
		}

		sign, err := br.ReadBits(1)
		if err != nil {
			return err
		}

		if sign == 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}

	return nil
}

// signMagnitudeUnpacker implements pack codes 2..7: a sign bit followed
// by a (numBits-1)-bit magnitude. An all-zero magnitude is reserved as a
// zero escape: it is followed by a 16-bit two's complement value giving
// the full-range sample instead of the short code's tiny range.
func signMagnitudeUnpacker(numBits uint) unpackFunc {
	return func(br BitReader, cols int, out []int32) error {
		for i := range cols {
			sign, err := br.ReadBits(1)
			if err != nil {
				return err
			}

			mag, err := br.ReadBits(numBits - 1)
			if err != nil {
				return err
			}

			if mag == 0 {
				ext, err := br.ReadBits(16)
				if err != nil {
					return err
				}

				val := signExtend(ext, 16)
				if sign != 0 {
					val = -val
				}

				out[i] = val

				continue
			}

			val := int32(mag) //nolint:gosec // mag fits in numBits-1 <= 6 bits
			if sign != 0 {
				val = -val
			}

			out[i] = val
		}

		return nil
	}
}

// denseUnpacker implements pack codes 8..15: a fixed numBits-wide two's
// complement sample, no escape, every value encoded at the same width.
func denseUnpacker(numBits uint) unpackFunc {
	return func(br BitReader, cols int, out []int32) error {
		for i := range cols {
			raw, err := br.ReadBits(numBits)
			if err != nil {
				return err
			}

			out[i] = signExtend(raw, numBits)
		}

		return nil
	}
}

// unpackEscapePrefix implements pack code 16: a unary prefix (0..7 one
// bits terminated by a zero bit, or 8 one bits with no terminator) selects
// the width of a sign+magnitude code; a maxed-out prefix is the long
// escape, reading a full 32-bit two's complement value across two 16-bit
// reads (get_bits is bounded to 24 bits per call).
func unpackEscapePrefix(br BitReader, cols int, out []int32) error {
	for i := range cols {
		prefix := 0

		for prefix < escapePrefixBits {
			b, err := br.ReadBits(1)
			if err != nil {
				return err
			}

			if b == 0 {
				break
			}

			prefix++
		}

		if prefix >= escapePrefixBits {
			hi, err := br.ReadBits(16)
			if err != nil {
				return err
			}

			lo, err := br.ReadBits(16)
			if err != nil {
				return err
			}

			out[i] = int32(hi<<16 | lo) //nolint:gosec // intentional 32-bit reassembly

			continue
		}

		sign, err := br.ReadBits(1)
		if err != nil {
			return err
		}

		mag, err := br.ReadBits(uint(prefix + 1))
		if err != nil {
			return err
		}

		val := int32(mag) //nolint:gosec // mag fits in prefix+1 <= 8 bits
		if sign != 0 {
			val = -val
		}

		out[i] = val
	}

	return nil
}
