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

// Package transform implements the ACM inverse transform: reconstructing
// acm_cols time-domain samples for one subblock from its amplitude/middle
// value coefficients.
//
// The reference decoder describes this as a recursive butterfly of depth
// acm_level, doubling the effective sequence length at each stage. This
// implementation is iterative with a pre-allocated scratch buffer (the
// reference's own design notes prefer this over recursion; both produce
// the same output, and only the output is pinned).
package transform

// Apply reconstructs one subblock's acm_cols samples in place.
//
// ampbuf must have length 2*cols, where cols = 1<<level. The first half
// (ampbuf[:cols]) is scratch, overwritten with the reconstructed samples.
// The second half (ampbuf[cols:]) holds the cols middle-value coefficients
// for this subblock, already scaled by the amplitude factor; it is
// consumed (read, not modified).
//
// wrap is the carried-over continuity bias from the previous big block's
// same row (0 at stream start / after a seek rewind). Apply adds it to
// the subblock's first reconstructed sample and returns the new wrap
// value to carry into the next big block (the subblock's last sample,
// after the bias has been applied).
//
// The reconstruction is an in-place lifting scheme: index 0 starts as the
// coarsest (level-0) coefficient; each stage expands a size-n prefix of
// ampbuf into a size-2n prefix by combining each entry with the next
// unconsumed coefficient via sum/difference, processed back-to-front so
// the expansion can happen in place without a second buffer.
func Apply(ampbuf []int32, level int, wrap int32) int32 {
	cols := 1 << level
	mid := ampbuf[cols : 2*cols : 2*cols]
	cur := ampbuf[:cols:cols]

	cur[0] = mid[0]
	consumed := 1
	size := 1

	for stage := 0; stage < level; stage++ {
		diffs := mid[consumed : consumed+size]

		for i := size - 1; i >= 0; i-- {
			avg := cur[i]
			d := diffs[i]
			cur[2*i] = avg + d
			cur[2*i+1] = avg - d
		}

		consumed += size
		size *= 2
	}

	cur[0] += wrap

	return cur[cols-1]
}
