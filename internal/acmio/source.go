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

// Package acmio detects optional capabilities (seek, length) on a caller
// supplied io.Reader, the way the original library's acm_io_callbacks let
// every capability but read be absent.
package acmio

import "io"

// DetectLength reports the total byte length of r by seeking to the end
// and restoring the original position, mirroring the reference decoder's
// _get_length_file (seek to end, measure, seek back). Returns false if r
// does not support seeking or the probe fails partway.
func DetectLength(r io.Reader) (int64, bool) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return -1, false
	}

	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1, false
	}

	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return -1, false
	}

	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return -1, false
	}

	return end, true
}

// RewindTo seeks r to the given absolute offset, reporting whether the
// source supports seeking at all.
func RewindTo(r io.Reader, offset int64) (bool, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return false, nil
	}

	_, err := seeker.Seek(offset, io.SeekStart)

	return true, err
}
