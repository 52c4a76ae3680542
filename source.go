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
	"bytes"
	"io"
	"os"
)

// Source is the byte source the decoder pulls from. Only Read is
// required; Open detects io.Seeker and io.Closer support via type
// assertion, matching the reference decoder's "any callback but read may
// be absent" contract without requiring a capability struct.
type Source = io.Reader

// OpenFile opens filename and returns a decoder reading from it. The
// returned Decoder closes the file on Close.
func OpenFile(filename string, opts ...Option) (*Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, wrapErr(CodeOpen, ErrOpen, err)
	}

	dec, err := Open(f, opts...)
	if err != nil {
		// Open has already closed f.
		return nil, err
	}

	return dec, nil
}

// MemorySource returns a read-seeker over an in-memory ACM byte slice,
// for callers without a file handle.
func MemorySource(data []byte) io.ReadSeeker {
	return bytes.NewReader(data)
}
