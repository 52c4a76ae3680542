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

// options holds Open's configurable behavior, generalized from the
// reference decoder's fixed acm_open_decoder into the functional-options
// idiom used across the example pack for optional construction behavior.
type options struct {
	allowWAVC bool
}

// Option configures Open.
type Option func(*options)

// WithWAVC enables recognizing the WAVC container wrapper (magic "WAVC"
// followed by an embedded 14-byte ACM header), an optional compatibility
// extension some host shims accept and others do not. Off by default.
func WithWAVC() Option {
	return func(o *options) {
		o.allowWAVC = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
