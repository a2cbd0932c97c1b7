/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package charset

type options struct {
	lax     bool
	variant Variant
}

// Option configures a Charset returned by Lookup.
type Option interface {
	apply(*options)
}

// funcOption wraps a function that modifies options into an
// implementation of the Option interface.
type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(po *options) {
	fo.f(po)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

func defaultOptions() options {
	return options{
		lax:     false,
		variant: VariantISO2709,
	}
}

func newOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

// WithLax selects substitution instead of failure for characters that cannot be mapped.
// Decoding substitutes U+FFFD, encoding substitutes '?'.
//
// defaults to false
func WithLax(lax bool) Option {
	return newFuncOption(func(o *options) {
		o.lax = lax
	})
}

// WithVariant selects the framing rules of the legacy character sets.
//
// defaults to VariantISO2709
func WithVariant(v Variant) Option {
	return newFuncOption(func(o *options) {
		o.variant = v
	})
}
