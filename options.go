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

package gomarc

import (
	"github.com/nlnwa/gomarc/charset"
)

type errorPolicy int8

const (
	ErrIgnore errorPolicy = 0 // Ignore the given error.
	ErrWarn   errorPolicy = 1 // Ignore given error, but submit a warning.
	ErrFail   errorPolicy = 2 // Fail on given error.
)

type options struct {
	charset           charset.Charset
	errSyntax         errorPolicy
	whitespacePadding bool
	xmlDeclaration    bool
}

// Option configures readers and writers.
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
		charset:           charset.MustLookup(charset.NameUTF8),
		errSyntax:         ErrWarn,
		whitespacePadding: true,
		xmlDeclaration:    false,
	}
}

func newOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithCharset sets the character set used to decode input.
//
// defaults to UTF-8
func WithCharset(cs charset.Charset) Option {
	return newFuncOption(func(o *options) {
		if cs != nil {
			o.charset = cs
		}
	})
}

// WithSyntaxErrorPolicy sets the policy for handling malformed fields.
//
// ErrFail aborts the record, ErrWarn skips the field and records the problem in the reader's
// Validation, ErrIgnore skips the field silently.
//
// defaults to ErrWarn
func WithSyntaxErrorPolicy(policy errorPolicy) Option {
	return newFuncOption(func(o *options) {
		o.errSyntax = policy
	})
}

// WithWhitespacePadding tells line format readers whether subfield values are padded with a
// single space on each side. Exactly one space is removed, so unpadded input is read correctly
// unless a value starts with a space.
//
// defaults to true
func WithWhitespacePadding(padding bool) Option {
	return newFuncOption(func(o *options) {
		o.whitespacePadding = padding
	})
}

// WithXMLDeclaration makes XML writers start their output with an XML declaration.
//
// defaults to false
func WithXMLDeclaration(declaration bool) Option {
	return newFuncOption(func(o *options) {
		o.xmlDeclaration = declaration
	})
}
