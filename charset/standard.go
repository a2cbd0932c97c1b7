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

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Standard is a Charset backed by a golang.org/x/text encoding.
type Standard struct {
	name string
	enc  encoding.Encoding
	opts options
}

func newStandard(name string, enc encoding.Encoding, opts options) *Standard {
	return &Standard{name: name, enc: enc, opts: opts}
}

// Name implements Charset.
func (s *Standard) Name() string {
	return s.name
}

// Encoding returns the underlying x/text encoding.
func (s *Standard) Encoding() encoding.Encoding {
	return s.enc
}

// Decode implements Charset.
func (s *Standard) Decode(b []byte) (string, error) {
	if s.enc == unicode.UTF8 {
		return s.decodeUTF8(b)
	}
	if cm, ok := s.enc.(*charmap.Charmap); ok {
		return s.decodeCharmap(cm, b)
	}
	out, err := s.enc.NewDecoder().Bytes(b)
	if err != nil {
		if s.opts.lax {
			return string(out), nil
		}
		return "", &UnmappableCharacterError{Charset: s.name, Bytes: b, Rune: -1, msg: err.Error()}
	}
	return string(out), nil
}

func (s *Standard) decodeUTF8(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	if !s.opts.lax {
		for i := 0; i < len(b); {
			r, size := utf8.DecodeRune(b[i:])
			if r == utf8.RuneError && size <= 1 {
				return "", newDecodeError(s.name, b, i, "invalid byte sequence")
			}
			i += size
		}
	}
	return strings.ToValidUTF8(string(b), string(decodeReplacement)), nil
}

func (s *Standard) decodeCharmap(cm *charmap.Charmap, b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))
	for i, c := range b {
		r := cm.DecodeByte(c)
		if r == utf8.RuneError && !s.opts.lax {
			return "", newDecodeError(s.name, b, i, "unmappable byte")
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

// Encode implements Charset.
func (s *Standard) Encode(str string) ([]byte, error) {
	if s.enc == unicode.UTF8 {
		if !utf8.ValidString(str) && !s.opts.lax {
			return nil, newEncodeError(s.name, utf8.RuneError, invalidUTF8Offset(str))
		}
		return []byte(strings.ToValidUTF8(str, string(decodeReplacement))), nil
	}
	if cm, ok := s.enc.(*charmap.Charmap); ok {
		return s.encodeCharmap(cm, str)
	}
	out, err := s.enc.NewEncoder().Bytes([]byte(str))
	if err == nil {
		return out, nil
	}
	// Fall back to rune by rune to locate or replace the offending characters.
	var buf []byte
	for i, r := range str {
		rb, err := s.enc.NewEncoder().Bytes([]byte(string(r)))
		if err != nil {
			if !s.opts.lax {
				return nil, newEncodeError(s.name, r, i)
			}
			rb, _ = s.enc.NewEncoder().Bytes([]byte{encodeReplacement})
		}
		buf = append(buf, rb...)
	}
	return buf, nil
}

func (s *Standard) encodeCharmap(cm *charmap.Charmap, str string) ([]byte, error) {
	buf := make([]byte, 0, len(str))
	for i, r := range str {
		c, ok := cm.EncodeRune(r)
		if !ok {
			if !s.opts.lax {
				return nil, newEncodeError(s.name, r, i)
			}
			c = encodeReplacement
		}
		buf = append(buf, c)
	}
	return buf, nil
}

func invalidUTF8Offset(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(s)
}
