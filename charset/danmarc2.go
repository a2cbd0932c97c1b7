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
	"strconv"
)

// DanMarc2 implements the Danish DanMarc2 character set.
//
// Characters outside the table are written as '@' followed by four hex digits naming a code point
// in the Basic Multilingual Plane. The digits are written in upper case and read in either case,
// so "@03b1" comes back as "@03B1". A literal '@' is written "@@" in ISO2709 payloads.
//
// The variant decides the meaning of 0x24 and 0xA4. In ISO2709 payloads 0x24 is the currency sign
// and 0xA4 the dollar sign, as in ISO 5426. In the line formats 0x24 is the dollar sign so that
// subfield markers and end of record lines stay readable, and the '@' escapes of the line format
// itself are passed through untouched.
type DanMarc2 struct {
	opts options
}

// Name implements Charset.
func (d *DanMarc2) Name() string {
	return NameDanMarc2
}

// Variant returns the framing variant of d.
func (d *DanMarc2) Variant() Variant {
	return d.opts.variant
}

// ForVariant returns a DanMarc2 charset with the same settings as d and the given variant.
func (d *DanMarc2) ForVariant(v Variant) *DanMarc2 {
	o := d.opts
	o.variant = v
	return &DanMarc2{opts: o}
}

func (d *DanMarc2) lineFormat() bool {
	return d.opts.variant == VariantLineFormat
}

// Decode implements Charset.
func (d *DanMarc2) Decode(b []byte) (string, error) {
	out := &combiner{}
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == danMarc2Esc:
			n, err := d.decodeEscape(out, b, i)
			if err != nil {
				return "", err
			}
			i += n
			continue
		case c < 0x20 || c == 0x7f:
			out.control(rune(c))
		case c == 0x24:
			if d.lineFormat() {
				out.emit(dollarSign)
			} else {
				out.emit(currencySign)
			}
		case c < 0x80:
			out.emit(rune(c))
		case c == 0xa4:
			if d.lineFormat() {
				out.emit(currencySign)
			} else {
				out.emit(dollarSign)
			}
		default:
			r, ok := danMarc2High[c]
			if !ok {
				if !d.opts.lax {
					return "", newDecodeError(NameDanMarc2, b, i, "unmappable byte")
				}
				r = decodeReplacement
			}
			out.emit(r)
		}
		i++
	}
	return out.String(), nil
}

// decodeEscape handles the '@' at b[i] and returns the number of bytes consumed.
func (d *DanMarc2) decodeEscape(out *combiner, b []byte, i int) (int, error) {
	if i+1 < len(b) && b[i+1] == danMarc2Esc {
		if d.lineFormat() {
			out.emit(danMarc2Esc)
		}
		out.emit(danMarc2Esc)
		return 2, nil
	}
	if i+5 <= len(b) && isHex(b[i+1:i+5]) {
		v, _ := strconv.ParseUint(string(b[i+1:i+5]), 16, 32)
		out.emit(rune(v))
		return 5, nil
	}
	if !d.lineFormat() && !d.opts.lax {
		return 0, newDecodeError(NameDanMarc2, b, i, "invalid escape sequence")
	}
	out.emit(danMarc2Esc)
	return 1, nil
}

func isHex(b []byte) bool {
	for _, c := range b {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// mappable reports whether r has a direct single byte representation.
func (d *DanMarc2) mappable(r rune) bool {
	if r == danMarc2Esc {
		return false
	}
	if r < 0x80 || r == currencySign {
		return true
	}
	_, ok := danMarc2HighReverse[r]
	return ok
}

// Encode implements Charset.
func (d *DanMarc2) Encode(s string) ([]byte, error) {
	buf := make([]byte, 0, len(s))
	var err error
	for _, c := range splitClusters(s) {
		c = c.decompose(d.mappable)
		for _, m := range c.marks {
			if buf, err = d.appendRune(buf, m, c.offset); err != nil {
				return nil, err
			}
		}
		if c.base >= 0 {
			if buf, err = d.appendRune(buf, c.base, c.offset); err != nil {
				return nil, err
			}
		}
	}
	return buf, nil
}

func (d *DanMarc2) appendRune(buf []byte, r rune, offset int) ([]byte, error) {
	switch {
	case r == danMarc2Esc:
		if d.lineFormat() {
			return append(buf, danMarc2Esc), nil
		}
		return append(buf, danMarc2Esc, danMarc2Esc), nil
	case r == dollarSign:
		if d.lineFormat() {
			return append(buf, 0x24), nil
		}
		return append(buf, 0xa4), nil
	case r == currencySign:
		if d.lineFormat() {
			return append(buf, 0xa4), nil
		}
		return append(buf, 0x24), nil
	case r < 0x80:
		return append(buf, byte(r)), nil
	}
	if b, ok := danMarc2HighReverse[r]; ok {
		return append(buf, b), nil
	}
	if r <= 0xffff {
		return append(buf, danMarc2Esc, hexDigit(r>>12), hexDigit(r>>8), hexDigit(r>>4), hexDigit(r)), nil
	}
	if !d.opts.lax {
		return nil, newEncodeError(NameDanMarc2, r, offset)
	}
	return append(buf, encodeReplacement), nil
}

func hexDigit(r rune) byte {
	return "0123456789ABCDEF"[r&0xf]
}
