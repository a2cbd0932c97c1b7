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

const esc = 0x1b

// Marc8 implements the MARC-8 character set.
//
// Supported graphic sets are Basic Latin, ANSEL, the Greek symbols, subscripts and superscripts
// of technique 1, Basic Greek and Basic Cyrillic. Escapes designating other sets are recognized,
// but their characters are unmappable.
type Marc8 struct {
	opts options
}

// Name implements Charset.
func (m *Marc8) Name() string {
	return NameMarc8
}

// marc8State is the designation state of one decode call.
type marc8State struct {
	g0, g1         byte
	g0Wide, g1Wide bool
}

func newMarc8State() marc8State {
	return marc8State{g0: setBasicLatin, g1: setANSEL}
}

// escape applies the escape sequence at the start of seq (following ESC) and returns its length.
func (s *marc8State) escape(seq []byte) (int, bool) {
	if len(seq) == 0 {
		return 0, false
	}
	switch seq[0] {
	case setGreekSymbols, setSubscripts, setSuperscripts:
		s.g0, s.g0Wide = seq[0], false
		return 1, true
	case 's':
		s.g0, s.g0Wide = setBasicLatin, false
		return 1, true
	case '(', ',':
		final, n, ok := designation(seq[1:])
		if !ok {
			return 0, false
		}
		s.g0, s.g0Wide = final, false
		return 1 + n, true
	case ')', '-':
		final, n, ok := designation(seq[1:])
		if !ok {
			return 0, false
		}
		s.g1, s.g1Wide = final, false
		return 1 + n, true
	case '$':
		if len(seq) < 2 {
			return 0, false
		}
		switch seq[1] {
		case '(', ',':
			final, n, ok := designation(seq[2:])
			if !ok {
				return 0, false
			}
			s.g0, s.g0Wide = final, true
			return 2 + n, true
		case ')', '-':
			final, n, ok := designation(seq[2:])
			if !ok {
				return 0, false
			}
			s.g1, s.g1Wide = final, true
			return 2 + n, true
		default:
			final, n, ok := designation(seq[1:])
			if !ok {
				return 0, false
			}
			s.g0, s.g0Wide = final, true
			return 1 + n, true
		}
	}
	return 0, false
}

// designation reads the final character of a designating sequence. ANSEL may be designated with
// the two character final "!E".
func designation(seq []byte) (byte, int, bool) {
	if len(seq) == 0 {
		return 0, 0, false
	}
	if seq[0] == '!' {
		if len(seq) < 2 {
			return 0, 0, false
		}
		return seq[1], 2, isFinal(seq[1])
	}
	return seq[0], 1, isFinal(seq[0])
}

func isFinal(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

// Decode implements Charset.
func (m *Marc8) Decode(b []byte) (string, error) {
	state := newMarc8State()
	out := &combiner{}
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == esc:
			n, ok := state.escape(b[i+1:])
			if !ok {
				if !m.opts.lax {
					return "", newDecodeError(NameMarc8, b, i, "invalid escape sequence")
				}
				out.emit(decodeReplacement)
				i++
				continue
			}
			i += 1 + n
		case c < 0x20 || c == 0x7f:
			out.control(rune(c))
			i++
		case c == 0x20:
			out.emit(' ')
			i++
		case c < 0x7f:
			n, err := m.decodeGraphic(out, b, i, state.g0, state.g0Wide)
			if err != nil {
				return "", err
			}
			i += n
		case c >= 0xa1 && c < 0xff:
			n, err := m.decodeGraphic(out, b, i, state.g1, state.g1Wide)
			if err != nil {
				return "", err
			}
			i += n
		default:
			if r, ok := marc8C1[c]; ok {
				out.emit(r)
			} else if !m.opts.lax {
				return "", newDecodeError(NameMarc8, b, i, "unmappable byte")
			} else {
				out.emit(decodeReplacement)
			}
			i++
		}
	}
	return out.String(), nil
}

func (m *Marc8) decodeGraphic(out *combiner, b []byte, i int, set byte, wide bool) (int, error) {
	if wide {
		// Multibyte sets are not mapped. Skip a whole character so the rest of the field stays aligned.
		if !m.opts.lax {
			return 0, newDecodeError(NameMarc8, b, i, "unsupported multibyte character")
		}
		out.emit(decodeReplacement)
		if i+3 > len(b) {
			return len(b) - i, nil
		}
		return 3, nil
	}
	if r, ok := marc8Tables[set][b[i]&0x7f]; ok {
		out.emit(r)
		return 1, nil
	}
	if !m.opts.lax {
		return 0, newDecodeError(NameMarc8, b, i, "unmappable byte")
	}
	out.emit(decodeReplacement)
	return 1, nil
}

// Extended C1 controls defined by MARC-8.
var marc8C1 = map[byte]rune{
	0x88: '\u0098',
	0x89: '\u009c',
	0x8d: '\u200d',
	0x8e: '\u200c',
}

var marc8C1Reverse = map[rune]byte{
	'\u0098': 0x88,
	'\u009c': 0x89,
	'\u200d': 0x8d,
	'\u200c': 0x8e,
}

// marc8Encoder is the designation state of one encode call. G1 is always ANSEL.
type marc8Encoder struct {
	g0  byte
	buf []byte
}

func marc8Mappable(r rune) bool {
	if r <= 0x20 || r == 0x7f {
		return true
	}
	if _, ok := marc8C1Reverse[r]; ok {
		return true
	}
	for _, set := range marc8Preference {
		if _, ok := marc8Reverse[set][r]; ok {
			return true
		}
	}
	return false
}

// choose finds the set to encode r in. The preferred set and the sets already designated are
// tried first to keep escape sequences to a minimum.
func (e *marc8Encoder) choose(r rune, preferred byte) (byte, byte, bool) {
	candidates := make([]byte, 0, len(marc8Preference)+3)
	if preferred != 0 {
		candidates = append(candidates, preferred)
	}
	candidates = append(candidates, e.g0, setANSEL)
	candidates = append(candidates, marc8Preference...)
	for _, set := range candidates {
		if code, ok := marc8Reverse[set][r]; ok {
			return set, code, true
		}
	}
	return 0, 0, false
}

func (e *marc8Encoder) designate(set byte) {
	switch set {
	case setBasicLatin:
		switch e.g0 {
		case setGreekSymbols, setSubscripts, setSuperscripts:
			e.buf = append(e.buf, esc, 's')
		default:
			e.buf = append(e.buf, esc, '(', setBasicLatin)
		}
	case setGreekSymbols, setSubscripts, setSuperscripts:
		e.buf = append(e.buf, esc, set)
	default:
		e.buf = append(e.buf, esc, '(', set)
	}
	e.g0 = set
}

func (e *marc8Encoder) write(set, code byte) {
	if set == setANSEL {
		e.buf = append(e.buf, code|0x80)
		return
	}
	if set != e.g0 {
		e.designate(set)
	}
	e.buf = append(e.buf, code)
}

// reset returns to the default designations.
func (e *marc8Encoder) reset() {
	if e.g0 != setBasicLatin {
		e.designate(setBasicLatin)
	}
}

// Encode implements Charset.
//
// Combining marks are written in front of their base letter. Designations are reset before every
// control character and at the end of the text, so each subfield starts in the default state.
func (m *Marc8) Encode(s string) ([]byte, error) {
	e := &marc8Encoder{g0: setBasicLatin, buf: make([]byte, 0, len(s))}
	for _, c := range splitClusters(s) {
		c = c.decompose(marc8Mappable)

		var baseSet, baseCode byte
		switch {
		case c.base < 0:
		case c.base < 0x20 || c.base == 0x7f:
			e.reset()
			e.buf = append(e.buf, byte(c.base))
		case c.base == 0x20:
		default:
			if b, ok := marc8C1Reverse[c.base]; ok {
				e.buf = append(e.buf, b)
				break
			}
			set, code, ok := e.choose(c.base, 0)
			if !ok {
				if !m.opts.lax {
					return nil, newEncodeError(NameMarc8, c.base, c.offset)
				}
				set, code = setBasicLatin, encodeReplacement
			}
			baseSet, baseCode = set, code
		}

		for _, mark := range c.marks {
			set, code, ok := e.choose(mark, baseSet)
			if !ok {
				if !m.opts.lax {
					return nil, newEncodeError(NameMarc8, mark, c.offset)
				}
				set, code = setBasicLatin, encodeReplacement
			}
			e.write(set, code)
		}

		if baseSet != 0 {
			e.write(baseSet, baseCode)
		} else if c.base == 0x20 {
			e.buf = append(e.buf, 0x20)
		}
	}
	e.reset()
	return e.buf, nil
}
