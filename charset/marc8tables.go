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

// MARC-8 graphic sets are identified by the final character of their designating escape sequence.
const (
	setBasicLatin    byte = 'B'
	setANSEL         byte = 'E'
	setGreekSymbols  byte = 'g'
	setSubscripts    byte = 'b'
	setSuperscripts  byte = 'p'
	setBasicGreek    byte = 'S'
	setBasicCyrillic byte = 'N'
	setExtCyrillic   byte = 'Q'
	setBasicHebrew   byte = '2'
	setBasicArabic   byte = '3'
	setExtArabic     byte = '4'
	setEastAsian     byte = '1'
)

// The order in which the encoder looks for a set holding a character.
var marc8Preference = []byte{
	setBasicLatin,
	setANSEL,
	setGreekSymbols,
	setSubscripts,
	setSuperscripts,
	setBasicGreek,
	setBasicCyrillic,
}

// Tables are keyed by the 7-bit code, so the same table serves the set designated as G0 or G1.
var marc8Tables = map[byte]map[byte]rune{
	setBasicLatin:    basicLatin(),
	setANSEL:         ansel,
	setGreekSymbols:  greekSymbols,
	setSubscripts:    subscripts,
	setSuperscripts:  superscripts,
	setBasicGreek:    basicGreek,
	setBasicCyrillic: basicCyrillic,
}

var marc8Reverse = func() map[byte]map[rune]byte {
	rev := make(map[byte]map[rune]byte, len(marc8Tables))
	for set, table := range marc8Tables {
		m := make(map[rune]byte, len(table))
		for code, r := range table {
			if prev, ok := m[r]; !ok || code < prev {
				m[r] = code
			}
		}
		rev[set] = m
	}
	return rev
}()

func basicLatin() map[byte]rune {
	t := make(map[byte]rune, 94)
	for c := byte(0x21); c < 0x7F; c++ {
		t[c] = rune(c)
	}
	return t
}

var ansel = map[byte]rune{
	0x21: 'Ł', 0x22: 'Ø', 0x23: 'Đ', 0x24: 'Þ', 0x25: 'Æ', 0x26: 'Œ', 0x27: 'ʹ',
	0x28: '·', 0x29: '♭', 0x2A: '®', 0x2B: '±', 0x2C: 'Ơ', 0x2D: 'Ư', 0x2E: 'ʼ',
	0x30: 'ʻ', 0x31: 'ł', 0x32: 'ø', 0x33: 'đ', 0x34: 'þ', 0x35: 'æ', 0x36: 'œ',
	0x37: 'ʺ', 0x38: 'ı', 0x39: '£', 0x3A: 'ð', 0x3C: 'ơ', 0x3D: 'ư',
	0x40: '°', 0x41: 'ℓ', 0x42: '℗', 0x43: '©', 0x44: '♯', 0x45: '¿', 0x46: '¡',
	0x47: 'ß', 0x48: '€',
	// combining marks
	0x60: '\u0309', 0x61: '\u0300', 0x62: '\u0301', 0x63: '\u0302', 0x64: '\u0303',
	0x65: '\u0304', 0x66: '\u0306', 0x67: '\u0307', 0x68: '\u0308', 0x69: '\u030C',
	0x6A: '\u030A', 0x6B: '\uFE20', 0x6C: '\uFE21', 0x6D: '\u0315', 0x6E: '\u030B',
	0x6F: '\u0310', 0x70: '\u0327', 0x71: '\u0328', 0x72: '\u0323', 0x73: '\u0324',
	0x74: '\u0325', 0x75: '\u0333', 0x76: '\u0332', 0x77: '\u0326', 0x78: '\u031C',
	0x79: '\u032E', 0x7A: '\uFE22', 0x7B: '\uFE23', 0x7E: '\u0313',
}

var greekSymbols = map[byte]rune{
	0x61: 'α', 0x62: 'β', 0x63: 'γ',
}

var subscripts = map[byte]rune{
	0x28: '₍', 0x29: '₎', 0x2B: '₊', 0x2D: '₋',
	0x30: '₀', 0x31: '₁', 0x32: '₂', 0x33: '₃', 0x34: '₄',
	0x35: '₅', 0x36: '₆', 0x37: '₇', 0x38: '₈', 0x39: '₉',
}

var superscripts = map[byte]rune{
	0x28: '⁽', 0x29: '⁾', 0x2B: '⁺', 0x2D: '⁻',
	0x30: '⁰', 0x31: '¹', 0x32: '²', 0x33: '³', 0x34: '⁴',
	0x35: '⁵', 0x36: '⁶', 0x37: '⁷', 0x38: '⁸', 0x39: '⁹',
}

var basicGreek = map[byte]rune{
	// combining marks
	0x21: '\u0301', 0x22: '\u0308', 0x23: '\u0300', 0x24: '\u0342',
	0x25: '\u0314', 0x26: '\u0313', 0x27: '\u0345',

	0x41: 'Α', 0x42: 'Β', 0x44: 'Γ', 0x45: 'Δ', 0x46: 'Ε', 0x49: 'Ϛ', 0x4A: 'Ϝ',
	0x4B: 'Ζ', 0x4C: 'Η', 0x4D: 'Θ', 0x4E: 'Ι', 0x4F: 'Κ', 0x50: 'Λ', 0x51: 'Μ',
	0x52: 'Ν', 0x53: 'Ξ', 0x54: 'Ο', 0x55: 'Π', 0x56: 'Ϟ', 0x57: 'Ρ', 0x58: 'Σ',
	0x5A: 'Τ', 0x5B: 'Υ', 0x5C: 'Φ', 0x5D: 'Χ', 0x5E: 'Ψ', 0x5F: 'Ω', 0x60: 'Ϡ',
	0x61: 'α', 0x62: 'β', 0x63: 'ϐ', 0x64: 'γ', 0x65: 'δ', 0x66: 'ε', 0x67: 'ϵ',
	0x68: 'ϛ', 0x69: 'ϝ', 0x6A: 'ζ', 0x6B: 'η', 0x6C: 'θ', 0x6D: 'ι', 0x6E: 'κ',
	0x6F: 'λ', 0x70: 'μ', 0x71: 'ν', 0x72: 'ξ', 0x73: 'ο', 0x74: 'π', 0x75: 'ϟ',
	0x76: 'ρ', 0x77: 'σ', 0x78: 'ς', 0x79: 'τ', 0x7A: 'υ', 0x7B: 'φ', 0x7C: 'χ',
	0x7D: 'ψ', 0x7E: 'ω',
}

var basicCyrillic = func() map[byte]rune {
	t := map[byte]rune{
		0x40: 'ю', 0x41: 'а', 0x42: 'б', 0x43: 'ц', 0x44: 'д', 0x45: 'е', 0x46: 'ф', 0x47: 'г',
		0x48: 'х', 0x49: 'и', 0x4A: 'й', 0x4B: 'к', 0x4C: 'л', 0x4D: 'м', 0x4E: 'н', 0x4F: 'о',
		0x50: 'п', 0x51: 'я', 0x52: 'р', 0x53: 'с', 0x54: 'т', 0x55: 'у', 0x56: 'ж', 0x57: 'в',
		0x58: 'ь', 0x59: 'ы', 0x5A: 'з', 0x5B: 'ш', 0x5C: 'э', 0x5D: 'щ', 0x5E: 'ч', 0x5F: 'ъ',
		0x60: 'Ю', 0x61: 'А', 0x62: 'Б', 0x63: 'Ц', 0x64: 'Д', 0x65: 'Е', 0x66: 'Ф', 0x67: 'Г',
		0x68: 'Х', 0x69: 'И', 0x6A: 'Й', 0x6B: 'К', 0x6C: 'Л', 0x6D: 'М', 0x6E: 'Н', 0x6F: 'О',
		0x70: 'П', 0x71: 'Я', 0x72: 'Р', 0x73: 'С', 0x74: 'Т', 0x75: 'У', 0x76: 'Ж', 0x77: 'В',
		0x78: 'Ь', 0x79: 'Ы', 0x7A: 'З', 0x7B: 'Ш', 0x7C: 'Э', 0x7D: 'Щ', 0x7E: 'Ч',
	}
	// digits and punctuation are shared with Basic Latin
	for c := byte(0x21); c < 0x40; c++ {
		t[c] = rune(c)
	}
	return t
}()
