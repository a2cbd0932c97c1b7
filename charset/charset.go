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

// Package charset converts between Unicode text and the character sets found in MARC records.
//
// Besides the standard encodings provided by golang.org/x/text, the package implements the two
// escape-driven legacy sets MARC-8 and DanMarc2. Both store combining diacritics in front of the
// letter they modify, while Unicode places them after it. Decoding reorders and composes (NFC),
// encoding decomposes and reorders back.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Charset converts a field or line between bytes and text.
//
// Implementations hold no state between calls. Escape state in the legacy sets lives only for the
// duration of one Decode or Encode call.
type Charset interface {
	// Name returns the canonical name of the character set.
	Name() string
	// Decode converts bytes in this character set to a UTF-8 string.
	Decode(b []byte) (string, error)
	// Encode converts a UTF-8 string to bytes in this character set.
	Encode(s string) ([]byte, error)
}

// Variant selects the framing rules used by a legacy character set.
type Variant int8

const (
	// VariantISO2709 is used for payloads in binary ISO2709 records.
	VariantISO2709 Variant = iota
	// VariantLineFormat is used for text in the line formats.
	VariantLineFormat
)

func (v Variant) String() string {
	switch v {
	case VariantLineFormat:
		return "LineFormat"
	default:
		return "ISO2709"
	}
}

const (
	// NameUTF8 is the name of the UTF-8 encoding.
	NameUTF8 = "UTF-8"
	// NameLatin1 is the name of the ISO-8859-1 encoding.
	NameLatin1 = "ISO-8859-1"
	// NameMarc8 is the name of the MARC-8 character set.
	NameMarc8 = "Marc8"
	// NameDanMarc2 is the name of the DanMarc2 character set.
	NameDanMarc2 = "DanMarc2"
)

// Replacement characters used in lax mode.
const (
	decodeReplacement = '\uFFFD'
	encodeReplacement = '?'
)

type standardAlias struct {
	name string
	enc  encoding.Encoding
}

// aliases are keyed by normalized name.
var aliases = map[string]standardAlias{
	"UTF8":        {NameUTF8, unicode.UTF8},
	"LATIN1":      {NameLatin1, charmap.ISO8859_1},
	"ISO88591":    {NameLatin1, charmap.ISO8859_1},
	"LATIN9":      {"ISO-8859-15", charmap.ISO8859_15},
	"ISO885915":   {"ISO-8859-15", charmap.ISO8859_15},
	"WINDOWS1252": {"windows-1252", charmap.Windows1252},
	"CP1252":      {"windows-1252", charmap.Windows1252},
	"UTF16":       {"UTF-16", unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
	"UTF16BE":     {"UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	"UTF16LE":     {"UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
}

// Normalize returns name in upper case with hyphens and underscores removed.
func Normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// Lookup resolves a character set by name. Names are matched case-insensitively and without regard
// to hyphens, so "danmarc-2", "DanMarc2" and "DANMARC2" are the same set.
func Lookup(name string, opts ...Option) (Charset, error) {
	o := newOptions(opts...)
	n := Normalize(name)
	switch n {
	case "DANMARC2":
		return &DanMarc2{opts: o}, nil
	case "MARC8":
		return &Marc8{opts: o}, nil
	case "":
		return nil, fmt.Errorf("charset: empty character set name")
	}
	if a, ok := aliases[n]; ok {
		return newStandard(a.name, a.enc, o), nil
	}
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(name))
	if err != nil || enc == nil {
		return nil, fmt.Errorf("charset: unsupported character set '%s'", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return newStandard(canonical, enc, o), nil
}

// MustLookup is like Lookup but panics if the name cannot be resolved.
func MustLookup(name string, opts ...Option) Charset {
	c, err := Lookup(name, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// IsUTF8 reports whether c is the UTF-8 encoding.
func IsUTF8(c Charset) bool {
	return c != nil && c.Name() == NameUTF8
}
