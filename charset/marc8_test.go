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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarc8Decode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("plain text"), "plain text"},
		{"ansel letters", []byte{0xa1, 'o', 'd', 0xb2}, "Łodø"},
		{"acute before base", []byte{0xe2, 'e'}, "\u00e9"},
		{"two marks", []byte{0xf2, 0xe3, 'a'}, "\u1ead"},
		{"mark before space", []byte{0xe8, ' '}, " \u0308"},
		{"greek symbol", []byte("x\x1bga\x1bsx"), "xαx"},
		{"subscript", []byte("H\x1bb2\x1bsO"), "H₂O"},
		{"superscript", []byte("x\x1bp2\x1bs"), "x²"},
		{"basic greek", []byte("\x1b(S\x61\x62\x1b(B"), "αβ"},
		{"basic greek tonos", []byte("\x1b(S\x21\x61\x1b(B"), "\u03ac"},
		{"basic cyrillic", []byte("\x1b(N\x4d\x4f\x52\x1b(B"), "мор"},
		{"ansel as g0", []byte("\x1b(!E\x21\x1b(B"), "Ł"},
		{"state ends with call", []byte("\x1bg"), ""},
		{"subfield delimiter passes", []byte("a\x1fbc"), "a\x1fbc"},
		{"c1 joiner", []byte{'a', 0x8d, 'b'}, "a\u200db"},
	}
	m := MustLookup("marc-8")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarc8Encode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"ascii", "plain text", []byte("plain text")},
		{"greek symbol", "xαx", []byte("x\x1bga\x1bsx")},
		{"greek symbol at end", "xα", []byte("x\x1bga\x1bs")},
		{"precomposed", "\u00e9", []byte{0xe2, 'e'}},
		{"decomposed", "e\u0301", []byte{0xe2, 'e'}},
		{"two marks", "\u1ead", []byte{0xf2, 0xe3, 'a'}},
		{"ansel letter", "\u0141\u00f3d\u017a", []byte{0xa1, 0xe2, 'o', 'd', 0xe2, 'z'}},
		{"subscript", "H₂O", []byte("H\x1bb2\x1bsO")},
		{"basic greek", "αβγδ", []byte("\x1bgabc\x1b(Se\x1b(B")},
		{"cyrillic", "мир", []byte("\x1b(NMIR\x1b(B")},
		{"reset before control", "α\x1fb", []byte("\x1bga\x1bs\x1fb")},
	}
	m := MustLookup("marc-8")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Encode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarc8RoundTrip(t *testing.T) {
	m := MustLookup("marc-8")
	for _, s := range []string{
		"\u0141\u00f3d\u017a",
		"Ærø Ø þ",
		"H₂O x² (α)",
		"Чехов, Ф\u0451дор",
		"\u03ac \u03ad",
		"sub\x1ffield\x1fgα",
	} {
		b, err := m.Encode(s)
		require.NoError(t, err, s)
		got, err := m.Decode(b)
		require.NoError(t, err, s)
		assert.Equal(t, s, got)
	}
}

func TestMarc8Strictness(t *testing.T) {
	strict := MustLookup("marc-8")
	lax := MustLookup("marc-8", WithLax(true))

	var ue *UnmappableCharacterError

	_, err := strict.Decode([]byte{'a', 0xa0, 'b'})
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 1, ue.Offset)
	got, err := lax.Decode([]byte{'a', 0xa0, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "a\ufffdb", got)

	_, err = strict.Decode([]byte("a\x1b"))
	assert.True(t, errors.As(err, &ue))

	// Basic Hebrew is recognized but not mapped
	_, err = strict.Decode([]byte("\x1b(2\x60"))
	assert.True(t, errors.As(err, &ue))

	_, err = strict.Decode([]byte("\x1b$1\x21\x30\x21"))
	assert.True(t, errors.As(err, &ue))
	got, err = lax.Decode([]byte("\x1b$1\x21\x30\x21\x1b(Bx"))
	require.NoError(t, err)
	assert.Equal(t, "\ufffdx", got)

	_, err = strict.Encode("a☃b")
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, '☃', ue.Rune)
	b, err := lax.Encode("a☃b")
	require.NoError(t, err)
	assert.Equal(t, []byte("a?b"), b)
}
