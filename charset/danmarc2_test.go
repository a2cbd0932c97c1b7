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

func TestDanMarc2Decode(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		input   []byte
		want    string
	}{
		{"ascii", VariantISO2709, []byte("Hans Christian"), "Hans Christian"},
		{"escaped alpha", VariantISO2709, []byte("x@03B1x"), "xαx"},
		{"escaped lower case hex", VariantISO2709, []byte("@03b1"), "α"},
		{"escaped at", VariantISO2709, []byte("a@@b"), "a@b"},
		{"danish letters", VariantISO2709, []byte{0xe1, 0xf9, 0xea, 0xf1}, "ÆøŒæ"},
		{"ring before a", VariantISO2709, []byte{0xca, 'a'}, "\u00e5"},
		{"acute before e", VariantISO2709, []byte{'r', 0xc2, 'e', 's', 'u', 'm', 0xc2, 'e'}, "r\u00e9sum\u00e9"},
		{"currency sign", VariantISO2709, []byte{0x24, 0xa4}, "¤$"},
		{"line format dollar", VariantLineFormat, []byte{0x24, 0xa4}, "$¤"},
		{"line format keeps at escapes", VariantLineFormat, []byte("a@@b@*c"), "a@@b@*c"},
		{"line format decodes code points", VariantLineFormat, []byte("@03B1"), "α"},
		{"escaped mark follows base", VariantISO2709, []byte("@0342a"), "a\u0342"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustLookup("danmarc2", WithVariant(tt.variant))
			got, err := d.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDanMarc2Encode(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		input   string
		want    []byte
	}{
		{"alpha", VariantISO2709, "xαx", []byte("x@03B1x")},
		{"at sign", VariantISO2709, "a@b", []byte("a@@b")},
		{"at sign in line format", VariantLineFormat, "a@@b", []byte("a@@b")},
		{"danish letters", VariantISO2709, "ÆøŒæ", []byte{0xe1, 0xf9, 0xea, 0xf1}},
		{"aa ring", VariantISO2709, "\u00e5", []byte{0xca, 'a'}},
		{"decomposed input", VariantISO2709, "a\u030a", []byte{0xca, 'a'}},
		{"dollar", VariantISO2709, "$¤", []byte{0xa4, 0x24}},
		{"line format dollar", VariantLineFormat, "$¤", []byte{0x24, 0xa4}},
		{"precomposed greek", VariantISO2709, "\u03ac", []byte("@03AC")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustLookup("danmarc2", WithVariant(tt.variant))
			got, err := d.Encode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDanMarc2RoundTrip(t *testing.T) {
	for _, v := range []Variant{VariantISO2709, VariantLineFormat} {
		d := MustLookup("danmarc-2", WithVariant(v))
		for _, s := range []string{
			"Æbler og pærer",
			"Bl\u00e5 b\u00f8ger",
			"xαx",
			"r\u00e9sum\u00e9 \u00bfqu\u00e9?",
			"¤ and $",
		} {
			b, err := d.Encode(s)
			require.NoError(t, err, s)
			got, err := d.Decode(b)
			require.NoError(t, err, s)
			assert.Equal(t, s, got, "variant %v", v)
		}
	}
}

func TestDanMarc2ByteRoundTrip(t *testing.T) {
	d := MustLookup("danmarc2")
	for _, b := range [][]byte{
		[]byte("@03B1"),
		{0xca, 'a', 0xc2, 'e', 0xe9},
		[]byte("mail@@example"),
	} {
		s, err := d.Decode(b)
		require.NoError(t, err)
		got, err := d.Encode(s)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestDanMarc2CanonicalEscape(t *testing.T) {
	d := MustLookup("danmarc2")
	s, err := d.Decode([]byte("@03b1"))
	require.NoError(t, err)
	assert.Equal(t, "α", s)

	// Escapes are always written with upper case hex digits.
	got, err := d.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("@03B1"), got)

	again, err := d.Decode(got)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestDanMarc2Strictness(t *testing.T) {
	strict := MustLookup("danmarc2")
	lax := MustLookup("danmarc2", WithLax(true))

	var ue *UnmappableCharacterError

	_, err := strict.Decode([]byte{'a', 0xe0})
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 1, ue.Offset)
	got, err := lax.Decode([]byte{'a', 0xe0})
	require.NoError(t, err)
	assert.Equal(t, "a\ufffd", got)

	_, err = strict.Decode([]byte("a@xyz"))
	require.True(t, errors.As(err, &ue))
	got, err = lax.Decode([]byte("a@xyz"))
	require.NoError(t, err)
	assert.Equal(t, "a@xyz", got)

	_, err = strict.Encode("a\U0001F600")
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, rune(0x1F600), ue.Rune)
	b, err := lax.Encode("a\U0001F600")
	require.NoError(t, err)
	assert.Equal(t, []byte("a?"), b)
}

func TestDanMarc2ForVariant(t *testing.T) {
	d := MustLookup("danmarc2", WithLax(true)).(*DanMarc2)
	assert.Equal(t, VariantISO2709, d.Variant())

	lf := d.ForVariant(VariantLineFormat)
	assert.Equal(t, VariantLineFormat, lf.Variant())
	assert.Equal(t, VariantISO2709, d.Variant())

	got, err := lf.Encode("\U0001F600$")
	require.NoError(t, err)
	assert.Equal(t, []byte("?$"), got)
}
