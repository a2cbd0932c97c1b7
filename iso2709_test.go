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
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/nlnwa/gomarc/charset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioLeader = "00925njm  22002777a 4500"

func scenarioRecord() *Record {
	r := NewRecord(scenarioLeader)
	r.AddControlField("001", "control1")
	r.AddDataField("100", ' ', ' ').
		AddSubfield('a', "code-a").
		AddSubfield('b', "code-b")
	return r
}

// scenarioISO2709 is scenarioRecord as written by ISO2709Writer in UTF-8.
var scenarioISO2709 = []byte("00078njm  22000497a 4500" +
	"001000900000" +
	"100001900009" +
	"\x1e" +
	"control1\x1e" +
	"  \x1facode-a\x1fbcode-b\x1e" +
	"\x1d")

func readAll(t *testing.T, r MarcReader) ([]*Record, []error) {
	t.Helper()
	var records []*Record
	var errs []error
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, errs
		}
		if err != nil {
			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre), "unexpected error: %v", err)
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}
}

func TestISO2709WriterWrite(t *testing.T) {
	got, err := NewISO2709Writer().Write(scenarioRecord(), charset.MustLookup("UTF-8"))
	require.NoError(t, err)
	assert.Equal(t, scenarioISO2709, got)
}

func TestISO2709WriterLengthIntegrity(t *testing.T) {
	r := NewRecord("")
	r.AddControlField("001", "x")
	r.AddDataField("245", '1', '0').
		AddSubfield('a', "Brødrene Løvehjerte").
		AddSubfield('c', "Astrid Lindgren")
	r.AddDataField("650", ' ', '0').AddSubfield('a', "αβγ")

	got, err := NewISO2709Writer().Write(r, charset.MustLookup("UTF-8"))
	require.NoError(t, err)

	declared, ok := parseDigits(got[:5])
	require.True(t, ok)
	assert.Equal(t, len(got), declared)

	base, ok := parseDigits(got[baseAddressStart:baseAddressEnd])
	require.True(t, ok)
	directory := got[LeaderLength : base-1]
	require.Equal(t, 0, len(directory)%directoryEntryLen)
	for i := 0; i < len(directory); i += directoryEntryLen {
		length, _ := parseDigits(directory[i+3 : i+7])
		start, _ := parseDigits(directory[i+7 : i+12])
		field := got[base+start : base+start+length]
		assert.Equal(t, FieldTerminator, field[len(field)-1], "entry %d", i/directoryEntryLen)
		assert.NotContains(t, string(field[:len(field)-1]), string(FieldTerminator))
	}
	assert.Equal(t, RecordTerminator, got[len(got)-1])
	assert.Equal(t, "4500", string(got[20:24]))
}

func TestISO2709WriterTooLong(t *testing.T) {
	r := NewRecord("")
	r.AddDataField("500", ' ', ' ').AddSubfield('a', string(bytes.Repeat([]byte{'x'}, maxFieldLength)))
	_, err := NewISO2709Writer().Write(r, charset.MustLookup("UTF-8"))
	assert.Error(t, err)
}

func TestISO2709ReaderRead(t *testing.T) {
	r := NewISO2709Reader(bytes.NewReader(scenarioISO2709))
	got, err := r.Read()
	require.NoError(t, err)

	want := scenarioRecord()
	want.Leader = NewLeader("00078njm  22000497a 4500")
	assert.Equal(t, want, got)
	assert.Empty(t, *r.Validation())

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestISO2709RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		value   string
	}{
		{"utf-8", "UTF-8", "Brødrene Løvehjerte"},
		{"latin-1", "ISO-8859-1", "Brødrene Løvehjerte"},
		{"marc-8 greek", "MARC-8", "αβγδ"},
		{"marc-8 diacritics", "MARC-8", "résumé"},
		{"danmarc2", "DanMarc2", "xαx a@b 10$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := charset.MustLookup(tt.charset)
			rec := NewRecord("")
			rec.AddControlField("001", "id")
			rec.AddDataField("245", '0', '0').
				AddSubfield('a', tt.value).
				AddSubfield('a', "second").
				AddSubfield('b', tt.value)

			first, err := NewISO2709Writer().Write(rec, cs)
			require.NoError(t, err)
			got, err := NewISO2709Reader(bytes.NewReader(first), WithCharset(cs)).Read()
			require.NoError(t, err)
			assert.Equal(t, rec.Fields, got.Fields)

			second, err := NewISO2709Writer().Write(got, cs)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestISO2709LeadingCombiningMark(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		want    string
	}{
		{"utf-8", "UTF-8", "\u0301y"},
		{"marc-8", "MARC-8", "ý"},
		{"danmarc2", "DanMarc2", "ý"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := charset.MustLookup(tt.charset)
			rec := NewRecord("")
			rec.AddDataField("245", '0', '0').
				AddSubfield('e', "\u0301y").
				AddSubfield('a', "x")

			b, err := NewISO2709Writer().Write(rec, cs)
			require.NoError(t, err)
			got, err := NewISO2709Reader(bytes.NewReader(b), WithCharset(cs)).Read()
			require.NoError(t, err)
			assert.Equal(t, []Subfield{{'e', tt.want}, {'a', "x"}}, got.DataFields()[0].Subfields)
		})
	}
}

func TestISO2709ReaderErrorIsolation(t *testing.T) {
	bad := append([]byte{}, scenarioISO2709...)
	copy(bad, "00079")

	var input []byte
	input = append(input, scenarioISO2709...)
	input = append(input, '\n')
	input = append(input, bad...)
	input = append(input, scenarioISO2709...)

	records, errs := readAll(t, NewISO2709Reader(bytes.NewReader(input)))
	assert.Len(t, records, 2)
	require.Len(t, errs, 1)

	var mre *MalformedRecordError
	require.True(t, errors.As(errs[0], &mre))
	assert.Equal(t, bad, mre.RawBytes())
	assert.Equal(t, int64(len(scenarioISO2709)+1), mre.Offset())
}

func TestISO2709ReaderMissingTerminatorResync(t *testing.T) {
	bad := scenarioISO2709[:len(scenarioISO2709)-1]

	var input []byte
	input = append(input, scenarioISO2709...)
	input = append(input, bad...)
	input = append(input, scenarioISO2709...)

	records, errs := readAll(t, NewISO2709Reader(bytes.NewReader(input)))
	assert.Len(t, records, 2)
	require.Len(t, errs, 1)

	var mre *MalformedRecordError
	require.True(t, errors.As(errs[0], &mre))
	assert.Equal(t, bad, mre.RawBytes())
	assert.Equal(t, int64(len(scenarioISO2709)), mre.Offset())
	assert.Contains(t, mre.Error(), "missing record terminator")

	// Line breaks after a record without terminator are still skipped.
	r := NewISO2709Reader(bytes.NewReader(append(append([]byte{}, bad...), '\n', '\n')))
	_, err := r.Read()
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, bad, mre.RawBytes())
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestISO2709ReaderMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"missing record terminator", scenarioISO2709[:len(scenarioISO2709)-1]},
		{"too short", []byte("00010\x1d")},
		{"non numeric length", append([]byte("0007x"), scenarioISO2709[5:]...)},
		{"bad base address", append([]byte("00078njm  2200050"), scenarioISO2709[17:]...)},
		{"bad directory entry", bytes.Replace(scenarioISO2709, []byte("100001900009"), []byte("1000019000x9"), 1)},
		{"field exceeds record", bytes.Replace(scenarioISO2709, []byte("100001900009"), []byte("100009900009"), 1)},
		{"field length mismatch", bytes.Replace(scenarioISO2709, []byte("001000900000"), []byte("001000800000"), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewISO2709Reader(bytes.NewReader(tt.input))
			_, err := r.Read()
			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre), "got %v", err)
			assert.Equal(t, tt.input, mre.RawBytes())

			_, err = r.Read()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestISO2709ReaderFieldErrorPolicy(t *testing.T) {
	rec := NewRecord("")
	rec.AddControlField("001", "ok")
	rec.AddControlField("245", "not a data field")
	rec.AddDataField("100", ' ', ' ').AddSubfield('a', "kept")
	input, err := NewISO2709Writer().Write(rec, charset.MustLookup("UTF-8"))
	require.NoError(t, err)

	t.Run("warn", func(t *testing.T) {
		r := NewISO2709Reader(bytes.NewReader(input), WithSyntaxErrorPolicy(ErrWarn))
		got, err := r.Read()
		require.NoError(t, err)
		assert.Len(t, got.Fields, 2)
		require.Len(t, *r.Validation(), 1)
		var fe *FieldError
		assert.True(t, errors.As((*r.Validation())[0], &fe))
		assert.Equal(t, "245", fe.Tag())
	})

	t.Run("ignore", func(t *testing.T) {
		r := NewISO2709Reader(bytes.NewReader(input), WithSyntaxErrorPolicy(ErrIgnore))
		got, err := r.Read()
		require.NoError(t, err)
		assert.Len(t, got.Fields, 2)
		assert.Empty(t, *r.Validation())
	})

	t.Run("fail", func(t *testing.T) {
		r := NewISO2709Reader(bytes.NewReader(input), WithSyntaxErrorPolicy(ErrFail))
		_, err := r.Read()
		var mre *MalformedRecordError
		require.True(t, errors.As(err, &mre))
		var fe *FieldError
		assert.True(t, errors.As(err, &fe))
		assert.Equal(t, input, mre.RawBytes())
	})
}

func TestISO2709ReaderUnmappableCharacter(t *testing.T) {
	rec := NewRecord("")
	rec.AddControlField("001", "ÿ")
	input, err := NewISO2709Writer().Write(rec, charset.MustLookup("ISO-8859-1"))
	require.NoError(t, err)

	r := NewISO2709Reader(bytes.NewReader(input), WithSyntaxErrorPolicy(ErrFail))
	_, err = r.Read()
	var uce *charset.UnmappableCharacterError
	assert.True(t, errors.As(err, &uce))

	lax := charset.MustLookup("UTF-8", charset.WithLax(true))
	got, err := NewISO2709Reader(bytes.NewReader(input), WithCharset(lax)).Read()
	require.NoError(t, err)
	assert.Equal(t, "\ufffd", got.Fields[0].(*ControlField).Data)
}
