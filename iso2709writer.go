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
	"fmt"

	"github.com/nlnwa/gomarc/charset"
)

// ISO2709Writer writes binary ISO2709 records.
//
// Lengths and addresses in the leader and directory are always computed from the serialized
// fields. Whatever the record's leader says about them is ignored.
type ISO2709Writer struct{}

// NewISO2709Writer creates a new ISO2709Writer.
func NewISO2709Writer() *ISO2709Writer {
	return &ISO2709Writer{}
}

// CanOutputCollection implements MarcWriter.
func (w *ISO2709Writer) CanOutputCollection() bool {
	return true
}

// WriteCollection implements MarcWriter. ISO2709 has no collection wrapper so the records are
// concatenated.
func (w *ISO2709Writer) WriteCollection(records []*Record, cs charset.Charset) ([]byte, error) {
	out := &bytes.Buffer{}
	for _, r := range records {
		b, err := w.Write(r, cs)
		if err != nil {
			return nil, err
		}
		out.Write(b)
	}
	return out.Bytes(), nil
}

// Write implements MarcWriter.
func (w *ISO2709Writer) Write(r *Record, cs charset.Charset) ([]byte, error) {
	directory := &bytes.Buffer{}
	data := &bytes.Buffer{}

	for _, f := range r.Fields {
		tag := f.FieldTag()
		if len(tag) != 3 {
			return nil, fmt.Errorf("gomarc: invalid tag '%s'", tag)
		}
		payload, err := encodeField(f, cs)
		if err != nil {
			return nil, fmt.Errorf("gomarc: cannot encode field %s: %w", tag, err)
		}
		length := len(payload) + 1
		if length > maxFieldLength {
			return nil, fmt.Errorf("gomarc: field %s is %d bytes, max is %d", tag, length, maxFieldLength)
		}
		if data.Len() > maxFieldStart {
			return nil, fmt.Errorf("gomarc: field %s starts beyond offset %d", tag, maxFieldStart)
		}
		fmt.Fprintf(directory, "%s%04d%05d", tag, length, data.Len())
		data.Write(payload)
		data.WriteByte(FieldTerminator)
	}
	directory.WriteByte(FieldTerminator)

	base := LeaderLength + directory.Len()
	total := base + data.Len() + 1
	if total > maxRecordLength {
		return nil, fmt.Errorf("gomarc: record is %d bytes, max is %d", total, maxRecordLength)
	}

	out := bytes.NewBuffer(make([]byte, 0, total))
	out.Write(iso2709Leader(r.Leader, total, base))
	out.Write(directory.Bytes())
	out.Write(data.Bytes())
	out.WriteByte(RecordTerminator)
	return out.Bytes(), nil
}

// encodeField encodes the payload of a field. Indicators, subfield codes and subfield values are
// encoded separately, so that stateful character sets are back in their default state at every
// delimiter and a combining mark at the start of a value stays with the value.
func encodeField(f Field, cs charset.Charset) ([]byte, error) {
	switch v := f.(type) {
	case *ControlField:
		return cs.Encode(v.Data)
	case *DataField:
		b, err := cs.Encode(string([]rune{v.Ind1, v.Ind2}))
		if err != nil {
			return nil, err
		}
		for _, sf := range v.Subfields {
			code, err := cs.Encode(string(sf.Code))
			if err != nil {
				return nil, err
			}
			value, err := cs.Encode(sf.Value)
			if err != nil {
				return nil, err
			}
			b = append(b, SubfieldDelimiter)
			b = append(b, code...)
			b = append(b, value...)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown field type %T", f)
	}
}

// iso2709Leader renders l as 24 bytes with the computed record length and base address.
func iso2709Leader(l Leader, total, base int) []byte {
	b := bytes.Repeat([]byte{' '}, LeaderLength)
	for i, r := range l.orDefault() {
		if i >= LeaderLength {
			break
		}
		if r >= 0x20 && r < 0x7f {
			b[i] = byte(r)
		}
	}
	copy(b[0:recordLengthDigits], fmt.Sprintf("%05d", total))
	copy(b[10:12], "22")
	copy(b[baseAddressStart:baseAddressEnd], fmt.Sprintf("%05d", base))
	copy(b[20:24], "4500")
	return b
}
