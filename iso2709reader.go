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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ISO2709Reader reads binary ISO2709 records.
type ISO2709Reader struct {
	r          *bufio.Reader
	opts       *options
	offset     int64
	validation *Validation
	// pending holds bytes read past the end of the previous record.
	pending []byte
}

// NewISO2709Reader creates a reader of ISO2709 records from r.
// Field payloads are decoded with the character set given by WithCharset.
func NewISO2709Reader(r io.Reader, opts ...Option) *ISO2709Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ISO2709Reader{r: br, opts: newOptions(opts...), validation: &Validation{}}
}

// Validation returns the problems found in the last record read.
func (ir *ISO2709Reader) Validation() *Validation {
	return ir.validation
}

// Read implements MarcReader.
func (ir *ISO2709Reader) Read() (*Record, error) {
	ir.validation = &Validation{}

	if err := ir.skipSeparators(); err != nil {
		return nil, err
	}

	start := ir.offset
	raw, err := ir.readToTerminator()
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n := recordEnd(raw); n < len(raw) {
		ir.pending = append([]byte(nil), raw[n:]...)
		raw = raw[:n:n]
	}
	ir.offset += int64(len(raw))
	if raw[len(raw)-1] != RecordTerminator {
		return nil, newMalformedRecordError("missing record terminator", start, raw, nil)
	}

	record, err := ir.parse(raw)
	if err != nil {
		return nil, newMalformedRecordError(err.Error(), start, raw, err)
	}
	return record, nil
}

func isRecordSeparator(b byte) bool {
	return b == '\n' || b == '\r' || b == ' '
}

// skipSeparators discards line breaks between records. It returns io.EOF if no data is left.
func (ir *ISO2709Reader) skipSeparators() error {
	for len(ir.pending) > 0 && isRecordSeparator(ir.pending[0]) {
		ir.pending = ir.pending[1:]
		ir.offset++
	}
	if len(ir.pending) > 0 {
		return nil
	}
	ir.pending = nil
	for {
		b, err := ir.r.Peek(1)
		if err != nil {
			return err
		}
		if !isRecordSeparator(b[0]) {
			return nil
		}
		if _, err := ir.r.Discard(1); err != nil {
			return err
		}
		ir.offset++
	}
}

// readToTerminator returns the bytes up to and including the next record terminator, or up to the
// end of input if there is none.
func (ir *ISO2709Reader) readToTerminator() ([]byte, error) {
	if i := bytes.IndexByte(ir.pending, RecordTerminator); i >= 0 {
		raw := ir.pending[: i+1 : i+1]
		ir.pending = ir.pending[i+1:]
		return raw, nil
	}
	b, err := ir.r.ReadBytes(RecordTerminator)
	raw := append(ir.pending, b...)
	ir.pending = nil
	return raw, err
}

// recordEnd returns the length of the record at the start of raw, which ends at the first record
// terminator or at the end of input. When the terminator lies beyond the declared length and the
// declared span ends with a field terminator, the record terminator is missing. The record is then
// cut before the byte where the terminator belongs, so that the following record is not lost.
func recordEnd(raw []byte) int {
	if len(raw) < recordLengthDigits {
		return len(raw)
	}
	declared, ok := parseDigits(raw[:recordLengthDigits])
	if !ok || declared < LeaderLength+2 || declared >= len(raw) {
		return len(raw)
	}
	if raw[declared-1] != RecordTerminator && raw[declared-2] == FieldTerminator {
		return declared - 1
	}
	return len(raw)
}

func (ir *ISO2709Reader) parse(raw []byte) (*Record, error) {
	if len(raw) < LeaderLength+2 {
		return nil, fmt.Errorf("record of %d bytes is too short", len(raw))
	}
	declared, ok := parseDigits(raw[:recordLengthDigits])
	if !ok {
		return nil, fmt.Errorf("invalid record length '%s'", raw[:recordLengthDigits])
	}
	// Zero is a placeholder written by some DanMarc2 systems.
	if declared != 0 && declared != len(raw) {
		return nil, fmt.Errorf("declared record length %d does not match actual length %d", declared, len(raw))
	}
	base, ok := parseDigits(raw[baseAddressStart:baseAddressEnd])
	if ok && base == 0 {
		base = LeaderLength + bytes.IndexByte(raw[LeaderLength:], FieldTerminator) + 1
	}
	if !ok || base <= LeaderLength || base > len(raw) {
		return nil, fmt.Errorf("invalid base address '%s'", raw[baseAddressStart:baseAddressEnd])
	}
	if raw[base-1] != FieldTerminator {
		return nil, fmt.Errorf("missing directory terminator")
	}
	directory := raw[LeaderLength : base-1]
	if len(directory)%directoryEntryLen != 0 {
		return nil, fmt.Errorf("directory length %d is not a multiple of %d", len(directory), directoryEntryLen)
	}

	record := &Record{Leader: leaderFromBytes(raw[:LeaderLength])}
	data := raw[base:]
	for i := 0; i < len(directory); i += directoryEntryLen {
		entry := directory[i : i+directoryEntryLen]
		tag := string(entry[:3])
		length, ok1 := parseDigits(entry[3:7])
		start, ok2 := parseDigits(entry[7:12])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid directory entry '%s'", entry)
		}
		if length < 1 || start+length > len(data) {
			return nil, fmt.Errorf("field %s at %d with length %d exceeds record", tag, start, length)
		}
		payload := data[start : start+length]
		if payload[length-1] != FieldTerminator {
			return nil, fmt.Errorf("field %s is not terminated", tag)
		}
		payload = payload[:length-1]

		field, err := ir.parseField(tag, payload, i/directoryEntryLen+1)
		if err != nil {
			if err = handleFieldError(ir.opts, ir.validation, err); err != nil {
				return nil, err
			}
			continue
		}
		record.AddField(field)
	}
	return record, nil
}

func leaderFromBytes(b []byte) Leader {
	l := make(Leader, len(b))
	for i, c := range b {
		l[i] = rune(c)
	}
	return l
}

// parseField decodes one field. entry is the 1-based directory position, reported in errors.
func (ir *ISO2709Reader) parseField(tag string, payload []byte, entry int) (Field, error) {
	pos := &position{}
	if isControlTag(tag) && bytes.IndexByte(payload, SubfieldDelimiter) < 0 {
		s, err := ir.opts.charset.Decode(payload)
		if err != nil {
			return nil, newWrappedFieldError(fmt.Sprintf("cannot decode directory entry %d", entry), tag, pos, err)
		}
		return &ControlField{Tag: tag, Data: s}, nil
	}

	s, err := ir.opts.charset.Decode(payload)
	if err != nil {
		return nil, newWrappedFieldError(fmt.Sprintf("cannot decode directory entry %d", entry), tag, pos, err)
	}
	rs := []rune(s)
	if len(rs) < 2 {
		return nil, newFieldError("missing indicators", tag, pos)
	}
	field := &DataField{Tag: tag, Ind1: rs[0], Ind2: rs[1]}
	parts := strings.Split(string(rs[2:]), string(subfieldDelimRune))
	if parts[0] != "" {
		return nil, newFieldError("data before first subfield", tag, pos)
	}
	for _, p := range parts[1:] {
		if p == "" {
			return nil, newFieldError("empty subfield", tag, pos)
		}
		code := []rune(p)[0]
		field.AddSubfield(code, p[len(string(code)):])
	}
	return field, nil
}
