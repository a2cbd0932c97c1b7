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
	"io"
	"strconv"
	"strings"
)

// LineFormatReader reads records in the generic or the DanMarc2 line format.
//
// A record is a block of lines ended by an empty line, a line holding a single '$' or the end of
// input. Lines indented with four spaces continue the previous line.
type LineFormatReader struct {
	r        *bufio.Reader
	opts     *options
	danMarc2 bool
	// escapeAt is set when a generic reader decodes DanMarc2, where '@' is written "@@".
	escapeAt   bool
	offset     int64
	line       position
	validation *Validation
}

// NewLineFormatReader creates a reader for the generic line format. Both '$' and '*' are accepted
// as subfield markers.
func NewLineFormatReader(r io.Reader, opts ...Option) *LineFormatReader {
	return newLineFormatReader(r, false, opts...)
}

// NewDanMarc2LineFormatReader creates a reader for the DanMarc2 line format.
func NewDanMarc2LineFormatReader(r io.Reader, opts ...Option) *LineFormatReader {
	return newLineFormatReader(r, true, opts...)
}

func newLineFormatReader(r io.Reader, danMarc2 bool, opts ...Option) *LineFormatReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	o := newOptions(opts...)
	o.charset = lineFormatCharset(o.charset)
	return &LineFormatReader{
		r:          br,
		opts:       o,
		danMarc2:   danMarc2,
		escapeAt:   !danMarc2 && isDanMarc2(o.charset),
		validation: &Validation{},
	}
}

// Validation returns the problems found in the last record read.
func (lr *LineFormatReader) Validation() *Validation {
	return lr.validation
}

type rawLine struct {
	text       []byte
	lineNumber int
}

// Read implements MarcReader.
func (lr *LineFormatReader) Read() (*Record, error) {
	lr.validation = &Validation{}

	var lines []rawLine
	raw := &bytes.Buffer{}
	start := lr.offset
	for {
		b, err := lr.r.ReadBytes('\n')
		if len(b) > 0 {
			lr.offset += int64(len(b))
			lr.line.incrLineNumber()
			text := bytes.TrimRight(b, "\r\n")
			isEnd := len(text) == 0 || string(text) == "$"
			if isEnd && len(lines) == 0 {
				// Skip separators before the first line of a record.
				start = lr.offset
			} else {
				raw.Write(b)
				if isEnd {
					break
				}
				lines = append(lines, rawLine{text: text, lineNumber: lr.line.lineNumber})
			}
		}
		if err == io.EOF {
			if len(lines) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, err
		}
	}

	record, err := lr.parse(lines)
	if err != nil {
		return nil, newMalformedRecordError(err.Error(), start, raw.Bytes(), err)
	}
	return record, nil
}

type logicalLine struct {
	text string
	pos  *position
}

func (lr *LineFormatReader) parse(lines []rawLine) (*Record, error) {
	var logical []logicalLine
	for _, l := range lines {
		pos := &position{lineNumber: l.lineNumber}
		text, err := lr.opts.charset.Decode(l.text)
		if err != nil {
			if err := handleFieldError(lr.opts, lr.validation, newWrappedFieldError("cannot decode line", "", pos, err)); err != nil {
				return nil, err
			}
			continue
		}
		if len(logical) > 0 && strings.HasPrefix(text, continuationIndent) {
			logical[len(logical)-1].text += " " + text[len(continuationIndent):]
			continue
		}
		logical = append(logical, logicalLine{text: text, pos: pos})
	}

	record := &Record{}
	for i, l := range logical {
		if i == 0 {
			if strings.HasPrefix(l.text, danMarc2LeaderPrefix) {
				record.Leader = NewLeader(l.text[len(danMarc2LeaderPrefix):])
				continue
			}
			if isLeaderLine(l.text) {
				record.Leader = NewLeader(l.text)
				continue
			}
		}
		field, err := lr.parseField(l.text, l.pos)
		if err != nil {
			if err := handleFieldError(lr.opts, lr.validation, err); err != nil {
				return nil, err
			}
			continue
		}
		record.AddField(field)
	}
	return record, nil
}

func (lr *LineFormatReader) parseField(line string, pos *position) (Field, error) {
	rs := []rune(line)
	if len(rs) < 3 || !isValidTag(rs[:3]) {
		return nil, newFieldError("invalid tag", "", pos)
	}
	tag := string(rs[:3])

	if !isDataFieldLine(rs, lr.danMarc2) {
		if isControlTag(tag) && (len(rs) == 3 || rs[3] == ' ') {
			data := ""
			if len(rs) > 4 {
				data = string(rs[4:])
			}
			return &ControlField{Tag: tag, Data: data}, nil
		}
		return nil, newFieldError("missing indicators or subfields", tag, pos)
	}

	field := &DataField{Tag: tag, Ind1: rs[4], Ind2: rs[5]}
	marker := rs[7]
	rest := rs[7:]
	for i := 0; i < len(rest); {
		// rest[i] is a marker
		if i+1 >= len(rest) {
			return nil, newFieldError("missing subfield code", tag, pos)
		}
		code := rest[i+1]
		value, n := lr.subfieldValue(rest[i+2:], marker)
		i += 2 + n
		if lr.opts.whitespacePadding {
			value = strings.TrimPrefix(value, " ")
			if i < len(rest) {
				value = strings.TrimSuffix(value, " ")
			}
		}
		field.AddSubfield(code, value)
	}
	return field, nil
}

// subfieldValue reads a value up to the next marker and returns it unescaped together with the
// number of runes consumed.
func (lr *LineFormatReader) subfieldValue(rs []rune, marker rune) (string, int) {
	sb := strings.Builder{}
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case lr.danMarc2 && r == danMarc2Escape:
			if i+1 < len(rs) && (rs[i+1] == danMarc2Escape || rs[i+1] == marker) {
				sb.WriteRune(rs[i+1])
				i += 2
				continue
			}
			if i+4 < len(rs) {
				if v, err := strconv.ParseUint(string(rs[i+1:i+5]), 16, 32); err == nil {
					sb.WriteRune(rune(v))
					i += 5
					continue
				}
			}
		case lr.escapeAt && r == danMarc2Escape:
			if i+1 < len(rs) && rs[i+1] == danMarc2Escape {
				sb.WriteRune(danMarc2Escape)
				i += 2
				continue
			}
		case !lr.danMarc2 && r == marker:
			if i+1 < len(rs) && rs[i+1] == marker {
				sb.WriteRune(marker)
				i += 2
				continue
			}
			return sb.String(), i
		case r == marker:
			return sb.String(), i
		}
		sb.WriteRune(r)
		i++
	}
	return sb.String(), i
}
