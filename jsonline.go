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

	jsoniter "github.com/json-iterator/go"
	"github.com/nlnwa/gomarc/charset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonRecord struct {
	Leader []string    `json:"leader"`
	Fields []jsonField `json:"fields"`
}

// jsonField is a control field when Indicator is absent.
type jsonField struct {
	Name      string         `json:"name"`
	Value     *string        `json:"value,omitempty"`
	Indicator []string       `json:"indicator,omitempty"`
	Subfields []jsonSubfield `json:"subfields,omitempty"`
}

type jsonSubfield struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toJSONRecord(r *Record) *jsonRecord {
	jr := &jsonRecord{Leader: make([]string, 0, len(r.Leader)), Fields: make([]jsonField, 0, len(r.Fields))}
	for _, c := range r.Leader {
		jr.Leader = append(jr.Leader, string(c))
	}
	for _, f := range r.Fields {
		switch v := f.(type) {
		case *ControlField:
			data := v.Data
			jr.Fields = append(jr.Fields, jsonField{Name: v.Tag, Value: &data})
		case *DataField:
			jf := jsonField{Name: v.Tag, Indicator: []string{string(v.Ind1), string(v.Ind2)}}
			for _, sf := range v.Subfields {
				jf.Subfields = append(jf.Subfields, jsonSubfield{Name: string(sf.Code), Value: sf.Value})
			}
			jr.Fields = append(jr.Fields, jf)
		}
	}
	return jr
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func (jr *jsonRecord) toRecord() (*Record, error) {
	r := &Record{}
	for _, c := range jr.Leader {
		if l, ok := firstRune(c); ok {
			r.Leader = append(r.Leader, l)
		}
	}
	for _, jf := range jr.Fields {
		if jf.Indicator == nil {
			data := ""
			if jf.Value != nil {
				data = *jf.Value
			}
			r.AddControlField(jf.Name, data)
			continue
		}
		if len(jf.Indicator) != 2 {
			return nil, fmt.Errorf("field %s has %d indicators", jf.Name, len(jf.Indicator))
		}
		ind1, ok1 := firstRune(jf.Indicator[0])
		ind2, ok2 := firstRune(jf.Indicator[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("field %s has an empty indicator", jf.Name)
		}
		d := r.AddDataField(jf.Name, ind1, ind2)
		for _, sf := range jf.Subfields {
			code, ok := firstRune(sf.Name)
			if !ok {
				return nil, fmt.Errorf("field %s has a subfield without code", jf.Name)
			}
			d.AddSubfield(code, sf.Value)
		}
	}
	return r, nil
}

// JSONLineReader reads records stored as one JSON object per line.
type JSONLineReader struct {
	r      *bufio.Reader
	opts   *options
	offset int64
}

// NewJSONLineReader creates a new JSONLineReader. Lines are decoded with the character set
// given by WithCharset before they are parsed.
func NewJSONLineReader(r io.Reader, opts ...Option) *JSONLineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &JSONLineReader{r: br, opts: newOptions(opts...)}
}

// Read implements MarcReader.
func (jr *JSONLineReader) Read() (*Record, error) {
	for {
		start := jr.offset
		line, err := jr.r.ReadBytes('\n')
		jr.offset += int64(len(line))
		if len(bytes.TrimSpace(line)) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}
		if err != nil && err != io.EOF {
			return nil, err
		}

		text, derr := jr.opts.charset.Decode(line)
		if derr != nil {
			return nil, newMalformedRecordError("cannot decode line", start, line, derr)
		}
		var rec jsonRecord
		if uerr := json.UnmarshalFromString(text, &rec); uerr != nil {
			return nil, newMalformedRecordError("invalid json", start, line, uerr)
		}
		record, cerr := rec.toRecord()
		if cerr != nil {
			return nil, newMalformedRecordError(cerr.Error(), start, line, cerr)
		}
		return record, nil
	}
}

// JSONLineWriter writes each record as a JSON object on a single line.
type JSONLineWriter struct{}

// NewJSONLineWriter creates a new JSONLineWriter.
func NewJSONLineWriter() *JSONLineWriter {
	return &JSONLineWriter{}
}

// CanOutputCollection implements MarcWriter.
func (w *JSONLineWriter) CanOutputCollection() bool {
	return false
}

// WriteCollection implements MarcWriter. It always returns ErrUnsupportedOperation.
func (w *JSONLineWriter) WriteCollection([]*Record, charset.Charset) ([]byte, error) {
	return nil, ErrUnsupportedOperation
}

// Write implements MarcWriter.
func (w *JSONLineWriter) Write(r *Record, cs charset.Charset) ([]byte, error) {
	s, err := json.MarshalToString(toJSONRecord(r))
	if err != nil {
		return nil, err
	}
	b, err := cs.Encode(s + "\n")
	if err != nil {
		return nil, fmt.Errorf("gomarc: cannot encode record: %w", err)
	}
	return b, nil
}
