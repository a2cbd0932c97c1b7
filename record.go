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
	"strings"
)

// LeaderLength is the length of a well-formed leader.
const LeaderLength = 24

// DefaultLeader is used by writers when a record has no leader.
const DefaultLeader = "00000n    2200000   4500"

// Leader is the fixed length header of a record.
//
// It is kept as a sequence of characters so that placeholder and invalid leaders survive a
// conversion unchanged.
type Leader []rune

// NewLeader creates a Leader from s.
func NewLeader(s string) Leader {
	return Leader(s)
}

func (l Leader) String() string {
	return string(l)
}

// IsEmpty returns true if the leader has no content.
func (l Leader) IsEmpty() bool {
	return len(l) == 0
}

// orDefault returns the leader, or DefaultLeader if the leader is empty.
func (l Leader) orDefault() Leader {
	if l.IsEmpty() {
		return NewLeader(DefaultLeader)
	}
	return l
}

// Field is either a *ControlField or a *DataField.
type Field interface {
	// FieldTag returns the three character tag of the field.
	FieldTag() string
	field()
}

// ControlField is a field without indicators and subfields.
type ControlField struct {
	Tag  string
	Data string
}

// FieldTag implements Field.
func (c *ControlField) FieldTag() string { return c.Tag }

func (c *ControlField) field() {}

// DataField is a field with two indicators and an ordered list of subfields.
type DataField struct {
	Tag       string
	Ind1      rune
	Ind2      rune
	Subfields []Subfield
}

// FieldTag implements Field.
func (d *DataField) FieldTag() string { return d.Tag }

func (d *DataField) field() {}

// AddSubfield appends a subfield and returns the field for chaining.
func (d *DataField) AddSubfield(code rune, value string) *DataField {
	d.Subfields = append(d.Subfields, Subfield{Code: code, Value: value})
	return d
}

// Subfield returns the value of the first subfield with the given code.
func (d *DataField) Subfield(code rune) (string, bool) {
	for _, sf := range d.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// Subfield is a coded value within a DataField. Codes may repeat.
type Subfield struct {
	Code  rune
	Value string
}

// Record is a MARC record: a leader followed by fields in source order.
type Record struct {
	Leader Leader
	Fields []Field
}

// NewRecord creates an empty record with the given leader.
func NewRecord(leader string) *Record {
	return &Record{Leader: NewLeader(leader)}
}

// AddField appends f and returns the record for chaining.
func (r *Record) AddField(f Field) *Record {
	r.Fields = append(r.Fields, f)
	return r
}

// AddControlField appends a control field.
func (r *Record) AddControlField(tag, data string) *Record {
	return r.AddField(&ControlField{Tag: tag, Data: data})
}

// AddDataField appends a data field and returns it so subfields can be added.
func (r *Record) AddDataField(tag string, ind1, ind2 rune) *DataField {
	d := &DataField{Tag: tag, Ind1: ind1, Ind2: ind2}
	r.AddField(d)
	return d
}

// Field returns the first field with the given tag, or nil.
func (r *Record) Field(tag string) Field {
	for _, f := range r.Fields {
		if f.FieldTag() == tag {
			return f
		}
	}
	return nil
}

// ControlFields returns the control fields in record order.
func (r *Record) ControlFields() []*ControlField {
	var result []*ControlField
	for _, f := range r.Fields {
		if c, ok := f.(*ControlField); ok {
			result = append(result, c)
		}
	}
	return result
}

// DataFields returns the data fields in record order.
func (r *Record) DataFields() []*DataField {
	var result []*DataField
	for _, f := range r.Fields {
		if d, ok := f.(*DataField); ok {
			result = append(result, d)
		}
	}
	return result
}

func (r *Record) String() string {
	sb := &strings.Builder{}
	sb.WriteString(r.Leader.orDefault().String())
	sb.WriteByte('\n')
	for _, f := range r.Fields {
		switch v := f.(type) {
		case *ControlField:
			sb.WriteString(v.Tag)
			sb.WriteByte(' ')
			sb.WriteString(v.Data)
		case *DataField:
			sb.WriteString(v.Tag)
			sb.WriteByte(' ')
			sb.WriteRune(v.Ind1)
			sb.WriteRune(v.Ind2)
			for _, sf := range v.Subfields {
				sb.WriteString(" $")
				sb.WriteRune(sf.Code)
				sb.WriteByte(' ')
				sb.WriteString(sf.Value)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// isControlTag returns true for the tags 001 to 009 used by MARC21 control fields.
func isControlTag(tag string) bool {
	return len(tag) == 3 && tag[0] == '0' && tag[1] == '0' && tag[2] >= '0' && tag[2] <= '9'
}

func isTagChar(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isValidTag(tag []rune) bool {
	if len(tag) != 3 {
		return false
	}
	for _, r := range tag {
		if !isTagChar(r) {
			return false
		}
	}
	return true
}
