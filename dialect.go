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

// Dialect is the MARC dialect a record is written in.
type Dialect int8

const (
	DialectMarc21 Dialect = iota
	DialectDanMarc2
)

func (d Dialect) String() string {
	switch d {
	case DialectDanMarc2:
		return "DanMarc2"
	default:
		return "MARC21"
	}
}

// DialectRule inspects a record and returns its dialect if the rule applies.
type DialectRule func(r *Record) (Dialect, bool)

// DanMarc2Rule classifies a record as DanMarc2 when its first field is a data field.
//
// DanMarc2 writes even the low numbered fields as data fields with indicators, while MARC21 uses
// control fields for 001-009. A MARC21 record without control fields is therefore classified as
// DanMarc2.
func DanMarc2Rule(r *Record) (Dialect, bool) {
	if r == nil || len(r.Fields) == 0 {
		return DialectMarc21, false
	}
	if _, ok := r.Fields[0].(*DataField); ok {
		return DialectDanMarc2, true
	}
	return DialectMarc21, false
}

// DefaultDialectRules are used by ClassifyDialect when no rules are given.
var DefaultDialectRules = []DialectRule{DanMarc2Rule}

// ClassifyDialect returns the dialect of the first matching rule, or DialectMarc21 if none match.
func ClassifyDialect(r *Record, rules ...DialectRule) Dialect {
	if len(rules) == 0 {
		rules = DefaultDialectRules
	}
	for _, rule := range rules {
		if d, ok := rule(r); ok {
			return d
		}
	}
	return DialectMarc21
}
