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
	"github.com/nlnwa/gomarc/charset"
)

// Record and field terminators fixed by ISO2709.
const (
	FieldTerminator    byte = 0x1e
	RecordTerminator   byte = 0x1d
	SubfieldDelimiter  byte = 0x1f
	subfieldDelimRune  rune = 0x1f
	maxFieldLength          = 9999
	maxFieldStart           = 99999
	maxRecordLength         = 99999
	directoryEntryLen       = 12
	recordLengthDigits      = 5
	baseAddressStart        = 12
	baseAddressEnd          = 17
)

// MarcReader reads one record at a time.
//
// Read returns io.EOF when the input is exhausted. A *MalformedRecordError means that one record
// was rejected; reading may continue with the next record.
type MarcReader interface {
	Read() (*Record, error)
}

// MarcWriter serializes records.
type MarcWriter interface {
	// Write serializes a single record in the given character set.
	Write(r *Record, cs charset.Charset) ([]byte, error)
	// WriteCollection serializes records as one collection. Writers that cannot represent a
	// collection return ErrUnsupportedOperation.
	WriteCollection(records []*Record, cs charset.Charset) ([]byte, error)
	// CanOutputCollection reports whether WriteCollection is supported.
	CanOutputCollection() bool
}
