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
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperation is returned by writers asked for output their format cannot represent.
	ErrUnsupportedOperation = errors.New("gomarc: unsupported operation")
	// ErrNoData is returned when format detection is attempted on an empty stream.
	ErrNoData = errors.New("gomarc: no data")
)

// MalformedRecordError is returned when a record violates the grammar of its format.
//
// The error is scoped to one record. The reader has consumed the offending bytes and the next call
// to Read continues with the following record.
type MalformedRecordError struct {
	msg     string
	offset  int64
	raw     []byte
	wrapped error
}

func newMalformedRecordError(msg string, offset int64, raw []byte, wrapped error) *MalformedRecordError {
	return &MalformedRecordError{msg: msg, offset: offset, raw: raw, wrapped: wrapped}
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("gomarc: %s at offset %d", e.msg, e.offset)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.wrapped
}

// Offset returns the stream offset of the first byte of the record.
func (e *MalformedRecordError) Offset() int64 {
	return e.offset
}

// RawBytes returns the bytes of the offending record exactly as read.
func (e *MalformedRecordError) RawBytes() []byte {
	return e.raw
}

// FieldError is used for a field that cannot be parsed.
type FieldError struct {
	msg     string
	tag     string
	line    int
	wrapped error
}

func newFieldError(msg string, tag string, pos *position) *FieldError {
	return &FieldError{msg: msg, tag: tag, line: pos.lineNumber}
}

func newWrappedFieldError(msg string, tag string, pos *position, wrapped error) *FieldError {
	return &FieldError{msg: msg, tag: tag, line: pos.lineNumber, wrapped: wrapped}
}

func (e *FieldError) Error() string {
	msg := e.msg
	if e.wrapped != nil {
		msg = fmt.Sprintf("%s: %v", e.msg, e.wrapped)
	}
	switch {
	case e.tag != "" && e.line > 0:
		return fmt.Sprintf("gomarc: %s in field %s at line %d", msg, e.tag, e.line)
	case e.tag != "":
		return fmt.Sprintf("gomarc: %s in field %s", msg, e.tag)
	case e.line > 0:
		return fmt.Sprintf("gomarc: %s at line %d", msg, e.line)
	default:
		return fmt.Sprintf("gomarc: %s", msg)
	}
}

func (e *FieldError) Unwrap() error {
	return e.wrapped
}

// Tag returns the tag of the field, if known.
func (e *FieldError) Tag() string {
	return e.tag
}
