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
	"fmt"
)

// UnmappableCharacterError is returned in strict mode when input has no mapping in the character set.
type UnmappableCharacterError struct {
	// Charset is the name of the character set.
	Charset string
	// Offset is the byte offset of the problem in the input.
	Offset int
	// Bytes holds the offending input when decoding.
	Bytes []byte
	// Rune holds the offending character when encoding.
	Rune rune
	msg  string
}

func newDecodeError(charset string, b []byte, offset int, msg string) *UnmappableCharacterError {
	end := offset + 1
	if end > len(b) {
		end = len(b)
	}
	return &UnmappableCharacterError{Charset: charset, Offset: offset, Bytes: b[offset:end], Rune: -1, msg: msg}
}

func newEncodeError(charset string, r rune, offset int) *UnmappableCharacterError {
	return &UnmappableCharacterError{Charset: charset, Offset: offset, Rune: r}
}

func (e *UnmappableCharacterError) Error() string {
	if e.Rune >= 0 {
		return fmt.Sprintf("charset: %s cannot encode %U at offset %d", e.Charset, e.Rune, e.Offset)
	}
	msg := e.msg
	if msg == "" {
		msg = "unmappable byte"
	}
	return fmt.Sprintf("charset: %s: %s 0x% x at offset %d", e.Charset, msg, e.Bytes, e.Offset)
}
