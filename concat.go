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

	"github.com/nlnwa/gomarc/charset"
)

// Concat turns rendered text into a sequence of quoted string literals joined by '+', one literal
// per line, suitable for pasting into source code:
//
//	"001 00 *a 12345678\n" +
//	"245 00 *a Title\n"
//
// Double quotes are escaped and trailing empty lines are dropped.
func Concat(text string) string {
	return strings.Join(concatSegments([]string{text}), "")
}

// concatSegments applies Concat to the text formed by joining segments and keeps the boundaries
// between segments.
func concatSegments(segments []string) []string {
	segments = append([]string(nil), segments...)
	for len(segments) > 0 {
		last := strings.TrimRight(segments[len(segments)-1], "\n")
		if last != "" {
			segments[len(segments)-1] = last
			break
		}
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return []string{"\n"}
	}
	out := make([]string, len(segments))
	for i, seg := range segments {
		sb := strings.Builder{}
		if i == 0 {
			sb.WriteByte('"')
		}
		for _, r := range seg {
			switch r {
			case '\n':
				sb.WriteString(`\n" +` + "\n" + `"`)
			case '"':
				sb.WriteString(`\"`)
			default:
				sb.WriteRune(r)
			}
		}
		if i == len(segments)-1 {
			sb.WriteString(`\n"` + "\n")
		}
		out[i] = sb.String()
	}
	return out
}

// ConcatWriter applies Concat to the output of a line format writer.
type ConcatWriter struct {
	base *LineFormatWriter
}

// NewConcatWriter creates a ConcatWriter on top of base.
func NewConcatWriter(base *LineFormatWriter) *ConcatWriter {
	return &ConcatWriter{base: base}
}

// CanOutputCollection implements MarcWriter.
func (w *ConcatWriter) CanOutputCollection() bool {
	return false
}

// WriteCollection implements MarcWriter. It always returns ErrUnsupportedOperation.
func (w *ConcatWriter) WriteCollection([]*Record, charset.Charset) ([]byte, error) {
	return nil, ErrUnsupportedOperation
}

// Write implements MarcWriter.
func (w *ConcatWriter) Write(r *Record, cs charset.Charset) ([]byte, error) {
	return encodeSegments(concatSegments(w.base.render(r, cs)), cs)
}
