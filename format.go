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
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/nlnwa/gomarc/charset"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// PushbackBufferSize is the number of bytes DeduceFormat may inspect.
// Input passed to DeduceFormat must be buffered with at least this capacity.
const PushbackBufferSize = 1000

// Format is a MARC serialization.
type Format int8

const (
	FormatUnknown Format = iota
	FormatISO2709
	FormatLine
	FormatDanMarc2Line
	FormatMarcXchange
	FormatMarcXML
	FormatJSONLines
)

func (f Format) String() string {
	switch f {
	case FormatISO2709:
		return "ISO2709"
	case FormatLine:
		return "LINE"
	case FormatDanMarc2Line:
		return "DANMARC2_LINE"
	case FormatMarcXchange:
		return "MARCXCHANGE"
	case FormatMarcXML:
		return "MARCXML"
	case FormatJSONLines:
		return "JSONL"
	default:
		return "UNKNOWN"
	}
}

// DeduceFormat inspects at most PushbackBufferSize bytes of r and returns the format of the stream.
// No bytes are consumed: the reader chosen for the format sees the stream from its first byte.
//
// sampleEncoding is used to decode the sample when looking for text markers. ISO-8859-1 is used if
// it is nil.
func DeduceFormat(r *bufio.Reader, sampleEncoding charset.Charset) (Format, error) {
	sample, err := r.Peek(PushbackBufferSize)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return FormatUnknown, err
	}
	f := deduce(sample, sampleEncoding)
	if f == FormatUnknown {
		return f, ErrNoData
	}
	log.Debugf("deduced input format %v from %d byte sample", f, len(sample))
	return f, nil
}

func deduce(sample []byte, sampleEncoding charset.Charset) Format {
	text := strings.TrimLeft(decodeSample(sample, sampleEncoding), " \t\r\n\ufeff")
	if text == "" {
		return FormatUnknown
	}

	switch text[0] {
	case '{', '[':
		return FormatJSONLines
	case '<':
		if strings.Contains(strings.ToLower(text), "marcxchange") {
			return FormatMarcXchange
		}
		return FormatMarcXML
	}

	if isISO2709(bytes.TrimLeft(sample, " \r\n")) {
		return FormatISO2709
	}
	if isDanMarc2Line(text) {
		return FormatDanMarc2Line
	}
	return FormatLine
}

func decodeSample(sample []byte, enc charset.Charset) string {
	if s, ok := enc.(*charset.Standard); ok {
		// A multibyte character may be cut at the end of the sample, so decode leniently.
		if out, _, err := transform.Bytes(s.Encoding().NewDecoder(), sample); err == nil {
			return string(out)
		}
	} else if enc != nil {
		if out, err := enc.Decode(sample); err == nil {
			return out
		}
	}
	out, _, _ := transform.Bytes(charmap.ISO8859_1.NewDecoder(), sample)
	return string(out)
}

// isISO2709 checks the record length digits and that the first field terminator after the leader
// ends a directory made of whole entries. A sample without field terminator is accepted when it is
// filled with directory entries, since the directory of a record with many fields can be longer
// than the sample.
func isISO2709(b []byte) bool {
	if len(b) < LeaderLength+1 {
		return false
	}
	if _, ok := parseDigits(b[:recordLengthDigits]); !ok {
		return false
	}
	base, ok := parseDigits(b[baseAddressStart:baseAddressEnd])
	if !ok {
		base = 0
	}
	idx := bytes.IndexByte(b[LeaderLength:], FieldTerminator)
	if idx < 0 {
		return (base == 0 || base > len(b)) && isDirectory(b[LeaderLength:])
	}
	if idx%directoryEntryLen != 0 {
		return false
	}
	if base != 0 {
		return base == LeaderLength+idx+1
	}
	return true
}

// isDirectory returns true if b holds at least one directory entry and every complete entry has
// an alphanumeric tag followed by digits.
func isDirectory(b []byte) bool {
	if len(b) < directoryEntryLen {
		return false
	}
	for i := 0; i+directoryEntryLen <= len(b); i += directoryEntryLen {
		entry := b[i : i+directoryEntryLen]
		for _, c := range entry[:3] {
			if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
				return false
			}
		}
		if _, ok := parseDigits(entry[3:]); !ok {
			return false
		}
	}
	return true
}

func parseDigits(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(string(b))
	return n, err == nil
}

// isDanMarc2Line looks for the anchors of the DanMarc2 line format: a "LDR " leader line, a "$" end
// of record line, or a first field line shaped as a data field with '*' subfield markers.
func isDanMarc2Line(text string) bool {
	lines := strings.Split(text, "\n")
	firstField := ""
	sawLeader := false
	for i, l := range lines {
		l = strings.TrimRight(l, "\r")
		if l == "$" {
			return true
		}
		if firstField != "" || l == "" {
			continue
		}
		if strings.HasPrefix(l, "LDR ") {
			return true
		}
		if i == 0 && isLeaderLine(l) {
			sawLeader = true
			continue
		}
		firstField = l
	}
	if sawLeader || firstField == "" {
		return false
	}
	rs := []rune(firstField)
	return len(rs) >= 9 && isValidTag(rs[:3]) && rs[3] == ' ' && rs[6] == ' ' && rs[7] == '*'
}

// isLeaderLine returns true for a line holding a bare leader, as written by the generic line format.
func isLeaderLine(l string) bool {
	rs := []rune(l)
	if len(rs) != LeaderLength {
		return false
	}
	return !(isValidTag(rs[:3]) && rs[3] == ' ')
}
