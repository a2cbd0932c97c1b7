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
	"bytes"
	"fmt"
	"strings"

	"github.com/nlnwa/gomarc/charset"
)

// LineFormatWriter renders records in the generic or the DanMarc2 line format.
type LineFormatWriter struct {
	config   LineFormatConfig
	danMarc2 bool
}

// NewLineFormatWriter creates a writer for the generic line format.
func NewLineFormatWriter(config LineFormatConfig) *LineFormatWriter {
	if config.SubfieldMarker != MarkerStar {
		config.SubfieldMarker = MarkerDollar
	}
	return &LineFormatWriter{config: config}
}

// NewDanMarc2LineFormatWriter creates a writer for the DanMarc2 line format.
func NewDanMarc2LineFormatWriter(config LineFormatConfig) *LineFormatWriter {
	config.SubfieldMarker = MarkerStar
	return &LineFormatWriter{config: config, danMarc2: true}
}

// Config returns the rendering configuration of w.
func (w *LineFormatWriter) Config() LineFormatConfig {
	return w.config
}

// CanOutputCollection implements MarcWriter.
func (w *LineFormatWriter) CanOutputCollection() bool {
	return true
}

// WriteCollection implements MarcWriter. Records are rendered one after the other.
func (w *LineFormatWriter) WriteCollection(records []*Record, cs charset.Charset) ([]byte, error) {
	out := &bytes.Buffer{}
	for _, r := range records {
		b, err := w.Write(r, cs)
		if err != nil {
			return nil, err
		}
		out.Write(b)
	}
	return out.Bytes(), nil
}

// Write implements MarcWriter.
func (w *LineFormatWriter) Write(r *Record, cs charset.Charset) ([]byte, error) {
	return encodeSegments(w.render(r, cs), cs)
}

// encodeSegments encodes each segment on its own so that combining marks at the start of a
// subfield value are never attached to the subfield code before it.
func encodeSegments(segments []string, cs charset.Charset) ([]byte, error) {
	cs = lineFormatCharset(cs)
	var out []byte
	for _, s := range segments {
		b, err := cs.Encode(s)
		if err != nil {
			return nil, fmt.Errorf("gomarc: cannot encode record: %w", err)
		}
		out = append(out, b...)
	}
	return out, nil
}

// render returns the record as text before character set encoding, split where subfield values
// start.
func (w *LineFormatWriter) render(r *Record, cs charset.Charset) []string {
	var segments []string
	sb := &strings.Builder{}
	if w.config.IncludeLeader {
		if w.danMarc2 {
			sb.WriteString(danMarc2LeaderPrefix)
		}
		sb.WriteString(r.Leader.orDefault().String())
		sb.WriteByte('\n')
	}
	escapeAt := w.danMarc2 || isDanMarc2(cs)
	for _, f := range r.Fields {
		var line []rune
		var starts []int
		switch v := f.(type) {
		case *ControlField:
			line = []rune(v.Tag + " " + v.Data)
		case *DataField:
			line, starts = w.dataFieldLine(v, escapeAt)
		}
		var cuts []int
		if w.config.WrapLines {
			cuts = wrapCuts(line)
		}
		for i, c := range line {
			if len(starts) > 0 && starts[0] == i {
				segments = append(segments, sb.String())
				sb.Reset()
				starts = starts[1:]
			}
			if len(cuts) > 0 && cuts[0] == i {
				sb.WriteByte('\n')
				sb.WriteString(continuationIndent)
				cuts = cuts[1:]
				continue
			}
			sb.WriteRune(c)
		}
		sb.WriteByte('\n')
	}
	if w.config.EndOfRecord == EndOfRecordDollar {
		sb.WriteString("$\n")
	} else {
		sb.WriteByte('\n')
	}
	return append(segments, sb.String())
}

// dataFieldLine returns the line for d and the rune index where each subfield value starts.
func (w *LineFormatWriter) dataFieldLine(d *DataField, escapeAt bool) ([]rune, []int) {
	line := make([]rune, 0, 64)
	line = append(line, []rune(d.Tag)...)
	line = append(line, ' ', d.Ind1, d.Ind2, ' ')
	starts := make([]int, 0, len(d.Subfields))
	for i, sf := range d.Subfields {
		if i > 0 && w.config.WhitespacePadding {
			line = append(line, ' ')
		}
		line = append(line, rune(w.config.SubfieldMarker), sf.Code)
		if w.config.WhitespacePadding {
			line = append(line, ' ')
		}
		starts = append(starts, len(line))
		line = append(line, []rune(w.escape(sf.Value, escapeAt))...)
	}
	return line, starts
}

// escape protects characters in a subfield value that would otherwise be read as markup. '@' is
// doubled whenever the output is DanMarc2, since DanMarc2 reads '@' followed by four hex digits
// as a code point.
func (w *LineFormatWriter) escape(value string, escapeAt bool) string {
	if w.danMarc2 {
		if !strings.ContainsAny(value, "@*") {
			return value
		}
		sb := strings.Builder{}
		for _, r := range value {
			if r == danMarc2Escape || r == rune(MarkerStar) {
				sb.WriteRune(danMarc2Escape)
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}
	m := string(rune(w.config.SubfieldMarker))
	value = strings.ReplaceAll(value, m, m+m)
	if escapeAt {
		value = strings.ReplaceAll(value, string(danMarc2Escape), string(danMarc2Escape)+string(danMarc2Escape))
	}
	return value
}
