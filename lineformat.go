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

// SubfieldMarker is the character introducing a subfield in the line formats.
type SubfieldMarker rune

const (
	MarkerDollar SubfieldMarker = '$'
	MarkerStar   SubfieldMarker = '*'
)

// EndOfRecord is the way the line formats terminate a record.
type EndOfRecord int8

const (
	// EndOfRecordNewline ends a record with an empty line.
	EndOfRecordNewline EndOfRecord = iota
	// EndOfRecordDollar ends a record with a line holding a single '$'.
	EndOfRecordDollar
)

const (
	danMarc2LeaderPrefix = "LDR "
	danMarc2Escape       = '@'
	continuationIndent   = "    "
	maxLineLength        = 80
)

// LineFormatConfig controls how the line format writers render a record.
//
// The DanMarc2 line writer always uses '*' as subfield marker and ignores SubfieldMarker.
type LineFormatConfig struct {
	IncludeLeader     bool
	WhitespacePadding bool
	SubfieldMarker    SubfieldMarker
	EndOfRecord       EndOfRecord
	// WrapLines breaks lines longer than 80 characters at a space. Continuation lines are
	// indented with four spaces.
	WrapLines bool
}

// LaxLineFormat returns the relaxed rendering of the generic line format.
func LaxLineFormat() LineFormatConfig {
	return LineFormatConfig{
		IncludeLeader:     true,
		WhitespacePadding: true,
		SubfieldMarker:    MarkerStar,
		EndOfRecord:       EndOfRecordNewline,
	}
}

// StrictLineFormat returns the strict rendering of the generic line format.
func StrictLineFormat() LineFormatConfig {
	return LineFormatConfig{
		IncludeLeader:  true,
		SubfieldMarker: MarkerDollar,
		EndOfRecord:    EndOfRecordNewline,
	}
}

// LaxDanMarc2LineFormat returns the relaxed rendering of the DanMarc2 line format.
func LaxDanMarc2LineFormat() LineFormatConfig {
	return LineFormatConfig{
		IncludeLeader:     true,
		WhitespacePadding: true,
		SubfieldMarker:    MarkerStar,
		EndOfRecord:       EndOfRecordNewline,
	}
}

// StrictDanMarc2LineFormat returns the DanMarc2 line format as expected by DanMarc2 systems.
func StrictDanMarc2LineFormat() LineFormatConfig {
	return LineFormatConfig{
		IncludeLeader:  true,
		SubfieldMarker: MarkerStar,
		EndOfRecord:    EndOfRecordDollar,
		WrapLines:      true,
	}
}

// lineFormatCharset switches DanMarc2 to the variant used for line formats, leaving other
// charsets untouched.
func lineFormatCharset(cs charset.Charset) charset.Charset {
	if d, ok := cs.(*charset.DanMarc2); ok && d.Variant() != charset.VariantLineFormat {
		return d.ForVariant(charset.VariantLineFormat)
	}
	return cs
}

// isMarker returns true if r may start a subfield. The generic format accepts both markers,
// DanMarc2 only '*'.
func isMarker(r rune, danMarc2 bool) bool {
	return r == rune(MarkerStar) || !danMarc2 && r == rune(MarkerDollar)
}

// isDataFieldLine returns true if rs has the shape "TAG I1I2 <marker>".
func isDataFieldLine(rs []rune, danMarc2 bool) bool {
	return len(rs) >= 8 && isValidTag(rs[:3]) && rs[3] == ' ' && rs[6] == ' ' && isMarker(rs[7], danMarc2)
}

// wrapCuts returns the indexes of the spaces where line is broken so that no part is longer than
// maxLineLength. The space at a break is dropped and the next part is indented. Lines without a
// suitable space are left long.
func wrapCuts(line []rune) []int {
	var cuts []int
	from, indent, lowest := 0, 0, 7
	for indent+len(line)-from > maxLineLength {
		cut := -1
		for i := maxLineLength; i > lowest; i-- {
			if j := from + i - indent; line[j] == ' ' {
				cut = j
				break
			}
		}
		if cut < 0 {
			break
		}
		cuts = append(cuts, cut)
		from, indent, lowest = cut+1, len(continuationIndent), len(continuationIndent)
	}
	return cuts
}

func isDanMarc2(cs charset.Charset) bool {
	_, ok := cs.(*charset.DanMarc2)
	return ok
}
