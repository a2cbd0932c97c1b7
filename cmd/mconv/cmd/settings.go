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

package cmd

import (
	"fmt"
	"strings"

	"github.com/nlnwa/gomarc"
	"github.com/nlnwa/gomarc/charset"
	"github.com/spf13/viper"
)

type mode string

const (
	modeLax    mode = "LAX"
	modeStrict mode = "STRICT"
)

type outputFormat string

const (
	formatLine        outputFormat = "LINE"
	formatLineConcat  outputFormat = "LINE_CONCAT"
	formatISO         outputFormat = "ISO"
	formatJSONL       outputFormat = "JSONL"
	formatMarcXchange outputFormat = "MARCXCHANGE"
	formatMarcXML     outputFormat = "MARCXML"
)

var outputFormats = []outputFormat{formatLine, formatLineConcat, formatISO, formatJSONL, formatMarcXchange, formatMarcXML}

const defaultErrDump = "mconv.errdump"

// settings holds the validated options of one conversion.
type settings struct {
	mode          mode
	format        outputFormat
	inputCharset  charset.Charset
	outputCharset charset.Charset
	includeLeader *bool
	padding       *bool
	asCollection  bool
	errDump       string
	outputFile    string
	metricsFile   string
}

func parseMode(s string) (mode, error) {
	switch m := mode(strings.ToUpper(s)); m {
	case modeLax, modeStrict:
		return m, nil
	}
	return "", fmt.Errorf("invalid mode '%s', expected LAX or STRICT", s)
}

func parseOutputFormat(s string) (outputFormat, error) {
	f := outputFormat(strings.ToUpper(s))
	for _, o := range outputFormats {
		if f == o {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format '%s'", s)
}

func optionalBool(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}

func newSettings(v *viper.Viper) (*settings, error) {
	m, err := parseMode(v.GetString("mode"))
	if err != nil {
		return nil, err
	}
	f, err := parseOutputFormat(v.GetString("format"))
	if err != nil {
		return nil, err
	}

	// Lax mode substitutes characters that cannot be converted instead of failing the field.
	lax := charset.WithLax(m == modeLax)
	in, err := charset.Lookup(v.GetString("input-encoding"), lax)
	if err != nil {
		return nil, err
	}
	out, err := charset.Lookup(v.GetString("output-encoding"), lax)
	if err != nil {
		return nil, err
	}

	s := &settings{
		mode:          m,
		format:        f,
		inputCharset:  in,
		outputCharset: out,
		includeLeader: optionalBool(v, "include-leader"),
		padding:       optionalBool(v, "include-whitespace-padding"),
		asCollection:  v.GetBool("as-collection"),
		errDump:       v.GetString("errdump"),
		outputFile:    v.GetString("output-file"),
		metricsFile:   v.GetString("metrics-file"),
	}
	if s.errDump == "" {
		s.errDump = defaultErrDump
	}

	// Collection support does not depend on the dialect, so it is checked before any input is read.
	if _, err := s.newWriter(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// sampleCharset returns the character set used for format detection. Legacy character sets are
// kept out of detection by sampling anything but UTF-8 as ISO-8859-1.
func (s *settings) sampleCharset() charset.Charset {
	if charset.IsUTF8(s.inputCharset) {
		return s.inputCharset
	}
	return charset.MustLookup(charset.NameLatin1)
}

func (s *settings) readerOptions() []gomarc.Option {
	policy := gomarc.ErrWarn
	if s.mode == modeStrict {
		policy = gomarc.ErrFail
	}
	return []gomarc.Option{gomarc.WithCharset(s.inputCharset), gomarc.WithSyntaxErrorPolicy(policy)}
}

// newWriter creates the writer for the output format. Line writers are chosen by the dialect of
// the first record.
func (s *settings) newWriter(first *gomarc.Record) (gomarc.MarcWriter, error) {
	var w gomarc.MarcWriter
	switch s.format {
	case formatLine, formatLineConcat:
		w = s.lineWriter(first)
	case formatISO:
		w = gomarc.NewISO2709Writer()
	case formatJSONL:
		w = gomarc.NewJSONLineWriter()
	case formatMarcXchange:
		w = gomarc.NewMarcXchangeWriter(gomarc.WithXMLDeclaration(s.mode == modeStrict))
	case formatMarcXML:
		w = gomarc.NewMarcXMLWriter(gomarc.WithXMLDeclaration(s.mode == modeStrict))
	default:
		return nil, fmt.Errorf("unhandled format: %s", s.format)
	}

	if s.asCollection && !w.CanOutputCollection() {
		return nil, fmt.Errorf("output format %s does not support collections", s.format)
	}
	return w, nil
}

func (s *settings) lineWriter(first *gomarc.Record) gomarc.MarcWriter {
	danMarc2 := gomarc.ClassifyDialect(first) == gomarc.DialectDanMarc2

	var config gomarc.LineFormatConfig
	switch {
	case danMarc2 && s.mode == modeLax:
		config = gomarc.LaxDanMarc2LineFormat()
	case danMarc2:
		config = gomarc.StrictDanMarc2LineFormat()
	case s.mode == modeLax:
		config = gomarc.LaxLineFormat()
	default:
		config = gomarc.StrictLineFormat()
	}
	if s.includeLeader != nil {
		config.IncludeLeader = *s.includeLeader
	}
	if s.padding != nil {
		config.WhitespacePadding = *s.padding
	}

	var w *gomarc.LineFormatWriter
	if danMarc2 {
		w = gomarc.NewDanMarc2LineFormatWriter(config)
	} else {
		w = gomarc.NewLineFormatWriter(config)
	}
	if s.format == formatLineConcat {
		return gomarc.NewConcatWriter(w)
	}
	return w
}
