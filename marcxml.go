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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nlnwa/gomarc/charset"
	"golang.org/x/text/encoding"
)

const (
	MarcXchangeNamespace = "info:lc/xmlns/marcxchange-v1"
	MarcXMLNamespace     = "http://www.loc.gov/MARC21/slim"

	xsiNamespace          = "http://www.w3.org/2001/XMLSchema-instance"
	marcXchangeSchema     = "http://www.loc.gov/standards/iso25577/marcxchange-1-1.xsd"
	marcXMLSchema         = "http://www.loc.gov/standards/marcxml/schema/MARC21slim.xsd"
	xmlDeclarationPattern = "<?xml version='1.0' encoding='%s'?>\n"
)

// recordingReader remembers the bytes read since the last call to mark. It is an io.ByteReader so
// that xml.Decoder does not buffer ahead of the tokens it returns.
//
// Transcoding happens below the recorder, since a transcoder reads its input in blocks. The
// recorder then sees UTF-8 and encodes the recorded text back with encoder.
type recordingReader struct {
	r       *bufio.Reader
	buf     bytes.Buffer
	encoder *encoding.Encoder
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	rr.buf.Write(p[:n])
	return n, err
}

func (rr *recordingReader) ReadByte() (byte, error) {
	b, err := rr.r.ReadByte()
	if err == nil {
		rr.buf.WriteByte(b)
	}
	return b, err
}

// transcode decodes the rest of the input from enc.
func (rr *recordingReader) transcode(enc encoding.Encoding) {
	rr.r = bufio.NewReader(enc.NewDecoder().Reader(rr.r))
	rr.encoder = enc.NewEncoder()
}

func (rr *recordingReader) mark() {
	rr.buf.Reset()
}

// recorded returns the bytes read since the last mark in the input encoding. Text that cannot be
// encoded back, such as replacement characters for undefined bytes, is returned as UTF-8.
func (rr *recordingReader) recorded() []byte {
	if rr.encoder != nil {
		if b, err := rr.encoder.Bytes(rr.buf.Bytes()); err == nil {
			return b
		}
	}
	return append([]byte(nil), rr.buf.Bytes()...)
}

// XMLReader reads MARCXML and MarcXchange records. Element names are matched without regard to
// namespace so both dialects are read by the same reader.
//
// The encoding named in the XML declaration is honoured. Input without a declaration is read as
// the character set given by WithCharset when that is a standard encoding.
type XMLReader struct {
	rr         *recordingReader
	d          *xml.Decoder
	opts       *options
	validation *Validation
}

// NewXMLReader creates a new XMLReader.
func NewXMLReader(r io.Reader, opts ...Option) *XMLReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	o := newOptions(opts...)
	rr := &recordingReader{r: br}

	transcoded := false
	if s, ok := o.charset.(*charset.Standard); ok && !charset.IsUTF8(s) {
		rr.transcode(s.Encoding())
		transcoded = true
	}

	d := xml.NewDecoder(rr)
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if transcoded {
			return input, nil
		}
		cs, err := charset.Lookup(label)
		if err != nil {
			return nil, err
		}
		s, ok := cs.(*charset.Standard)
		if !ok {
			return nil, fmt.Errorf("gomarc: unsupported xml encoding '%s'", label)
		}
		// input is rr, which the decoder reads without buffering.
		rr.transcode(s.Encoding())
		return rr, nil
	}
	return &XMLReader{rr: rr, d: d, opts: o, validation: &Validation{}}
}

// Validation returns the problems found in the last record read.
func (xr *XMLReader) Validation() *Validation {
	return xr.validation
}

// Read implements MarcReader. Errors in the XML syntax are returned as is since the reader cannot
// continue after them.
func (xr *XMLReader) Read() (*Record, error) {
	xr.validation = &Validation{}
	for {
		tok, err := xr.d.Token()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "record" {
			start := xr.d.InputOffset()
			record, err := xr.readRecord()
			raw := xr.rr.recorded()
			xr.rr.mark()
			if err != nil {
				var fe *FieldError
				if errors.As(err, &fe) {
					return nil, newMalformedRecordError(err.Error(), start, raw, err)
				}
				return nil, err
			}
			return record, nil
		}
	}
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// readRecord reads the content of a record element. The start element has been consumed.
func (xr *XMLReader) readRecord() (*Record, error) {
	record := &Record{}
	pos := &position{}
	for {
		tok, err := xr.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return record, nil
		case xml.StartElement:
			var field Field
			switch t.Name.Local {
			case "leader":
				text, err := xr.text()
				if err != nil {
					return nil, err
				}
				record.Leader = NewLeader(text)
				continue
			case "controlfield":
				field, err = xr.controlField(t, pos)
			case "datafield":
				field, err = xr.dataField(t, pos)
			default:
				err = xr.d.Skip()
			}
			if err != nil {
				if _, ok := err.(*FieldError); !ok {
					return nil, err
				}
				if err := handleFieldError(xr.opts, xr.validation, err); err != nil {
					if serr := xr.d.Skip(); serr != nil {
						return nil, serr
					}
					return nil, err
				}
				continue
			}
			if field != nil {
				record.AddField(field)
			}
		}
	}
}

// text returns the character data of the current element and consumes its end element.
func (xr *XMLReader) text() (string, error) {
	sb := strings.Builder{}
	depth := 1
	for depth > 0 {
		tok, err := xr.d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 1 {
				sb.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

func (xr *XMLReader) controlField(se xml.StartElement, pos *position) (Field, error) {
	tag, _ := attr(se, "tag")
	data, err := xr.text()
	if err != nil {
		return nil, err
	}
	if len(tag) != 3 {
		return nil, newFieldError(fmt.Sprintf("invalid tag '%s'", tag), tag, pos)
	}
	return &ControlField{Tag: tag, Data: data}, nil
}

func (xr *XMLReader) dataField(se xml.StartElement, pos *position) (Field, error) {
	tag, _ := attr(se, "tag")
	ind1, _ := attr(se, "ind1")
	ind2, _ := attr(se, "ind2")

	var subfields []Subfield
	var fieldErr error
	for {
		tok, err := xr.d.Token()
		if err != nil {
			return nil, err
		}
		if _, ok := tok.(xml.EndElement); ok {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "subfield" {
			if err := xr.d.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		code, _ := attr(se, "code")
		value, err := xr.text()
		if err != nil {
			return nil, err
		}
		c, ok := firstRune(code)
		if !ok && fieldErr == nil {
			fieldErr = newFieldError("subfield without code", tag, pos)
		}
		subfields = append(subfields, Subfield{Code: c, Value: value})
	}

	if fieldErr != nil {
		return nil, fieldErr
	}
	if len(tag) != 3 {
		return nil, newFieldError(fmt.Sprintf("invalid tag '%s'", tag), tag, pos)
	}
	i1, ok1 := firstRune(ind1)
	i2, ok2 := firstRune(ind2)
	if !ok1 || !ok2 {
		return nil, newFieldError("missing indicator", tag, pos)
	}
	return &DataField{Tag: tag, Ind1: i1, Ind2: i2, Subfields: subfields}, nil
}

// XMLWriter writes MARCXML or MarcXchange.
type XMLWriter struct {
	namespace string
	schema    string
	opts      *options
}

// NewMarcXchangeWriter creates a writer of MarcXchange version 1 records.
func NewMarcXchangeWriter(opts ...Option) *XMLWriter {
	return &XMLWriter{namespace: MarcXchangeNamespace, schema: marcXchangeSchema, opts: newOptions(opts...)}
}

// NewMarcXMLWriter creates a writer of MARCXML records.
func NewMarcXMLWriter(opts ...Option) *XMLWriter {
	return &XMLWriter{namespace: MarcXMLNamespace, schema: marcXMLSchema, opts: newOptions(opts...)}
}

// CanOutputCollection implements MarcWriter.
func (w *XMLWriter) CanOutputCollection() bool {
	return true
}

// Write implements MarcWriter.
func (w *XMLWriter) Write(r *Record, cs charset.Charset) ([]byte, error) {
	buf := &bytes.Buffer{}
	w.declaration(buf, cs)
	w.record(buf, r, true)
	return w.encode(buf, cs)
}

// WriteCollection implements MarcWriter.
func (w *XMLWriter) WriteCollection(records []*Record, cs charset.Charset) ([]byte, error) {
	buf := &bytes.Buffer{}
	w.declaration(buf, cs)
	buf.WriteString("<collection")
	w.namespaceAttrs(buf)
	buf.WriteByte('>')
	for _, r := range records {
		w.record(buf, r, false)
	}
	buf.WriteString("</collection>")
	return w.encode(buf, cs)
}

func (w *XMLWriter) encode(buf *bytes.Buffer, cs charset.Charset) ([]byte, error) {
	b, err := cs.Encode(buf.String())
	if err != nil {
		return nil, fmt.Errorf("gomarc: cannot encode record: %w", err)
	}
	return b, nil
}

func (w *XMLWriter) declaration(buf *bytes.Buffer, cs charset.Charset) {
	if w.opts.xmlDeclaration {
		fmt.Fprintf(buf, xmlDeclarationPattern, cs.Name())
	}
}

func (w *XMLWriter) namespaceAttrs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, " xmlns='%s' xmlns:xsi='%s' xsi:schemaLocation='%s %s'", w.namespace, xsiNamespace, w.namespace, w.schema)
}

func escapeXML(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}

func (w *XMLWriter) record(buf *bytes.Buffer, r *Record, root bool) {
	buf.WriteString("<record")
	if root {
		w.namespaceAttrs(buf)
	}
	buf.WriteByte('>')
	if !r.Leader.IsEmpty() {
		buf.WriteString("<leader>")
		escapeXML(buf, r.Leader.String())
		buf.WriteString("</leader>")
	}
	for _, f := range r.Fields {
		switch v := f.(type) {
		case *ControlField:
			buf.WriteString("<controlfield tag='")
			escapeXML(buf, v.Tag)
			buf.WriteString("'>")
			escapeXML(buf, v.Data)
			buf.WriteString("</controlfield>")
		case *DataField:
			buf.WriteString("<datafield ind1='")
			escapeXML(buf, string(v.Ind1))
			buf.WriteString("' ind2='")
			escapeXML(buf, string(v.Ind2))
			buf.WriteString("' tag='")
			escapeXML(buf, v.Tag)
			buf.WriteString("'>")
			for _, sf := range v.Subfields {
				buf.WriteString("<subfield code='")
				escapeXML(buf, string(sf.Code))
				buf.WriteString("'>")
				escapeXML(buf, sf.Value)
				buf.WriteString("</subfield>")
			}
			buf.WriteString("</datafield>")
		}
	}
	buf.WriteString("</record>")
}
