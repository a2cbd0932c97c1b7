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

/*
Package gomarc allows reading, writing and converting MARC records.

# MARC

MARC is a family of formats for bibliographic records. A record is a leader followed by control fields and
data fields. Data fields carry two indicators and a list of coded subfields.

This package reads and writes records in the following serializations:

  - ISO2709, the binary exchange format: [NewISO2709Reader], [NewISO2709Writer]
  - the generic line format: [NewLineFormatReader], [NewLineFormatWriter]
  - the DanMarc2 line format: [NewDanMarc2LineFormatReader], [NewDanMarc2LineFormatWriter]
  - MARCXML and MarcXchange: [NewXMLReader], [NewMarcXMLWriter], [NewMarcXchangeWriter]
  - JSON lines: [NewJSONLineReader], [NewJSONLineWriter]

Field content may be stored in legacy character sets like MARC-8 and DanMarc2. See the charset package.

# Detecting the input format

[NewInput] prepares a stream for reading, transparently decompressing gzip and zstd input. [DeduceFormat]
inspects the start of the stream without consuming it.

# Errors

A malformed record is reported as a [*MalformedRecordError] holding the offending bytes. The reader stays
usable and the next call to Read continues with the following record. How problems within a single field
are handled is controlled with [WithSyntaxErrorPolicy].
*/
package gomarc
