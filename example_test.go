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

package gomarc_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nlnwa/gomarc"
	"github.com/nlnwa/gomarc/charset"
)

func ExampleNewLineFormatWriter() {
	r := gomarc.NewRecord("00925njm  22002777a 4500")
	r.AddControlField("001", "control1")
	r.AddDataField("100", ' ', ' ').
		AddSubfield('a', "code-a").
		AddSubfield('b', "code-b")

	out, err := gomarc.NewLineFormatWriter(gomarc.StrictLineFormat()).Write(r, charset.MustLookup("UTF-8"))
	if err != nil {
		panic(err)
	}
	fmt.Print(string(out))
	// Output: 00925njm  22002777a 4500
	// 001 control1
	// 100    $acode-a$bcode-b
}

func ExampleDeduceFormat() {
	input, closer, err := gomarc.NewInput(strings.NewReader("LDR 00000n    2200000   4500\n010 00 *a xαx\n$\n"))
	if err != nil {
		panic(err)
	}
	defer closer.Close()

	format, err := gomarc.DeduceFormat(input, charset.MustLookup("UTF-8"))
	if err != nil {
		panic(err)
	}
	rec, err := gomarc.NewDanMarc2LineFormatReader(input).Read()
	if err != nil {
		panic(err)
	}
	fmt.Println(format, gomarc.ClassifyDialect(rec))
	// Output: DANMARC2_LINE DanMarc2
}

func ExampleISO2709Reader() {
	rec := gomarc.NewRecord("")
	rec.AddDataField("245", '0', '0').AddSubfield('a', "αβγ")

	marc8 := charset.MustLookup("MARC-8")
	b, err := gomarc.NewISO2709Writer().Write(rec, marc8)
	if err != nil {
		panic(err)
	}

	reader := gomarc.NewISO2709Reader(bytes.NewReader(b), gomarc.WithCharset(marc8))
	got, err := reader.Read()
	if err != nil {
		panic(err)
	}
	fmt.Println(got.DataFields()[0].Subfield('a'))
	// Output: αβγ true
}
