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
	"bufio"
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nlnwa/gomarc"
	"github.com/nlnwa/gomarc/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marcXMLMinimal = `<?xml version="1.0" encoding="UTF-8"?>
<collection xmlns="http://www.loc.gov/MARC21/slim">
  <record>
    <leader>00925njm  22002777a 4500</leader>
    <controlfield tag="001">control1</controlfield>
    <datafield tag="100" ind1=" " ind2=" ">
      <subfield code="a">code-a</subfield>
      <subfield code="b">code-b</subfield>
    </datafield>
  </record>
</collection>
`

const danMarc2Line = "LDR 00000n    2200000   4500\n010 00 *a xαx\n\n"

const marcXchangeRecord = "<record xmlns='info:lc/xmlns/marcxchange-v1' xmlns:xsi='http://www.w3.org/2001/XMLSchema-instance' " +
	"xsi:schemaLocation='info:lc/xmlns/marcxchange-v1 http://www.loc.gov/standards/iso25577/marcxchange-1-1.xsd'>" +
	"<leader>00925njm  22002777a 4500</leader><controlfield tag='001'>control1</controlfield>" +
	"<datafield ind1=' ' ind2=' ' tag='100'><subfield code='a'>code-a</subfield><subfield code='b'>code-b</subfield></datafield></record>"

var isoRecord = "00078njm  22000497a 4500" +
	"001000900000" +
	"100001900009" +
	"\x1e" +
	"control1\x1e" +
	"  \x1facode-a\x1fbcode-b\x1e" +
	"\x1d"

// run executes mconv with input on stdin. The error dump is kept in a temporary directory.
func run(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	dump := filepath.Join(t.TempDir(), defaultErrDump)
	out := &bytes.Buffer{}
	cmd := NewCommand()
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--errdump", dump}, args...))
	err := cmd.Execute()
	return out.String(), dump, err
}

func TestConvertFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{"line lax", marcXMLMinimal, nil, "00925njm  22002777a 4500\n001 control1\n100    *a code-a *b code-b\n\n"},
		{"line lax no leader", marcXMLMinimal, []string{"--include-leader=false"}, "001 control1\n100    *a code-a *b code-b\n\n"},
		{"line lax no padding", marcXMLMinimal, []string{"-p=false"}, "00925njm  22002777a 4500\n001 control1\n100    *acode-a*bcode-b\n\n"},
		{"line strict", marcXMLMinimal, []string{"-m", "STRICT"}, "00925njm  22002777a 4500\n001 control1\n100    $acode-a$bcode-b\n\n"},
		{"line strict no leader", marcXMLMinimal, []string{"-m", "strict", "-l=false"}, "001 control1\n100    $acode-a$bcode-b\n\n"},
		{"line strict with padding", marcXMLMinimal, []string{"--mode=STRICT", "-p"}, "00925njm  22002777a 4500\n001 control1\n100    $a code-a $b code-b\n\n"},
		{"line concat", marcXMLMinimal, []string{"--format=line_concat"}, "\"00925njm  22002777a 4500\\n\" +\n\"001 control1\\n\" +\n\"100    *a code-a *b code-b\\n\"\n"},
		{"danmarc2 line lax", danMarc2Line, nil, "LDR 00000n    2200000   4500\n010 00 *a xαx\n\n"},
		{"danmarc2 line lax no leader", danMarc2Line, []string{"-l=false"}, "010 00 *a xαx\n\n"},
		{"danmarc2 line lax no padding", danMarc2Line, []string{"-p=false"}, "LDR 00000n    2200000   4500\n010 00 *axαx\n\n"},
		{"danmarc2 line strict", danMarc2Line, []string{"-m", "STRICT"}, "LDR 00000n    2200000   4500\n010 00 *axαx\n$\n"},
		{"danmarc2 line strict no leader", danMarc2Line, []string{"-m", "STRICT", "-l=false"}, "010 00 *axαx\n$\n"},
		{"danmarc2 line strict with padding", danMarc2Line, []string{"-m", "STRICT", "-p"}, "LDR 00000n    2200000   4500\n010 00 *a xαx\n$\n"},
		{"marcxchange lax", marcXMLMinimal, []string{"-f", "MARCXCHANGE"}, marcXchangeRecord},
		{"marcxchange strict", marcXMLMinimal, []string{"-f", "MARCXCHANGE", "-m", "STRICT"}, "<?xml version='1.0' encoding='UTF-8'?>\n" + marcXchangeRecord},
		{"jsonl", marcXMLMinimal, []string{"--format=jsonl"}, `{"leader":["0","0","9","2","5","n","j","m"," "," ","2","2","0","0","2","7","7","7","a"," ","4","5","0","0"],` +
			`"fields":[{"name":"001","value":"control1"},` +
			`{"name":"100","indicator":[" "," "],"subfields":[{"name":"a","value":"code-a"},{"name":"b","value":"code-b"}]}]}` + "\n"},
		{"iso input", isoRecord, nil, "00078njm  22000497a 4500\n001 control1\n100    *a code-a *b code-b\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dump, err := run(t, tt.input, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoFileExists(t, dump)
		})
	}
}

func TestConvertMarcXchangeCollection(t *testing.T) {
	input := `{"leader":[],"fields":[{"name":"001","indicator":["0","0"],"subfields":[{"name":"a","value":"30769430"}]}]}` + "\n" +
		`{"leader":[],"fields":[{"name":"001","indicator":["0","0"],"subfields":[{"name":"a","value":"30769431"}]}]}` + "\n"

	got, _, err := run(t, input, "-c", "--format=MARCXCHANGE")
	require.NoError(t, err)
	assert.Equal(t, "<collection xmlns='info:lc/xmlns/marcxchange-v1' xmlns:xsi='http://www.w3.org/2001/XMLSchema-instance' xsi:schemaLocation='info:lc/xmlns/marcxchange-v1 http://www.loc.gov/standards/iso25577/marcxchange-1-1.xsd'>"+
		"<record><datafield ind1='0' ind2='0' tag='001'><subfield code='a'>30769430</subfield></datafield></record>"+
		"<record><datafield ind1='0' ind2='0' tag='001'><subfield code='a'>30769431</subfield></datafield></record>"+
		"</collection>", got)
}

func TestConvertISOOutput(t *testing.T) {
	got, _, err := run(t, marcXMLMinimal, "-f", "ISO")
	require.NoError(t, err)

	r := bufio.NewReaderSize(strings.NewReader(got), gomarc.PushbackBufferSize)
	f, err := gomarc.DeduceFormat(r, nil)
	require.NoError(t, err)
	assert.Equal(t, gomarc.FormatISO2709, f)

	rec, err := gomarc.NewISO2709Reader(r).Read()
	require.NoError(t, err)
	assert.Equal(t, "control1", rec.ControlFields()[0].Data)
}

func TestConvertInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"--format=NON_EXISTING_FORMAT"}},
		{"unknown mode", []string{"--mode=SLOPPY"}},
		{"unknown encoding", []string{"-o", "no-such-charset"}},
		{"collection not supported", []string{"-c", "-f", "JSONL"}},
		{"concat collection not supported", []string{"-c", "-f", "LINE_CONCAT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dump, err := run(t, marcXMLMinimal, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, got)
			assert.NoFileExists(t, dump)
		})
	}
}

func TestConvertErrorDump(t *testing.T) {
	bad := "00079" + isoRecord[5:]
	input := isoRecord + bad + bad + isoRecord

	got, dump, err := run(t, input)
	require.Error(t, err)
	assert.Equal(t, "Input contained erroneous MARC data, see "+dump+" file for further details", err.Error())

	record := "00078njm  22000497a 4500\n001 control1\n100    *a code-a *b code-b\n\n"
	assert.Equal(t, record+record, got)

	b, err := ioutil.ReadFile(dump)
	require.NoError(t, err)
	content := string(b)
	assert.True(t, strings.HasPrefix(content, "Record number 2 - "))
	assert.Contains(t, content, "\n"+bad+"\nRecord number 3 - ")
	assert.True(t, strings.HasSuffix(content, "\n"+bad))
}

func TestConvertEmptyInput(t *testing.T) {
	_, _, err := run(t, "")
	assert.Error(t, err)
}

func TestConvertInputFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "marcxml_minimal.xml")
	require.NoError(t, ioutil.WriteFile(name, []byte(marcXMLMinimal), 0644))

	for _, args := range [][]string{{name}, {"-"}, nil} {
		got, _, err := run(t, marcXMLMinimal, args...)
		require.NoError(t, err)
		assert.Equal(t, "00925njm  22002777a 4500\n001 control1\n100    *a code-a *b code-b\n\n", got)
	}

	_, _, err := run(t, "", filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestConvertOutputFile(t *testing.T) {
	dir := t.TempDir()
	outputFile := filepath.Join(dir, "out.lin")
	metricsFile := filepath.Join(dir, "mconv.prom")

	got, _, err := run(t, isoRecord+isoRecord, "--output-file", outputFile, "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.Empty(t, got)

	b, err := ioutil.ReadFile(outputFile)
	require.NoError(t, err)
	record := "00078njm  22000497a 4500\n001 control1\n100    *a code-a *b code-b\n\n"
	assert.Equal(t, record+record, string(b))
	_, err = os.Stat(outputFile + openFileSuffix)
	assert.True(t, os.IsNotExist(err))

	m, err := ioutil.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(m), "mconv_records_read_total 2")
	assert.Contains(t, string(m), "mconv_records_written_total 2")
	assert.Contains(t, string(m), "mconv_bytes_written_total 132")
}

func TestConvertConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "mconv.yaml")
	require.NoError(t, ioutil.WriteFile(cfg, []byte("mode: STRICT\ninclude-leader: false\n"), 0644))

	got, _, err := run(t, marcXMLMinimal, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "001 control1\n100    $acode-a$bcode-b\n\n", got)

	_, _, err = run(t, marcXMLMinimal, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewCollector(t *testing.T) {
	collector, registry := newCollector("")
	assert.Nil(t, registry)
	require.Len(t, collector, 2)
	assert.IsType(t, &stats.Noop{}, collector[1])

	collector, registry = newCollector(filepath.Join(t.TempDir(), "mconv.prom"))
	require.NotNil(t, registry)
	collector.IncCounter(stats.MetricRecordsRead, 2)
	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
