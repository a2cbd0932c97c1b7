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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nlnwa/gomarc"
	"github.com/nlnwa/gomarc/internal/counting"
	"github.com/nlnwa/gomarc/internal/stats"
	"github.com/nlnwa/gomarc/internal/stats/logger"
	promstats "github.com/nlnwa/gomarc/internal/stats/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/tsdb/fileutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const openFileSuffix = ".open"

// validator is implemented by readers that keep the field problems of the last record.
type validator interface {
	Validation() *gomarc.Validation
}

// openInput opens the named file, or standard input for "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", name)
	}
	return f, nil
}

// newReader creates the reader for a detected input format.
func newReader(format gomarc.Format, r *bufio.Reader, opts ...gomarc.Option) (gomarc.MarcReader, error) {
	switch format {
	case gomarc.FormatISO2709:
		return gomarc.NewISO2709Reader(r, opts...), nil
	case gomarc.FormatLine:
		return gomarc.NewLineFormatReader(r, opts...), nil
	case gomarc.FormatDanMarc2Line:
		return gomarc.NewDanMarc2LineFormatReader(r, opts...), nil
	case gomarc.FormatMarcXchange, gomarc.FormatMarcXML:
		return gomarc.NewXMLReader(r, opts...), nil
	case gomarc.FormatJSONLines:
		return gomarc.NewJSONLineReader(r, opts...), nil
	}
	return nil, fmt.Errorf("unknown input format")
}

// errDump collects the raw bytes of records that could not be read.
type errDump struct {
	path string
	f    *os.File
}

func (d *errDump) write(recordNumber int, mre *gomarc.MalformedRecordError) error {
	prolog := "\n"
	if d.f == nil {
		f, err := os.Create(d.path)
		if err != nil {
			return fmt.Errorf("error writing dump file %s: %w", d.path, err)
		}
		d.f = f
		prolog = ""
	}
	msg := mre.Error()
	if cause := errors.Unwrap(mre); cause != nil {
		msg = cause.Error()
	}
	if _, err := fmt.Fprintf(d.f, "%sRecord number %d - %s\n", prolog, recordNumber, msg); err != nil {
		return fmt.Errorf("error writing dump file %s: %w", d.path, err)
	}
	if _, err := d.f.Write(mre.RawBytes()); err != nil {
		return fmt.Errorf("error writing dump file %s: %w", d.path, err)
	}
	return nil
}

func (d *errDump) used() bool {
	return d.f != nil
}

func (d *errDump) close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

// output is where converted records are written. A named file is written with an open suffix
// which is removed when the conversion completes.
type output struct {
	io.Writer
	f *os.File
}

func openOutput(cmd *cobra.Command, name string) (*output, error) {
	if name == "" {
		return &output{Writer: cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(name + openFileSuffix)
	if err != nil {
		return nil, err
	}
	return &output{Writer: f, f: f}, nil
}

func (o *output) close(complete bool) error {
	if o.f == nil {
		return nil
	}
	if err := o.f.Close(); err != nil {
		return err
	}
	if !complete {
		return nil
	}
	return fileutil.Rename(o.f.Name(), strings.TrimSuffix(o.f.Name(), openFileSuffix))
}

func convert(cmd *cobra.Command, inputName string, s *settings) (err error) {
	start := time.Now()
	collector, registry := newCollector(s.metricsFile)

	in, err := openInput(cmd, inputName)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(cmd, s.outputFile)
	if err != nil {
		return err
	}
	complete := false
	defer func() {
		if cerr := out.close(complete); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cr := counting.NewReader(in)
	cw := counting.NewWriter(out)
	dump := &errDump{path: s.errDump}
	defer func() {
		if cerr := dump.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	c := &conversion{settings: s, stats: collector, out: cw, dump: dump}
	if err = c.run(cr); err != nil {
		return err
	}
	complete = true

	collector.IncCounter(stats.MetricBytesRead, cr.N())
	collector.IncCounter(stats.MetricBytesWritten, cw.N())
	collector.SetGauge(stats.MetricDurationMillis, time.Since(start).Milliseconds())
	if registry != nil {
		if err = prometheus.WriteToTextfile(s.metricsFile, registry); err != nil {
			return err
		}
	}

	if dump.used() {
		return fmt.Errorf("Input contained erroneous MARC data, see %s file for further details", s.errDump)
	}
	return nil
}

// newCollector returns the collector for a conversion. Metrics are always logged. A prometheus
// registry is only kept when the metrics are written to a file.
func newCollector(metricsFile string) (stats.Multi, *prometheus.Registry) {
	l := logger.New(log.StandardLogger())
	if metricsFile == "" {
		return stats.Multi{l, stats.NewNoop()}, nil
	}
	registry := prometheus.NewRegistry()
	return stats.Multi{l, promstats.New(registry)}, registry
}

// conversion reads all records from the input and writes them with the writer chosen for the
// first record.
type conversion struct {
	*settings
	stats  stats.Collector
	out    io.Writer
	dump   *errDump
	writer gomarc.MarcWriter
	buffer []*gomarc.Record
	count  int
}

func (c *conversion) run(r io.Reader) error {
	input, closer, err := gomarc.NewInput(r)
	if err != nil {
		return err
	}
	defer closer.Close()

	format, err := gomarc.DeduceFormat(input, c.sampleCharset())
	if err != nil {
		if errors.Is(err, gomarc.ErrNoData) {
			return fmt.Errorf("unknown input format: %w", err)
		}
		return err
	}
	reader, err := newReader(format, input, c.readerOptions()...)
	if err != nil {
		return err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		c.count++
		if v, ok := reader.(validator); ok && len(*v.Validation()) > 0 {
			c.stats.IncCounter(stats.MetricFieldWarnings, int64(len(*v.Validation())))
		}
		if err != nil {
			var mre *gomarc.MalformedRecordError
			if !errors.As(err, &mre) {
				return err
			}
			c.stats.IncCounter(stats.MetricRecordsFailed, 1)
			if err := c.dump.write(c.count, mre); err != nil {
				return err
			}
			continue
		}
		c.stats.IncCounter(stats.MetricRecordsRead, 1)
		if err := c.write(record); err != nil {
			return err
		}
	}

	if len(c.buffer) > 0 {
		b, err := c.writer.WriteCollection(c.buffer, c.outputCharset)
		if err != nil {
			return err
		}
		if _, err := c.out.Write(b); err != nil {
			return err
		}
		c.stats.IncCounter(stats.MetricRecordsWritten, int64(len(c.buffer)))
	}
	return nil
}

func (c *conversion) write(record *gomarc.Record) error {
	if c.writer == nil {
		w, err := c.newWriter(record)
		if err != nil {
			return err
		}
		c.writer = w
	}
	if c.asCollection {
		c.buffer = append(c.buffer, record)
		return nil
	}

	b, err := c.writer.Write(record, c.outputCharset)
	if err != nil {
		return err
	}
	if _, err := c.out.Write(b); err != nil {
		return err
	}
	c.stats.IncCounter(stats.MetricRecordsWritten, 1)
	c.stats.ObserveHistogram(stats.MetricRecordSize, float64(len(b)))
	return nil
}
