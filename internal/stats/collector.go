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

// Package stats provides a unified interface for collecting conversion metrics.
package stats

// Metric names used by mconv.
const (
	MetricRecordsRead    = "mconv_records_read_total"
	MetricRecordsWritten = "mconv_records_written_total"
	MetricRecordsFailed  = "mconv_records_failed_total"
	MetricFieldWarnings  = "mconv_field_warnings_total"
	MetricBytesRead      = "mconv_bytes_read_total"
	MetricBytesWritten   = "mconv_bytes_written_total"

	MetricRecordSize = "mconv_record_size_bytes"

	MetricDurationMillis = "mconv_duration_milliseconds"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

// Multi sends every metric to all of its collectors.
type Multi []Collector

var _ Collector = Multi(nil)

func (m Multi) IncCounter(name string, delta int64) {
	for _, c := range m {
		c.IncCounter(name, delta)
	}
}

func (m Multi) SetGauge(name string, value int64) {
	for _, c := range m {
		c.SetGauge(name, value)
	}
}

func (m Multi) ObserveHistogram(name string, value float64) {
	for _, c := range m {
		c.ObserveHistogram(name, value)
	}
}
