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

// Package logger provides a stats collector that logs metrics with logrus.
package logger

import (
	"github.com/nlnwa/gomarc/internal/stats"
	"github.com/sirupsen/logrus"
)

// Collector implements stats.Collector by logging metrics at debug level.
type Collector struct {
	logger logrus.FieldLogger
}

var _ stats.Collector = (*Collector)(nil)

// New creates a new logger based collector.
// If logger is nil, the standard logrus logger is used.
func New(logger logrus.FieldLogger) *Collector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Collector{logger: logger}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.logger.WithFields(logrus.Fields{"metric": name, "delta": delta}).Debug("counter")
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.logger.WithFields(logrus.Fields{"metric": name, "value": value}).Debug("gauge")
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.WithFields(logrus.Fields{"metric": name, "value": value}).Debug("histogram")
}
