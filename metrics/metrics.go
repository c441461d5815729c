/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics wraps the handful of prometheus collectors the reactor
// reports through: connection accept counts, the live connection gauge,
// per-wheel timer expirations, and dispatch cycle latency.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Kind names the prometheus collector family behind a Metric, so callers
// that only hold the Metric interface can still branch on shape.
type Kind uint8

const (
	None Kind = iota
	Counter
	Gauge
	Histogram
)

func (k Kind) String() string {
	switch k {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	case Histogram:
		return "histogram"
	default:
		return "none"
	}
}

// Metric names one registered collector.
type Metric interface {
	GetName() string
	GetType() Kind
	GetDesc() string

	// Collector returns the underlying prometheus.Collector so a Registry
	// can register it once at construction time.
	Collector() prometheus.Collector
}

type metric struct {
	name string
	kind Kind
	desc string
	coll prometheus.Collector
}

func (m *metric) GetName() string               { return m.name }
func (m *metric) GetType() Kind                 { return m.kind }
func (m *metric) GetDesc() string                { return m.desc }
func (m *metric) Collector() prometheus.Collector { return m.coll }

// NewCounterVec builds a Metric backed by a CounterVec labeled by labels.
func NewCounterVec(name, desc string, labels ...string) Metric {
	return &metric{
		name: name,
		kind: Counter,
		desc: desc,
		coll: prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: desc}, labels),
	}
}

// NewGauge builds a Metric backed by a single unlabeled Gauge.
func NewGauge(name, desc string) Metric {
	return &metric{
		name: name,
		kind: Gauge,
		desc: desc,
		coll: prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: desc}),
	}
}

// NewHistogram builds a Metric backed by a Histogram with buckets.
func NewHistogram(name, desc string, buckets []float64) Metric {
	return &metric{
		name: name,
		kind: Histogram,
		desc: desc,
		coll: prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: desc, Buckets: buckets}),
	}
}
