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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the reactor's fixed set of collectors, registered once
// against a prometheus.Registerer at construction.
type Registry struct {
	ConnectionsAccepted *prometheus.CounterVec
	ConnectionsActive    prometheus.Gauge
	TimerExpirations     *prometheus.CounterVec
	DispatchDuration     prometheus.Histogram

	metrics []Metric
}

// NewRegistry builds the reactor's metric set and registers every
// collector against reg. Passing prometheus.NewRegistry() isolates the
// reactor's series from the process default registry; passing
// prometheus.DefaultRegisterer exposes them on the usual /metrics path.
func NewRegistry(reg prometheus.Registerer) *Registry {
	accepted := NewCounterVec("reactor_connections_accepted_total", "connections accepted per listener", "listener")
	active := NewGauge("reactor_connections_active", "currently open connections")
	expirations := NewCounterVec("reactor_timer_expirations_total", "timer expirations per wheel", "wheel")
	dispatch := NewHistogram("reactor_dispatch_duration_seconds", "wall time of one Dispatch call",
		[]float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1})

	r := &Registry{
		ConnectionsAccepted: accepted.Collector().(*prometheus.CounterVec),
		ConnectionsActive:   active.Collector().(prometheus.Gauge),
		TimerExpirations:    expirations.Collector().(*prometheus.CounterVec),
		DispatchDuration:    dispatch.Collector().(prometheus.Histogram),
		metrics:             []Metric{accepted, active, expirations, dispatch},
	}

	for _, m := range r.metrics {
		reg.MustRegister(m.Collector())
	}
	return r
}

// Metrics lists every collector the registry registered, for introspection
// or re-registration against a second registerer.
func (r *Registry) Metrics() []Metric {
	return r.metrics
}
