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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/tcpreactor/metrics"
)

func TestNewRegistryRegistersEveryCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRegistry(reg)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() = %v", err)
	}

	if got, want := len(r.Metrics()), 4; got != want {
		t.Fatalf("Metrics() returned %d collectors, want %d", got, want)
	}

	r.ConnectionsAccepted.WithLabelValues("127.0.0.1:9000").Inc()
	r.ConnectionsActive.Set(3)
	r.TimerExpirations.WithLabelValues("inactivity").Inc()
	r.DispatchDuration.Observe(0.002)

	mfs, err = reg.Gather()
	if err != nil {
		t.Fatalf("Gather() after observing = %v", err)
	}
	if len(mfs) != 4 {
		t.Fatalf("expected 4 metric families after gathering, got %d", len(mfs))
	}
}

func TestNewCounterVecKindAndAccessors(t *testing.T) {
	m := metrics.NewCounterVec("example_total", "an example counter", "label")
	if m.GetName() != "example_total" {
		t.Fatalf("GetName() = %q", m.GetName())
	}
	if m.GetType() != metrics.Counter {
		t.Fatalf("GetType() = %v, want Counter", m.GetType())
	}
	if m.GetDesc() != "an example counter" {
		t.Fatalf("GetDesc() = %q", m.GetDesc())
	}
	if m.Collector() == nil {
		t.Fatal("Collector() returned nil")
	}
}

func TestKindString(t *testing.T) {
	cases := map[metrics.Kind]string{
		metrics.None:      "none",
		metrics.Counter:   "counter",
		metrics.Gauge:     "gauge",
		metrics.Histogram: "histogram",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
