/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the server's own counters/gauges, each registered under a
// private registry instance so building more than one Server in a test
// binary never collides on prometheus's global DefaultRegisterer.
type metrics struct {
	registry        *prometheus.Registry
	openConnections prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	connsAccepted   prometheus.Counter
	connsDropped    prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pyre_open_connections",
			Help: "Connections currently tracked by the server.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pyre_requests_total",
			Help: "Requests dispatched to the application, by response status class.",
		}, []string{"status_class"}),
		connsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pyre_connections_accepted_total",
			Help: "Connections accepted since startup.",
		}),
		connsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pyre_connections_dropped_total",
			Help: "Connections closed by a sweep or a fatal I/O error.",
		}),
	}

	m.registry.MustRegister(m.openConnections, m.requestsTotal, m.connsAccepted, m.connsDropped)
	return m
}

// Registry exposes the server's private prometheus registry so a caller can
// mount it behind /metrics with promhttp.HandlerFor.
func (s *Server) Registry() *prometheus.Registry {
	return s.metrics.registry
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
