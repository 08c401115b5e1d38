/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector translates server events into prometheus metrics. One collector
// serves one server; register it on any prometheus.Registerer.
type Collector struct {
	opened    prometheus.Counter
	closed    *prometheus.CounterVec
	open      prometheus.Gauge
	accErr    prometheus.Counter
	handshake prometheus.Histogram
	duration  prometheus.Histogram
	bytesIn   prometheus.Counter
	bytesOut  prometheus.Counter
}

// NewCollector returns a collector with metrics prefixed by namespace, or
// "socksrv" when empty.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "socksrv"
	}

	return &Collector{
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_started_total",
			Help:      "Connections accepted and handed to a worker.",
		}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Connections terminated, by close reason.",
		}, []string{"reason"}),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_open",
			Help:      "Connections currently owned by a worker.",
		}),
		accErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acceptor_errors_total",
			Help:      "Recoverable accept failures.",
		}),
		handshake: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handshake_duration_seconds",
			Help:      "Transport handshake time.",
			Buckets:   prometheus.DefBuckets,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connection_duration_seconds",
			Help:      "Connection lifetime from accept to close.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Bytes read from connections.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Bytes written to connections.",
		}),
	}
}

// Register registers every metric of the collector on reg.
func (o *Collector) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		o.opened, o.closed, o.open, o.accErr, o.handshake, o.duration, o.bytesIn, o.bytesOut,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// Hook returns the telemetry hook feeding the collector.
func (o *Collector) Hook() Hook {
	return func(evt Event) {
		switch evt.Name {
		case EvConnectionStart:
			o.opened.Inc()
			o.open.Inc()

		case EvConnectionReady:
			o.handshake.Observe(evt.HandshakeTime.Seconds())

		case EvConnectionClose:
			o.open.Dec()
			o.closed.WithLabelValues(evt.Reason).Inc()
			o.duration.Observe(evt.Duration.Seconds())
			o.bytesIn.Add(float64(evt.BytesIn))
			o.bytesOut.Add(float64(evt.BytesOut))

		case EvAcceptorError:
			o.accErr.Inc()
		}
	}
}
