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

// emitter_test.go tests the hook emitter: registration order, panic
// isolation and the prometheus collector translation.
package telemetry_test

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	scktlm "github.com/sabouaram/socksrv/telemetry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Emitter", func() {
	It("should deliver events to hooks in registration order", func() {
		var seq []int

		emt := scktlm.New()
		emt.Register(func(evt scktlm.Event) { seq = append(seq, 1) })
		emt.Register(func(evt scktlm.Event) { seq = append(seq, 2) })

		emt.Emit(scktlm.Event{Name: scktlm.EvListenerStart})
		Expect(seq).To(Equal([]int{1, 2}))
	})

	It("should ignore a nil hook", func() {
		emt := scktlm.New()
		emt.Register(nil)

		Expect(func() {
			emt.Emit(scktlm.Event{Name: scktlm.EvListenerStart})
		}).ToNot(Panic())
	})

	It("should isolate a panicking hook", func() {
		var got int

		emt := scktlm.New()
		emt.Register(func(evt scktlm.Event) { panic("bad hook") })
		emt.Register(func(evt scktlm.Event) { got++ })

		Expect(func() {
			emt.Emit(scktlm.Event{Name: scktlm.EvListenerStart})
		}).ToNot(Panic())

		Expect(got).To(Equal(1))
	})
})

var _ = Describe("Prometheus Collector", func() {
	It("should count connection lifecycle events", func() {
		col := scktlm.NewCollector("tlmtest")
		reg := prometheus.NewRegistry()
		Expect(col.Register(reg)).To(Succeed())

		hook := col.Hook()

		hook(scktlm.Event{Name: scktlm.EvConnectionStart})
		hook(scktlm.Event{Name: scktlm.EvConnectionReady, HandshakeTime: 5 * time.Millisecond})
		hook(scktlm.Event{
			Name:     scktlm.EvConnectionClose,
			Duration: 100 * time.Millisecond,
			BytesIn:  42,
			BytesOut: 21,
			Reason:   scktlm.ReasonPeerClosed,
		})
		hook(scktlm.Event{Name: scktlm.EvAcceptorError, Error: nil})

		fam, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())

		val := map[string]float64{}
		for _, f := range fam {
			for _, m := range f.GetMetric() {
				if m.GetCounter() != nil {
					val[f.GetName()] += m.GetCounter().GetValue()
				}
				if m.GetGauge() != nil {
					val[f.GetName()] += m.GetGauge().GetValue()
				}
			}
		}

		Expect(val["tlmtest_connections_started_total"]).To(Equal(float64(1)))
		Expect(val["tlmtest_connections_closed_total"]).To(Equal(float64(1)))
		Expect(val["tlmtest_connections_open"]).To(Equal(float64(0)))
		Expect(val["tlmtest_acceptor_errors_total"]).To(Equal(float64(1)))
		Expect(val["tlmtest_bytes_received_total"]).To(Equal(float64(42)))
		Expect(val["tlmtest_bytes_sent_total"]).To(Equal(float64(21)))
	})

	It("should refuse double registration", func() {
		col := scktlm.NewCollector("")
		reg := prometheus.NewRegistry()

		Expect(col.Register(reg)).To(Succeed())
		Expect(col.Register(reg)).ToNot(Succeed())
	})
})
