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

// creation_test.go tests server initialization and configuration
// validation. Verifies proper server instance creation, configuration
// parameter handling, and error conditions during the initialization phase.
package server_test

import (
	"net"

	sckcfg "github.com/sabouaram/socksrv/config"
	scksrv "github.com/sabouaram/socksrv/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server Creation", func() {
	Context("with valid configuration", func() {
		It("should create a server with minimal configuration", func() {
			srv, err := scksrv.New(createDefaultConfig(), echoHandler{})

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
			Expect(srv.IsRunning()).To(BeFalse())
			Expect(srv.IsGone()).To(BeTrue())
			Expect(srv.OpenConnections()).To(Equal(int64(0)))
		})

		It("should create a server from the documented defaults", func() {
			cfg := sckcfg.Default()
			cfg.Port = 0

			srv, err := scksrv.New(cfg, echoHandler{})

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
		})

		It("should create a server with TLS configuration", func() {
			srv, err := scksrv.New(createTLSConfig(), echoHandler{})

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
		})

		It("should create a server with a connection update function", func() {
			srv, err := scksrv.New(createDefaultConfig(), echoHandler{},
				scksrv.WithUpdateConn(func(c net.Conn) {
					_ = c
				}),
			)

			Expect(err).ToNot(HaveOccurred())
			Expect(srv).ToNot(BeNil())
		})
	})

	Context("with invalid configuration", func() {
		It("should fail without handler", func() {
			srv, err := scksrv.New(createDefaultConfig(), nil)

			Expect(err).To(HaveOccurred())
			Expect(srv).To(BeNil())
			Expect(err).To(MatchError(scksrv.ErrInvalidHandler))
		})

		It("should fail with an out of range port", func() {
			cfg := createDefaultConfig()
			cfg.Port = 90000

			srv, err := scksrv.New(cfg, echoHandler{})

			Expect(err).To(HaveOccurred())
			Expect(srv).To(BeNil())
			Expect(err).To(MatchError(scksrv.ErrInvalidConfig))
		})

		It("should fail with a TLS transport pointing at a missing certificate", func() {
			cfg := createTLSConfig()
			cfg.TLS.Certs = []sckcfg.CertPair{{Cert: "/does/not/exist.crt", Key: "/does/not/exist.key"}}

			srv, err := scksrv.New(cfg, echoHandler{})

			Expect(err).To(HaveOccurred())
			Expect(srv).To(BeNil())
			Expect(err).To(MatchError(sckcfg.ErrInvalidTLSConfig))
		})

		It("should fail with a TLS transport and no certificate at all", func() {
			cfg := createTLSConfig()
			cfg.TLS.Certs = nil

			srv, err := scksrv.New(cfg, echoHandler{})

			Expect(err).To(HaveOccurred())
			Expect(srv).To(BeNil())
		})
	})
})
