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

// basic_test.go tests the configuration record: zero values, documented
// defaults, normalization, validation and address composition.
package config_test

import (
	"time"

	"github.com/sabouaram/socksrv/config"
	libdur "github.com/sabouaram/socksrv/duration"
	scktpt "github.com/sabouaram/socksrv/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server Configuration", func() {
	Context("zero value", func() {
		It("should keep port 0 meaning ephemeral", func() {
			var c config.Server
			Expect(c.Port).To(Equal(0))
			Expect(c.Transport).To(Equal(scktpt.KindUnknown))
		})

		It("should validate", func() {
			var c config.Server
			Expect(c.Validate()).To(Succeed())
		})
	})

	Context("documented defaults", func() {
		It("should populate every default", func() {
			c := config.Default()

			Expect(c.Port).To(Equal(config.DefaultPort))
			Expect(c.Transport).To(Equal(scktpt.KindCleartext))
			Expect(c.NumAcceptors).To(Equal(10))
			Expect(c.ReadTimeout.Time()).To(Equal(60 * time.Second))
			Expect(c.ShutdownTimeout.Time()).To(Equal(15 * time.Second))
			Expect(c.MailboxSize).To(Equal(64))
		})
	})

	Context("Normalize", func() {
		It("should replace zero values with defaults and keep the port", func() {
			c := (config.Server{Port: 0}).Normalize()

			Expect(c.Port).To(Equal(0))
			Expect(c.Transport).To(Equal(scktpt.KindCleartext))
			Expect(c.NumAcceptors).To(Equal(config.DefaultNumAcceptors))
			Expect(c.ReadTimeout).To(Equal(config.DefaultReadTimeout))
			Expect(c.ShutdownTimeout).To(Equal(config.DefaultShutdownTimeout))
			Expect(c.MailboxSize).To(Equal(config.DefaultMailboxSize))
		})

		It("should keep explicit values", func() {
			c := config.Server{
				NumAcceptors: 3,
				ReadTimeout:  libdur.Seconds(5),
			}

			n := c.Normalize()
			Expect(n.NumAcceptors).To(Equal(3))
			Expect(n.ReadTimeout).To(Equal(libdur.Seconds(5)))
		})
	})

	Context("Validate", func() {
		It("should reject an out of range port", func() {
			c := config.Server{Port: 70000}
			Expect(c.Validate()).ToNot(Succeed())
		})

		It("should reject a negative port", func() {
			c := config.Server{Port: -1}
			Expect(c.Validate()).ToNot(Succeed())
		})

		It("should reject the tls transport without material", func() {
			c := config.Server{Transport: scktpt.KindTLS}

			err := c.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(config.ErrInvalidTLSConfig))
		})

		It("should reject the tls transport with a missing pair", func() {
			c := config.Server{
				Transport: scktpt.KindTLS,
				TLS: config.TLSOptions{
					Enabled: true,
					Certs:   []config.CertPair{{Cert: "/nope.crt", Key: "/nope.key"}},
				},
			}

			err := c.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(config.ErrInvalidTLSConfig))
		})
	})

	Context("Addr", func() {
		It("should compose bind address and port", func() {
			c := config.Server{Bind: "127.0.0.1", Port: 4000}
			Expect(c.Addr()).To(Equal("127.0.0.1:4000"))
		})

		It("should bind all interfaces when empty", func() {
			c := config.Server{Port: 4000}
			Expect(c.Addr()).To(Equal(":4000"))
		})
	})

	Context("TLS options", func() {
		It("should reject an unknown version name", func() {
			o := config.TLSOptions{
				Enabled:    true,
				Certs:      []config.CertPair{{Cert: "x", Key: "y"}},
				VersionMin: "9.9",
			}

			_, err := o.TLSConfig()
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown cipher suite name", func() {
			o := config.TLSOptions{
				Enabled:      true,
				Certs:        []config.CertPair{{Cert: "x", Key: "y"}},
				CipherSuites: []string{"TLS_TOTALLY_MADE_UP"},
			}

			_, err := o.TLSConfig()
			Expect(err).To(HaveOccurred())
		})
	})
})
