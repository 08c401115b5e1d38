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

// lifecycle_test.go tests the server lifecycle: bind, steady-state
// acceptance, stop-listen, shutdown and the gone state.
package server_test

import (
	"context"
	"time"

	scksrv "github.com/sabouaram/socksrv/server"
	scktpt "github.com/sabouaram/socksrv/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server Lifecycle", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		srv    scksrv.Server
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(globalCtx, 60*time.Second)

		var err error
		srv, err = scksrv.New(createDefaultConfig(), echoHandler{})
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		if srv != nil {
			_ = srv.Shutdown(context.Background())
		}
		if cancel != nil {
			cancel()
		}
	})

	Describe("Start", func() {
		It("should bind and report running", func() {
			Expect(srv.IsRunning()).To(BeFalse())

			startServer(ctx, srv)

			Expect(srv.IsRunning()).To(BeTrue())
			Expect(srv.IsGone()).To(BeFalse())
		})

		It("should expose a positive bound port with an ephemeral configuration", func() {
			startServer(ctx, srv)

			nfo := srv.Info()
			Expect(nfo.Port).To(BeNumerically(">", 0))
			Expect(nfo.Transport).To(Equal(scktpt.KindCleartext))

			con := connectClient(serverAddr(srv))
			defer func() {
				_ = con.Close()
			}()

			waitForConnections(srv, 1, 2*time.Second)
		})

		It("should fail when already running", func() {
			startServer(ctx, srv)

			err := srv.Start(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(scksrv.ErrRunning))
		})

		It("should fail with an already used port", func() {
			startServer(ctx, srv)

			cfg := createDefaultConfig()
			cfg.Port = srv.Info().Port

			sr2, err := scksrv.New(cfg, echoHandler{})
			Expect(err).ToNot(HaveOccurred())

			err = sr2.Start(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(scksrv.ErrBind))
		})

		It("should accept multiple connections", func() {
			startServer(ctx, srv)
			adr := serverAddr(srv)

			co1 := connectClient(adr)
			co2 := connectClient(adr)
			co3 := connectClient(adr)

			waitForConnections(srv, 3, 2*time.Second)
			Expect(srv.OpenConnections()).To(Equal(int64(3)))

			_ = co1.Close()
			_ = co2.Close()
			_ = co3.Close()

			waitForConnections(srv, 0, 5*time.Second)
		})

		It("should stop on context cancellation", func() {
			lcx, lcl := context.WithCancel(ctx)

			Expect(srv.Start(lcx)).To(Succeed())
			waitForServerRunning(srv, 2*time.Second)

			lcl()
			waitForServerStopped(srv, 5*time.Second)
			Expect(srv.IsRunning()).To(BeFalse())
		})
	})

	Describe("Listen", func() {
		It("should block until shutdown", func() {
			dne := make(chan error, 1)

			go func() {
				dne <- srv.Listen(ctx)
			}()

			waitForServerRunning(srv, 2*time.Second)

			Consistently(dne, 200*time.Millisecond).ShouldNot(Receive())

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			Eventually(dne, 5*time.Second).Should(Receive(BeNil()))
		})
	})

	Describe("Shutdown", func() {
		It("should shutdown successfully when running", func() {
			startServer(ctx, srv)

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			Expect(srv.IsRunning()).To(BeFalse())
		})

		It("should be idempotent", func() {
			startServer(ctx, srv)

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			Expect(srv.Shutdown(context.Background())).To(Succeed())
		})

		It("should work when never started", func() {
			Expect(srv.IsRunning()).To(BeFalse())
			Expect(srv.Shutdown(context.Background())).To(Succeed())
		})

		It("should close all connections on shutdown", func() {
			startServer(ctx, srv)

			con := connectClient(serverAddr(srv))
			waitForConnections(srv, 1, 2*time.Second)

			go func() {
				time.Sleep(100 * time.Millisecond)
				_ = con.Close()
			}()

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			Expect(srv.OpenConnections()).To(Equal(int64(0)))
		})

		It("should mark the server gone", func() {
			startServer(ctx, srv)

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			waitForGone(srv, 2*time.Second)
		})
	})

	Describe("Close", func() {
		It("should behave like Shutdown", func() {
			startServer(ctx, srv)

			Expect(srv.Close()).To(Succeed())
			waitForServerStopped(srv, 5*time.Second)
			waitForGone(srv, 5*time.Second)
		})
	})

	Describe("StopListen", func() {
		It("should stop accepting new connections", func() {
			startServer(ctx, srv)

			Expect(srv.StopListen(ctx)).To(Succeed())
			waitForServerStopped(srv, 5*time.Second)
		})

		It("should not close established connections", func() {
			startServer(ctx, srv)
			adr := serverAddr(srv)

			con := connectClient(adr)
			waitForConnections(srv, 1, 2*time.Second)

			Expect(srv.StopListen(ctx)).To(Succeed())
			waitForServerStopped(srv, 5*time.Second)

			// established connection keeps being served
			msg := []byte("STILL HERE")
			Expect(sendAndReceive(con, msg)).To(Equal(msg))

			_ = con.Close()
			waitForGone(srv, 5*time.Second)
		})
	})

	Describe("Done", func() {
		It("should block while running and release on shutdown", func() {
			startServer(ctx, srv)

			dne := srv.Done()
			Expect(dne).ToNot(BeNil())

			select {
			case <-dne:
				Fail("Done channel should not be closed while running")
			case <-time.After(100 * time.Millisecond):
			}

			go func() {
				time.Sleep(100 * time.Millisecond)
				_ = srv.Shutdown(context.Background())
			}()

			Eventually(dne, 5*time.Second).Should(BeClosed())
		})

		It("should be already released before any start", func() {
			Eventually(srv.Done(), 100*time.Millisecond).Should(BeClosed())
		})
	})

	Describe("IsGone", func() {
		It("should be true initially, false while running, true after shutdown", func() {
			Expect(srv.IsGone()).To(BeTrue())

			startServer(ctx, srv)
			Expect(srv.IsGone()).To(BeFalse())

			Expect(srv.Shutdown(context.Background())).To(Succeed())
			waitForGone(srv, 5*time.Second)
		})
	})
})
