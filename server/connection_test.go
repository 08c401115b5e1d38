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

// connection_test.go tests concurrent connection handling: parallel echo
// without cross-talk, connection accounting, and handling under many
// simultaneous clients.
package server_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	scksrv "github.com/sabouaram/socksrv/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Concurrent Connections", func() {
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

		startServer(ctx, srv)
	})

	AfterEach(func() {
		if srv != nil {
			_ = srv.Shutdown(context.Background())
		}
		if cancel != nil {
			cancel()
		}
	})

	It("should echo independently on two interleaved clients", func() {
		adr := serverAddr(srv)

		cA := connectClient(adr)
		defer func() {
			_ = cA.Close()
		}()

		cB := connectClient(adr)
		defer func() {
			_ = cB.Close()
		}()

		// send on A then B, read B before A: replies must not cross
		_, err := cA.Write([]byte("HELLO"))
		Expect(err).ToNot(HaveOccurred())

		_, err = cB.Write([]byte("BONJOUR"))
		Expect(err).ToNot(HaveOccurred())

		bufB := make([]byte, 7)
		Expect(cB.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		_, err = io.ReadFull(cB, bufB)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(bufB)).To(Equal("BONJOUR"))

		bufA := make([]byte, 5)
		Expect(cA.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		_, err = io.ReadFull(cA, bufA)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(bufA)).To(Equal("HELLO"))
	})

	It("should serve many clients in parallel without cross-talk", func() {
		const clients = 25

		adr := serverAddr(srv)

		var wg sync.WaitGroup
		fail := make(chan error, clients)

		for i := 0; i < clients; i++ {
			wg.Add(1)

			go func(n int) {
				defer wg.Done()
				defer GinkgoRecover()

				con := connectClient(adr)
				defer func() {
					_ = con.Close()
				}()

				msg := []byte(fmt.Sprintf("client-%03d", n))
				got := sendAndReceive(con, msg)

				if string(got) != string(msg) {
					fail <- fmt.Errorf("client %d received %q", n, string(got))
				}
			}(i)
		}

		wg.Wait()
		close(fail)

		for e := range fail {
			Expect(e).ToNot(HaveOccurred())
		}
	})

	It("should account connections while they live", func() {
		adr := serverAddr(srv)

		c1 := connectClient(adr)
		c2 := connectClient(adr)

		waitForConnections(srv, 2, 2*time.Second)

		_ = c1.Close()
		waitForConnections(srv, 1, 5*time.Second)

		_ = c2.Close()
		waitForConnections(srv, 0, 5*time.Second)
	})
})
