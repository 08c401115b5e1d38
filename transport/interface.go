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

// Package transport abstracts the socket operations of the server framework
// over cleartext TCP and TLS. Concrete implementations live in the cleartext
// and secure sub-packages; the server only manipulates the interfaces
// defined here.
package transport

import (
	"context"
	"net"
	"time"
)

// Transport creates listen sockets for one transport kind.
type Transport interface {
	// Kind returns the transport kind implemented.
	Kind() Kind

	// Listen binds the given address and returns the listen socket. An
	// address with port 0 binds an ephemeral port, readable from the
	// returned listener's Addr.
	Listen(ctx context.Context, addr string) (Listener, error)
}

// Listener is a bound listen socket. It is owned by the server's listener
// entity and shared by reference with the acceptors, which only call Accept
// on it. Close unblocks every pending Accept.
type Listener interface {
	// Accept blocks until a connection is available or the listener is
	// closed. A closed listener surfaces an error matching IsClosed;
	// recoverable accept failures match IsTransient.
	Accept() (Conn, error)

	// Addr returns the actual bound address.
	Addr() net.Addr

	// Close closes the listen socket. Idempotent.
	Close() error
}

// Conn is a post-accept connection socket, owned exclusively by one
// connection worker. No other goroutine may invoke its operations.
type Conn interface {
	// Handshake completes the transport handshake. It is a no-op for
	// cleartext and performs the TLS handshake for the secure transport.
	// Never called by the acceptor; always deferred to the worker.
	Handshake(ctx context.Context) error

	// Recv reads at most max bytes, or whatever one read returns when max
	// is 0. A positive timeout bounds the read; exceeding it surfaces an
	// error matching IsTimeout. An orderly peer close matches IsClosed.
	Recv(max int, timeout time.Duration) ([]byte, error)

	// Send writes p to the socket.
	Send(p []byte) (int, error)

	// CloseWrite half-closes the socket: further sends fail while reads
	// still drain.
	CloseWrite() error

	// Close releases the socket and all transport state. Idempotent.
	Close() error

	// LocalAddr returns the local address of the socket.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer address of the socket.
	RemoteAddr() net.Addr
}
