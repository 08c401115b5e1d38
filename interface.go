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

package socksrv

import (
	"errors"
	"io"
	"net"

	"github.com/sirupsen/logrus"
)

var (
	// ErrMailboxFull is returned by Meta.Push when the worker mailbox is at
	// capacity. The caller decides whether to retry or drop the message.
	ErrMailboxFull = errors.New("worker mailbox is full")

	// ErrWorkerGone is returned by Meta.Push once the connection worker has
	// terminated.
	ErrWorkerGone = errors.New("worker is gone")
)

// FuncLog is a lazy accessor returning the logger to use. It allows the
// embedding application to swap loggers at runtime without re-wiring the
// server.
type FuncLog func() logrus.FieldLogger

// FuncError receives internal errors the framework recovered from (accept
// retries, handler failures) so the embedding application can observe them.
type FuncError func(e ...error)

// Meta exposes the identity of one accepted connection to the handler.
// It is valid for the whole lifetime of the connection worker.
type Meta interface {
	// ID returns the unique identifier assigned to this connection.
	ID() string

	// LocalAddr returns the local address of the connection socket.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer address of the connection socket.
	RemoteAddr() net.Addr

	// Push delivers an out-of-band message to the connection worker mailbox.
	// The message is handed to the handler's HandleMessage callback, in FIFO
	// order with respect to other pushed messages, never concurrently with
	// another callback on the same connection. Push never blocks: it fails
	// with ErrMailboxFull when the mailbox is at capacity and ErrWorkerGone
	// once the worker terminated.
	Push(msg any) error
}

// Socket is the reply handle given to handler callbacks. All operations act
// on the connection socket owned by the calling worker; no other goroutine
// may use it.
type Socket interface {
	io.Writer

	// CloseWrite half-closes the connection: further writes fail while the
	// peer can still drain pending reads.
	CloseWrite() error

	// Close releases the connection socket. Idempotent.
	Close() error

	// LocalAddr returns the local address of the connection socket.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer address of the connection socket.
	RemoteAddr() net.Addr
}

// Handler is the minimal contract an application supplies for each server.
// A single Handler value serves every connection of a server; all
// per-connection data must live in the state value returned by Start and
// threaded through subsequent callbacks.
//
// Optional behaviours are added by implementing the capability interfaces
// TimeoutHandler, CloseHandler, ShutdownHandler, ErrorHandler and
// MessageHandler on the same value.
type Handler interface {
	// Start is invoked once per connection, on the worker goroutine, after
	// the transport handshake completed. The opts value is the opaque
	// handler options carried by the server configuration. The returned
	// value is the initial connection state.
	Start(meta Meta, opts any) any

	// HandleData is invoked for each non-empty read on the connection.
	HandleData(data []byte, sck Socket, state any) (Directive, any)
}

// TimeoutHandler is implemented by handlers reacting to read timeouts.
// Without it, a read timeout closes the connection.
type TimeoutHandler interface {
	HandleTimeout(sck Socket, state any) (Directive, any)
}

// CloseHandler is implemented by handlers wanting a notification when the
// connection closes orderly, either by peer close or by a Close directive.
// It is invoked at most once and never on error paths.
type CloseHandler interface {
	HandleClose(sck Socket, state any)
}

// ShutdownHandler is implemented by handlers wanting one opportunity to say
// goodbye while the server drains. It is invoked at most once per connection
// still alive when shutdown begins; the returned directive follows the usual
// contract. Without it, the connection keeps running until it finishes
// naturally or the drain budget expires.
type ShutdownHandler interface {
	HandleShutdown(sck Socket, state any) (Directive, any)
}

// ErrorHandler is implemented by handlers observing abnormal termination:
// handshake failure, transport error, handler panic or an Abort directive.
// It is invoked exactly once for an abnormally terminated connection and
// never for an orderly closed one.
type ErrorHandler interface {
	HandleError(kind ErrorKind, err error, sck Socket, state any)
}

// MessageHandler is implemented by handlers consuming out-of-band messages
// pushed through Meta.Push. Messages are delivered serially, in push order,
// interleaved with reads and never concurrently with another callback. When
// a read result and a message are both pending, which one is delivered
// first is not defined. Without it, pushed messages are dropped.
type MessageHandler interface {
	HandleMessage(msg any, sck Socket, state any) (Directive, any)
}
