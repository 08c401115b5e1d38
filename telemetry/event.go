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

// Package telemetry carries the lifecycle events of the socket server as
// fire-and-forget notifications: an emitter per server, hooks registered by
// the embedding application, a logrus bridge, and a prometheus collector.
//
// Event names are contractual; payload fields are populated per event as
// documented on the name constants.
package telemetry

import (
	"net"
	"time"
)

// Contractual event names.
const (
	// EvListenerStart fires once per server lifecycle, after the listen
	// socket is bound. Fields: Port, Transport.
	EvListenerStart = "listener.start"

	// EvListenerShutdown fires once per server lifecycle, when the listen
	// socket is closed.
	EvListenerShutdown = "listener.shutdown"

	// EvAcceptorStart fires when an acceptor enters its accept loop.
	// Fields: Transport.
	EvAcceptorStart = "acceptor.start"

	// EvAcceptorError fires on a recoverable accept failure. Fields:
	// Error.
	EvAcceptorError = "acceptor.error"

	// EvConnectionStart fires when an accepted connection is handed to a
	// worker. Fields: ConnID, RemoteAddr, LocalAddr.
	EvConnectionStart = "connection.start"

	// EvConnectionReady fires when the transport handshake completed.
	// Fields: ConnID, HandshakeTime.
	EvConnectionReady = "connection.ready"

	// EvConnectionClose fires when a worker terminates. Fields: ConnID,
	// Duration, BytesIn, BytesOut, Reason.
	EvConnectionClose = "connection.close"
)

// Close reasons carried by EvConnectionClose.
const (
	ReasonPeerClosed     = "peer_closed"
	ReasonLocalClosed    = "local_closed"
	ReasonTimeout        = "timeout"
	ReasonShutdown       = "shutdown"
	ReasonForced         = "forced"
	ReasonHandshakeError = "handshake_error"
	ReasonTransportError = "transport_error"
	ReasonHandlerError   = "handler_error"
)

// Event is one lifecycle notification. Only the fields documented for the
// event name are populated.
type Event struct {
	Name          string
	Port          int
	Transport     string
	ConnID        string
	RemoteAddr    net.Addr
	LocalAddr     net.Addr
	HandshakeTime time.Duration
	Duration      time.Duration
	BytesIn       int64
	BytesOut      int64
	Reason        string
	Error         error
}
