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

// Package secure implements the TLS transport. Accept returns the raw TLS
// connection without handshaking; the handshake runs in the connection
// worker so a slow or hostile client never blocks an acceptor.
package secure

import (
	"crypto/tls"

	"github.com/sabouaram/socksrv/transport"
	sckclr "github.com/sabouaram/socksrv/transport/cleartext"
)

// New returns a TLS transport using the given TLS configuration. The upd
// function, when not nil, is applied to the raw TCP connection before the
// TLS layer wraps it.
func New(cfg *tls.Config, upd sckclr.UpdateConn) transport.Transport {
	return &tpt{
		cfg: cfg,
		upd: upd,
	}
}
