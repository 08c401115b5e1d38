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

package transport

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// ErrHandshake wraps any transport handshake failure so callers can route
// it without inspecting TLS alert internals.
var ErrHandshake = errors.New("transport handshake failed")

// IsClosed reports whether err signals an orderly closed socket: the listen
// socket was closed under a pending Accept, or the peer closed the
// connection.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe)
}

// IsTimeout reports whether err is a read or write deadline expiry.
func IsTimeout(err error) bool {
	var nErr net.Error
	if errors.As(err, &nErr) {
		return nErr.Timeout()
	}
	return false
}

// IsTransient reports whether an Accept failure is recoverable by retry,
// typically resource exhaustion or a connection aborted before accept
// completed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	for _, e := range []error{
		syscall.ECONNABORTED,
		syscall.EMFILE,
		syscall.ENFILE,
		syscall.ENOBUFS,
		syscall.ENOMEM,
		syscall.EINTR,
	} {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// IsHandshake reports whether err is a transport handshake failure.
func IsHandshake(err error) bool {
	return errors.Is(err, ErrHandshake)
}
