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

package cleartext

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// defaultReadBuffer bounds a Recv with max set to 0.
const defaultReadBuffer = 32 * 1024

type cnn struct {
	one sync.Once
	con net.Conn
}

func (o *cnn) Handshake(ctx context.Context) error {
	return nil
}

func (o *cnn) Recv(max int, timeout time.Duration) ([]byte, error) {
	var siz = max

	if siz < 1 {
		siz = defaultReadBuffer
	}

	if timeout > 0 {
		if err := o.con.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	} else if err := o.con.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}

	buf := make([]byte, siz)
	n, err := o.con.Read(buf)

	if n > 0 {
		return buf[:n], err
	}

	return nil, err
}

func (o *cnn) Send(p []byte) (int, error) {
	return o.con.Write(p)
}

func (o *cnn) CloseWrite() error {
	if c, k := o.con.(*net.TCPConn); k {
		return c.CloseWrite()
	}

	if c, k := o.con.(interface{ CloseWrite() error }); k {
		return c.CloseWrite()
	}

	return fmt.Errorf("connection does not support write half-close")
}

func (o *cnn) Close() error {
	var err error

	o.one.Do(func() {
		err = o.con.Close()
	})

	return err
}

func (o *cnn) LocalAddr() net.Addr {
	return o.con.LocalAddr()
}

func (o *cnn) RemoteAddr() net.Addr {
	return o.con.RemoteAddr()
}
