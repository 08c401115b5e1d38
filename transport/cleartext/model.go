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
	"net"

	scktpt "github.com/sabouaram/socksrv/transport"
)

type tpt struct {
	upd UpdateConn
}

func (o *tpt) Kind() scktpt.Kind {
	return scktpt.KindCleartext
}

func (o *tpt) Listen(ctx context.Context, addr string) (scktpt.Listener, error) {
	var lc net.ListenConfig

	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return &lis{
		lst: l,
		upd: o.upd,
	}, nil
}

type lis struct {
	lst net.Listener
	upd UpdateConn
}

func (o *lis) Accept() (scktpt.Conn, error) {
	c, err := o.lst.Accept()
	if err != nil {
		return nil, err
	}

	if o.upd != nil {
		o.upd(c)
	}

	return &cnn{con: c}, nil
}

func (o *lis) Addr() net.Addr {
	return o.lst.Addr()
}

func (o *lis) Close() error {
	return o.lst.Close()
}
