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

package server

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	libsck "github.com/sabouaram/socksrv"
	sckcfg "github.com/sabouaram/socksrv/config"
	scktlm "github.com/sabouaram/socksrv/telemetry"
	scktpt "github.com/sabouaram/socksrv/transport"
	sckclr "github.com/sabouaram/socksrv/transport/cleartext"
)

var discardLog = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

type srv struct {
	cfg sckcfg.Server
	hdl libsck.Handler
	tpt scktpt.Transport
	upd sckclr.UpdateConn
	tlm scktlm.Emitter

	log atomic.Value // libsck.FuncLog
	fer atomic.Value // libsck.FuncError

	m   sync.Mutex
	lis scktpt.Listener
	pol *pool
	dne chan struct{}
	cnl func()
	stl *sync.Once // stop listening, once per run
	fin *sync.Once // finish, once per run

	run atomic.Bool
	gon atomic.Bool
}

func (o *srv) logger() logrus.FieldLogger {
	if i := o.log.Load(); i != nil {
		if f, k := i.(libsck.FuncLog); k && f != nil {
			if l := f(); l != nil {
				return l
			}
		}
	}

	return discardLog
}

func (o *srv) funcError(err ...error) {
	if i := o.fer.Load(); i != nil {
		if f, k := i.(libsck.FuncError); k && f != nil {
			f(err...)
		}
	}
}

func (o *srv) emit(evt scktlm.Event) {
	o.tlm.Emit(evt)
}

func (o *srv) readTimeout() time.Duration {
	return o.cfg.ReadTimeout.Time()
}

func (o *srv) Telemetry() scktlm.Emitter {
	return o.tlm
}

func (o *srv) RegisterFuncError(f libsck.FuncError) {
	o.fer.Store(f)
}

func (o *srv) RegisterLogger(f libsck.FuncLog) {
	o.log.Store(f)
}

func (o *srv) IsRunning() bool {
	return o.run.Load()
}

func (o *srv) IsGone() bool {
	return o.gon.Load()
}

func (o *srv) OpenConnections() int64 {
	o.m.Lock()
	p := o.pol
	o.m.Unlock()

	if p == nil {
		return 0
	}

	return p.open()
}

func (o *srv) Done() <-chan struct{} {
	o.m.Lock()
	defer o.m.Unlock()

	if o.dne == nil {
		return closedChan
	}

	return o.dne
}

func (o *srv) Info() Info {
	o.m.Lock()
	l := o.lis
	o.m.Unlock()

	if l == nil {
		return Info{}
	}

	res := Info{
		Transport: o.tpt.Kind(),
		Address:   l.Addr(),
	}

	if a, k := l.Addr().(*net.TCPAddr); k {
		res.Port = a.Port
	}

	return res
}
