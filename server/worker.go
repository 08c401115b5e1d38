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
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	libsck "github.com/sabouaram/socksrv"
	scktlm "github.com/sabouaram/socksrv/telemetry"
	scktpt "github.com/sabouaram/socksrv/transport"
)

type readResult struct {
	data []byte
	err  error
}

// worker runs the handler state machine for exactly one connection. Every
// callback of the connection runs on the worker goroutine: no two
// callbacks ever overlap, and socket reads, pushed messages and the
// shutdown notification are drawn from one serial event loop.
type worker struct {
	id  string
	srv *srv
	con scktpt.Conn

	hdl libsck.Handler
	sta any

	mbx chan any
	sht chan struct{}
	sh1 sync.Once
	kil chan struct{}
	kl1 sync.Once

	opn  time.Time
	gone atomic.Bool
	drn  atomic.Bool
	in   atomic.Int64
	out  atomic.Int64

	clsDone bool // HandleClose already dispatched
	errDone bool // HandleError already dispatched
	emtDone bool // connection.close already emitted
}

func newWorker(id string, s *srv, con scktpt.Conn) *worker {
	return &worker{
		id:  id,
		srv: s,
		con: con,
		hdl: s.hdl,
		mbx: make(chan any, s.cfg.MailboxSize),
		sht: make(chan struct{}),
		kil: make(chan struct{}),
		opn: time.Now(),
	}
}

// signalShutdown queues the drain notification; the handler's
// HandleShutdown runs on the worker goroutine like any other callback.
func (o *worker) signalShutdown() {
	o.sh1.Do(func() {
		close(o.sht)
	})
}

// kill forcibly terminates the worker: the socket closes under it and no
// further callback is guaranteed.
func (o *worker) kill() {
	o.kl1.Do(func() {
		close(o.kil)
		_ = o.con.Close()
	})
}

func (o *worker) run(ctx context.Context) {
	defer func() {
		// the worker never propagates anything upward
		if r := recover(); r != nil {
			o.srv.logger().WithField("conn_id", o.id).Errorf("worker panic: %v", r)
		}

		o.gone.Store(true)
		_ = o.con.Close()
		o.emitClose(scktlm.ReasonForced)
	}()

	if !o.handshake(ctx) {
		return
	}

	var crash error
	if o.sta, crash = o.dispatchStart(); crash != nil {
		o.dispatchError(libsck.KindCrash, crash)
		o.terminate(scktlm.ReasonHandlerError)
		return
	}

	grant := make(chan time.Duration)
	res := make(chan readResult, 1)

	go o.readPump(grant, res)
	defer close(grant)

	var (
		dir  = libsck.Continue()
		pend bool
		sht  = o.sht
	)

	for {
		switch {
		case dir.IsSwitch():
			if h, s := dir.Target(); h != nil {
				o.hdl, o.sta = h, s
			}
			dir = libsck.Continue()
			continue

		case dir.IsClose():
			o.dispatchClose()
			if o.drn.Load() {
				o.terminate(scktlm.ReasonShutdown)
			} else {
				o.terminate(scktlm.ReasonLocalClosed)
			}
			return

		case dir.IsAbort():
			o.dispatchError(libsck.KindApplication, dir.Err())
			o.terminate(scktlm.ReasonHandlerError)
			return
		}

		if !pend {
			select {
			case grant <- o.nextTimeout(dir):
				pend = true
			case <-o.kil:
				o.terminate(scktlm.ReasonForced)
				return
			case <-ctx.Done():
				o.terminate(scktlm.ReasonForced)
				return
			}
		}

		var fin bool

		select {
		case r := <-res:
			pend = false
			if dir, fin = o.handleRead(r); fin {
				return
			}

		case m := <-o.mbx:
			var crash error
			if dir, crash = o.dispatchMessage(m); crash != nil {
				o.dispatchError(libsck.KindCrash, crash)
				o.terminate(scktlm.ReasonHandlerError)
				return
			}

		case <-sht:
			sht = nil
			o.drn.Store(true)

			var crash error
			if dir, crash = o.dispatchShutdown(); crash != nil {
				o.dispatchError(libsck.KindCrash, crash)
				o.terminate(scktlm.ReasonHandlerError)
				return
			}

		case <-o.kil:
			o.terminate(scktlm.ReasonForced)
			return

		case <-ctx.Done():
			o.terminate(scktlm.ReasonForced)
			return
		}
	}
}

// handshake completes the transport handshake within a bounded budget.
func (o *worker) handshake(ctx context.Context) bool {
	var (
		beg = time.Now()
		cnx context.Context
		cnl context.CancelFunc
	)

	cnx, cnl = context.WithTimeout(ctx, handshakeGrace)
	err := o.con.Handshake(cnx)
	cnl()

	if err != nil {
		o.srv.logger().WithError(err).WithField("conn_id", o.id).Debug("handshake failed")
		o.dispatchError(libsck.KindHandshake, err)
		o.terminate(scktlm.ReasonHandshakeError)
		return false
	}

	o.srv.emit(scktlm.Event{
		Name:          scktlm.EvConnectionReady,
		ConnID:        o.id,
		HandshakeTime: time.Since(beg),
	})

	return true
}

// readPump issues one transport read per granted timeout. It owns the only
// blocking Recv; the worker goroutine stays free to serve messages and the
// shutdown notification while a read is pending.
func (o *worker) readPump(grant <-chan time.Duration, res chan<- readResult) {
	for t := range grant {
		d, err := o.con.Recv(0, t)
		res <- readResult{data: d, err: err}

		if err != nil && !scktpt.IsTimeout(err) {
			return
		}
	}
}

// nextTimeout resolves the timeout of the next read: the ContinueFor
// override when present, the configured read timeout otherwise.
func (o *worker) nextTimeout(dir libsck.Directive) time.Duration {
	if t, k := dir.ReadTimeout(); k {
		return t
	}

	return o.srv.readTimeout()
}

// handleRead routes one read result. The returned bool is true when the
// worker terminated.
func (o *worker) handleRead(r readResult) (libsck.Directive, bool) {
	if len(r.data) > 0 {
		o.in.Add(int64(len(r.data)))

		dir, crash := o.dispatchData(r.data)
		if crash != nil {
			o.dispatchError(libsck.KindCrash, crash)
			o.terminate(scktlm.ReasonHandlerError)
			return dir, true
		}

		if r.err == nil || !dir.IsContinue() {
			return dir, false
		}
	}

	if r.err == nil {
		return libsck.Continue(), false
	}

	switch {
	case scktpt.IsTimeout(r.err):
		return o.handleTimeout()

	case scktpt.IsClosed(r.err):
		o.dispatchClose()
		o.terminate(scktlm.ReasonPeerClosed)
		return libsck.Close(), true

	default:
		o.dispatchError(libsck.KindTransport, r.err)
		o.terminate(scktlm.ReasonTransportError)
		return libsck.Close(), true
	}
}

// handleTimeout routes a read timeout to the handler when it cares, and
// closes the connection otherwise.
func (o *worker) handleTimeout() (libsck.Directive, bool) {
	th, k := o.hdl.(libsck.TimeoutHandler)
	if !k {
		o.dispatchClose()
		o.terminate(scktlm.ReasonTimeout)
		return libsck.Close(), true
	}

	var (
		dir   libsck.Directive
		crash error
	)

	crash = o.guard(func() {
		dir, o.sta = th.HandleTimeout(o.sock(), o.sta)
	})

	if crash != nil {
		o.dispatchError(libsck.KindCrash, crash)
		o.terminate(scktlm.ReasonHandlerError)
		return dir, true
	}

	return dir, false
}

// terminate closes the socket and emits the connection.close event exactly
// once.
func (o *worker) terminate(reason string) {
	o.gone.Store(true)
	_ = o.con.Close()
	o.emitClose(reason)
}

func (o *worker) emitClose(reason string) {
	if o.emtDone {
		return
	}
	o.emtDone = true

	o.srv.emit(scktlm.Event{
		Name:     scktlm.EvConnectionClose,
		ConnID:   o.id,
		Duration: time.Since(o.opn),
		BytesIn:  o.in.Load(),
		BytesOut: o.out.Load(),
		Reason:   reason,
	})
}

// guard runs one application callback, converting a panic into an error.
func (o *worker) guard(fn func()) (crash error) {
	defer func() {
		if r := recover(); r != nil {
			crash = fmt.Errorf("handler panic: %v", r)
		}
	}()

	fn()
	return nil
}

func (o *worker) dispatchStart() (any, error) {
	var sta any

	crash := o.guard(func() {
		sta = o.hdl.Start(o.meta(), o.srv.cfg.HandlerOptions)
	})

	return sta, crash
}

func (o *worker) dispatchData(data []byte) (libsck.Directive, error) {
	var dir libsck.Directive

	crash := o.guard(func() {
		dir, o.sta = o.hdl.HandleData(data, o.sock(), o.sta)
	})

	return dir, crash
}

func (o *worker) dispatchMessage(msg any) (libsck.Directive, error) {
	mh, k := o.hdl.(libsck.MessageHandler)
	if !k {
		// no consumer, message dropped
		return libsck.Continue(), nil
	}

	var dir libsck.Directive

	crash := o.guard(func() {
		dir, o.sta = mh.HandleMessage(msg, o.sock(), o.sta)
	})

	return dir, crash
}

func (o *worker) dispatchShutdown() (libsck.Directive, error) {
	sh, k := o.hdl.(libsck.ShutdownHandler)
	if !k {
		// handler has no goodbye to say; keep serving until it finishes
		// naturally or the drain budget expires
		return libsck.Continue(), nil
	}

	var dir libsck.Directive

	crash := o.guard(func() {
		dir, o.sta = sh.HandleShutdown(o.sock(), o.sta)
	})

	return dir, crash
}

// dispatchClose notifies an orderly close, at most once, never on error
// paths.
func (o *worker) dispatchClose() {
	if o.clsDone || o.errDone {
		return
	}
	o.clsDone = true

	ch, k := o.hdl.(libsck.CloseHandler)
	if !k {
		return
	}

	_ = o.guard(func() {
		ch.HandleClose(o.sock(), o.sta)
	})
}

// dispatchError notifies an abnormal termination, exactly once per
// connection.
func (o *worker) dispatchError(kind libsck.ErrorKind, err error) {
	if o.errDone {
		return
	}
	o.errDone = true

	o.srv.logger().WithError(err).WithField("conn_id", o.id).WithField("kind", kind.String()).Debug("connection error")
	o.srv.funcError(err)

	eh, k := o.hdl.(libsck.ErrorHandler)
	if !k {
		return
	}

	_ = o.guard(func() {
		eh.HandleError(kind, err, o.sock(), o.sta)
	})
}

func (o *worker) meta() libsck.Meta {
	return &wMeta{w: o}
}

func (o *worker) sock() libsck.Socket {
	return &wSock{w: o}
}

// wMeta is the connection identity view handed to the handler.
type wMeta struct {
	w *worker
}

func (o *wMeta) ID() string {
	return o.w.id
}

func (o *wMeta) LocalAddr() net.Addr {
	return o.w.con.LocalAddr()
}

func (o *wMeta) RemoteAddr() net.Addr {
	return o.w.con.RemoteAddr()
}

func (o *wMeta) Push(msg any) error {
	if o.w.gone.Load() {
		return libsck.ErrWorkerGone
	}

	select {
	case o.w.mbx <- msg:
		return nil
	default:
		return libsck.ErrMailboxFull
	}
}

// wSock is the reply handle given to handler callbacks.
type wSock struct {
	w *worker
}

func (o *wSock) Write(p []byte) (int, error) {
	n, err := o.w.con.Send(p)

	if n > 0 {
		o.w.out.Add(int64(n))
	}

	return n, err
}

func (o *wSock) CloseWrite() error {
	return o.w.con.CloseWrite()
}

func (o *wSock) Close() error {
	return o.w.con.Close()
}

func (o *wSock) LocalAddr() net.Addr {
	return o.w.con.LocalAddr()
}

func (o *wSock) RemoteAddr() net.Addr {
	return o.w.con.RemoteAddr()
}
