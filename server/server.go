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

	scktlm "github.com/sabouaram/socksrv/telemetry"
	scktpt "github.com/sabouaram/socksrv/transport"
)

func (o *srv) Start(ctx context.Context) error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.run.Load() {
		return ErrRunning
	}

	lis, err := o.tpt.Listen(ctx, o.cfg.Addr())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBind, err)
	}

	// the serving context outlives ctx: cancelling ctx drains through
	// watchShutdown instead of terminating workers at once
	var cnx context.Context
	cnx, o.cnl = context.WithCancel(context.WithoutCancel(ctx))

	o.lis = lis
	o.dne = make(chan struct{})
	o.stl = new(sync.Once)
	o.fin = new(sync.Once)
	o.pol = newPool(o, o.cfg.NumAcceptors)

	o.run.Store(true)
	o.gon.Store(false)

	var prt int
	if a, k := lis.Addr().(*net.TCPAddr); k {
		prt = a.Port
	}

	o.emit(scktlm.Event{
		Name:      scktlm.EvListenerStart,
		Port:      prt,
		Transport: o.tpt.Kind().String(),
	})

	o.logger().WithField("address", lis.Addr().String()).Info("server is listening")

	go o.serve(cnx, lis)
	go o.watchShutdown(ctx)

	return nil
}

func (o *srv) Listen(ctx context.Context) error {
	if err := o.Start(ctx); err != nil {
		return err
	}

	<-o.Done()
	return nil
}

// serve runs the acceptor pool and handles escalation: a group exceeding
// its restart intensity stops the whole server.
func (o *srv) serve(ctx context.Context, lis scktpt.Listener) {
	err := o.pol.serve(ctx, lis)

	if err != nil && ctx.Err() == nil {
		o.logger().WithError(err).Error("acceptor pool failed, stopping server")
		o.funcError(err)

		go func() {
			_ = o.Shutdown(context.Background())
		}()
	}
}

// watchShutdown is the shutdown listener: external context cancellation
// triggers the same drain as an explicit Shutdown call.
func (o *srv) watchShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = o.Shutdown(context.Background())
	case <-o.Done():
	}
}

func (o *srv) Shutdown(ctx context.Context) error {
	o.m.Lock()
	p, d := o.pol, o.dne
	o.m.Unlock()

	if p == nil || d == nil {
		// never started
		return nil
	}

	select {
	case <-d:
		// already gone
		return nil
	default:
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var cnl context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cnl = context.WithTimeout(ctx, o.cfg.ShutdownTimeout.Time())
	}
	if cnl != nil {
		defer cnl()
	}

	o.stopListen()
	p.drain()

	if err := p.waitWorkers(ctx); err != nil {
		o.logger().WithField("timeout", o.cfg.ShutdownTimeout.String()).Warning("drain budget expired, closing remaining connections")
		p.kill()
	}

	o.finish(p)
	return nil
}

func (o *srv) Close() error {
	return o.Shutdown(context.Background())
}

func (o *srv) StopListen(ctx context.Context) error {
	o.m.Lock()
	p, d := o.pol, o.dne
	o.m.Unlock()

	if p == nil || d == nil {
		return nil
	}

	o.stopListen()

	go func() {
		p.waitAll()
		o.finish(p)
	}()

	return nil
}

// stopListen closes the listen socket, unblocking every acceptor, and
// marks the server as no longer accepting. Safe to call more than once per
// run.
func (o *srv) stopListen() {
	o.m.Lock()
	s, l := o.stl, o.lis
	o.m.Unlock()

	if s == nil {
		return
	}

	s.Do(func() {
		if l != nil {
			_ = l.Close()
		}

		o.run.Store(false)
		o.emit(scktlm.Event{Name: scktlm.EvListenerShutdown})
		o.logger().Info("server stopped listening")
	})
}

// finish marks the server gone once per run: cancels the serving context,
// waits for the pool and releases Done.
func (o *srv) finish(p *pool) {
	o.m.Lock()
	f, c, d := o.fin, o.cnl, o.dne
	o.m.Unlock()

	if f == nil {
		return
	}

	f.Do(func() {
		if c != nil {
			c()
		}

		p.waitAll()

		o.m.Lock()
		o.lis = nil
		o.m.Unlock()

		o.gon.Store(true)
		o.logger().Info("server is gone")

		if d != nil {
			close(d)
		}
	})
}
