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
	"sync"
	"time"

	libuid "github.com/hashicorp/go-uuid"

	scktlm "github.com/sabouaram/socksrv/telemetry"
	scktpt "github.com/sabouaram/socksrv/transport"
)

// group supervises one acceptor and the set of workers it spawned. A
// worker belongs to exactly one group's set until it terminates; the
// acceptor itself keeps no connection state between iterations.
type group struct {
	id  int
	srv *srv

	m   sync.RWMutex
	cns map[string]*worker
	wkg sync.WaitGroup
}

func newGroup(s *srv, id int) *group {
	return &group{
		id:  id,
		srv: s,
		cns: make(map[string]*worker),
	}
}

// run loops the acceptor, restarting it after a crash within a bounded
// intensity. Exceeding the intensity returns the escalation error that
// stops the whole server. Workers crashing never restart: connections are
// disposable.
func (o *group) run(ctx context.Context, lis scktpt.Listener) error {
	var hst []time.Time

	for {
		err := o.accept(ctx, lis)
		if err == nil {
			return nil
		}

		o.srv.logger().WithError(err).WithField("acceptor", o.id).Error("acceptor crashed, restarting")
		o.srv.funcError(err)

		now := time.Now()
		kpt := hst[:0]
		for _, t := range hst {
			if now.Sub(t) < restartWindow {
				kpt = append(kpt, t)
			}
		}
		hst = append(kpt, now)

		if len(hst) > maxRestarts {
			return fmt.Errorf("%w: acceptor %d: %v", ErrAcceptorFailure, o.id, err)
		}
	}
}

// accept is the acceptor task: block on the shared listen socket, spawn a
// worker per connection, retry transient failures after a small backoff.
// It returns nil when the listen socket is closed, and an error only when
// it panicked.
func (o *group) accept(ctx context.Context, lis scktpt.Listener) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("acceptor panic: %v", r)
		}
	}()

	o.srv.emit(scktlm.Event{
		Name:      scktlm.EvAcceptorStart,
		Transport: o.srv.tpt.Kind().String(),
	})

	for {
		con, aer := lis.Accept()

		if aer != nil {
			if ctx.Err() != nil || scktpt.IsClosed(aer) {
				return nil
			}

			o.srv.emit(scktlm.Event{
				Name:  scktlm.EvAcceptorError,
				Error: aer,
			})
			o.srv.funcError(aer)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(acceptBackoff):
			}

			continue
		}

		o.spawn(ctx, con)
	}
}

func (o *group) spawn(ctx context.Context, con scktpt.Conn) {
	uid, err := libuid.GenerateUUID()
	if err != nil {
		uid = fmt.Sprintf("%d-%d", o.id, time.Now().UnixNano())
	}

	w := newWorker(uid, o.srv, con)

	o.m.Lock()
	o.cns[uid] = w
	o.m.Unlock()

	o.srv.emit(scktlm.Event{
		Name:       scktlm.EvConnectionStart,
		ConnID:     uid,
		RemoteAddr: con.RemoteAddr(),
		LocalAddr:  con.LocalAddr(),
	})

	o.wkg.Add(1)

	go func() {
		defer func() {
			o.m.Lock()
			delete(o.cns, uid)
			o.m.Unlock()
			o.wkg.Done()
		}()

		w.run(ctx)
	}()
}

func (o *group) open() int64 {
	o.m.RLock()
	defer o.m.RUnlock()

	return int64(len(o.cns))
}

func (o *group) drain() {
	o.m.RLock()
	defer o.m.RUnlock()

	for _, w := range o.cns {
		w.signalShutdown()
	}
}

func (o *group) kill() {
	o.m.RLock()
	defer o.m.RUnlock()

	for _, w := range o.cns {
		w.kill()
	}
}
