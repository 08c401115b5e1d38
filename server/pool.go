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

	"golang.org/x/sync/errgroup"

	scktpt "github.com/sabouaram/socksrv/transport"
)

// pool is the fixed-size container of acceptor groups, created at startup.
// Cardinality never changes while the server runs.
type pool struct {
	srv *srv
	grp []*group
}

func newPool(s *srv, n int) *pool {
	p := &pool{
		srv: s,
		grp: make([]*group, 0, n),
	}

	for i := 0; i < n; i++ {
		p.grp = append(p.grp, newGroup(s, i))
	}

	return p
}

// serve runs every acceptor group against the shared listen socket and
// blocks until they all return. The first escalation error is returned.
// Workers run on ctx itself, so the acceptors returning after the listen
// socket closed leaves live connections untouched.
func (o *pool) serve(ctx context.Context, lis scktpt.Listener) error {
	var eg errgroup.Group

	for _, g := range o.grp {
		g := g
		eg.Go(func() error {
			return g.run(ctx, lis)
		})
	}

	return eg.Wait()
}

func (o *pool) open() int64 {
	var n int64

	for _, g := range o.grp {
		n += g.open()
	}

	return n
}

// drain delivers the shutdown notification to every live worker.
func (o *pool) drain() {
	for _, g := range o.grp {
		g.drain()
	}
}

// kill forcibly closes every remaining worker.
func (o *pool) kill() {
	for _, g := range o.grp {
		g.kill()
	}
}

// waitWorkers blocks until every worker finished or the context expires.
func (o *pool) waitWorkers(ctx context.Context) error {
	dne := make(chan struct{})

	go func() {
		for _, g := range o.grp {
			g.wkg.Wait()
		}
		close(dne)
	}()

	select {
	case <-dne:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitAll blocks until every worker finished, without budget.
func (o *pool) waitAll() {
	for _, g := range o.grp {
		g.wkg.Wait()
	}
}
