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
	"time"

	libsck "github.com/sabouaram/socksrv"
	sckcfg "github.com/sabouaram/socksrv/config"
	scktlm "github.com/sabouaram/socksrv/telemetry"
	scktpt "github.com/sabouaram/socksrv/transport"
	sckclr "github.com/sabouaram/socksrv/transport/cleartext"
	scksec "github.com/sabouaram/socksrv/transport/secure"
)

// Info describes the running listener, for tests and service discovery
// when the configured port is 0.
type Info struct {
	// Port is the actual bound port.
	Port int

	// Transport is the transport kind in use.
	Transport scktpt.Kind

	// Address is the actual bound address.
	Address net.Addr
}

// Server is one socket server instance. Multiple instances may coexist in
// one process, each on its own port, with no shared state.
type Server interface {
	// Start binds the listen socket and serves in the background. Bind
	// refusal surfaces synchronously wrapping ErrBind.
	Start(ctx context.Context) error

	// Listen behaves like Start then blocks until the server is gone.
	Listen(ctx context.Context) error

	// Shutdown drains the server: the listen socket closes first, live
	// workers get one HandleShutdown opportunity, and workers outliving
	// the drain budget are forcibly closed. The budget is the context
	// deadline when one is set, the configured shutdown timeout
	// otherwise.
	Shutdown(ctx context.Context) error

	// Close is Shutdown with the configured drain budget.
	Close() error

	// StopListen closes the listen socket without touching established
	// connections; the server becomes gone once they all finish.
	StopListen(ctx context.Context) error

	// Done returns a channel closed once the server is gone.
	Done() <-chan struct{}

	// IsRunning reports whether the listen socket is accepting.
	IsRunning() bool

	// IsGone reports whether the server has no live listener nor worker.
	IsGone() bool

	// OpenConnections returns the count of live connection workers.
	OpenConnections() int64

	// Info returns the listener description. The zero Info is returned
	// before Start and once the server is gone.
	Info() Info

	// Telemetry returns the server's event emitter, to register hooks.
	Telemetry() scktlm.Emitter

	// RegisterFuncError sets the callback receiving internal recovered
	// errors. A nil callback unregisters.
	RegisterFuncError(f libsck.FuncError)

	// RegisterLogger sets the lazily-resolved logger accessor.
	RegisterLogger(f libsck.FuncLog)
}

// Option customizes a server at construction time.
type Option func(o *srv) error

// WithTransport substitutes a custom transport for the one derived from
// the configuration.
func WithTransport(t scktpt.Transport) Option {
	return func(o *srv) error {
		if t == nil {
			return fmt.Errorf("%w: nil transport", ErrInvalidConfig)
		}
		o.tpt = t
		return nil
	}
}

// WithUpdateConn applies f to every accepted raw connection before the
// handshake, for socket tuning.
func WithUpdateConn(f sckclr.UpdateConn) Option {
	return func(o *srv) error {
		o.upd = f
		return nil
	}
}

// WithLogger sets the logger accessor at construction time.
func WithLogger(f libsck.FuncLog) Option {
	return func(o *srv) error {
		o.log.Store(f)
		return nil
	}
}

// WithTelemetryHook registers telemetry hooks at construction time.
func WithTelemetryHook(h ...scktlm.Hook) Option {
	return func(o *srv) error {
		for _, f := range h {
			o.tlm.Register(f)
		}
		return nil
	}
}

// WithCollector feeds the given prometheus collector from the server's
// telemetry. Registering the collector's metrics stays with the caller.
func WithCollector(c *scktlm.Collector) Option {
	return func(o *srv) error {
		if c == nil {
			return fmt.Errorf("%w: nil collector", ErrInvalidConfig)
		}
		o.tlm.Register(c.Hook())
		return nil
	}
}

// New builds a server from the given configuration and handler. The
// configuration is normalized (zero values replaced by defaults) then
// validated; TLS material is loaded here so a misconfiguration fails before
// any socket is bound.
func New(cfg sckcfg.Server, hdl libsck.Handler, opt ...Option) (Server, error) {
	if hdl == nil {
		return nil, ErrInvalidHandler
	}

	cfg = cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	o := &srv{
		cfg: cfg,
		hdl: hdl,
		tlm: scktlm.New(),
	}
	o.gon.Store(true)

	for _, f := range opt {
		if err := f(o); err != nil {
			return nil, err
		}
	}

	if o.tpt == nil {
		switch cfg.Transport {
		case scktpt.KindTLS:
			t, err := cfg.TLS.TLSConfig()
			if err != nil {
				return nil, err
			}
			o.tpt = scksec.New(t, o.upd)
		default:
			o.tpt = sckclr.New(o.upd)
		}
	}

	o.tlm.Register(scktlm.LogHook(o.logger))

	return o, nil
}

// lifecycle tuning
const (
	acceptBackoff  = 10 * time.Millisecond
	restartWindow  = 10 * time.Second
	maxRestarts    = 5
	handshakeGrace = 10 * time.Second
)

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()
