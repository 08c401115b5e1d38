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

// Package config defines the server configuration record, its defaults and
// validation, the TLS options model, and viper binding helpers.
package config

import (
	"net"
	"strconv"
	"time"

	libval "github.com/go-playground/validator/v10"

	libdur "github.com/sabouaram/socksrv/duration"
	scktpt "github.com/sabouaram/socksrv/transport"
)

const (
	// DefaultPort is the port set by Default. A zero Port is not replaced
	// by it: 0 binds an ephemeral port.
	DefaultPort = 4000

	// DefaultNumAcceptors is the acceptor group count applied when the
	// configured value is zero.
	DefaultNumAcceptors = 10

	// DefaultReadTimeout is the per-read timeout applied when the
	// configured value is zero.
	DefaultReadTimeout = libdur.Duration(60 * time.Second)

	// DefaultShutdownTimeout is the drain budget applied when the
	// configured value is zero.
	DefaultShutdownTimeout = libdur.Duration(15 * time.Second)

	// DefaultMailboxSize is the per-worker mailbox capacity applied when
	// the configured value is zero.
	DefaultMailboxSize = 64
)

// Server is the immutable configuration of one server instance.
//
// A zero Port is a valid configuration and binds an ephemeral port; use
// Default to start from the documented defaults instead. Zero values for
// NumAcceptors, ReadTimeout, ShutdownTimeout and MailboxSize mean "use the
// default".
type Server struct {
	// Bind is the local address to bind, empty meaning all interfaces.
	Bind string `mapstructure:"bind" json:"bind" yaml:"bind"`

	// Port is the TCP port to bind; 0 binds an ephemeral port.
	Port int `mapstructure:"port" json:"port" yaml:"port" validate:"gte=0,lte=65535"`

	// Transport selects the transport kind, cleartext or tls.
	Transport scktpt.Kind `mapstructure:"transport" json:"transport" yaml:"transport"`

	// TLS configures the tls transport; ignored for cleartext.
	TLS TLSOptions `mapstructure:"tls" json:"tls" yaml:"tls"`

	// NumAcceptors is the count of acceptor groups; 0 means default.
	NumAcceptors int `mapstructure:"num_acceptors" json:"num_acceptors" yaml:"num_acceptors" validate:"gte=0,lte=1024"`

	// ReadTimeout is the default per-read timeout; 0 means default.
	ReadTimeout libdur.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`

	// ShutdownTimeout is the drain budget; 0 means default.
	ShutdownTimeout libdur.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// MailboxSize is the per-worker mailbox capacity; 0 means default.
	MailboxSize int `mapstructure:"mailbox_size" json:"mailbox_size" yaml:"mailbox_size" validate:"gte=0"`

	// HandlerOptions is the opaque value passed to each handler's Start.
	// Never serialized.
	HandlerOptions any `mapstructure:"-" json:"-" yaml:"-"`
}

// Default returns a configuration populated with the documented defaults,
// cleartext on port 4000.
func Default() Server {
	return Server{
		Port:            DefaultPort,
		Transport:       scktpt.KindCleartext,
		NumAcceptors:    DefaultNumAcceptors,
		ReadTimeout:     DefaultReadTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MailboxSize:     DefaultMailboxSize,
	}
}

// Addr composes the listen address from Bind and Port.
func (o Server) Addr() string {
	return net.JoinHostPort(o.Bind, strconv.Itoa(o.Port))
}

// Normalize returns a copy with zero values replaced by the documented
// defaults. Port is left untouched: 0 keeps meaning ephemeral.
func (o Server) Normalize() Server {
	if o.Transport == scktpt.KindUnknown {
		o.Transport = scktpt.KindCleartext
	}

	if o.NumAcceptors < 1 {
		o.NumAcceptors = DefaultNumAcceptors
	}

	if o.ReadTimeout < 1 {
		o.ReadTimeout = DefaultReadTimeout
	}

	if o.ShutdownTimeout < 1 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}

	if o.MailboxSize < 1 {
		o.MailboxSize = DefaultMailboxSize
	}

	return o
}

// Validate checks the configuration. Transport kind must be known or left
// at its zero value (which Normalize turns into cleartext), the TLS
// material must be loadable when the tls transport is selected, and the
// numeric fields must be in range.
func (o Server) Validate() error {
	if !o.Transport.IsValid() && o.Transport != scktpt.KindUnknown {
		return ErrInvalidTransport
	}

	if err := libval.New().Struct(o); err != nil {
		return err
	}

	if o.Transport == scktpt.KindTLS {
		if !o.TLS.Enabled {
			return ErrInvalidTLSConfig
		}

		if _, err := o.TLS.TLSConfig(); err != nil {
			return err
		}
	}

	return nil
}
