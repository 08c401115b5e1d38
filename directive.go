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

package socksrv

import "time"

type directiveOp uint8

const (
	opContinue directiveOp = iota
	opSwitch
	opClose
	opAbort
)

// Directive is the continuation returned by handler callbacks. The zero
// value behaves like Continue().
type Directive struct {
	op  directiveOp
	tmo time.Duration
	nxt Handler
	sta any
	err error
}

// Continue keeps the connection in its receive loop; the next read uses the
// configured read timeout.
func Continue() Directive {
	return Directive{op: opContinue}
}

// ContinueFor keeps the connection in its receive loop and overrides the
// timeout of the next read only; subsequent reads revert to the configured
// read timeout. A non-positive value is ignored.
func ContinueFor(t time.Duration) Directive {
	if t <= 0 {
		return Directive{op: opContinue}
	}
	return Directive{op: opContinue, tmo: t}
}

// Switch hands the connection over to another handler with a fresh state,
// used for protocol upgrades. The new handler's Start is not invoked; its
// other callbacks take over from the next event on.
func Switch(h Handler, state any) Directive {
	return Directive{op: opSwitch, nxt: h, sta: state}
}

// Close performs an orderly close of the connection.
func Close() Directive {
	return Directive{op: opClose}
}

// Abort terminates the connection abnormally. The error is routed to the
// handler's HandleError callback with KindApplication.
func Abort(err error) Directive {
	return Directive{op: opAbort, err: err}
}

// IsContinue reports whether the directive keeps the receive loop running.
func (d Directive) IsContinue() bool {
	return d.op == opContinue
}

// IsSwitch reports whether the directive hands the connection to another
// handler.
func (d Directive) IsSwitch() bool {
	return d.op == opSwitch
}

// IsClose reports whether the directive requests an orderly close.
func (d Directive) IsClose() bool {
	return d.op == opClose
}

// IsAbort reports whether the directive requests abnormal termination.
func (d Directive) IsAbort() bool {
	return d.op == opAbort
}

// ReadTimeout returns the one-shot read timeout override carried by a
// ContinueFor directive. The boolean is false when no override applies.
func (d Directive) ReadTimeout() (time.Duration, bool) {
	if d.op != opContinue || d.tmo == 0 {
		return 0, false
	}
	return d.tmo, true
}

// Target returns the handler and state carried by a Switch directive.
func (d Directive) Target() (Handler, any) {
	return d.nxt, d.sta
}

// Err returns the error carried by an Abort directive.
func (d Directive) Err() error {
	return d.err
}
