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

// ErrorKind classifies the abnormal termination routed to HandleError.
type ErrorKind uint8

const (
	// KindUnknown is an unclassified failure.
	KindUnknown ErrorKind = iota

	// KindHandshake is a transport handshake failure (TLS alert, bad
	// certificate, unsupported cipher).
	KindHandshake

	// KindTransport is a mid-connection read or write failure.
	KindTransport

	// KindCrash is a panic recovered from an application callback.
	KindCrash

	// KindApplication is an abnormal termination requested by the handler
	// through an Abort directive.
	KindApplication
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindTransport:
		return "transport"
	case KindCrash:
		return "crash"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}
