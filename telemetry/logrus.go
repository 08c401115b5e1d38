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

package telemetry

import (
	"github.com/sirupsen/logrus"
)

// LogHook returns a hook logging each event through the lazily-resolved
// logger. Events carrying an error log at warning level, everything else at
// debug level. A nil accessor or logger drops the events.
func LogHook(fl func() logrus.FieldLogger) Hook {
	return func(evt Event) {
		if fl == nil {
			return
		}

		log := fl()
		if log == nil {
			return
		}

		ent := log.WithField("event", evt.Name)

		if evt.Port > 0 {
			ent = ent.WithField("port", evt.Port)
		}

		if evt.Transport != "" {
			ent = ent.WithField("transport", evt.Transport)
		}

		if evt.ConnID != "" {
			ent = ent.WithField("conn_id", evt.ConnID)
		}

		if evt.RemoteAddr != nil {
			ent = ent.WithField("remote_address", evt.RemoteAddr.String())
		}

		if evt.LocalAddr != nil {
			ent = ent.WithField("local_address", evt.LocalAddr.String())
		}

		if evt.HandshakeTime > 0 {
			ent = ent.WithField("handshake_time", evt.HandshakeTime.String())
		}

		if evt.Name == EvConnectionClose {
			ent = ent.WithField("duration", evt.Duration.String())
			ent = ent.WithField("bytes_in", evt.BytesIn)
			ent = ent.WithField("bytes_out", evt.BytesOut)
			ent = ent.WithField("reason", evt.Reason)
		}

		if evt.Error != nil {
			ent.WithError(evt.Error).Warning("socket server event")
			return
		}

		ent.Debug("socket server event")
	}
}
