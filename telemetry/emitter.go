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

import "sync"

// Hook receives one event. Hooks must not block; a panicking hook is
// recovered and never disturbs the server.
type Hook func(evt Event)

// Emitter fans events out to registered hooks. One emitter belongs to one
// server; there is no process-wide state.
type Emitter interface {
	// Register adds a hook. Safe for concurrent use.
	Register(h Hook)

	// Emit delivers the event to every registered hook, in registration
	// order, fire-and-forget.
	Emit(evt Event)
}

// New returns an empty emitter.
func New() Emitter {
	return &emt{}
}

type emt struct {
	m sync.RWMutex
	h []Hook
}

func (o *emt) Register(h Hook) {
	if h == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	o.h = append(o.h, h)
}

func (o *emt) Emit(evt Event) {
	o.m.RLock()
	lst := make([]Hook, len(o.h))
	copy(lst, o.h)
	o.m.RUnlock()

	for _, h := range lst {
		func() {
			defer func() {
				_ = recover()
			}()
			h(evt)
		}()
	}
}
