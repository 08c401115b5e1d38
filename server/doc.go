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

// Package server implements the socket server core: one listener owning the
// listen socket, a fixed pool of acceptor groups accepting concurrently on
// it, and one worker per accepted connection running the handler state
// machine.
//
// Lifecycle: New validates the configuration and builds the transport;
// Start binds the listen socket (bind failures surface synchronously) and
// serves in the background; Listen does the same but blocks until the
// server is gone. Shutdown drains: the listen socket closes first so no new
// connection is accepted, live workers get one HandleShutdown opportunity,
// and whatever outlives the drain budget is forcibly closed.
//
// Acceptor crashes are contained by their group and restarted within a
// bounded intensity; exceeding it escalates and stops the whole server.
// Worker failures never propagate: connections are disposable.
package server
