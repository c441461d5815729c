/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package tcp wraps the reactor into the socket.Server contract: a single
// TCP listener, one handler invoked per readable event, and a Listen/
// Shutdown lifecycle a caller drives from its own goroutine.
package tcp

import (
	"errors"
	"time"

	"github.com/nabbar/tcpreactor/logger"
	"github.com/nabbar/tcpreactor/socket"
)

var (
	// ErrInvalidAddress is returned by New when Config.Address is empty or
	// cannot be split into host/port.
	ErrInvalidAddress = errors.New("tcp: invalid listen address")

	// ErrNoHandler is returned by New when handler is nil.
	ErrNoHandler = errors.New("tcp: handler must not be nil")

	// ErrAlreadyRunning is returned by Listen when the server is already
	// dispatching on another goroutine.
	ErrAlreadyRunning = errors.New("tcp: server is already running")
)

// Config configures a ServerTcp.
type Config struct {
	// Address is the "host:port" the listener binds, e.g. ":7000".
	Address string

	// BufferSize sizes the reactor's per-read scratch buffer. Defaults to
	// socket.DefaultBufferSize.
	BufferSize int

	// PollTimeout bounds how long a single dispatch cycle may block
	// waiting for readiness before re-checking for shutdown. Defaults to
	// one second.
	PollTimeout time.Duration

	// ConIdleTimeout closes a connection that neither reads nor writes
	// for this long. Zero disables the inactivity wheel.
	ConIdleTimeout time.Duration

	// Log receives the reactor's operational logging. Nil disables it.
	Log logger.Logger
}

func (c Config) clean() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = socket.DefaultBufferSize
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}
	return c
}
