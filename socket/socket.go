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

// Package socket defines the shared vocabulary between the reactor core and
// its protocol-specific server/client wrappers: connection lifecycle states,
// the handler shapes a caller may register, and the minimal Reader/Writer/
// Context surface a handler sees during a dispatch cycle.
package socket

import (
	"context"
	"io"
	"net"
	"strings"
)

// ConnState names a point in a connection's life, reported to a registered
// FuncInfo for logging and monitoring.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

// String renders the connection state for logging.
func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

const (
	// DefaultBufferSize is the read/write scratch buffer size used when a
	// caller does not size its own.
	DefaultBufferSize = 32 * 1024

	// EOL is the line separator byte for line-oriented protocols.
	EOL = '\n'

	// ListenBacklog is the backlog passed to listen() for every registered
	// listener, mirroring the source dispatcher's fixed backlog constant.
	ListenBacklog = 10
)

// ErrorFilter absorbs errors that are an ordinary consequence of shutting a
// connection down rather than a fault worth surfacing to a FuncError
// callback: a closed connection is not a failure to report.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}
	return err
}

// UpdateConn is the shape of a hook that customizes a raw net.Conn right
// after accept/dial (SetNoDelay, SetKeepAlive, buffer sizes and the like).
// The reactor-backed tcp server accepts one and never calls it: its
// connections are raw descriptors, not net.Conn values.
type UpdateConn func(conn net.Conn)

// FuncError receives operational errors that survived ErrorFilter.
type FuncError func(errs ...error)

// FuncInfo receives a connection lifecycle transition.
type FuncInfo func(local, remote net.Addr, state ConnState)

// Reader is the inbound half of a handler's view onto a connection: bytes
// already delivered by the current dispatch event, never a blocking read.
type Reader interface {
	Read(p []byte) (n int, err error)
}

// Writer is the outbound half: Write enqueues to the connection's pending
// send buffer and attempts a non-blocking flush; a short write arms the
// connection for a WRITABLE event to finish flushing later.
type Writer interface {
	Write(p []byte) (n int, err error)
}

// Context is what a HandlerFunc registered with the socket/server/tcp
// wrapper receives for a single connection: addressing, cancellation, and
// non-blocking I/O. The reactor's own handler styles receive a reactor and
// slot id instead.
type Context interface {
	Reader
	Writer

	IsConnected() bool
	LocalHost() string
	RemoteHost() string

	// Close requests termination of the underlying connection. It never
	// blocks: the reactor finishes the event in progress and tears the
	// connection down afterward.
	Close() error

	Done() <-chan struct{}
	Err() error
}

// HandlerFunc is a stateless connection handler.
type HandlerFunc func(ctx Context)

// Handler is a stateful connection handler bound to a receiver, the
// counterpart to HandlerFunc for callers that need to carry dependencies.
type Handler[T any] func(h T, ctx Context)

// Server is implemented by every protocol-specific listener (tcp, unix, ...).
type Server interface {
	RegisterFuncError(f FuncError)
	RegisterFuncInfo(f FuncInfo)

	Listen(ctx context.Context) error
	Shutdown(ctx context.Context) error

	IsRunning() bool
	IsGone() bool
	OpenConnections() int64

	// Done returns a channel closed once Listen has returned, mirroring
	// context.Context's own cancellation-observation idiom.
	Done() <-chan struct{}
}

// Client is implemented by every protocol-specific dialer.
type Client interface {
	RegisterFuncError(f FuncError)

	Connect(ctx context.Context) error
	Close() error
	IsConnected() bool

	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)

	// Once sends request and invokes fct with the response stream; fct may
	// be nil to fire-and-forget.
	Once(ctx context.Context, request []byte, fct func(r io.Reader)) error
}
