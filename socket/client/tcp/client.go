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

// Package tcp implements socket.Client for plain TCP: a single outbound
// connection dialed on demand. Unlike the reactor-backed server side, a
// client has exactly one descriptor and no readiness fan-out to manage, so
// it is a thin wrapper over net.Dial rather than a reactor registration.
package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/nabbar/tcpreactor/socket"
)

var (
	// ErrAddress is returned by New when address is empty or cannot be
	// split into a valid host:port.
	ErrAddress = errors.New("tcp client: invalid address")

	// ErrConnection is returned by Read/Write/Close when called before a
	// successful Connect, or after the connection has already closed.
	ErrConnection = errors.New("tcp client: not connected")

	// ErrInstance reports use of an uninitialized client. No method of this
	// package returns it; a nil *clientTcp receiver is not checked.
	ErrInstance = errors.New("tcp client: instance not initialized")
)

func validateAddress(address string) error {
	if address == "" {
		return ErrAddress
	}
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return ErrAddress
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return ErrAddress
	}
	return nil
}

// New validates address and returns a disconnected client.
func New(address string) (socket.Client, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	return &clientTcp{address: address}, nil
}

type clientTcp struct {
	mu      sync.Mutex
	address string
	conn    net.Conn
	errFunc socket.FuncError
}

func (c *clientTcp) RegisterFuncError(f socket.FuncError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errFunc = f
}

func (c *clientTcp) reportError(err error) {
	if err == nil {
		return
	}
	filtered := socket.ErrorFilter(err)
	if filtered == nil {
		return
	}
	c.mu.Lock()
	f := c.errFunc
	c.mu.Unlock()
	if f != nil {
		f(filtered)
	}
}

// Connect dials address, replacing any existing connection.
func (c *clientTcp) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (c *clientTcp) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears down the active connection. It reports ErrConnection when
// called with nothing connected, matching Read/Write's own guard.
func (c *clientTcp) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return ErrConnection
	}
	return conn.Close()
}

func (c *clientTcp) Read(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.reportError(ErrConnection)
		return 0, ErrConnection
	}

	n, err := conn.Read(p)
	if err != nil {
		c.reportError(err)
	}
	return n, err
}

func (c *clientTcp) Write(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.reportError(ErrConnection)
		return 0, ErrConnection
	}

	n, err := conn.Write(p)
	if err != nil {
		c.reportError(err)
	}
	return n, err
}

// Once dials, writes request, hands the response stream to fct, then
// closes — a convenience for simple request/response protocols that do
// not need a persistent connection.
func (c *clientTcp) Once(ctx context.Context, request []byte, fct func(r io.Reader)) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
	}()

	if len(request) > 0 {
		if _, err := c.Write(request); err != nil {
			return err
		}
	}

	if fct != nil {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		fct(conn)
	}
	return nil
}
