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

package tcp

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/tcpreactor/socket"
	"github.com/nabbar/tcpreactor/socket/reactor"
)

// ServerTcp is a socket.Server bound to exactly one listen address, plus a
// Close convenience for callers that never call Shutdown explicitly (tests,
// short-lived tools).
type ServerTcp interface {
	socket.Server
	Close() error
}

// New validates cfg and returns a ServerTcp that is not yet listening.
func New(upd socket.UpdateConn, handler socket.HandlerFunc, cfg Config) (ServerTcp, error) {
	if handler == nil {
		return nil, ErrNoHandler
	}
	if cfg.Address == "" {
		return nil, ErrInvalidAddress
	}
	if !strings.Contains(cfg.Address, ":") {
		return nil, ErrInvalidAddress
	}

	s := &srvTcp{
		cfg:     cfg.clean(),
		upd:     upd,
		handler: handler,
	}
	s.gone.Store(true)
	return s, nil
}

type srvTcp struct {
	mu sync.Mutex

	cfg Config
	// upd is accepted for socket.Server API parity with a net.Conn-based
	// server but has no effect here: the reactor hands handlers a raw
	// non-blocking descriptor, never a net.Conn, so there is nothing to
	// pass it.
	upd     socket.UpdateConn
	handler socket.HandlerFunc

	react *reactor.Reactor
	slot  int

	cancel context.CancelFunc
	done   chan struct{}

	running atomic.Bool
	gone    atomic.Bool
	conns   atomic.Int64

	errFunc socket.FuncError
	infoFunc socket.FuncInfo
}

func (s *srvTcp) RegisterFuncError(f socket.FuncError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errFunc = f
}

func (s *srvTcp) RegisterFuncInfo(f socket.FuncInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoFunc = f
}

func (s *srvTcp) IsRunning() bool {
	return s.running.Load()
}

func (s *srvTcp) IsGone() bool {
	return s.gone.Load()
}

func (s *srvTcp) OpenConnections() int64 {
	return s.conns.Load()
}

func (s *srvTcp) Done() <-chan struct{} {
	s.mu.Lock()
	d := s.done
	s.mu.Unlock()
	if d == nil {
		d = make(chan struct{})
		close(d)
	}
	return d
}

// Listen blocks, dispatching events on the calling goroutine until ctx is
// canceled or Shutdown is called. It returns nil on any ordinary stop.
func (s *srvTcp) Listen(ctx context.Context) error {
	s.mu.Lock()
	if s.running.Load() {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	react, err := reactor.New(reactor.Options{
		BufferSize: s.cfg.BufferSize,
		Log:        s.cfg.Log,
		OnError:    s.forwardError,
		OnInfo:     s.forwardInfo,
	})
	if err != nil {
		s.mu.Unlock()
		return err
	}

	slot, err := react.AddListener(s.cfg.Address, s.cfg.ConIdleTimeout, nil, reactor.Handlers{
		OnReceive: s.onReceive,
		OnEvent:   s.onEvent,
	})
	if err != nil {
		_ = react.Close()
		s.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.react = react
	s.slot = slot
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)
	s.gone.Store(false)
	s.mu.Unlock()

	pollMs := int(s.cfg.PollTimeout / time.Millisecond)
	if pollMs <= 0 {
		pollMs = 1000
	}

	defer func() {
		s.mu.Lock()
		_ = s.react.Close()
		s.running.Store(false)
		s.gone.Store(true)
		s.conns.Store(0)
		close(s.done)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-runCtx.Done():
			return nil
		default:
		}
		if react.Dispatch(pollMs) != 0 {
			return nil
		}
	}
}

// Shutdown cancels the running dispatch loop and waits for it to finish, or
// for ctx to expire first.
func (s *srvTcp) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is Shutdown against a background context, for callers that tear
// down a server unconditionally regardless of whether it ever started.
func (s *srvTcp) Close() error {
	if !s.running.Load() {
		return nil
	}
	return s.Shutdown(context.Background())
}

func (s *srvTcp) onEvent(r *reactor.Reactor, slot int, userData *interface{}, kind reactor.EventKind, payload *reactor.Payload) {
	switch kind {
	case reactor.EventNewConnection:
		s.conns.Add(1)
		s.invoke(r, slot, nil)
	case reactor.EventEndConnection:
		s.conns.Add(-1)
	}
}

func (s *srvTcp) onReceive(r *reactor.Reactor, slot int, userData interface{}, buf []byte) {
	s.invoke(r, slot, buf)
}

func (s *srvTcp) invoke(r *reactor.Reactor, slot int, buf []byte) {
	defer func() {
		// A handler panic must not take down the whole dispatch loop; it
		// is equivalent to that connection requesting a close.
		if rec := recover(); rec != nil {
			r.CloseConnection(slot)
		}
	}()
	s.handler(&sCtx{r: r, slot: slot, buf: buf})
}

func (s *srvTcp) forwardError(errs ...error) {
	s.mu.Lock()
	f := s.errFunc
	s.mu.Unlock()
	if f != nil {
		f(errs...)
	}
}

func (s *srvTcp) forwardInfo(local, remote net.Addr, state socket.ConnState) {
	s.mu.Lock()
	f := s.infoFunc
	s.mu.Unlock()
	if f != nil {
		f(local, remote, state)
	}
}
