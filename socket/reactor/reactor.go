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

//go:build linux

// Package reactor implements the single-threaded event dispatcher: it owns
// every listening and connected descriptor, demultiplexes their readiness
// through epoll, and drives three independent timer wheels (inactivity,
// sleep, receive). Every exported method except Dispatch itself is meant to
// be called either before the dispatch loop starts or synchronously from
// within a handler callback; the type carries no internal locking for its
// hot-path state because the model is cooperative, not concurrent.
package reactor

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/tcpreactor/errors"
	"github.com/nabbar/tcpreactor/logger"
	"github.com/nabbar/tcpreactor/metrics"
	"github.com/nabbar/tcpreactor/socket"
	"github.com/nabbar/tcpreactor/socket/tick"
	"github.com/nabbar/tcpreactor/socket/timer"
)

// Options configures a new Reactor.
type Options struct {
	// BufferSize sizes the scratch buffer a readable event reads into
	// before handing bytes to a handler. Defaults to socket.DefaultBufferSize.
	BufferSize int

	// MaxEvents bounds how many ready descriptors a single epoll_wait call
	// may return. Defaults to 256.
	MaxEvents int

	Log      logger.Logger
	OnError  socket.FuncError
	OnInfo   socket.FuncInfo

	// Metrics, if non-nil, receives accept/active/timer/dispatch-latency
	// observations on every cycle. Nil disables metrics entirely — the
	// reactor never requires a prometheus registry to function.
	Metrics *metrics.Registry
}

// Reactor is the event-dispatch engine: component E. It owns two
// parallel, equal-length, dense vectors — here unified into one []*conn
// slice tagged by kind, since Go slices of pointers already give O(1)
// index access without the separate-array split the original C source
// needed for cache layout.
type Reactor struct {
	poll *poller

	slots   []*conn
	fdIndex map[int]int
	svcs    []*service

	wheelInactivity *timer.Wheel
	wheelSleep      *timer.Wheel
	wheelReceive    *timer.Wheel

	bufferSize int

	log     logger.Logger
	onError socket.FuncError
	onInfo  socket.FuncInfo
	metrics *metrics.Registry

	closed bool
	failed bool
}

// New creates a reactor with empty tables and every timer wheel anchored at
// the current tick.
func New(opts Options) (*Reactor, error) {
	maxEvents := opts.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 256
	}

	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = socket.DefaultBufferSize
	}

	p, err := newPoller(maxEvents)
	if err != nil {
		return nil, err
	}

	now := tick.Now()

	return &Reactor{
		poll:            p,
		fdIndex:         make(map[int]int),
		wheelInactivity: timer.NewWheel(now),
		wheelSleep:      timer.NewWheel(now),
		wheelReceive:    timer.NewWheel(now),
		bufferSize:      bufSize,
		log:             opts.Log,
		onError:         opts.OnError,
		onInfo:          opts.OnInfo,
		metrics:         opts.Metrics,
	}, nil
}

func validateAddress(address string) error {
	_, portStr, err := splitHostPortLoose(address)
	if err != nil {
		return liberr.New(uint16(liberr.CodeConfiguration), fmt.Sprintf("parsing address %q", address), err)
	}
	if portStr == "" {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return liberr.New(uint16(liberr.CodeConfiguration), fmt.Sprintf("parsing port in %q", address), err)
	}
	if port < 0 || port > 65535 {
		return liberr.New(uint16(liberr.CodeConfiguration), fmt.Sprintf("port %d out of range [0, 65535]", port), nil)
	}
	return nil
}

// splitHostPortLoose tolerates the ":0" / ":" forms net.SplitHostPort
// already accepts, surfacing only genuine parse failures.
func splitHostPortLoose(address string) (host, port string, err error) {
	idx := strings.LastIndex(address, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("address %q has no port", address)
	}
	return address[:idx], address[idx+1:], nil
}

// AddListener registers a three-callback style service (component D) on
// address, with connections defaulting to inactivityTimeout (0 disables the
// inactivity wheel for this service's connections).
func (r *Reactor) AddListener(address string, inactivityTimeout time.Duration, serviceData interface{}, handlers Handlers) (int, error) {
	if err := validateAddress(address); err != nil {
		return -1, err
	}

	fd, hostAddr, hostPort, err := resolveAndBind(address)
	if err != nil {
		return -1, err
	}

	svc := &service{
		fd:                fd,
		hostAddr:          hostAddr,
		hostPort:          hostPort,
		handlers:          handlers,
		userData:          serviceData,
		inactivityTimeout: tick.FromDuration(inactivityTimeout),
	}

	return r.registerListener(svc)
}

// RegisterServer registers a unified-event style service: a single callback
// receiving CREATED/READABLE/WRITABLE/ERRORED/CLOSED/TIMEOUT/SLEEP.
func (r *Reactor) RegisterServer(address string, inactivityTimeout time.Duration, handlerData interface{}, handler UnifiedHandler) (int, error) {
	if err := validateAddress(address); err != nil {
		return -1, err
	}

	fd, hostAddr, hostPort, err := resolveAndBind(address)
	if err != nil {
		return -1, err
	}

	svc := &service{
		fd:                fd,
		hostAddr:          hostAddr,
		hostPort:          hostPort,
		unified:           handler,
		handlerData:       handlerData,
		inactivityTimeout: tick.FromDuration(inactivityTimeout),
	}

	return r.registerListener(svc)
}

func (r *Reactor) registerListener(svc *service) (int, error) {
	c := newConnSlot(svc.fd, slotListener, svc)

	idx := len(r.slots)
	c.index = idx
	r.slots = append(r.slots, c)
	r.fdIndex[svc.fd] = idx
	r.svcs = append(r.svcs, svc)

	if err := r.poll.add(svc.fd, EventReadable); err != nil {
		r.slots = r.slots[:idx]
		delete(r.fdIndex, svc.fd)
		r.svcs = r.svcs[:len(r.svcs)-1]
		_ = unix.Close(svc.fd)
		return -1, err
	}

	r.logInfo(fmt.Sprintf("listen started on %s:%s", svc.hostAddr, svc.hostPort))
	return idx, nil
}

// Dispatch performs exactly one demultiplex cycle: poll, event dispatch for
// every ready connection, an accept pass for every ready listener, and a
// drain of all three timer wheels. It returns 0 on normal completion
// (including a benign EINTR) and -1 once the readiness primitive itself has
// failed — at that point the reactor must be torn down with Close.
func (r *Reactor) Dispatch(timeoutMs int) int {
	if r.closed || r.failed {
		return -1
	}

	if r.metrics != nil {
		start := time.Now()
		defer func() {
			r.metrics.DispatchDuration.Observe(time.Since(start).Seconds())
		}()
	}

	events, err := r.poll.wait(timeoutMs)
	if err != nil {
		r.reportError(err)
		r.failed = true
		return -1
	}
	if events == nil {
		return 0
	}

	for _, ev := range events {
		idx, ok := r.fdIndex[ev.fd]
		if !ok {
			continue
		}
		if r.slots[idx].kind == slotListener {
			continue
		}
		r.dispatchConnEvent(idx, ev)
	}

	for _, ev := range events {
		idx, ok := r.fdIndex[ev.fd]
		if !ok {
			continue
		}
		c := r.slots[idx]
		if c.kind != slotListener {
			continue
		}
		if ev.readable {
			r.acceptOnce(idx)
		}
	}

	now := tick.Now()
	r.drainInactivity(now)
	r.drainSleep(now)
	r.drainReceive(now)

	return 0
}

func (r *Reactor) dispatchConnEvent(idx int, ev readyEvent) {
	c := r.slots[idx]

	if ev.hangup {
		r.teardown(idx, nil)
		return
	}

	if ev.errored {
		if e := pendingError(c.fd); e != nil {
			werr := liberr.New(uint16(liberr.CodeConnection), "pending socket error", e)
			r.reportError(werr)
			c.err = werr
		}
		kind := EventEndConnection
		r.teardown(idx, &kind)
		return
	}

	if ev.readable && c.interest&EventReadable != 0 {
		r.handleReadable(idx)
		return
	}

	if ev.writable && c.interest&EventWritable != 0 {
		r.handleWritable(idx)
	}
}

func (r *Reactor) handleReadable(idx int) {
	c := r.slots[idx]

	// A unified handler reads the descriptor itself through Read, so the
	// reactor must not consume the pending bytes first.
	if c.svc.isUnified() {
		r.resetInactivityLocked(c)
		r.deliverReadable(idx, nil)
		if r.slots[idx] == c && c.closing {
			r.teardown(idx, nil)
		}
		return
	}

	buf := make([]byte, r.bufferSize)

	n, err := unix.Read(c.fd, buf)
	if err != nil {
		if isTransient(err) {
			return
		}
		werr := liberr.New(uint16(liberr.CodeConnection), "recv()", err)
		r.reportError(werr)
		c.err = werr
		kind := EventEndConnection
		r.teardown(idx, &kind)
		return
	}
	if n == 0 {
		r.teardown(idx, nil)
		return
	}

	r.resetInactivityLocked(c)
	r.deliverReadable(idx, buf[:n])

	if r.slots[idx] == c && c.closing {
		r.teardown(idx, nil)
	}
}

func (r *Reactor) deliverReadable(idx int, data []byte) {
	c := r.slots[idx]
	if c.svc.isUnified() {
		if ret := c.svc.unified(r, idx, c.fd, EventReadable, c.userData); ret != 0 {
			c.closing = true
		}
		return
	}
	if c.svc.handlers.OnReceive != nil {
		c.svc.handlers.OnReceive(r, idx, c.userData, data)
	}
}

func (r *Reactor) handleWritable(idx int) {
	c := r.slots[idx]

	if len(c.sendBuf) > 0 {
		n, err := unix.Write(c.fd, c.sendBuf)
		if err != nil {
			if isTransient(err) {
				return
			}
			werr := liberr.New(uint16(liberr.CodeConnection), "send()", err)
			r.reportError(werr)
			c.err = werr
			kind := EventEndConnection
			r.teardown(idx, &kind)
			return
		}
		c.sendBuf = c.sendBuf[n:]
		if len(c.sendBuf) > 0 {
			return
		}
	}

	r.resetInactivityLocked(c)

	if c.svc.isUnified() {
		if ret := c.svc.unified(r, idx, c.fd, EventWritable, c.userData); ret != 0 {
			c.closing = true
		}
	} else if c.svc.handlers.OnWritable != nil {
		c.svc.handlers.OnWritable(r, idx, c.userData)
	}

	if c.closing {
		r.teardown(idx, nil)
		return
	}

	if len(c.sendBuf) == 0 && c.interest != EventReadable {
		_ = r.SetEvent(idx, EventReadable)
	}
}

func (r *Reactor) acceptOnce(idx int) {
	l := r.slots[idx]

	fd, peerAddr, peerPort, err := acceptOne(l.fd)
	if err != nil {
		r.reportError(err)
		return
	}
	if fd < 0 {
		return
	}

	c := newConnSlot(fd, slotConnection, l.svc)
	c.peerAddr = peerAddr
	c.peerPort = peerPort

	ci := len(r.slots)
	c.index = ci
	r.slots = append(r.slots, c)
	r.fdIndex[fd] = ci

	if err := r.poll.add(fd, EventReadable); err != nil {
		r.reportError(err)
		_ = unix.Close(fd)
		r.slots = r.slots[:ci]
		delete(r.fdIndex, fd)
		return
	}

	if l.svc.inactivityTimeout > 0 {
		r.wheelInactivity.Add(c.tInactivity, tick.Now()+l.svc.inactivityTimeout)
	}

	r.logInfo(fmt.Sprintf("accept(%s:%s)", peerAddr, peerPort))
	r.reportInfo(l.svc.hostAddr, l.svc.hostPort, peerAddr, peerPort, socket.ConnectionNew)
	if r.metrics != nil {
		r.metrics.ConnectionsAccepted.WithLabelValues(l.svc.hostAddr + ":" + l.svc.hostPort).Inc()
		r.metrics.ConnectionsActive.Inc()
	}
	r.emitNewConnection(ci)
}

func (r *Reactor) emitNewConnection(idx int) {
	c := r.slots[idx]

	if c.svc.isUnified() {
		c.userData = c.svc.handlerData
		if ret := c.svc.unified(r, idx, c.fd, EventCreated, c.userData); ret != 0 {
			c.closing = true
		}
	} else if c.svc.handlers.OnEvent != nil {
		payload := r.payloadFor(c)
		c.svc.handlers.OnEvent(r, idx, &c.userData, EventNewConnection, payload)
	}

	if c.closing {
		r.teardown(idx, nil)
	}
}

// teardown emits the close sequence for slot idx — an optional preceding
// event, then the terminal CLOSED/END_CONNECTION event that the state
// machine guarantees is always last — unlinks every timer entry, closes
// the descriptor, and compacts the slot out of the dense vector.
func (r *Reactor) teardown(idx int, preceding *EventKind) {
	c := r.slots[idx]

	if c.svc.isUnified() {
		if preceding != nil {
			_ = c.svc.unified(r, idx, c.fd, unifiedEventFor(*preceding), c.userData)
		}
		_ = c.svc.unified(r, idx, c.fd, EventClosed, c.userData)
	} else if c.svc.handlers.OnEvent != nil {
		payload := r.payloadFor(c)
		if preceding != nil && *preceding != EventEndConnection {
			c.svc.handlers.OnEvent(r, idx, &c.userData, *preceding, payload)
		}
		c.svc.handlers.OnEvent(r, idx, &c.userData, EventEndConnection, payload)
	}

	r.poll.remove(c.fd)
	_ = unix.Close(c.fd)
	r.wheelInactivity.Unlink(c.tInactivity)
	r.wheelSleep.Unlink(c.tSleep)
	r.wheelReceive.Unlink(c.tReceive)
	close(c.done)

	if c.kind == slotConnection {
		r.reportInfo(c.svc.hostAddr, c.svc.hostPort, c.peerAddr, c.peerPort, socket.ConnectionClose)
		if r.metrics != nil {
			r.metrics.ConnectionsActive.Dec()
		}
	}

	r.compact(idx)
}

func unifiedEventFor(kind EventKind) Event {
	switch kind {
	case EventTimeoutSleep:
		return EventSleep
	case EventTimeoutInactivity, EventTimeoutReceive:
		return EventTimeout
	default:
		return EventErrored
	}
}

func (r *Reactor) payloadFor(c *conn) *Payload {
	return &Payload{
		ServiceData: c.svc.userData,
		HostAddr:    c.svc.hostAddr,
		HostPort:    c.svc.hostPort,
		PeerAddr:    c.peerAddr,
		PeerPort:    c.peerPort,
	}
}

func (r *Reactor) compact(idx int) {
	removedFd := r.slots[idx].fd
	last := len(r.slots) - 1

	if idx != last {
		moved := r.slots[last]
		r.slots[idx] = moved
		moved.index = idx
		r.fdIndex[moved.fd] = idx
	}

	delete(r.fdIndex, removedFd)
	r.slots = r.slots[:last]
}

func (r *Reactor) drainInactivity(now tick.Tick) {
	for {
		owner := r.wheelInactivity.RemoveExpired(now)
		if owner == nil {
			return
		}
		c := owner.(*conn)
		r.countTimerExpiration("inactivity")
		kind := EventTimeoutInactivity
		r.teardown(c.index, &kind)
	}
}

func (r *Reactor) drainSleep(now tick.Tick) {
	for {
		owner := r.wheelSleep.RemoveExpired(now)
		if owner == nil {
			return
		}
		r.countTimerExpiration("sleep")
		r.emitTimeout(owner.(*conn), EventTimeoutSleep)
	}
}

func (r *Reactor) drainReceive(now tick.Tick) {
	for {
		owner := r.wheelReceive.RemoveExpired(now)
		if owner == nil {
			return
		}
		r.countTimerExpiration("receive")
		r.emitTimeout(owner.(*conn), EventTimeoutReceive)
	}
}

func (r *Reactor) countTimerExpiration(wheel string) {
	if r.metrics != nil {
		r.metrics.TimerExpirations.WithLabelValues(wheel).Inc()
	}
}

func (r *Reactor) emitTimeout(c *conn, kind EventKind) {
	if c.svc.isUnified() {
		if ret := c.svc.unified(r, c.index, c.fd, unifiedEventFor(kind), c.userData); ret != 0 {
			c.closing = true
		}
	} else if c.svc.handlers.OnEvent != nil {
		c.svc.handlers.OnEvent(r, c.index, &c.userData, kind, r.payloadFor(c))
	}

	if c.closing {
		r.teardown(c.index, nil)
	}
}

// CloseConnection marks slot for teardown. The slot is not freed
// immediately — compaction happens once the current event finishes — so
// this is safe to call from inside the handler invocation for slot itself.
func (r *Reactor) CloseConnection(slot int) {
	if slot < 0 || slot >= len(r.slots) {
		return
	}
	r.slots[slot].closing = true
}

// SetEvent replaces slot's interest mask. Interest is exactly one of
// Readable/Writable at any moment; the new mask takes effect on the very
// next dispatch cycle.
func (r *Reactor) SetEvent(slot int, interest Event) error {
	if slot < 0 || slot >= len(r.slots) {
		return liberr.New(uint16(liberr.CodeConnection), "SetEvent: invalid slot", nil)
	}
	c := r.slots[slot]
	c.interest = interest
	return r.poll.modify(c.fd, interest)
}

// SetUserdata stores handler-owned state on slot, typically called from a
// CREATED or NEW_CONNECTION callback.
func (r *Reactor) SetUserdata(slot int, data interface{}) {
	if slot < 0 || slot >= len(r.slots) {
		return
	}
	r.slots[slot].userData = data
}

// GetAddrs returns the addressing strings for slot, valid until its
// END_CONNECTION callback returns.
func (r *Reactor) GetAddrs(slot int) (peerAddr, peerPort, hostAddr, hostPort string) {
	if slot < 0 || slot >= len(r.slots) {
		return "", "", "", ""
	}
	c := r.slots[slot]
	return c.peerAddr, c.peerPort, c.svc.hostAddr, c.svc.hostPort
}

// ArmSleep schedules slot's sleep timer to fire after d regardless of
// activity, replacing any previously scheduled sleep deadline.
func (r *Reactor) ArmSleep(slot int, d time.Duration) {
	if slot < 0 || slot >= len(r.slots) {
		return
	}
	c := r.slots[slot]
	r.wheelSleep.Add(c.tSleep, tick.Now()+tick.FromDuration(d))
}

// ArmReceive schedules slot's receive timer, independent of the inactivity
// wheel, typically used to bound completion of one logical request.
func (r *Reactor) ArmReceive(slot int, d time.Duration) {
	if slot < 0 || slot >= len(r.slots) {
		return
	}
	c := r.slots[slot]
	r.wheelReceive.Add(c.tReceive, tick.Now()+tick.FromDuration(d))
}

// resetInactivityLocked slides slot's inactivity deadline forward on every
// observed read or write activity. The source's reset semantics are left
// unspecified by the data model as an implementation choice; sliding is the
// more common definition of "inactivity" for a live connection.
func (r *Reactor) resetInactivityLocked(c *conn) {
	if c.svc.inactivityTimeout > 0 {
		r.wheelInactivity.Add(c.tInactivity, tick.Now()+c.svc.inactivityTimeout)
	}
}

// Write enqueues p on slot's pending-send buffer and attempts an immediate
// non-blocking flush. A short flush arms the slot for WRITABLE so the
// remainder goes out on a later dispatch cycle; callers never block here.
func (r *Reactor) Write(slot int, p []byte) (int, error) {
	if slot < 0 || slot >= len(r.slots) {
		return 0, liberr.New(uint16(liberr.CodeConnection), "Write: invalid slot", nil)
	}
	c := r.slots[slot]

	if len(c.sendBuf) == 0 {
		n, err := unix.Write(c.fd, p)
		if err != nil {
			if !isTransient(err) {
				return 0, err
			}
			n = 0
		}
		if n < len(p) {
			c.sendBuf = append(c.sendBuf, p[n:]...)
			if c.interest != EventWritable {
				_ = r.SetEvent(slot, EventWritable)
			}
		}
		return len(p), nil
	}

	c.sendBuf = append(c.sendBuf, p...)
	return len(p), nil
}

// Read performs a single non-blocking read for slot. It never blocks: a
// transient EAGAIN reads as (0, nil), matching the reactor's "only bytes
// already delivered by the current event" contract for handler I/O.
func (r *Reactor) Read(slot int, p []byte) (int, error) {
	if slot < 0 || slot >= len(r.slots) {
		return 0, liberr.New(uint16(liberr.CodeConnection), "Read: invalid slot", nil)
	}
	c := r.slots[slot]

	n, err := unix.Read(c.fd, p)
	if err != nil {
		if isTransient(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Done returns a channel closed once slot has been torn down, letting a
// caller outside the dispatch cycle observe connection end without polling.
func (r *Reactor) Done(slot int) <-chan struct{} {
	if slot < 0 || slot >= len(r.slots) {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return r.slots[slot].done
}

// Err returns the error that caused slot to close, if any was recorded.
func (r *Reactor) Err(slot int) error {
	if slot < 0 || slot >= len(r.slots) {
		return nil
	}
	return r.slots[slot].err
}

// ConnectionCount returns the number of open (non-listener) slots.
func (r *Reactor) ConnectionCount() int64 {
	var n int64
	for _, c := range r.slots {
		if c.kind == slotConnection {
			n++
		}
	}
	return n
}

// Close tears down every owned descriptor — listeners and live connections
// alike — and releases the poller. The reactor is not usable afterward.
func (r *Reactor) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	for i := len(r.slots) - 1; i >= 0; i-- {
		c := r.slots[i]
		r.poll.remove(c.fd)
		_ = unix.Close(c.fd)
		if c.kind == slotConnection {
			close(c.done)
		}
	}
	r.slots = nil
	r.fdIndex = map[int]int{}

	return r.poll.close()
}

func isTransient(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR
}

func (r *Reactor) reportError(err error) {
	if err == nil {
		return
	}
	if filtered := socket.ErrorFilter(err); filtered == nil {
		return
	}
	if r.log != nil {
		r.log.Error("[-] %s", err.Error())
	}
	if r.onError != nil {
		r.onError(err)
	}
}

func (r *Reactor) logInfo(msg string) {
	if r.log != nil {
		r.log.Info("[+] %s", msg)
	}
}

func (r *Reactor) reportInfo(localAddr, localPort, remoteAddr, remotePort string, state socket.ConnState) {
	if r.onInfo == nil {
		return
	}
	r.onInfo(tcpAddr(localAddr, localPort), tcpAddr(remoteAddr, remotePort), state)
}

func tcpAddr(host, port string) net.Addr {
	p, _ := strconv.Atoi(port)
	return &net.TCPAddr{IP: net.ParseIP(host), Port: p}
}
