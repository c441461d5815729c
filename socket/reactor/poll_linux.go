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

package reactor

import (
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/tcpreactor/errors"
)

// readyEvent is a poller-agnostic readiness report: a descriptor and which
// of readable/writable/hangup/error fired for it.
type readyEvent struct {
	fd       int
	readable bool
	writable bool
	hangup   bool
	errored  bool
}

// poller wraps an epoll instance. Every descriptor the reactor owns —
// listeners and connections alike — is registered here exactly once; its
// interest is changed with modify rather than a remove/add pair.
type poller struct {
	epfd int
	buf  []unix.EpollEvent
}

func newPoller(maxEvents int) (*poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, liberr.New(uint16(liberr.CodeFatalPoll), "epoll_create1()", err)
	}
	return &poller{epfd: fd, buf: make([]unix.EpollEvent, maxEvents)}, nil
}

func epollMask(interest Event) uint32 {
	mask := uint32(unix.EPOLLRDHUP)
	if interest&EventReadable != 0 {
		mask |= unix.EPOLLIN
	}
	if interest&EventWritable != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (p *poller) add(fd int, interest Event) error {
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return liberr.New(uint16(liberr.CodeFatalPoll), "epoll_ctl(ADD)", err)
	}
	return nil
}

func (p *poller) modify(fd int, interest Event) error {
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return liberr.New(uint16(liberr.CodeFatalPoll), "epoll_ctl(MOD)", err)
	}
	return nil
}

func (p *poller) remove(fd int) {
	_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks up to timeoutMs and returns the descriptors that became
// ready. EINTR is absorbed and reported as an empty, non-error result —
// the reactor's step 2 treats interruption as a benign, completed cycle.
func (p *poller) wait(timeoutMs int) ([]readyEvent, error) {
	n, err := unix.EpollWait(p.epfd, p.buf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, liberr.New(uint16(liberr.CodeFatalPoll), "epoll_wait()", err)
	}

	out := make([]readyEvent, 0, n)
	for i := 0; i < n; i++ {
		e := p.buf[i]
		out = append(out, readyEvent{
			fd:       int(e.Fd),
			readable: e.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
			writable: e.Events&unix.EPOLLOUT != 0,
			hangup:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			errored:  e.Events&unix.EPOLLERR != 0,
		})
	}
	return out, nil
}

func (p *poller) close() error {
	return unix.Close(p.epfd)
}
