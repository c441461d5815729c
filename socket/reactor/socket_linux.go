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

// Component C: the only place this package touches the OS directly. Address
// resolution is delegated to net (DNS, numeric parsing are collaborators,
// not part of the reactor's algorithm per its own contract); bind, listen,
// accept, and I/O go through golang.org/x/sys/unix so every descriptor the
// reactor owns is non-blocking and its readiness is observable via epoll.
package reactor

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/tcpreactor/errors"
	"github.com/nabbar/tcpreactor/socket"
)

// resolveAndBind resolves address to a numeric TCP endpoint, creates a
// non-blocking stream socket in the resolved family, sets SO_REUSEADDR (and
// SO_REUSEPORT where the platform supports it), binds, and listens with
// socket.ListenBacklog. It returns the listening descriptor and the
// effective numeric host/port strings.
func resolveAndBind(address string) (fd int, hostAddr string, hostPort string, err error) {
	addr, e := net.ResolveTCPAddr("tcp", address)
	if e != nil {
		return -1, "", "", liberr.New(uint16(liberr.CodeConfiguration), fmt.Sprintf("resolving %q", address), e)
	}

	domain := unix.AF_INET
	var sa unix.Sockaddr

	if ip4 := addr.IP.To4(); ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		domain = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: addr.Port}
		if addr.IP != nil {
			copy(sa6.Addr[:], addr.IP.To16())
		}
		sa = sa6
	}

	fd, e = unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if e != nil {
		return -1, "", "", liberr.New(uint16(liberr.CodeSocketSetup), "socket()", e)
	}

	if e = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); e != nil {
		_ = unix.Close(fd)
		return -1, "", "", liberr.New(uint16(liberr.CodeSocketSetup), "setsockopt(SO_REUSEADDR)", e)
	}

	// SO_REUSEPORT support varies by kernel; failure here is not fatal to
	// binding a single listener so it is deliberately ignored.
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)

	if e = unix.Bind(fd, sa); e != nil {
		_ = unix.Close(fd)
		return -1, "", "", liberr.New(uint16(liberr.CodeSocketSetup), "bind()", e)
	}

	if e = unix.Listen(fd, socket.ListenBacklog); e != nil {
		_ = unix.Close(fd)
		return -1, "", "", liberr.New(uint16(liberr.CodeSocketSetup), "listen()", e)
	}

	bound, e := unix.Getsockname(fd)
	if e != nil {
		_ = unix.Close(fd)
		return -1, "", "", liberr.New(uint16(liberr.CodeSocketSetup), "getsockname()", e)
	}

	hostAddr, hostPort = sockaddrToStrings(bound)
	return fd, hostAddr, hostPort, nil
}

// acceptOne performs a single non-blocking accept on listener. It returns
// (-1, ..., nil) when no connection is pending (EAGAIN/EWOULDBLOCK) — this
// is not an error, just an empty readiness report.
func acceptOne(listener int) (fd int, peerAddr string, peerPort string, err error) {
	nfd, sa, e := unix.Accept4(listener, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if e != nil {
		if e == unix.EAGAIN || e == unix.EWOULDBLOCK || e == unix.EINTR {
			return -1, "", "", nil
		}
		if e == unix.EMFILE || e == unix.ENFILE {
			return -1, "", "", liberr.New(uint16(liberr.CodeTransientSocket), "accept(): descriptor table exhausted", e)
		}
		return -1, "", "", liberr.New(uint16(liberr.CodeConnection), "accept()", e)
	}

	peerAddr, peerPort = sockaddrToStrings(sa)
	return nfd, peerAddr, peerPort, nil
}

// pendingError retrieves a descriptor's pending SO_ERROR, the mechanism for
// discovering a connect()/async failure reported only via readiness.
func pendingError(fd int) error {
	errno, e := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if e != nil {
		return e
	}
	if errno == 0 {
		return nil
	}
	return unix.Errno(errno)
}

func sockaddrToStrings(sa unix.Sockaddr) (addr string, port string) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := net.IP(v.Addr[:])
		return ip.String(), strconv.Itoa(v.Port)
	case *unix.SockaddrInet6:
		ip := net.IP(v.Addr[:])
		return ip.String(), strconv.Itoa(v.Port)
	default:
		return "", ""
	}
}
