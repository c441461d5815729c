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
	"github.com/nabbar/tcpreactor/socket/reactor"
)

// sCtx adapts one reactor slot to socket.Context. It is only valid for the
// duration of the handler call it was built for: the reactor may compact
// slot indices as soon as the current event returns.
type sCtx struct {
	r    *reactor.Reactor
	slot int
	buf  []byte // bytes the reactor already read for the current event
}

func (c *sCtx) Read(p []byte) (int, error) {
	if len(c.buf) > 0 {
		n := copy(p, c.buf)
		c.buf = c.buf[n:]
		return n, nil
	}
	return c.r.Read(c.slot, p)
}

func (c *sCtx) Write(p []byte) (int, error) {
	return c.r.Write(c.slot, p)
}

func (c *sCtx) Close() error {
	c.r.CloseConnection(c.slot)
	return nil
}

func (c *sCtx) IsConnected() bool {
	select {
	case <-c.r.Done(c.slot):
		return false
	default:
		return true
	}
}

func (c *sCtx) LocalHost() string {
	_, _, hostAddr, hostPort := c.r.GetAddrs(c.slot)
	return hostAddr + ":" + hostPort
}

func (c *sCtx) RemoteHost() string {
	peerAddr, peerPort, _, _ := c.r.GetAddrs(c.slot)
	return peerAddr + ":" + peerPort
}

func (c *sCtx) Done() <-chan struct{} {
	return c.r.Done(c.slot)
}

func (c *sCtx) Err() error {
	return c.r.Err(c.slot)
}
