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

package reactor

import (
	"github.com/nabbar/tcpreactor/socket/timer"
)

// slotKind distinguishes a listener slot (always readable, readable means
// "accept") from a connection slot in the reactor's dense vectors.
type slotKind uint8

const (
	slotListener slotKind = iota
	slotConnection
)

// conn is the connection record described in the data model: one entry in
// the reactor's dense, self-indexing vector. It is never referenced
// directly by a caller — handlers see a slot id (an index) and, for the
// Context-based wrapper in socket/server/tcp, a socket.Context built on top
// of it.
type conn struct {
	index int // self-referential; kept in sync by compaction
	fd    int
	kind  slotKind

	svc *service

	userData interface{}
	interest Event // exactly one of EventReadable / EventWritable

	sendBuf []byte // pending output not yet flushed

	peerAddr string
	peerPort string

	closing bool

	tInactivity *timer.Entry
	tSleep      *timer.Entry
	tReceive    *timer.Entry

	done chan struct{}
	err  error
}

func newConnSlot(fd int, kind slotKind, svc *service) *conn {
	c := &conn{
		fd:       fd,
		kind:     kind,
		svc:      svc,
		interest: EventReadable,
		done:     make(chan struct{}),
	}
	c.tInactivity = timer.NewEntry(c)
	c.tSleep = timer.NewEntry(c)
	c.tReceive = timer.NewEntry(c)
	return c
}
