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

// Package timer implements a hashed timing wheel with intrusive,
// doubly-linked entries, keyed on 1/16384-second ticks (see the tick
// package).
package timer

import "github.com/nabbar/tcpreactor/socket/tick"

// Entry is an intrusive timer node. It is allocated by NewEntry and held by
// pointer in the structure it times out (a connection record). The original C dispatcher recovers the owning structure from a node
// pointer via offsetof(); Go has no pointer arithmetic, so Entry instead
// carries a direct back-reference to its owner, set once at construction —
// the same "recover the record from the node" contract, without the
// pointer-offset trick.
type Entry struct {
	timestamp tick.Tick
	next      *Entry
	prev      **Entry
	owner     any
}

// NewEntry creates a timer node owned by the given record. owner is
// returned verbatim by Owner() once the wheel's RemoveExpired finds this
// entry due.
func NewEntry(owner any) *Entry {
	return &Entry{owner: owner}
}

// Linked reports whether the entry currently sits inside some bucket.
func (e *Entry) Linked() bool {
	return e.prev != nil
}

// Expiry returns the tick this entry is scheduled to fire at. Zero if
// unlinked.
func (e *Entry) Expiry() tick.Tick {
	return e.timestamp
}

// Owner returns the record this entry belongs to, as supplied to NewEntry.
func (e *Entry) Owner() any {
	return e.owner
}

// Unlink detaches the entry from whatever bucket list it is in. It is a
// no-op — and therefore safe to call unconditionally — on an entry that
// isn't linked.
func (e *Entry) Unlink() {
	if e.prev == nil {
		return
	}
	*e.prev = e.next
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.next = nil
	e.prev = nil
	e.timestamp = 0
}
