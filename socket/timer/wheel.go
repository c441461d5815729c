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

package timer

import "github.com/nabbar/tcpreactor/socket/tick"

// bucketCount must be a power of two so bucket selection is a bitmask.
const bucketCount = 1 << 12 // 4096 buckets

// Wheel is a hashed ring of timeout buckets. Insertion and removal of a
// single entry are O(1); draining everything due by "now" is amortized
// O(k) in the number of expired entries, bounded by a full sweep of the
// ring when now-last >= bucketCount.
//
// Wheel is not safe for concurrent use — the reactor that owns it must
// serialize access, exactly like every other reactor-owned structure.
type Wheel struct {
	buckets [bucketCount]*Entry
	last    tick.Tick

	// pending chains entries already found due during the current drain
	// span but not yet handed back to the caller, threaded through the
	// entries' own next pointers (they are already unlinked from their
	// bucket, so next is free to reuse). RemoveExpired only advances last
	// once this chain — and therefore the whole [last, now] span — has
	// been fully walked.
	pending *Entry
}

// NewWheel creates a wheel with every bucket empty and the drain cursor
// anchored at now.
func NewWheel(now tick.Tick) *Wheel {
	return &Wheel{last: now}
}

func index(t tick.Tick) uint64 {
	return uint64(t) & (bucketCount - 1)
}

// Add links entry into the bucket for expires, unlinking it first if it
// was already linked elsewhere (Add → Unlink → Add collapses to a single
// add at the newer expiry). O(1).
func (w *Wheel) Add(entry *Entry, expires tick.Tick) {
	if entry.Linked() {
		entry.Unlink()
	}

	entry.timestamp = expires

	head := &w.buckets[index(expires)]
	entry.next = *head
	if entry.next != nil {
		entry.next.prev = &entry.next
	}
	entry.prev = head
	*head = entry
}

// Unlink removes entry from whichever bucket holds it. Idempotent: safe
// to call on an entry that is already unlinked.
func (w *Wheel) Unlink(entry *Entry) {
	entry.Unlink()
}

// RemoveExpired walks every bucket from the wheel's drain cursor up
// through now (inclusive), unlinks every entry it finds whose timestamp
// is due, and returns them one at a time — oldest bucket first, LIFO
// (head of the bucket's list first) among entries that land in the same
// bucket, matching the original dispatcher's "insert at head, remove
// from head when both land together" behavior. The drain cursor only
// advances to now once the full [last, now] span has actually been
// walked, so a caller that stops after the first hit in a span can never
// cause a later entry in that same span to be skipped. It returns nil
// once nothing more is due; callers must call it repeatedly until nil to
// drain everything that has expired.
func (w *Wheel) RemoveExpired(now tick.Tick) any {
	if w.pending != nil {
		e := w.pending
		w.pending = e.next
		e.next = nil
		return e.Owner()
	}

	if now < w.last {
		return nil
	}

	span := uint64(now - w.last)
	if span > bucketCount {
		span = bucketCount
	}

	var tail *Entry
	for i := uint64(0); i <= span; i++ {
		b := index(w.last + tick.Tick(i))
		for e := w.buckets[b]; e != nil; {
			nextEntry := e.next
			if e.timestamp <= now {
				e.Unlink()
				e.next = nil
				if tail == nil {
					w.pending = e
				} else {
					tail.next = e
				}
				tail = e
			}
			e = nextEntry
		}
	}
	w.last = now

	if w.pending == nil {
		return nil
	}

	e := w.pending
	w.pending = e.next
	e.next = nil
	return e.Owner()
}

// Last returns the tick up to which the wheel has already drained.
func (w *Wheel) Last() tick.Tick {
	return w.last
}
