/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package timer_test

import (
	"testing"

	"github.com/nabbar/tcpreactor/socket/tick"
	"github.com/nabbar/tcpreactor/socket/timer"
)

func TestAddAndRemoveExpired(t *testing.T) {
	w := timer.NewWheel(0)
	e := timer.NewEntry("owner-a")
	w.Add(e, 10)

	if owner := w.RemoveExpired(5); owner != nil {
		t.Fatalf("expected nothing due at tick 5, got %v", owner)
	}
	owner := w.RemoveExpired(10)
	if owner != "owner-a" {
		t.Fatalf("expected owner-a due at tick 10, got %v", owner)
	}
	if owner := w.RemoveExpired(10); owner != nil {
		t.Fatalf("entry should not fire twice, got %v", owner)
	}
}

func TestAddTwiceCollapsesToLatest(t *testing.T) {
	w := timer.NewWheel(0)
	e := timer.NewEntry("owner-b")
	w.Add(e, 5)
	w.Add(e, 20)

	if owner := w.RemoveExpired(5); owner != nil {
		t.Fatalf("re-Add should have moved the deadline to 20, not fire at 5: got %v", owner)
	}
	if owner := w.RemoveExpired(20); owner != "owner-b" {
		t.Fatalf("expected owner-b due at tick 20, got %v", owner)
	}
}

func TestUnlinkIsIdempotent(t *testing.T) {
	w := timer.NewWheel(0)
	e := timer.NewEntry("owner-c")
	w.Add(e, 5)
	w.Unlink(e)
	w.Unlink(e)

	if e.Linked() {
		t.Fatal("entry should be unlinked")
	}
	if owner := w.RemoveExpired(100); owner != nil {
		t.Fatalf("unlinked entry must not fire, got %v", owner)
	}
}

func TestRemoveExpiredDrainsOldestFirstWithinSpan(t *testing.T) {
	w := timer.NewWheel(0)
	a := timer.NewEntry("a")
	b := timer.NewEntry("b")
	w.Add(a, 1)
	w.Add(b, 3)

	first := w.RemoveExpired(3)
	second := w.RemoveExpired(3)
	third := w.RemoveExpired(3)

	if first != "a" || second != "b" {
		t.Fatalf("expected a (tick 1) then b (tick 3) to drain by tick 3, got %v, %v", first, second)
	}
	if third != nil {
		t.Fatalf("wheel should be dry after draining both entries, got %v", third)
	}
}

func TestLinkedReflectsState(t *testing.T) {
	e := timer.NewEntry(nil)
	if e.Linked() {
		t.Fatal("a freshly created entry must not be linked")
	}
	w := timer.NewWheel(0)
	w.Add(e, 1)
	if !e.Linked() {
		t.Fatal("entry must be linked after Add")
	}
}

func TestRemoveExpiredVisitsEveryBucketInSpanAcrossCalls(t *testing.T) {
	w := timer.NewWheel(0)
	a := timer.NewEntry("a")
	b := timer.NewEntry("b")
	c := timer.NewEntry("c")
	w.Add(a, 1)
	w.Add(b, 2)
	w.Add(c, 3)

	got := map[any]bool{}
	for i := 0; i < 3; i++ {
		owner := w.RemoveExpired(3)
		if owner == nil {
			t.Fatalf("call %d: expected an owner, got nil (entry stranded mid-span)", i+1)
		}
		got[owner] = true
	}
	if !got["a"] || !got["b"] || !got["c"] {
		t.Fatalf("expected a, b and c to all drain within the same [0,3] span, got %v", got)
	}
	if owner := w.RemoveExpired(3); owner != nil {
		t.Fatalf("span should be dry after draining all three, got %v", owner)
	}
}

func TestExpiryRoundTrip(t *testing.T) {
	w := timer.NewWheel(0)
	e := timer.NewEntry("owner")
	w.Add(e, tick.Tick(42))
	if e.Expiry() != 42 {
		t.Fatalf("Expiry() = %d, want 42", e.Expiry())
	}
}
