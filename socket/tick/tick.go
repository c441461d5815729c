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

// Package tick converts wall time into the reactor's internal timer unit.
//
// The denominator is a power of two (2^14) so the timer wheel can turn its
// modulus into a bitmask instead of a division.
package tick

import "time"

// Tick is a 1/16384-of-a-second unit used as the expiry currency across
// every timer wheel in the reactor.
type Tick uint64

const (
	// TicksPerSecond is 2^14, chosen so "mod N" on a power-of-two wheel
	// size reduces to a bitwise AND.
	TicksPerSecond Tick = 1 << 14

	// TicksFromSeconds converts a count of whole seconds into ticks.
	TicksFromSeconds = TicksPerSecond

	// microsecondsPerSecond converts a microsecond count into ticks as
	// usecs * TicksPerSecond / microsecondsPerSecond (integer division,
	// sub-tick precision is not tracked).
	microsecondsPerSecond = 1000000
)

// FromDuration converts a time.Duration into a tick count.
func FromDuration(d time.Duration) Tick {
	if d <= 0 {
		return 0
	}
	secs := uint64(d / time.Second)
	usecs := uint64((d % time.Second) / time.Microsecond)
	return Tick(secs)*TicksPerSecond + Tick(usecs*uint64(TicksPerSecond)/microsecondsPerSecond)
}

// FromUnix converts a (seconds, microseconds) wall-clock pair into ticks,
// mirroring the source's TICKS_FROM_TV macro.
func FromUnix(secs int64, usecs int64) Tick {
	if secs < 0 {
		secs = 0
	}
	if usecs < 0 {
		usecs = 0
	}
	return Tick(secs)*TicksPerSecond + Tick(uint64(usecs)*uint64(TicksPerSecond)/microsecondsPerSecond)
}

// Now returns the current time expressed in ticks. It is derived from wall
// time (seconds + microseconds since Unix epoch), not from a monotonic
// clock, so a step of the system clock shows up directly in the returned
// value, including a step backwards.
func Now() Tick {
	now := time.Now()
	return FromUnix(now.Unix(), int64(now.Nanosecond()/1000))
}
