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

// Event is the unified-handler style's single event value. The bits double
// as an interest mask (Readable/Writable are the only two a caller may ever
// request) and as a delivered event kind — delivered one at a time, never
// ORed together, even though the type permits combination.
type Event uint8

const (
	EventReadable Event = 0x01
	EventWritable Event = 0x02
	EventTimeout  Event = 0x04
	EventErrored  Event = 0x08
	EventClosed   Event = 0x10
	EventCreated  Event = 0x20
	EventSleep    Event = 0x40
)

func (e Event) String() string {
	switch e {
	case EventReadable:
		return "READABLE"
	case EventWritable:
		return "WRITABLE"
	case EventTimeout:
		return "TIMEOUT"
	case EventErrored:
		return "ERRORED"
	case EventClosed:
		return "CLOSED"
	case EventCreated:
		return "CREATED"
	case EventSleep:
		return "SLEEP"
	default:
		return "UNKNOWN"
	}
}

// EventKind is the three-callback style's lifecycle event, delivered through
// EventFunc. Readable/writable data delivery in that style goes through
// ReceiveFunc/WritableFunc instead, not through EventKind.
type EventKind uint8

const (
	EventNewConnection EventKind = iota
	EventEndConnection
	EventTimeoutInactivity
	EventTimeoutSleep
	EventTimeoutReceive
)

func (k EventKind) String() string {
	switch k {
	case EventNewConnection:
		return "NEW_CONNECTION"
	case EventEndConnection:
		return "END_CONNECTION"
	case EventTimeoutInactivity:
		return "TIMEOUT_INACTIVITY"
	case EventTimeoutSleep:
		return "TIMEOUT_SLEEP"
	case EventTimeoutReceive:
		return "TIMEOUT_RECEIVE"
	default:
		return "UNKNOWN"
	}
}

// Payload accompanies NEW_CONNECTION/END_CONNECTION in the three-callback
// style: the addressing a handler needs without querying the reactor again.
type Payload struct {
	ServiceData interface{}
	HostAddr    string
	HostPort    string
	PeerAddr    string
	PeerPort    string
}

// ReceiveFunc delivers freshly read bytes to a three-callback style handler.
// buf is only valid for the duration of the call.
type ReceiveFunc func(r *Reactor, slot int, userData interface{}, buf []byte)

// WritableFunc notifies a three-callback style handler that its descriptor
// is ready to accept more output; it is the handler's job to call Write.
type WritableFunc func(r *Reactor, slot int, userData interface{})

// EventFunc delivers a lifecycle transition to a three-callback style
// handler. userData is a pointer so NEW_CONNECTION may install the
// handler's per-connection state for every later callback to see.
type EventFunc func(r *Reactor, slot int, userData *interface{}, kind EventKind, payload *Payload)

// Handlers bundles the three-callback style. OnWritable may be nil — a
// handler that only ever responds to reads never needs it.
type Handlers struct {
	OnReceive  ReceiveFunc
	OnWritable WritableFunc
	OnEvent    EventFunc
}

// UnifiedHandler is the single-callback style: every transition for a
// connection slot funnels through this one function. The listener's own
// READABLE is not delivered here: the reactor's accept pass handles it and
// the handler sees the result as CREATED on the new connection's slot. On
// READABLE the reactor has not read the descriptor; the handler reads it
// itself through Reactor.Read. A non-zero return is equivalent to the
// three-callback style's closing flag: the reactor tears the connection
// down after the call returns.
type UnifiedHandler func(r *Reactor, slot int, fd int, event Event, handlerData interface{}) int
