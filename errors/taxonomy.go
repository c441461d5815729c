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

package errors

// Reactor error taxonomy. Each category owns a sub-range so the numeric
// code alone tells a caller which layer raised it, without needing the
// registered message map.
const (
	// CodeConfiguration covers invalid listener configuration: out of
	// range ports, failed address resolution. Raised synchronously at
	// registration time; the reactor's state is untouched.
	CodeConfiguration CodeError = MinPkgConfig + iota
	_
	_
)

const (
	// CodeSocketSetup covers socket()/setsockopt()/bind()/listen() failure
	// during listener registration. Registration fails and any partially
	// created descriptor is released.
	CodeSocketSetup CodeError = MinPkgSocket + iota
	_
	_
)

const (
	// CodeTransientSocket covers EINTR on poll, EAGAIN/EWOULDBLOCK on
	// recv/send, EMFILE/ENFILE on accept. Logged and absorbed; the
	// reactor keeps running.
	CodeTransientSocket CodeError = MinPkgSocket + 100 + iota
	_
)

const (
	// CodeFatalPoll means the readiness primitive itself failed in a
	// non-benign way. Dispatch reports an error with this code to the
	// error sink and returns -1; the reactor must be closed and is no
	// longer usable.
	CodeFatalPoll CodeError = MinPkgReactor + iota
	_
)

const (
	// CodeConnection covers peer hangup, reset, or a pending socket
	// error observed via getsockopt(SO_ERROR). The slot is removed.
	CodeConnection CodeError = MinPkgReactor + 100 + iota
	_
)

const (
	// CodeHandlerClose marks a close requested by the handler itself
	// (CloseConnection or a nonzero unified-handler return), treated
	// identically to a clean peer close.
	CodeHandlerClose CodeError = MinPkgReactor + 200 + iota
)

func init() {
	RegisterIdFctMessage(CodeConfiguration, func(code CodeError) string {
		switch code {
		case CodeConfiguration:
			return "invalid listener configuration"
		default:
			return UnknownMessage
		}
	})
	RegisterIdFctMessage(CodeSocketSetup, func(code CodeError) string {
		switch code {
		case CodeSocketSetup:
			return "socket setup failed"
		case CodeTransientSocket:
			return "transient socket error"
		default:
			return UnknownMessage
		}
	})
	RegisterIdFctMessage(CodeFatalPoll, func(code CodeError) string {
		switch code {
		case CodeFatalPoll:
			return "fatal poll error, reactor must be closed"
		default:
			return UnknownMessage
		}
	})
	RegisterIdFctMessage(CodeConnection, func(code CodeError) string {
		switch code {
		case CodeConnection:
			return "connection error"
		case CodeHandlerClose:
			return "handler requested close"
		default:
			return UnknownMessage
		}
	})
}
