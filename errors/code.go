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

import "sort"

// CodeError is a numeric error classification, similar in spirit to an HTTP
// status code: its magnitude alone tells a caller which reactor subsystem
// raised it (see modules.go for the per-subsystem ranges and taxonomy.go for
// the codes themselves), without needing the registered message map below.
type CodeError uint16

const (
	// UnknownError is the zero value: no specific code was assigned.
	UnknownError CodeError = 0

	// UnknownMessage is what Message returns when no registered function
	// covers a code.
	UnknownMessage = "unknown error"
)

// Uint16 returns c as a uint16, the width liberr.New is called with at every
// production call site (liberr.New(uint16(liberr.CodeXxx), ...)).
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Message is a function that renders a human-readable description for any
// code in the range it is registered for.
type Message func(code CodeError) string

var idMsgFct = make(map[CodeError]Message)

// RegisterIdFctMessage registers fct as the message source for every code
// greater than or equal to minCode, up to (but not including) the next
// higher registered minimum. A reactor subsystem calls this once from an
// init() to describe its own sub-range of the taxonomy; see taxonomy.go.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	idMsgFct[minCode] = fct
}

// Message returns the description registered for c's sub-range, or
// UnknownMessage if no registered minimum is at or below c.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	min := findRangeMinimum(c)

	if f, ok := idMsgFct[min]; ok {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

// findRangeMinimum returns the highest registered minimum that is still <=
// code, i.e. the sub-range code falls into.
func findRangeMinimum(code CodeError) CodeError {
	var res CodeError

	keys := make([]CodeError, 0, len(idMsgFct))
	for k := range idMsgFct {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		if k <= code {
			res = k
		}
	}

	return res
}
