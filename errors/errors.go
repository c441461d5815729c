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

// Package errors is the reactor's coded error model: every error raised by
// config, socket setup, polling, or connection handling carries a numeric
// CodeError (see modules.go, taxonomy.go) identifying which subsystem raised
// it, alongside the usual message and an optional parent error chain.
//
// Unlike a generic error-handling toolkit, this package exposes a small
// surface: New/Newf to construct a coded error, Code/Error/Unwrap to read one
// back, and the Is/Get/HasCode helpers. Standard errors.Is and errors.As work
// on the result without any special-casing, since Unwrap returns the parent
// chain directly.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error extends the standard error with the reactor's numeric code.
type Error interface {
	error

	// Code returns the numeric code this error was constructed with.
	Code() uint16
}

// ers is the concrete Error. It is intentionally unexported: callers
// construct one only through New/Newf and read it back through the Error
// interface.
type ers struct {
	code    uint16
	message string
	parent  []error
}

// New builds an Error carrying code and message, optionally wrapping one or
// more parent errors. Nil parents are dropped, so callers can pass a
// possibly-nil error straight through.
func New(code uint16, message string, parent ...error) Error {
	return &ers{
		code:    code,
		message: message,
		parent:  dropNil(parent),
	}
}

// Newf is New with the message built by fmt.Sprintf.
func Newf(code uint16, pattern string, args ...any) Error {
	return &ers{
		code:    code,
		message: fmt.Sprintf(pattern, args...),
	}
}

func dropNil(errs []error) []error {
	if len(errs) == 0 {
		return nil
	}

	out := make([]error, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			out = append(out, e)
		}
	}

	return out
}

// Error renders "[code] message", appending ": parent" for every wrapped
// parent error in order.
func (e *ers) Error() string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "[%d] %s", e.code, e.message)
	for _, p := range e.parent {
		_, _ = fmt.Fprintf(&b, ": %s", p.Error())
	}

	return b.String()
}

// Code returns the code e was constructed with.
func (e *ers) Code() uint16 {
	return e.code
}

// Unwrap exposes e's parent chain to errors.Is/errors.As.
func (e *ers) Unwrap() []error {
	return e.parent
}

// Is reports whether err is an Error, as opposed to a plain error.
func Is(err error) bool {
	var target Error
	return errors.As(err, &target)
}

// Get returns err as an Error if it is one (or wraps one), or nil otherwise.
func Get(err error) Error {
	var target Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// HasCode reports whether err, or any error in its wrap chain (including
// through multi-parent Error values), carries code.
func HasCode(err error, code CodeError) bool {
	if err == nil {
		return false
	}

	if e, ok := err.(Error); ok && e.Code() == code.Uint16() {
		return true
	}

	switch x := err.(type) {
	case interface{ Unwrap() error }:
		return HasCode(x.Unwrap(), code)
	case interface{ Unwrap() []error }:
		for _, c := range x.Unwrap() {
			if HasCode(c, code) {
				return true
			}
		}
	}

	return false
}
