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

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	liberr "github.com/nabbar/tcpreactor/errors"
)

func TestNewRendersCodeAndMessage(t *testing.T) {
	err := liberr.New(404, "listener not found")

	if got, want := err.Error(), "[404] listener not found"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if err.Code() != 404 {
		t.Fatalf("Code() = %d, want 404", err.Code())
	}
}

func TestNewAppendsParentMessages(t *testing.T) {
	parent := errors.New("connection reset by peer")
	err := liberr.New(500, "recv()", parent)

	if got, want := err.Error(), "[500] recv(): connection reset by peer"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestNewDropsNilParents(t *testing.T) {
	err := liberr.New(500, "recv()", nil)

	if got, want := err.Error(), "[500] recv()"; got != want {
		t.Fatalf("Error() = %q, want %q (nil parent must not be rendered)", got, want)
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := liberr.Newf(404, "listener %q not found", "127.0.0.1:9000")

	if got, want := err.Error(), `[404] listener "127.0.0.1:9000" not found`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrapWorksWithStandardErrorsIs(t *testing.T) {
	sentinel := errors.New("boom")
	err := liberr.New(500, "send()", sentinel)

	if !errors.Is(err, sentinel) {
		t.Fatal("errors.Is should find the wrapped sentinel through Unwrap")
	}
}

func TestUnwrapWorksWithStandardErrorsAs(t *testing.T) {
	err := liberr.New(500, "send()")

	var target liberr.Error
	if !errors.As(err, &target) {
		t.Fatal("errors.As should recognize the concrete type as liberr.Error")
	}
	if target.Code() != 500 {
		t.Fatalf("Code() = %d, want 500", target.Code())
	}
}

func TestIsAndGet(t *testing.T) {
	coded := liberr.New(500, "send()")
	plain := errors.New("plain")

	if !liberr.Is(coded) {
		t.Fatal("Is(coded) should be true")
	}
	if liberr.Is(plain) {
		t.Fatal("Is(plain) should be false")
	}
	if liberr.Get(plain) != nil {
		t.Fatal("Get(plain) should be nil")
	}
	if got := liberr.Get(coded); got == nil || got.Code() != 500 {
		t.Fatalf("Get(coded) = %v, want an Error with code 500", got)
	}
}

func TestHasCodeWalksTheChain(t *testing.T) {
	inner := liberr.New(200, "socket()")
	wrapped := fmt.Errorf("setup failed: %w", inner)
	outer := liberr.New(100, "listener registration", wrapped)

	if !liberr.HasCode(outer, 100) {
		t.Fatal("HasCode should match the outer error's own code")
	}
	if !liberr.HasCode(outer, 200) {
		t.Fatal("HasCode should find the inner code through fmt.Errorf's single-error wrap")
	}
	if liberr.HasCode(outer, 999) {
		t.Fatal("HasCode should not match a code nothing in the chain carries")
	}
}
