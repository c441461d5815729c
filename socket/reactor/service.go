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

import "github.com/nabbar/tcpreactor/socket/tick"

// service is component D: a listening endpoint's registration. It is
// created once by AddListener or RegisterServer and lives until the
// reactor is closed — unlike a connection record it is never compacted.
type service struct {
	fd       int
	hostAddr string
	hostPort string

	// three-callback style, nil when this service was registered through
	// RegisterServer instead.
	handlers Handlers

	// unified style, nil when this service was registered through
	// AddListener instead. Exactly one of handlers/unified is set.
	unified     UnifiedHandler
	handlerData interface{}

	userData          interface{}
	inactivityTimeout tick.Tick
}

func (s *service) isUnified() bool {
	return s.unified != nil
}
