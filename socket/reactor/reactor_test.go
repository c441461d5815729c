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

//go:build linux

package reactor_test

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tcpreactor/socket/reactor"
)

// runLoop drives Dispatch on a dedicated goroutine, exactly the single
// cooperative owner the reactor's own doc comment requires, until stop is
// closed.
func runLoop(r *reactor.Reactor, stop <-chan struct{}) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if r.Dispatch(20) != 0 {
				return
			}
		}
	}()
	return &wg
}

var _ = Describe("Reactor", func() {
	var (
		react *reactor.Reactor
		stop  chan struct{}
		wg    *sync.WaitGroup
	)

	BeforeEach(func() {
		var err error
		react, err = reactor.New(reactor.Options{})
		Expect(err).ToNot(HaveOccurred())
		stop = make(chan struct{})
	})

	AfterEach(func() {
		close(stop)
		if wg != nil {
			wg.Wait()
		}
		Expect(react.Close()).ToNot(HaveOccurred())
	})

	Context("three-callback echo service", func() {
		It("writes back every byte a peer sends", func() {
			var gotNew, gotEnd atomic.Bool

			_, err := react.AddListener("127.0.0.1:0", 0, nil, reactor.Handlers{
				OnReceive: func(r *reactor.Reactor, slot int, userData interface{}, buf []byte) {
					_, werr := r.Write(slot, buf)
					Expect(werr).ToNot(HaveOccurred())
				},
				OnEvent: func(r *reactor.Reactor, slot int, userData *interface{}, kind reactor.EventKind, payload *reactor.Payload) {
					switch kind {
					case reactor.EventNewConnection:
						gotNew.Store(true)
					case reactor.EventEndConnection:
						gotEnd.Store(true)
					}
				},
			})
			Expect(err).ToNot(HaveOccurred())

			addr := listenerAddr(react)
			wg = runLoop(react, stop)

			conn, derr := net.DialTimeout("tcp", addr, time.Second)
			Expect(derr).ToNot(HaveOccurred())
			defer conn.Close()

			_, werr := conn.Write([]byte("ping"))
			Expect(werr).ToNot(HaveOccurred())

			buf := make([]byte, 4)
			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			n, rerr := conn.Read(buf)
			Expect(rerr).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("ping"))

			Eventually(gotNew.Load, time.Second).Should(BeTrue())

			Expect(conn.Close()).To(Succeed())
			Eventually(gotEnd.Load, time.Second).Should(BeTrue())
		})
	})

	Context("inactivity timeout", func() {
		It("closes a connection that never becomes active", func() {
			_, err := react.AddListener("127.0.0.1:0", 30*time.Millisecond, nil, reactor.Handlers{})
			Expect(err).ToNot(HaveOccurred())

			addr := listenerAddr(react)
			wg = runLoop(react, stop)

			conn, derr := net.DialTimeout("tcp", addr, time.Second)
			Expect(derr).ToNot(HaveOccurred())
			defer conn.Close()

			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			buf := make([]byte, 1)
			_, rerr := conn.Read(buf)
			Expect(rerr).To(HaveOccurred(), "idle connection should be closed by the inactivity wheel")
		})
	})

	Context("unified-event service", func() {
		It("delivers CREATED, READABLE and CLOSED through a single callback", func() {
			events := make(chan reactor.Event, 8)

			_, err := react.RegisterServer("127.0.0.1:0", 0, nil, func(r *reactor.Reactor, slot int, fd int, event reactor.Event, handlerData interface{}) int {
				events <- event
				if event == reactor.EventReadable {
					buf := make([]byte, 64)
					n, _ := r.Read(slot, buf)
					if n > 0 {
						return 1 // close after one message, exercising the CLOSED path
					}
				}
				return 0
			})
			Expect(err).ToNot(HaveOccurred())

			addr := listenerAddr(react)
			wg = runLoop(react, stop)

			conn, derr := net.DialTimeout("tcp", addr, time.Second)
			Expect(derr).ToNot(HaveOccurred())
			defer conn.Close()

			_, werr := conn.Write([]byte("x"))
			Expect(werr).ToNot(HaveOccurred())

			Eventually(events, time.Second).Should(Receive(Equal(reactor.EventCreated)))
			Eventually(events, time.Second).Should(Receive(Equal(reactor.EventReadable)))
			Eventually(events, time.Second).Should(Receive(Equal(reactor.EventClosed)))
		})
	})
})

// listenerAddr reads the effective bound address of the first registered
// listener (always slot 0 in these tests, one listener per reactor).
func listenerAddr(r *reactor.Reactor) string {
	_, _, hostAddr, hostPort := r.GetAddrs(0)
	return net.JoinHostPort(hostAddr, hostPort)
}
