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

//go:build linux

package tcp_test

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/tcpreactor/socket"
	tcp "github.com/nabbar/tcpreactor/socket/server/tcp"
)

var _ = Describe("ServerTcp", func() {
	var (
		srv    tcp.ServerTcp
		cancel context.CancelFunc
		addr   = "127.0.0.1:18372"
	)

	AfterEach(func() {
		if cancel != nil {
			cancel()
		}
		if srv != nil {
			_ = srv.Close()
		}
	})

	It("rejects a nil handler", func() {
		_, err := tcp.New(nil, nil, tcp.Config{Address: addr})
		Expect(err).To(Equal(tcp.ErrNoHandler))
	})

	It("rejects a config with no address", func() {
		_, err := tcp.New(nil, func(ctx socket.Context) {}, tcp.Config{})
		Expect(err).To(Equal(tcp.ErrInvalidAddress))
	})

	It("echoes and reports connection lifecycle through the handler", func() {
		var seen atomic.Int64

		handler := func(ctx socket.Context) {
			buf := make([]byte, 64)
			n, err := ctx.Read(buf)
			if err != nil || n == 0 {
				return
			}
			seen.Add(1)
			_, _ = ctx.Write(buf[:n])
		}

		var err error
		srv, err = tcp.New(nil, handler, tcp.Config{
			Address:     addr,
			PollTimeout: 20 * time.Millisecond,
		})
		Expect(err).ToNot(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())

		go func() {
			_ = srv.Listen(ctx)
		}()

		Eventually(srv.IsRunning, time.Second).Should(BeTrue())

		conn, derr := net.DialTimeout("tcp", addr, time.Second)
		Expect(derr).ToNot(HaveOccurred())
		defer conn.Close()

		_, werr := conn.Write([]byte("hello"))
		Expect(werr).ToNot(HaveOccurred())

		buf := make([]byte, 5)
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		n, rerr := conn.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("hello"))

		Eventually(func() int64 { return seen.Load() }, time.Second).Should(Equal(int64(1)))
		Eventually(func() int64 { return srv.OpenConnections() }, time.Second).Should(Equal(int64(1)))

		Expect(conn.Close()).To(Succeed())
		Eventually(func() int64 { return srv.OpenConnections() }, time.Second).Should(Equal(int64(0)))
	})

	It("refuses a second concurrent Listen", func() {
		var err error
		srv, err = tcp.New(nil, func(ctx socket.Context) {}, tcp.Config{Address: "127.0.0.1:18373"})
		Expect(err).ToNot(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go func() {
			_ = srv.Listen(ctx)
		}()
		Eventually(srv.IsRunning, time.Second).Should(BeTrue())

		Expect(srv.Listen(context.Background())).To(Equal(tcp.ErrAlreadyRunning))
	})
})
