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

// Package serve wires a loaded configuration into a running reactor: one
// unified-event echo service per configured TCP listener, logged and
// instrumented, until its context is canceled.
package serve

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/nabbar/tcpreactor/config"
	"github.com/nabbar/tcpreactor/logger"
	"github.com/nabbar/tcpreactor/metrics"
	libptc "github.com/nabbar/tcpreactor/network/protocol"
	"github.com/nabbar/tcpreactor/socket/reactor"
)

// Options configures one run of the reactor daemon.
type Options struct {
	ConfigPath string
	LogLevel   string
	Registerer prometheus.Registerer
}

// Run loads cfg, registers every TCP listener it names, and drains the
// dispatch loop until ctx is canceled. Non-TCP listeners are logged and
// skipped: the reactor core only ever speaks TCP.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr)
	if lvl, lerr := logrus.ParseLevel(opts.LogLevel); lerr == nil {
		log.SetLevel(lvl)
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metricsRegistry := metrics.NewRegistry(reg)

	react, err := reactor.New(reactor.Options{
		BufferSize: cfg.BufferSize,
		Log:        log,
		Metrics:    metricsRegistry,
		OnError: func(errs ...error) {
			for _, e := range errs {
				log.Error("reactor error: %s", e.Error())
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = react.Close()
	}()

	registered := 0
	for _, l := range cfg.Listeners {
		if l.Network != libptc.NetworkTCP && l.Network != libptc.NetworkTCP4 && l.Network != libptc.NetworkTCP6 {
			log.Warning("skipping listener %s: network %q is not TCP", l.Address, l.Network.String())
			continue
		}

		token := uuid.New()
		slot, aerr := react.RegisterServer(l.Address, cfg.InactivityTimeout, token.String(), echoHandler)
		if aerr != nil {
			return fmt.Errorf("listener %s: %w", l.Address, aerr)
		}
		log.Info("listener %s bound at slot %d (correlation id %s)", l.Address, slot, token.String())
		registered++
	}
	if registered == 0 {
		return fmt.Errorf("no TCP listener registered from %q", opts.ConfigPath)
	}

	pollMs := int(cfg.PollTimeout / time.Millisecond)
	if pollMs <= 0 {
		pollMs = 1000
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if react.Dispatch(pollMs) != 0 {
			return fmt.Errorf("reactor dispatch failed, poller is no longer usable")
		}
	}
}

// echoHandler is the daemon's default unified-event handler: it writes back
// every byte it receives and otherwise ignores lifecycle events.
func echoHandler(r *reactor.Reactor, slot int, fd int, event reactor.Event, handlerData interface{}) int {
	if event != reactor.EventReadable {
		return 0
	}
	buf := make([]byte, 4096)
	n, err := r.Read(slot, buf)
	if err != nil || n == 0 {
		return 0
	}
	_, _ = r.Write(slot, buf[:n])
	return 0
}
