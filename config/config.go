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

// Package config loads and validates the reactor's runtime configuration:
// the listeners it binds, its poll cadence, and the three timer-wheel
// deadlines (inactivity, sleep, receive).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/tcpreactor/errors"
	libptc "github.com/nabbar/tcpreactor/network/protocol"
)

// Listener describes one address the reactor should bind and accept
// connections on at startup.
type Listener struct {
	Network libptc.NetworkProtocol `mapstructure:"network" validate:"required"`
	Address string                 `mapstructure:"address" validate:"required"`
}

// Config is the full set of tunables the reactor needs before its first
// Dispatch call. Every duration is stored as a time.Duration and converted
// to ticks at the point of use (see the tick package) — the reactor never
// stores a raw time.Duration internally.
type Config struct {
	// Listeners lists every address the reactor binds at startup. At least
	// one is required; RegisterServer can still add more at runtime.
	Listeners []Listener `mapstructure:"listeners" validate:"required,min=1,dive"`

	// PollTimeout bounds how long a single Dispatch call blocks in the
	// readiness primitive when no descriptor is ready and no timer is due.
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"required,gt=0"`

	// BufferSize sizes the per-connection read/write scratch buffer.
	BufferSize int `mapstructure:"buffer_size" validate:"required,gt=0"`

	// InactivityTimeout closes a connection that has been idle — no
	// readable or writable activity — for this long.
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout" validate:"gte=0"`

	// SleepTimeout is a delay for a connection's sleep timer (see
	// reactor.ArmSleep, which fires once regardless of activity). Load reads
	// and validates it; nothing in this module passes it to a reactor.
	SleepTimeout time.Duration `mapstructure:"sleep_timeout" validate:"gte=0"`

	// ReceiveTimeout is a delay for a connection's receive timer (see
	// reactor.ArmReceive). Its expiry is delivered to the handler as a
	// timeout event and does not by itself close the connection. Load reads
	// and validates it; nothing in this module passes it to a reactor.
	ReceiveTimeout time.Duration `mapstructure:"receive_timeout" validate:"gte=0"`
}

// Default returns a Config with the reactor's baseline tunables: a one
// second poll timeout, a 32KiB buffer, and all three timer durations zero
// (a zero InactivityTimeout leaves the inactivity wheel unarmed — see
// socket/reactor).
func Default() Config {
	return Config{
		PollTimeout: time.Second,
		BufferSize:  32 * 1024,
	}
}

// validate is package-scoped and safe for concurrent use: validator.New()
// builds its struct-tag cache once and the resulting Validate is
// goroutine-safe for repeated Struct calls.
var validate = validator.New()

// Validate checks every struct tag constraint on c and returns a coded
// configuration error describing the first violation, wrapping the
// underlying validator error as the parent.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return liberr.New(uint16(liberr.CodeConfiguration), "invalid reactor configuration", err)
	}
	return nil
}

// Load reads configuration from path (any format viper supports: yaml,
// json, toml, ...) merged over Default(), and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return cfg, liberr.New(uint16(liberr.CodeConfiguration), fmt.Sprintf("reading config file %q", path), err)
	}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		libptc.ViperDecoderHook(),
	)

	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return cfg, liberr.New(uint16(liberr.CodeConfiguration), fmt.Sprintf("decoding config file %q", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
