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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nabbar/tcpreactor/config"
	"github.com/nabbar/tcpreactor/network/protocol"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Listeners = []config.Listener{{Network: protocol.NetworkTCP, Address: "127.0.0.1:9000"}}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default()+one listener should validate, got: %v", err)
	}
}

func TestValidateRejectsMissingListeners(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a config with no listeners")
	}
}

func TestValidateRejectsZeroPollTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Listeners = []config.Listener{{Network: protocol.NetworkTCP, Address: "127.0.0.1:9000"}}
	cfg.PollTimeout = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a zero poll timeout")
	}
}

func TestLoadMergesOverDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reactor.yaml")

	body := "" +
		"listeners:\n" +
		"  - network: tcp\n" +
		"    address: 127.0.0.1:9000\n" +
		"poll_timeout: 250ms\n" +
		"inactivity_timeout: 30s\n"

	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) = %v", path, err)
	}

	if len(cfg.Listeners) != 1 || cfg.Listeners[0].Address != "127.0.0.1:9000" {
		t.Fatalf("unexpected listeners: %+v", cfg.Listeners)
	}
	if cfg.PollTimeout != 250*time.Millisecond {
		t.Fatalf("PollTimeout = %v, want 250ms", cfg.PollTimeout)
	}
	if cfg.InactivityTimeout != 30*time.Second {
		t.Fatalf("InactivityTimeout = %v, want 30s", cfg.InactivityTimeout)
	}
	if cfg.BufferSize != config.Default().BufferSize {
		t.Fatalf("BufferSize should keep the default when unset, got %d", cfg.BufferSize)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}
