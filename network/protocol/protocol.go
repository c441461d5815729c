/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package protocol names the address families and socket types a listener
// or dialer may bind to, with the (de)serialization glue config loaders
// need to accept them from JSON, YAML, TOML, plain text, or viper/mapstructure.
package protocol

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// NetworkProtocol identifies a net.Dial/net.Listen network argument.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

var names = map[NetworkProtocol]string{
	NetworkUnix:     "unix",
	NetworkTCP:      "tcp",
	NetworkTCP4:     "tcp4",
	NetworkTCP6:     "tcp6",
	NetworkUDP:      "udp",
	NetworkUDP4:     "udp4",
	NetworkUDP6:     "udp6",
	NetworkIP:       "ip",
	NetworkIP4:      "ip4",
	NetworkIP6:      "ip6",
	NetworkUnixGram: "unixgram",
}

var byName = func() map[string]NetworkProtocol {
	m := make(map[string]NetworkProtocol, len(names))
	for k, v := range names {
		m[v] = k
	}
	return m
}()

// String returns the net package network string ("tcp", "unix", ...), or
// the empty string for NetworkEmpty and any undefined value.
func (p NetworkProtocol) String() string {
	return names[p]
}

// Code is an alias of String kept for callers that think in terms of a
// wire/config code rather than a Go network string — the two never diverge.
func (p NetworkProtocol) Code() string {
	return p.String()
}

// Int returns the protocol's ordinal value.
func (p NetworkProtocol) Int() int {
	return int(p)
}

func (p NetworkProtocol) Int64() int64 {
	return int64(p)
}

func (p NetworkProtocol) Uint() uint {
	return uint(p)
}

func (p NetworkProtocol) Uint64() uint64 {
	return uint64(p)
}

// Parse resolves a case-insensitive network string ("TCP", "unix", ...)
// into a NetworkProtocol, returning NetworkEmpty if it is not recognized.
func Parse(s string) NetworkProtocol {
	if v, ok := byName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return NetworkEmpty
}

func (p NetworkProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *NetworkProtocol) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*p = Parse(s)
	return nil
}

func (p NetworkProtocol) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *NetworkProtocol) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	*p = Parse(s)
	return nil
}

func (p NetworkProtocol) MarshalTOML() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *NetworkProtocol) UnmarshalText(b []byte) error {
	*p = Parse(string(b))
	return nil
}

// ViperDecoderHook wires NetworkProtocol into a viper config loader's
// mapstructure decode chain, so a struct field of this type can be set from
// a plain string or an integer ordinal in the config source.
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	target := reflect.TypeOf(NetworkProtocol(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != target {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			return Parse(fmt.Sprintf("%v", data)), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return NetworkProtocol(reflect.ValueOf(data).Convert(reflect.TypeOf(uint8(0))).Uint()), nil
		default:
			return data, nil
		}
	}
}
