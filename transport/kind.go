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

package transport

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Kind identifies a transport implementation.
type Kind uint8

const (
	// KindUnknown is the zero value; it never validates.
	KindUnknown Kind = iota

	// KindCleartext is plain TCP.
	KindCleartext

	// KindTLS is TLS over TCP.
	KindTLS
)

// Parse returns the Kind named by s, or KindUnknown when the name is not
// recognised.
func Parse(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cleartext", "tcp", "plain":
		return KindCleartext
	case "tls", "secure":
		return KindTLS
	default:
		return KindUnknown
	}
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCleartext:
		return "cleartext"
	case KindTLS:
		return "tls"
	default:
		return "unknown"
	}
}

// IsValid reports whether the kind names a known transport.
func (k Kind) IsValid() bool {
	return k == KindCleartext || k == KindTLS
}

// MarshalText encodes the kind as its canonical name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(p []byte) error {
	if v := Parse(string(p)); v.IsValid() {
		*k = v
		return nil
	}
	return fmt.Errorf("invalid transport kind '%s'", string(p))
}

// MarshalJSON encodes the kind as a quoted name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte("\"" + k.String() + "\""), nil
}

// UnmarshalJSON decodes a quoted kind name.
func (k *Kind) UnmarshalJSON(p []byte) error {
	return k.UnmarshalText([]byte(strings.Trim(string(p), "\"")))
}

// MarshalYAML encodes the kind as its canonical name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML decodes a kind name node.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	return k.UnmarshalText([]byte(value.Value))
}

// ViperDecoderHook returns a mapstructure decode hook converting string
// config values into Kind, for use with viper unmarshalling.
func ViperDecoderHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var (
			z Kind
			s string
			k bool
		)

		if from.Kind() != reflect.String || to != reflect.TypeOf(z) {
			return data, nil
		}

		if s, k = data.(string); !k {
			return data, nil
		}

		if v := Parse(s); v.IsValid() {
			return v, nil
		}

		return nil, fmt.Errorf("invalid transport kind '%s'", s)
	}
}
