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

package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	libdur "github.com/sabouaram/socksrv/duration"
	scktpt "github.com/sabouaram/socksrv/transport"
)

// DecoderHooks returns the mapstructure decode hooks needed to unmarshal a
// Server configuration from viper: duration strings and transport kind
// names.
func DecoderHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		libdur.ViperDecoderHook(),
		scktpt.ViperDecoderHook(),
	))
}

// NewViper unmarshals and validates a Server configuration from the given
// viper key. An empty key unmarshals the viper root.
func NewViper(vpr *viper.Viper, key string) (Server, error) {
	var cfg Server

	if vpr == nil {
		return cfg, ErrInvalidInstance
	}

	var err error
	if key == "" {
		err = vpr.Unmarshal(&cfg, DecoderHooks())
	} else {
		err = vpr.UnmarshalKey(key, &cfg, DecoderHooks())
	}

	if err != nil {
		return cfg, err
	}

	if err = cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
