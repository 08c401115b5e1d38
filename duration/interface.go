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

// Package duration provides a duration type with day notation and the codec
// surface needed by configuration files: text, JSON, YAML, CBOR and a viper
// decode hook.
//
// Parsing accepts everything time.ParseDuration accepts, plus a leading day
// component (e.g. "2d12h30m"). Formatting emits the day component back when
// the duration spans at least one day.
package duration

import "time"

// Duration wraps time.Duration with day notation and config codecs.
type Duration time.Duration

// Parse parses a duration string with optional day component.
func Parse(s string) (Duration, error) {
	return parseString(s)
}

// ParseByte parses a byte slice with the same grammar as Parse.
func ParseByte(p []byte) (Duration, error) {
	return parseString(string(p))
}

// ParseDuration converts a standard time.Duration.
func ParseDuration(d time.Duration) Duration {
	return Duration(d)
}

// Seconds returns a Duration of i seconds.
func Seconds(i int64) Duration {
	return Duration(time.Duration(i) * time.Second)
}

// Minutes returns a Duration of i minutes.
func Minutes(i int64) Duration {
	return Duration(time.Duration(i) * time.Minute)
}

// Hours returns a Duration of i hours.
func Hours(i int64) Duration {
	return Duration(time.Duration(i) * time.Hour)
}

// Days returns a Duration of i days, a day being 24 hours.
func Days(i int64) Duration {
	return Duration(time.Duration(i) * 24 * time.Hour)
}
