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
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
)

// CertPair points at a PEM certificate and its PEM private key on disk.
type CertPair struct {
	Cert string `mapstructure:"cert" json:"cert" yaml:"cert"`
	Key  string `mapstructure:"key" json:"key" yaml:"key"`
}

// TLSOptions is the TLS material and policy of the tls transport.
type TLSOptions struct {
	// Enabled activates the TLS layer.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	// Certs are the server certificate pairs; at least one is required.
	Certs []CertPair `mapstructure:"certs" json:"certs" yaml:"certs"`

	// ClientCAs are PEM bundles of CAs allowed to sign client
	// certificates. Setting any enables client certificate verification.
	ClientCAs []string `mapstructure:"client_cas" json:"client_cas" yaml:"client_cas"`

	// RequireClientCert makes the client certificate mandatory when
	// ClientCAs is set.
	RequireClientCert bool `mapstructure:"require_client_cert" json:"require_client_cert" yaml:"require_client_cert"`

	// ALPN is the protocol list announced during the handshake.
	ALPN []string `mapstructure:"alpn" json:"alpn" yaml:"alpn"`

	// CipherSuites restricts TLS 1.2 cipher suites, by IANA name.
	CipherSuites []string `mapstructure:"cipher_suites" json:"cipher_suites" yaml:"cipher_suites"`

	// VersionMin names the minimum protocol version, e.g. "1.2". Empty
	// means TLS 1.2.
	VersionMin string `mapstructure:"version_min" json:"version_min" yaml:"version_min"`

	// VersionMax names the maximum protocol version. Empty means the
	// highest supported.
	VersionMax string `mapstructure:"version_max" json:"version_max" yaml:"version_max"`
}

// TLSConfig loads the configured material and returns a server-side TLS
// configuration. Any unreadable or unparsable material is a configuration
// error wrapping ErrInvalidTLSConfig.
func (o TLSOptions) TLSConfig() (*tls.Config, error) {
	if len(o.Certs) < 1 {
		return nil, fmt.Errorf("%w: no certificate configured", ErrInvalidTLSConfig)
	}

	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if o.VersionMin != "" {
		v, err := parseVersion(o.VersionMin)
		if err != nil {
			return nil, err
		}
		cfg.MinVersion = v
	}

	if o.VersionMax != "" {
		v, err := parseVersion(o.VersionMax)
		if err != nil {
			return nil, err
		}
		cfg.MaxVersion = v
	}

	if len(o.CipherSuites) > 0 {
		sts, err := parseCipherSuites(o.CipherSuites)
		if err != nil {
			return nil, err
		}
		cfg.CipherSuites = sts
	}

	for _, p := range o.Certs {
		crt, err := tls.LoadX509KeyPair(p.Cert, p.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: loading pair '%s': %v", ErrInvalidTLSConfig, p.Cert, err)
		}
		cfg.Certificates = append(cfg.Certificates, crt)
	}

	if len(o.ClientCAs) > 0 {
		pol := x509.NewCertPool()

		for _, f := range o.ClientCAs {
			pem, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("%w: reading client CA '%s': %v", ErrInvalidTLSConfig, f, err)
			}
			if !pol.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("%w: no certificate in client CA '%s'", ErrInvalidTLSConfig, f)
			}
		}

		cfg.ClientCAs = pol
		cfg.ClientAuth = tls.VerifyClientCertIfGiven

		if o.RequireClientCert {
			cfg.ClientAuth = tls.RequireAndVerifyClientCert
		}
	}

	if len(o.ALPN) > 0 {
		cfg.NextProtos = append([]string{}, o.ALPN...)
	}

	return cfg, nil
}

func parseVersion(s string) (uint16, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "tls")) {
	case "1.0", "10":
		return tls.VersionTLS10, nil
	case "1.1", "11":
		return tls.VersionTLS11, nil
	case "1.2", "12":
		return tls.VersionTLS12, nil
	case "1.3", "13":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("%w: unknown TLS version '%s'", ErrInvalidTLSConfig, s)
	}
}

func parseCipherSuites(names []string) ([]uint16, error) {
	var res = make([]uint16, 0, len(names))

	for _, n := range names {
		var fnd bool

		for _, c := range tls.CipherSuites() {
			if strings.EqualFold(c.Name, strings.TrimSpace(n)) {
				res = append(res, c.ID)
				fnd = true
				break
			}
		}

		if !fnd {
			return nil, fmt.Errorf("%w: unknown cipher suite '%s'", ErrInvalidTLSConfig, n)
		}
	}

	return res, nil
}
