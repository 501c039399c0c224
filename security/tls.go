package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Server certificate validation modes.
const (
	VerificationStrict = "strict"
	VerificationBypass = "bypass"
)

// TLSConfig holds the TLS settings of a client transport.
type TLSConfig struct {
	// Verification selects server certificate validation: "strict" or "bypass".
	// Empty means strict.
	Verification string `yaml:"verification" mapstructure:"verification" validate:"omitempty,oneof=strict bypass"`

	// CAFile is the path to an extra CA certificate for verifying the server.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// ServerName overrides the server name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version (e.g., tls.VersionTLS12).
	// Defaults to TLS 1.2 if not set.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Bypass reports whether server certificate validation is disabled.
func (c *TLSConfig) Bypass() bool {
	return c != nil && c.Verification == VerificationBypass
}

// Build creates a *tls.Config from the configuration.
// Returns nil if nothing differs from the transport defaults.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil || !c.hasSettings() {
		return nil, nil
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.Bypass(), //nolint:gosec // opt-in via verification: bypass
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}

	if err := c.loadCA(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Verification {
	case "", VerificationStrict, VerificationBypass:
	default:
		return fmt.Errorf("security/tls: verification must be %q or %q (got: %q)",
			VerificationStrict, VerificationBypass, c.Verification)
	}
	if c.Bypass() && c.CAFile != "" {
		return fmt.Errorf("security/tls: ca_file has no effect when verification is bypassed")
	}
	return nil
}

func (c *TLSConfig) hasSettings() bool {
	return c.Bypass() || c.CAFile != "" || c.ServerName != "" || c.MinVersion != 0
}

// loadCA loads the CA certificate into the TLS config.
func (c *TLSConfig) loadCA(cfg *tls.Config) error {
	if c.CAFile == "" {
		return nil
	}
	ca, err := os.ReadFile(c.CAFile)
	if err != nil {
		return fmt.Errorf("security/tls: failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return fmt.Errorf("security/tls: failed to parse CA certificate")
	}
	cfg.RootCAs = pool
	return nil
}
