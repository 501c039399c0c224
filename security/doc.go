// Package security holds the TLS settings applied to benchmark client
// transports.
//
// Server certificate validation is either strict (the default) or bypassed,
// which lets a benchmark target a self-signed endpoint:
//
//	cfg := security.TLSConfig{Verification: security.VerificationBypass}
//	tlsConfig, err := cfg.Build()
package security
