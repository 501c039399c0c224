// Package config loads benchhttp configuration.
//
// Values come from a YAML file (explicit, or discovered as
// ./cmd/benchhttp/config.yml, ./config/config.yml or ./config.yml), then
// from the environment. Variables prefixed BENCHHTTP_ override file values,
// with underscores standing for nesting:
//
//	BENCHHTTP_HTTP_TIMEOUT=5s
//	BENCHHTTP_BENCH_STRATEGIES=stream-direct,full-buffer
//
// A .env file next to the config file is loaded into the environment first.
package config
