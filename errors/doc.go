// Package errors provides the structured error type used by benchhttp for
// harness-level failures: bad configuration, unknown strategies or jobs.
//
// Wire-level failures (non-2xx status, transport errors, undecodable bodies)
// are reported by the httpclient and search packages with their own types so
// callers can match them with errors.As.
package errors
