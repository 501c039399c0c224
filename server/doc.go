// Package server hosts Gin handlers on a plain HTTP listener with h2c, so
// both HTTP/1.1 and cleartext HTTP/2 clients can be benchmarked against it.
//
// Built-in middleware (server/middleware): panic recovery, request IDs and
// request logging. Built-in endpoints (server/endpoint): /alive and /version.
package server
