// Package search defines the Open Library search response shape and its
// JSON decoding.
//
// Fields absent from the payload keep their zero value. An empty or
// malformed body is always an error, never a zero Result.
package search
