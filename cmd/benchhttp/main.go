// Package main provides the benchhttp command line.
//
// benchhttp measures five ways of issuing an HTTP GET and decoding the JSON
// search response, under several GC configurations.
//
// Usage:
//
//	benchhttp run [--strategy name]... [--job id]...
//	benchhttp serve [--docs n | --file path]
//	benchhttp version
//
// See --help for all available options.
package main

func main() {
	Execute()
}
