// Package provider implements a generic registry of named providers.
//
// A Registry maps logical names to factories and caches the instance each
// factory builds, so the first lookup of a name constructs it and every later
// lookup shares it:
//
//	reg := provider.NewRegistry[*httpclient.Client]()
//	reg.SetFallback(func(name string) (*httpclient.Client, error) { ... })
//	c, err := reg.GetOrCreate("openlibrary")
//
// Cached instances implementing Closeable are released by CloseAll.
package provider
