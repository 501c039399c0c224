// Package strategy implements the request/response handling variants under
// comparison. Every strategy issues GET <url>, deserializes the body into a
// search.Result and releases the response on every exit path; they differ
// only in when the body is read and when the connection is given back.
//
//	full-buffer       body buffered by the client, released before decoding
//	headers-deferred  body decoded after headers, released right after decoding
//	headers-scoped    body decoded after headers, released when the call returns
//	stream-direct     status-checked stream decoded directly, released on return
//	pooled-client     stream-direct on a handle fetched from a Pool per call
//
// Failures propagate unchanged and are never retried:
// *httpclient.Error for non-2xx statuses and transport failures,
// *search.DecodeError for empty or malformed bodies.
package strategy
