// Package httpclient provides the HTTP client handles exercised by the
// benchmark strategies.
//
// A Client owns one transport and its connection pool. Creating a Client
// opens no connection; the first request dials lazily. Two acquisition modes
// are supported:
//
//   - a single explicitly owned Client from New, which the caller must Close
//     at process end
//   - a Pool that lazily builds one Client per logical name and owns their
//     lifecycle
//
// The Client exposes the response at three levels so callers can choose when
// the connection goes back to the pool:
//
//   - Do buffers the whole body and releases the connection before returning
//   - Send returns after the headers; the caller owns the body
//   - DoStream checks the status, then hands the live body to the caller
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://openlibrary.org",
//	    Timeout: 30 * time.Second,
//	})
//	defer client.Close(ctx)
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/search.json",
//	    Query:  map[string]string{"q": "tdd"},
//	})
package httpclient
