package patcher

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DefaultHeaderTimeout bounds the wait for response headers. The body itself
// is not time-limited; a stalled transfer runs until its context is cancelled.
const DefaultHeaderTimeout = 30 * time.Second

// HTTPClient is used by a Fetcher that has no Client of its own.
var HTTPClient = NewHTTPClient(DefaultHeaderTimeout)

// NewHTTPClient returns a client that honours proxy settings from the
// environment and gives up if headers do not arrive within headerTimeout.
func NewHTTPClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// openHTTP issues the GET and returns as soon as the headers are in, leaving
// the body to be streamed by the caller.
func openHTTP(ctx context.Context, client *http.Client, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &TransferError{URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &TransferError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	length := resp.ContentLength
	if length < 0 {
		length = UnknownLength
	}
	return resp.Body, length, nil
}
