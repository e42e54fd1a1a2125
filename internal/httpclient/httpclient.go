// Package httpclient builds the shared HTTP client for all remote calls.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// New returns a client with sane connection-phase timeouts. There is no
// overall request timeout: media uploads on slow links may legitimately run
// long, and callers can always bound a call with a context deadline.
func New() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		ForceAttemptHTTP2: true,

		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: tr}
}
