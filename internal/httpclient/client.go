package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

const userAgent = "bufferbench"

// RequestBuilder produces GET requests for one target URL. Every request
// carries the bufferbench User-Agent and nothing else.
type RequestBuilder struct {
	target  string
	headers http.Header
}

func NewRequestBuilder(target string) (*RequestBuilder, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	hdr := http.Header{}
	hdr.Set("User-Agent", userAgent)
	return &RequestBuilder{target: target, headers: hdr}, nil
}

func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.target, nil)
	if err != nil {
		return nil, err
	}
	req.Header = b.headers.Clone()
	return req, nil
}

// NewClient returns a client whose pool keeps up to maxConnsPerHost idle
// connections per host, so a full concurrency window can be reused across
// trials without redialing.
func NewClient(timeout time.Duration, maxConnsPerHost int) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	idlePerHost := 32
	if maxConnsPerHost > idlePerHost {
		idlePerHost = maxConnsPerHost
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          idlePerHost * 4,
		MaxIdleConnsPerHost:   idlePerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
