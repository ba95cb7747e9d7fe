package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/bufferbench/internal/httpclient"
	"github.com/torosent/bufferbench/internal/runner"
	"github.com/torosent/bufferbench/internal/tracing"
)

// httpFetcher implements runner.Fetcher with one GET per call.
type httpFetcher struct {
	client    *http.Client
	tracer    trace.Tracer
	propagate bool

	mu       sync.Mutex
	builders map[string]*httpclient.RequestBuilder
}

func newHTTPFetcher(client *http.Client, tracer trace.Tracer, propagate bool) *httpFetcher {
	return &httpFetcher{
		client:    client,
		tracer:    tracer,
		propagate: propagate,
		builders:  map[string]*httpclient.RequestBuilder{},
	}
}

// Fetch sends the request and reads the whole body. Latency covers both.
func (f *httpFetcher) Fetch(ctx context.Context, url string) (runner.Outcome, error) {
	ctx, span := tracing.StartRequestSpan(ctx, f.tracer, url)

	builder, err := f.builder(url)
	if err != nil {
		return f.fail(span, url, err)
	}
	req, err := builder.Build(ctx)
	if err != nil {
		return f.fail(span, url, err)
	}
	if f.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return f.fail(span, url, err)
	}
	body, err := httpclient.ReadBody(resp)
	latency := time.Since(start)
	if err != nil {
		return f.fail(span, url, err)
	}

	tracing.EndSpan(span, nil, attribute.Int("http.response.status_code", resp.StatusCode))
	return runner.Outcome{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Latency:    latency,
	}, nil
}

func (f *httpFetcher) fail(span trace.Span, url string, err error) (runner.Outcome, error) {
	connErr := &runner.ConnectionError{URL: url, Err: err}
	tracing.EndSpan(span, connErr)
	return runner.Outcome{URL: url}, connErr
}

func (f *httpFetcher) builder(url string) (*httpclient.RequestBuilder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.builders[url]; ok {
		return b, nil
	}
	b, err := httpclient.NewRequestBuilder(url)
	if err != nil {
		return nil, err
	}
	f.builders[url] = b
	return b, nil
}
