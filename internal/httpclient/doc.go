// Package httpclient builds the GET requests and pooled HTTP client used to
// benchmark a target.
//
// Use [NewRequestBuilder] once per target URL and [RequestBuilder.Build] per
// request:
//
//	builder, err := httpclient.NewRequestBuilder("http://localhost:8080/")
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx)
//
// [NewClient] sizes the idle pool for the widest concurrency window in a run.
// [ReadBody] consumes a response body completely so the connection returns to
// the pool before the next request in the window starts.
package httpclient
