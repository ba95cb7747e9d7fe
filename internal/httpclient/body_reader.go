package httpclient

import (
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps how much of a response body is kept in memory.
const MaxBodyBytes = 4 << 20

// ReadBody consumes and closes resp.Body. At most MaxBodyBytes are returned;
// anything beyond that is discarded so the connection can be reused.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return nil, fmt.Errorf("drain body: %w", err)
	}
	return body, nil
}
