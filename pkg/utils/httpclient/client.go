// Package httpclient provides a small HTTP client wrapper with retries on
// server errors and W3C trace-context propagation.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/redfire-io/pcb-tutor/pkg/utils/json"
)

// Client wraps http.Client with bounded retries.
type Client struct {
	httpClient *http.Client
	maxRetries int
}

// NewClient returns a client with the given per-request timeout and retry
// budget. maxRetries counts retries, not attempts.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

// Do executes the request, retrying on transport errors and 5xx responses
// with linear backoff. The request body is buffered so it can be replayed;
// provider payloads are small enough for that to be fine.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.injectTraceContext(req)

	var replay func() io.ReadCloser
	if req.Body != nil {
		buf, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		_ = req.Body.Close()
		replay = func() io.ReadCloser { return io.NopCloser(bytes.NewReader(buf)) }
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if replay != nil {
			req.Body = replay()
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			if resp.StatusCode < http.StatusInternalServerError {
				return resp, nil
			}
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error, status code %d", resp.StatusCode)
		} else {
			lastErr = err
		}

		if i < c.maxRetries {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

// DoJSON executes the request and decodes a JSON response into v. Responses
// with status >= 400 become errors carrying the response body.
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// PostJSON marshals payload, POSTs it to url with Content-Type set, and
// decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, headers http.Header, payload, v interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range headers {
		for _, hv := range vs {
			req.Header.Add(k, hv)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.DoJSON(req, v)
}

// injectTraceContext copies the active span context into the outgoing
// request headers. No-op when no propagator or span is configured.
func (c *Client) injectTraceContext(req *http.Request) {
	if req == nil || req.Context() == nil {
		return
	}
	propagator := otel.GetTextMapPropagator()
	if propagator == nil {
		return
	}
	propagator.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}
