package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize caps decoded response bodies (1 MB).
const maxResponseSize = 1 << 20

// CredentialSource supplies the bearer credential for outbound requests.
// It is consulted fresh on every call, so a logout takes effect on the very
// next request.
type CredentialSource interface {
	Read() string
}

// MetricsRecorder is an optional hook for recording request-level metrics.
type MetricsRecorder interface {
	IncRequest(operation string, statusCode int)
	ObserveDuration(operation string, seconds float64)
}

// APIError is one entry of the envelope's error list. The details are kept
// for logging but are never surfaced to the user.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the uniform response envelope every backend endpoint uses.
// Consumers branch only on Success and Data.
type Result[T any] struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    *T         `json:"data"`
	Error   []APIError `json:"error"`
}

// Client issues JSON requests against the API base URL, injecting the
// bearer credential read from the credential source at call time.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	metrics MetricsRecorder
}

// New creates a Client for the given base URL. creds may be nil for a
// client that never authenticates.
func New(baseURL string, timeout time.Duration, creds CredentialSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
	}
}

// SetMetrics sets the optional metrics recorder.
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// Do sends a request and decodes the uniform envelope. operation names the
// logical API call for metrics and error context. query may be nil; body,
// when non-nil, is JSON-encoded. A non-nil error is always a transport
// failure; business failures come back as Success=false on the envelope.
func Do[T any](ctx context.Context, c *Client, operation, method, path string, query url.Values, body any) (*Result[T], error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", operation, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", operation, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	// Credential is read at call time, not at client construction.
	if c.creds != nil {
		if token := c.creds.Read(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)

	if c.metrics != nil {
		c.metrics.ObserveDuration(operation, latency.Seconds())
	}

	if err != nil {
		if c.metrics != nil {
			c.metrics.IncRequest(operation, 0)
		}
		return nil, fmt.Errorf("%s: %s: %w", operation, ClassifyError(err), err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.IncRequest(operation, resp.StatusCode)
	}

	var result Result[T]
	lr := io.LimitReader(resp.Body, maxResponseSize)
	if err := json.NewDecoder(lr).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decoding response (status %d): %w", operation, resp.StatusCode, err)
	}

	return &result, nil
}
