package platform

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout is the per-request timeout used by adapter HTTP clients.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent on every adapter request.
const UserAgent = "reviewr/1.0"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// NewHTTPClient returns the HTTP client adapters use by default. Requests
// are traced through the global OpenTelemetry provider, which is a no-op
// unless telemetry is enabled.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Do sends req with client and returns the body of a 2xx response. Failures
// are returned as *RequestError tagged with service.
func Do(client *http.Client, service string, req *http.Request) ([]byte, error) {
	body, _, err := DoWithHeader(client, service, req)
	return body, err
}

// DoWithHeader is Do that also returns the response headers, for services
// that paginate through them.
func DoWithHeader(client *http.Client, service string, req *http.Request) ([]byte, http.Header, error) {
	apiURL := req.URL.String()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, TransportError(service, apiURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, TransportError(service, apiURL, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.Header, StatusError(service, apiURL, resp.StatusCode, body)
	}
	return body, resp.Header, nil
}
