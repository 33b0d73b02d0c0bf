package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"luxetravel/entity"
)

// Each backend call is bounded; a timeout is handled like any other failure.
const requestTimeout = 10 * time.Second

// NewHTTPClient returns the shared client used by both gateways, with the
// request timeout and trace-propagating transport applied.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type caller struct {
	baseURL string
	client  *http.Client
}

// do performs one JSON request. A transport-level failure (including timeout)
// maps to ErrServiceUnavailable; status handling is left to the endpoint.
func (c caller) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, entity.ErrServiceUnavailable, err)
	}
	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// statusError classifies an unexpected status on an authenticated call.
func statusError(op string, status int) error {
	switch {
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: status %d", op, entity.ErrServiceUnavailable, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, entity.ErrSessionExpired)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	default:
		return fmt.Errorf("%s: unexpected status code %d", op, status)
	}
}

// loginStatusError classifies an unexpected status on a login call, where a
// rejection means bad credentials rather than a dead session.
func loginStatusError(op string, status int) error {
	switch {
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: status %d", op, entity.ErrServiceUnavailable, status)
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, entity.ErrInvalidCredentials)
	default:
		return fmt.Errorf("%s: unexpected status code %d", op, status)
	}
}
