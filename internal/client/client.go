// Package client holds typed HTTP clients for the SwiftMart sibling
// services. Every call carries a context, an explicit client timeout, and
// either the end user's bearer token or the internal API key.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// internalKeyHeader guards service-to-service endpoints.
const internalKeyHeader = "X-Internal-API-Key"

type baseClient struct {
	baseURL    string
	httpClient *http.Client
}

func newBaseClient(baseURL string, timeout time.Duration) baseClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return baseClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// doJSON performs a JSON request. A non-nil body is marshalled; a non-nil out
// receives the decoded response body on 2xx. The http.Response is returned
// for status inspection even on non-2xx.
func (c baseClient) doJSON(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, raw, fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return resp, raw, nil
}

func bearerHeader(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func internalHeader(apiKey string) map[string]string {
	return map[string]string{internalKeyHeader: apiKey}
}

// errorMessage extracts the {message} field of an error body, falling back
// to a generic description.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}
