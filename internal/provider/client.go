// Package provider holds the HTTP clients for the dashboard's external data
// sources: weather, time-of-use tariff history and DISCOM directory.
//
// Calls are single-shot: no retry, no backoff. The per-request timeout comes
// from the http.Client.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

type baseClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newBaseClient(baseURL, token string, hc *http.Client) baseClient {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return baseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

// getJSON performs a GET and decodes the JSON body into out. It returns the
// raw body as well for callers that keep it.
func (c baseClient) getJSON(ctx context.Context, url string, out any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("parsing JSON from %s: %w", url, err)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
