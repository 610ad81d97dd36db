package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/searchbench/pkg/middleware"
)

const (
	defaultTimeout      = 30 * time.Second
	maxErrorBodyLen     = 512
	// defaultMaxIdleConns matches the runner's default worker count.
	defaultMaxIdleConns = 20
)

// restExecutor holds what every JSON-over-HTTP provider needs.
type restExecutor struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client

	// transport is nil when the caller supplied its own client.
	transport *http.Transport
}

type Option func(*restExecutor)

// WithBaseURL points the executor at a different host, e.g. a proxy or a test server.
func WithBaseURL(baseURL string) Option {
	return func(e *restExecutor) {
		if baseURL != "" {
			e.baseURL = baseURL
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(e *restExecutor) {
		e.client = client
		e.transport = nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(e *restExecutor) {
		if timeout > 0 {
			e.client = &http.Client{Timeout: timeout, Transport: e.client.Transport}
		}
	}
}

// WithMaxIdleConns keeps up to n connections to the provider alive, so
// concurrent workers reuse warm connections instead of dialing inside the
// latency window. It should be at least the number of workers.
func WithMaxIdleConns(n int) Option {
	return func(e *restExecutor) {
		if e.transport == nil || n <= e.transport.MaxIdleConnsPerHost {
			return
		}
		e.transport.MaxIdleConnsPerHost = n
		if e.transport.MaxIdleConns < n {
			e.transport.MaxIdleConns = n
		}
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = defaultMaxIdleConns
	if t.MaxIdleConns < defaultMaxIdleConns {
		t.MaxIdleConns = defaultMaxIdleConns
	}
	return t
}

func newRestExecutor(name, baseURL, apiKey string, opts []Option) restExecutor {
	transport := newTransport()
	e := restExecutor{
		name:      name,
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: defaultTimeout, Transport: transport},
		transport: transport,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e *restExecutor) Name() string { return e.name }
func (e *restExecutor) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *restExecutor) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s marshal request: %w", e.name, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s create request: %w", e.name, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// roundTrip sends req and reads the full body. Only the send and the body
// read are inside the latency window; the request is logged afterwards.
func (e *restExecutor) roundTrip(req *http.Request) ([]byte, Execution, error) {
	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		exec := Execution{Latency: time.Since(start)}
		middleware.LogRoundTrip(req, 0, exec.Latency, err)
		return nil, exec, fmt.Errorf("%s request: %w", e.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	exec := Execution{StatusCode: resp.StatusCode, Latency: time.Since(start)}
	middleware.LogRoundTrip(req, resp.StatusCode, exec.Latency, err)
	if err != nil {
		return nil, exec, fmt.Errorf("%s read response: %w", e.name, err)
	}
	return body, exec, nil
}

func (e *restExecutor) statusError(status int, body []byte) error {
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	return fmt.Errorf("%s status %d: %s", e.name, status, string(body))
}

func (e *restExecutor) decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s parse response: %w", e.name, err)
	}
	return nil
}

// urlResult is the common result shape of the hosted providers.
type urlResult struct {
	URL string `json:"url"`
}

func collectURLs(results []urlResult) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return urls
}
