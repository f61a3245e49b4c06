package weverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerMinute caps steady-state throughput against the API.
	DefaultRequestsPerMinute = 60
	// DefaultBurst allows short spikes above the steady-state rate.
	DefaultBurst = 10
	// DefaultTimeout is the HTTP client timeout when none is supplied.
	DefaultTimeout = 30 * time.Second
)

// Response is the outcome of a single request as seen by the response gate:
// any status in the 200-499 band is handed back for interpretation, only
// 5xx and network failures become transport errors.
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// API is the wire transport collaborator. It issues requests, enforces the
// client-side rate limit and reads response bodies; it interprets nothing.
type API struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	debug      bool
}

// NewAPI builds a transport. A nil httpClient gets a default with a 30s
// timeout; non-positive rate settings fall back to the defaults.
func NewAPI(httpClient *http.Client, requestsPerMinute float64, burst int, logger *log.Logger) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &API{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst),
		logger:     logger,
	}
}

// SetDebug enables logging of raw response bodies.
func (a *API) SetDebug(debug bool) { a.debug = debug }

// Get issues an authenticated GET.
func (a *API) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return a.do(ctx, http.MethodGet, url, nil, "", headers)
}

// PostJSON issues a POST with a JSON body.
func (a *API) PostJSON(ctx context.Context, url string, payload any, headers map[string]string) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to encode request body: %w", err)}
	}
	return a.do(ctx, http.MethodPost, url, bytes.NewReader(body), "application/json", headers)
}

func (a *API) do(ctx context.Context, method, url string, body io.Reader, contentType string, headers map[string]string) (*Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, val := range headers {
		req.Header.Set(key, val)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Printf("error closing response body: %v", err)
		}
	}()

	buffer, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if a.debug {
		a.logger.Printf("%s %s -> %d: %s", method, url, resp.StatusCode, buffer)
	}

	// The 200-499 band is a valid outcome for the gate; 5xx never is.
	if resp.StatusCode >= 500 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}
	return &Response{StatusCode: resp.StatusCode, Body: buffer, URL: url}, nil
}

// Decode unmarshals a response body into v, rejecting malformed payloads
// before they can reach the cache.
func Decode[T any](resp *Response, v *T) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &ParseError{URL: resp.URL, Err: err}
	}
	return nil
}
