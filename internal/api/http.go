package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

var defaultClient = &http.Client{Timeout: 10 * time.Second}

// HTTPFetcher issues a GET for each key and decodes the JSON body into T.
type HTTPFetcher[T any] struct {
	client  *http.Client
	baseURL string
	header  http.Header
	logger  log.Interface
}

type HTTPOption func(*httpOptions)

type httpOptions struct {
	client  *http.Client
	baseURL string
	header  http.Header
	logger  log.Interface
}

// WithClient sets the HTTP client. The default has a 10s timeout.
func WithClient(c *http.Client) HTTPOption {
	return func(o *httpOptions) { o.client = c }
}

// WithBaseURL prefixes keys that are not absolute URLs.
func WithBaseURL(base string) HTTPOption {
	return func(o *httpOptions) { o.baseURL = strings.TrimRight(base, "/") }
}

// WithHeader adds a header sent with every request.
func WithHeader(name, value string) HTTPOption {
	return func(o *httpOptions) { o.header.Add(name, value) }
}

func WithHTTPLogger(l log.Interface) HTTPOption {
	return func(o *httpOptions) { o.logger = l }
}

func NewHTTPFetcher[T any](opts ...HTTPOption) *HTTPFetcher[T] {
	o := httpOptions{
		client: defaultClient,
		header: make(http.Header),
		logger: log.Log,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &HTTPFetcher[T]{
		client:  o.client,
		baseURL: o.baseURL,
		header:  o.header,
		logger:  o.logger,
	}
}

func (f *HTTPFetcher[T]) Fetch(ctx context.Context, key string) (T, error) {
	var result T
	if key == "" {
		return result, &TransportError{Key: key, Op: OpRequest, Err: ErrEmptyKey}
	}

	target := f.resolve(key)
	f.logger.WithField("key", key).WithField("url", target).Info("fetching")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return result, &TransportError{Key: key, Op: OpRequest, Err: err}
	}
	for name, values := range f.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return result, &TransportError{Key: key, Op: OpRequest, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, &TransportError{Key: key, Op: OpRequest, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return result, &TransportError{
			Key:        key,
			Op:         OpStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrStatus, strings.TrimSpace(string(body))),
		}
	}

	if err := json.Unmarshal(body, &result); err != nil {
		var zero T
		return zero, &TransportError{Key: key, Op: OpDecode, Err: err}
	}
	return result, nil
}

// resolve joins key onto the base URL unless key already names a scheme.
func (f *HTTPFetcher[T]) resolve(key string) string {
	if f.baseURL == "" || strings.Contains(key, "://") {
		return key
	}
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return f.baseURL + key
}
