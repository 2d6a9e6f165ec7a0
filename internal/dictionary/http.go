package dictionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fidde/fprime_openmct/pkg/models"
)

// maxDocumentSize bounds the body read from the dictionary endpoint.
const maxDocumentSize = 64 << 20

// HTTPLoader fetches the dictionary with a single GET per Load.
type HTTPLoader struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// HTTPOption configures an HTTPLoader.
type HTTPOption func(*HTTPLoader)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(l *HTTPLoader) {
		l.client = c
	}
}

// WithTimeout bounds each fetch. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) HTTPOption {
	return func(l *HTTPLoader) {
		l.timeout = d
	}
}

// NewHTTPLoader creates a loader for the document at url.
func NewHTTPLoader(url string, opts ...HTTPOption) *HTTPLoader {
	l := &HTTPLoader{
		url:    url,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// URL returns the document location.
func (l *HTTPLoader) URL() string {
	return l.url
}

// Load performs the GET and parses the body.
func (l *HTTPLoader) Load(ctx context.Context) (*models.Dictionary, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, &models.FetchError{Source: l.url, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &models.FetchError{Source: l.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &models.FetchError{Source: l.url, StatusCode: resp.StatusCode}
	}

	return Decode(io.LimitReader(resp.Body, maxDocumentSize), l.url)
}
