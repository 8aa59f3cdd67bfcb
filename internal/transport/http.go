package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "cpceek/1.0"

// HTTPTransport fetches resources over HTTP(S).
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

func (t *HTTPTransport) do(ctx context.Context, method, resource string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, resource, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", resource, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s failed with status: %d", method, resource, resp.StatusCode)
	}
	return resp, nil
}

func (t *HTTPTransport) Size(ctx context.Context, resource string) (int64, error) {
	resp, err := t.do(ctx, http.MethodHead, resource)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("server did not report a size for %s", resource)
	}
	return resp.ContentLength, nil
}

func (t *HTTPTransport) Fetch(ctx context.Context, resource string, w io.Writer) (int64, error) {
	resp, err := t.do(ctx, http.MethodGet, resource)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read %s: %w", resource, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return n, fmt.Errorf("%w: %s: got %d of %d bytes", ErrIncompleteTransfer, resource, n, resp.ContentLength)
	}
	return n, nil
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
