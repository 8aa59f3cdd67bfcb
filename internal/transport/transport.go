package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

var (
	ErrUnsupportedScheme  = errors.New("unsupported transport scheme")
	ErrIncompleteTransfer = errors.New("transfer did not complete")
)

// Transport fetches remote resources and answers size queries.
type Transport interface {
	// Size returns the remote size of resource in bytes.
	Size(ctx context.Context, resource string) (int64, error)

	// Fetch streams resource into w and returns the number of bytes written.
	// An error means the transfer must not be considered complete.
	Fetch(ctx context.Context, resource string, w io.Writer) (int64, error)

	Close() error
}

// Resolve turns a resource reference into an absolute URL. Absolute URLs are
// returned as is, bare paths are resolved against base.
func Resolve(base *url.URL, resource string) (*url.URL, error) {
	resource = strings.TrimSpace(strings.ReplaceAll(resource, "\\", "/"))
	if resource == "" {
		return nil, fmt.Errorf("empty resource")
	}

	// File names may carry '#', '?' or '%', so only the scheme and authority
	// go through the URL parser and the path is kept as written.
	if scheme, rest, ok := strings.Cut(resource, "://"); ok {
		authority, p, hasPath := strings.Cut(rest, "/")
		u, err := url.Parse(scheme + "://" + authority)
		if err != nil {
			return nil, fmt.Errorf("invalid resource %q: %w", resource, err)
		}
		if hasPath {
			u.Path = "/" + p
		}
		return u, nil
	}

	if base == nil {
		return nil, fmt.Errorf("relative resource %q without a base address", resource)
	}
	return base.ResolveReference(&url.URL{Path: resource}), nil
}
