package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"
)

// Options configure the transports created by a Router.
type Options struct {
	BaseAddress string
	Username    string
	Password    string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Router resolves resources against the base address and hands them to the
// transport matching their scheme. Transports are created on first use.
type Router struct {
	base       *url.URL
	opts       Options
	transports map[string]Transport
}

func NewRouter(opts Options) (*Router, error) {
	base, err := url.Parse(opts.BaseAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", opts.BaseAddress, err)
	}
	if base.Scheme == "" {
		return nil, fmt.Errorf("server address %q has no scheme", opts.BaseAddress)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Router{base: base, opts: opts, transports: make(map[string]Transport)}, nil
}

// Register installs t for scheme, replacing any transport created before.
func (r *Router) Register(scheme string, t Transport) {
	r.transports[scheme] = t
}

// ForScheme returns the transport for scheme, creating it if needed.
func (r *Router) ForScheme(scheme string) (Transport, error) {
	if t, ok := r.transports[scheme]; ok {
		return t, nil
	}

	var t Transport
	switch scheme {
	case "ftp":
		t = NewFTPTransport(r.opts.Username, r.opts.Password, r.opts.Timeout, r.opts.Logger)
	case "http", "https":
		t = NewHTTPTransport(r.opts.Timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	r.transports[scheme] = t
	return t, nil
}

func (r *Router) route(resource string) (Transport, string, error) {
	u, err := Resolve(r.base, resource)
	if err != nil {
		return nil, "", err
	}
	t, err := r.ForScheme(u.Scheme)
	if err != nil {
		return nil, "", err
	}
	return t, u.String(), nil
}

func (r *Router) Size(ctx context.Context, resource string) (int64, error) {
	t, target, err := r.route(resource)
	if err != nil {
		return 0, err
	}
	return t.Size(ctx, target)
}

func (r *Router) Fetch(ctx context.Context, resource string, w io.Writer) (int64, error) {
	t, target, err := r.route(resource)
	if err != nil {
		return 0, err
	}
	return t.Fetch(ctx, target, w)
}

func (r *Router) Close() error {
	var firstErr error
	for scheme, t := range r.transports {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s transport: %w", scheme, err)
		}
	}
	return firstErr
}
