package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

const defaultFTPPort = "21"

// FTPTransport talks to FTP servers, keeping one logged-in control connection
// per host. A connection that fails is dropped and re-dialed on next use.
type FTPTransport struct {
	username string
	password string
	timeout  time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[string]*ftp.ServerConn
}

func NewFTPTransport(username, password string, timeout time.Duration, logger *slog.Logger) *FTPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &FTPTransport{
		username: username,
		password: password,
		timeout:  timeout,
		logger:   logger,
		conns:    make(map[string]*ftp.ServerConn),
	}
}

func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	return u.Hostname() + ":" + defaultFTPPort
}

func (t *FTPTransport) conn(ctx context.Context, u *url.URL) (*ftp.ServerConn, error) {
	addr := hostPort(u)
	if c, ok := t.conns[addr]; ok {
		return c, nil
	}

	t.logger.Debug("connecting to ftp server", "addr", addr)
	c, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(t.timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	username, password := t.username, t.password
	if u.User != nil {
		username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			password = p
		}
	}
	if err := c.Login(username, password); err != nil {
		c.Quit()
		return nil, fmt.Errorf("failed to log in to %s: %w", addr, err)
	}

	t.conns[addr] = c
	return c, nil
}

func (t *FTPTransport) drop(u *url.URL) {
	addr := hostPort(u)
	if c, ok := t.conns[addr]; ok {
		c.Quit()
		delete(t.conns, addr)
	}
}

func (t *FTPTransport) parse(resource string) (*url.URL, error) {
	u, err := url.Parse(resource)
	if err != nil {
		return nil, fmt.Errorf("invalid ftp resource %q: %w", resource, err)
	}
	if u.Scheme != "ftp" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	return u, nil
}

func (t *FTPTransport) Size(ctx context.Context, resource string) (int64, error) {
	u, err := t.parse(resource)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.conn(ctx, u)
	if err != nil {
		return 0, err
	}

	size, err := c.FileSize(u.Path)
	if err != nil {
		t.drop(u)
		return 0, fmt.Errorf("failed to query size of %s: %w", resource, err)
	}
	return size, nil
}

func (t *FTPTransport) Fetch(ctx context.Context, resource string, w io.Writer) (int64, error) {
	u, err := t.parse(resource)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.conn(ctx, u)
	if err != nil {
		return 0, err
	}

	resp, err := c.Retr(u.Path)
	if err != nil {
		t.drop(u)
		return 0, fmt.Errorf("failed to retrieve %s: %w", resource, err)
	}

	// Unblock the copy if the run is cancelled mid-transfer.
	stop := context.AfterFunc(ctx, func() { resp.SetDeadline(time.Now()) })
	defer stop()

	n, copyErr := io.Copy(w, resp)

	// The server may never acknowledge an aborted transfer, so the control
	// connection goes first and Close no longer waits for a reply.
	if err := ctx.Err(); err != nil {
		t.drop(u)
		resp.Close()
		return n, err
	}

	closeErr := resp.Close()
	if copyErr != nil {
		t.drop(u)
		return n, fmt.Errorf("failed to read %s: %w", resource, copyErr)
	}
	if closeErr != nil {
		t.drop(u)
		return n, fmt.Errorf("%w: %s: %v", ErrIncompleteTransfer, resource, closeErr)
	}
	return n, nil
}

func (t *FTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for addr, c := range t.conns {
		if err := c.Quit(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.conns, addr)
	}
	return firstErr
}
