package transport

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFTPServer scripts just enough of the FTP control protocol for one
// passive-mode client: USER/PASS, TYPE, SIZE, EPSV, RETR and QUIT.
type fakeFTPServer struct {
	ln    net.Listener
	files map[string][]byte

	// truncated files send half their bytes and then report an aborted transfer.
	truncated map[string]bool
	// stalled files send their bytes and hold the data connection open.
	stalled map[string]bool
	release chan struct{}

	mu       sync.Mutex
	logins   int
	commands []string
}

func truncate(path string) func(*fakeFTPServer) {
	return func(s *fakeFTPServer) { s.truncated[path] = true }
}

func stall(path string) func(*fakeFTPServer) {
	return func(s *fakeFTPServer) { s.stalled[path] = true }
}

func newFakeFTPServer(t *testing.T, files map[string][]byte, opts ...func(*fakeFTPServer)) *fakeFTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeFTPServer{
		ln:        ln,
		files:     files,
		truncated: make(map[string]bool),
		stalled:   make(map[string]bool),
		release:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.serve()
	t.Cleanup(func() {
		close(s.release)
		ln.Close()
	})
	return s
}

func (s *fakeFTPServer) url(path string) string {
	return "ftp://" + s.ln.Addr().String() + path
}

func (s *fakeFTPServer) loginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *fakeFTPServer) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *fakeFTPServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(c)
	}
}

func (s *fakeFTPServer) handle(c net.Conn) {
	defer c.Close()
	tp := textproto.NewConn(c)
	tp.PrintfLine("220 fake ftp ready")

	var passive net.Listener
	defer func() {
		if passive != nil {
			passive.Close()
		}
	}()

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")

		s.mu.Lock()
		s.commands = append(s.commands, line)
		s.mu.Unlock()

		switch strings.ToUpper(cmd) {
		case "USER":
			tp.PrintfLine("331 password required")
		case "PASS":
			s.mu.Lock()
			s.logins++
			s.mu.Unlock()
			tp.PrintfLine("230 logged in")
		case "TYPE":
			tp.PrintfLine("200 type set")
		case "SIZE":
			content, ok := s.files[arg]
			if !ok {
				tp.PrintfLine("550 %s: no such file", arg)
				continue
			}
			tp.PrintfLine("213 %d", len(content))
		case "EPSV":
			if passive != nil {
				passive.Close()
			}
			passive, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				tp.PrintfLine("425 cannot open data connection")
				continue
			}
			tp.PrintfLine("229 Entering Extended Passive Mode (|||%d|)", passive.Addr().(*net.TCPAddr).Port)
		case "RETR":
			s.retr(tp, passive, arg)
			if passive != nil {
				passive.Close()
				passive = nil
			}
		case "QUIT":
			tp.PrintfLine("221 bye")
			return
		default:
			tp.PrintfLine("502 %s not implemented", cmd)
		}
	}
}

func (s *fakeFTPServer) retr(tp *textproto.Conn, passive net.Listener, path string) {
	content, ok := s.files[path]
	if !ok || passive == nil {
		tp.PrintfLine("550 %s: no such file", path)
		return
	}

	tp.PrintfLine("150 opening data connection")
	data, err := passive.Accept()
	if err != nil {
		return
	}

	switch {
	case s.stalled[path]:
		data.Write(content)
		<-s.release
		data.Close()
		tp.PrintfLine("426 transfer aborted")
	case s.truncated[path]:
		data.Write(content[:len(content)/2])
		data.Close()
		tp.PrintfLine("426 connection closed; transfer aborted")
	default:
		data.Write(content)
		data.Close()
		tp.PrintfLine("226 transfer complete")
	}
}

func TestFTPTransportSizeAndFetch(t *testing.T) {
	srv := newFakeFTPServer(t, map[string][]byte{
		"/pub/cpc/games/action/a.zip": []byte("PK-rom-data"),
	})
	tr := NewFTPTransport("anonymous", "anonymous", 5*time.Second, nil)
	defer tr.Close()

	size, err := tr.Size(context.Background(), srv.url("/pub/cpc/games/action/a.zip"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	var buf strings.Builder
	n, err := tr.Fetch(context.Background(), srv.url("/pub/cpc/games/action/a.zip"), &buf)
	require.NoError(t, err)
	assert.Equal(t, size, n)
	assert.Equal(t, "PK-rom-data", buf.String())

	assert.Equal(t, 1, srv.loginCount(), "size and fetch share one control connection")
	commands := srv.received()
	assert.Contains(t, commands, "USER anonymous")
	assert.Contains(t, commands, "PASS anonymous")
	assert.Contains(t, commands, "RETR /pub/cpc/games/action/a.zip")
}

func TestFTPTransportCredentialsFromURL(t *testing.T) {
	srv := newFakeFTPServer(t, map[string][]byte{"/a.zip": []byte("x")})
	tr := NewFTPTransport("anonymous", "anonymous", 5*time.Second, nil)
	defer tr.Close()

	resource := "ftp://retro:secret@" + srv.ln.Addr().String() + "/a.zip"
	_, err := tr.Size(context.Background(), resource)
	require.NoError(t, err)

	commands := srv.received()
	assert.Contains(t, commands, "USER retro")
	assert.Contains(t, commands, "PASS secret")
}

func TestFTPTransportIncompleteTransfer(t *testing.T) {
	srv := newFakeFTPServer(t, map[string][]byte{"/pub/cpc/big.zip": []byte("0123456789")}, truncate("/pub/cpc/big.zip"))
	tr := NewFTPTransport("anonymous", "anonymous", 5*time.Second, nil)
	defer tr.Close()

	var buf strings.Builder
	n, err := tr.Fetch(context.Background(), srv.url("/pub/cpc/big.zip"), &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteTransfer)
	assert.Equal(t, int64(5), n)

	// The failed connection is dropped; the next call logs in again.
	_, err = tr.Size(context.Background(), srv.url("/pub/cpc/big.zip"))
	require.NoError(t, err)
	assert.Equal(t, 2, srv.loginCount())
}

func TestFTPTransportRedialsAfterError(t *testing.T) {
	srv := newFakeFTPServer(t, map[string][]byte{"/pub/cpc/a.zip": []byte("abc")})
	tr := NewFTPTransport("anonymous", "anonymous", 5*time.Second, nil)
	defer tr.Close()

	_, err := tr.Size(context.Background(), srv.url("/pub/cpc/missing.zip"))
	require.Error(t, err)

	var buf strings.Builder
	_, err = tr.Fetch(context.Background(), srv.url("/pub/cpc/missing.zip"), &buf)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncompleteTransfer)

	size, err := tr.Size(context.Background(), srv.url("/pub/cpc/a.zip"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
	assert.Equal(t, 3, srv.loginCount())
}

func TestFTPTransportSpecialFileNames(t *testing.T) {
	files := map[string][]byte{
		"/pub/cpc/games/no#2.zip":   []byte("hash"),
		"/pub/cpc/games/what?.zip":  []byte("question"),
		"/pub/cpc/games/100%.zip":   []byte("percent"),
		"/pub/cpc/games/a game.zip": []byte("space"),
	}
	srv := newFakeFTPServer(t, files)
	router, err := NewRouter(Options{
		BaseAddress: srv.url("/pub/cpc/"),
		Username:    "anonymous",
		Password:    "anonymous",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	defer router.Close()

	for path, want := range files {
		size, err := router.Size(context.Background(), path)
		require.NoError(t, err, path)
		assert.Equal(t, int64(len(want)), size, path)

		var buf strings.Builder
		_, err = router.Fetch(context.Background(), srv.url(path), &buf)
		require.NoError(t, err, path)
		assert.Equal(t, string(want), buf.String(), path)
	}

	for path := range files {
		assert.Contains(t, srv.received(), "RETR "+path)
	}
}

// cancelOnWrite cancels the run as soon as the first bytes arrive.
type cancelOnWrite struct {
	cancel context.CancelFunc
	n      int
}

func (w *cancelOnWrite) Write(p []byte) (int, error) {
	w.n += len(p)
	w.cancel()
	return len(p), nil
}

func TestFTPTransportCancelledMidTransfer(t *testing.T) {
	srv := newFakeFTPServer(t, map[string][]byte{"/pub/cpc/slow.zip": []byte("partial")}, stall("/pub/cpc/slow.zip"))
	tr := NewFTPTransport("anonymous", "anonymous", 5*time.Second, nil)
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &cancelOnWrite{cancel: cancel}

	done := make(chan error, 1)
	go func() {
		_, err := tr.Fetch(ctx, srv.url("/pub/cpc/slow.zip"), w)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Positive(t, w.n)
	case <-time.After(3 * time.Second):
		t.Fatal("fetch did not return after cancellation")
	}
}

func TestFTPTransportDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	tr := NewFTPTransport("anonymous", "anonymous", time.Second, nil)
	defer tr.Close()

	_, err = tr.Size(context.Background(), fmt.Sprintf("ftp://%s/a.zip", addr))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}
