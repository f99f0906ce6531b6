package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/R366Y/async-http-server/filesystem"
)

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver, err := filesystem.NewResolver(root, logger)
	if err != nil {
		t.Fatal(err)
	}
	return NewServer("test", resolver, logger)
}

// doRequest drives one raw request through ServeConn over an in-memory
// pipe and returns the full wire response.
func doRequest(t *testing.T, srv *Server, raw string) string {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		srv.ServeConn(serverConn)
		close(done)
	}()

	if _, err := clientConn.Write([]byte(raw)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	resp, err := io.ReadAll(clientConn)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not finish")
	}
	return string(resp)
}

func splitResponse(t *testing.T, wire string) (head, body string) {
	t.Helper()

	head, body, found := strings.Cut(wire, "\r\n\r\n")
	if !found {
		t.Fatalf("response has no header/body separator: %q", wire)
	}
	return head, body
}

func TestServeConnBuiltinPages(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	cases := []struct {
		path   string
		marker string
	}{
		{path: "/", marker: "Welcome"},
		{path: "/about", marker: "About Page"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			wire := doRequest(t, srv, "GET "+tc.path+" HTTP/1.1\r\nHost: localhost\r\n\r\n")
			head, body := splitResponse(t, wire)

			if !strings.HasPrefix(head, "HTTP/1.1 200 OK\r\n") {
				t.Errorf("expected 200, got %q", head)
			}
			if !strings.Contains(head, "Content-Type: text/html\r\n") {
				t.Errorf("content type missing in %q", head)
			}
			if !strings.Contains(head, "Content-Length: "+strconv.Itoa(len(body))+"\r\n") {
				t.Errorf("content length does not match body length %d: %q", len(body), head)
			}
			if !strings.Contains(body, tc.marker) {
				t.Errorf("expected body to contain %q, got %q", tc.marker, body)
			}
		})
	}
}

func TestServeConnAboutPageExactBody(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	wire := doRequest(t, srv, "GET /about HTTP/1.1\r\nHost: localhost\r\n\r\n")
	head, body := splitResponse(t, wire)

	if body != aboutPage {
		t.Errorf("expected about page exactly, got %q", body)
	}
	if !strings.Contains(head, "Content-Length: "+strconv.Itoa(len(aboutPage))+"\r\n") {
		t.Errorf("content length mismatch in %q", head)
	}
}

func TestServeConnNotFound(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	for _, path := range []string{"/missing", "/files", "/about/extra"} {
		wire := doRequest(t, srv, "GET "+path+" HTTP/1.1\r\n\r\n")
		if !strings.HasPrefix(wire, "HTTP/1.1 404 Not Found\r\n") {
			t.Errorf("%s: expected 404, got %q", path, wire)
		}
	}
}

func TestServeConnMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	for _, method := range []string{"POST", "PUT", "DELETE", "HEAD", "get"} {
		wire := doRequest(t, srv, method+" / HTTP/1.1\r\nHost: localhost\r\n\r\n")
		head, body := splitResponse(t, wire)

		if !strings.HasPrefix(head, "HTTP/1.1 405 Method Not Allowed\r\n") {
			t.Errorf("%s: expected 405, got %q", method, head)
		}
		if body != "" {
			t.Errorf("%s: expected empty body, got %q", method, body)
		}
	}
}

func TestServeConnBadRequest(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	wire := doRequest(t, srv, "complete garbage\r\n\r\n")
	_, body := splitResponse(t, wire)
	if !strings.HasPrefix(wire, "HTTP/1.1 400 Bad Request\r\n") {
		t.Errorf("expected 400, got %q", wire)
	}
	if body != "Malformed HTTP request" {
		t.Errorf("expected fixed malformed body, got %q", body)
	}

	wire = doRequest(t, srv, "GET / HTTP/1.1\r\nHost: localhost\r\n")
	_, body = splitResponse(t, wire)
	if !strings.HasPrefix(wire, "HTTP/1.1 400 Bad Request\r\n") {
		t.Errorf("expected 400, got %q", wire)
	}
	if body != "Incomplete request received" {
		t.Errorf("expected fixed incomplete body, got %q", body)
	}
}

func TestServeConnTraversalForbidden(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	wire := doRequest(t, srv, "GET /files/../etc/passwd HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(wire, "HTTP/1.1 403 Forbidden\r\n") {
		t.Errorf("expected 403, got %q", wire)
	}
}

func TestServeConnMissingFile(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	wire := doRequest(t, srv, "GET /files/missing.txt HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(wire, "HTTP/1.1 404 Not Found\r\n") {
		t.Errorf("expected 404, got %q", wire)
	}
}

func TestServeConnFileRoundTrip(t *testing.T) {
	root := t.TempDir()
	content := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x00, 0xff}
	if err := os.WriteFile(filepath.Join(root, "pixel.png"), content, 0644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, root)

	wire := doRequest(t, srv, "GET /files/pixel.png HTTP/1.1\r\n\r\n")
	head, body, found := bytes.Cut([]byte(wire), []byte("\r\n\r\n"))
	if !found {
		t.Fatalf("no separator in %q", wire)
	}

	if !strings.HasPrefix(string(head), "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("expected 200, got %q", head)
	}
	if !strings.Contains(string(head), "Content-Type: image/png\r\n") {
		t.Errorf("expected png content type in %q", head)
	}
	if !bytes.Equal(body, content) {
		t.Errorf("body %v differs from file content %v", body, content)
	}
}

func TestServeConnDirectoryListing(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub", "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, root)

	wire := doRequest(t, srv, "GET /files/sub HTTP/1.1\r\n\r\n")
	head, body := splitResponse(t, wire)

	if !strings.HasPrefix(head, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("expected 200, got %q", head)
	}
	if !strings.Contains(body, `<a href="a.txt">a.txt</a>`) {
		t.Errorf("file entry missing from %q", body)
	}
	if !strings.Contains(body, `<a href="nested/">nested/</a>`) {
		t.Errorf("directory entry missing from %q", body)
	}
	if !strings.Contains(body, `<a href="../">../</a>`) {
		t.Errorf("parent link missing from %q", body)
	}
}

func TestServeConnRootListingHasNoParentLink(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, root)

	wire := doRequest(t, srv, "GET /files/ HTTP/1.1\r\n\r\n")
	_, body := splitResponse(t, wire)

	if strings.Contains(body, "../") {
		t.Errorf("root listing must not link to parent: %q", body)
	}
	if !strings.Contains(body, `<a href="a.txt">a.txt</a>`) {
		t.Errorf("entry missing from %q", body)
	}
}

func TestServeConnPeerClosedWithoutSending(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	serverConn, clientConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		srv.ServeConn(serverConn)
		close(done)
	}()

	clientConn.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not close after peer hangup")
	}
}

func TestServeConnDeadline(t *testing.T) {
	srv := newTestServer(t, t.TempDir())
	srv.ConnDeadline = 50 * time.Millisecond

	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		srv.ServeConn(serverConn)
		close(done)
	}()

	// Send nothing; the handler must abandon the connection without a
	// response once the deadline passes.
	resp, err := io.ReadAll(clientConn)
	if err != nil && err != io.EOF {
		t.Fatalf("read error: %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("expected no response after timeout, got %q", resp)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler leaked past its deadline")
	}
}

func TestServeAcceptLoop(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(t, root)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(ctx, listener)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("GET /about HTTP/1.1\r\nHost: localhost\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	resp, err := io.ReadAll(conn)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(resp), "HTTP/1.1 200 OK\r\n") {
		t.Errorf("expected 200 over TCP, got %q", resp)
	}

	cancel()
	select {
	case err := <-serveDone:
		if err != nil {
			t.Errorf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("accept loop did not stop on cancellation")
	}
}
