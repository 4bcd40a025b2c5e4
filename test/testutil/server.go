// Package testutil holds fixtures shared by package tests: an HTTP file
// server that counts requests and a zip archive writer with ordered entries.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FileServer serves a directory over HTTP and records how often each path was requested.
type FileServer struct {
	Server *httptest.Server
	URL    string

	mu       sync.Mutex
	requests map[string]int
}

// NewFileServer starts a server for dir that is shut down when the test ends.
func NewFileServer(t *testing.T, dir string) *FileServer {
	t.Helper()
	fs := &FileServer{requests: make(map[string]int)}
	files := http.FileServer(http.Dir(dir))
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.requests[r.URL.Path]++
		fs.mu.Unlock()
		files.ServeHTTP(w, r)
	}))
	fs.URL = fs.Server.URL
	t.Cleanup(fs.Server.Close)
	return fs
}

// Requests returns how many times path was requested.
func (fs *FileServer) Requests(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests["/"+strings.TrimPrefix(path, "/")]
}

// Total returns the number of requests of any path.
func (fs *FileServer) Total() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	total := 0
	for _, n := range fs.requests {
		total += n
	}
	return total
}

// Host returns the server address as host:port.
func (fs *FileServer) Host() string {
	return strings.TrimPrefix(fs.URL, "http://")
}

// NewStatusServer starts a server that answers every request with status.
func NewStatusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}
