package repository

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRepo is an in-memory Maven repository served over HTTP.
type fakeRepo struct {
	t *testing.T

	mu       sync.Mutex
	files    map[string][]byte
	requests []string

	username, password string
	delay              time.Duration
	status             int // forced status for every request when non-zero
}

func newFakeRepo(t *testing.T) (*fakeRepo, *httptest.Server) {
	t.Helper()
	r := &fakeRepo{t: t, files: map[string][]byte{}}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return r, srv
}

func (r *fakeRepo) put(path, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[path] = []byte(content)
}

func (r *fakeRepo) get(path string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.files[path]
	return b, ok
}

func (r *fakeRepo) count(method, path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if req == method+" "+path {
			n++
		}
	}
	return n
}

func (r *fakeRepo) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/")
	r.mu.Lock()
	r.requests = append(r.requests, req.Method+" "+path)
	delay, status := r.delay, r.status
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-req.Context().Done():
			return
		}
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.username != "" {
		u, p, ok := req.BasicAuth()
		if !ok || u != r.username || p != r.password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		data, ok := r.get(path)
		if !ok {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write(data)
	case http.MethodPut:
		data, err := io.ReadAll(req.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.put(path, string(data))
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// deadURL returns the URL of a server that is already closed.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.LocalPath == "" {
		opts.LocalPath = t.TempDir()
	}
	if opts.Transport.Attempts == 0 {
		opts.Transport.Attempts = 1
	}
	if opts.Transport.Timeout == 0 {
		opts.Transport.Timeout = 5 * time.Second
	}
	m, err := NewManager(opts)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}
