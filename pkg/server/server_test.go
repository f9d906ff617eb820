package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/crypto/ssh"

	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/repository"
)

func newServer(t *testing.T, opts Options) (*repository.Local, *httptest.Server) {
	t.Helper()
	local, err := repository.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(local, opts))
	t.Cleanup(srv.Close)
	return local, srv
}

func do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func newSigner(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	return signer
}

func TestServeFile(t *testing.T) {
	local, srv := newServer(t, Options{})
	if err := local.WriteFile("com/acme/core/1.0/core-1.0.pom", []byte("<project/>")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantBody    string
		wantContent string
	}{
		{"pom", http.MethodGet, "/com/acme/core/1.0/core-1.0.pom", http.StatusOK, "<project/>", "application/xml"},
		{"head", http.MethodHead, "/com/acme/core/1.0/core-1.0.pom", http.StatusOK, "", "application/xml"},
		{"missing", http.MethodGet, "/com/acme/core/1.0/core-1.0.jar", http.StatusNotFound, "", ""},
		{"directory", http.MethodGet, "/com/acme/core/1.0", http.StatusNotFound, "", ""},
		{"escape", http.MethodGet, "/com/../../etc/passwd", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			req.URL.Opaque = tt.path
			resp, body := do(t, req)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if tt.wantContent != "" && resp.Header.Get("Content-Type") != tt.wantContent {
				t.Errorf("Content-Type = %q, want %q", resp.Header.Get("Content-Type"), tt.wantContent)
			}
		})
	}
}

func TestStoreFile(t *testing.T) {
	local, srv := newServer(t, Options{})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/com/acme/core/1.0/core-1.0.jar", strings.NewReader("jar bytes"))
	resp, _ := do(t, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	got, err := local.ReadFile("com/acme/core/1.0/core-1.0.jar")
	if err != nil || string(got) != "jar bytes" {
		t.Errorf("stored = %q, %v", got, err)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestStoreFileLimits(t *testing.T) {
	t.Run("read only", func(t *testing.T) {
		_, srv := newServer(t, Options{ReadOnly: true})
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/a/b/1/b-1.jar", strings.NewReader("x"))
		if resp, _ := do(t, req); resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", resp.StatusCode)
		}
	})
	t.Run("too large", func(t *testing.T) {
		local, srv := newServer(t, Options{MaxUploadSize: 4})
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/a/b/1/b-1.jar", strings.NewReader("too many bytes"))
		if resp, _ := do(t, req); resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", resp.StatusCode)
		}
		if local.Exists("a/b/1/b-1.jar") {
			t.Error("oversized upload was stored")
		}
	})
}

func TestBasicAuth(t *testing.T) {
	local, srv := newServer(t, Options{Username: "deploy", Password: "s3cret"})
	tr, err := repository.NewHTTPTransport("test", srv.URL, repository.BasicAuth{Username: "deploy", Password: "s3cret"}, repository.TransportOptions{Attempts: 1})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := tr.Put(ctx, "com/acme/core/1.0/core-1.0.jar", []byte("ok")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !local.Exists("com/acme/core/1.0/core-1.0.jar") {
		t.Fatal("file not stored")
	}

	anon, err := repository.NewHTTPTransport("test", srv.URL, nil, repository.TransportOptions{Attempts: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Reads stay public.
	body, err := anon.Get(ctx, "com/acme/core/1.0/core-1.0.jar")
	if err != nil {
		t.Fatalf("anonymous Get: %v", err)
	}
	body.Close()

	err = anon.Put(ctx, "com/acme/core/1.0/core-1.0.pom", []byte("nope"))
	if !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("anonymous Put error = %v, want AUTHENTICATION_FAILED", err)
	}

	wrong, _ := repository.NewHTTPTransport("test", srv.URL, repository.BasicAuth{Username: "deploy", Password: "guess"}, repository.TransportOptions{Attempts: 1})
	if err := wrong.Put(ctx, "x/y/1/y-1.jar", []byte("nope")); !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("wrong password error = %v, want AUTHENTICATION_FAILED", err)
	}
}

func TestProtectReads(t *testing.T) {
	local, srv := newServer(t, Options{Username: "u", Password: "p", ProtectReads: true})
	_ = local.WriteFile("a/b/1/b-1.jar", []byte("x"))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/a/b/1/b-1.jar", nil)
	if resp, _ := do(t, req); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/a/b/1/b-1.jar", nil)
	req.SetBasicAuth("u", "p")
	if resp, _ := do(t, req); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	if resp, _ := do(t, req); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestSignedUploads(t *testing.T) {
	signer := newSigner(t)
	local, srv := newServer(t, Options{AuthorizedKeys: []ssh.PublicKey{signer.PublicKey()}})

	put := func(path string, body []byte, sign ssh.Signer, signedPath string) int {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/"+path, bytes.NewReader(body))
		if sign != nil {
			if err := repository.Sign(req, sign, signedPath, body); err != nil {
				t.Fatal(err)
			}
		}
		resp, _ := do(t, req)
		return resp.StatusCode
	}

	const path = "com/acme/core/1.0/core-1.0.jar"
	if got := put(path, []byte("signed"), signer, path); got != http.StatusCreated {
		t.Fatalf("signed upload status = %d, want 201", got)
	}
	if !local.Exists(path) {
		t.Fatal("signed upload not stored")
	}

	tests := []struct {
		name   string
		signer ssh.Signer
		signed string
	}{
		{"unsigned", nil, ""},
		{"unknown key", newSigner(t), "com/acme/core/1.0/core-1.0.pom"},
		{"other path", signer, "com/acme/core/1.0/core-1.0.jar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := put("com/acme/core/1.0/core-1.0.pom", []byte("x"), tt.signer, tt.signed); got != http.StatusForbidden {
				t.Errorf("status = %d, want 403", got)
			}
		})
	}
	if local.Exists("com/acme/core/1.0/core-1.0.pom") {
		t.Error("rejected upload was stored")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(mustLocal(t), Options{Registry: reg})
	srv := httptest.NewServer(s)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/a/b/1/b-1.jar", strings.NewReader("12345"))
	do(t, req)
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/a/b/1/missing.jar", nil)
	do(t, req)

	if got := testutil.ToFloat64(s.requests.WithLabelValues("PUT", "201")); got != 1 {
		t.Errorf("PUT 201 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.requests.WithLabelValues("GET", "404")); got != 1 {
		t.Errorf("GET 404 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.bytesIn); got != 5 {
		t.Errorf("uploaded bytes = %v, want 5", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/metrics", nil)
	resp, body := do(t, req)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "mavenresolve_server_requests_total") {
		t.Errorf("/metrics = %d:\n%.300s", resp.StatusCode, body)
	}
}

func mustLocal(t *testing.T) *repository.Local {
	t.Helper()
	local, err := repository.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return local
}

func TestLoadAuthorizedKeys(t *testing.T) {
	a, b := newSigner(t), newSigner(t)
	content := string(ssh.MarshalAuthorizedKey(a.PublicKey())) + "\n" +
		strings.TrimSpace(string(ssh.MarshalAuthorizedKey(b.PublicKey()))) + " ci@acme\n"
	path := filepath.Join(t.TempDir(), "authorized_keys")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	keys, err := LoadAuthorizedKeys(path)
	if err != nil {
		t.Fatalf("LoadAuthorizedKeys: %v", err)
	}
	if len(keys) != 2 || !bytes.Equal(keys[1].Marshal(), b.PublicKey().Marshal()) {
		t.Errorf("got %d keys", len(keys))
	}

	bad := filepath.Join(t.TempDir(), "bad")
	_ = os.WriteFile(bad, []byte("not a key\n"), 0o600)
	if _, err := LoadAuthorizedKeys(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad file error = %v", err)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(mustLocal(t), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe = %v, want nil after cancel", err)
	}
}
