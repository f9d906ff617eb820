package repository

import (
	"context"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// fakeS3 answers path-style GetObject and PutObject requests.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte // "bucket/key" => data
	deny    bool
}

func (s *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deny || !strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256") {
		s3Error(w, http.StatusForbidden, "AccessDenied")
		return
	}
	switch r.Method {
	case http.MethodGet:
		data, ok := s.objects[key]
		if !ok {
			s3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		_, _ = w.Write(data)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		s.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeS3) object(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.objects[key])
}

func s3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+code+`</Code><Message>`+code+`</Message></Error>`)
}

func newFakeS3(t *testing.T) (*fakeS3, string) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv.URL
}

func TestS3Transport(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	fake, endpoint := newFakeS3(t)
	fake.objects["releases/maven/g/a/1.0/a-1.0.jar"] = []byte("jar")

	ctx := context.Background()
	tr, err := NewS3Transport(ctx, "s3test", "s3://releases/maven?region=eu-central-1&endpoint="+endpoint,
		BasicAuth{Username: "AKIDEXAMPLE", Password: "secret"}, TransportOptions{Attempts: 1})
	if err != nil {
		t.Fatalf("NewS3Transport: %v", err)
	}

	body, err := tr.Get(ctx, "g/a/1.0/a-1.0.jar")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "jar" {
		t.Errorf("Get() = %q", data)
	}

	if _, err := tr.Get(ctx, "g/a/2.0/a-2.0.jar"); !errors.Is(err, errors.ErrCodeArtifactNotFound) {
		t.Errorf("Get missing: err = %v, want ARTIFACT_NOT_FOUND", err)
	}

	if err := tr.Put(ctx, "g/a/2.0/a-2.0.pom", []byte("<project/>")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := fake.object("releases/maven/g/a/2.0/a-2.0.pom"); got != "<project/>" {
		t.Errorf("stored %q", got)
	}

	fake.mu.Lock()
	fake.deny = true
	fake.mu.Unlock()
	if err := tr.Put(ctx, "g/a/3.0/a-3.0.jar", []byte("x")); !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("denied Put: err = %v, want AUTHENTICATION_FAILED", err)
	}
}

func TestS3TransportInvalidURL(t *testing.T) {
	for _, u := range []string{"s3://", "https://bucket"} {
		if _, err := NewS3Transport(context.Background(), "x", u, nil, TransportOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewS3Transport(%q) err = %v, want INVALID_INPUT", u, err)
		}
	}
}

func TestS3TransportCABundle(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	fake := &fakeS3{objects: map[string][]byte{"releases/g/a/1.0/a-1.0.pom": []byte("<project/>")}}
	srv := httptest.NewTLSServer(fake)
	defer srv.Close()

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(bundle, pemData, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AWS_CA_BUNDLE", bundle)

	ctx := context.Background()
	tr, err := NewS3Transport(ctx, "s3test", "s3://releases?endpoint="+srv.URL,
		BasicAuth{Username: "AKIDEXAMPLE", Password: "secret"}, TransportOptions{Attempts: 1})
	if err != nil {
		t.Fatalf("NewS3Transport with AWS_CA_BUNDLE: %v", err)
	}
	body, err := tr.Get(ctx, "g/a/1.0/a-1.0.pom")
	if err != nil {
		t.Fatalf("Get over TLS trusted through the bundle: %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "<project/>" {
		t.Errorf("Get() = %q", data)
	}
}
