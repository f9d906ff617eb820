package server

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/ssh"

	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/repository"
)

// DefaultMaxUploadSize bounds the body of a single PUT.
const DefaultMaxUploadSize = 512 << 20

// Options configures a Server.
type Options struct {
	// Username and Password enable basic auth on uploads.
	Username string
	Password string

	// AuthorizedKeys enables signature checks on uploads.
	AuthorizedKeys []ssh.PublicKey

	// ProtectReads applies basic auth to GET and HEAD as well.
	ProtectReads bool

	// ReadOnly rejects every upload.
	ReadOnly bool

	MaxUploadSize int64

	// Registry receives the server's request metrics and is served on
	// /metrics. Nil disables both.
	Registry *prometheus.Registry

	Logger *log.Logger
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.MaxUploadSize <= 0 {
		o.MaxUploadSize = DefaultMaxUploadSize
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Server serves a local repository.
type Server struct {
	local    *repository.Local
	opts     Options
	router   chi.Router
	requests *prometheus.CounterVec
	bytesIn  prometheus.Counter
}

// New returns a Server for local.
func New(local *repository.Local, opts Options) *Server {
	s := &Server{local: local, opts: opts.WithDefaults()}
	if s.opts.Registry != nil {
		s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mavenresolve_server_requests_total",
			Help: "Repository requests served, by method and status",
		}, []string{"method", "status"})
		s.bytesIn = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mavenresolve_server_uploaded_bytes_total",
			Help: "Bytes stored through PUT",
		})
		s.opts.Registry.MustRegister(s.requests, s.bytesIn)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	if s.opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	}
	r.Group(func(r chi.Router) {
		if s.opts.ProtectReads {
			r.Use(s.basicAuth)
		}
		r.Get("/*", s.serveFile)
		r.Head("/*", s.serveFile)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.basicAuth)
		r.Put("/*", s.storeFile)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.opts.Logger.Info("serving repository", "addr", addr, "root", s.local.Root())

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeIO, err, "listen on %s", addr)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.opts.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	p, err := s.local.Path(rel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, err := os.Open(p)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType(rel))
	http.ServeContent(w, r, "", fi.ModTime(), f)
}

func (s *Server) storeFile(w http.ResponseWriter, r *http.Request) {
	if s.opts.ReadOnly {
		http.Error(w, "repository is read-only", http.StatusMethodNotAllowed)
		return
	}
	rel := chi.URLParam(r, "*")
	if err := errors.ValidatePath(rel); err != nil || strings.HasSuffix(rel, "/") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize))
	if err != nil {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(s.opts.AuthorizedKeys) > 0 {
		key, err := repository.Verify(r, s.opts.AuthorizedKeys, rel, body)
		if err != nil {
			s.opts.Logger.Warn("rejected upload", "path", rel, "err", err)
			http.Error(w, "signature rejected", http.StatusForbidden)
			return
		}
		s.opts.Logger.Debug("signature verified", "path", rel, "key", ssh.FingerprintSHA256(key))
	}
	if _, err := s.local.WriteStream(rel, bytes.NewReader(body), nil); err != nil {
		s.opts.Logger.Error("store failed", "path", rel, "err", err)
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}
	if s.bytesIn != nil {
		s.bytesIn.Add(float64(len(body)))
	}
	s.opts.Logger.Info("stored", "path", rel, "bytes", len(body))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Username != "" {
			u, p, ok := r.BasicAuth()
			if !ok || !equal(u, s.opts.Username) || !equal(p, s.opts.Password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="mavenresolve"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.requests != nil {
			s.requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		}
		s.opts.Logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"duration", time.Since(start), "request_id", w.Header().Get("X-Request-ID"))
	})
}

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func contentType(rel string) string {
	switch path.Ext(rel) {
	case ".pom", ".xml":
		return "application/xml"
	case ".jar", ".war", ".ear":
		return "application/java-archive"
	case ".sha1", ".md5", ".sha256", ".sha512", ".asc":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// LoadAuthorizedKeys reads public keys in authorized_keys format.
func LoadAuthorizedKeys(path string) ([]ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read authorized keys")
	}
	var keys []ssh.PublicKey
	for len(bytes.TrimSpace(data)) > 0 {
		key, _, _, rest, err := ssh.ParseAuthorizedKey(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
		keys = append(keys, key)
		data = rest
	}
	return keys, nil
}
