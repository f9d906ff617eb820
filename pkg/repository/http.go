package repository

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/matzehuels/mavenresolve/pkg/buildinfo"
	"github.com/matzehuels/mavenresolve/pkg/cache"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/observability"
)

// TransportOptions configures remote transports.
type TransportOptions struct {
	// Timeout bounds every single remote call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Attempts is how often a GET is tried when the failure looks
	// transient (5xx, connection reset). Uploads are never retried.
	Attempts int

	// HTTPClient overrides the client used by HTTP transports.
	HTTPClient *http.Client
}

// DefaultTimeout bounds a remote call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o TransportOptions) WithDefaults() TransportOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = 2
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	return o
}

// HTTPTransport talks to a Maven repository over HTTP(S).
type HTTPTransport struct {
	repoID string
	base   string
	auth   Auth
	opts   TransportOptions

	signerOnce sync.Once
	signer     ssh.Signer
	signerErr  error
}

// NewHTTPTransport returns a transport for the repository at rawURL.
func NewHTTPTransport(repoID, rawURL string, auth Auth, opts TransportOptions) (*HTTPTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid http repository URL %q", rawURL)
	}
	if auth == nil {
		auth = NoAuth{}
	}
	return &HTTPTransport{
		repoID: repoID,
		base:   strings.TrimSuffix(u.String(), "/"),
		auth:   auth,
		opts:   opts.WithDefaults(),
	}, nil
}

// Get downloads path. Transient failures are retried with backoff.
func (t *HTTPTransport) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := cache.RetryWithBackoff(ctx, t.opts.Attempts, func() error {
		b, err := t.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Put uploads data to path.
func (t *HTTPTransport) Put(ctx context.Context, path string, data []byte) error {
	body, err := t.do(ctx, http.MethodPut, path, data)
	if err != nil {
		if re, ok := err.(*cache.RetryableError); ok {
			err = re.Err
		}
		if errors.Is(err, errors.ErrCodeRepositoryUnreachable) || notFound(err) {
			err = errors.Wrap(errors.ErrCodeTransferFailed, err, "upload %s", path)
		}
		return err
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, data []byte) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)

	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, t.base+"/"+path, reader)
	if err != nil {
		cancel()
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", path)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if err := t.authorize(req, path, data); err != nil {
		cancel()
		return nil, err
	}

	hooks := observability.Transfer()
	hooks.OnRequest(ctx, method, t.repoID, path)
	start := time.Now()

	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		cancel()
		hooks.OnError(ctx, method, t.repoID, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		wrapped := errors.Wrap(errors.ErrCodeRepositoryUnreachable, err, "%s %s/%s", method, t.repoID, path)
		if reqCtx.Err() != nil {
			// Timed out: the repository is treated as unreachable without retry.
			return nil, wrapped
		}
		return nil, cache.Retryable(wrapped)
	}
	hooks.OnResponse(ctx, method, t.repoID, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, method, t.repoID, path); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, err
	}
	return cancelOnClose{
		ReadCloser: codedReader{ReadCloser: resp.Body, what: t.repoID + "/" + path},
		cancel:     cancel,
	}, nil
}

func (t *HTTPTransport) authorize(req *http.Request, path string, data []byte) error {
	switch a := t.auth.(type) {
	case BasicAuth:
		req.SetBasicAuth(a.Username, a.Password)
	case KeyAuth:
		if req.Method != http.MethodPut {
			return nil
		}
		t.signerOnce.Do(func() { t.signer, t.signerErr = a.Signer() })
		if t.signerErr != nil {
			return t.signerErr
		}
		return Sign(req, t.signer, path, data)
	}
	return nil
}

func checkStatus(code int, method, repoID, path string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return errors.New(errors.ErrCodeArtifactNotFound, "%s not found in %s", path, repoID)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeAuthenticationFailed, "%s %s/%s: status %d", method, repoID, path, code)
	case code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout:
		return cache.Retryable(errors.New(errors.ErrCodeRepositoryUnreachable, "%s %s/%s: status %d", method, repoID, path, code))
	default:
		return errors.New(errors.ErrCodeTransferFailed, "%s %s/%s: status %d", method, repoID, path, code)
	}
}

var _ Transport = (*HTTPTransport)(nil)
