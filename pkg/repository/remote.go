package repository

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Remote is one entry of the ordered remote repository list.
type Remote struct {
	ID   string
	URL  string
	Auth Auth
}

// String renders the remote without credentials.
func (r Remote) String() string {
	return r.ID + " (" + r.URL + ")"
}

// NewRemote validates rawURL and returns a Remote. An empty id is derived
// from the URL host and path.
func NewRemote(id, rawURL string, auth Auth) (Remote, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := errors.ValidateRepositoryURL(rawURL); err != nil {
		return Remote{}, err
	}
	rawURL, auth = splitUserinfo(rawURL, auth)
	if auth == nil {
		auth = NoAuth{}
	}
	if id == "" {
		id = deriveID(rawURL)
	}
	return Remote{ID: id, URL: strings.TrimSuffix(rawURL, "/"), Auth: auth}, nil
}

// splitUserinfo removes user:password@ from rawURL. The credentials become
// BasicAuth unless auth already carries some.
func splitUserinfo(rawURL string, auth Auth) (string, Auth) {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil || u.User.Username() == "" {
		return rawURL, auth
	}
	if _, none := auth.(NoAuth); auth == nil || none {
		password, _ := u.User.Password()
		auth = BasicAuth{Username: u.User.Username(), Password: password}
	}
	u.User = nil
	return u.String(), auth
}

var idSanitizer = regexp.MustCompile(`[^A-Za-z0-9._]+`)

func deriveID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "remote"
	}
	id := strings.Trim(idSanitizer.ReplaceAllString(u.Host+u.Path, "-"), "-")
	if id == "" {
		return "remote"
	}
	return id
}

// NewTransport returns the transport matching the scheme of r.URL.
func NewTransport(ctx context.Context, r Remote, opts TransportOptions) (Transport, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", r.URL)
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPTransport(r.ID, r.URL, r.Auth, opts)
	case "s3":
		return NewS3Transport(ctx, r.ID, r.URL, r.Auth, opts)
	case "file":
		return NewFileTransport(r.URL)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported repository scheme %q", u.Scheme)
	}
}
