package repository

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// FileTransport serves a repository directory given as a file:// URL.
type FileTransport struct {
	store *Local
}

// NewFileTransport returns a transport for the directory named by rawURL.
func NewFileTransport(rawURL string) (*FileTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid file repository URL %q", rawURL)
	}
	store, err := NewLocal(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, err
	}
	return &FileTransport{store: store}, nil
}

// Get opens the file at path.
func (t *FileTransport) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := t.store.Path(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "%s not found in %s", path, t.store.Root())
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepositoryUnreachable, err, "open %s", p)
	}
	return f, nil
}

// Put stores data at path.
func (t *FileTransport) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.store.WriteFile(path, data); err != nil {
		return errors.Wrap(errors.ErrCodeTransferFailed, err, "upload %s", path)
	}
	return nil
}

var _ Transport = (*FileTransport)(nil)
