package repository

import (
	"context"
	"io"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Transport moves files between this process and one remote repository.
// Paths are repository-relative with forward slashes.
//
// Errors carry codes: ARTIFACT_NOT_FOUND when the remote does not have the
// path, REPOSITORY_UNREACHABLE for network failures and timeouts,
// AUTHENTICATION_FAILED when credentials are rejected and TRANSFER_FAILED
// for any other refusal.
type Transport interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Put(ctx context.Context, path string, data []byte) error
}

// notFound reports whether err means the remote lacks the path.
func notFound(err error) bool {
	return errors.Is(err, errors.ErrCodeArtifactNotFound)
}

// codedReader tags read failures as unreachable so a connection dropped
// mid-body is not mistaken for a local disk error.
type codedReader struct {
	io.ReadCloser
	what string
}

func (r codedReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		err = errors.Wrap(errors.ErrCodeRepositoryUnreachable, err, "read %s", r.what)
	}
	return n, err
}

// cancelOnClose releases a per-request timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
