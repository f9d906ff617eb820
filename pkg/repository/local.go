package repository

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Local is the on-disk repository. It is the only write target for
// resolved artifacts.
type Local struct {
	root  string
	locks sync.Map // rel path => *sync.Mutex
}

// NewLocal opens the repository rooted at root, creating it if needed.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "resolve %s", root)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create local repository %s", abs)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute repository directory.
func (l *Local) Root() string { return l.root }

// Path returns the absolute path of a repository-relative path.
func (l *Local) Path(rel string) (string, error) {
	if err := errors.ValidatePath(rel); err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(rel)), nil
}

// Exists reports whether a regular file is stored at rel.
func (l *Local) Exists(rel string) bool {
	p, err := l.Path(rel)
	if err != nil {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// ReadFile returns the contents stored at rel. A missing file is reported
// as ARTIFACT_NOT_FOUND.
func (l *Local) ReadFile(rel string) ([]byte, error) {
	p, err := l.Path(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "%s not in local repository", rel)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", p)
	}
	return data, nil
}

// WriteFile stores data at rel atomically.
func (l *Local) WriteFile(rel string, data []byte) error {
	_, err := l.write(rel, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}, nil)
	return err
}

// WriteStream copies r to rel atomically and returns the SHA-1 of what was
// written. If verify is non-nil it is called with the digest before the file
// is moved into place; an error from verify discards the download.
func (l *Local) WriteStream(rel string, r io.Reader, verify func(sha1Hex string) error) (string, error) {
	return l.write(rel, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	}, verify)
}

func (l *Local) write(rel string, fill func(io.Writer) error, verify func(string) error) (string, error) {
	dst, err := l.Path(rel)
	if err != nil {
		return "", err
	}
	mu := l.lock(rel)
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(dst)+".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create %s", tmp)
	}
	defer os.Remove(tmp) // no-op after a successful rename

	h := sha1.New()
	if err := fill(io.MultiWriter(f, h)); err != nil {
		f.Close()
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeIO, err, "write %s", rel)
		}
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", errors.Wrap(errors.ErrCodeIO, err, "sync %s", rel)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "close %s", rel)
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if verify != nil {
		if err := verify(sum); err != nil {
			return "", err
		}
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "rename into %s", dst)
	}
	return sum, nil
}

func (l *Local) lock(rel string) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(rel, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
