package transfer

import (
	"bytes"
	"os"
	"time"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/pom"
	"github.com/matzehuels/mavenresolve/pkg/repository"
)

var timeNow = time.Now

// file is one document to publish.
type file struct {
	path string
	data []byte
}

// withChecksums returns f followed by its .sha1 and .md5 companions.
func withChecksums(f file) []file {
	sha, md := repository.Checksums(f.data)
	return []file{
		f,
		{path: f.path + repository.SHA1Suffix, data: []byte(sha)},
		{path: f.path + repository.MD5Suffix, data: []byte(md)},
	}
}

// readArtifact loads the file to publish. A missing or unreadable file is
// an INVALID_ARTIFACT.
func readArtifact(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArtifact, err, "artifact file %s", path)
	}
	if !fi.Mode().IsRegular() {
		return nil, errors.New(errors.ErrCodeInvalidArtifact, "artifact file %s is not a regular file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArtifact, err, "read %s", path)
	}
	return data, nil
}

// descriptor returns the POM to publish next to c: the file at pomPath
// when given, otherwise a minimal generated one. A supplied POM must parse.
func descriptor(c coord.Coordinate, pomPath string) ([]byte, error) {
	if pomPath == "" {
		project := c.WithType(c.Type)
		if c.FileClassifier() != "" {
			project.Type = coord.DefaultType
		}
		return pom.Marshal(project, nil)
	}
	data, err := readArtifact(pomPath)
	if err != nil {
		return nil, err
	}
	if _, err := pom.Parse(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArtifact, err, "descriptor %s", pomPath)
	}
	return data, nil
}
