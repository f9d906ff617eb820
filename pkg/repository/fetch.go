package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/cache"
	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/observability"
	"github.com/matzehuels/mavenresolve/pkg/pom"
	"github.com/matzehuels/mavenresolve/pkg/version"
)

// Fetch returns the local file for c, downloading it from the first remote
// that has it when it is not stored locally yet. Downloaded files are
// verified against a .sha1 companion when the remote publishes one.
func (m *Manager) Fetch(ctx context.Context, c coord.Coordinate) (Artifact, error) {
	if err := c.Validate(); err != nil {
		return Artifact{}, err
	}
	local, keyer, remotes := m.snapshot()
	rel := ArtifactPath(c)

	if local.Exists(rel) {
		p, _ := local.Path(rel)
		return Artifact{Path: p, Repository: LocalID}, nil
	}

	var failures []error
	for _, e := range remotes {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		remotePath := rel
		if version.IsSnapshot(c.Version) {
			remotePath = m.snapshotPath(ctx, e, keyer, c)
		}
		missKey := keyer.MissKey(e.ID, remotePath)
		if m.cachedMiss(ctx, missKey) {
			failures = append(failures, errors.New(errors.ErrCodeArtifactNotFound, "%s not found in %s (cached)", remotePath, e.ID))
			continue
		}

		err := m.download(ctx, local, e, remotePath, rel)
		switch {
		case err == nil:
			p, _ := local.Path(rel)
			m.opts.Logger.Debug("fetched", "coordinate", c, "repository", e.ID)
			return Artifact{Path: p, Repository: e.ID}, nil
		case ctx.Err() != nil:
			return Artifact{}, ctx.Err()
		case errors.Is(err, errors.ErrCodeIO), errors.Is(err, errors.ErrCodeInvalidPath):
			return Artifact{}, err
		case notFound(err):
			m.rememberMiss(ctx, missKey)
		default:
			m.opts.Logger.Warn("repository failed, trying next", "repository", e.ID, "coordinate", c, "err", err)
		}
		failures = append(failures, err)
	}
	return Artifact{}, exhausted(errors.ErrCodeArtifactNotFound, failures, "artifact %s", c)
}

// download copies remotePath of e into rel of local.
func (m *Manager) download(ctx context.Context, local *Local, e *remoteEntry, remotePath, rel string) error {
	t, err := m.transport(ctx, e)
	if err != nil {
		return err
	}
	expected := m.remoteChecksum(ctx, t, remotePath)

	body, err := t.Get(ctx, remotePath)
	if err != nil {
		return err
	}
	defer body.Close()

	_, err = local.WriteStream(rel, body, func(sum string) error {
		if expected != "" && sum != expected {
			return errors.New(errors.ErrCodeTransferFailed, "checksum mismatch for %s from %s: got %s, want %s", remotePath, e.ID, sum, expected)
		}
		return nil
	})
	return err
}

// remoteChecksum returns the published SHA-1 of path, or "" when the
// remote has none or cannot serve it.
func (m *Manager) remoteChecksum(ctx context.Context, t Transport, path string) string {
	body, err := t.Get(ctx, path+SHA1Suffix)
	if err != nil {
		return ""
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil {
		return ""
	}
	return parseChecksum(data)
}

// snapshotPath returns the remote file path of a snapshot coordinate, using
// the remote's version-level metadata to find the newest timestamped build.
func (m *Manager) snapshotPath(ctx context.Context, e *remoteEntry, keyer cache.Keyer, c coord.Coordinate) string {
	md, err := m.remoteMetadata(ctx, e, keyer, MetadataPath(c.GroupID, c.ArtifactID, c.Version))
	if err != nil {
		return ArtifactPath(c)
	}
	return FilePath(c, md.SnapshotFileVersion(c.Version, c.FileClassifier(), c.Extension()))
}

// ResolveMetadata returns the maven-metadata.xml that applies to c: the
// version-level document for snapshots, the artifact-level one otherwise.
// Locally installed metadata is consulted first, then each remote in order;
// the first hit wins.
func (m *Manager) ResolveMetadata(ctx context.Context, c coord.Coordinate) (*pom.Metadata, error) {
	v := ""
	if version.IsSnapshot(c.Version) {
		v = c.Version
	}
	local, keyer, remotes := m.snapshot()

	if md, err := readLocalMetadata(local, c.GroupID, c.ArtifactID, v); err == nil {
		return md, nil
	}

	path := MetadataPath(c.GroupID, c.ArtifactID, v)
	var failures []error
	for _, e := range remotes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		md, err := m.remoteMetadata(ctx, e, keyer, path)
		if err == nil {
			return md, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		failures = append(failures, err)
	}
	return nil, exhausted(errors.ErrCodeMetadataNotFound, failures, "metadata for %s:%s", c.GroupID, c.ArtifactID)
}

// Versions lists the versions of c's artifact known to the local repository
// and to every reachable remote, oldest first. Unlike ResolveMetadata it
// merges all repositories, which is what range selection needs.
func (m *Manager) Versions(ctx context.Context, c coord.Coordinate) ([]string, error) {
	local, keyer, remotes := m.snapshot()
	merged := pom.NewMetadata(c.GroupID, c.ArtifactID)
	found := false

	if md, err := readLocalMetadata(local, c.GroupID, c.ArtifactID, ""); err == nil {
		merged.Merge(md, timeNow())
		found = true
	}
	path := MetadataPath(c.GroupID, c.ArtifactID, "")
	var failures []error
	for _, e := range remotes {
		md, err := m.remoteMetadata(ctx, e, keyer, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures = append(failures, err)
			continue
		}
		merged.Merge(md, timeNow())
		found = true
	}
	if !found {
		return nil, exhausted(errors.ErrCodeMetadataNotFound, failures, "metadata for %s:%s", c.GroupID, c.ArtifactID)
	}
	return merged.Versions(), nil
}

// ResolveVersion turns the version requirement of c into a concrete
// version. Ranges select the newest matching version across repositories;
// LATEST and RELEASE use repository metadata; anything else is returned as
// written.
func (m *Manager) ResolveVersion(ctx context.Context, c coord.Coordinate) (string, error) {
	switch {
	case c.Version == "LATEST" || c.Version == "RELEASE":
		versions, err := m.Versions(ctx, c)
		if err != nil {
			return "", err
		}
		for i := len(versions) - 1; i >= 0; i-- {
			if c.Version == "LATEST" || !version.IsSnapshot(versions[i]) {
				return versions[i], nil
			}
		}
		return "", errors.New(errors.ErrCodeArtifactNotFound, "no %s version of %s", strings.ToLower(c.Version), c.GA())
	case version.IsRange(c.Version):
		rng, err := version.ParseRange(c.Version)
		if err != nil {
			return "", err
		}
		versions, err := m.Versions(ctx, c)
		if err != nil {
			return "", err
		}
		v, ok := rng.Select(versions)
		if !ok {
			return "", errors.New(errors.ErrCodeArtifactNotFound, "no version of %s matches %s", c.GA(), c.Version)
		}
		return v, nil
	default:
		return c.Version, nil
	}
}

// remoteMetadata fetches and parses metadata at path from e, going through
// the metadata cache.
func (m *Manager) remoteMetadata(ctx context.Context, e *remoteEntry, keyer cache.Keyer, path string) (*pom.Metadata, error) {
	key := keyer.MetadataKey(e.ID, path)
	hooks := observability.Cache()
	if data, ok, err := m.opts.Cache.Get(ctx, key); err == nil && ok {
		if md, err := pom.ParseMetadata(bytes.NewReader(data)); err == nil {
			hooks.OnCacheHit(ctx, "metadata")
			return md, nil
		}
	}
	hooks.OnCacheMiss(ctx, "metadata")

	missKey := keyer.MissKey(e.ID, path)
	if m.cachedMiss(ctx, missKey) {
		return nil, errors.New(errors.ErrCodeMetadataNotFound, "%s not found in %s (cached)", path, e.ID)
	}

	t, err := m.transport(ctx, e)
	if err != nil {
		return nil, err
	}
	body, err := t.Get(ctx, path)
	if err != nil {
		if notFound(err) {
			m.rememberMiss(ctx, missKey)
			return nil, errors.Wrap(errors.ErrCodeMetadataNotFound, err, "metadata %s", path)
		}
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	md, err := pom.ParseMetadata(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransferFailed, err, "metadata %s from %s", path, e.ID)
	}
	if err := m.opts.Cache.Set(ctx, key, data, m.opts.MetadataTTL); err == nil {
		hooks.OnCacheSet(ctx, "metadata", len(data))
	}
	return md, nil
}

func (m *Manager) cachedMiss(ctx context.Context, key string) bool {
	_, ok, err := m.opts.Cache.Get(ctx, key)
	if err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "miss")
		return true
	}
	return false
}

func (m *Manager) rememberMiss(ctx context.Context, key string) {
	if err := m.opts.Cache.Set(ctx, key, []byte{1}, m.opts.MissTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "miss", 1)
	}
}

func readLocalMetadata(local *Local, groupID, artifactID, v string) (*pom.Metadata, error) {
	data, err := local.ReadFile(LocalMetadataPath(groupID, artifactID, v))
	if err != nil {
		return nil, err
	}
	return pom.ParseMetadata(bytes.NewReader(data))
}

// exhausted builds the error reported after every repository was asked.
// Any transport failure makes the result REPOSITORY_UNREACHABLE, because a
// repository that could not answer might have had the file.
func exhausted(notFoundCode errors.Code, failures []error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	var transport []error
	for _, f := range failures {
		if !notFound(f) && !errors.Is(f, errors.ErrCodeMetadataNotFound) {
			transport = append(transport, f)
		}
	}
	if len(transport) > 0 {
		return errors.Wrap(errors.ErrCodeRepositoryUnreachable, errors.Join(transport...), "%s: %d of %d repositories failed", what, len(transport), len(failures))
	}
	if len(failures) == 0 {
		return errors.New(notFoundCode, "%s not found in local repository and no remotes configured", what)
	}
	return errors.Wrap(notFoundCode, errors.Join(failures...), "%s not found in %d repositories", what, len(failures))
}
