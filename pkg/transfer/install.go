package transfer

import (
	"bytes"
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/pom"
	"github.com/matzehuels/mavenresolve/pkg/repository"
	"github.com/matzehuels/mavenresolve/pkg/version"
)

// Installer copies artifacts into the local repository of a Manager.
type Installer struct {
	repos  *repository.Manager
	logger *log.Logger
}

// NewInstaller returns an Installer writing to the local repository of m.
func NewInstaller(m *repository.Manager) *Installer {
	return &Installer{repos: m, logger: m.Logger()}
}

// Install stores filePath as the file of c, with checksums, a descriptor
// and updated maven-metadata-local.xml. pomPath may be empty, in which case
// an existing descriptor is kept and a minimal one is generated otherwise.
func (i *Installer) Install(ctx context.Context, c coord.Coordinate, filePath, pomPath string) (repository.Artifact, error) {
	if err := c.Validate(); err != nil {
		return repository.Artifact{}, err
	}
	if version.IsRange(c.Version) || c.Version == "LATEST" || c.Version == "RELEASE" {
		return repository.Artifact{}, errors.New(errors.ErrCodeMalformedNotation, "cannot install %s: version must be concrete", c)
	}
	data, err := readArtifact(filePath)
	if err != nil {
		return repository.Artifact{}, err
	}
	local := i.repos.Local()
	rel := repository.ArtifactPath(c)

	files := withChecksums(file{path: rel, data: data})

	descPath := repository.DescriptorPath(c)
	if descPath != rel && (pomPath != "" || !local.Exists(descPath)) {
		desc, err := descriptor(c, pomPath)
		if err != nil {
			return repository.Artifact{}, err
		}
		files = append(files, withChecksums(file{path: descPath, data: desc})...)
	}

	md, err := i.localMetadata(local, c)
	if err != nil {
		return repository.Artifact{}, err
	}
	files = append(files, md...)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return repository.Artifact{}, err
		}
		if err := local.WriteFile(f.path, f.data); err != nil {
			return repository.Artifact{}, err
		}
	}
	i.repos.InvalidateDescriptors()

	p, _ := local.Path(rel)
	i.logger.Info("installed", "coordinate", c, "path", p)
	return repository.Artifact{Path: p, Repository: repository.LocalID}, nil
}

// localMetadata returns the updated maven-metadata-local.xml documents for
// c: the artifact level one and, for snapshots, the version level one.
func (i *Installer) localMetadata(local *repository.Local, c coord.Coordinate) ([]file, error) {
	now := timeNow()
	artifactPath := repository.LocalMetadataPath(c.GroupID, c.ArtifactID, "")
	md, err := readMetadata(local, artifactPath, c.GroupID, c.ArtifactID)
	if err != nil {
		return nil, err
	}
	md.AddVersion(c.Version, now)
	data, err := md.Marshal()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
	}
	files := []file{{path: artifactPath, data: data}}

	if version.IsSnapshot(c.Version) {
		versionPath := repository.LocalMetadataPath(c.GroupID, c.ArtifactID, c.Version)
		vmd, err := readMetadata(local, versionPath, c.GroupID, c.ArtifactID)
		if err != nil {
			return nil, err
		}
		vmd.Version = c.Version
		vmd.Versioning.Snapshot = &pom.Snapshot{LocalCopy: true}
		vmd.Versioning.LastUpdated = now.UTC().Format(pom.LastUpdatedLayout)
		vmd.AddSnapshotFile(c.FileClassifier(), c.Extension(), c.Version)
		if c.Type != "pom" {
			vmd.AddSnapshotFile("", "pom", c.Version)
		}
		data, err := vmd.Marshal()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
		}
		files = append(files, file{path: versionPath, data: data})
	}
	return files, nil
}

// readMetadata loads the metadata at rel, or returns an empty document when
// there is none. Unparseable metadata is replaced.
func readMetadata(local *repository.Local, rel, groupID, artifactID string) (*pom.Metadata, error) {
	data, err := local.ReadFile(rel)
	if errors.Is(err, errors.ErrCodeArtifactNotFound) {
		return pom.NewMetadata(groupID, artifactID), nil
	}
	if err != nil {
		return nil, err
	}
	return parseOrNew(bytes.NewReader(data), groupID, artifactID), nil
}

func parseOrNew(r io.Reader, groupID, artifactID string) *pom.Metadata {
	md, err := pom.ParseMetadata(r)
	if err != nil {
		return pom.NewMetadata(groupID, artifactID)
	}
	return md
}
