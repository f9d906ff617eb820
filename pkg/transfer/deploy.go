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

// Request describes one deployment.
type Request struct {
	Coordinate coord.Coordinate
	FilePath   string
	RemoteURL  string
	PomPath    string          // optional; a minimal POM is generated when empty
	Auth       repository.Auth // nil means NoAuth
}

// Receipt reports a completed deployment.
type Receipt struct {
	Repository  string   // remote ID
	FileVersion string   // version in the uploaded file names
	Uploaded    []string // remote paths in upload order
}

// DeployOptions configures a Deployer.
type DeployOptions struct {
	Transport repository.TransportOptions
	Logger    *log.Logger
}

// Deployer uploads artifacts to remote repositories. Credentials travel
// with each Request, so one Deployer can serve several repositories.
type Deployer struct {
	opts DeployOptions
}

// NewDeployer returns a Deployer.
func NewDeployer(opts DeployOptions) *Deployer {
	opts.Transport = opts.Transport.WithDefaults()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Deployer{opts: opts}
}

// Deploy uploads the artifact, its descriptor and the updated repository
// metadata to req.RemoteURL. Nothing is retried.
func (d *Deployer) Deploy(ctx context.Context, req Request) (*Receipt, error) {
	c := req.Coordinate
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if version.IsRange(c.Version) || c.Version == "LATEST" || c.Version == "RELEASE" {
		return nil, errors.New(errors.ErrCodeMalformedNotation, "cannot deploy %s: version must be concrete", c)
	}
	data, err := readArtifact(req.FilePath)
	if err != nil {
		return nil, err
	}
	var desc []byte
	// A classified file alone does not replace the main descriptor.
	if req.PomPath != "" || c.FileClassifier() == "" {
		if desc, err = descriptor(c, req.PomPath); err != nil {
			return nil, err
		}
	}

	remote, err := repository.NewRemote("", req.RemoteURL, req.Auth)
	if err != nil {
		return nil, err
	}
	if ka, ok := remote.Auth.(repository.KeyAuth); ok {
		// Fail on a bad key or passphrase before anything is uploaded.
		if _, err := ka.Signer(); err != nil {
			return nil, err
		}
	}
	t, err := repository.NewTransport(ctx, remote, d.opts.Transport)
	if err != nil {
		return nil, err
	}

	plan, fileVersion, err := d.plan(ctx, t, c, data, desc)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{Repository: remote.ID, FileVersion: fileVersion}
	for n, f := range plan {
		if err := t.Put(ctx, f.path, f.data); err != nil {
			d.opts.Logger.Error("upload failed", "repository", remote.ID, "path", f.path, "err", err)
			if n == 0 {
				return nil, err
			}
			failed := make([]string, 0, len(plan)-n)
			for _, rest := range plan[n:] {
				failed = append(failed, rest.path)
			}
			return nil, &errors.PartialDeployError{Uploaded: receipt.Uploaded, Failed: failed, Cause: err}
		}
		receipt.Uploaded = append(receipt.Uploaded, f.path)
		d.opts.Logger.Debug("uploaded", "repository", remote.ID, "path", f.path, "bytes", len(f.data))
	}
	d.opts.Logger.Info("deployed", "coordinate", c, "repository", remote.ID, "files", len(receipt.Uploaded))
	return receipt, nil
}

// plan reads the remote metadata and returns every file to upload, in
// order, with the version used in the file names. A nil desc uploads no
// descriptor.
func (d *Deployer) plan(ctx context.Context, t repository.Transport, c coord.Coordinate, data, desc []byte) ([]file, string, error) {
	now := timeNow()
	fileVersion := c.Version
	var files []file

	var versionMD *pom.Metadata
	if version.IsSnapshot(c.Version) {
		path := repository.MetadataPath(c.GroupID, c.ArtifactID, c.Version)
		md, err := remoteMetadata(ctx, t, path, c.GroupID, c.ArtifactID)
		if err != nil {
			return nil, "", err
		}
		md.Version = c.Version
		ts, build := md.NextSnapshot(now)
		fileVersion = version.Timestamped(c.Version, ts, build)
		versionMD = md
	}

	artifactPath := repository.FilePath(c, fileVersion)
	files = append(files, withChecksums(file{path: artifactPath, data: data})...)
	if versionMD != nil {
		versionMD.AddSnapshotFile(c.FileClassifier(), c.Extension(), fileVersion)
	}

	pomCoord := c.WithType("pom")
	if pomPath := repository.FilePath(pomCoord, fileVersion); desc != nil && pomPath != artifactPath {
		files = append(files, withChecksums(file{path: pomPath, data: desc})...)
		if versionMD != nil {
			versionMD.AddSnapshotFile("", "pom", fileVersion)
		}
	}

	if versionMD != nil {
		encoded, err := versionMD.Marshal()
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
		}
		path := repository.MetadataPath(c.GroupID, c.ArtifactID, c.Version)
		files = append(files, withChecksums(file{path: path, data: encoded})...)
	}

	path := repository.MetadataPath(c.GroupID, c.ArtifactID, "")
	md, err := remoteMetadata(ctx, t, path, c.GroupID, c.ArtifactID)
	if err != nil {
		return nil, "", err
	}
	md.AddVersion(c.Version, now)
	encoded, err := md.Marshal()
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
	}
	files = append(files, withChecksums(file{path: path, data: encoded})...)
	return files, fileVersion, nil
}

// remoteMetadata downloads the metadata at path. A missing document yields
// an empty one; any other failure aborts the deployment before upload.
func remoteMetadata(ctx context.Context, t repository.Transport, path, groupID, artifactID string) (*pom.Metadata, error) {
	body, err := t.Get(ctx, path)
	if errors.Is(err, errors.ErrCodeArtifactNotFound) {
		return pom.NewMetadata(groupID, artifactID), nil
	}
	if err != nil {
		if errors.Is(err, errors.ErrCodeRepositoryUnreachable) {
			err = errors.Wrap(errors.ErrCodeTransferFailed, err, "read %s", path)
		}
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransferFailed, err, "read %s", path)
	}
	return parseOrNew(bytes.NewReader(data), groupID, artifactID), nil
}
