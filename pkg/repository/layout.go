package repository

import (
	"path"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/pom"
)

// ArtifactPath returns the repository-relative path of c:
// groupId (dots as slashes)/artifactId/version/artifactId-version[-classifier].ext
func ArtifactPath(c coord.Coordinate) string {
	return FilePath(c, c.Version)
}

// FilePath is ArtifactPath with the version in the file name replaced by
// fileVersion. Deployed snapshots live in the base version's directory under
// a timestamped name.
func FilePath(c coord.Coordinate, fileVersion string) string {
	name := c.ArtifactID + "-" + fileVersion
	if cl := c.FileClassifier(); cl != "" {
		name += "-" + cl
	}
	name += "." + c.Extension()
	return path.Join(versionDir(c.GroupID, c.ArtifactID, c.Version), name)
}

// DescriptorPath returns the path of the POM that describes c.
func DescriptorPath(c coord.Coordinate) string {
	return ArtifactPath(c.WithType("pom"))
}

// MetadataPath returns the path of maven-metadata.xml for an artifact, or
// for one version of it when version is not empty.
func MetadataPath(groupID, artifactID, version string) string {
	return metadataPath(groupID, artifactID, version, pom.MetadataFile)
}

// LocalMetadataPath is MetadataPath for the metadata written by installs.
func LocalMetadataPath(groupID, artifactID, version string) string {
	return metadataPath(groupID, artifactID, version, pom.LocalMetadataFile)
}

func metadataPath(groupID, artifactID, version, file string) string {
	if version == "" {
		return path.Join(artifactDir(groupID, artifactID), file)
	}
	return path.Join(versionDir(groupID, artifactID, version), file)
}

func artifactDir(groupID, artifactID string) string {
	return path.Join(strings.ReplaceAll(groupID, ".", "/"), artifactID)
}

func versionDir(groupID, artifactID, version string) string {
	return path.Join(artifactDir(groupID, artifactID), version)
}
