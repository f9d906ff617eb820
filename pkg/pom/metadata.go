package pom

import (
	"bytes"
	"encoding/xml"
	"io"
	"slices"
	"time"

	"github.com/matzehuels/mavenresolve/pkg/errors"
	"github.com/matzehuels/mavenresolve/pkg/version"
)

// Metadata file names.
const (
	MetadataFile      = "maven-metadata.xml"
	LocalMetadataFile = "maven-metadata-local.xml"
)

// Timestamp layouts used in repository metadata.
const (
	LastUpdatedLayout = "20060102150405"
	SnapshotLayout    = "20060102.150405"
)

// Metadata is a maven-metadata.xml document. At the artifact level it
// lists versions; at the version level of a snapshot it records the
// latest deployed build.
type Metadata struct {
	XMLName      xml.Name   `xml:"metadata"`
	ModelVersion string     `xml:"modelVersion,attr,omitempty"`
	GroupID      string     `xml:"groupId"`
	ArtifactID   string     `xml:"artifactId"`
	Version      string     `xml:"version,omitempty"`
	Versioning   Versioning `xml:"versioning"`
}

// Versioning is the <versioning> element.
type Versioning struct {
	Latest           string            `xml:"latest,omitempty"`
	Release          string            `xml:"release,omitempty"`
	Versions         []string          `xml:"versions>version,omitempty"`
	Snapshot         *Snapshot         `xml:"snapshot,omitempty"`
	LastUpdated      string            `xml:"lastUpdated,omitempty"`
	SnapshotVersions []SnapshotVersion `xml:"snapshotVersions>snapshotVersion,omitempty"`
}

// Snapshot identifies the newest build of a snapshot version.
type Snapshot struct {
	Timestamp   string `xml:"timestamp,omitempty"`
	BuildNumber int    `xml:"buildNumber,omitempty"`
	LocalCopy   bool   `xml:"localCopy,omitempty"`
}

// SnapshotVersion maps one file of a snapshot build to its versioned name.
type SnapshotVersion struct {
	Classifier string `xml:"classifier,omitempty"`
	Extension  string `xml:"extension"`
	Value      string `xml:"value"`
	Updated    string `xml:"updated,omitempty"`
}

// NewMetadata returns empty artifact-level metadata.
func NewMetadata(groupID, artifactID string) *Metadata {
	return &Metadata{ModelVersion: "1.1.0", GroupID: groupID, ArtifactID: artifactID}
}

// ParseMetadata decodes a maven-metadata.xml document.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode metadata")
	}
	return &m, nil
}

// Marshal encodes the metadata with an XML header.
func (m *Metadata) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Versions returns the listed versions, oldest first.
func (m *Metadata) Versions() []string {
	out := slices.Clone(m.Versioning.Versions)
	version.Sort(out)
	return out
}

// AddVersion records v and refreshes latest, release and lastUpdated.
func (m *Metadata) AddVersion(v string, now time.Time) {
	if !slices.Contains(m.Versioning.Versions, v) {
		m.Versioning.Versions = append(m.Versioning.Versions, v)
	}
	m.refresh(now)
}

// Merge folds other into m. Versions are unioned and the newer snapshot
// build wins.
func (m *Metadata) Merge(other *Metadata, now time.Time) {
	if other == nil {
		return
	}
	for _, v := range other.Versioning.Versions {
		if !slices.Contains(m.Versioning.Versions, v) {
			m.Versioning.Versions = append(m.Versioning.Versions, v)
		}
	}
	if s := other.Versioning.Snapshot; s != nil {
		cur := m.Versioning.Snapshot
		if cur == nil || s.Timestamp > cur.Timestamp || (s.Timestamp == cur.Timestamp && s.BuildNumber > cur.BuildNumber) {
			m.Versioning.Snapshot = s
			m.Versioning.SnapshotVersions = other.Versioning.SnapshotVersions
		}
	}
	m.refresh(now)
}

func (m *Metadata) refresh(now time.Time) {
	version.Sort(m.Versioning.Versions)
	if n := len(m.Versioning.Versions); n > 0 {
		m.Versioning.Latest = m.Versioning.Versions[n-1]
		m.Versioning.Release = ""
		for i := n - 1; i >= 0; i-- {
			if !version.IsSnapshot(m.Versioning.Versions[i]) {
				m.Versioning.Release = m.Versioning.Versions[i]
				break
			}
		}
	}
	m.Versioning.LastUpdated = now.UTC().Format(LastUpdatedLayout)
}

// NextSnapshot stamps a new snapshot build at now and returns its
// timestamp and build number.
func (m *Metadata) NextSnapshot(now time.Time) (string, int) {
	build := 1
	if s := m.Versioning.Snapshot; s != nil && !s.LocalCopy {
		build = s.BuildNumber + 1
	}
	ts := now.UTC().Format(SnapshotLayout)
	m.Versioning.Snapshot = &Snapshot{Timestamp: ts, BuildNumber: build}
	m.Versioning.LastUpdated = now.UTC().Format(LastUpdatedLayout)
	return ts, build
}

// AddSnapshotFile records the versioned name of one file of the current
// snapshot build, replacing any earlier entry for the same file.
func (m *Metadata) AddSnapshotFile(classifier, extension, value string) {
	sv := SnapshotVersion{
		Classifier: classifier,
		Extension:  extension,
		Value:      value,
		Updated:    m.Versioning.LastUpdated,
	}
	for i, e := range m.Versioning.SnapshotVersions {
		if e.Classifier == classifier && e.Extension == extension {
			m.Versioning.SnapshotVersions[i] = sv
			return
		}
	}
	m.Versioning.SnapshotVersions = append(m.Versioning.SnapshotVersions, sv)
}

// SnapshotFileVersion returns the version that appears in the remote file
// name for a file of snapshot version base. Without build information the
// base version itself is used.
func (m *Metadata) SnapshotFileVersion(base, classifier, extension string) string {
	for _, sv := range m.Versioning.SnapshotVersions {
		if sv.Classifier == classifier && sv.Extension == extension && sv.Value != "" {
			return sv.Value
		}
	}
	s := m.Versioning.Snapshot
	if s == nil || s.LocalCopy || s.Timestamp == "" {
		return base
	}
	return version.Timestamped(base, s.Timestamp, s.BuildNumber)
}
