package cache

// Keyer derives cache keys for remote repository lookups.
type Keyer interface {
	// MetadataKey addresses a cached maven-metadata.xml.
	MetadataKey(repoID, path string) string

	// MissKey addresses the record of a path a repository did not have.
	MissKey(repoID, path string) string
}

// DefaultKeyer builds plain "kind:repo:hash" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MetadataKey implements Keyer.
func (DefaultKeyer) MetadataKey(repoID, path string) string {
	return hashKey("metadata:"+repoID, path)
}

// MissKey implements Keyer.
func (DefaultKeyer) MissKey(repoID, path string) string {
	return hashKey("miss:"+repoID, path)
}
