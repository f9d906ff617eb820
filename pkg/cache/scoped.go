package cache

// ScopedKeyer wraps a Keyer with a prefix so several local repositories can
// share one cache backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "repo:"+Hash([]byte(localPath))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MetadataKey generates a prefixed metadata key.
func (k *ScopedKeyer) MetadataKey(repoID, path string) string {
	return k.prefix + k.inner.MetadataKey(repoID, path)
}

// MissKey generates a prefixed miss key.
func (k *ScopedKeyer) MissKey(repoID, path string) string {
	return k.prefix + k.inner.MissKey(repoID, path)
}
