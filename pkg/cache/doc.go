// Package cache stores remote repository responses between runs.
//
// The resolver consults remote repositories for maven-metadata.xml and for
// paths that turned out to be missing. Both answers are worth remembering
// for a while: metadata changes rarely and a 404 from a slow mirror costs a
// full round trip. Artifacts and descriptors are not cached here; they are
// copied into the local repository instead.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, one file per key
//   - [RedisCache]: a shared redis instance, native TTLs
//   - [NullCache]: caching disabled
//
// # Keys
//
// [Keyer] derives keys from a repository ID and a repository-relative path.
// [NewScopedKeyer] prefixes every key, which keeps two local repositories
// that share one redis instance apart.
package cache
