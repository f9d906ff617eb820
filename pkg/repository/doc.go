// Package repository models the local repository and the ordered list of
// remote repositories, and mediates every artifact read and write.
//
// # Search order
//
// [Manager.Fetch] and [Manager.ResolveMetadata] always look in the local
// repository first and then consult remotes in the order they were added.
// The first repository that has the file wins. A remote hit is copied into
// the local repository before it is returned, so later fetches are local.
//
// A remote that answers "not found" and a remote that cannot be reached are
// told apart: the first yields ARTIFACT_NOT_FOUND once every repository was
// asked, the second REPOSITORY_UNREACHABLE. Both move the search on to the
// next remote.
//
// # Transports
//
// Remote URLs select a [Transport]:
//
//   - http, https: GET and PUT with basic auth or signed uploads
//   - s3: objects in an S3 bucket, credentials from BasicAuth or the
//     default AWS chain
//   - file: a directory on disk laid out as a repository
//
// # Local writes
//
// Files are written to a temporary name in the target directory and renamed
// into place while holding a per-path lock, so a cancelled download never
// leaves a torn file behind.
package repository
