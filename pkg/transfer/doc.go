// Package transfer publishes artifacts: [Installer] copies them into the
// local repository and [Deployer] uploads them to a remote one.
//
// Both write the conventional companions next to every file: a .sha1 and
// a .md5 checksum, a POM (generated when none is supplied) and the
// maven-metadata document listing the artifact's versions.
//
// # Deployment
//
// A deployment is not transactional. Files are uploaded in a fixed order
// (artifact, descriptor, metadata) and the first failure stops it. When
// nothing was stored the transport error is returned as is, coded
// AUTHENTICATION_FAILED or TRANSFER_FAILED. When some files were stored an
// [errors.PartialDeployError] lists what was uploaded and what was not:
//
//	_, err := d.Deploy(ctx, req)
//	var partial *errors.PartialDeployError
//	if errors.As(err, &partial) {
//	    log.Warn("partial deploy", "uploaded", partial.Uploaded)
//	}
//
// Snapshot versions are deployed under timestamped file names
// (1.0-20240301.120000-2) and recorded in version-level metadata.
package transfer
