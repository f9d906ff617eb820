// Package coord parses and models Maven coordinates and dependency
// declarations.
//
// # Notation
//
// A coordinate is written as colon-delimited notation:
//
//	groupId:artifactId:version
//	groupId:artifactId:type:version
//	groupId:artifactId:type:classifier:version
//
// The type defaults to "jar" when omitted. A classifier is only present in
// the five-field form. Empty segments are rejected with
// [errors.ErrCodeMalformedNotation].
//
// # Identity
//
// Two coordinates name the same artifact when their [Key] values are equal.
// The key covers groupId, artifactId, type and classifier; the version is
// deliberately excluded because conflict resolution picks exactly one
// version per identity.
//
// # Dependencies
//
// A [Dependency] adds a [Scope], an optional flag and a set of
// [Exclusion] patterns to a coordinate. [ParseDependency] accepts either a
// bare notation string (scope "compile") or a single-entry map of
// notation to scope, which is how dependency lists are written in manifest
// files:
//
//	dependencies:
//	  - com.acme:core:1.0
//	  - com.acme:testkit:1.0: test
package coord
