// Package pom reads and writes Maven project descriptors and repository
// metadata.
//
// # Descriptors
//
// [Parse] decodes a pom.xml into a raw [Project]. Raw projects still carry
// unresolved ${...} expressions and inherit nothing from their parents;
// [Builder.Build] turns one into an effective [Model] by walking the parent
// chain, merging properties and dependencyManagement, importing BOMs and
// applying managed versions and scopes to the declared dependencies.
//
// Parents and imported BOMs are loaded through a [Loader], which the
// repository manager implements on top of local and remote repositories.
//
// # Metadata
//
// [Metadata] models maven-metadata.xml at the artifact level (available
// versions) and at the version level (snapshot builds).
//
// # Writing
//
// [Write] emits a minimal POM 4.0.0 document for a project coordinate and a
// list of dependencies, for example the flattened output of a resolution.
package pom
