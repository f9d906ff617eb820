// Package manifest reads the list of root dependencies a resolution starts
// from.
//
// Two formats are understood, picked by file name. pom.xml and *.pom
// files contribute the project's direct dependencies with their declared
// scopes, and its dependencyManagement as version pins; parents and
// imported BOMs are read through a [pom.Loader]. *.yaml and *.yml files
// hold a small document of notations:
//
//	project: com.acme:app:1.0
//	repositories:
//	  - https://repo.maven.apache.org/maven2
//	  - id: internal
//	    url: https://maven.acme.com/releases
//	dependencies:
//	  - org.slf4j:slf4j-api:2.0.9
//	  - junit:junit:4.13.2: test
//
// Dependency entries are either a plain notation (compile scope) or a
// single-entry mapping from notation to scope.
package manifest
