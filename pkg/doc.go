// Package pkg provides the libraries behind mavenresolve, a resolver and
// repository manager for Maven coordinates.
//
// # Overview
//
// mavenresolve computes the transitive closure of a set of root
// dependencies, keeps a local repository in the standard Maven layout, and
// installs or deploys artifacts. The pkg directory is organized into four
// areas:
//
//  1. Model: [coord], [version], [pom]
//  2. Storage and transport: [repository], [cache], [transfer]
//  3. Resolution and output: [resolve], [manifest], [render]
//  4. Runtime: [config], [server], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow of a resolution:
//
//	manifest (pom.xml / deps.yaml) or notations
//	         ↓
//	    [manifest] / [coord] (root dependencies)
//	         ↓
//	    [resolve] (nearest-wins BFS over effective POMs)
//	         ↓
//	    [repository] (local repository, then remotes in order)
//	         ↓
//	    [render] / [pom] (tree, DOT, SVG, generated POM)
//
// # Quick Start
//
// Resolve a dependency against Maven Central:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mavenresolve/pkg/coord"
//	    "github.com/matzehuels/mavenresolve/pkg/repository"
//	    "github.com/matzehuels/mavenresolve/pkg/resolve"
//	)
//
//	m, _ := repository.NewManager(repository.Options{})
//	defer m.Close()
//	m.AddRemote("https://repo.maven.apache.org/maven2", nil)
//
//	root, _ := coord.NewDependency("org.slf4j:slf4j-simple:2.0.9", "compile")
//	res, _ := resolve.New(m, resolve.Options{}).Resolve(context.Background(), []coord.Dependency{root}, true)
//	for _, a := range res.Artifacts {
//	    fmt.Println(a.Dependency, a.Path)
//	}
//
// # Main Packages
//
// [coord] - Coordinates, scopes and exclusions. Parses the
// groupId:artifactId[:type[:classifier]]:version notation and implements
// scope narrowing along a dependency path.
//
// [version] - Version ordering, ranges such as [1.0,2.0) and snapshot
// timestamps.
//
// [pom] - Descriptor and maven-metadata.xml documents. The [pom.Builder]
// computes the effective model of a project: parent chain, property
// interpolation, dependencyManagement and BOM imports.
//
// [repository] - The local repository and remote transports (HTTP, file,
// S3). A [repository.Manager] consults the local repository first, then
// every remote in order, and caches metadata answers through [cache].
//
// [cache] - Metadata cache backends (file, Redis, none) and the retry
// helper shared by the transports.
//
// [resolve] - Breadth-first resolution with nearest-wins conflict
// handling, exclusions, managed versions and a bounded worker pool.
//
// [transfer] - Install into the local repository and deploy to a remote
// one, including checksums and snapshot metadata.
//
// [manifest] - Reads root dependencies from pom.xml or a YAML manifest.
//
// [render] - Text trees, Graphviz DOT and SVG/PDF/PNG output.
//
// [config] - TOML configuration with environment overrides.
//
// [server] - A minimal HTTP repository for deploy targets and tests.
//
// [observability] - Hooks for resolution, cache and transfer events with a
// Prometheus implementation.
//
// # Common Workflows
//
// Read roots from a manifest:
//
//	mf, _ := manifest.Load(ctx, "pom.xml", m)
//	res, _ := resolve.New(m, resolve.Options{Managed: mf.Managed}).Resolve(ctx, mf.Dependencies, false)
//
// Install a local build:
//
//	c, _ := coord.Parse("com.acme:core:1.0")
//	transfer.NewInstaller(m).Install(ctx, c, "target/core-1.0.jar", "pom.xml")
//
// Draw the resolved tree:
//
//	svg, _ := render.RenderSVG(render.ToDOT(res, render.Options{Detailed: true}))
//
// # Testing
//
// Run tests:
//
//	go test ./...                        # All tests
//	go test ./pkg/resolve/...            # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [coord]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/coord
// [version]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/version
// [pom]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/pom
// [pom.Builder]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/pom#Builder
// [repository]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/repository
// [repository.Manager]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/repository#Manager
// [cache]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/cache
// [resolve]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/resolve
// [transfer]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/transfer
// [manifest]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/manifest
// [render]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/render
// [config]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mavenresolve/pkg/buildinfo
package pkg
