// Package resolve computes the transitive dependency closure of a set of
// Maven coordinates.
//
// # Algorithm
//
// [Resolver.Resolve] expands the graph breadth first, one frontier per
// depth:
//
//  1. Every candidate of the frontier is checked against the artifacts
//     already chosen. The first candidate for an identity
//     (groupId:artifactId:type:classifier) wins: shallower candidates beat
//     deeper ones, and at equal depth the one discovered first wins, which
//     follows root order. Losers are dropped with their subtrees.
//  2. The descriptors of the winners are fetched concurrently on a bounded
//     worker pool. Version ranges, LATEST and RELEASE are turned into
//     concrete versions first.
//  3. Each descriptor's compile and runtime dependencies become the next
//     frontier, in declaration order. Optional dependencies and those
//     matching an exclusion inherited along the path are skipped.
//
// Scopes narrow along the path (see [coord.Scope.Narrow]); a test root
// turns its whole subtree into test. System dependencies are kept but
// never expanded or downloaded.
//
// # Storage
//
// Candidates live in an arena indexed by position, with parents referenced
// by index. Losing candidates are marked rather than removed, and the arena
// is compacted into [Result.Artifacts] once the graph is complete.
//
// # Failure
//
// A descriptor that cannot be obtained aborts the whole resolution with an
// [errors.ResolutionError] naming the coordinate and the chain of
// dependencies that led to it. No partial result is returned.
package resolve
