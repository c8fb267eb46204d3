// Package catalog builds the in-memory index of the CPAN map and answers
// the queries the map front-end needs while a user explores it.
//
// # Building
//
// [Load] consumes map data (see package mapdata) in a single synchronous
// pass and returns a fully indexed [Catalog]:
//
//	c, err := catalog.LoadFile(ctx, "cpan-map-data.txt", catalog.LoadOptions{Logger: logger})
//
// Malformed records are skipped with a warning; a malformed section marker
// aborts the load. Two distributions placed on the same cell keep
// last-write-wins semantics and the collision is logged.
//
// # Queries
//
//   - [Catalog.At]: spatial lookup by row and column
//   - [Catalog.FindDistroByName]: exact, then case-insensitive name lookup
//   - [Catalog.FindMaintainerByID]: exact maintainer lookup
//   - [Catalog.ResolveModule]: module name to distribution, through the
//     module cache filled by [Catalog.CacheModuleMapping]
//   - [Catalog.FormatDependencies] and [Catalog.FormatReverseDependencies]:
//     turn registry records into phase groups and highlight sets
//
// A nil result means "none": unresolved references and failed lookups are
// normal outcomes, not errors.
//
// # Enrichment
//
// Registry detail is attached to entities lazily through [Slot] fields.
// Each slot is Unfetched, Pending, Ready or Failed; concurrent loaders of
// the same slot share a single fetch and a failed fetch can be retried.
//
// # Concurrency
//
// A Catalog is immutable once Load returns, apart from the slots, the
// module cache, release dates and file caches, all of which are safe for
// concurrent use.
package catalog
