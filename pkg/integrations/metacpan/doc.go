// Package metacpan is a client for the MetaCPAN v1 REST API.
//
// It covers the four lookups the map needs to enrich a distribution:
//
//   - [Client.FetchRelease]: latest release of a distribution, with its
//     declared dependencies
//   - [Client.FetchAuthor]: a PAUSE author profile
//   - [Client.FetchModule]: the distribution that ships a module
//   - [Client.FetchReverseDependencies]: releases depending on a distribution
//
// [Client.FetchSource] additionally reads raw files (e.g. "Changes") from a
// release.
//
// Responses are cached through the shared [integrations.Client].
package metacpan
