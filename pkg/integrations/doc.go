// Package integrations provides HTTP plumbing for registry API clients.
//
// # Overview
//
// Registry clients live in subpackages; the map currently talks to one:
//
//   - [metacpan]: MetaCPAN, the CPAN search and metadata API
//
// # Client Pattern
//
// Registry clients embed [Client] and wrap every lookup in [Client.Cached]:
//
//	client := metacpan.NewClient(backend, 24*time.Hour, "cpanmap/1.0")
//	rel, err := client.FetchRelease(ctx, "XML-Simple", false)  // false = use cache
//
// [Client] handles:
//   - HTTP requests with retry of transient failures (5xx, connection errors)
//   - Response caching through any [cache.Cache] backend
//   - Status mapping: 404 to [ErrNotFound], 429 to [errors.RateLimitedError],
//     everything else to [ErrNetwork]
//
// [Classify] turns those errors into coded errors for callers that report
// them to users.
//
// [metacpan]: github.com/matzehuels/cpanmap/pkg/integrations/metacpan
// [cache.Cache]: github.com/matzehuels/cpanmap/pkg/cache.Cache
// [errors.RateLimitedError]: github.com/matzehuels/cpanmap/pkg/errors.RateLimitedError
package integrations
