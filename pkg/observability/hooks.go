// Package observability lets callers observe catalog loads, registry
// enrichment, response caching and outgoing HTTP calls without this module
// depending on a metrics or tracing backend.
//
// Libraries emit events through the package-level accessors:
//
//	observability.Catalog().OnLoadStart(ctx, path)
//	observability.Catalog().OnLoadComplete(ctx, path, distros, elapsed, err)
//
// Applications install implementations once at startup, either one family
// at a time or as a bundle:
//
//	observability.Install(observability.Hooks{Catalog: myCatalogHooks})
//
// [LogHooks] is a ready-made implementation that reports every event on a
// charm logger at debug level.
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CatalogHooks receives catalog construction events.
type CatalogHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, distros int, duration time.Duration, err error)
	// OnMalformedRecord is called for every skipped record, and for the
	// record that aborts a strict load.
	OnMalformedRecord(ctx context.Context, section string, line int, err error)
	// OnCollision is called when next replaces previous on a grid cell.
	OnCollision(ctx context.Context, row, col int, previous, next string)
}

// EnrichHooks receives lazy registry enrichment events.
type EnrichHooks interface {
	// OnEnrich records one enrichment request. kind is "release", "author",
	// "module", "rdeps" or "file"; cached is true when no registry call was made.
	OnEnrich(ctx context.Context, kind, key string, cached bool, duration time.Duration, err error)
}

// CacheHooks receives response cache events. keyType is the cache
// namespace (e.g. "http").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing registry request events.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is called when no response was received.
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopCatalogHooks struct{}

func (NoopCatalogHooks) OnLoadStart(context.Context, string)                               {}
func (NoopCatalogHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopCatalogHooks) OnMalformedRecord(context.Context, string, int, error)             {}
func (NoopCatalogHooks) OnCollision(context.Context, int, int, string, string)             {}

type NoopEnrichHooks struct{}

func (NoopEnrichHooks) OnEnrich(context.Context, string, string, bool, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// Hooks bundles one implementation per event family. A nil field leaves
// the installed implementation for that family unchanged.
type Hooks struct {
	Catalog CatalogHooks
	Enrich  EnrichHooks
	Cache   CacheHooks
	HTTP    HTTPHooks
}

func noopHooks() *Hooks {
	return &Hooks{
		Catalog: NoopCatalogHooks{},
		Enrich:  NoopEnrichHooks{},
		Cache:   NoopCacheHooks{},
		HTTP:    NoopHTTPHooks{},
	}
}

var (
	current   atomic.Pointer[Hooks]
	installMu sync.Mutex
)

func init() { current.Store(noopHooks()) }

// Install replaces the non-nil families of h. Readers never block; an event
// already in flight finishes on the implementation it started with.
func Install(h Hooks) {
	installMu.Lock()
	defer installMu.Unlock()
	next := *current.Load()
	if h.Catalog != nil {
		next.Catalog = h.Catalog
	}
	if h.Enrich != nil {
		next.Enrich = h.Enrich
	}
	if h.Cache != nil {
		next.Cache = h.Cache
	}
	if h.HTTP != nil {
		next.HTTP = h.HTTP
	}
	current.Store(&next)
}

// SetCatalogHooks installs catalog hooks. A nil h is ignored.
func SetCatalogHooks(h CatalogHooks) { Install(Hooks{Catalog: h}) }

// SetEnrichHooks installs enrichment hooks. A nil h is ignored.
func SetEnrichHooks(h EnrichHooks) { Install(Hooks{Enrich: h}) }

// SetCacheHooks installs response cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { Install(Hooks{Cache: h}) }

// SetHTTPHooks installs registry HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { Install(Hooks{HTTP: h}) }

// Catalog returns the installed catalog hooks.
func Catalog() CatalogHooks { return current.Load().Catalog }

// Enrich returns the installed enrichment hooks.
func Enrich() EnrichHooks { return current.Load().Enrich }

// Cache returns the installed response cache hooks.
func Cache() CacheHooks { return current.Load().Cache }

// HTTP returns the installed registry HTTP hooks.
func HTTP() HTTPHooks { return current.Load().HTTP }

// Reset restores the no-op implementations.
func Reset() {
	installMu.Lock()
	defer installMu.Unlock()
	current.Store(noopHooks())
}
