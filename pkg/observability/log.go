package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event on Logger at debug level. It implements all
// four hook families; install it with [LogHooks.Install].
type LogHooks struct {
	Logger *log.Logger
}

// Install registers h for every event family.
func (h LogHooks) Install() {
	Install(Hooks{Catalog: h, Enrich: h, Cache: h, HTTP: h})
}

func (h LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("catalog load started", "source", source)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source string, distros int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("catalog load failed", "source", source, "elapsed", d, "err", err)
		return
	}
	h.Logger.Debug("catalog load finished", "source", source, "distributions", distros, "elapsed", d)
}

func (h LogHooks) OnMalformedRecord(_ context.Context, section string, line int, err error) {
	h.Logger.Debug("malformed record", "section", section, "line", line, "err", err)
}

func (h LogHooks) OnCollision(_ context.Context, row, col int, previous, next string) {
	h.Logger.Debug("cell collision", "row", row, "col", col, "previous", previous, "next", next)
}

func (h LogHooks) OnEnrich(_ context.Context, kind, key string, cached bool, d time.Duration, err error) {
	h.Logger.Debug("enrich", "kind", kind, "key", key, "cached", cached, "elapsed", d, "err", err)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("registry request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("registry response", "method", method, "host", host, "path", path, "status", status, "elapsed", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("registry error", "method", method, "host", host, "path", path, "err", err)
}
