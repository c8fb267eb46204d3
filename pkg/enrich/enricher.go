package enrich

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/cpanmap/pkg/catalog"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
	"github.com/matzehuels/cpanmap/pkg/observability"
)

const (
	// DefaultTimeout bounds each registry call.
	DefaultTimeout = 15 * time.Second
	// DefaultWorkers bounds concurrent module lookups per dependency list.
	DefaultWorkers = 8
)

// Modules that name the toolchain rather than a distribution.
var pseudoModules = map[string]bool{
	"perl": true,
}

// Options configures an Enricher.
type Options struct {
	Timeout time.Duration // Per registry call; DefaultTimeout when zero
	Workers int           // Concurrent module lookups; DefaultWorkers when zero
	Logger  *log.Logger   // Defaults to log.Default()
}

// Enricher fetches registry data for the entities of one catalog.
//
// All methods are safe for concurrent use.
type Enricher struct {
	catalog  *catalog.Catalog
	registry Registry
	opts     Options

	modules singleflight.Group
	missing sync.Map // module -> struct{}, modules the registry does not know
}

// New creates an Enricher for c backed by reg.
func New(c *catalog.Catalog, reg Registry, opts Options) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Enricher{catalog: c, registry: reg, opts: opts}
}

// Catalog returns the catalog being enriched.
func (e *Enricher) Catalog() *catalog.Catalog { return e.catalog }

// ReleaseDetail returns the latest release record of d, fetching it on first
// use. A successful fetch also records the release date on d.
func (e *Enricher) ReleaseDetail(ctx context.Context, d *catalog.Distribution) (*catalog.ReleaseDetail, error) {
	cached := d.Release.State() == catalog.Ready
	start := time.Now()
	detail, err := d.Release.Load(ctx, func(ctx context.Context) (*catalog.ReleaseDetail, error) {
		ctx, cancel := e.callContext(ctx)
		defer cancel()
		detail, err := e.registry.FetchReleaseDetail(ctx, d.DisplayName)
		if err != nil {
			return nil, e.transportError(ctx, err, "release %s", d.DisplayName)
		}
		d.SetReleaseDate(detail.Date)
		return detail, nil
	})
	e.report(ctx, "release", d.Name, cached, start, err)
	return detail, err
}

// Dependencies returns the formatted dependency report of d. Modules not
// known to the catalog are looked up in the registry before formatting so
// that they can be linked to their distributions.
//
// A module the registry does not know stays unresolved; a transport failure
// during the lookups fails the report so that it is retried later.
func (e *Enricher) Dependencies(ctx context.Context, d *catalog.Distribution) (*catalog.DependencyReport, error) {
	cached := d.Deps.State() == catalog.Ready
	start := time.Now()
	report, err := d.Deps.Load(ctx, func(ctx context.Context) (*catalog.DependencyReport, error) {
		detail, err := e.ReleaseDetail(ctx, d)
		if err != nil {
			return nil, err
		}
		if err := e.resolveModules(ctx, detail.Dependencies); err != nil {
			return nil, err
		}
		return e.catalog.FormatDependencies(detail.Dependencies), nil
	})
	e.report(ctx, "deps", d.Name, cached, start, err)
	return report, err
}

func (e *Enricher) resolveModules(ctx context.Context, deps []catalog.Dependency) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	seen := make(map[string]bool, len(deps))
	for _, dep := range deps {
		if seen[dep.Module] || pseudoModules[dep.Module] {
			continue
		}
		seen[dep.Module] = true
		if e.catalog.ResolveModule(dep.Module) != nil {
			continue
		}
		g.Go(func() error {
			_, err := e.ResolveModule(ctx, dep.Module)
			return err
		})
	}
	return g.Wait()
}

// ResolveModule maps module to a catalog distribution, asking the registry
// when the catalog cannot answer. It returns nil without error when the
// module is unknown to the registry or ships in a distribution that is not
// on the map. Concurrent lookups of one module share a registry call, which
// runs detached from any single caller's cancellation.
func (e *Enricher) ResolveModule(ctx context.Context, module string) (*catalog.Distribution, error) {
	start := time.Now()
	if d := e.catalog.ResolveModule(module); d != nil {
		e.report(ctx, "module", module, true, start, nil)
		return d, nil
	}
	if _, ok := e.missing.Load(module); ok {
		e.report(ctx, "module", module, true, start, nil)
		return nil, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := e.modules.DoChan(module, func() (any, error) {
		return e.fetchModuleOwner(detached, module)
	})
	select {
	case res := <-ch:
		e.report(ctx, "module", module, false, start, res.Err)
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalog.Distribution), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Enricher) fetchModuleOwner(ctx context.Context, module string) (*catalog.Distribution, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()
	release, err := e.registry.FetchModuleOwner(ctx, module)
	if errs.Is(err, errs.ErrCodeNotFound) {
		e.missing.Store(module, struct{}{})
		return nil, nil
	}
	if err != nil {
		return nil, e.transportError(ctx, err, "module %s", module)
	}
	d := e.catalog.FindDistroByName(catalog.DistroNameFromRelease(release))
	if d == nil {
		e.opts.Logger.Debug("module ships outside the map", "module", module, "release", release)
		e.missing.Store(module, struct{}{})
		return nil, nil
	}
	e.catalog.CacheModuleMapping(module, d.Name)
	return d, nil
}

// ReverseDependencies returns the catalog distributions that depend on d.
// Registry hits that are not on the map are left out.
func (e *Enricher) ReverseDependencies(ctx context.Context, d *catalog.Distribution) (*catalog.ReverseDependencyReport, error) {
	cached := d.RDeps.State() == catalog.Ready
	start := time.Now()
	report, err := d.RDeps.Load(ctx, func(ctx context.Context) (*catalog.ReverseDependencyReport, error) {
		ctx, cancel := e.callContext(ctx)
		defer cancel()
		hits, err := e.registry.SearchReverseDependencies(ctx, d.DisplayName)
		if err != nil {
			return nil, e.transportError(ctx, err, "reverse dependencies of %s", d.DisplayName)
		}
		return e.catalog.ReverseDependencies(hits), nil
	})
	e.report(ctx, "rdeps", d.Name, cached, start, err)
	return report, err
}

// AuthorDetail returns the registry profile of m, fetching it on first use.
func (e *Enricher) AuthorDetail(ctx context.Context, m *catalog.Maintainer) (*catalog.AuthorDetail, error) {
	cached := m.Detail.State() == catalog.Ready
	start := time.Now()
	detail, err := m.Detail.Load(ctx, func(ctx context.Context) (*catalog.AuthorDetail, error) {
		ctx, cancel := e.callContext(ctx)
		defer cancel()
		detail, err := e.registry.FetchAuthorDetail(ctx, m.ID)
		if err != nil {
			return nil, e.transportError(ctx, err, "author %s", m.ID)
		}
		return detail, nil
	})
	e.report(ctx, "author", m.ID, cached, start, err)
	return detail, err
}

// File returns an ancillary file (e.g. "Changes") of d's latest release.
// Content is cached on d after the first successful read.
func (e *Enricher) File(ctx context.Context, d *catalog.Distribution, name string) (string, error) {
	if content, ok := d.File(name); ok {
		e.report(ctx, "file", d.Name+"/"+name, true, time.Now(), nil)
		return content, nil
	}
	ff, ok := e.registry.(FileFetcher)
	if !ok {
		return "", errs.New(errs.ErrCodeUnsupported, "registry cannot read release files")
	}
	detail, err := e.ReleaseDetail(ctx, d)
	if err != nil {
		return "", err
	}

	start := time.Now()
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	content, err := ff.FetchFile(callCtx, detail, name)
	if err != nil {
		err = e.transportError(callCtx, err, "%s of %s", name, d.Name)
	} else {
		d.SetFile(name, content)
	}
	e.report(ctx, "file", d.Name+"/"+name, false, start, err)
	return content, err
}

// Prefetch loads release details for ds concurrently. Failures are logged
// and counted; they leave the affected slots retryable.
func (e *Enricher) Prefetch(ctx context.Context, ds []*catalog.Distribution) (failed int) {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, d := range ds {
		g.Go(func() error {
			if _, err := e.ReleaseDetail(ctx, d); err != nil {
				e.opts.Logger.Warn("prefetch failed", "distribution", d.Name, "err", errs.UserMessage(err))
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

func (e *Enricher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opts.Timeout)
}

// transportError codes a registry failure. A call cut off by the per-call
// deadline is reported as a timeout regardless of how the registry wrapped
// it.
func (e *Enricher) transportError(ctx context.Context, err error, format string, args ...any) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errs.Is(err, errs.ErrCodeTimeout) {
		return errs.Wrap(errs.ErrCodeTimeout, err, format, args...)
	}
	if errs.GetCode(err) == "" && !errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrCodeNetwork, err, format, args...)
	}
	return err
}

func (e *Enricher) report(ctx context.Context, kind, key string, cached bool, start time.Time, err error) {
	observability.Enrich().OnEnrich(ctx, kind, key, cached, time.Since(start), err)
	if err != nil && !errors.Is(err, context.Canceled) {
		e.opts.Logger.Warn("registry lookup failed", "kind", kind, "key", key, "err", errs.UserMessage(err))
	}
}
