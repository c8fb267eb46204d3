package metacpan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/cpanmap/pkg/cache"
	"github.com/matzehuels/cpanmap/pkg/integrations"
)

// DefaultBaseURL is the public MetaCPAN API.
const DefaultBaseURL = "https://fastapi.metacpan.org/v1"

// DefaultReverseDependencyLimit caps reverse dependency searches.
const DefaultReverseDependencyLimit = 5000

// Release is the MetaCPAN record of the latest release of a distribution.
type Release struct {
	Name         string       // Release name with version (e.g. "XML-Simple-2.25")
	Distribution string       // Distribution in registry form (e.g. "XML-Simple")
	Version      string       // Release version
	Abstract     string       // One-line description (may be empty)
	Author       string       // PAUSE id of the releasing author
	Date         string       // Release timestamp as reported by MetaCPAN
	License      []string     // License identifiers (may be empty)
	Homepage     string       // Resources: homepage URL
	Repository   string       // Resources: repository web or clone URL
	BugTracker   string       // Resources: bug tracker URL
	Dependencies []Dependency // Declared prerequisites, in registry order
}

// Dependency is one declared prerequisite of a release.
type Dependency struct {
	Module       string
	Version      string // "" when no version is declared
	Phase        string // configure, build, test, runtime, develop
	Relationship string // requires, recommends, suggests
}

// Author is a PAUSE author profile.
type Author struct {
	PauseID   string
	Name      string
	City      string
	Country   string
	AvatarURL string
	Profiles  []Profile
}

// Profile is a social network handle listed on an author profile.
type Profile struct {
	Network string
	ID      string
}

// Module maps a module to the distribution that ships it.
type Module struct {
	Name         string
	Distribution string // Registry form, "-" separated
	Author       string
	Release      string
}

// ReverseDependency is a release that depends on the queried distribution.
type ReverseDependency struct {
	Distribution string
	Author       string
	Date         string
}

// Client provides access to the MetaCPAN API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	limit   int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a MetaCPAN mirror. Cached responses of
// a non-default base URL are kept apart from the public API's.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimRight(base, "/")
		if base == "" || base == DefaultBaseURL {
			return
		}
		c.baseURL = base
		c.SetKeyer(cache.MirrorKeyer(base))
	}
}

// WithReverseDependencyLimit caps the number of hits returned by
// FetchReverseDependencies.
func WithReverseDependencyLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewClient creates a MetaCPAN client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//   - userAgent: User-Agent header sent with every request
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration, userAgent string, opts ...Option) *Client {
	var headers map[string]string
	if userAgent != "" {
		headers = map[string]string{"User-Agent": userAgent}
	}
	c := &Client{
		Client:  integrations.NewClient(backend, "metacpan:", cacheTTL, headers),
		baseURL: DefaultBaseURL,
		limit:   DefaultReverseDependencyLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchRelease retrieves the latest release of dist (registry form, e.g.
// "XML-Simple").
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - Release populated with metadata on success
//   - [integrations.ErrNotFound] if the distribution doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchRelease(ctx context.Context, dist string, refresh bool) (*Release, error) {
	dist = strings.TrimSpace(dist)
	var rel Release
	err := c.Cached(ctx, "release:"+dist, refresh, &rel, func() error {
		return c.fetchRelease(ctx, dist, &rel)
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (c *Client) fetchRelease(ctx context.Context, dist string, rel *Release) error {
	var data releaseResponse
	if err := c.Get(ctx, c.url("release", dist), &data); err != nil {
		return notFound(err, "release %s", dist)
	}
	*rel = Release{
		Name:         data.Name,
		Distribution: data.Distribution,
		Version:      data.Version.String(),
		Abstract:     data.Abstract,
		Author:       data.Author,
		Date:         data.Date,
		License:      data.License,
		Homepage:     data.Resources.Homepage,
		Repository:   firstNonEmpty(data.Resources.Repository.Web, data.Resources.Repository.URL),
		BugTracker:   firstNonEmpty(data.Resources.BugTracker.Web, data.Resources.BugTracker.Mailto),
	}
	for _, d := range data.Dependency {
		rel.Dependencies = append(rel.Dependencies, Dependency{
			Module:       d.Module,
			Version:      d.Version.String(),
			Phase:        d.Phase,
			Relationship: d.Relationship,
		})
	}
	return nil
}

// FetchAuthor retrieves a PAUSE author profile. id is uppercased.
func (c *Client) FetchAuthor(ctx context.Context, id string, refresh bool) (*Author, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	var a Author
	err := c.Cached(ctx, "author:"+id, refresh, &a, func() error {
		var data authorResponse
		if err := c.Get(ctx, c.url("author", id), &data); err != nil {
			return notFound(err, "author %s", id)
		}
		a = Author{
			PauseID:   data.PauseID,
			Name:      data.Name.String(),
			City:      data.City,
			Country:   data.Country,
			AvatarURL: data.GravatarURL,
		}
		for _, p := range data.Profile {
			a.Profiles = append(a.Profiles, Profile{Network: p.Name, ID: p.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FetchModule looks up the distribution that ships module.
func (c *Client) FetchModule(ctx context.Context, module string, refresh bool) (*Module, error) {
	module = strings.TrimSpace(module)
	var m Module
	err := c.Cached(ctx, "module:"+module, refresh, &m, func() error {
		var data moduleResponse
		if err := c.Get(ctx, c.url("module", module), &data); err != nil {
			return notFound(err, "module %s", module)
		}
		m = Module{
			Name:         module,
			Distribution: data.Distribution,
			Author:       data.Author,
			Release:      data.Release,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchReverseDependencies lists the latest releases that depend on dist.
func (c *Client) FetchReverseDependencies(ctx context.Context, dist string, refresh bool) ([]ReverseDependency, error) {
	dist = strings.TrimSpace(dist)
	var hits []ReverseDependency
	err := c.Cached(ctx, "rdeps:"+dist, refresh, &hits, func() error {
		var data reverseResponse
		u := fmt.Sprintf("%s?size=%d", c.url("reverse_dependencies", "dist", dist), c.limit)
		if err := c.Get(ctx, u, &data); err != nil {
			return notFound(err, "reverse dependencies of %s", dist)
		}
		hits = make([]ReverseDependency, 0, len(data.Data))
		for _, r := range data.Data {
			hits = append(hits, ReverseDependency{
				Distribution: r.Distribution,
				Author:       r.Author,
				Date:         r.Date,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// FetchSource returns the raw content of file within a release, e.g.
// FetchSource(ctx, "GRANTM", "XML-Simple-2.25", "Changes").
func (c *Client) FetchSource(ctx context.Context, author, release, file string, refresh bool) (string, error) {
	var content string
	key := "source:" + author + "/" + release + "/" + file
	err := c.Cached(ctx, key, refresh, &content, func() error {
		text, err := c.GetText(ctx, c.url("source", author, release, file))
		if err != nil {
			return notFound(err, "%s in %s", file, release)
		}
		content = text
		return nil
	})
	return content, err
}

func (c *Client) url(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = integrations.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
