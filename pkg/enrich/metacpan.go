package enrich

import (
	"context"

	"github.com/matzehuels/cpanmap/pkg/catalog"
	"github.com/matzehuels/cpanmap/pkg/integrations"
	"github.com/matzehuels/cpanmap/pkg/integrations/metacpan"
)

// NewMetaCPANRegistry adapts a MetaCPAN client to Registry. With refresh
// set, every lookup bypasses the response cache.
func NewMetaCPANRegistry(c *metacpan.Client, refresh bool) Registry {
	return metaCPAN{client: c, refresh: refresh}
}

type metaCPAN struct {
	client  *metacpan.Client
	refresh bool
}

func (m metaCPAN) FetchReleaseDetail(ctx context.Context, release string) (*catalog.ReleaseDetail, error) {
	r, err := m.client.FetchRelease(ctx, release, m.refresh)
	if err != nil {
		return nil, integrations.Classify(err, "fetch release %s", release)
	}
	detail := &catalog.ReleaseDetail{
		Name:         r.Name,
		Distribution: r.Distribution,
		Version:      r.Version,
		Abstract:     r.Abstract,
		Author:       r.Author,
		Date:         r.Date,
		License:      r.License,
		Resources: catalog.Resources{
			Homepage:   r.Homepage,
			Repository: r.Repository,
			BugTracker: r.BugTracker,
		},
		Dependencies: make([]catalog.Dependency, 0, len(r.Dependencies)),
	}
	for _, d := range r.Dependencies {
		detail.Dependencies = append(detail.Dependencies, catalog.Dependency{
			Module:       d.Module,
			Version:      d.Version,
			Phase:        d.Phase,
			Relationship: d.Relationship,
		})
	}
	return detail, nil
}

func (m metaCPAN) FetchAuthorDetail(ctx context.Context, id string) (*catalog.AuthorDetail, error) {
	a, err := m.client.FetchAuthor(ctx, id, m.refresh)
	if err != nil {
		return nil, integrations.Classify(err, "fetch author %s", id)
	}
	detail := &catalog.AuthorDetail{
		ID:        a.PauseID,
		Name:      a.Name,
		City:      a.City,
		Country:   a.Country,
		AvatarURL: a.AvatarURL,
	}
	for _, p := range a.Profiles {
		detail.SocialLinks = append(detail.SocialLinks, catalog.SocialLink{Network: p.Network, ID: p.ID})
	}
	return detail, nil
}

func (m metaCPAN) FetchModuleOwner(ctx context.Context, module string) (string, error) {
	mod, err := m.client.FetchModule(ctx, module, m.refresh)
	if err != nil {
		return "", integrations.Classify(err, "look up module %s", module)
	}
	return mod.Distribution, nil
}

func (m metaCPAN) SearchReverseDependencies(ctx context.Context, release string) ([]catalog.ReverseHit, error) {
	deps, err := m.client.FetchReverseDependencies(ctx, release, m.refresh)
	if err != nil {
		return nil, integrations.Classify(err, "search reverse dependencies of %s", release)
	}
	hits := make([]catalog.ReverseHit, 0, len(deps))
	for _, d := range deps {
		hits = append(hits, catalog.ReverseHit{Distribution: d.Distribution, Author: d.Author, Date: d.Date})
	}
	return hits, nil
}

func (m metaCPAN) FetchFile(ctx context.Context, detail *catalog.ReleaseDetail, name string) (string, error) {
	text, err := m.client.FetchSource(ctx, detail.Author, detail.Name, name, m.refresh)
	if err != nil {
		return "", integrations.Classify(err, "fetch %s of %s", name, detail.Name)
	}
	return text, nil
}

var _ FileFetcher = metaCPAN{}
