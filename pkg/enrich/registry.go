package enrich

import (
	"context"

	"github.com/matzehuels/cpanmap/pkg/catalog"
)

// Registry is the lookup service behind an Enricher. Names are in registry
// form ("XML-Simple"). Implementations return errors coded with
// errors.ErrCodeNotFound when a key does not exist and transport codes
// (network, timeout, rate limit) for everything else.
type Registry interface {
	FetchReleaseDetail(ctx context.Context, release string) (*catalog.ReleaseDetail, error)
	FetchAuthorDetail(ctx context.Context, id string) (*catalog.AuthorDetail, error)
	// FetchModuleOwner returns the distribution that ships module.
	FetchModuleOwner(ctx context.Context, module string) (release string, err error)
	SearchReverseDependencies(ctx context.Context, release string) ([]catalog.ReverseHit, error)
}

// FileFetcher is implemented by registries that can read files from a
// release.
type FileFetcher interface {
	FetchFile(ctx context.Context, detail *catalog.ReleaseDetail, name string) (string, error)
}
