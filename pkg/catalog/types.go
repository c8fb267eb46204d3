package catalog

import (
	"math"
	"strings"
	"sync"
)

// NamespaceSeparator joins the parts of a catalog distribution name.
const NamespaceSeparator = "::"

// ReleaseSeparator joins the parts of a registry release name.
const ReleaseSeparator = "-"

// Maintainer is a registry account responsible for one or more distributions.
type Maintainer struct {
	ID          string // Registry handle, uppercase (e.g. "GRANTM")
	Name        string // Display name (may be empty)
	GravatarID  string // Avatar hash (may be empty)
	Index       int    // Position in Catalog.Maintainers
	DistroCount int    // Number of distributions referencing this maintainer

	// Detail holds the registry author record once fetched.
	Detail Slot[*AuthorDetail]
}

// DisplayName returns the maintainer's name, falling back to the id.
func (m *Maintainer) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// Namespace groups distributions for colouring by relative mass.
type Namespace struct {
	Name   string
	Colour string // Opaque colour code used by the renderer
	Mass   int    // Relative size metric
	Index  int    // Position in Catalog.Namespaces
}

// Rating is the optional community rating of a distribution.
type Rating struct {
	Score float64
	Count int
	Stars int // round(score*2)*5, i.e. 0..50 in half-star steps
}

// newRating derives the star value the way the map front-end displays it.
func newRating(score float64, count int) *Rating {
	return &Rating{
		Score: score,
		Count: count,
		Stars: int(math.Round(score*2)) * 5,
	}
}

// Distribution is a CPAN release unit placed on one grid cell.
type Distribution struct {
	Name        string // Catalog name, "::" separated (e.g. "XML::Simple")
	LowerName   string // Lowercase Name for case-insensitive and prefix search
	DisplayName string // Registry release name, "-" separated (e.g. "XML-Simple")
	MainModule  string // Documentation module when it differs from Name
	Maintainer  *Maintainer
	Namespace   *Namespace // nil when the distribution has no namespace
	Row, Col    int
	Index       int     // Position in Catalog.Distributions
	Rating      *Rating // nil unless the record carried rating fields

	// Release holds the registry release record once fetched.
	Release Slot[*ReleaseDetail]
	// Deps memoizes the formatted dependency report.
	Deps Slot[*DependencyReport]
	// RDeps memoizes the formatted reverse dependency report.
	RDeps Slot[*ReverseDependencyReport]

	mu          sync.RWMutex
	releaseDate string
	files       map[string]string
}

func newDistribution(name, mainModule string) *Distribution {
	return &Distribution{
		Name:        name,
		LowerName:   strings.ToLower(name),
		DisplayName: ReleaseName(name),
		MainModule:  mainModule,
	}
}

// DocModule returns the module used for documentation and source lookups.
func (d *Distribution) DocModule() string {
	if d.MainModule != "" {
		return d.MainModule
	}
	return d.Name
}

// ReleaseDate returns the most recent release date learned from the
// registry, or "" if none is known yet.
func (d *Distribution) ReleaseDate() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.releaseDate
}

// SetReleaseDate records a release date reported by the registry.
func (d *Distribution) SetReleaseDate(date string) {
	if date == "" {
		return
	}
	d.mu.Lock()
	d.releaseDate = date
	d.mu.Unlock()
}

// File returns cached content of an ancillary file (e.g. "Changes").
func (d *Distribution) File(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	content, ok := d.files[name]
	return content, ok
}

// SetFile caches the content of an ancillary file.
func (d *Distribution) SetFile(name, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.files == nil {
		d.files = make(map[string]string)
	}
	d.files[name] = content
}

// ReleaseName converts a catalog name to registry release form
// ("Foo::Bar" -> "Foo-Bar").
func ReleaseName(name string) string {
	return strings.ReplaceAll(name, NamespaceSeparator, ReleaseSeparator)
}

// DistroNameFromRelease converts a registry release name to catalog form
// ("Foo-Bar" -> "Foo::Bar"). It is the inverse of ReleaseName only for
// names whose parts contain no hyphens.
func DistroNameFromRelease(release string) string {
	return strings.ReplaceAll(release, ReleaseSeparator, NamespaceSeparator)
}

// MetaValue is a META entry: a scalar, or an ordered list for records that
// carried more than one value.
type MetaValue struct {
	Value  string   // Scalar value (first value for lists)
	Values []string // Non-nil only for list values
}

// IsList reports whether the entry was a multi-value record.
func (v MetaValue) IsList() bool { return v.Values != nil }

// Strings returns the value as a list, wrapping scalars.
func (v MetaValue) Strings() []string {
	if v.IsList() {
		return v.Values
	}
	return []string{v.Value}
}
