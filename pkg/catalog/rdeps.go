package catalog

import "strings"

// ReverseDependency is a distribution that depends on another one.
type ReverseDependency struct {
	Distro         string `json:"distro" yaml:"distro"`
	MaintainerID   string `json:"maintainer_id" yaml:"maintainer_id"`
	MaintainerName string `json:"maintainer_name" yaml:"maintainer_name"`
	ReleaseDate    string `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	Index          int    `json:"index" yaml:"index"`
}

// ReverseDependencyReport lists the catalog distributions depending on a
// distribution, with one highlight per entry.
type ReverseDependencyReport struct {
	Entries    []ReverseDependency `json:"entries" yaml:"entries"`
	Highlights []int               `json:"highlights" yaml:"highlights"`
}

// hitMaintainer names the releasing author of a hit, falling back to the
// catalog maintainer of d when the hit carries no author.
func (c *Catalog) hitMaintainer(hit ReverseHit, d *Distribution) (id, name string) {
	m := d.Maintainer
	if hit.Author != "" {
		if m = c.FindMaintainerByID(hit.Author); m == nil {
			return hit.Author, hit.Author
		}
	}
	if m == nil {
		return "", ""
	}
	return m.ID, m.DisplayName()
}

// ReverseDependencies builds a report from registry search hits. A hit is
// kept only if its release name, with "-" read as "::", names a catalog
// distribution; other hits are dropped. Each kept hit that carries a date
// updates the release date of the distribution it names.
//
// Unlike FormatDependencies, unresolved entries do not appear in the result.
func (c *Catalog) ReverseDependencies(hits []ReverseHit) *ReverseDependencyReport {
	report := &ReverseDependencyReport{
		Entries:    []ReverseDependency{},
		Highlights: []int{},
	}
	for _, hit := range hits {
		d := c.FindDistroByName(DistroNameFromRelease(strings.TrimSpace(hit.Distribution)))
		if d == nil {
			continue
		}
		d.SetReleaseDate(hit.Date)

		entry := ReverseDependency{
			Distro:      d.Name,
			ReleaseDate: d.ReleaseDate(),
			Index:       d.Index,
		}
		entry.MaintainerID, entry.MaintainerName = c.hitMaintainer(hit, d)
		report.Entries = append(report.Entries, entry)
		report.Highlights = append(report.Highlights, d.Index)
	}
	return report
}

// FormatReverseDependencies builds the reverse dependency report of d from
// hits and stores it on d.
func (c *Catalog) FormatReverseDependencies(d *Distribution, hits []ReverseHit) *ReverseDependencyReport {
	report := c.ReverseDependencies(hits)
	d.RDeps.Set(report)
	return report
}
