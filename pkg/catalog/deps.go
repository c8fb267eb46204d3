package catalog

// DefaultPhase is the phase of dependencies that do not declare one.
const DefaultPhase = "runtime"

// NoVersion is reported for dependencies without a version constraint.
const NoVersion = "0"

// FormattedDependency is one dependency prepared for display. Distro and
// Index are set only when the module resolved to a catalog distribution.
type FormattedDependency struct {
	Module  string `json:"module" yaml:"module"`
	Version string `json:"version" yaml:"version"`
	Distro  string `json:"distro,omitempty" yaml:"distro,omitempty"`
	Index   *int   `json:"index,omitempty" yaml:"index,omitempty"`
}

// Resolved reports whether the dependency links to a catalog distribution.
func (f FormattedDependency) Resolved() bool { return f.Index != nil }

// PhaseGroup holds the dependencies of one phase in input order.
type PhaseGroup struct {
	Phase string                `json:"phase" yaml:"phase"`
	Deps  []FormattedDependency `json:"deps" yaml:"deps"`
}

// DependencyReport is the grouped dependency list of a distribution.
// Highlights may repeat an index when several modules map to the same
// distribution.
type DependencyReport struct {
	Groups     []PhaseGroup `json:"groups" yaml:"groups"`
	Highlights []int        `json:"highlights" yaml:"highlights"`
}

// Len returns the number of dependencies across all phases.
func (r *DependencyReport) Len() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Deps)
	}
	return n
}

// FormatDependencies groups raw dependencies by phase, in first-seen phase
// order, and links each module that resolve maps to a distribution.
// Unresolved modules are kept without a link.
func FormatDependencies(raw []Dependency, resolve func(module string) *Distribution) *DependencyReport {
	report := &DependencyReport{
		Groups:     []PhaseGroup{},
		Highlights: []int{},
	}
	groupIndex := make(map[string]int)
	for _, dep := range raw {
		phase := dep.Phase
		if phase == "" {
			phase = DefaultPhase
		}
		version := dep.Version
		if version == "" {
			version = NoVersion
		}

		entry := FormattedDependency{Module: dep.Module, Version: version}
		if resolve != nil {
			if d := resolve(dep.Module); d != nil {
				index := d.Index
				entry.Distro = d.Name
				entry.Index = &index
				report.Highlights = append(report.Highlights, index)
			}
		}

		gi, ok := groupIndex[phase]
		if !ok {
			gi = len(report.Groups)
			groupIndex[phase] = gi
			report.Groups = append(report.Groups, PhaseGroup{Phase: phase})
		}
		report.Groups[gi].Deps = append(report.Groups[gi].Deps, entry)
	}
	return report
}

// FormatDependencies formats raw against this catalog's resolver.
func (c *Catalog) FormatDependencies(raw []Dependency) *DependencyReport {
	return FormatDependencies(raw, c.ResolveModule)
}
