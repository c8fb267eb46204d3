package catalog

// Records exchanged with the package registry. They carry only the fields
// the catalog consumes; transport details live in the registry client.

// ReleaseDetail is the registry record of a distribution's latest release.
type ReleaseDetail struct {
	Name         string       `json:"name" yaml:"name"`                 // Release name, e.g. "XML-Simple-2.25"
	Distribution string       `json:"distribution" yaml:"distribution"` // Registry form, e.g. "XML-Simple"
	Version      string       `json:"version,omitempty" yaml:"version,omitempty"`
	Abstract     string       `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Author       string       `json:"author" yaml:"author"`
	Date         string       `json:"date,omitempty" yaml:"date,omitempty"`
	License      []string     `json:"license,omitempty" yaml:"license,omitempty"`
	Resources    Resources    `json:"resources,omitempty" yaml:"resources,omitempty"`
	Dependencies []Dependency `json:"dependency" yaml:"dependency"`
}

// Resources are the links a release declares.
type Resources struct {
	Homepage   string `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	BugTracker string `json:"bugtracker,omitempty" yaml:"bugtracker,omitempty"`
}

// Dependency is one raw dependency entry of a release.
type Dependency struct {
	Module       string `json:"module" yaml:"module"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty"` // "" when no constraint is declared
	Phase        string `json:"phase,omitempty" yaml:"phase,omitempty"`     // "" means runtime
	Relationship string `json:"relationship,omitempty" yaml:"relationship,omitempty"`
}

// AuthorDetail is the registry record of a maintainer.
type AuthorDetail struct {
	ID          string       `json:"pauseid" yaml:"pauseid"`
	Name        string       `json:"name" yaml:"name"`
	City        string       `json:"city,omitempty" yaml:"city,omitempty"`
	Country     string       `json:"country,omitempty" yaml:"country,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	SocialLinks []SocialLink `json:"social_links,omitempty" yaml:"social_links,omitempty"`
}

// SocialLink is one profile entry of an author (e.g. github, twitter).
type SocialLink struct {
	Network string `json:"network" yaml:"network"`
	ID      string `json:"id" yaml:"id"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ReverseHit is one registry search hit for a reverse dependency.
type ReverseHit struct {
	Distribution string `json:"distribution" yaml:"distribution"` // Registry form, "-" separated
	Author       string `json:"author,omitempty" yaml:"author,omitempty"`
	Date         string `json:"date,omitempty" yaml:"date,omitempty"`
}
